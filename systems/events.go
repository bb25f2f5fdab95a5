package systems

import (
	"context"
	"errors"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// AudioEvent is published on the world for every manager notification.
type AudioEvent struct {
	Name    string
	Payload any
	Context context.Context

	errs *[]error
}

// Fail records a listener failure; Emit returns it to the manager.
func (e AudioEvent) Fail(err error) {
	if err != nil && e.errs != nil {
		*e.errs = append(*e.errs, err)
	}
}

var AudioEvents = events.NewEventType[AudioEvent]()

// EventBus delivers manager notifications through donburi events. Emit
// publishes on the world and processes the queue at once, so listeners
// have run when it returns. Like the manager, it is used from the update
// goroutine only, and listeners must not emit.
type EventBus struct {
	world donburi.World
}

func NewEventBus(world donburi.World) *EventBus {
	return &EventBus{world: world}
}

func (b *EventBus) Emit(ctx context.Context, name string, payload any) error {
	var errs []error
	AudioEvents.Publish(b.world, AudioEvent{
		Name:    name,
		Payload: payload,
		Context: ctx,
		errs:    &errs,
	})
	AudioEvents.ProcessEvents(b.world)
	return errors.Join(errs...)
}

// On subscribes fn to the events called name. A returned error fails the
// Emit call that delivered the event.
func (b *EventBus) On(name string, fn func(AudioEvent) error) {
	AudioEvents.Subscribe(b.world, func(_ donburi.World, event AudioEvent) {
		if event.Name != name {
			return
		}
		event.Fail(fn(event))
	})
}
