package systems

import (
	"fmt"
	"io"
	"log"
	"sort"
	"sync"

	"github.com/automoto/doomerang-audio/assets"
	"github.com/automoto/doomerang-audio/audiomgr"
	"github.com/automoto/doomerang-audio/components"
	cfg "github.com/automoto/doomerang-audio/config"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

// Global audio state - created once and shared across all scenes
var (
	globalAudioContext *audio.Context
	audioInitOnce      sync.Once
)

// AudioContext returns the process-wide audio context, creating it on first use.
func AudioContext() *audio.Context {
	audioInitOnce.Do(func() {
		globalAudioContext = audio.NewContext(cfg.Audio.SampleRate)
	})
	return globalAudioContext
}

// SoundFactory creates the handle of a loaded audio.
type SoundFactory func(key string, config audiomgr.SoundConfig) (audiomgr.Playable, error)

// NewSoundFactory returns a factory building ebiten sounds from the clips
// a room scene has decoded.
func NewSoundFactory(clips func(key string) (*assets.Decoded, bool)) SoundFactory {
	return func(key string, config audiomgr.SoundConfig) (audiomgr.Playable, error) {
		clip, ok := clips(key)
		if !ok {
			return nil, fmt.Errorf("no decoded clip for %q", key)
		}
		return NewSound(AudioContext(), key, clip, config), nil
	}
}

// SoundRegistry is the sound manager of a room scene: every handle lives on
// an entity carrying the Sound component.
type SoundRegistry struct {
	world  donburi.World
	create SoundFactory
	seq    uint64
}

func NewSoundRegistry(world donburi.World, create SoundFactory) *SoundRegistry {
	return &SoundRegistry{world: world, create: create}
}

func (r *SoundRegistry) Add(key string, config audiomgr.SoundConfig) (audiomgr.Playable, error) {
	handle, err := r.create(key, config)
	if err != nil {
		return nil, fmt.Errorf("create sound %q: %w", key, err)
	}

	r.seq++
	entry := r.world.Entry(r.world.Create(components.Sound))
	components.Sound.SetValue(entry, components.SoundData{
		Key:    key,
		Handle: handle,
		Seq:    r.seq,
	})
	return handle, nil
}

// Sounds returns the registered handles in creation order.
func (r *SoundRegistry) Sounds() []audiomgr.Playable {
	var registered []components.SoundData
	components.Sound.Each(r.world, func(entry *donburi.Entry) {
		registered = append(registered, *components.Sound.Get(entry))
	})
	sort.Slice(registered, func(i, j int) bool {
		return registered[i].Seq < registered[j].Seq
	})

	out := make([]audiomgr.Playable, 0, len(registered))
	for _, sound := range registered {
		out = append(out, sound.Handle)
	}
	return out
}

// Remove deletes the entity of a handle and releases the handle.
func (r *SoundRegistry) Remove(handle audiomgr.Playable) bool {
	var target *donburi.Entry
	components.Sound.Each(r.world, func(entry *donburi.Entry) {
		if target == nil && components.Sound.Get(entry).Handle == handle {
			target = entry
		}
	})
	if target == nil {
		return false
	}

	r.world.Remove(target.Entity())
	if closer, ok := handle.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			logSoundError(handle.Key(), "close", err)
		}
	}
	return true
}

// Len returns the number of registered handles.
func (r *SoundRegistry) Len() int {
	n := 0
	components.Sound.Each(r.world, func(*donburi.Entry) { n++ })
	return n
}

// Close releases every handle and empties the registry.
func (r *SoundRegistry) Close() {
	for _, handle := range r.Sounds() {
		r.Remove(handle)
	}
}

// UpdateSounds advances delayed starts and marker ends of every sound.
func UpdateSounds(e *ecs.ECS) {
	components.Sound.Each(e.World, func(entry *donburi.Entry) {
		if updater, ok := components.Sound.Get(entry).Handle.(interface{ Update() }); ok {
			updater.Update()
		}
	})
}

func logSoundError(key, op string, err error) {
	log.Printf("[sound] %s %q: %v", op, key, err)
}
