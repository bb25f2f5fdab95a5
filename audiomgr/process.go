package audiomgr

import (
	"context"
	"fmt"
)

// ProcessUpdate applies an update message received for a room: the player
// configuration is replaced, categories are registered and the audios are
// loaded into the room's scene.
func (m *Manager) ProcessUpdate(ctx context.Context, room string, msg UpdateMessage) error {
	if msg.PlayerConfig != nil {
		m.SetPlayerConfig(msg.PlayerConfig)
	}

	if msg.Categories != nil {
		m.RegisterCategories(msg.Categories)
		err := m.events.Emit(ctx, EventUpdateCategoriesLoaded, RoomEvent{Manager: m, Room: room, Message: msg})
		if err != nil {
			return fmt.Errorf("emit %s: %w", EventUpdateCategoriesLoaded, err)
		}
	}

	if len(msg.Audios) == 0 {
		return nil
	}

	scene, err := m.resolve(room)
	if err != nil {
		return err
	}
	if _, err := m.LoadBatch(ctx, msg.Audios, scene); err != nil {
		return fmt.Errorf("load audios for room %q: %w", room, err)
	}

	err = m.events.Emit(ctx, EventUpdateAudiosLoaded, RoomEvent{Manager: m, Room: room, Message: msg})
	if err != nil {
		return fmt.Errorf("emit %s: %w", EventUpdateAudiosLoaded, err)
	}
	return nil
}

// ProcessDelete removes the message's audios from the room's scene.
func (m *Manager) ProcessDelete(ctx context.Context, room string, msg DeleteMessage) error {
	if len(msg.Audios) == 0 {
		return nil
	}

	scene, err := m.resolve(room)
	if err != nil {
		return err
	}
	if _, err := m.UnloadBatch(ctx, msg.Audios, scene); err != nil {
		return fmt.Errorf("unload audios for room %q: %w", room, err)
	}

	err = m.events.Emit(ctx, EventDeleteAudios, RoomEvent{Manager: m, Room: room, Message: msg})
	if err != nil {
		return fmt.Errorf("emit %s: %w", EventDeleteAudios, err)
	}
	return nil
}

func (m *Manager) resolve(room string) (Scene, error) {
	if m.scenes == nil {
		return nil, fmt.Errorf("room %q: %w", room, ErrSceneNotFound)
	}
	scene, ok := m.scenes.Scene(room)
	if !ok || scene == nil {
		return nil, fmt.Errorf("room %q: %w", room, ErrSceneNotFound)
	}
	return scene, nil
}
