package audiomgr

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoomManager(rooms ...string) (*Manager, fakeResolver, *recordingBus, *memoryStore) {
	resolver := fakeResolver{}
	for _, room := range rooms {
		resolver[room] = newFakeScene(room)
	}
	bus := &recordingBus{}
	store := &memoryStore{}
	return NewManager(Options{Events: bus, Scenes: resolver, Store: store}), resolver, bus, store
}

func TestProcessUpdate_Full(t *testing.T) {
	m, resolver, bus, store := newRoomManager("room1")

	err := m.ProcessUpdate(context.Background(), "room1", UpdateMessage{
		PlayerConfig: map[string]int{"music": 0},
		Categories:   []Category{{Key: "music", SingleAudio: true}, {Key: "sfx"}},
		Audios: []Descriptor{
			{Key: "theme", FilesName: "theme.ogg", Category: "music"},
			{Key: "door", FilesName: "door.ogg", Category: "sfx"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"music": 0}, store.saved)
	assert.Len(t, m.Categories(), 2)
	assert.Equal(t, []string{EventUpdateCategoriesLoaded, EventUpdateAudiosLoaded}, bus.names())

	scene := resolver["room1"].(*fakeScene)
	require.Len(t, scene.loader.queued, 2)
	require.NoError(t, scene.loader.completeAll())
	assert.Equal(t, 1, bus.count(EventAllAudiosLoaded))
	assert.True(t, handleOf(t, m, "theme", "room1").Muted(), "music is disabled by the player config")
	assert.False(t, handleOf(t, m, "door", "room1").Muted())

	payload, ok := bus.events[0].payload.(RoomEvent)
	require.True(t, ok)
	assert.Equal(t, "room1", payload.Room)
}

func TestProcessUpdate_CategoriesOnly(t *testing.T) {
	m, _, bus, store := newRoomManager()

	err := m.ProcessUpdate(context.Background(), "lobby", UpdateMessage{Categories: []Category{{Key: "music"}}})
	require.NoError(t, err)
	assert.Equal(t, []string{EventUpdateCategoriesLoaded}, bus.names())
	assert.Zero(t, store.saves, "no player config in the message")
}

func TestProcessUpdate_EmptyCategoriesStillNotify(t *testing.T) {
	m, _, bus, _ := newRoomManager()

	require.NoError(t, m.ProcessUpdate(context.Background(), "lobby", UpdateMessage{Categories: []Category{}}))
	assert.Equal(t, []string{EventUpdateCategoriesLoaded}, bus.names())

	bus.events = nil
	require.NoError(t, m.ProcessUpdate(context.Background(), "lobby", UpdateMessage{}))
	assert.Empty(t, bus.events)
}

func TestProcessUpdate_UnknownRoom(t *testing.T) {
	m, _, bus, _ := newRoomManager("room1")

	err := m.ProcessUpdate(context.Background(), "room9", UpdateMessage{
		Audios: []Descriptor{{Key: "theme", FilesName: "theme.ogg"}},
	})
	require.ErrorIs(t, err, ErrSceneNotFound)
	assert.Empty(t, bus.events)

	noScenes := NewManager(Options{Events: &recordingBus{}})
	err = noScenes.ProcessDelete(context.Background(), "room1", DeleteMessage{Audios: []Descriptor{{Key: "theme"}}})
	assert.ErrorIs(t, err, ErrSceneNotFound)
}

func TestProcessUpdate_EventErrorWrapped(t *testing.T) {
	m, _, bus, _ := newRoomManager("room1")
	bus.failOn = EventUpdateCategoriesLoaded

	err := m.ProcessUpdate(context.Background(), "room1", UpdateMessage{
		Categories: []Category{{Key: "music"}},
		Audios:     []Descriptor{{Key: "theme", FilesName: "theme.ogg"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), EventUpdateCategoriesLoaded)
	assert.Equal(t, 0, bus.count(EventUpdateAudiosLoaded))
}

func TestProcessDelete(t *testing.T) {
	m, resolver, bus, _ := newRoomManager("room1")
	require.NoError(t, m.ProcessUpdate(context.Background(), "room1", UpdateMessage{
		Audios: []Descriptor{{Key: "theme", FilesName: "theme.ogg"}, {Key: "door", FilesName: "door.ogg"}},
	}))
	scene := resolver["room1"].(*fakeScene)
	require.NoError(t, scene.loader.completeAll())
	bus.events = nil

	err := m.ProcessDelete(context.Background(), "room1", DeleteMessage{Audios: []Descriptor{{Key: "theme"}}})
	require.NoError(t, err)
	assert.Equal(t, []string{EventAudiosDeleted, EventDeleteAudios}, bus.names())
	assert.False(t, m.ExistsInContext("theme", "room1"))
	assert.True(t, m.ExistsInContext("door", "room1"))

	bus.events = nil
	require.NoError(t, m.ProcessDelete(context.Background(), "room1", DeleteMessage{}))
	assert.Empty(t, bus.events)
}
