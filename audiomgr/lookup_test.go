package audiomgr

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomScenario(t *testing.T) {
	m, _, _ := loadedManager(t,
		[]Category{{Key: "music", SingleAudio: true}},
		Descriptor{Key: "theme", FilesName: "a.ogg,a.mp3"},
	)

	match, ok := m.FindAudio("theme", "room1")
	require.True(t, ok)
	assert.Equal(t, "", match.Marker)
	assert.Equal(t, "room1", match.Scope)
	assert.Equal(t, "theme", match.Instance.Data.Key)

	require.True(t, m.Play("music", "theme", "room1"))
	ok, err := m.SetEnabled(context.Background(), "music", false)
	require.NoError(t, err)
	require.True(t, ok)

	theme := match.Instance.Handle
	assert.False(t, theme.IsPlaying())
	assert.True(t, theme.Muted())
}

func TestFindAudio_ContextBeforeGlobal(t *testing.T) {
	m := NewManager(Options{Events: &recordingBus{}})
	boot := newFakeScene("boot")
	room := newFakeScene("room1")

	_, err := m.LoadGlobal(context.Background(), []Descriptor{{Key: "click", FilesName: "g.wav"}, {Key: "theme", FilesName: "g.ogg"}}, boot)
	require.NoError(t, err)
	require.NoError(t, boot.loader.completeAll())
	_, err = m.LoadBatch(context.Background(), []Descriptor{{Key: "theme", FilesName: "r.ogg"}}, room)
	require.NoError(t, err)
	require.NoError(t, room.loader.completeAll())

	match, ok := m.FindAudio("theme", "room1")
	require.True(t, ok)
	assert.Equal(t, "room1", match.Scope)
	assert.Same(t, room.sounds.sounds[0], match.Instance.Handle)

	match, ok = m.FindAudio("click", "room1")
	require.True(t, ok)
	assert.Equal(t, "", match.Scope, "falls back to the global scope")

	match, ok = m.FindAudio("theme", "")
	require.True(t, ok)
	assert.Same(t, boot.sounds.sounds[1], match.Instance.Handle)

	_, ok = m.FindAudio("missing", "room1")
	assert.False(t, ok)
	_, ok = m.FindAudio("theme", "room9")
	assert.True(t, ok, "unknown contexts still see global audios")
}

func TestFindAudio_MarkerFirstInsertionWins(t *testing.T) {
	m, scene, _ := loadedManager(t, nil,
		Descriptor{Key: "sheet1", FilesName: "s1.ogg", Markers: []Marker{{Key: "jump", Start: 0, Duration: 1}}},
		Descriptor{Key: "sheet2", FilesName: "s2.ogg", Markers: []Marker{{Key: "jump", Start: 2, Duration: 1}}},
	)

	for i := 0; i < 10; i++ {
		match, ok := m.FindAudio("jump", "room1")
		require.True(t, ok)
		assert.Equal(t, "jump", match.Marker)
		assert.Equal(t, "sheet1", match.Instance.Data.Key)
		assert.Same(t, scene.sounds.sounds[0], match.Instance.Handle)
	}
}

func TestFindAudio_AudioKeyBeforeMarker(t *testing.T) {
	m, _, _ := loadedManager(t, nil,
		Descriptor{Key: "sheet", FilesName: "s.ogg", Markers: []Marker{{Key: "coin", Start: 0, Duration: 1}}},
		Descriptor{Key: "coin", FilesName: "coin.wav"},
	)

	match, ok := m.FindAudio("coin", "room1")
	require.True(t, ok)
	assert.Equal(t, "", match.Marker)
	assert.Equal(t, "coin", match.Instance.Data.Key)
}

func TestExistsInContext(t *testing.T) {
	m, scene, _ := loadedManager(t, nil, Descriptor{Key: "door", FilesName: "door.ogg"})

	assert.True(t, m.ExistsInContext("door", "room1"))
	assert.False(t, m.ExistsInContext("coin", "room1"))
	assert.False(t, m.ExistsInContext("door", "room2"))

	_, err := scene.sounds.Add("steps", DefaultSoundConfig())
	require.NoError(t, err)
	assert.True(t, m.ExistsInContext("steps", "room1"), "sounds registered on the scene count")

	_, err = m.LoadBatch(context.Background(), []Descriptor{{Key: "steps", FilesName: "steps.ogg"}}, scene)
	require.NoError(t, err)
	assert.Empty(t, scene.loader.queued[1:], "scene sounds are not loaded twice")
}

func TestDestroyContext_KeepsOtherScopes(t *testing.T) {
	m := NewManager(Options{Events: &recordingBus{}})
	m.RegisterCategories([]Category{{Key: "music", SingleAudio: true}})
	rooms := map[string]*fakeScene{"room1": newFakeScene("room1"), "room2": newFakeScene("room2")}
	for id, scene := range rooms {
		_, err := m.LoadBatch(context.Background(), []Descriptor{{Key: "theme", FilesName: "a.ogg"}}, scene)
		require.NoError(t, err)
		require.NoError(t, scene.loader.completeAll())
		require.True(t, m.Play("music", "theme", id))
	}

	m.DestroyContext("room1")
	assert.Equal(t, []string{"room2"}, m.Contexts())
	assert.False(t, rooms["room1"].sounds.sounds[0].IsPlaying())
	assert.True(t, rooms["room2"].sounds.sounds[0].IsPlaying())

	_, ok := m.Playing("music", "room1")
	assert.False(t, ok)
	_, ok = m.Playing("music", "room2")
	assert.True(t, ok)

	m.DestroyContext("room1")
	m.DestroyContext("")
	assert.Len(t, m.Contexts(), 1)
}
