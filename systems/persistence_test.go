package systems

import (
	"errors"
	"testing"

	"github.com/automoto/doomerang-audio/audiomgr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryItems struct {
	items   map[string][]byte
	loadErr error
}

func (m *memoryItems) LoadItem(key string) ([]byte, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.items[key], nil
}

func (m *memoryItems) SaveItem(key string, data []byte) error {
	if m.items == nil {
		m.items = make(map[string][]byte)
	}
	m.items[key] = data
	return nil
}

func TestSettingsStore_RoundTrip(t *testing.T) {
	items := &memoryItems{}
	store := NewSettingsStore(items)

	saved, err := store.LoadPlayerConfig()
	require.NoError(t, err)
	assert.Nil(t, saved)

	require.NoError(t, store.SavePlayerConfig(map[string]int{"music": 0, "sfx": 1}))
	assert.JSONEq(t, `{"categories":{"music":0,"sfx":1}}`, string(items.items[playerConfigItem]))

	saved, err = store.LoadPlayerConfig()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"music": 0, "sfx": 1}, saved)
}

func TestSettingsStore_Errors(t *testing.T) {
	store := NewSettingsStore(&memoryItems{loadErr: errors.New("disk gone")})
	_, err := store.LoadPlayerConfig()
	assert.Error(t, err)

	store = NewSettingsStore(&memoryItems{items: map[string][]byte{playerConfigItem: []byte("{")}})
	_, err = store.LoadPlayerConfig()
	assert.Error(t, err)

	var none *SettingsStore
	saved, err := none.LoadPlayerConfig()
	require.NoError(t, err)
	assert.Nil(t, saved)
	assert.NoError(t, none.SavePlayerConfig(map[string]int{"music": 1}))
}

func TestSettingsStore_RestoresManagerToggles(t *testing.T) {
	items := &memoryItems{}
	store := NewSettingsStore(items)
	require.NoError(t, store.SavePlayerConfig(map[string]int{"music": 0}))

	m := audiomgr.NewManager(audiomgr.Options{Store: store})
	m.RegisterCategories([]audiomgr.Category{{Key: "music", SingleAudio: true}})
	assert.False(t, m.Enabled("music"))

	m.SetPlayerConfig(map[string]int{"music": 1})
	saved, err := store.LoadPlayerConfig()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"music": 1}, saved)
}
