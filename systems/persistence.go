package systems

import (
	"encoding/json"
	"log"

	"github.com/quasilyte/gdata"
)

const playerConfigItem = "audio_categories"

// ItemStore is the subset of gdata.Manager the settings store needs.
type ItemStore interface {
	LoadItem(itemKey string) ([]byte, error)
	SaveItem(itemKey string, data []byte) error
}

// SavedAudioSettings represents the category toggles stored on disk
type SavedAudioSettings struct {
	Categories map[string]int `json:"categories"`
}

// SettingsStore persists the per-category player configuration.
type SettingsStore struct {
	items ItemStore
}

// OpenSettingsStore initializes the gdata manager for settings storage.
func OpenSettingsStore(appName string) (*SettingsStore, error) {
	m, err := gdata.Open(gdata.Config{
		AppName: appName,
	})
	if err != nil {
		log.Printf("Warning: Could not initialize persistence: %v", err)
		return nil, err
	}
	return NewSettingsStore(m), nil
}

func NewSettingsStore(items ItemStore) *SettingsStore {
	return &SettingsStore{items: items}
}

// LoadPlayerConfig loads the saved toggles. Nothing saved yet is not an error.
func (s *SettingsStore) LoadPlayerConfig() (map[string]int, error) {
	if s == nil || s.items == nil {
		return nil, nil
	}

	data, err := s.items.LoadItem(playerConfigItem)
	if err != nil {
		log.Printf("Warning: Could not load audio settings: %v", err)
		return nil, err
	}
	if len(data) == 0 {
		// No saved settings yet, use defaults
		return nil, nil
	}

	var saved SavedAudioSettings
	if err := json.Unmarshal(data, &saved); err != nil {
		log.Printf("Warning: Could not parse saved audio settings: %v", err)
		return nil, err
	}
	return saved.Categories, nil
}

// SavePlayerConfig saves the toggles to disk
func (s *SettingsStore) SavePlayerConfig(categories map[string]int) error {
	if s == nil || s.items == nil {
		return nil
	}

	data, err := json.Marshal(SavedAudioSettings{Categories: categories})
	if err != nil {
		log.Printf("Warning: Could not serialize audio settings: %v", err)
		return err
	}

	if err := s.items.SaveItem(playerConfigItem, data); err != nil {
		log.Printf("Warning: Could not save audio settings: %v", err)
		return err
	}
	return nil
}
