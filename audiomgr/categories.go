package audiomgr

import (
	"context"
	"fmt"
	"log"
)

// RegisterCategories adds categories not seen before. A known key is left
// untouched, so the first registration of a key wins.
func (m *Manager) RegisterCategories(categories []Category) {
	for _, category := range categories {
		if category.Key == "" {
			log.Println("[audio] skipping category without key")
			continue
		}
		if _, ok := m.categories[category.Key]; !ok {
			m.categories[category.Key] = category
		}
		if _, ok := m.playing[category.Key]; !ok {
			m.playing[category.Key] = newPlayingBucket(m.categories[category.Key].SingleAudio)
		}
	}
}

// Category returns a registered category.
func (m *Manager) Category(key string) (Category, bool) {
	category, ok := m.categories[key]
	return category, ok
}

// Categories returns every registered category.
func (m *Manager) Categories() []Category {
	out := make([]Category, 0, len(m.categories))
	for _, category := range m.categories {
		out = append(out, category)
	}
	return out
}

// Enabled reports the player configuration of a category. Categories the
// player never toggled are enabled.
func (m *Manager) Enabled(key string) bool {
	value, ok := m.playerConfig[key]
	return !ok || value != 0
}

// PlayerConfig returns a copy of the per-category enabled values.
func (m *Manager) PlayerConfig() map[string]int {
	out := make(map[string]int, len(m.playerConfig))
	for key, value := range m.playerConfig {
		out[key] = value
	}
	return out
}

// SetPlayerConfig replaces the player configuration wholesale.
func (m *Manager) SetPlayerConfig(cfg map[string]int) {
	m.playerConfig = make(map[string]int, len(cfg))
	for key, value := range cfg {
		m.playerConfig[key] = value
	}
	m.savePlayerConfig()
}

// SetEnabled records the toggle of a category and applies it to the live
// instances of that category in every scope.
//
// It returns true when nothing has played in the category yet, or when the
// toggle was applied. It returns false for an unknown category and for a
// playing state that does not match the category kind. Only event bus
// failures are returned as errors.
func (m *Manager) SetEnabled(ctx context.Context, categoryKey string, enabled bool) (bool, error) {
	err := m.events.Emit(ctx, EventSetAudio, SetAudioEvent{
		Manager:     m,
		CategoryKey: categoryKey,
		Enabled:     enabled,
	})
	if err != nil {
		return false, fmt.Errorf("emit %s: %w", EventSetAudio, err)
	}

	category, ok := m.categories[categoryKey]
	if !ok {
		log.Printf("[audio] setEnabled: %v: %q", ErrUnknownCategory, categoryKey)
		return false, nil
	}

	m.playerConfig[categoryKey] = configValue(enabled)
	m.savePlayerConfig()

	bucket, ok := m.playing[categoryKey]
	if !ok || !bucket.played() {
		return true, nil
	}

	if !m.applyToggle(category, bucket, enabled) {
		log.Printf("[audio] setEnabled: malformed playing state for category %q", categoryKey)
		return false, nil
	}
	return true, nil
}

func (m *Manager) savePlayerConfig() {
	if m.store == nil {
		return
	}
	if err := m.store.SavePlayerConfig(m.PlayerConfig()); err != nil {
		log.Printf("[audio] could not save player config: %v", err)
	}
}

func configValue(enabled bool) int {
	if enabled {
		return 1
	}
	return 0
}
