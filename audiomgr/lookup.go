package audiomgr

import "log"

// FindAudio looks audioKey up in the context first, as an audio key and then
// as a marker name, and falls back to the global scope.
func (m *Manager) FindAudio(audioKey, contextID string) (Match, bool) {
	if contextID != globalScope {
		if c, ok := m.contexts[contextID]; ok {
			if match, ok := c.find(audioKey); ok {
				return match, true
			}
		}
	}
	return m.global.find(audioKey)
}

// ExistsInContext reports whether the context holds an instance for audioKey
// or its scene already registered a sound under that key.
func (m *Manager) ExistsInContext(audioKey, contextID string) bool {
	c, ok := m.lookupScope(contextID)
	if !ok {
		return false
	}
	return c.has(audioKey) || sceneHasSound(c.scene, audioKey)
}

// RemoveFromContext detaches the first match of every descriptor from the
// context, stopping it first when it is playing. It returns how many audios
// were removed.
func (m *Manager) RemoveFromContext(audios []Descriptor, contextID string) int {
	c, ok := m.lookupScope(contextID)
	if !ok {
		return 0
	}
	return m.removeFrom(c, c.scene, audios)
}

func (m *Manager) removeFrom(c *playbackContext, scene Scene, audios []Descriptor) int {
	removed := 0
	for _, audio := range audios {
		if audio.Key == "" {
			log.Println("[audio] remove: skipping audio without key")
			continue
		}
		removedSound := removeSceneSound(scene, audio.Key)
		found := removedSound != nil
		if inst, ok := c.remove(audio.Key); ok {
			if inst.Handle != nil && inst.Handle != removedSound {
				if inst.Handle.IsPlaying() {
					inst.Handle.Stop()
				}
				if scene != nil && scene.Sounds() != nil {
					scene.Sounds().Remove(inst.Handle)
				}
			}
			m.forgetPlaying(inst)
			found = true
		}
		if found {
			removed++
		}
	}
	return removed
}

func sceneHasSound(scene Scene, key string) bool {
	if scene == nil || scene.Sounds() == nil {
		return false
	}
	for _, sound := range scene.Sounds().Sounds() {
		if sound.Key() == key {
			return true
		}
	}
	return false
}

// removeSceneSound stops and removes the first registered sound for key and
// returns it, or nil when the scene has none.
func removeSceneSound(scene Scene, key string) Playable {
	if scene == nil || scene.Sounds() == nil {
		return nil
	}
	sounds := scene.Sounds()
	for _, sound := range sounds.Sounds() {
		if sound.Key() != key {
			continue
		}
		if sound.IsPlaying() {
			sound.Stop()
		}
		if !sounds.Remove(sound) {
			return nil
		}
		return sound
	}
	return nil
}

// removeSceneSounds removes the first registered sound of every descriptor.
func removeSceneSounds(scene Scene, audios []Descriptor) int {
	removed := 0
	for _, audio := range audios {
		if audio.Key != "" && removeSceneSound(scene, audio.Key) != nil {
			removed++
		}
	}
	return removed
}
