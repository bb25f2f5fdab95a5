package audiomgr

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
)

// batch tracks the completions of one LoadBatch call. expected is captured
// before any load is queued; completions only ever increment loaded.
type batch struct {
	key      batchKey
	audios   []Descriptor
	scene    Scene
	expected int
	loaded   int
	done     bool
}

// LoadBatch loads the audios missing from the scene's context.
//
// Audios already present in the context, and audios without files, are
// skipped and produce no events. Every other audio emits EventAudioLoaded
// when its load completes, and EventAllAudiosLoaded follows the last of them
// exactly once. The returned id identifies the batch; it is uuid.Nil when
// nothing had to be loaded.
func (m *Manager) LoadBatch(ctx context.Context, audios []Descriptor, scene Scene) (uuid.UUID, error) {
	if scene == nil {
		return uuid.Nil, ErrSceneNotFound
	}
	return m.loadInto(ctx, audios, scene, scene.Key())
}

// LoadGlobal loads audios into the global scope, using scene's loader and
// sound manager to create them.
func (m *Manager) LoadGlobal(ctx context.Context, audios []Descriptor, scene Scene) (uuid.UUID, error) {
	if scene == nil {
		return uuid.Nil, ErrSceneNotFound
	}
	return m.loadInto(ctx, audios, scene, globalScope)
}

func (m *Manager) loadInto(ctx context.Context, audios []Descriptor, scene Scene, scopeID string) (uuid.UUID, error) {
	loader := scene.Loader()
	if loader == nil {
		return uuid.Nil, fmt.Errorf("scene %q has no asset loader", scene.Key())
	}
	target := m.scope(scopeID, scene)

	pending := make([]Descriptor, 0, len(audios))
	queued := make(map[string]bool, len(audios))
	for _, audio := range audios {
		if audio.Key == "" {
			log.Println("[audio] skipping audio without key")
			continue
		}
		if queued[audio.Key] || target.has(audio.Key) || sceneHasSound(scene, audio.Key) {
			continue
		}
		if len(audio.Files()) == 0 {
			log.Printf("[audio] missing audio data for %q", audio.Key)
			continue
		}
		queued[audio.Key] = true
		pending = append(pending, audio)
	}

	if len(pending) == 0 {
		return uuid.Nil, nil
	}

	b := &batch{
		key:      batchKey{context: scopeID, id: uuid.New()},
		audios:   audios,
		scene:    scene,
		expected: len(pending),
	}
	m.batches[b.key] = b

	// Completions run after this call returns; keep ctx values, drop its deadline.
	completionCtx := context.WithoutCancel(ctx)
	for _, audio := range pending {
		loader.Load(audio.Key, m.bucketPaths(audio.Files()), func() error {
			return m.completeLoad(completionCtx, b, audio)
		})
	}
	loader.Start()

	return b.key.id, nil
}

// completeLoad registers one loaded audio. Completions for a batch whose
// context was destroyed are ignored.
func (m *Manager) completeLoad(ctx context.Context, b *batch, audio Descriptor) error {
	if b.done || m.batches[b.key] != b {
		return nil
	}
	target, ok := m.lookupScope(b.key.context)
	if !ok {
		return nil
	}

	created := true
	if !target.has(audio.Key) {
		inst, err := m.generateAudio(b.scene, audio)
		if err != nil {
			log.Printf("[audio] could not create %q in %q: %v", audio.Key, b.scene.Key(), err)
			created = false
		} else {
			target.add(inst)
		}
	}

	b.loaded++
	last := b.loaded == b.expected
	if last {
		b.done = true
		delete(m.batches, b.key)
	}

	payload := LoadEvent{Manager: m, Batch: b.audios, Scene: b.scene, Audio: audio}
	var errs []error
	if created {
		if err := m.events.Emit(ctx, EventAudioLoaded, payload); err != nil {
			errs = append(errs, fmt.Errorf("emit %s: %w", EventAudioLoaded, err))
		}
	}
	if last {
		if err := m.events.Emit(ctx, EventAllAudiosLoaded, payload); err != nil {
			errs = append(errs, fmt.Errorf("emit %s: %w", EventAllAudiosLoaded, err))
		}
	}
	return errors.Join(errs...)
}

// generateAudio creates the handle of a loaded audio with the merged
// configuration: defaults, then the audio's options, then each marker's.
func (m *Manager) generateAudio(scene Scene, audio Descriptor) (*Instance, error) {
	cfg := audio.Config.Apply(m.defaults)
	if audio.Category != "" && !m.Enabled(audio.Category) {
		cfg.Mute = true
	}

	sounds := scene.Sounds()
	if sounds == nil {
		return nil, fmt.Errorf("scene %q has no sound manager", scene.Key())
	}
	handle, err := sounds.Add(audio.Key, cfg)
	if err != nil {
		return nil, err
	}
	for _, marker := range audio.Markers {
		handle.AddMarker(MarkerConfig{
			SoundConfig: marker.Config.Apply(cfg),
			Name:        marker.Key,
			Start:       marker.Start,
			Duration:    marker.Duration,
		})
	}
	return &Instance{Data: audio, Handle: handle}, nil
}

// UnloadBatch removes the audios from the scene's context and emits a single
// EventAudiosDeleted for the whole batch.
func (m *Manager) UnloadBatch(ctx context.Context, audios []Descriptor, scene Scene) (int, error) {
	if scene == nil {
		return 0, ErrSceneNotFound
	}
	var removed int
	if c, ok := m.lookupScope(scene.Key()); ok {
		removed = m.removeFrom(c, scene, audios)
	} else {
		// no context left, only the scene's sounds can still be registered
		removed = removeSceneSounds(scene, audios)
	}

	err := m.events.Emit(ctx, EventAudiosDeleted, LoadEvent{Manager: m, Batch: audios, Scene: scene})
	if err != nil {
		return removed, fmt.Errorf("emit %s: %w", EventAudiosDeleted, err)
	}
	return removed, nil
}

// PendingBatches returns how many load batches are still waiting for
// completions.
func (m *Manager) PendingBatches() int {
	return len(m.batches)
}
