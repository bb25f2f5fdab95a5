// Package audiomgr coordinates which audio categories and tracks are loaded,
// playing or muted, globally and per room scene.
//
// A Manager is not safe for concurrent use. Every call, including the load
// completion callbacks it hands to an AssetLoader, must happen on the game
// update goroutine.
package audiomgr

import (
	"context"
	"errors"
	"log"
	"path"

	"github.com/google/uuid"
)

var (
	ErrSceneNotFound   = errors.New("scene not found")
	ErrUnknownCategory = errors.New("unknown category")
)

// globalScope is the scope key of audios shared by every scene.
const globalScope = ""

// DefaultSoundConfig returns the options every new handle starts from.
func DefaultSoundConfig() SoundConfig {
	return SoundConfig{
		Mute:   false,
		Volume: 1,
		Rate:   1,
		Detune: 0,
		Seek:   0,
		Loop:   true,
		Delay:  0,
	}
}

// Options configures a Manager. Only Events is expected; the rest may be nil.
type Options struct {
	Events EventBus
	Scenes SceneResolver
	Store  PlayerConfigStore
	// Bucket is prefixed to every file name handed to an AssetLoader.
	Bucket string
	// Defaults replaces DefaultSoundConfig when non-nil.
	Defaults *SoundConfig
}

// Manager owns the category registry, the playback index and the load
// batches of one game client session.
type Manager struct {
	events EventBus
	scenes SceneResolver
	store  PlayerConfigStore
	bucket string

	defaults     SoundConfig
	categories   map[string]Category
	playerConfig map[string]int
	playing      map[string]*playingBucket

	global   *playbackContext
	contexts map[string]*playbackContext
	batches  map[batchKey]*batch
}

func NewManager(opts Options) *Manager {
	events := opts.Events
	if events == nil {
		log.Println("[audio] event bus undefined, notifications are dropped")
		events = nopBus{}
	}

	m := &Manager{
		events:       events,
		scenes:       opts.Scenes,
		store:        opts.Store,
		bucket:       opts.Bucket,
		defaults:     DefaultSoundConfig(),
		categories:   make(map[string]Category),
		playerConfig: make(map[string]int),
		playing:      make(map[string]*playingBucket),
		global:       newPlaybackContext(globalScope, nil),
		contexts:     make(map[string]*playbackContext),
		batches:      make(map[batchKey]*batch),
	}
	if opts.Defaults != nil {
		m.defaults = *opts.Defaults
	}

	if m.store != nil {
		saved, err := m.store.LoadPlayerConfig()
		if err != nil {
			log.Printf("[audio] could not load player config: %v", err)
		}
		for key, value := range saved {
			m.playerConfig[key] = value
		}
	}

	return m
}

// DefaultConfig returns the configuration new handles are created with.
func (m *Manager) DefaultConfig() SoundConfig {
	return m.defaults
}

// UpdateDefaultConfig overrides the defaults for handles created from now on.
// Existing handles keep the configuration they were built with.
func (m *Manager) UpdateDefaultConfig(opts SoundOptions) {
	m.defaults = opts.Apply(m.defaults)
}

// DestroyContext tears down the playback context of a scene: tracked handles
// are stopped, and load completions that arrive later are ignored.
func (m *Manager) DestroyContext(contextID string) {
	if contextID == globalScope {
		return
	}
	c, ok := m.contexts[contextID]
	if !ok {
		return
	}
	c.stopAll()
	delete(m.contexts, contextID)
	m.forgetScope(contextID)
	log.Printf("[audio] destroyed context %q (%d audios)", contextID, c.len())
}

// Reset tears down every context and the global scope. Categories and the
// player configuration survive.
func (m *Manager) Reset() {
	for id := range m.contexts {
		m.DestroyContext(id)
	}
	m.global.stopAll()
	m.global = newPlaybackContext(globalScope, nil)
	m.forgetScope(globalScope)
}

// Contexts returns the ids of the live playback contexts.
func (m *Manager) Contexts() []string {
	ids := make([]string, 0, len(m.contexts))
	for id := range m.contexts {
		ids = append(ids, id)
	}
	return ids
}

// Instances returns the instances of a context in insertion order. An empty
// id returns the global scope.
func (m *Manager) Instances(contextID string) []*Instance {
	c, ok := m.lookupScope(contextID)
	if !ok {
		return nil
	}
	return c.list()
}

func (m *Manager) lookupScope(id string) (*playbackContext, bool) {
	if id == globalScope {
		return m.global, true
	}
	c, ok := m.contexts[id]
	return c, ok
}

// scope returns the context for id, creating it on first reference.
func (m *Manager) scope(id string, scene Scene) *playbackContext {
	if id == globalScope {
		if scene != nil {
			m.global.scene = scene
		}
		return m.global
	}
	c, ok := m.contexts[id]
	if !ok {
		c = newPlaybackContext(id, scene)
		m.contexts[id] = c
	} else if scene != nil {
		c.scene = scene
	}
	return c
}

// forgetScope drops batches and playing entries that belong to a scope.
func (m *Manager) forgetScope(id string) {
	for key := range m.batches {
		if key.context == id {
			delete(m.batches, key)
		}
	}
	for _, bucket := range m.playing {
		bucket.dropScope(id)
	}
}

func (m *Manager) bucketPaths(files []string) []string {
	if m.bucket == "" {
		return files
	}
	paths := make([]string, 0, len(files))
	for _, name := range files {
		paths = append(paths, path.Join(m.bucket, name))
	}
	return paths
}

type batchKey struct {
	context string
	id      uuid.UUID
}

type nopBus struct{}

func (nopBus) Emit(context.Context, string, any) error { return nil }
