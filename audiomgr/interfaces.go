package audiomgr

import "context"

// Event names emitted through the EventBus.
const (
	EventSetAudio               = "audio.setAudio"
	EventUpdateCategoriesLoaded = "audio.updateCategoriesLoaded"
	EventUpdateAudiosLoaded     = "audio.updateAudiosLoaded"
	EventAudioLoaded            = "audio.audiosLoaded"
	EventAllAudiosLoaded        = "audio.allAudiosLoaded"
	EventAudiosDeleted          = "audio.audiosDeleted"
	EventDeleteAudios           = "audio.deleteAudios"
)

// EventBus delivers notifications. Emit returns once listeners have run.
type EventBus interface {
	Emit(ctx context.Context, name string, payload any) error
}

// Playable is a handle created by a scene's SoundManager.
type Playable interface {
	Key() string
	Play()
	PlayMarker(name string) error
	Stop()
	IsPlaying() bool
	SetMute(muted bool)
	Muted() bool
	AddMarker(cfg MarkerConfig)
	HasMarker(name string) bool
}

// AssetLoader queues asset loads for one scene. onComplete runs on the
// caller's update goroutine, in any order relative to sibling loads.
type AssetLoader interface {
	Load(key string, files []string, onComplete func() error)
	// Start kicks off queued loads. Calling it again must not duplicate work.
	Start()
}

// SoundManager is the per-scene registry of created handles.
type SoundManager interface {
	Add(key string, cfg SoundConfig) (Playable, error)
	Sounds() []Playable
	Remove(p Playable) bool
}

// Scene is the host of one playback context.
type Scene interface {
	Key() string
	Loader() AssetLoader
	Sounds() SoundManager
}

// SceneResolver maps a room name to its scene.
type SceneResolver interface {
	Scene(room string) (Scene, bool)
}

// PlayerConfigStore persists the per-category enabled values.
type PlayerConfigStore interface {
	LoadPlayerConfig() (map[string]int, error)
	SavePlayerConfig(cfg map[string]int) error
}

// SetAudioEvent is the payload of EventSetAudio.
type SetAudioEvent struct {
	Manager     *Manager
	CategoryKey string
	Enabled     bool
}

// LoadEvent is the payload of EventAudioLoaded and EventAllAudiosLoaded.
type LoadEvent struct {
	Manager *Manager
	Batch   []Descriptor
	Scene   Scene
	Audio   Descriptor
}

// RoomEvent is the payload of the message-processing events.
type RoomEvent struct {
	Manager *Manager
	Room    string
	Message any
}
