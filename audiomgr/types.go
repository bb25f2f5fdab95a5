package audiomgr

import "strings"

// Category groups audio tracks that share one enable/disable toggle.
type Category struct {
	Key         string `json:"category_key" yaml:"category_key"`
	SingleAudio bool   `json:"single_audio" yaml:"single_audio"`
}

// SoundConfig holds the playback options applied when a handle is created.
type SoundConfig struct {
	Mute   bool
	Volume float64
	Rate   float64
	Detune float64
	Seek   float64
	Loop   bool
	Delay  float64
}

// SoundOptions is a partial SoundConfig. Nil fields keep the base value.
type SoundOptions struct {
	Mute   *bool    `json:"mute,omitempty" yaml:"mute,omitempty"`
	Volume *float64 `json:"volume,omitempty" yaml:"volume,omitempty"`
	Rate   *float64 `json:"rate,omitempty" yaml:"rate,omitempty"`
	Detune *float64 `json:"detune,omitempty" yaml:"detune,omitempty"`
	Seek   *float64 `json:"seek,omitempty" yaml:"seek,omitempty"`
	Loop   *bool    `json:"loop,omitempty" yaml:"loop,omitempty"`
	Delay  *float64 `json:"delay,omitempty" yaml:"delay,omitempty"`
}

// Apply returns base with every non-nil option overriding it.
func (o SoundOptions) Apply(base SoundConfig) SoundConfig {
	if o.Mute != nil {
		base.Mute = *o.Mute
	}
	if o.Volume != nil {
		base.Volume = *o.Volume
	}
	if o.Rate != nil {
		base.Rate = *o.Rate
	}
	if o.Detune != nil {
		base.Detune = *o.Detune
	}
	if o.Seek != nil {
		base.Seek = *o.Seek
	}
	if o.Loop != nil {
		base.Loop = *o.Loop
	}
	if o.Delay != nil {
		base.Delay = *o.Delay
	}
	return base
}

// Marker is a named sub-clip of an audio asset. Start and Duration are seconds.
type Marker struct {
	Key      string       `json:"marker_key" yaml:"marker_key"`
	Start    float64      `json:"start" yaml:"start"`
	Duration float64      `json:"duration" yaml:"duration"`
	Config   SoundOptions `json:"config" yaml:"config,omitempty"`
}

// MarkerConfig is what a handle receives for each marker.
type MarkerConfig struct {
	SoundConfig
	Name     string
	Start    float64
	Duration float64
}

// Descriptor is the metadata for one logical audio asset.
type Descriptor struct {
	Key       string       `json:"audio_key" yaml:"audio_key"`
	FilesName string       `json:"files_name" yaml:"files_name"`
	Config    SoundOptions `json:"config" yaml:"config,omitempty"`
	Markers   []Marker     `json:"markers,omitempty" yaml:"markers,omitempty"`
	// Category is optional; when set, new handles honour the category toggle.
	Category string `json:"category_key,omitempty" yaml:"category_key,omitempty"`
}

// Files splits FilesName into its trimmed, non-empty file names.
func (d Descriptor) Files() []string {
	var files []string
	for _, name := range strings.Split(d.FilesName, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			files = append(files, name)
		}
	}
	return files
}

// Instance is a loaded, playable audio handle.
type Instance struct {
	Data   Descriptor
	Handle Playable
}

// Match is the result of a lookup. Marker is empty when the key named the
// audio itself rather than one of its markers.
type Match struct {
	Instance *Instance
	Marker   string
	// Scope is the context id the instance belongs to, empty for global.
	Scope string
}

// UpdateMessage is the room-scoped audio update.
type UpdateMessage struct {
	PlayerConfig map[string]int `json:"playerConfig,omitempty"`
	Categories   []Category     `json:"categories,omitempty"`
	Audios       []Descriptor   `json:"audios"`
}

// DeleteMessage is the room-scoped audio removal.
type DeleteMessage struct {
	Audios []Descriptor `json:"audios"`
}
