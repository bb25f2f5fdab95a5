package config

import (
	"time"

	"github.com/automoto/doomerang-audio/audiomgr"
)

// AudioConfig contains audio-related configuration values
type AudioConfig struct {
	SampleRate   int
	Bucket       string // directory prefix of every audio file name
	LoadWorkers  int    // decode goroutines per room scene
	CacheTTL     time.Duration
	CacheCleanup time.Duration
	// CompletionBuffer bounds decoded assets waiting for the update loop.
	CompletionBuffer int
}

// SoundConfig holds the options new sound handles start from
type SoundConfig struct {
	Defaults audiomgr.SoundConfig
	// MaxDelay caps the start delay of a handle, in seconds.
	MaxDelay float64
}

var Audio AudioConfig
var Sound SoundConfig

func init() {
	Audio = AudioConfig{
		SampleRate:       44100,
		Bucket:           "audio",
		LoadWorkers:      4,
		CacheTTL:         10 * time.Minute,
		CacheCleanup:     15 * time.Minute,
		CompletionBuffer: 64,
	}

	Sound = SoundConfig{
		Defaults: audiomgr.DefaultSoundConfig(),
		MaxDelay: 10,
	}
}
