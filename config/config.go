package config

import (
	"image/color"
	"time"
)

// Config holds general client window configuration
type Config struct {
	Width  int
	Height int
	Title  string
}

// NetConfig contains connection settings shared by the client binary
type NetConfig struct {
	ServerAddress string
	Room          string
	PlayerName    string
	Version       string
	AppName       string // gdata application name for saved settings

	PlayBuffer int // pending play requests before new ones are dropped
}

// ServerConfig contains defaults for the room audio server binary
type ServerConfig struct {
	Port         uint
	TickRate     int
	Name         string
	RoomsDir     string
	ManifestExt  string
	DebounceTime time.Duration // quiet period before a changed manifest is reloaded
}

// KeysConfig maps toggle keys to the category they flip
type KeysConfig struct {
	Toggles map[string]string // key name -> category key
}

// DebugConfig contains debug/testing command-line options
type DebugConfig struct {
	ShowContexts bool // Draw context and batch counters on screen
}

// Global configuration instances
var C *Config
var Net NetConfig
var Server ServerConfig
var Keys KeysConfig
var Debug DebugConfig

// Shared RGBA color constants
var (
	White  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Green  = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	Red    = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	Yellow = color.RGBA{R: 255, G: 255, B: 0, A: 255}
	Black  = color.RGBA{R: 0, G: 0, B: 0, A: 255}
)

func init() {
	C = &Config{
		Width:  640,
		Height: 360,
		Title:  "Doomerang Audio",
	}

	Net = NetConfig{
		ServerAddress: "localhost:7373",
		Room:          "lobby",
		PlayerName:    "player",
		Version:       "0.1.0",
		AppName:       "doomerang-audio",

		PlayBuffer: 32,
	}

	Server = ServerConfig{
		Port:         7373,
		TickRate:     10,
		Name:         "Doomerang Audio Server",
		RoomsDir:     "rooms",
		ManifestExt:  ".yaml",
		DebounceTime: 250 * time.Millisecond,
	}

	Keys = KeysConfig{
		Toggles: map[string]string{
			"M": "music",
			"S": "sfx",
			"A": "ambience",
		},
	}

	Debug = DebugConfig{
		ShowContexts: true,
	}
}
