package components

import (
	"github.com/automoto/doomerang-audio/audiomgr"
	"github.com/yohamta/donburi"
)

// SoundData registers one sound handle on a room scene
type SoundData struct {
	Key    string
	Handle audiomgr.Playable
	Seq    uint64 // creation order within the scene
}

// RoomAudioData stores per-room counters shown by the debug overlay (singleton component)
type RoomAudioData struct {
	Room          string
	Loaded        int // completions delivered to the manager
	Failed        int // decode failures
	PendingDecode int
}

var Sound = donburi.NewComponentType[SoundData]()
var RoomAudio = donburi.NewComponentType[RoomAudioData]()
