package messages

import "github.com/automoto/doomerang-audio/audiomgr"

// AudioUpdate carries categories, player configuration and audios for a room
type AudioUpdate struct {
	Room     string
	Revision uint64 // manifest revision that produced the update
	Update   audiomgr.UpdateMessage
}

// AudioDelete lists audios removed from a room
type AudioDelete struct {
	Room     string
	Revision uint64
	Delete   audiomgr.DeleteMessage
}

// AudioPlay asks clients in a room to play an audio or marker
type AudioPlay struct {
	Room     string
	Category string
	Audio    string // audio key or marker name
}
