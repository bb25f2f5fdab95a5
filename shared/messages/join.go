package messages

// JoinRoom is sent by a client after connecting to enter a room's audio session.
type JoinRoom struct {
	Version    string
	PlayerName string
	Room       string
}

// RoomJoined is sent by the server when a client's join request is accepted.
// The room's full audio state follows as an AudioUpdate.
type RoomJoined struct {
	Room       string
	ServerName string
	SessionID  string
	Revision   uint64
}

// RoomRejected is sent by the server when a client's join request is rejected.
type RoomRejected struct {
	Reason string
}

// LeaveRoom is sent by a client before switching rooms or disconnecting.
type LeaveRoom struct {
	Room string
}
