package network

import (
	"testing"

	"github.com/automoto/doomerang-audio/shared/messages"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_RoomMessagesKeepArrivalOrder(t *testing.T) {
	c := NewClient(Buffers{Plays: 1})

	update := messages.AudioUpdate{Room: "room1", Revision: 3}
	remove := messages.AudioDelete{Room: "room1", Revision: 2}
	c.queueRoomMessage(RoomMessage{Update: &update}, update.Revision)
	c.queueRoomMessage(RoomMessage{Delete: &remove}, remove.Revision)

	drained := c.DrainRoomMessages()
	require.Len(t, drained, 2)
	assert.NotNil(t, drained[0].Update)
	assert.NotNil(t, drained[1].Delete)
	assert.Equal(t, uint64(3), c.Revision(), "revision never goes back")
	assert.Empty(t, c.DrainRoomMessages())
}

func TestClient_RoomMessagesNeverDropped(t *testing.T) {
	c := NewClient(Buffers{Plays: 1})

	const n = 500
	for i := 1; i <= n; i++ {
		if i%2 == 0 {
			msg := messages.AudioDelete{Room: "room1", Revision: uint64(i)}
			c.queueRoomMessage(RoomMessage{Delete: &msg}, msg.Revision)
			continue
		}
		msg := messages.AudioUpdate{Room: "room1", Revision: uint64(i)}
		c.queueRoomMessage(RoomMessage{Update: &msg}, msg.Revision)
	}

	drained := c.DrainRoomMessages()
	require.Len(t, drained, n)
	assert.Zero(t, c.Dropped())
	assert.Equal(t, uint64(n), c.Revision())
	require.NotNil(t, drained[n-1].Delete)
	assert.Equal(t, uint64(n), drained[n-1].Delete.Revision, "the last message is the one the revision reports")
}

func TestClient_DropsPlaysWhenFull(t *testing.T) {
	c := NewClient(Buffers{Plays: 1})

	push(c, c.playCh, messages.AudioPlay{Audio: "theme"}, "play")
	push(c, c.playCh, messages.AudioPlay{Audio: "battle"}, "play")

	assert.Equal(t, 1, c.Dropped())
	assert.Equal(t, []messages.AudioPlay{{Audio: "theme"}}, c.DrainPlays())
}

func TestClient_SendWithoutConnection(t *testing.T) {
	c := NewClient(Buffers{})
	assert.Equal(t, StateDisconnected, c.State())
	assert.Equal(t, "disconnected", c.State().String())
	assert.Error(t, c.SendMessage(messages.LeaveRoom{Room: "room1"}))
}
