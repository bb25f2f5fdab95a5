package network

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/automoto/doomerang-audio/shared/messages"
	"github.com/coder/websocket"
	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"
)

type ClientState int

const (
	StateDisconnected ClientState = iota
	StateConnecting
	StateConnected
	StateJoinedRoom
	StateError
)

func (s ClientState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateJoinedRoom:
		return "joined"
	case StateError:
		return "error"
	}
	return "unknown"
}

// Buffers sizes the channels between necs goroutines and the update loop.
// Room messages are never dropped and have no buffer.
type Buffers struct {
	Plays int
}

// RoomMessage is an update or a deletion, queued in arrival order so a
// deletion never overtakes the update it follows.
type RoomMessage struct {
	Update *messages.AudioUpdate
	Delete *messages.AudioDelete
}

// Client manages a WebSocket connection to the room audio server.
// All shared fields are protected by mu (router callbacks run on necs goroutines).
type Client struct {
	mu sync.RWMutex

	state      ClientState
	lastError  error
	room       string
	serverName string
	sessionID  string
	revision   uint64
	conn       *websocket.Conn
	dropped    int

	// room state messages, guarded by mu
	roomQueue []RoomMessage
	playCh    chan messages.AudioPlay
}

func NewClient(buffers Buffers) *Client {
	return &Client{
		state:  StateDisconnected,
		playCh: make(chan messages.AudioPlay, buffers.Plays),
	}
}

// Connect dials the server in a background goroutine and joins room once connected.
func (c *Client) Connect(address, version, playerName, room string) {
	c.mu.Lock()
	c.state = StateConnecting
	c.lastError = nil
	c.mu.Unlock()

	router.OnConnect(func(_ *router.NetworkClient) {
		log.Println("[client] connected to server")
		c.mu.Lock()
		c.state = StateConnected
		c.mu.Unlock()

		err := c.SendMessage(messages.JoinRoom{
			Version:    version,
			PlayerName: playerName,
			Room:       room,
		})
		if err != nil {
			c.setError(fmt.Errorf("failed to send join request: %w", err))
		}
	})

	router.On(func(_ *router.NetworkClient, msg messages.RoomJoined) {
		log.Printf("[client] joined room %q: server=%s session=%s revision=%d",
			msg.Room, msg.ServerName, msg.SessionID, msg.Revision)
		c.mu.Lock()
		c.room = msg.Room
		c.serverName = msg.ServerName
		c.sessionID = msg.SessionID
		c.revision = msg.Revision
		c.state = StateJoinedRoom
		c.mu.Unlock()
	})

	router.On(func(_ *router.NetworkClient, msg messages.RoomRejected) {
		log.Printf("[client] join rejected: %s", msg.Reason)
		c.setError(fmt.Errorf("join rejected: %s", msg.Reason))
	})

	router.On(func(_ *router.NetworkClient, msg messages.AudioUpdate) {
		c.queueRoomMessage(RoomMessage{Update: &msg}, msg.Revision)
	})

	router.On(func(_ *router.NetworkClient, msg messages.AudioDelete) {
		c.queueRoomMessage(RoomMessage{Delete: &msg}, msg.Revision)
	})

	router.On(func(_ *router.NetworkClient, msg messages.AudioPlay) {
		push(c, c.playCh, msg, "play")
	})

	router.OnDisconnect(func(_ *router.NetworkClient, err error) {
		log.Printf("[client] disconnected: %v", err)
		c.mu.Lock()
		if c.state != StateError {
			c.state = StateDisconnected
		}
		c.conn = nil
		c.mu.Unlock()
	})

	router.OnError(func(_ *router.NetworkClient, err error) {
		log.Printf("[client] error: %v", err)
	})

	go func() {
		transport := transports.NewWsClientTransport("ws://" + address)
		err := transport.Start(func(conn *websocket.Conn) {
			c.mu.Lock()
			c.conn = conn
			c.mu.Unlock()
		})
		if err != nil {
			c.setError(fmt.Errorf("connection failed: %w", err))
		}
	}()
}

// Disconnect leaves the current room and closes the connection.
func (c *Client) Disconnect() {
	c.mu.RLock()
	room := c.room
	joined := c.state == StateJoinedRoom
	c.mu.RUnlock()

	if joined {
		if err := c.SendMessage(messages.LeaveRoom{Room: room}); err != nil {
			log.Printf("[client] leave %q: %v", room, err)
		}
	}

	c.mu.Lock()
	conn := c.conn
	c.state = StateDisconnected
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		_ = conn.CloseNow()
	}

	router.ResetRouter()
}

func (c *Client) State() ClientState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Client) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

func (c *Client) Room() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.room
}

func (c *Client) ServerName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.serverName
}

// Revision returns the newest manifest revision seen for the joined room.
func (c *Client) Revision() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.revision
}

// Dropped returns how many play requests were discarded because the update loop fell behind.
func (c *Client) Dropped() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dropped
}

func (c *Client) SendMessage(msg any) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return fmt.Errorf("not connected")
	}

	payload, err := router.Serialize(msg)
	if err != nil {
		return fmt.Errorf("serialize: %w", err)
	}

	return conn.Write(context.Background(), websocket.MessageBinary, payload)
}

func (c *Client) setError(err error) {
	c.mu.Lock()
	c.state = StateError
	c.lastError = err
	c.mu.Unlock()
}

// queueRoomMessage queues msg and advances the revision in one step, so the
// revision never runs ahead of what the update loop will apply.
func (c *Client) queueRoomMessage(msg RoomMessage, revision uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomQueue = append(c.roomQueue, msg)
	if revision > c.revision {
		c.revision = revision
	}
}

// DrainRoomMessages returns all pending updates and deletions in arrival order, non-blocking.
func (c *Client) DrainRoomMessages() []RoomMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.roomQueue
	c.roomQueue = nil
	return out
}

// DrainPlays returns all pending play requests, non-blocking.
func (c *Client) DrainPlays() []messages.AudioPlay {
	return drainChan(c.playCh)
}

func push[T any](c *Client, ch chan T, msg T, kind string) {
	select {
	case ch <- msg:
	default:
		c.mu.Lock()
		c.dropped++
		c.mu.Unlock()
		log.Printf("[client] %s queue full, message dropped", kind)
	}
}

func drainChan[T any](ch chan T) []T {
	var out []T
	for {
		select {
		case v := <-ch:
			out = append(out, v)
		default:
			return out
		}
	}
}
