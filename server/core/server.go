package core

import (
	"fmt"
	"log"
	"sync"

	"github.com/automoto/doomerang-audio/shared/messages"
	"github.com/google/uuid"
	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"
)

// Peer is a connected client. *router.NetworkClient satisfies it.
type Peer interface {
	Id() string
	SendMessage(msg any) error
}

type session struct {
	id     uuid.UUID
	room   string
	player string
}

// Server keeps clients subscribed to rooms and pushes manifest changes to them
type Server struct {
	name    string
	version string
	rooms   *RoomStore
	watcher *ManifestWatcher
	loop    *Loop

	transport *transports.WsServerTransport

	sessions map[Peer]*session
	mu       sync.RWMutex

	// syncMu orders joins against reloads: a join reads the manifest and
	// registers its session as one step.
	syncMu sync.Mutex
}

// NewServer creates a room audio server. version is the required client
// version; empty accepts any.
func NewServer(tickRate int, name, version string, rooms *RoomStore, watcher *ManifestWatcher) *Server {
	s := &Server{
		name:     name,
		version:  version,
		rooms:    rooms,
		watcher:  watcher,
		sessions: make(map[Peer]*session),
	}
	s.loop = NewLoop(s, tickRate)
	return s
}

// Start serves clients on the given port. It blocks until the transport stops.
func (s *Server) Start(port uint) error {
	s.setupRouterCallbacks()

	if s.watcher != nil {
		go s.watcher.Run()
	}
	go s.loop.Run()

	s.transport = transports.NewWsServerTransport(port, "", nil)
	return s.transport.Start()
}

// Stop gracefully shuts down the server
func (s *Server) Stop() {
	s.loop.Stop()
	if s.watcher != nil {
		s.watcher.Stop()
	}
}

func (s *Server) setupRouterCallbacks() {
	router.OnConnect(func(client *router.NetworkClient) {
		log.Printf("[server] client connected: %s", client.Id())
	})

	router.OnDisconnect(func(client *router.NetworkClient, err error) {
		s.onDisconnect(client, err)
	})

	router.On(func(client *router.NetworkClient, msg messages.JoinRoom) {
		s.onJoin(client, msg)
	})

	router.On(func(client *router.NetworkClient, msg messages.LeaveRoom) {
		s.onLeave(client, msg)
	})

	router.OnError(func(client *router.NetworkClient, err error) {
		log.Printf("[server] client error: %v", err)
	})
}

func (s *Server) onJoin(peer Peer, msg messages.JoinRoom) {
	if s.version != "" && msg.Version != s.version {
		s.reject(peer, fmt.Sprintf("version mismatch: server requires %s", s.version))
		return
	}

	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	manifest, revision, ok := s.rooms.Manifest(msg.Room)
	if !ok {
		s.reject(peer, fmt.Sprintf("unknown room %q", msg.Room))
		return
	}

	sess := &session{id: uuid.New(), room: msg.Room, player: msg.PlayerName}
	s.mu.Lock()
	s.sessions[peer] = sess
	s.mu.Unlock()

	log.Printf("[server] %s joined %q as %q (session %s)", peer.Id(), msg.Room, msg.PlayerName, sess.id)

	outgoing := []any{
		messages.RoomJoined{
			Room:       msg.Room,
			ServerName: s.name,
			SessionID:  sess.id.String(),
			Revision:   revision,
		},
		messages.AudioUpdate{Room: msg.Room, Revision: revision, Update: manifest.FullUpdate()},
	}
	for _, play := range manifest.Autoplay {
		outgoing = append(outgoing, messages.AudioPlay{Room: msg.Room, Category: play.Category, Audio: play.Audio})
	}
	for _, out := range outgoing {
		if err := peer.SendMessage(out); err != nil {
			log.Printf("[server] send to %s: %v", peer.Id(), err)
			return
		}
	}
}

func (s *Server) reject(peer Peer, reason string) {
	log.Printf("[server] rejecting %s: %s", peer.Id(), reason)
	if err := peer.SendMessage(messages.RoomRejected{Reason: reason}); err != nil {
		log.Printf("[server] send to %s: %v", peer.Id(), err)
	}
}

func (s *Server) onLeave(peer Peer, msg messages.LeaveRoom) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[peer]; ok && sess.room == msg.Room {
		delete(s.sessions, peer)
		log.Printf("[server] %s left %q", peer.Id(), msg.Room)
	}
}

func (s *Server) onDisconnect(peer Peer, err error) {
	if err != nil {
		log.Printf("[server] client %s disconnected with error: %v", peer.Id(), err)
	} else {
		log.Printf("[server] client %s disconnected", peer.Id())
	}

	s.mu.Lock()
	delete(s.sessions, peer)
	s.mu.Unlock()
}

// Broadcast sends msg to every client in room and returns how many got it.
func (s *Server) Broadcast(room string, msg any) int {
	s.mu.RLock()
	var peers []Peer
	for peer, sess := range s.sessions {
		if sess.room == room {
			peers = append(peers, peer)
		}
	}
	s.mu.RUnlock()

	sent := 0
	for _, peer := range peers {
		if err := peer.SendMessage(msg); err != nil {
			log.Printf("[server] broadcast to %s: %v", peer.Id(), err)
			continue
		}
		sent++
	}
	return sent
}

// ReloadRoom reads a room's manifest again and pushes the difference to
// its clients. Deletions go out before updates.
func (s *Server) ReloadRoom(room string) error {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	update, del, err := s.rooms.Reload(room)
	if err != nil {
		return fmt.Errorf("reload %q: %w", room, err)
	}
	if del != nil {
		s.Broadcast(room, *del)
	}
	if update != nil {
		s.Broadcast(room, *update)
	}
	return nil
}

// SessionCount returns the number of clients inside any room
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
