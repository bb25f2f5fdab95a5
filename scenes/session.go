package scenes

import (
	"context"
	"fmt"
	"image/color"
	"log"
	"sync"

	"github.com/automoto/doomerang-audio/audiomgr"
	cfg "github.com/automoto/doomerang-audio/config"
	"github.com/automoto/doomerang-audio/network"
	"github.com/automoto/doomerang-audio/shared/messages"
	"github.com/automoto/doomerang-audio/systems"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/yohamta/donburi"
)

const maxPendingPlays = 32

// RoomDirectory resolves room ids to their scenes.
type RoomDirectory struct {
	rooms   map[string]*RoomScene
	decoder Decoder
	create  func(key string, decoder Decoder) *RoomScene
}

func NewRoomDirectory(decoder Decoder) *RoomDirectory {
	return &RoomDirectory{
		rooms:   make(map[string]*RoomScene),
		decoder: decoder,
		create:  NewRoomScene,
	}
}

func (d *RoomDirectory) Scene(room string) (audiomgr.Scene, bool) {
	rs, ok := d.rooms[room]
	if !ok {
		return nil, false
	}
	return rs, true
}

// Open returns the scene of room, creating it on first use.
func (d *RoomDirectory) Open(room string) *RoomScene {
	if rs, ok := d.rooms[room]; ok {
		return rs
	}
	rs := d.create(room, d.decoder)
	d.rooms[room] = rs
	log.Printf("[session] opened room scene %q", room)
	return rs
}

// Close tears down the scene of room.
func (d *RoomDirectory) Close(room string) {
	rs, ok := d.rooms[room]
	if !ok {
		return
	}
	rs.Close()
	delete(d.rooms, room)
}

// SessionScene connects to the room server and feeds its audio messages to
// the manager, on the game goroutine.
type SessionScene struct {
	client   *network.Client
	manager  *audiomgr.Manager
	bus      *systems.EventBus
	rooms    *RoomDirectory
	store    audiomgr.PlayerConfigStore
	toggles  map[ebiten.Key]string
	pending  []messages.AudioPlay
	active   *RoomScene
	lastRoom string
	once     sync.Once
}

func NewSessionScene(client *network.Client, decoder Decoder, store audiomgr.PlayerConfigStore) *SessionScene {
	return &SessionScene{
		client: client,
		rooms:  NewRoomDirectory(decoder),
		store:  store,
	}
}

func (ss *SessionScene) configure() {
	ss.bus = systems.NewEventBus(donburi.NewWorld())
	ss.manager = audiomgr.NewManager(audiomgr.Options{
		Events:   ss.bus,
		Scenes:   ss.rooms,
		Store:    ss.store,
		Bucket:   cfg.Audio.Bucket,
		Defaults: &cfg.Sound.Defaults,
	})
	ss.toggles = parseToggleKeys(cfg.Keys.Toggles)

	// Play requests that raced their audio's load are retried once a batch lands.
	ss.bus.On(audiomgr.EventAllAudiosLoaded, func(systems.AudioEvent) error {
		ss.retryPending()
		return nil
	})
	ss.bus.On(audiomgr.EventAudiosDeleted, func(e systems.AudioEvent) error {
		if payload, ok := e.Payload.(audiomgr.LoadEvent); ok {
			log.Printf("[session] %d audios deleted from %q", len(payload.Batch), payload.Scene.Key())
		}
		return nil
	})

	ss.client.Connect(cfg.Net.ServerAddress, cfg.Net.Version, cfg.Net.PlayerName, cfg.Net.Room)
}

func (ss *SessionScene) Update() {
	ss.once.Do(ss.configure)

	switch ss.client.State() {
	case network.StateJoinedRoom:
		ss.enterRoom(ss.client.Room())
	case network.StateDisconnected, network.StateError:
		ss.leaveRoom()
		if inpututil.IsKeyJustPressed(ebiten.KeyR) {
			ss.client.Connect(cfg.Net.ServerAddress, cfg.Net.Version, cfg.Net.PlayerName, cfg.Net.Room)
		}
	}

	ss.processRoomMessages()
	ss.processPlays()
	ss.processToggles()

	if ss.active != nil {
		ss.active.Update()
	}
}

func (ss *SessionScene) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)

	status := fmt.Sprintf("%s  room=%s  revision=%d", ss.client.State(), ss.client.Room(), ss.client.Revision())
	statusColor := cfg.White
	if err := ss.client.LastError(); err != nil {
		status = fmt.Sprintf("%s: %v (R to reconnect)", ss.client.State(), err)
		statusColor = cfg.Red
	}
	systems.DrawStatus(screen, status, statusColor, ss.categoryToggles())

	if ss.active != nil {
		ss.active.Draw(screen)
	}
}

func (ss *SessionScene) enterRoom(room string) {
	if room == ss.lastRoom && ss.active != nil {
		return
	}
	if ss.lastRoom != "" && ss.lastRoom != room {
		ss.leaveRoom()
	}
	ss.active = ss.rooms.Open(room)
	ss.lastRoom = room
}

// Close leaves the current room and disconnects from the server.
func (ss *SessionScene) Close() {
	ss.leaveRoom()
	ss.client.Disconnect()
}

func (ss *SessionScene) leaveRoom() {
	if ss.lastRoom == "" || ss.manager == nil {
		return
	}
	ss.manager.DestroyContext(ss.lastRoom)
	ss.rooms.Close(ss.lastRoom)
	ss.active = nil
	ss.lastRoom = ""
	ss.pending = ss.pending[:0]
}

func (ss *SessionScene) processRoomMessages() {
	ctx := context.Background()
	for _, msg := range ss.client.DrainRoomMessages() {
		switch {
		case msg.Update != nil:
			if err := ss.manager.ProcessUpdate(ctx, msg.Update.Room, msg.Update.Update); err != nil {
				log.Printf("[session] update for %q: %v", msg.Update.Room, err)
			}
		case msg.Delete != nil:
			if err := ss.manager.ProcessDelete(ctx, msg.Delete.Room, msg.Delete.Delete); err != nil {
				log.Printf("[session] delete for %q: %v", msg.Delete.Room, err)
			}
		}
	}
}

func (ss *SessionScene) processPlays() {
	for _, play := range ss.client.DrainPlays() {
		if ss.manager.Play(play.Category, play.Audio, play.Room) {
			continue
		}
		if len(ss.pending) >= maxPendingPlays {
			log.Printf("[session] dropping play %q, too many pending", play.Audio)
			continue
		}
		ss.pending = append(ss.pending, play)
	}
}

func (ss *SessionScene) retryPending() {
	remaining := ss.pending[:0]
	for _, play := range ss.pending {
		if !ss.manager.Play(play.Category, play.Audio, play.Room) {
			remaining = append(remaining, play)
		}
	}
	ss.pending = remaining
}

func (ss *SessionScene) processToggles() {
	for key, category := range ss.toggles {
		if !inpututil.IsKeyJustPressed(key) {
			continue
		}
		enabled := !ss.manager.Enabled(category)
		ok, err := ss.manager.SetEnabled(context.Background(), category, enabled)
		if err != nil {
			log.Printf("[session] toggle %q: %v", category, err)
			continue
		}
		log.Printf("[session] %q enabled=%v applied=%v", category, enabled, ok)
	}
}

func (ss *SessionScene) categoryToggles() []systems.CategoryToggle {
	if ss.manager == nil {
		return nil
	}
	categories := ss.manager.Categories()
	toggles := make([]systems.CategoryToggle, 0, len(categories))
	for _, category := range categories {
		toggles = append(toggles, systems.CategoryToggle{
			Key:     category.Key,
			Enabled: ss.manager.Enabled(category.Key),
		})
	}
	return toggles
}

func parseToggleKeys(toggles map[string]string) map[ebiten.Key]string {
	out := make(map[ebiten.Key]string, len(toggles))
	for name, category := range toggles {
		var key ebiten.Key
		if err := key.UnmarshalText([]byte(name)); err != nil {
			log.Printf("[session] unknown toggle key %q: %v", name, err)
			continue
		}
		out[key] = category
	}
	return out
}
