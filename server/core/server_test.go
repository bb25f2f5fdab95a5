package core

import (
	"errors"
	"sync"
	"testing"

	"github.com/automoto/doomerang-audio/shared/messages"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePeer struct {
	id     string
	fail   bool
	onSend func(msg any)

	mu   sync.Mutex
	sent []any
}

func (p *fakePeer) Id() string { return p.id }

func (p *fakePeer) SendMessage(msg any) error {
	if p.fail {
		return errors.New("closed")
	}
	p.mu.Lock()
	p.sent = append(p.sent, msg)
	hook := p.onSend
	p.mu.Unlock()
	if hook != nil {
		hook(msg)
	}
	return nil
}

func (p *fakePeer) messages() []any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]any(nil), p.sent...)
}

func newTestServer(t *testing.T, version string) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	writeManifest(t, dir, "lobby", lobbyManifest)
	store := NewRoomStore(dir, ".yaml")
	require.NoError(t, store.LoadAll())
	return NewServer(10, "test server", version, store, nil), dir
}

func TestServer_JoinSendsRoomAudio(t *testing.T) {
	s, _ := newTestServer(t, "1.0")
	peer := &fakePeer{id: "p1"}

	s.onJoin(peer, messages.JoinRoom{Version: "1.0", PlayerName: "ana", Room: "lobby"})

	sent := peer.messages()
	require.Len(t, sent, 3)

	joined, ok := sent[0].(messages.RoomJoined)
	require.True(t, ok)
	assert.Equal(t, "lobby", joined.Room)
	assert.Equal(t, "test server", joined.ServerName)
	assert.Equal(t, uint64(1), joined.Revision)
	_, err := uuid.Parse(joined.SessionID)
	assert.NoError(t, err)

	update, ok := sent[1].(messages.AudioUpdate)
	require.True(t, ok)
	assert.Len(t, update.Update.Audios, 2)
	assert.Len(t, update.Update.Categories, 2)

	assert.Equal(t, messages.AudioPlay{Room: "lobby", Category: "music", Audio: "theme"}, sent[2])
	assert.Equal(t, 1, s.SessionCount())
}

func TestServer_JoinRejected(t *testing.T) {
	s, _ := newTestServer(t, "1.0")

	tests := []struct {
		name string
		msg  messages.JoinRoom
	}{
		{"version mismatch", messages.JoinRoom{Version: "0.9", Room: "lobby"}},
		{"unknown room", messages.JoinRoom{Version: "1.0", Room: "attic"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			peer := &fakePeer{id: tt.name}
			s.onJoin(peer, tt.msg)
			sent := peer.messages()
			require.Len(t, sent, 1)
			assert.IsType(t, messages.RoomRejected{}, sent[0])
		})
	}
	assert.Zero(t, s.SessionCount())
}

func TestServer_BroadcastOnlyReachesRoom(t *testing.T) {
	s, dir := newTestServer(t, "")
	writeManifest(t, dir, "arena", "audios:\n  - {audio_key: hit, files_name: hit.wav}\n")
	require.NoError(t, s.rooms.LoadAll())

	inLobby := &fakePeer{id: "a"}
	inArena := &fakePeer{id: "b"}
	broken := &fakePeer{id: "c"}
	s.onJoin(inLobby, messages.JoinRoom{Room: "lobby"})
	s.onJoin(inArena, messages.JoinRoom{Room: "arena"})
	s.onJoin(broken, messages.JoinRoom{Room: "lobby"})
	broken.fail = true

	sent := s.Broadcast("lobby", messages.AudioPlay{Room: "lobby", Category: "music", Audio: "theme"})
	assert.Equal(t, 1, sent)
	assert.Len(t, inLobby.messages(), 4)
	assert.Len(t, inArena.messages(), 2)
}

func TestServer_LeaveAndDisconnect(t *testing.T) {
	s, _ := newTestServer(t, "")
	a := &fakePeer{id: "a"}
	b := &fakePeer{id: "b"}
	s.onJoin(a, messages.JoinRoom{Room: "lobby"})
	s.onJoin(b, messages.JoinRoom{Room: "lobby"})
	require.Equal(t, 2, s.SessionCount())

	s.onLeave(a, messages.LeaveRoom{Room: "arena"})
	assert.Equal(t, 2, s.SessionCount(), "leaving another room is ignored")
	s.onLeave(a, messages.LeaveRoom{Room: "lobby"})
	assert.Equal(t, 1, s.SessionCount())

	s.onDisconnect(b, nil)
	assert.Zero(t, s.SessionCount())
	assert.Zero(t, s.Broadcast("lobby", messages.LeaveRoom{Room: "lobby"}))
}

func TestServer_ReloadRoomSendsDeleteBeforeUpdate(t *testing.T) {
	s, dir := newTestServer(t, "")
	peer := &fakePeer{id: "a"}
	s.onJoin(peer, messages.JoinRoom{Room: "lobby"})
	joinMessages := len(peer.messages())

	writeManifest(t, dir, "lobby", `
categories:
  - category_key: music
    single_audio: true
  - category_key: sfx
player_config:
  music: 0
audios:
  - audio_key: theme
    files_name: theme_v2.ogg
    category_key: music
`)
	require.NoError(t, s.ReloadRoom("lobby"))

	sent := peer.messages()[joinMessages:]
	require.Len(t, sent, 2)
	del, ok := sent[0].(messages.AudioDelete)
	require.True(t, ok)
	assert.Len(t, del.Delete.Audios, 2)
	update, ok := sent[1].(messages.AudioUpdate)
	require.True(t, ok)
	require.Len(t, update.Update.Audios, 1)
	assert.Equal(t, "theme_v2.ogg", update.Update.Audios[0].FilesName)
	assert.Equal(t, del.Revision, update.Revision)

	writeManifest(t, dir, "lobby", "audios: [")
	assert.Error(t, s.ReloadRoom("lobby"))
	assert.Len(t, peer.messages(), joinMessages+2)
}

func TestServer_ReloadDuringJoinReachesJoiner(t *testing.T) {
	s, dir := newTestServer(t, "")
	writeManifest(t, dir, "lobby", "audios:\n  - {audio_key: rain, files_name: rain.ogg}\n")

	var reloaded sync.WaitGroup
	peer := &fakePeer{id: "a"}
	peer.onSend = func(msg any) {
		if _, ok := msg.(messages.RoomJoined); !ok {
			return
		}
		// a reload racing the join, started before the join replies are out
		reloaded.Add(1)
		go func() {
			defer reloaded.Done()
			assert.NoError(t, s.ReloadRoom("lobby"))
		}()
	}

	s.onJoin(peer, messages.JoinRoom{Room: "lobby"})
	reloaded.Wait()

	sent := peer.messages()
	require.Len(t, sent, 5)
	joined := sent[0].(messages.RoomJoined)
	full := sent[1].(messages.AudioUpdate)
	assert.Equal(t, joined.Revision, full.Revision)
	assert.IsType(t, messages.AudioPlay{}, sent[2])

	del, ok := sent[3].(messages.AudioDelete)
	require.True(t, ok, "the reload reaches the client after its join replies")
	update, ok := sent[4].(messages.AudioUpdate)
	require.True(t, ok)
	assert.Equal(t, joined.Revision+1, update.Revision)
	assert.Equal(t, del.Revision, update.Revision)
	require.Len(t, update.Update.Audios, 1)
	assert.Equal(t, "rain", update.Update.Audios[0].Key)
}

func TestLoop_TickWithoutWatcher(t *testing.T) {
	s, _ := newTestServer(t, "")
	s.loop.tick()
}
