package core

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/automoto/doomerang-audio/shared/messages"
)

type roomState struct {
	manifest *RoomManifest
	revision uint64
}

// RoomStore holds the current manifest of every room found in a directory.
type RoomStore struct {
	dir string
	ext string

	mu    sync.RWMutex
	rooms map[string]*roomState
}

func NewRoomStore(dir, ext string) *RoomStore {
	return &RoomStore{
		dir:   dir,
		ext:   ext,
		rooms: make(map[string]*roomState),
	}
}

// RoomName returns the room a manifest path belongs to, or false for files
// that are not manifests.
func (s *RoomStore) RoomName(path string) (string, bool) {
	base := filepath.Base(path)
	if filepath.Ext(base) != s.ext || strings.HasPrefix(base, ".") {
		return "", false
	}
	return strings.TrimSuffix(base, s.ext), true
}

func (s *RoomStore) path(room string) string {
	return filepath.Join(s.dir, room+s.ext)
}

// LoadAll reads every manifest of the directory. Broken manifests are
// logged and skipped.
func (s *RoomStore) LoadAll() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read rooms dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		room, ok := s.RoomName(entry.Name())
		if !ok {
			continue
		}
		if _, _, err := s.Reload(room); err != nil {
			log.Printf("[rooms] skipping %q: %v", room, err)
		}
	}
	return nil
}

// Reload reads a room's manifest again and returns the messages clients of
// the room need. Nothing is returned when the manifest did not change. A
// removed manifest deletes every audio of the room.
func (s *RoomStore) Reload(room string) (*messages.AudioUpdate, *messages.AudioDelete, error) {
	next, err := LoadManifest(s.path(room))
	if errors.Is(err, fs.ErrNotExist) {
		next, err = nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.rooms[room]
	if !ok {
		state = &roomState{}
	}
	if next == nil {
		if !ok || state.manifest == nil {
			return nil, nil, nil
		}
		removed := state.manifest
		state.manifest = nil
		state.revision++
		log.Printf("[rooms] %q removed", room)
		return nil, &messages.AudioDelete{
			Room:     room,
			Revision: state.revision,
			Delete:   removed.FullDelete(),
		}, nil
	}

	update, del, changed := ManifestDiff(state.manifest, next)
	state.manifest = next
	s.rooms[room] = state
	if !changed {
		return nil, nil, nil
	}
	state.revision++
	log.Printf("[rooms] %q at revision %d: %d audios loaded, %d deleted",
		room, state.revision, len(update.Audios), len(del.Audios))

	var updateMsg *messages.AudioUpdate
	var deleteMsg *messages.AudioDelete
	if len(del.Audios) > 0 {
		deleteMsg = &messages.AudioDelete{Room: room, Revision: state.revision, Delete: del}
	}
	if update.Categories != nil || update.PlayerConfig != nil || len(update.Audios) > 0 {
		updateMsg = &messages.AudioUpdate{Room: room, Revision: state.revision, Update: update}
	}
	return updateMsg, deleteMsg, nil
}

// Manifest returns a room's manifest and revision.
func (s *RoomStore) Manifest(room string) (*RoomManifest, uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.rooms[room]
	if !ok || state.manifest == nil {
		return nil, 0, false
	}
	return state.manifest, state.revision, true
}

// Rooms returns the known room names, sorted.
func (s *RoomStore) Rooms() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.rooms))
	for name, state := range s.rooms {
		if state.manifest != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
