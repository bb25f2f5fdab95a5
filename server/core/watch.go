package core

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const minDebounce = 10 * time.Millisecond

// ManifestWatcher reports rooms whose manifest changed on disk. Bursts of
// writes to one file are coalesced: a room is reported once its file has
// been quiet for the debounce period.
type ManifestWatcher struct {
	store    *RoomStore
	watcher  *fsnotify.Watcher
	debounce time.Duration
	changed  chan string
	stopCh   chan struct{}
	once     sync.Once
}

func NewManifestWatcher(store *RoomStore, debounce time.Duration) (*ManifestWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(store.dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", store.dir, err)
	}
	if debounce < minDebounce {
		debounce = minDebounce
	}
	return &ManifestWatcher{
		store:    store,
		watcher:  w,
		debounce: debounce,
		changed:  make(chan string, 64),
		stopCh:   make(chan struct{}),
	}, nil
}

// Changed delivers room names ready to be reloaded.
func (mw *ManifestWatcher) Changed() <-chan string {
	return mw.changed
}

func (mw *ManifestWatcher) Run() {
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(mw.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-mw.stopCh:
			return
		case event, ok := <-mw.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			room, ok := mw.store.RoomName(event.Name)
			if !ok {
				continue
			}
			pending[room] = time.Now()
		case err, ok := <-mw.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[hotplug] watcher error: %v", err)
		case now := <-ticker.C:
			for room, last := range pending {
				if now.Sub(last) < mw.debounce {
					continue
				}
				delete(pending, room)
				select {
				case mw.changed <- room:
				default:
					log.Printf("[hotplug] change queue full, %q reload delayed", room)
					pending[room] = now
				}
			}
		}
	}
}

func (mw *ManifestWatcher) Stop() {
	mw.once.Do(func() {
		close(mw.stopCh)
		if err := mw.watcher.Close(); err != nil {
			log.Printf("[hotplug] close watcher: %v", err)
		}
	})
}
