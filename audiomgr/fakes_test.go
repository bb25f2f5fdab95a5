package audiomgr

import (
	"context"
	"errors"
	"fmt"
)

type fakeSound struct {
	key     string
	cfg     SoundConfig
	playing bool
	muted   bool
	markers map[string]MarkerConfig
	lastMk  string
}

func (s *fakeSound) Key() string { return s.key }
func (s *fakeSound) Play() {
	s.playing = true
	s.lastMk = ""
}
func (s *fakeSound) PlayMarker(name string) error {
	if _, ok := s.markers[name]; !ok {
		return fmt.Errorf("no marker %q", name)
	}
	s.playing = true
	s.lastMk = name
	return nil
}
func (s *fakeSound) Stop() { s.playing = false }
func (s *fakeSound) IsPlaying() bool { return s.playing }
func (s *fakeSound) SetMute(muted bool) { s.muted = muted }
func (s *fakeSound) Muted() bool { return s.muted }
func (s *fakeSound) AddMarker(cfg MarkerConfig) { s.markers[cfg.Name] = cfg }
func (s *fakeSound) HasMarker(name string) bool {
	_, ok := s.markers[name]
	return ok
}

type fakeSounds struct {
	sounds  []Playable
	failAdd bool
}

func (f *fakeSounds) Add(key string, cfg SoundConfig) (Playable, error) {
	if f.failAdd {
		return nil, errors.New("decoder unavailable")
	}
	s := &fakeSound{key: key, cfg: cfg, muted: cfg.Mute, markers: make(map[string]MarkerConfig)}
	f.sounds = append(f.sounds, s)
	return s, nil
}

func (f *fakeSounds) Sounds() []Playable { return f.sounds }

func (f *fakeSounds) Remove(p Playable) bool {
	for i, s := range f.sounds {
		if s == p {
			f.sounds = append(f.sounds[:i], f.sounds[i+1:]...)
			return true
		}
	}
	return false
}

type queuedLoad struct {
	key        string
	files      []string
	onComplete func() error
}

// fakeLoader queues loads; tests decide when and in which order they complete.
type fakeLoader struct {
	queued []queuedLoad
	starts int
}

func (l *fakeLoader) Load(key string, files []string, onComplete func() error) {
	l.queued = append(l.queued, queuedLoad{key: key, files: files, onComplete: onComplete})
}

func (l *fakeLoader) Start() { l.starts++ }

// complete fires the queued load at index i.
func (l *fakeLoader) complete(i int) error {
	return l.queued[i].onComplete()
}

func (l *fakeLoader) completeAll() error {
	for i := range l.queued {
		if err := l.complete(i); err != nil {
			return err
		}
	}
	return nil
}

type fakeScene struct {
	key    string
	loader *fakeLoader
	sounds *fakeSounds
}

func newFakeScene(key string) *fakeScene {
	return &fakeScene{key: key, loader: &fakeLoader{}, sounds: &fakeSounds{}}
}

func (s *fakeScene) Key() string { return s.key }
func (s *fakeScene) Loader() AssetLoader { return s.loader }
func (s *fakeScene) Sounds() SoundManager { return s.sounds }

type fakeResolver map[string]Scene

func (r fakeResolver) Scene(room string) (Scene, bool) {
	s, ok := r[room]
	return s, ok
}

type emitted struct {
	name    string
	payload any
}

type recordingBus struct {
	events []emitted
	failOn string
}

func (b *recordingBus) Emit(_ context.Context, name string, payload any) error {
	b.events = append(b.events, emitted{name: name, payload: payload})
	if b.failOn == name {
		return errors.New("listener failed")
	}
	return nil
}

func (b *recordingBus) count(name string) int {
	n := 0
	for _, e := range b.events {
		if e.name == name {
			n++
		}
	}
	return n
}

func (b *recordingBus) names() []string {
	out := make([]string, 0, len(b.events))
	for _, e := range b.events {
		out = append(out, e.name)
	}
	return out
}

type memoryStore struct {
	saved   map[string]int
	saves   int
	loadErr error
}

func (s *memoryStore) LoadPlayerConfig() (map[string]int, error) {
	return s.saved, s.loadErr
}

func (s *memoryStore) SavePlayerConfig(cfg map[string]int) error {
	s.saved = cfg
	s.saves++
	return nil
}
