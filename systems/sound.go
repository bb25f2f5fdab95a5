package systems

import (
	"bytes"
	"fmt"
	"time"

	"github.com/automoto/doomerang-audio/assets"
	"github.com/automoto/doomerang-audio/audiomgr"
	cfg "github.com/automoto/doomerang-audio/config"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
)

// Sound is an ebiten audio.Player backed handle for one decoded clip.
// Players are created on demand: a looping player for the whole clip, a
// plain one for markers so the marker end can be enforced in Update.
//
// Rate and Detune are kept in the configuration but not applied, ebiten
// players have no pitch control.
type Sound struct {
	key     string
	context *audio.Context
	clip    *assets.Decoded
	config  audiomgr.SoundConfig

	player      *audio.Player
	playerLoops bool

	markers map[string]audiomgr.MarkerConfig
	marker  string // active marker, empty while the whole clip plays

	muted        bool
	delayTicks   int
	pendingStart func()
}

// NewSound creates a stopped handle.
func NewSound(context *audio.Context, key string, clip *assets.Decoded, config audiomgr.SoundConfig) *Sound {
	return &Sound{
		key:     key,
		context: context,
		clip:    clip,
		config:  config,
		markers: make(map[string]audiomgr.MarkerConfig),
		muted:   config.Mute,
	}
}

func (s *Sound) Key() string { return s.key }

// Play starts the whole clip from the configured seek offset.
func (s *Sound) Play() {
	s.marker = ""
	s.schedule(s.config.Delay, func() {
		if err := s.ensurePlayer(s.config.Loop); err != nil {
			return
		}
		s.seek(s.config.Seek)
		s.applyVolume()
		s.player.Play()
	})
}

// PlayMarker plays a named region of the clip.
func (s *Sound) PlayMarker(name string) error {
	marker, ok := s.markers[name]
	if !ok {
		return fmt.Errorf("sound %q has no marker %q", s.key, name)
	}
	s.marker = name
	s.schedule(marker.Delay, func() {
		if err := s.ensurePlayer(false); err != nil {
			return
		}
		s.seek(marker.Start + marker.Seek)
		s.applyVolume()
		s.player.Play()
	})
	return nil
}

// Stop pauses the player and rewinds it. A pending delayed start is cancelled.
func (s *Sound) Stop() {
	s.pendingStart = nil
	s.delayTicks = 0
	if s.player == nil {
		return
	}
	s.player.Pause()
	if err := s.player.Rewind(); err != nil {
		logSoundError(s.key, "rewind", err)
	}
}

// IsPlaying reports an audible player or a delayed start still pending.
func (s *Sound) IsPlaying() bool {
	if s.pendingStart != nil {
		return true
	}
	return s.player != nil && s.player.IsPlaying()
}

func (s *Sound) SetMute(muted bool) {
	s.muted = muted
	s.applyVolume()
}

func (s *Sound) Muted() bool { return s.muted }

func (s *Sound) AddMarker(marker audiomgr.MarkerConfig) {
	s.markers[marker.Name] = marker
}

func (s *Sound) HasMarker(name string) bool {
	_, ok := s.markers[name]
	return ok
}

// Update runs delayed starts and enforces the end of the active marker.
// It is called once per tick by UpdateSounds.
func (s *Sound) Update() {
	if s.pendingStart != nil {
		s.delayTicks--
		if s.delayTicks <= 0 {
			start := s.pendingStart
			s.pendingStart = nil
			start()
		}
		return
	}

	if s.player == nil || !s.player.IsPlaying() {
		return
	}
	switch s.markerStep(s.player.Position()) {
	case markerRewind:
		s.seek(s.markers[s.marker].Start)
	case markerEnd:
		s.player.Pause()
	}
}

type markerAction int

const (
	markerContinue markerAction = iota
	markerRewind
	markerEnd
)

// markerStep decides what happens to the active marker at position.
func (s *Sound) markerStep(position time.Duration) markerAction {
	if s.marker == "" {
		return markerContinue
	}
	marker := s.markers[s.marker]
	if position < seconds(marker.Start+marker.Duration) {
		return markerContinue
	}
	if marker.Loop {
		return markerRewind
	}
	return markerEnd
}

// Close releases the player.
func (s *Sound) Close() error {
	s.pendingStart = nil
	if s.player == nil {
		return nil
	}
	err := s.player.Close()
	s.player = nil
	return err
}

func (s *Sound) schedule(delay float64, start func()) {
	if delay > cfg.Sound.MaxDelay {
		delay = cfg.Sound.MaxDelay
	}
	ticks := int(delay * float64(ebiten.TPS()))
	if ticks <= 0 {
		s.pendingStart = nil
		start()
		return
	}
	s.delayTicks = ticks
	s.pendingStart = start
}

func (s *Sound) ensurePlayer(loop bool) error {
	if s.player != nil && s.playerLoops == loop {
		return nil
	}
	if s.player != nil {
		_ = s.player.Close()
		s.player = nil
	}

	var (
		player *audio.Player
		err    error
	)
	if loop {
		stream := audio.NewInfiniteLoop(bytes.NewReader(s.clip.PCM), int64(len(s.clip.PCM)))
		player, err = s.context.NewPlayer(stream)
	} else {
		player = s.context.NewPlayerFromBytes(s.clip.PCM)
	}
	if err != nil {
		logSoundError(s.key, "create player", err)
		return err
	}
	s.player = player
	s.playerLoops = loop
	return nil
}

func (s *Sound) seek(offset float64) {
	if offset <= 0 && s.player.Position() == 0 {
		return
	}
	if err := s.player.SetPosition(seconds(offset)); err != nil {
		logSoundError(s.key, "seek", err)
	}
}

func (s *Sound) applyVolume() {
	if s.player == nil {
		return
	}
	if s.muted {
		s.player.SetVolume(0)
		return
	}
	volume := s.config.Volume
	if s.marker != "" {
		volume = s.markers[s.marker].Volume
	}
	s.player.SetVolume(volume)
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
