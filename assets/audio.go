package assets

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
	"github.com/patrickmn/go-cache"
)

// ErrNoPlayableFile is returned when none of an audio's files could be decoded.
var ErrNoPlayableFile = errors.New("no playable audio file")

// Decoded is a fully decoded clip: 16-bit little-endian stereo PCM at the
// loader's sample rate.
type Decoded struct {
	Path       string
	PCM        []byte
	SampleRate int
}

// Duration returns the playback length of the clip.
func (d *Decoded) Duration() time.Duration {
	if d.SampleRate <= 0 {
		return 0
	}
	frames := len(d.PCM) / bytesPerFrame
	return time.Duration(frames) * time.Second / time.Duration(d.SampleRate)
}

const bytesPerFrame = 4

// AudioLoader reads audio files from a file system and decodes them.
// Decoded clips are cached by path; entries expire after the configured TTL.
// AudioLoader is safe for concurrent use.
type AudioLoader struct {
	files      fs.FS
	sampleRate int
	cache      *cache.Cache
}

// NewAudioLoader creates a loader reading from files. A zero ttl keeps
// decoded clips until Forget is called.
func NewAudioLoader(files fs.FS, sampleRate int, ttl, cleanup time.Duration) *AudioLoader {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &AudioLoader{
		files:      files,
		sampleRate: sampleRate,
		cache:      cache.New(ttl, cleanup),
	}
}

// Decode returns the first of paths that can be read and decoded. Files
// with an unsupported extension or a read error are skipped.
func (l *AudioLoader) Decode(paths []string) (*Decoded, error) {
	var errs []error
	for _, p := range paths {
		decoded, err := l.decodeFile(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		return decoded, nil
	}
	if len(errs) == 0 {
		return nil, ErrNoPlayableFile
	}
	return nil, fmt.Errorf("%w: %w", ErrNoPlayableFile, errors.Join(errs...))
}

// Forget drops a cached clip.
func (l *AudioLoader) Forget(p string) {
	l.cache.Delete(p)
}

// Cached reports how many decoded clips are held.
func (l *AudioLoader) Cached() int {
	return l.cache.ItemCount()
}

func (l *AudioLoader) decodeFile(p string) (*Decoded, error) {
	if cached, ok := l.cache.Get(p); ok {
		return cached.(*Decoded), nil
	}

	data, err := fs.ReadFile(l.files, p)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio file %s: %w", p, err)
	}

	pcm, err := l.decodeBytes(p, data)
	if err != nil {
		return nil, err
	}

	decoded := &Decoded{Path: p, PCM: pcm, SampleRate: l.sampleRate}
	l.cache.Set(p, decoded, cache.DefaultExpiration)
	return decoded, nil
}

func (l *AudioLoader) decodeBytes(p string, data []byte) ([]byte, error) {
	var stream io.Reader
	var err error

	ext := strings.ToLower(path.Ext(p))
	switch ext {
	case ".ogg":
		stream, err = vorbis.DecodeWithSampleRate(l.sampleRate, bytes.NewReader(data))
	case ".wav":
		stream, err = wav.DecodeWithSampleRate(l.sampleRate, bytes.NewReader(data))
	case ".mp3":
		stream, err = mp3.DecodeWithSampleRate(l.sampleRate, bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unsupported audio format: %s", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s %s: %w", strings.TrimPrefix(ext, "."), p, err)
	}

	decoded, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("failed to read decoded audio %s: %w", p, err)
	}
	return decoded, nil
}
