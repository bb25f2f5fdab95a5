package scenes

import (
	"fmt"
	"log"
	"sync"

	"github.com/automoto/doomerang-audio/assets"
	"github.com/automoto/doomerang-audio/audiomgr"
	"github.com/automoto/doomerang-audio/components"
	cfg "github.com/automoto/doomerang-audio/config"
	"github.com/automoto/doomerang-audio/systems"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

// Decoder decodes the first playable file of an audio.
type Decoder interface {
	Decode(paths []string) (*assets.Decoded, error)
}

// RoomScene hosts the playback context of one room: its sounds live in a
// donburi world and its assets are decoded on worker goroutines. Decoded
// assets are handed to the manager from Update, on the game goroutine.
type RoomScene struct {
	key    string
	ecs    *ecs.ECS
	sounds *systems.SoundRegistry
	loader *roomLoader
}

// NewRoomScene creates a room scene playing through ebiten.
func NewRoomScene(key string, decoder Decoder) *RoomScene {
	return newRoomScene(key, decoder, systems.NewSoundFactory)
}

func newRoomScene(key string, decoder Decoder, factory func(func(string) (*assets.Decoded, bool)) systems.SoundFactory) *RoomScene {
	world := donburi.NewWorld()
	loader := newRoomLoader(key, decoder, cfg.Audio.LoadWorkers, cfg.Audio.CompletionBuffer)

	rs := &RoomScene{
		key:    key,
		ecs:    ecs.NewECS(world),
		loader: loader,
	}
	rs.sounds = systems.NewSoundRegistry(world, factory(loader.clip))

	entry := world.Entry(world.Create(components.RoomAudio))
	components.RoomAudio.SetValue(entry, components.RoomAudioData{Room: key})

	rs.ecs.AddSystem(systems.UpdateSounds)
	rs.ecs.AddSystem(rs.updateCounters)
	return rs
}

func (rs *RoomScene) Key() string { return rs.key }

func (rs *RoomScene) Loader() audiomgr.AssetLoader { return rs.loader }

func (rs *RoomScene) Sounds() audiomgr.SoundManager { return rs.sounds }

// Update delivers finished loads, then runs the scene's systems.
func (rs *RoomScene) Update() {
	rs.loader.deliver()
	rs.ecs.Update()
}

func (rs *RoomScene) Draw(screen *ebiten.Image) {
	if !cfg.Debug.ShowContexts {
		return
	}
	entry, ok := components.RoomAudio.First(rs.ecs.World)
	if !ok {
		return
	}
	counters := components.RoomAudio.Get(entry)
	systems.DrawDebugLine(screen, fmt.Sprintf("room %s: %d sounds, %d loaded, %d failed, %d decoding",
		counters.Room, rs.sounds.Len(), counters.Loaded, counters.Failed, counters.PendingDecode), 56)
}

// Close stops the decode workers and releases every sound.
func (rs *RoomScene) Close() {
	rs.loader.close()
	rs.sounds.Close()
}

func (rs *RoomScene) updateCounters(e *ecs.ECS) {
	entry, ok := components.RoomAudio.First(e.World)
	if !ok {
		return
	}
	counters := components.RoomAudio.Get(entry)
	counters.Loaded, counters.Failed, counters.PendingDecode = rs.loader.stats()
}

type loadJob struct {
	key        string
	files      []string
	onComplete func() error
}

type loadResult struct {
	job  loadJob
	clip *assets.Decoded
	err  error
}

// roomLoader implements audiomgr.AssetLoader for a room scene. Load and
// Start are called from the game goroutine; decoding runs on workers.
type roomLoader struct {
	room    string
	decoder Decoder
	workers int

	mu       sync.Mutex
	queued   []loadJob
	inflight int
	closed   bool

	results chan loadResult
	done    chan struct{}

	// game goroutine only
	clips  map[string]*assets.Decoded
	loaded int
	failed int
}

func newRoomLoader(room string, decoder Decoder, workers, buffer int) *roomLoader {
	if workers < 1 {
		workers = 1
	}
	return &roomLoader{
		room:    room,
		decoder: decoder,
		workers: workers,
		results: make(chan loadResult, buffer),
		done:    make(chan struct{}),
		clips:   make(map[string]*assets.Decoded),
	}
}

func (l *roomLoader) Load(key string, files []string, onComplete func() error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.queued = append(l.queued, loadJob{key: key, files: files, onComplete: onComplete})
}

// Start hands the queued jobs to a fresh set of workers. Jobs already
// started are not queued anymore, so calling Start twice does no extra work.
func (l *roomLoader) Start() {
	l.mu.Lock()
	if l.closed || len(l.queued) == 0 {
		l.mu.Unlock()
		return
	}
	jobs := make(chan loadJob, len(l.queued))
	for _, job := range l.queued {
		jobs <- job
	}
	close(jobs)
	workers := min(l.workers, len(l.queued))
	l.inflight += len(l.queued)
	l.queued = nil
	l.mu.Unlock()

	for i := 0; i < workers; i++ {
		go l.work(jobs)
	}
}

func (l *roomLoader) work(jobs <-chan loadJob) {
	for job := range jobs {
		clip, err := l.decoder.Decode(job.files)
		select {
		case l.results <- loadResult{job: job, clip: clip, err: err}:
		case <-l.done:
			return
		}
	}
}

// deliver runs the completion callbacks of every finished job.
func (l *roomLoader) deliver() int {
	delivered := 0
	for {
		select {
		case result := <-l.results:
			l.mu.Lock()
			l.inflight--
			l.mu.Unlock()

			if result.err != nil {
				l.failed++
				log.Printf("[room] %s: decode %q: %v", l.room, result.job.key, result.err)
			} else {
				l.clips[result.job.key] = result.clip
				l.loaded++
			}
			if err := result.job.onComplete(); err != nil {
				log.Printf("[room] %s: complete %q: %v", l.room, result.job.key, err)
			}
			delivered++
		default:
			return delivered
		}
	}
}

func (l *roomLoader) clip(key string) (*assets.Decoded, bool) {
	clip, ok := l.clips[key]
	return clip, ok
}

func (l *roomLoader) stats() (loaded, failed, pending int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded, l.failed, l.inflight + len(l.queued)
}

func (l *roomLoader) close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	l.queued = nil
	close(l.done)
}
