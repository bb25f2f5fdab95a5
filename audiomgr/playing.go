package audiomgr

import "log"

// PlayingState is what a category tracks in one scope: a SinglePlaying for
// single-track categories, a MultiPlaying otherwise.
type PlayingState interface {
	empty() bool
	forget(inst *Instance)
}

// SinglePlaying holds the one relevant instance of a single-track category.
type SinglePlaying struct {
	Instance *Instance
}

func (s *SinglePlaying) empty() bool { return s.Instance == nil }

func (s *SinglePlaying) forget(inst *Instance) {
	if s.Instance == inst {
		s.Instance = nil
	}
}

// MultiPlaying holds the active instances of a multi-track category.
type MultiPlaying struct {
	Instances map[string]*Instance
	order     []string
}

func newMultiPlaying() *MultiPlaying {
	return &MultiPlaying{Instances: make(map[string]*Instance)}
}

func (s *MultiPlaying) empty() bool { return len(s.Instances) == 0 }

func (s *MultiPlaying) add(inst *Instance) {
	key := inst.Data.Key
	if _, ok := s.Instances[key]; !ok {
		s.order = append(s.order, key)
	}
	s.Instances[key] = inst
}

func (s *MultiPlaying) forget(inst *Instance) {
	for key, tracked := range s.Instances {
		if tracked != inst {
			continue
		}
		delete(s.Instances, key)
		for i, k := range s.order {
			if k == key {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
}

func (s *MultiPlaying) each(fn func(*Instance)) {
	for _, key := range s.order {
		fn(s.Instances[key])
	}
}

// playingBucket is the playing state of one category across scopes.
type playingBucket struct {
	single bool
	scopes map[string]PlayingState
	order  []string
}

func newPlayingBucket(single bool) *playingBucket {
	return &playingBucket{single: single, scopes: make(map[string]PlayingState)}
}

func (b *playingBucket) played() bool {
	for _, state := range b.scopes {
		if state != nil && !state.empty() {
			return true
		}
	}
	return false
}

// state returns the scope's state, creating the variant that matches the
// category kind on first use.
func (b *playingBucket) state(scope string) PlayingState {
	if state, ok := b.scopes[scope]; ok {
		return state
	}
	var state PlayingState
	if b.single {
		state = &SinglePlaying{}
	} else {
		state = newMultiPlaying()
	}
	b.scopes[scope] = state
	b.order = append(b.order, scope)
	return state
}

func (b *playingBucket) dropScope(scope string) {
	if _, ok := b.scopes[scope]; !ok {
		return
	}
	delete(b.scopes, scope)
	for i, s := range b.order {
		if s == scope {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

func (b *playingBucket) forget(inst *Instance) {
	for _, state := range b.scopes {
		if state != nil {
			state.forget(inst)
		}
	}
}

// applyToggle plays or stops live instances of a category. A single-track
// instance is played again on enable; multi-track instances are only stopped
// on disable and wait for the next play request to resume.
func (m *Manager) applyToggle(category Category, bucket *playingBucket, enabled bool) bool {
	for _, scope := range bucket.order {
		switch state := bucket.scopes[scope].(type) {
		case *SinglePlaying:
			if !category.SingleAudio {
				return false
			}
			inst := state.Instance
			if inst == nil || inst.Handle == nil {
				continue
			}
			if enabled {
				inst.Handle.Play()
			} else {
				inst.Handle.Stop()
			}
			inst.Handle.SetMute(!enabled)
		case *MultiPlaying:
			if category.SingleAudio {
				return false
			}
			state.each(func(inst *Instance) {
				if inst == nil || inst.Handle == nil {
					return
				}
				if !enabled {
					inst.Handle.Stop()
				}
				inst.Handle.SetMute(!enabled)
			})
		default:
			return false
		}
	}
	return true
}

// Play resolves audioKey in contextID, records it as the category's playing
// instance and starts it. A disabled category records the instance muted
// without starting it. For single-track categories the previous instance of
// the same scope is stopped.
func (m *Manager) Play(categoryKey, audioKey, contextID string) bool {
	bucket, ok := m.playing[categoryKey]
	if !ok {
		log.Printf("[audio] play %q: %v: %q", audioKey, ErrUnknownCategory, categoryKey)
		return false
	}
	match, ok := m.FindAudio(audioKey, contextID)
	if !ok {
		log.Printf("[audio] play: audio %q not found in %q", audioKey, contextID)
		return false
	}
	inst := match.Instance
	if inst.Handle == nil {
		return false
	}

	switch state := bucket.state(match.Scope).(type) {
	case *SinglePlaying:
		if prev := state.Instance; prev != nil && prev != inst && prev.Handle != nil && prev.Handle.IsPlaying() {
			prev.Handle.Stop()
		}
		state.Instance = inst
	case *MultiPlaying:
		state.add(inst)
	default:
		return false
	}

	enabled := m.Enabled(categoryKey)
	inst.Handle.SetMute(!enabled)
	if !enabled {
		return true
	}
	if match.Marker != "" {
		if err := inst.Handle.PlayMarker(match.Marker); err != nil {
			log.Printf("[audio] play marker %q of %q: %v", match.Marker, inst.Data.Key, err)
			return false
		}
		return true
	}
	inst.Handle.Play()
	return true
}

// Playing returns the tracked state of a category in a scope.
func (m *Manager) Playing(categoryKey, contextID string) (PlayingState, bool) {
	bucket, ok := m.playing[categoryKey]
	if !ok {
		return nil, false
	}
	state, ok := bucket.scopes[contextID]
	return state, ok
}

func (m *Manager) forgetPlaying(inst *Instance) {
	for _, bucket := range m.playing {
		bucket.forget(inst)
	}
}
