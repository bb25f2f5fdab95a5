package audiomgr

// playbackContext owns the instances loaded into one scope.
type playbackContext struct {
	id        string
	scene     Scene
	instances map[string]*Instance
	order     []string
}

func newPlaybackContext(id string, scene Scene) *playbackContext {
	return &playbackContext{
		id:        id,
		scene:     scene,
		instances: make(map[string]*Instance),
	}
}

func (c *playbackContext) has(key string) bool {
	_, ok := c.instances[key]
	return ok
}

func (c *playbackContext) add(inst *Instance) {
	key := inst.Data.Key
	if _, ok := c.instances[key]; !ok {
		c.order = append(c.order, key)
	}
	c.instances[key] = inst
}

func (c *playbackContext) remove(key string) (*Instance, bool) {
	inst, ok := c.instances[key]
	if !ok {
		return nil, false
	}
	delete(c.instances, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return inst, true
}

func (c *playbackContext) len() int {
	return len(c.instances)
}

func (c *playbackContext) list() []*Instance {
	out := make([]*Instance, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, c.instances[key])
	}
	return out
}

// find resolves key as an audio key first, then as a marker name. Markers
// resolve in insertion order, so the first loaded instance wins.
func (c *playbackContext) find(key string) (Match, bool) {
	if inst, ok := c.instances[key]; ok {
		return Match{Instance: inst, Scope: c.id}, true
	}
	for _, k := range c.order {
		inst := c.instances[k]
		if inst.Handle != nil && inst.Handle.HasMarker(key) {
			return Match{Instance: inst, Marker: key, Scope: c.id}, true
		}
	}
	return Match{}, false
}

func (c *playbackContext) stopAll() {
	for _, inst := range c.instances {
		if inst.Handle != nil && inst.Handle.IsPlaying() {
			inst.Handle.Stop()
		}
	}
}
