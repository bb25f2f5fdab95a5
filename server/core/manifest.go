package core

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/automoto/doomerang-audio/audiomgr"
	"gopkg.in/yaml.v3"
)

// RoomManifest is the audio content of one room, read from <rooms>/<room>.yaml.
type RoomManifest struct {
	Categories   []audiomgr.Category   `yaml:"categories"`
	PlayerConfig map[string]int        `yaml:"player_config,omitempty"`
	Audios       []audiomgr.Descriptor `yaml:"audios"`
	Autoplay     []Autoplay            `yaml:"autoplay,omitempty"`
}

// Autoplay is played for every client right after it joins the room.
type Autoplay struct {
	Category string `yaml:"category"`
	Audio    string `yaml:"audio"`
}

// ParseManifest decodes a manifest, rejecting unknown fields and duplicate keys.
func ParseManifest(data []byte) (*RoomManifest, error) {
	var m RoomManifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadManifest reads and parses a manifest file.
func LoadManifest(path string) (*RoomManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func (m *RoomManifest) validate() error {
	categories := make(map[string]bool, len(m.Categories))
	for i, category := range m.Categories {
		if category.Key == "" {
			return fmt.Errorf("category %d has no category_key", i)
		}
		if categories[category.Key] {
			return fmt.Errorf("duplicate category %q", category.Key)
		}
		categories[category.Key] = true
	}

	audios := make(map[string]bool, len(m.Audios))
	for i, audio := range m.Audios {
		if audio.Key == "" {
			return fmt.Errorf("audio %d has no audio_key", i)
		}
		if audios[audio.Key] {
			return fmt.Errorf("duplicate audio %q", audio.Key)
		}
		if len(audio.Files()) == 0 {
			return fmt.Errorf("audio %q has no files_name", audio.Key)
		}
		if audio.Category != "" && !categories[audio.Category] {
			return fmt.Errorf("audio %q uses unknown category %q", audio.Key, audio.Category)
		}
		audios[audio.Key] = true
	}

	for _, play := range m.Autoplay {
		if !categories[play.Category] {
			return fmt.Errorf("autoplay %q uses unknown category %q", play.Audio, play.Category)
		}
	}
	return nil
}

// FullUpdate is what a joining client receives.
func (m *RoomManifest) FullUpdate() audiomgr.UpdateMessage {
	return audiomgr.UpdateMessage{
		PlayerConfig: m.PlayerConfig,
		Categories:   m.Categories,
		Audios:       m.Audios,
	}
}

// FullDelete removes every audio of the manifest.
func (m *RoomManifest) FullDelete() audiomgr.DeleteMessage {
	return audiomgr.DeleteMessage{Audios: m.Audios}
}

// ManifestDiff returns the messages that move clients from prev to next.
// Changed audios are deleted and loaded again, since clients skip audios
// they already hold. Category changes resend every category; a key's
// single_audio flag cannot change on clients that registered it already.
func ManifestDiff(prev, next *RoomManifest) (update audiomgr.UpdateMessage, del audiomgr.DeleteMessage, changed bool) {
	if prev == nil {
		prev = &RoomManifest{}
	}

	if !reflect.DeepEqual(prev.Categories, next.Categories) {
		update.Categories = next.Categories
		changed = true
	}
	if !reflect.DeepEqual(prev.PlayerConfig, next.PlayerConfig) && next.PlayerConfig != nil {
		update.PlayerConfig = next.PlayerConfig
		changed = true
	}

	old := make(map[string]audiomgr.Descriptor, len(prev.Audios))
	for _, audio := range prev.Audios {
		old[audio.Key] = audio
	}
	kept := make(map[string]bool, len(next.Audios))
	for _, audio := range next.Audios {
		kept[audio.Key] = true
		before, ok := old[audio.Key]
		switch {
		case !ok:
			update.Audios = append(update.Audios, audio)
		case !reflect.DeepEqual(before, audio):
			del.Audios = append(del.Audios, before)
			update.Audios = append(update.Audios, audio)
		}
	}
	for _, audio := range prev.Audios {
		if !kept[audio.Key] {
			del.Audios = append(del.Audios, audio)
		}
	}

	if len(update.Audios) > 0 || len(del.Audios) > 0 {
		changed = true
	}
	return update, del, changed
}
