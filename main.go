package main

import (
	"flag"
	"image"
	"log"
	"os"

	"github.com/automoto/doomerang-audio/assets"
	"github.com/automoto/doomerang-audio/audiomgr"
	"github.com/automoto/doomerang-audio/config"
	"github.com/automoto/doomerang-audio/fonts"
	"github.com/automoto/doomerang-audio/network"
	"github.com/automoto/doomerang-audio/scenes"
	"github.com/automoto/doomerang-audio/systems"
	"github.com/hajimehoshi/ebiten/v2"
)

type Scene interface {
	Update()
	Draw(screen *ebiten.Image)
}

type Game struct {
	bounds image.Rectangle
	scene  Scene
}

func NewGame(scene Scene) *Game {
	return &Game{
		bounds: image.Rectangle{},
		scene:  scene,
	}
}

func (g *Game) Update() error {
	g.scene.Update()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.scene.Draw(screen)
}

func (g *Game) Layout(width, height int) (int, int) {
	g.bounds = image.Rect(0, 0, config.C.Width, config.C.Height)
	return config.C.Width, config.C.Height
}

func main() {
	address := flag.String("server", config.Net.ServerAddress, "Room server address")
	room := flag.String("room", config.Net.Room, "Room to join")
	name := flag.String("name", config.Net.PlayerName, "Player name")
	assetsDir := flag.String("assets", ".", "Directory holding the audio bucket")
	showContexts := flag.Bool("contexts", config.Debug.ShowContexts, "Draw per-room load counters")
	flag.Parse()

	config.Net.ServerAddress = *address
	config.Net.Room = *room
	config.Net.PlayerName = *name
	config.Debug.ShowContexts = *showContexts

	if err := fonts.LoadDefaults(); err != nil {
		log.Printf("Warning: Could not load fonts: %v", err)
	}

	ebiten.SetWindowSize(config.C.Width, config.C.Height)
	ebiten.SetWindowTitle(config.C.Title)

	// Persistence is optional: without it toggles just reset on restart
	var store audiomgr.PlayerConfigStore
	if settings, err := systems.OpenSettingsStore(config.Net.AppName); err == nil {
		store = settings
	}

	loader := assets.NewAudioLoader(os.DirFS(*assetsDir), config.Audio.SampleRate,
		config.Audio.CacheTTL, config.Audio.CacheCleanup)
	client := network.NewClient(network.Buffers{Plays: config.Net.PlayBuffer})

	session := scenes.NewSessionScene(client, loader, store)
	defer session.Close()

	if err := ebiten.RunGame(NewGame(session)); err != nil {
		log.Fatal(err)
	}
}
