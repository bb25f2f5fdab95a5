package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/automoto/doomerang-audio/config"
	"github.com/automoto/doomerang-audio/server/core"
)

func main() {
	port := flag.Uint("port", config.Server.Port, "Server port")
	tickRate := flag.Int("tickrate", config.Server.TickRate, "Reload checks per second")
	name := flag.String("name", config.Server.Name, "Server display name")
	version := flag.String("version", "", "Required client version (empty = accept any)")
	roomsDir := flag.String("rooms", config.Server.RoomsDir, "Directory of room manifests")
	debounce := flag.Duration("debounce", config.Server.DebounceTime, "Quiet period before a changed manifest is reloaded")
	noWatch := flag.Bool("nowatch", false, "Do not reload manifests when they change")
	flag.Parse()

	rooms := core.NewRoomStore(*roomsDir, config.Server.ManifestExt)
	if err := rooms.LoadAll(); err != nil {
		log.Fatalf("Failed to load rooms: %v", err)
	}
	log.Printf("Loaded rooms: %v", rooms.Rooms())

	var watcher *core.ManifestWatcher
	if !*noWatch {
		w, err := core.NewManifestWatcher(rooms, *debounce)
		if err != nil {
			log.Fatalf("Failed to watch rooms: %v", err)
		}
		watcher = w
	}

	server := core.NewServer(*tickRate, *name, *version, rooms, watcher)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Shutting down server...")
		server.Stop()
		os.Exit(0)
	}()

	log.Printf("Starting audio server %q on port %d (tick rate: %d/s, version: %s)",
		*name, *port, *tickRate, *version)
	if err := server.Start(*port); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
