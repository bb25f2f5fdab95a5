package core

import (
	"log"
	"time"
)

// Loop applies manifest changes at a fixed tick rate, so bursts of reloads
// reach clients in one batch per tick.
type Loop struct {
	server   *Server
	tickRate int
	stopChan chan struct{}
}

func NewLoop(server *Server, tickRate int) *Loop {
	if tickRate <= 0 {
		tickRate = 1
	}
	return &Loop{
		server:   server,
		tickRate: tickRate,
		stopChan: make(chan struct{}),
	}
}

func (l *Loop) Run() {
	ticker := time.NewTicker(time.Second / time.Duration(l.tickRate))
	defer ticker.Stop()

	log.Printf("Reload loop started at %d ticks/second", l.tickRate)

	for {
		select {
		case <-l.stopChan:
			log.Println("Reload loop stopped")
			return
		case <-ticker.C:
			l.tick()
		}
	}
}

func (l *Loop) Stop() {
	close(l.stopChan)
}

func (l *Loop) tick() {
	if l.server.watcher == nil {
		return
	}
	for {
		select {
		case room := <-l.server.watcher.Changed():
			if err := l.server.ReloadRoom(room); err != nil {
				log.Printf("Reload error: %v", err)
			}
		default:
			return
		}
	}
}
