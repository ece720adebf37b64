package main

import (
	"log"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"github.com/playmatatu/billiards/internal/game"
)

const clickLength = 40 * time.Millisecond

// sounds plays a short sine click per collision kind. Audio is optional.
type sounds struct {
	rate    beep.SampleRate
	enabled bool
}

func newSounds() *sounds {
	s := &sounds{rate: beep.SampleRate(44100)}
	if err := speaker.Init(s.rate, s.rate.N(time.Second/20)); err != nil {
		log.Printf("[TUI] Audio initialization failed: %v", err)
		return s
	}
	s.enabled = true
	return s
}

func clickTone(eventType string) float64 {
	switch eventType {
	case game.EventBall:
		return 880
	case game.EventCushion:
		return 440
	case game.EventPocket:
		return 220
	case game.EventRespawn:
		return 660
	}
	return 0
}

// clickVolume is the beep volume exponent for an impact speed.
func clickVolume(speed float64) float64 {
	switch {
	case speed <= 0:
		return 0
	case speed < 100:
		return -3
	case speed < 400:
		return -1.5
	default:
		return 0
	}
}

// play sounds at most one click per event kind per frame.
func (s *sounds) play(events []game.CollisionEvent) {
	if !s.enabled {
		return
	}
	played := make(map[string]bool, 4)
	for _, ev := range events {
		if played[ev.Type] {
			continue
		}
		freq := clickTone(ev.Type)
		if freq == 0 {
			continue
		}
		played[ev.Type] = true

		sine, err := generators.SineTone(s.rate, freq)
		if err != nil {
			continue
		}
		volume := &effects.Volume{
			Streamer: beep.Take(s.rate.N(clickLength), sine),
			Base:     2,
			Volume:   clickVolume(ev.Speed),
		}
		speaker.Play(volume)
	}
}

func (s *sounds) close() {
	if s.enabled {
		speaker.Close()
	}
}
