package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
	"github.com/playmatatu/billiards/internal/config"
	"github.com/playmatatu/billiards/internal/game"
)

func main() {
	// The screen belongs to tcell; logs go to PYOOL_LOG when set.
	log.SetOutput(io.Discard)
	if path := os.Getenv("PYOOL_LOG"); path != "" {
		if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			defer f.Close()
			log.SetOutput(f)
		}
	}

	cfg := config.Load()
	table, err := cfg.Table()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid table geometry: %v\n", err)
		os.Exit(1)
	}
	sess, err := game.NewSession(uuid.NewString(), table, cfg.Physics())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start session: %v\n", err)
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()
	screen.EnableMouse()
	screen.HideCursor()

	snd := newSounds()
	defer snd.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	input := game.NewInputQueue()
	ui := newUI(screen, table, input)
	go ui.pollEvents()

	err = game.Run(ctx, sess, input, cfg.FrameHz, func(snap game.Snapshot, events []game.CollisionEvent) {
		ui.draw(snap)
		snd.play(events)
	})
	if err != nil && err != context.Canceled {
		log.Printf("[TUI] Loop stopped: %v", err)
	}
}
