package store

import (
	"context"
	"log"
	"time"

	"github.com/playmatatu/billiards/internal/game"
)

// Ledger is the write side of Store.
type Ledger interface {
	CreateSession(ctx context.Context, id string, createdAt time.Time) error
	InsertShot(ctx context.Context, sessionID string, shot game.ShotRecord) error
	CompleteSession(ctx context.Context, id string, outcome game.Outcome, potted []int) error
}

type jobKind int

const (
	jobStart jobKind = iota
	jobShot
	jobEnd
)

type job struct {
	kind      jobKind
	sessionID string
	at        time.Time
	shot      game.ShotRecord
	outcome   game.Outcome
	potted    []int
}

// Recorder queues ledger writes from the tick loop and applies them in order
// on its own goroutine. When the queue is full the write is dropped and logged.
type Recorder struct {
	ledger Ledger
	jobs   chan job
}

func NewRecorder(ledger Ledger, buffer int) *Recorder {
	if buffer <= 0 {
		buffer = 1024
	}
	return &Recorder{ledger: ledger, jobs: make(chan job, buffer)}
}

func (r *Recorder) SessionStarted(sessionID string, startedAt time.Time) {
	r.enqueue(job{kind: jobStart, sessionID: sessionID, at: startedAt})
}

func (r *Recorder) ShotTaken(sessionID string, shot game.ShotRecord) {
	r.enqueue(job{kind: jobShot, sessionID: sessionID, shot: shot})
}

func (r *Recorder) SessionEnded(sessionID string, outcome game.Outcome, potted []int) {
	r.enqueue(job{kind: jobEnd, sessionID: sessionID, outcome: outcome, potted: potted})
}

func (r *Recorder) enqueue(j job) {
	select {
	case r.jobs <- j:
	default:
		log.Printf("[STORE] Recorder queue full; dropping write for session %s", j.sessionID)
	}
}

// Run applies queued writes until ctx is cancelled, then flushes what is left
// with a short deadline.
func (r *Recorder) Run(ctx context.Context) error {
	log.Println("[STORE] Recorder started")
	for {
		select {
		case <-ctx.Done():
			r.flush()
			log.Println("[STORE] Recorder stopping")
			return ctx.Err()
		case j := <-r.jobs:
			r.apply(ctx, j)
		}
	}
}

func (r *Recorder) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case j := <-r.jobs:
			r.apply(ctx, j)
		default:
			return
		}
	}
}

func (r *Recorder) apply(ctx context.Context, j job) {
	var err error
	switch j.kind {
	case jobStart:
		err = r.ledger.CreateSession(ctx, j.sessionID, j.at)
	case jobShot:
		err = r.ledger.InsertShot(ctx, j.sessionID, j.shot)
	case jobEnd:
		err = r.ledger.CompleteSession(ctx, j.sessionID, j.outcome, j.potted)
	}
	if err != nil {
		log.Printf("[STORE] Failed to record session %s: %v", j.sessionID, err)
	}
}
