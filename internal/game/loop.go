package game

import (
	"context"
	"time"
)

// Stepper turns elapsed wall time into a whole number of fixed physics steps.
// Leftover time carries over to the next frame; a backlog larger than
// maxSteps is dropped so a stalled frame cannot trigger a catch-up spiral.
type Stepper struct {
	dt       time.Duration
	maxSteps int
	acc      time.Duration
}

func NewStepper(s Settings) *Stepper {
	maxSteps := s.MaxStepsPerFrame
	if maxSteps <= 0 {
		maxSteps = DefaultMaxStepsPerFrame
	}
	return &Stepper{
		dt:       time.Duration(s.Dt() * float64(time.Second)),
		maxSteps: maxSteps,
	}
}

// Advance adds elapsed time and returns how many steps to run now.
func (st *Stepper) Advance(elapsed time.Duration) int {
	if elapsed < 0 {
		elapsed = 0
	}
	st.acc += elapsed
	n := int(st.acc / st.dt)
	if n > st.maxSteps {
		st.acc = 0
		return st.maxSteps
	}
	st.acc -= time.Duration(n) * st.dt
	return n
}

// Dt is the fixed step length.
func (st *Stepper) Dt() time.Duration {
	return st.dt
}

// RunFrame steps the session n times. Edges and quit apply to the first step
// only; the aim point is sticky across all of them.
func RunFrame(s *Session, in Input, n int) {
	for i := 0; i < n; i++ {
		s.Step(in)
		in.Edges = nil
		in.Quit = false
	}
}

// FrameFunc receives the state after each frame and the events raised during it.
type FrameFunc func(snap Snapshot, events []CollisionEvent)

// Run drives a single session at frameHz until ctx is cancelled or a quit
// arrives through the queue. Input is only drained on frames that step, so no
// edge is lost to a frame that ran zero steps.
func Run(ctx context.Context, s *Session, q *InputQueue, frameHz float64, onFrame FrameFunc) error {
	if frameHz <= 0 {
		frameHz = s.Settings().StepHz
	}
	stepper := NewStepper(s.Settings())
	ticker := time.NewTicker(time.Duration(float64(time.Second) / frameHz))
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			n := stepper.Advance(now.Sub(last))
			last = now
			if n > 0 {
				RunFrame(s, q.Drain(), n)
			}
			if onFrame != nil {
				onFrame(s.Snapshot(), s.DrainEvents())
			}
			if s.Done() {
				return nil
			}
		}
	}
}
