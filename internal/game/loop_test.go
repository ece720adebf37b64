package game

import (
	"context"
	"testing"
	"time"
)

func TestStepperCarriesRemainder(t *testing.T) {
	st := NewStepper(DefaultSettings())
	dt := st.Dt()

	if n := st.Advance(dt / 2); n != 0 {
		t.Errorf("half a step: expected 0, got %d", n)
	}
	if n := st.Advance(dt - dt/2); n != 1 {
		t.Errorf("two halves: expected 1, got %d", n)
	}
	if n := st.Advance(3*dt + dt/4); n != 3 {
		t.Errorf("expected 3, got %d", n)
	}
	if n := st.Advance(dt - dt/4); n != 1 {
		t.Errorf("remainder should complete a step, got %d", n)
	}
}

func TestStepperCapsBacklog(t *testing.T) {
	s := DefaultSettings()
	s.MaxStepsPerFrame = 4
	st := NewStepper(s)

	if n := st.Advance(time.Second); n != 4 {
		t.Errorf("expected cap of 4, got %d", n)
	}
	if n := st.Advance(0); n != 0 {
		t.Errorf("backlog should be dropped, got %d", n)
	}
}

func TestStepCountIndependentOfFrameRate(t *testing.T) {
	total := func(fps int) int {
		st := NewStepper(DefaultSettings())
		n := 0
		for i := 0; i < fps; i++ {
			n += st.Advance(time.Second / time.Duration(fps))
		}
		return n
	}
	a := total(30)
	b := total(144)
	if a < 119 || a > 120 || b < 119 || b > 120 {
		t.Errorf("expected ~120 steps per second, got %d at 30fps and %d at 144fps", a, b)
	}
}

func TestRunFrameDeliversEdgesOnce(t *testing.T) {
	s := newTestSession(t)
	RunFrame(s, Input{Edges: []Edge{EdgeTriggerDown, EdgeTriggerUp, EdgeTriggerDown}}, 3)

	// down, up, down on the first step only: the shot fires and the second press is ignored
	if s.Phase() != PhaseReleased && s.Phase() != PhaseAiming {
		t.Fatalf("unexpected phase %s", s.Phase())
	}
	if s.Steps() != 3 {
		t.Errorf("expected 3 steps, got %d", s.Steps())
	}
	if shots := s.DrainShots(); len(shots) != 1 || shots[0].Force != 0 {
		t.Errorf("expected one zero-force shot, got %+v", shots)
	}
}

func TestInputQueueDrain(t *testing.T) {
	q := NewInputQueue()
	q.Aim(NewVec2(1, 2))
	q.Aim(NewVec2(3, 4))
	q.Press()
	q.ReleaseTrigger()
	q.Push(Edge("bogus"))

	in := q.Drain()
	if !in.HasAim || in.Aim != NewVec2(3, 4) {
		t.Errorf("expected latest aim, got %+v", in)
	}
	if len(in.Edges) != 2 || in.Edges[0] != EdgeTriggerDown || in.Edges[1] != EdgeTriggerUp {
		t.Errorf("unexpected edges %v", in.Edges)
	}

	in = q.Drain()
	if in.HasAim || len(in.Edges) != 0 || in.Quit {
		t.Errorf("drain did not clear: %+v", in)
	}

	q.Quit()
	q.Drain()
	if !q.Drain().Quit {
		t.Error("quit should be sticky")
	}
}

func TestRunStopsOnQuit(t *testing.T) {
	s := newTestSession(t)
	q := NewInputQueue()
	q.Quit()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	frames := 0
	err := Run(ctx, s, q, 120, func(Snapshot, []CollisionEvent) { frames++ })
	if err != nil {
		t.Fatalf("expected clean stop, got %v", err)
	}
	if !s.Done() || frames == 0 {
		t.Errorf("expected a frame and a finished session (frames=%d)", frames)
	}
}

func TestRunHonoursContext(t *testing.T) {
	s := newTestSession(t)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := Run(ctx, s, NewInputQueue(), 120, nil); err != context.DeadlineExceeded {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if s.Steps() == 0 {
		t.Error("session never stepped")
	}
}
