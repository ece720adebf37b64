package game

import (
	"math"
	"testing"

	"pgregory.net/rapid"
)

func TestChargeStaysInBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := DefaultSettings()
		s.ForceStep = rapid.Float64Range(1, 3000).Draw(t, "step")
		steps := rapid.IntRange(0, 1000).Draw(t, "steps")

		shot := NewShot(s)
		shot.Press()
		for i := 0; i < steps; i++ {
			shot.Charge()
			f := shot.Force()
			if f < 0 || f > s.MaxForce {
				t.Fatalf("step %d: force %.2f out of [0, %.0f]", i, f, s.MaxForce)
			}
			if want := int(math.Ceil(f / 2000)); shot.Bars() != want {
				t.Fatalf("step %d: %d bars for force %.2f, want %d", i, shot.Bars(), f, want)
			}
		}
	})
}

func TestChargeOscillates(t *testing.T) {
	shot := NewShot(DefaultSettings())
	shot.Press()
	for i := 0; i < 100; i++ {
		shot.Charge()
	}
	if shot.Force() != DefaultMaxForce || shot.Direction() != -1 {
		t.Fatalf("expected max force and falling direction, got %.0f/%.0f", shot.Force(), shot.Direction())
	}
	shot.Charge()
	if shot.Force() != DefaultMaxForce-DefaultForceStep {
		t.Errorf("expected force to fall after the peak, got %.0f", shot.Force())
	}
	for i := 0; i < 99; i++ {
		shot.Charge()
	}
	if shot.Force() != 0 || shot.Direction() != 1 {
		t.Errorf("expected zero force and rising direction, got %.0f/%.0f", shot.Force(), shot.Direction())
	}
}

func TestReleaseResetsShot(t *testing.T) {
	shot := NewShot(DefaultSettings())
	shot.Press()
	for i := 0; i < 130; i++ {
		shot.Charge()
	}
	force, ok := shot.Release()
	if !ok {
		t.Fatal("release while charging should succeed")
	}
	if force != 7000 {
		t.Errorf("expected force 7000, got %.0f", force)
	}
	if shot.Force() != 0 || shot.Direction() != 1 || shot.Phase() != PhaseReleased {
		t.Errorf("shot not reset: force=%.0f dir=%.0f phase=%s", shot.Force(), shot.Direction(), shot.Phase())
	}
}

func TestReleasedIgnoresTrigger(t *testing.T) {
	shot := NewShot(DefaultSettings())
	shot.Press()
	shot.Charge()
	shot.Release()

	if shot.Press() {
		t.Error("press accepted while released")
	}
	if _, ok := shot.Release(); ok {
		t.Error("release accepted while released")
	}
	shot.Charge()
	if shot.Force() != 0 || shot.Phase() != PhaseReleased {
		t.Errorf("released shot changed: force=%.0f phase=%s", shot.Force(), shot.Phase())
	}

	if !shot.Settle() || shot.Phase() != PhaseAiming {
		t.Error("settle should return to aiming")
	}
	if shot.Settle() {
		t.Error("settle should only fire once")
	}
}

func TestBarsRoundUp(t *testing.T) {
	tests := []struct {
		force float64
		want  int
	}{
		{0, 0},
		{100, 1},
		{2000, 1},
		{2100, 2},
		{10000, 5},
	}
	for _, tt := range tests {
		if got := chargeBars(tt.force, DefaultForcePerBar); got != tt.want {
			t.Errorf("force %.0f: expected %d bars, got %d", tt.force, tt.want, got)
		}
	}
}
