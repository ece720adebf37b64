package game

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"pgregory.net/rapid"
)

func TestStandardTableValidates(t *testing.T) {
	table := NewStandardTable(DefaultSettings())
	if err := table.Validate(); err != nil {
		t.Fatalf("standard table rejected: %v", err)
	}
	if len(table.Pockets) != 6 || len(table.Cushions) != 6 {
		t.Errorf("expected 6 pockets and 6 cushions, got %d/%d", len(table.Pockets), len(table.Cushions))
	}
	if table.CueSpawn != NewVec2(888, 339) {
		t.Errorf("cue spawn: got %v", table.CueSpawn)
	}
	if table.Pockets[0].Radius != 33 {
		t.Errorf("pocket radius: got %.1f", table.Pockets[0].Radius)
	}
}

func TestValidateRejectsBadGeometry(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Table)
	}{
		{"zero pocket radius", func(tb *Table) { tb.Pockets[2].Radius = 0 }},
		{"negative pocket radius", func(tb *Table) { tb.Pockets[0].Radius = -1 }},
		{"no pockets", func(tb *Table) { tb.Pockets = nil }},
		{"concave cushion", func(tb *Table) {
			tb.Cushions[0].Vertices = []Vec2{{0, 0}, {10, 0}, {2, 2}, {0, 10}}
		}},
		{"degenerate cushion", func(tb *Table) {
			tb.Cushions[1].Vertices = []Vec2{{0, 0}, {10, 0}}
		}},
		{"collinear cushion", func(tb *Table) {
			tb.Cushions[1].Vertices = []Vec2{{0, 0}, {5, 0}, {10, 0}}
		}},
		{"spawn off table", func(tb *Table) { tb.CueSpawn = NewVec2(-5, 10) }},
		{"zero size", func(tb *Table) { tb.Width = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := NewStandardTable(DefaultSettings())
			tt.mutate(table)
			err := table.Validate()
			if !errors.Is(err, ErrInvalidTable) {
				t.Errorf("expected ErrInvalidTable, got %v", err)
			}
		})
	}
}

func TestIsConvexEitherWinding(t *testing.T) {
	square := []Vec2{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	if !isConvex(square) {
		t.Error("ccw square should be convex")
	}
	reversed := []Vec2{{0, 10}, {10, 10}, {10, 0}, {0, 0}}
	if !isConvex(reversed) {
		t.Error("cw square should be convex")
	}
	star := []Vec2{{0, 0}, {10, 5}, {0, 10}, {5, 0}, {5, 10}}
	if isConvex(star) {
		t.Error("self-intersecting polygon should not be convex")
	}
}

func TestRackLayout(t *testing.T) {
	s := DefaultSettings()
	rack := RackPositions(s)
	if len(rack) != NumObjectBalls {
		t.Fatalf("expected %d rack positions, got %d", NumObjectBalls, len(rack))
	}

	// ball 1 at the first column, ball 15 at the apex
	if rack[0] != NewVec2(250, 267) {
		t.Errorf("ball 1: got %v", rack[0])
	}
	if rack[14] != NewVec2(398, 339) {
		t.Errorf("apex ball: got %v", rack[14])
	}
	// column 1 starts half a diameter lower
	if rack[5] != NewVec2(287, 285) {
		t.Errorf("ball 6: got %v", rack[5])
	}

	table := NewStandardTable(s)
	for i, p := range rack {
		if !table.Contains(p) {
			t.Errorf("ball %d off table at %v", i+1, p)
		}
		for j := i + 1; j < len(rack); j++ {
			if d := p.Distance(rack[j]); d < s.BallDiameter {
				t.Errorf("balls %d and %d overlap (%.2f apart)", i+1, j+1, d)
			}
		}
	}
}

func TestLoadTableFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "table.json")
	body := `{
		"width": 800, "height": 400,
		"cushions": [[[10,10],[790,10],[790,30],[10,30]]],
		"pockets": [[20,20],[780,380]],
		"cue_spawn": [600, 200]
	}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := LoadTableFile(path, DefaultSettings())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if table.Width != 800 || len(table.Pockets) != 2 || len(table.Cushions) != 1 {
		t.Errorf("unexpected table: %+v", table)
	}
	if table.CueSpawn != NewVec2(600, 200) {
		t.Errorf("cue spawn: got %v", table.CueSpawn)
	}
}

func TestLoadTableFileRejectsConcave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	body := `{"width": 800, "height": 400, "cushions": [[[0,0],[10,0],[2,2],[0,10]]], "pockets": [[20,20]]}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTableFile(path, DefaultSettings()); !errors.Is(err, ErrInvalidTable) {
		t.Errorf("expected ErrInvalidTable, got %v", err)
	}
}

func TestCueAngleConvention(t *testing.T) {
	ball := NewVec2(888, 339)
	tests := []struct {
		aim  Vec2
		want float64
	}{
		{NewVec2(398, 339), 0},   // pointer left: cue lies to the right
		{NewVec2(988, 339), 180}, // pointer right
		{NewVec2(888, 239), -90}, // pointer above on screen
		{NewVec2(888, 439), 90},  // pointer below on screen
	}
	for _, tt := range tests {
		if got := cueAngle(ball, tt.aim); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("aim %v: expected %.1f, got %.4f", tt.aim, tt.want, got)
		}
	}
}

func TestShotImpulseTravelsTowardPointer(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ball := NewVec2(rapid.Float64Range(100, 1100).Draw(t, "bx"), rapid.Float64Range(100, 600).Draw(t, "by"))
		aim := NewVec2(rapid.Float64Range(0, 1200).Draw(t, "ax"), rapid.Float64Range(0, 678).Draw(t, "ay"))
		if ball.Distance(aim) < 1 {
			t.Skip("pointer on the ball")
		}
		force := rapid.Float64Range(100, DefaultMaxForce).Draw(t, "force")

		imp := shotImpulse(cueAngle(ball, aim), force)
		want := aim.Minus(ball).Normalize()
		got := imp.Normalize()
		if got.Distance(want) > 1e-9 {
			t.Fatalf("impulse %v does not point at %v from %v", imp, aim, ball)
		}
		if math.Abs(imp.Magnitude()-force) > 1e-6 {
			t.Fatalf("impulse magnitude %.4f, want %.4f", imp.Magnitude(), force)
		}
	})
}

func TestSegmentDistance(t *testing.T) {
	if d := segmentDistance(NewVec2(0, 0), NewVec2(10, 0), NewVec2(5, 3)); d != 3 {
		t.Errorf("mid-segment: got %.2f", d)
	}
	if d := segmentDistance(NewVec2(0, 0), NewVec2(10, 0), NewVec2(13, 4)); d != 5 {
		t.Errorf("past the end: got %.2f", d)
	}
	if d := segmentDistance(NewVec2(2, 2), NewVec2(2, 2), NewVec2(5, 6)); d != 5 {
		t.Errorf("zero-length: got %.2f", d)
	}
}
