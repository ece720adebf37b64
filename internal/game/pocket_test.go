package game

import (
	"math"
	"testing"

	"pgregory.net/rapid"
)

func TestBallAtPocketCenterIsCaptured(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := DefaultSettings()
		table := NewStandardTable(s)
		pocket := table.Pockets[rapid.IntRange(0, len(table.Pockets)-1).Draw(t, "pocket")]
		speed := rapid.Float64Range(0, 5000).Draw(t, "speed")
		angle := rapid.Float64Range(0, 2*math.Pi).Draw(t, "angle")

		w := NewWorld(table, s)
		w.AddBall(4, pocket.Position)
		w.SetVelocity(4, NewVec2(math.Cos(angle)*speed, math.Sin(angle)*speed))
		w.Step()

		captures := detectCaptures(w.Tracks(), table.Pockets)
		if len(captures) != 1 || captures[0].BallID != 4 || captures[0].PocketID != pocket.ID {
			t.Fatalf("expected ball 4 captured by pocket %d, got %+v", pocket.ID, captures)
		}
	})
}

func TestFastBallCannotSkipPocket(t *testing.T) {
	pockets := []Pocket{{ID: 0, Position: NewVec2(100, 100), Radius: 33}}
	tracks := []Track{{BallID: 2, From: NewVec2(0, 100), To: NewVec2(200, 100)}}
	if got := detectCaptures(tracks, pockets); len(got) != 1 {
		t.Errorf("expected swept capture, got %+v", got)
	}
}

func TestCaptureTieGoesToFirstPocket(t *testing.T) {
	pockets := []Pocket{
		{ID: 0, Position: NewVec2(100, 100), Radius: 40},
		{ID: 1, Position: NewVec2(120, 100), Radius: 40},
	}
	tracks := []Track{
		{BallID: 1, From: NewVec2(110, 100), To: NewVec2(110, 100)},
		{BallID: 3, From: NewVec2(500, 500), To: NewVec2(500, 500)},
		{BallID: 5, From: NewVec2(115, 100), To: NewVec2(115, 100)},
	}

	got := detectCaptures(tracks, pockets)
	if len(got) != 2 {
		t.Fatalf("expected 2 captures, got %+v", got)
	}
	for i, want := range []int{1, 5} {
		if got[i].BallID != want || got[i].PocketID != 0 {
			t.Errorf("capture %d: expected ball %d in pocket 0, got %+v", i, want, got[i])
		}
	}
}

func TestBallNearPocketNotCaptured(t *testing.T) {
	pockets := []Pocket{{ID: 0, Position: NewVec2(100, 100), Radius: 33}}
	tracks := []Track{{BallID: 7, From: NewVec2(100, 134), To: NewVec2(100, 134)}}
	if got := detectCaptures(tracks, pockets); len(got) != 0 {
		t.Errorf("ball outside the radius captured: %+v", got)
	}
}
