package main

import (
	"math"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/playmatatu/billiards/internal/game"
)

func standardTable() *game.Table {
	return game.NewStandardTable(game.DefaultSettings())
}

func TestViewportRoundTrip(t *testing.T) {
	v := newViewport(120, 40, standardTable())
	if v.rows != 40-hudRows {
		t.Fatalf("expected %d table rows, got %d", 40-hudRows, v.rows)
	}
	for y := 0; y < v.rows; y++ {
		for x := 0; x < v.cols; x++ {
			gx, gy := v.toCell(v.toTable(x, y))
			if gx != x || gy != y {
				t.Fatalf("cell (%d,%d) mapped back to (%d,%d)", x, y, gx, gy)
			}
		}
	}
}

func TestViewportTinyScreen(t *testing.T) {
	v := newViewport(0, 1, standardTable())
	if v.cols < 1 || v.rows < 1 {
		t.Errorf("viewport must keep at least one cell, got %dx%d", v.cols, v.rows)
	}
}

func TestCellLineEndpoints(t *testing.T) {
	tests := []struct{ x0, y0, x1, y1 int }{
		{0, 0, 0, 0},
		{0, 0, 5, 0},
		{2, 7, 2, 1},
		{0, 0, 9, 4},
	}
	for _, tt := range tests {
		cells := cellLine(tt.x0, tt.y0, tt.x1, tt.y1)
		first, last := cells[0], cells[len(cells)-1]
		if first != [2]int{tt.x0, tt.y0} || last != [2]int{tt.x1, tt.y1} {
			t.Errorf("line %v: endpoints %v %v", tt, first, last)
		}
		for i := 1; i < len(cells); i++ {
			if abs(cells[i][0]-cells[i-1][0]) > 1 || abs(cells[i][1]-cells[i-1][1]) > 1 {
				t.Errorf("line %v has a gap at %d", tt, i)
			}
		}
	}
}

func TestShotDirectionPointsAtAim(t *testing.T) {
	// An aim to the right of the ball gives a cue angle of 180.
	d := shotDirection(180)
	if math.Abs(d.X-1) > 1e-9 || math.Abs(d.Y) > 1e-9 {
		t.Errorf("expected (1,0), got %+v", d)
	}
}

func TestBallLabels(t *testing.T) {
	want := map[int]rune{0: '●', 1: '1', 8: '8', 9: '9', 10: 'a', 15: 'f'}
	for id, r := range want {
		if got := ballLabel(id); got != r {
			t.Errorf("ball %d: expected %q, got %q", id, r, got)
		}
	}
}

func TestClickTones(t *testing.T) {
	for _, ev := range []string{game.EventBall, game.EventCushion, game.EventPocket, game.EventRespawn} {
		if clickTone(ev) <= 0 {
			t.Errorf("no tone for %s", ev)
		}
	}
	if clickTone("other") != 0 {
		t.Error("unknown events should be silent")
	}
	if clickVolume(50) >= clickVolume(1000) {
		t.Error("harder hits should be louder")
	}
}

func newSimUI(t *testing.T) (*ui, tcell.SimulationScreen, *game.InputQueue) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	screen.SetSize(120, 40)
	t.Cleanup(screen.Fini)
	q := game.NewInputQueue()
	return newUI(screen, standardTable(), q), screen, q
}

func TestMouseButtonEdges(t *testing.T) {
	u, _, q := newSimUI(t)

	u.handleEvent(tcell.NewEventMouse(60, 20, tcell.ButtonNone, tcell.ModNone))
	u.handleEvent(tcell.NewEventMouse(60, 20, tcell.Button1, tcell.ModNone))
	u.handleEvent(tcell.NewEventMouse(61, 20, tcell.Button1, tcell.ModNone))
	u.handleEvent(tcell.NewEventMouse(61, 20, tcell.ButtonNone, tcell.ModNone))

	in := q.Drain()
	if !in.HasAim {
		t.Fatal("mouse motion should set the aim point")
	}
	if len(in.Edges) != 2 || in.Edges[0] != game.EdgeTriggerDown || in.Edges[1] != game.EdgeTriggerUp {
		t.Errorf("expected one press and one release, got %v", in.Edges)
	}
	if want := u.view.toTable(61, 20); in.Aim != want {
		t.Errorf("expected aim %+v, got %+v", want, in.Aim)
	}
}

func TestQuitKeys(t *testing.T) {
	keys := []*tcell.EventKey{
		tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone),
		tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone),
		tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl),
	}
	for _, k := range keys {
		u, _, q := newSimUI(t)
		u.handleEvent(k)
		if !q.Drain().Quit {
			t.Errorf("key %v should quit", k.Name())
		}
	}
}

func TestDrawShowsBallsAndStatus(t *testing.T) {
	u, screen, _ := newSimUI(t)
	sess, err := game.NewSession("tui", standardTable(), game.DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}
	u.draw(sess.Snapshot())

	cx, cy := u.view.toCell(standardTable().CueSpawn)
	r, _, _, _ := screen.GetContent(cx, cy)
	if r != '●' {
		t.Errorf("expected the cue ball at (%d,%d), found %q", cx, cy, r)
	}

	var status []rune
	for x := 0; x < 6; x++ {
		r, _, _, _ := screen.GetContent(x, u.view.rows+1)
		status = append(status, r)
	}
	if string(status) != "AIMING" {
		t.Errorf("expected status line to start with AIMING, got %q", string(status))
	}
}
