package main

import (
	"math"

	"github.com/playmatatu/billiards/internal/game"
)

// hudRows is the space below the table for the charge meter and status line.
const hudRows = 2

// viewport maps table coordinates onto terminal cells.
type viewport struct {
	cols, rows    int
	width, height float64
}

func newViewport(screenW, screenH int, t *game.Table) viewport {
	rows := screenH - hudRows
	if rows < 1 {
		rows = 1
	}
	if screenW < 1 {
		screenW = 1
	}
	return viewport{cols: screenW, rows: rows, width: t.Width, height: t.Height}
}

func (v viewport) toCell(p game.Vec2) (int, int) {
	x := int(math.Floor(p.X / v.width * float64(v.cols)))
	y := int(math.Floor(p.Y / v.height * float64(v.rows)))
	return x, y
}

// toTable returns the table point at the centre of a cell.
func (v viewport) toTable(x, y int) game.Vec2 {
	return game.Vec2{
		X: (float64(x) + 0.5) * v.width / float64(v.cols),
		Y: (float64(y) + 0.5) * v.height / float64(v.rows),
	}
}

func (v viewport) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < v.cols && y < v.rows
}

// cellLine returns the cells on the segment between two cells.
func cellLine(x0, y0, x1, y1 int) [][2]int {
	dx, dy := x1-x0, y1-y0
	n := max(abs(dx), abs(dy))
	if n == 0 {
		return [][2]int{{x0, y0}}
	}
	cells := make([][2]int, 0, n+1)
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		cells = append(cells, [2]int{
			x0 + int(math.Round(float64(dx)*t)),
			y0 + int(math.Round(float64(dy)*t)),
		})
	}
	return cells
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// shotDirection is the unit vector a released shot sends the cue ball along.
func shotDirection(angleDeg float64) game.Vec2 {
	rad := angleDeg * math.Pi / 180
	return game.Vec2{X: -math.Cos(rad), Y: math.Sin(rad)}
}

// ballLabel is the single-cell label for a ball id.
func ballLabel(id int) rune {
	switch {
	case id == game.CueBallID:
		return '●'
	case id < 10:
		return rune('0' + id)
	default:
		return rune('a' + id - 10)
	}
}
