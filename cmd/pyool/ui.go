package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/playmatatu/billiards/internal/game"
)

const (
	cueLength   = 14
	guideLength = 6
)

var (
	feltStyle    = tcell.StyleDefault.Background(tcell.ColorDarkGreen)
	cushionStyle = tcell.StyleDefault.Background(tcell.ColorSaddleBrown)
	pocketStyle  = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorGray)
	cueStyle     = feltStyle.Foreground(tcell.ColorBurlyWood)
	guideStyle   = feltStyle.Foreground(tcell.ColorWhite)
	hudStyle     = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	barStyle     = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

var ballColors = map[int]tcell.Color{
	1: tcell.ColorYellow, 2: tcell.ColorBlue, 3: tcell.ColorRed, 4: tcell.ColorPurple,
	5: tcell.ColorOrange, 6: tcell.ColorGreen, 7: tcell.ColorMaroon, 8: tcell.ColorBlack,
}

func ballStyle(id int) tcell.Style {
	if id == game.CueBallID {
		return feltStyle.Foreground(tcell.ColorWhite).Bold(true)
	}
	solid := id
	if id > 8 {
		solid = id - 8
	}
	style := tcell.StyleDefault.Background(ballColors[solid]).Foreground(tcell.ColorWhite).Bold(true)
	if id > 8 {
		style = style.Underline(true)
	}
	return style
}

// ui owns the screen. Input events arrive on the poll goroutine and frames
// on the loop goroutine, so the viewport is guarded.
type ui struct {
	screen tcell.Screen
	table  *game.Table
	input  *game.InputQueue

	mu         sync.Mutex
	view       viewport
	buttonDown bool
}

func newUI(screen tcell.Screen, table *game.Table, input *game.InputQueue) *ui {
	w, h := screen.Size()
	return &ui{
		screen: screen,
		table:  table,
		input:  input,
		view:   newViewport(w, h, table),
	}
}

func (u *ui) pollEvents() {
	for {
		ev := u.screen.PollEvent()
		if ev == nil {
			return
		}
		u.handleEvent(ev)
	}
}

// handleEvent translates terminal events into session input.
func (u *ui) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
			(ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q')) {
			u.input.Quit()
		}

	case *tcell.EventMouse:
		x, y := ev.Position()
		u.mu.Lock()
		aim := u.view.toTable(x, y)
		down := ev.Buttons()&tcell.Button1 != 0
		wasDown := u.buttonDown
		u.buttonDown = down
		u.mu.Unlock()

		u.input.Aim(aim)
		switch {
		case down && !wasDown:
			u.input.Press()
		case !down && wasDown:
			u.input.ReleaseTrigger()
		}

	case *tcell.EventResize:
		w, h := u.screen.Size()
		u.mu.Lock()
		u.view = newViewport(w, h, u.table)
		u.mu.Unlock()
		u.screen.Sync()
	}
}

func (u *ui) draw(snap game.Snapshot) {
	u.mu.Lock()
	v := u.view
	u.mu.Unlock()

	s := u.screen
	s.Clear()

	for y := 0; y < v.rows; y++ {
		for x := 0; x < v.cols; x++ {
			s.SetContent(x, y, ' ', nil, feltStyle)
		}
	}
	u.drawCushions(v)
	u.drawPockets(v)

	if snap.Cue.Visible {
		u.drawCue(v, snap.Cue)
	}
	for _, b := range snap.Balls {
		x, y := v.toCell(game.Vec2{X: b.X, Y: b.Y})
		if v.inside(x, y) {
			s.SetContent(x, y, ballLabel(b.ID), nil, ballStyle(b.ID))
		}
	}

	u.drawHUD(v, snap)
	s.Show()
}

func (u *ui) drawCushions(v viewport) {
	for _, c := range u.table.Cushions {
		n := len(c.Vertices)
		for i := range c.Vertices {
			x0, y0 := v.toCell(c.Vertices[i])
			x1, y1 := v.toCell(c.Vertices[(i+1)%n])
			for _, cell := range cellLine(x0, y0, x1, y1) {
				if v.inside(cell[0], cell[1]) {
					u.screen.SetContent(cell[0], cell[1], ' ', nil, cushionStyle)
				}
			}
		}
	}
}

func (u *ui) drawPockets(v viewport) {
	for _, p := range u.table.Pockets {
		x, y := v.toCell(p.Position)
		if v.inside(x, y) {
			u.screen.SetContent(x, y, 'O', nil, pocketStyle)
		}
	}
}

// drawCue draws the stick behind the cue ball and a short guide ahead of it.
func (u *ui) drawCue(v viewport, cue game.CueView) {
	dir := shotDirection(cue.Angle)
	ball := game.Vec2{X: cue.X, Y: cue.Y}
	cellW := v.width / float64(v.cols)

	bx, by := v.toCell(ball)
	sx, sy := v.toCell(ball.Minus(dir.Times(cellW * cueLength)))
	for _, cell := range cellLine(bx, by, sx, sy)[1:] {
		if v.inside(cell[0], cell[1]) {
			u.screen.SetContent(cell[0], cell[1], '=', nil, cueStyle)
		}
	}

	gx, gy := v.toCell(ball.Plus(dir.Times(cellW * guideLength)))
	for _, cell := range cellLine(bx, by, gx, gy)[1:] {
		if v.inside(cell[0], cell[1]) {
			u.screen.SetContent(cell[0], cell[1], '·', nil, guideStyle)
		}
	}
}

func (u *ui) drawHUD(v viewport, snap game.Snapshot) {
	row := v.rows
	if snap.ChargeVisible {
		bars := strings.Repeat("▮", snap.ChargeBars)
		u.printAt(0, row, fmt.Sprintf("power %s", bars), barStyle)
	}

	potted := make([]string, len(snap.Potted))
	for i, id := range snap.Potted {
		potted[i] = fmt.Sprint(id)
	}
	status := fmt.Sprintf("%s  potted [%s]", snap.Phase, strings.Join(potted, " "))
	if snap.Scratched {
		status += "  SCRATCH"
	}
	switch snap.Outcome.State {
	case game.OutcomeWin:
		status += "  YOU WIN - press q"
	case game.OutcomeLoss:
		status += fmt.Sprintf("  GAME OVER (%s) - press q", strings.ReplaceAll(snap.Outcome.Reason, "_", " "))
	}
	u.printAt(0, row+1, status, hudStyle)
}

func (u *ui) printAt(x, y int, text string, style tcell.Style) {
	for _, r := range text {
		u.screen.SetContent(x, y, r, nil, style)
		x++
	}
}
