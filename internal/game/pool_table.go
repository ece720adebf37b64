package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrInvalidTable is returned when table geometry fails validation.
var ErrInvalidTable = errors.New("invalid table geometry")

// Cushion is a static convex rail polygon. Vertices are never mutated after construction.
type Cushion struct {
	Index    int    `json:"index"`
	Vertices []Vec2 `json:"vertices"`
}

// Pocket is a capture circle.
type Pocket struct {
	ID       int     `json:"id"`
	Position Vec2    `json:"position"`
	Radius   float64 `json:"radius"`
}

// Table holds the complete static table geometry.
type Table struct {
	Width    float64   `json:"width"`
	Height   float64   `json:"height"`
	Cushions []Cushion `json:"cushions"`
	Pockets  []Pocket  `json:"pockets"`
	CueSpawn Vec2      `json:"cue_spawn"`
	// Off-table parking spot for a scratched cue ball.
	ParkPosition Vec2 `json:"park_position"`
}

// Pixel coordinates of the cushions and pockets on the stock 1200x678 table art.
var (
	standardPockets = []Vec2{
		{55, 63},
		{592, 48},
		{1134, 64},
		{55, 616},
		{592, 629},
		{1134, 616},
	}

	standardCushions = [][]Vec2{
		{{88, 56}, {109, 77}, {555, 77}, {564, 56}},
		{{621, 56}, {630, 77}, {1081, 77}, {1102, 56}},
		{{89, 621}, {110, 600}, {556, 600}, {564, 621}},
		{{622, 621}, {630, 600}, {1081, 600}, {1102, 621}},
		{{56, 96}, {77, 117}, {77, 560}, {56, 581}},
		{{1143, 96}, {1122, 117}, {1122, 560}, {1143, 581}},
	}
)

// NewStandardTable builds the stock table using the pocket size from s.
func NewStandardTable(s Settings) *Table {
	pockets := make([]Pocket, len(standardPockets))
	for i, p := range standardPockets {
		pockets[i] = Pocket{ID: i, Position: p, Radius: s.PocketRadius()}
	}

	cushions := make([]Cushion, len(standardCushions))
	for i, verts := range standardCushions {
		cushions[i] = Cushion{Index: i, Vertices: append([]Vec2(nil), verts...)}
	}

	return &Table{
		Width:        s.TableWidth,
		Height:       s.TableHeight,
		Cushions:     cushions,
		Pockets:      pockets,
		CueSpawn:     NewVec2(CueSpawnX, s.TableHeight/2),
		ParkPosition: NewVec2(-100, -100),
	}
}

// Validate fails fast on malformed geometry: non-convex or degenerate cushions,
// non-positive pocket radii, or a cue spawn outside the table.
func (t *Table) Validate() error {
	if t.Width <= 0 || t.Height <= 0 {
		return fmt.Errorf("%w: table size %.0fx%.0f", ErrInvalidTable, t.Width, t.Height)
	}
	if len(t.Pockets) == 0 {
		return fmt.Errorf("%w: no pockets", ErrInvalidTable)
	}
	for _, p := range t.Pockets {
		if p.Radius <= 0 {
			return fmt.Errorf("%w: pocket %d radius %.2f", ErrInvalidTable, p.ID, p.Radius)
		}
	}
	for _, c := range t.Cushions {
		if len(c.Vertices) < 3 {
			return fmt.Errorf("%w: cushion %d has %d vertices", ErrInvalidTable, c.Index, len(c.Vertices))
		}
		if !isConvex(c.Vertices) {
			return fmt.Errorf("%w: cushion %d is not convex", ErrInvalidTable, c.Index)
		}
	}
	if !t.Contains(t.CueSpawn) {
		return fmt.Errorf("%w: cue spawn (%.0f, %.0f) off table", ErrInvalidTable, t.CueSpawn.X, t.CueSpawn.Y)
	}
	return nil
}

// Contains reports whether p lies within the table bounds.
func (t *Table) Contains(p Vec2) bool {
	return p.X >= 0 && p.X <= t.Width && p.Y >= 0 && p.Y <= t.Height
}

// RackPositions returns the 15 object-ball positions; index i holds ball i+1.
// Columns run left to right with 5,4,3,2,1 rows, spaced one unit apart.
func RackPositions(s Settings) []Vec2 {
	d := s.BallDiameter
	positions := make([]Vec2, 0, NumObjectBalls)
	rows := RackColumns
	for col := 0; col < RackColumns; col++ {
		for row := 0; row < rows; row++ {
			positions = append(positions, NewVec2(
				RackOriginX+float64(col)*(d+1),
				RackOriginY+float64(row)*(d+1)+float64(col)*d/2,
			))
		}
		rows--
	}
	return positions
}

// tableFile is the on-disk JSON shape of a table override.
type tableFile struct {
	Width    float64        `json:"width"`
	Height   float64        `json:"height"`
	Cushions [][][2]float64 `json:"cushions"`
	Pockets  [][2]float64   `json:"pockets"`
	CueSpawn *[2]float64    `json:"cue_spawn,omitempty"`
}

// LoadTableFile reads table geometry from a JSON file and validates it.
// Pocket radii come from s.
func LoadTableFile(path string, s Settings) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read table file: %w", err)
	}

	var tf tableFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parse table file: %w", err)
	}

	t := &Table{
		Width:        tf.Width,
		Height:       tf.Height,
		CueSpawn:     NewVec2(CueSpawnX, tf.Height/2),
		ParkPosition: NewVec2(-100, -100),
	}
	if tf.CueSpawn != nil {
		t.CueSpawn = NewVec2(tf.CueSpawn[0], tf.CueSpawn[1])
	}
	for i, p := range tf.Pockets {
		t.Pockets = append(t.Pockets, Pocket{ID: i, Position: NewVec2(p[0], p[1]), Radius: s.PocketRadius()})
	}
	for i, poly := range tf.Cushions {
		c := Cushion{Index: i}
		for _, v := range poly {
			c.Vertices = append(c.Vertices, NewVec2(v[0], v[1]))
		}
		t.Cushions = append(t.Cushions, c)
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}
