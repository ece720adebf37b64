package game

// BallView is a ball as the render layer sees it.
type BallView struct {
	ID     int     `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
}

// CueView is the cue indicator, anchored on the cue ball.
type CueView struct {
	Angle   float64 `json:"angle"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Visible bool    `json:"visible"`
}

// Snapshot is the read-only per-frame state handed to renderers.
type Snapshot struct {
	SessionID     string           `json:"session_id"`
	Step          uint64           `json:"step"`
	Phase         Phase            `json:"phase"`
	Balls         []BallView       `json:"balls"`
	Cue           CueView          `json:"cue"`
	Force         float64          `json:"force"`
	ChargeBars    int              `json:"charge_bars"`
	ChargeVisible bool             `json:"charge_visible"`
	Potted        []int            `json:"potted"`
	Scratched     bool             `json:"scratched"`
	Outcome       Outcome          `json:"outcome"`
	Events        []CollisionEvent `json:"events,omitempty"`
}

// Snapshot captures the current state. Parked balls are omitted from Balls.
// Events are not drained; callers attach them with DrainEvents when needed.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		SessionID:     s.ID,
		Step:          s.steps,
		Phase:         s.shot.Phase(),
		Force:         s.shot.Force(),
		ChargeBars:    s.shot.Bars(),
		ChargeVisible: s.shot.Phase() == PhaseCharging,
		Potted:        s.Potted(),
		Scratched:     s.scratched,
		Outcome:       s.outcome,
	}

	for _, b := range s.world.Balls() {
		if b.Parked() {
			continue
		}
		p := b.Position()
		snap.Balls = append(snap.Balls, BallView{ID: b.ID, X: p.X, Y: p.Y, Radius: b.Radius})
	}

	snap.Cue.Angle = s.cueAngle
	if cue := s.world.Ball(CueBallID); cue != nil {
		p := cue.Position()
		snap.Cue.X, snap.Cue.Y = p.X, p.Y
		snap.Cue.Visible = !cue.Parked() && s.shot.Phase() == PhaseAiming && !s.outcome.Terminal()
	}
	return snap
}
