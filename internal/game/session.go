package game

import "log"

// Edge is a discrete trigger event from the input layer.
type Edge string

const (
	EdgeTriggerDown Edge = "trigger_down"
	EdgeTriggerUp   Edge = "trigger_up"
)

// Input is everything the input layer reports for one step.
// The aim point is sticky: a step without HasAim keeps the previous one.
type Input struct {
	Aim    Vec2
	HasAim bool
	Edges  []Edge
	Quit   bool
}

// ShotRecord summarises one released shot once the table comes to rest.
type ShotRecord struct {
	Number  int     `json:"number"`
	Angle   float64 `json:"angle"`
	Force   float64 `json:"force"`
	Potted  []int   `json:"potted"`
	Scratch bool    `json:"scratch"`
	Steps   int     `json:"steps"`
}

// Session composes the world, the shot and the scoreboard for one game.
// It is not safe for concurrent use; Manager serialises access.
type Session struct {
	ID string

	settings Settings
	table    *Table
	world    *World
	shot     *Shot

	aim      Vec2
	cueAngle float64

	potted    []int
	scratched bool
	respawns  int
	outcome   Outcome
	quit      bool
	steps     uint64

	events  []CollisionEvent
	shots   []ShotRecord
	current *ShotRecord
	shotNum int
}

// NewSession validates the table, racks the 15 object balls and places the
// cue ball on its spawn point.
func NewSession(id string, table *Table, s Settings) (*Session, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}

	w := NewWorld(table, s)
	for i, pos := range RackPositions(s) {
		w.AddBall(i+1, pos)
	}
	w.AddBall(CueBallID, table.CueSpawn)

	return &Session{
		ID:       id,
		settings: s,
		table:    table,
		world:    w,
		shot:     NewShot(s),
		aim:      table.CueSpawn.Minus(NewVec2(1, 0)),
		outcome:  Outcome{State: OutcomeNone},
	}, nil
}

// Step runs one fixed physics step with the given input.
func (s *Session) Step(in Input) {
	if in.Quit && !s.quit {
		s.quit = true
		log.Printf("[SESSION] %s: quit after %d steps", s.ID, s.steps)
	}
	if s.quit {
		return
	}

	if in.HasAim {
		s.aim = in.Aim
		if s.shot.Phase() == PhaseAiming {
			s.updateCueAngle()
		}
	}
	if !s.outcome.Terminal() {
		for _, e := range in.Edges {
			s.handleEdge(e)
		}
	}

	s.world.Step()
	s.events = append(s.events, s.world.DrainEvents()...)
	if s.current != nil {
		s.current.Steps++
	}

	s.capture()
	s.evaluateOutcome()

	if s.world.AllStopped() {
		s.settle()
	}

	switch s.shot.Phase() {
	case PhaseAiming:
		s.updateCueAngle()
	case PhaseCharging:
		s.shot.Charge()
	}

	s.steps++
}

// updateCueAngle points the cue from the cue ball toward the aim point.
func (s *Session) updateCueAngle() {
	if cue := s.world.Ball(CueBallID); cue != nil && !cue.Parked() {
		s.cueAngle = cueAngle(cue.Position(), s.aim)
	}
}

func (s *Session) handleEdge(e Edge) {
	switch e {
	case EdgeTriggerDown:
		if s.scratched {
			return
		}
		s.shot.Press()
	case EdgeTriggerUp:
		force, ok := s.shot.Release()
		if !ok {
			return
		}
		s.world.ApplyImpulse(CueBallID, shotImpulse(s.cueAngle, force))
		s.shotNum++
		s.current = &ShotRecord{Number: s.shotNum, Angle: s.cueAngle, Force: force}
		log.Printf("[SESSION] %s: shot %d released angle=%.1f force=%.0f", s.ID, s.shotNum, s.cueAngle, force)
	}
}

// capture runs the pocket detector over this step's tracks. Removals happen
// after detection, so no removed ball is touched again in the same step.
func (s *Session) capture() {
	for _, c := range detectCaptures(s.world.Tracks(), s.table.Pockets) {
		s.events = append(s.events, CollisionEvent{Type: EventPocket, BallID: c.BallID, TargetID: c.PocketID, Speed: c.Speed})

		if c.BallID == CueBallID {
			s.scratched = true
			s.world.Park(CueBallID, s.table.ParkPosition)
			if s.current != nil {
				s.current.Scratch = true
			}
			log.Printf("[SESSION] %s: scratch in pocket %d", s.ID, c.PocketID)
			continue
		}

		s.world.Remove(c.BallID)
		s.potted = append(s.potted, c.BallID)
		if s.current != nil {
			s.current.Potted = append(s.current.Potted, c.BallID)
		}
		log.Printf("[SESSION] %s: ball %d potted in pocket %d", s.ID, c.BallID, c.PocketID)
	}
}

// evaluateOutcome runs every step. The first terminal result sticks.
func (s *Session) evaluateOutcome() {
	if s.outcome.Terminal() || !s.eightPotted() {
		return
	}
	switch {
	case len(s.potted) == NumObjectBalls:
		s.outcome = Outcome{State: OutcomeWin}
	case s.scratched:
		s.outcome = Outcome{State: OutcomeLoss, Reason: ReasonScratchOnEight}
	default:
		s.outcome = Outcome{State: OutcomeLoss, Reason: ReasonEarlyEight}
	}
	log.Printf("[SESSION] %s: game over state=%s reason=%s", s.ID, s.outcome.State, s.outcome.Reason)
}

func (s *Session) eightPotted() bool {
	for _, id := range s.potted {
		if id == EightBallID {
			return true
		}
	}
	return false
}

// settle runs on steps where every ball is stopped.
func (s *Session) settle() {
	if s.shot.Settle() && s.current != nil {
		s.shots = append(s.shots, *s.current)
		s.current = nil
	}
	if s.scratched && s.shot.Phase() == PhaseAiming {
		s.world.Place(CueBallID, s.table.CueSpawn)
		s.scratched = false
		s.respawns++
		s.events = append(s.events, CollisionEvent{Type: EventRespawn, BallID: CueBallID})
	}
}

// Phase is the current shot phase.
func (s *Session) Phase() Phase { return s.shot.Phase() }

// Outcome is the terminal state so far.
func (s *Session) Outcome() Outcome { return s.outcome }

// Done reports whether a quit was received.
func (s *Session) Done() bool { return s.quit }

func (s *Session) Scratched() bool { return s.scratched }

func (s *Session) Respawns() int { return s.respawns }

func (s *Session) Steps() uint64 { return s.steps }

func (s *Session) CueAngle() float64 { return s.cueAngle }

func (s *Session) Force() float64 { return s.shot.Force() }

// Potted returns the potted ball ids in pot order.
func (s *Session) Potted() []int {
	return append([]int(nil), s.potted...)
}

// World exposes the underlying world for inspection.
func (s *Session) World() *World { return s.world }

// Settings returns the tuning the session was built with.
func (s *Session) Settings() Settings { return s.settings }

// Table returns the session's table geometry.
func (s *Session) Table() *Table { return s.table }

// DrainEvents returns and clears the events accumulated since the last call.
func (s *Session) DrainEvents() []CollisionEvent {
	ev := s.events
	s.events = nil
	return ev
}

// DrainShots returns and clears the shots completed since the last call.
func (s *Session) DrainShots() []ShotRecord {
	shots := s.shots
	s.shots = nil
	return shots
}
