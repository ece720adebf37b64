package game

// Shot tracks the cue charge. The force oscillates as a triangle wave between
// 0 and maxForce while the trigger is held.
type Shot struct {
	phase     Phase
	force     float64
	direction float64

	maxForce float64
	step     float64
	perBar   float64
}

// NewShot returns a shot in AIMING with zero force.
func NewShot(s Settings) *Shot {
	return &Shot{
		phase:     PhaseAiming,
		direction: 1,
		maxForce:  s.MaxForce,
		step:      s.ForceStep,
		perBar:    s.ForcePerBar,
	}
}

func (s *Shot) Phase() Phase { return s.phase }

func (s *Shot) Force() float64 { return s.force }

func (s *Shot) Direction() float64 { return s.direction }

// Bars is the charge-meter bar count, ceil(force / perBar).
func (s *Shot) Bars() int {
	return chargeBars(s.force, s.perBar)
}

// Press starts charging from zero force. It is ignored outside AIMING.
func (s *Shot) Press() bool {
	if s.phase != PhaseAiming {
		return false
	}
	s.phase = PhaseCharging
	s.force = 0
	s.direction = 1
	return true
}

// Charge advances the force by one step. On reaching a bound the force is
// clamped to it and the direction flips, so it never leaves [0, maxForce].
func (s *Shot) Charge() {
	if s.phase != PhaseCharging {
		return
	}
	s.force += s.step * s.direction
	if s.force >= s.maxForce {
		s.force = s.maxForce
		s.direction = -1
	} else if s.force <= 0 {
		s.force = 0
		s.direction = 1
	}
}

// Release ends the charge and returns the force to strike with. The shot
// resets to zero force and direction +1 and moves to RELEASED.
// ok is false when the shot was not charging.
func (s *Shot) Release() (force float64, ok bool) {
	if s.phase != PhaseCharging {
		return 0, false
	}
	force = s.force
	s.force = 0
	s.direction = 1
	s.phase = PhaseReleased
	return force, true
}

// Settle returns a released shot to AIMING once the table is still.
func (s *Shot) Settle() bool {
	if s.phase != PhaseReleased {
		return false
	}
	s.phase = PhaseAiming
	return true
}
