package game

// Phase is the shot state of a session.
type Phase string

const (
	PhaseAiming   Phase = "AIMING"
	PhaseCharging Phase = "CHARGING"
	PhaseReleased Phase = "RELEASED"
)

// OutcomeState is the terminal state of a session.
type OutcomeState string

const (
	OutcomeNone OutcomeState = "none"
	OutcomeWin  OutcomeState = "win"
	OutcomeLoss OutcomeState = "loss"
)

// Loss reasons.
const (
	ReasonScratchOnEight = "scratch_on_eight"
	ReasonEarlyEight     = "early_eight"
)

// Outcome is absorbing: once State leaves OutcomeNone it never changes.
type Outcome struct {
	State  OutcomeState `json:"state"`
	Reason string       `json:"reason,omitempty"`
}

// Terminal reports whether the session has ended in a win or loss.
func (o Outcome) Terminal() bool {
	return o.State == OutcomeWin || o.State == OutcomeLoss
}
