package game

// Table and physics defaults, in table pixels and pixel-seconds.
// The cushion/pocket coordinates in pool_table.go are drawn against these.
const (
	DefaultTableWidth  = 1200.0
	DefaultTableHeight = 678.0

	DefaultBallDiameter   = 36.0
	DefaultPocketDiameter = 66.0
	DefaultBallMass       = 5.0
	DefaultElasticity     = 0.8

	// Max force of the per-ball friction constraint.
	DefaultFrictionMaxForce = 1000.0

	DefaultMaxForce    = 10000.0
	DefaultForceStep   = 100.0
	DefaultForcePerBar = 2000.0

	DefaultStepHz           = 120.0
	DefaultMaxStepsPerFrame = 8

	CueBallID      = 0
	EightBallID    = 8
	NumObjectBalls = 15 // ids 1..15

	// Rack layout: column x = RackOriginX + col*(d+1),
	// row y = RackOriginY + row*(d+1) + col*d/2.
	RackOriginX = 250.0
	RackOriginY = 267.0
	RackColumns = 5

	CueSpawnX = 888.0
)

// Settings holds every tunable of the simulation.
type Settings struct {
	TableWidth        float64 `json:"table_width"`
	TableHeight       float64 `json:"table_height"`
	BallDiameter      float64 `json:"ball_diameter"`
	PocketDiameter    float64 `json:"pocket_diameter"`
	BallMass          float64 `json:"ball_mass"`
	Elasticity        float64 `json:"elasticity"`
	CushionElasticity float64 `json:"cushion_elasticity"`
	FrictionMaxForce  float64 `json:"friction_max_force"`
	MaxForce          float64 `json:"max_force"`
	ForceStep         float64 `json:"force_step"`
	ForcePerBar       float64 `json:"force_per_bar"`
	StepHz            float64 `json:"step_hz"`
	MaxStepsPerFrame  int     `json:"max_steps_per_frame"`
}

// DefaultSettings returns the stock table tuning.
func DefaultSettings() Settings {
	return Settings{
		TableWidth:        DefaultTableWidth,
		TableHeight:       DefaultTableHeight,
		BallDiameter:      DefaultBallDiameter,
		PocketDiameter:    DefaultPocketDiameter,
		BallMass:          DefaultBallMass,
		Elasticity:        DefaultElasticity,
		CushionElasticity: DefaultElasticity,
		FrictionMaxForce:  DefaultFrictionMaxForce,
		MaxForce:          DefaultMaxForce,
		ForceStep:         DefaultForceStep,
		ForcePerBar:       DefaultForcePerBar,
		StepHz:            DefaultStepHz,
		MaxStepsPerFrame:  DefaultMaxStepsPerFrame,
	}
}

// Dt is the fixed physics step in seconds.
func (s Settings) Dt() float64 {
	if s.StepHz <= 0 {
		return 1 / DefaultStepHz
	}
	return 1 / s.StepHz
}

func (s Settings) BallRadius() float64 {
	return s.BallDiameter / 2
}

func (s Settings) PocketRadius() float64 {
	return s.PocketDiameter / 2
}
