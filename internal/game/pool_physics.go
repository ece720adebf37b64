package game

import (
	"sort"

	"github.com/jakecoffman/cp"
)

const (
	collisionBall cp.CollisionType = iota + 1
	collisionCushion
)

// Event types reported in CollisionEvent.Type.
const (
	EventBall    = "ball"
	EventCushion = "cushion"
	EventPocket  = "pocket"
	EventRespawn = "respawn"
)

// shape user data tags
type ballTag int
type cushionTag int

// CollisionEvent records a contact for sound playback and the shot log.
type CollisionEvent struct {
	Type     string  `json:"type"`
	BallID   int     `json:"ball_id"`
	TargetID int     `json:"target_id"` // ball id, cushion index or pocket id
	Speed    float64 `json:"speed"`
}

// Ball is a rigid circular body in the world.
type Ball struct {
	ID         int
	Radius     float64
	Mass       float64
	Elasticity float64

	body     *cp.Body
	shape    *cp.Shape
	friction *cp.Constraint

	pending Vec2 // impulse applied at the start of the next step
	prev    Vec2 // position at the start of the last step
	parked  bool
}

func (b *Ball) Position() Vec2 {
	return fromCP(b.body.Position())
}

func (b *Ball) Velocity() Vec2 {
	return fromCP(b.body.Velocity())
}

// Stopped uses the integer-truncation rule shared with World.AllStopped.
func (b *Ball) Stopped() bool {
	return b.Velocity().Truncated()
}

// Parked reports whether the ball sits off-table awaiting respawn.
func (b *Ball) Parked() bool {
	return b.parked
}

// Track is a ball's motion over the last step.
type Track struct {
	BallID int
	From   Vec2
	To     Vec2
	Speed  float64
}

// World owns every body and the static cushions and advances them in fixed steps.
type World struct {
	space    *cp.Space
	settings Settings
	table    *Table
	balls    map[int]*Ball
	ids      []int // active ball ids, ascending
	events   []CollisionEvent
	steps    uint64
}

// NewWorld builds a world with the table's cushions and no balls.
// The table is not validated here.
func NewWorld(table *Table, s Settings) *World {
	space := cp.NewSpace()
	space.SetGravity(cp.Vector{})

	w := &World{
		space:    space,
		settings: s,
		table:    table,
		balls:    make(map[int]*Ball),
	}
	for _, c := range table.Cushions {
		w.addCushion(c)
	}
	w.installHandlers()
	return w
}

func (w *World) addCushion(c Cushion) {
	verts := make([]cp.Vector, len(c.Vertices))
	for i, v := range c.Vertices {
		verts[i] = v.toCP()
	}
	shape := cp.NewPolyShape(w.space.StaticBody, len(verts), verts, cp.NewTransformIdentity(), 0)
	shape.SetElasticity(w.settings.CushionElasticity)
	shape.SetCollisionType(collisionCushion)
	shape.UserData = cushionTag(c.Index)
	w.space.AddShape(shape)
}

func (w *World) installHandlers() {
	balls := w.space.NewCollisionHandler(collisionBall, collisionBall)
	balls.BeginFunc = func(arb *cp.Arbiter, _ *cp.Space, _ interface{}) bool {
		a, b := arb.Shapes()
		w.recordContact(a, b)
		return true
	}
	rails := w.space.NewCollisionHandler(collisionBall, collisionCushion)
	rails.BeginFunc = func(arb *cp.Arbiter, _ *cp.Space, _ interface{}) bool {
		a, b := arb.Shapes()
		w.recordContact(a, b)
		return true
	}
}

func (w *World) recordContact(a, b *cp.Shape) {
	id, ok := a.UserData.(ballTag)
	if !ok {
		a, b = b, a
		if id, ok = a.UserData.(ballTag); !ok {
			return
		}
	}
	speed := a.Body().Velocity().Sub(b.Body().Velocity()).Length()

	switch target := b.UserData.(type) {
	case ballTag:
		w.events = append(w.events, CollisionEvent{Type: EventBall, BallID: int(id), TargetID: int(target), Speed: speed})
	case cushionTag:
		w.events = append(w.events, CollisionEvent{Type: EventCushion, BallID: int(id), TargetID: int(target), Speed: speed})
	}
}

// AddBall creates a ball at pos. Adding an id twice replaces nothing and returns the existing ball.
func (w *World) AddBall(id int, pos Vec2) *Ball {
	if b, ok := w.balls[id]; ok {
		return b
	}
	r := w.settings.BallRadius()
	m := w.settings.BallMass

	body := w.space.AddBody(cp.NewBody(m, cp.MomentForCircle(m, 0, r, cp.Vector{})))
	body.SetPosition(pos.toCP())

	shape := cp.NewCircle(body, r, cp.Vector{})
	shape.SetElasticity(w.settings.Elasticity)
	shape.SetCollisionType(collisionBall)
	shape.UserData = ballTag(id)
	w.space.AddShape(shape)

	b := &Ball{
		ID:         id,
		Radius:     r,
		Mass:       m,
		Elasticity: w.settings.Elasticity,
		body:       body,
		shape:      shape,
		friction:   attachFriction(w.space, body, w.settings.FrictionMaxForce),
		prev:       pos,
	}
	w.balls[id] = b
	w.ids = append(w.ids, id)
	sort.Ints(w.ids)
	return b
}

// Ball returns the active ball with id, or nil.
func (w *World) Ball(id int) *Ball {
	return w.balls[id]
}

// Balls returns the active balls in ascending id order. The slice is a snapshot,
// so callers may remove balls while iterating it.
func (w *World) Balls() []*Ball {
	out := make([]*Ball, 0, len(w.ids))
	for _, id := range w.ids {
		out = append(out, w.balls[id])
	}
	return out
}

// ApplyImpulse queues a central impulse; it is applied at the start of the next step.
func (w *World) ApplyImpulse(id int, impulse Vec2) {
	if b, ok := w.balls[id]; ok {
		b.pending = b.pending.Plus(impulse)
	}
}

// SetVelocity overrides a ball's velocity.
func (w *World) SetVelocity(id int, v Vec2) {
	if b, ok := w.balls[id]; ok {
		b.body.SetVelocityVector(v.toCP())
	}
}

// Step advances the simulation by one fixed step: pending impulses, integration,
// contact resolution and the friction constraints.
func (w *World) Step() {
	for _, id := range w.ids {
		b := w.balls[id]
		b.prev = b.Position()
		if !b.pending.IsZero() {
			b.body.ApplyImpulseAtWorldPoint(b.pending.toCP(), b.body.Position())
			b.pending = Vec2{}
		}
	}
	w.space.Step(w.settings.Dt())
	w.steps++
}

// Tracks returns the last-step motion of every on-table ball in ascending id order.
func (w *World) Tracks() []Track {
	tracks := make([]Track, 0, len(w.ids))
	for _, id := range w.ids {
		b := w.balls[id]
		if b.parked {
			continue
		}
		tracks = append(tracks, Track{
			BallID: id,
			From:   b.prev,
			To:     b.Position(),
			Speed:  b.Velocity().Magnitude(),
		})
	}
	return tracks
}

// Remove takes a ball out of the world permanently.
func (w *World) Remove(id int) {
	b, ok := w.balls[id]
	if !ok {
		return
	}
	if b.friction != nil {
		w.space.RemoveConstraint(b.friction)
	}
	w.space.RemoveShape(b.shape)
	w.space.RemoveBody(b.body)
	delete(w.balls, id)

	for i, v := range w.ids {
		if v == id {
			w.ids = append(w.ids[:i], w.ids[i+1:]...)
			break
		}
	}
}

// Park moves a ball off-table at rest; parked balls are skipped by Tracks.
func (w *World) Park(id int, pos Vec2) {
	if b, ok := w.balls[id]; ok {
		w.teleport(b, pos)
		b.parked = true
	}
}

// Place puts a ball back on the table at rest.
func (w *World) Place(id int, pos Vec2) {
	if b, ok := w.balls[id]; ok {
		w.teleport(b, pos)
		b.parked = false
	}
}

func (w *World) teleport(b *Ball, pos Vec2) {
	b.body.SetPosition(pos.toCP())
	b.body.SetVelocityVector(cp.Vector{})
	b.body.SetAngularVelocity(0)
	b.pending = Vec2{}
	b.prev = pos
}

// AllStopped reports whether every active ball is stopped under the truncation rule.
func (w *World) AllStopped() bool {
	for _, id := range w.ids {
		if !w.balls[id].Stopped() {
			return false
		}
	}
	return true
}

// KineticEnergy is the total translational kinetic energy of the active balls.
func (w *World) KineticEnergy() float64 {
	total := 0.0
	for _, id := range w.ids {
		b := w.balls[id]
		total += 0.5 * b.Mass * b.Velocity().MagnitudeSquared()
	}
	return total
}

// DrainEvents returns and clears the contacts recorded since the last call.
func (w *World) DrainEvents() []CollisionEvent {
	ev := w.events
	w.events = nil
	return ev
}

// Steps is the number of steps taken so far.
func (w *World) Steps() uint64 {
	return w.steps
}
