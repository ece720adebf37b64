package game

import "math"

// segmentDistance returns the shortest distance from point c to the segment p1→p2.
// A zero-length segment degrades to a point distance.
func segmentDistance(p1, p2, c Vec2) float64 {
	d := p2.Minus(p1)
	lenSq := d.MagnitudeSquared()
	if lenSq == 0 {
		return p1.Distance(c)
	}
	t := c.Minus(p1).Dot(d) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return p1.Plus(d.Times(t)).Distance(c)
}

// isConvex reports whether the polygon is strictly convex in either winding.
// Collinear consecutive edges are rejected.
func isConvex(verts []Vec2) bool {
	n := len(verts)
	if n < 3 {
		return false
	}
	sign := 0.0
	for i := 0; i < n; i++ {
		a := verts[i]
		b := verts[(i+1)%n]
		c := verts[(i+2)%n]
		cross := b.Minus(a).Cross(c.Minus(b))
		if cross == 0 {
			return false
		}
		if sign == 0 {
			sign = math.Copysign(1, cross)
			continue
		}
		if math.Copysign(1, cross) != sign {
			return false
		}
	}
	// A self-intersecting star also keeps one turning sign; total turning must be one revolution.
	turn := 0.0
	for i := 0; i < n; i++ {
		e1 := verts[(i+1)%n].Minus(verts[i])
		e2 := verts[(i+2)%n].Minus(verts[(i+1)%n])
		turn += math.Atan2(e1.Cross(e2), e1.Dot(e2))
	}
	return math.Abs(math.Abs(turn)-2*math.Pi) < 1e-6
}

// cueAngle returns the cue angle in degrees for a cue ball at ball and a pointer at aim.
// Screen y grows downward, so the y difference is inverted to keep "up" positive.
func cueAngle(ball, aim Vec2) float64 {
	dx := ball.X - aim.X
	dy := aim.Y - ball.Y
	return math.Atan2(dy, dx) * 180 / math.Pi
}

// shotImpulse converts a cue angle and force into the impulse on the cue ball.
// The cue sits on the far side of the ball from the pointer, so the ball travels toward it.
func shotImpulse(angleDeg, force float64) Vec2 {
	rad := angleDeg * math.Pi / 180
	return Vec2{X: force * -math.Cos(rad), Y: force * math.Sin(rad)}
}

// chargeBars returns the number of charge-meter bars for a force.
func chargeBars(force, perBar float64) int {
	if force <= 0 || perBar <= 0 {
		return 0
	}
	return int(math.Ceil(force / perBar))
}
