package game

import "github.com/jakecoffman/cp"

// attachFriction pins a ball to the table plane with a pivot joint whose
// positional correction is disabled (max bias 0). The joint only cancels
// velocity, and its max force caps how much it can cancel in one step: a slow
// ball stops outright, a fast one loses at most maxForce*dt/mass of speed.
// A non-positive maxForce leaves the ball frictionless.
func attachFriction(space *cp.Space, body *cp.Body, maxForce float64) *cp.Constraint {
	if maxForce <= 0 {
		return nil
	}
	joint := cp.NewPivotJoint2(space.StaticBody, body, cp.Vector{}, cp.Vector{})
	joint.SetMaxBias(0)
	joint.SetMaxForce(maxForce)
	return space.AddConstraint(joint)
}

// frictionDeltaV is the largest speed change friction applies in one step.
func frictionDeltaV(maxForce, mass, dt float64) float64 {
	if mass <= 0 {
		return 0
	}
	return maxForce * dt / mass
}
