package integrate

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/kickthemoon/moo/internal/constraints"
	"github.com/kickthemoon/moo/internal/laws"
	"github.com/kickthemoon/moo/internal/manifold"
	"github.com/kickthemoon/moo/internal/state"
)

// VelocityVerlet is the second-order, time-reversible symplectic scheme:
// half-kick, drift, project constraints, recompute forces, half-kick, then
// a torque-free SO(3) splitting step for any rigid bodies.
type VelocityVerlet struct{}

func (VelocityVerlet) Step(s *state.PhaseSpace, reg *laws.Registry, cons []constraints.Constraint, dt float64) {
	qDual := newDualSlice(s.Q)

	forces := gradient(s.Q, s.Mass, reg, qDual)
	kick(s, forces, 0.5, dt)
	drift(s, dt)

	applyConstraints(s, cons)

	forces = gradient(s.Q, s.Mass, reg, qDual)
	kick(s, forces, 0.5, dt)

	stepRigidBodies(s, dt)

	s.T += dt
}

// stepRigidBodies advances each rigid body's torque-free rotation via
// Euler's equations, I*domega/dt = -omega x (I*omega), then retracts the
// orientation along the resulting angular displacement.
func stepRigidBodies(s *state.PhaseSpace, dt float64) {
	for i := range s.Rot {
		omega := s.AngV[i]
		inertia := s.Inertia[i]

		iw := componentMul(omega, inertia)
		wxiw := omega.Cross(iw)
		dOmega := componentDiv(wxiw, inertia).Mul(-1)

		omega = omega.Add(dOmega.Mul(dt))
		s.AngV[i] = omega

		s.Rot[i] = manifold.SO3.Retract(s.Rot[i], omega.Mul(dt))
	}
}

func componentMul(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

func componentDiv(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{a[0] / b[0], a[1] / b[1], a[2] / b[2]}
}
