// Package integrate advances phase space forward in time using symplectic
// schemes that derive conservative forces from forward-mode AD of the law
// registry's total potential.
package integrate

import (
	"github.com/kickthemoon/moo/internal/constraints"
	"github.com/kickthemoon/moo/internal/dual"
	"github.com/kickthemoon/moo/internal/laws"
	"github.com/kickthemoon/moo/internal/state"
	"gonum.org/v1/gonum/floats"
)

// Integrator advances a phase space by one timestep of size dt under the
// given law registry, applying constraints in registration order.
type Integrator interface {
	Step(s *state.PhaseSpace, reg *laws.Registry, cons []constraints.Constraint, dt float64)
}

// gradient computes F_i = -dV/dq_i for every translational DOF by sweeping
// one seeded derivative at a time through the law registry. This is the
// O(dof * cost(V)) forward-mode AD pass described in spec.md §4.1: fine
// for the CPU baseline sizes this package targets, not for SPH-scale
// problems (those run on the GPU path instead).
func gradient(q []float64, mass []float64, reg *laws.Registry, qDual []dual.D) []float64 {
	forces := make([]float64, len(q))
	for i := range qDual {
		qDual[i].V = q[i]
		qDual[i].R = 0
	}
	for i := range q {
		qDual[i].R = 1
		potential := reg.Potential(qDual, mass)
		forces[i] = -potential.R
		qDual[i].R = 0
	}
	return forces
}

func newDualSlice(q []float64) []dual.D {
	out := make([]dual.D, len(q))
	for i, x := range q {
		out[i] = dual.Constant(x)
	}
	return out
}

func applyConstraints(s *state.PhaseSpace, cons []constraints.Constraint) {
	for _, c := range cons {
		c.Project(s)
	}
}

// kick advances s.V by scale*dt*forces[i]/mass[i], using gonum/floats for
// the two whole-slice passes (elementwise divide, then scaled add) the
// way the teacher vectorizes per-field updates in its own
// UpdateVelocities/UpdatePositions helpers.
func kick(s *state.PhaseSpace, forces []float64, scale, dt float64) {
	massPerDOF := make([]float64, s.Dof)
	for i := range massPerDOF {
		massPerDOF[i] = s.MassOf(i)
	}
	accel := make([]float64, s.Dof)
	floats.DivTo(accel, forces, massPerDOF)
	floats.AddScaled(s.V, scale*dt, accel)
}

// drift advances s.Q by dt*s.V in place.
func drift(s *state.PhaseSpace, dt float64) {
	floats.AddScaled(s.Q, dt, s.V)
}
