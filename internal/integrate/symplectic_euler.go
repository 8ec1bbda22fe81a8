package integrate

import (
	"github.com/kickthemoon/moo/internal/constraints"
	"github.com/kickthemoon/moo/internal/laws"
	"github.com/kickthemoon/moo/internal/state"
)

// SymplecticEuler is the first-order symplectic Euler scheme: compute
// forces, kick, drift, project constraints, advance time.
type SymplecticEuler struct{}

func (SymplecticEuler) Step(s *state.PhaseSpace, reg *laws.Registry, cons []constraints.Constraint, dt float64) {
	qDual := newDualSlice(s.Q)
	forces := gradient(s.Q, s.Mass, reg, qDual)

	kick(s, forces, 1.0, dt)
	drift(s, dt)

	applyConstraints(s, cons)

	s.T += dt
}
