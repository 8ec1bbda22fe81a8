// Package probe extracts scalar observables from phase space and a law
// registry, for diagnostics such as energy-drift testing.
package probe

import (
	"github.com/kickthemoon/moo/internal/dual"
	"github.com/kickthemoon/moo/internal/laws"
	"github.com/kickthemoon/moo/internal/state"
)

// Probe produces a named scalar measurement from the system state.
type Probe interface {
	Name() string
	Measure(s *state.PhaseSpace, reg *laws.Registry) float64
}

// Energy is the canonical probe: total mechanical energy
// T_trans + T_rot + V.
type Energy struct{}

func (Energy) Name() string { return "total_energy" }

func (Energy) Measure(s *state.PhaseSpace, reg *laws.Registry) float64 {
	var tTrans float64
	for i := 0; i < s.Dof; i++ {
		tTrans += 0.5 * s.MassOf(i) * s.V[i] * s.V[i]
	}

	var tRot float64
	for i := range s.Rot {
		w := s.AngV[i]
		inertia := s.Inertia[i]
		iw := [3]float64{w[0] * inertia[0], w[1] * inertia[1], w[2] * inertia[2]}
		tRot += 0.5 * (w[0]*iw[0] + w[1]*iw[1] + w[2]*iw[2])
	}

	qDual := make([]dual.D, len(s.Q))
	for i, x := range s.Q {
		qDual[i] = dual.Constant(x)
	}
	v := reg.Potential(qDual, s.Mass).V

	return tTrans + tRot + v
}
