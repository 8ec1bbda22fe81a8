package constraints

import "github.com/kickthemoon/moo/internal/state"

// frictionFactor scales the tangential velocity components of a particle
// that strikes the floor, approximating sliding friction.
const frictionFactor = 0.9

// Floor clamps particles to stay at or above YLevel, reflecting the
// vertical velocity component with coefficient of restitution Restitution
// and damping the tangential components by a fixed friction factor.
type Floor struct {
	YLevel      float64
	Restitution float64
}

// NewFloor returns a Floor constraint at the given height and restitution.
func NewFloor(yLevel, restitution float64) *Floor {
	return &Floor{YLevel: yLevel, Restitution: restitution}
}

func (f *Floor) Project(s *state.PhaseSpace) {
	n := s.NumParticles()
	for i := 0; i < n; i++ {
		idx := i * 3
		y := s.Q[idx+1]
		if y >= f.YLevel {
			continue
		}

		s.Q[idx+1] = f.YLevel

		vy := s.V[idx+1]
		if vy < 0 {
			s.V[idx+1] = -vy * f.Restitution
			s.V[idx] *= frictionFactor
			s.V[idx+2] *= frictionFactor
		}
	}
}
