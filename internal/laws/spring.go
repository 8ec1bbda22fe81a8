package laws

import "github.com/kickthemoon/moo/internal/dual"

// Spring is a linear (Hookean) spring between two particle indices:
// V = 1/2 * k * (r - L0)^2.
type Spring struct {
	K          float64
	RestLength float64
	A, B       int // particle indices
}

// NewSpring returns a Spring law connecting particles a and b.
func NewSpring(k, restLength float64, a, b int) *Spring {
	return &Spring{K: k, RestLength: restLength, A: a, B: b}
}

// minSpringSeparation below which the pair contributes no potential, since
// the gradient direction is ill-defined at zero separation. The constraint
// layer is expected to separate colocated particles.
const minSpringSeparation = 1e-6

func (s *Spring) Potential(q []dual.D, mass []float64) dual.D {
	ia, ib := s.A*3, s.B*3
	if ia+2 >= len(q) || ib+2 >= len(q) {
		return dual.Constant(0)
	}

	dx := q[ia].Sub(q[ib])
	dy := q[ia+1].Sub(q[ib+1])
	dz := q[ia+2].Sub(q[ib+2])
	distSq := dx.Mul(dx).Add(dy.Mul(dy)).Add(dz.Mul(dz))

	if distSq.V < minSpringSeparation*minSpringSeparation {
		return dual.Constant(0)
	}

	dist, err := distSq.Sqrt()
	if err != nil {
		return dual.Constant(0)
	}

	displacement := dist.Sub(dual.Constant(s.RestLength))
	return displacement.Mul(displacement).Scale(0.5 * s.K)
}
