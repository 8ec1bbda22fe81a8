package laws

import "github.com/kickthemoon/moo/internal/dual"

// Gravity is pairwise Newtonian gravitation:
// V = -G * sum_{i<j} m_i*m_j / r_ij.
type Gravity struct {
	G float64
}

// NewGravity returns a Gravity law with the given gravitational constant.
func NewGravity(g float64) *Gravity {
	return &Gravity{G: g}
}

func (g *Gravity) Potential(q []dual.D, mass []float64) dual.D {
	total := dual.Constant(0)
	if len(q)%3 != 0 {
		return total
	}
	n := len(q) / 3
	stride := massStride(q, mass)

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			ii, jj := i*3, j*3
			dx := q[ii].Sub(q[jj])
			dy := q[ii+1].Sub(q[jj+1])
			dz := q[ii+2].Sub(q[jj+2])
			distSq := dx.Mul(dx).Add(dy.Mul(dy)).Add(dz.Mul(dz))

			if distSq.V == 0 {
				// Colliding pair: the law contributes nothing; a
				// constraint, not the law, handles contact.
				continue
			}

			dist, err := distSq.Sqrt()
			if err != nil {
				continue
			}

			m1m2 := mass[i*stride] * mass[j*stride]
			recip, err := dist.Recip()
			if err != nil {
				continue
			}
			term := recip.Scale(-g.G * m1m2)
			total = total.Add(term)
		}
	}
	return total
}
