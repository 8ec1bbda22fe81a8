package laws

import (
	"math"

	"github.com/kickthemoon/moo/internal/dual"
)

// SPH is the Poly6-kernel smoothed-particle density-deviation potential:
//
//	rho_i = sum_j m_j * W(|q_i - q_j|, h)          (including self, j == i)
//	V     = sum_i 1/2 * k * (rho_i - rho0)^2 * (m_i/rho_i)
//
// Its gradient yields pressure-like forces.
type SPH struct {
	H         float64 // smoothing radius
	Rho0      float64 // rest density
	K         float64 // stiffness
	poly6Coef float64
}

// NewSPH returns an SPH density-deviation law for smoothing radius h, rest
// density rho0, and stiffness k.
func NewSPH(h, rho0, k float64) *SPH {
	return &SPH{
		H:         h,
		Rho0:      rho0,
		K:         k,
		poly6Coef: 315.0 / (64.0 * math.Pi * math.Pow(h, 9)),
	}
}

// minDensity below which the volume factor m_i/rho_i is short-circuited to
// zero to avoid dividing by a vanishing density.
const minDensity = 1e-6

func (s *SPH) Potential(q []dual.D, mass []float64) dual.D {
	total := dual.Constant(0)
	if len(q)%3 != 0 {
		return total
	}
	n := len(q) / 3
	stride := massStride(q, mass)
	hSq := s.H * s.H

	densities := make([]dual.D, n)
	for i := 0; i < n; i++ {
		ii := i * 3
		rho := dual.Constant(0)
		for j := 0; j < n; j++ {
			jj := j * 3
			dx := q[ii].Sub(q[jj])
			dy := q[ii+1].Sub(q[jj+1])
			dz := q[ii+2].Sub(q[jj+2])
			distSq := dx.Mul(dx).Add(dy.Mul(dy)).Add(dz.Mul(dz))

			if distSq.V >= hSq {
				continue
			}
			term := dual.Constant(hSq).Sub(distSq)
			w := term.Mul(term).Mul(term).Scale(s.poly6Coef)
			rho = rho.Add(w.Scale(mass[j*stride]))
		}
		densities[i] = rho
	}

	for i := 0; i < n; i++ {
		rho := densities[i]
		m := mass[i*stride]

		var vol dual.D
		if rho.V > minDensity {
			v, err := dual.Constant(m).Div(rho)
			if err != nil {
				vol = dual.Constant(0)
			} else {
				vol = v
			}
		} else {
			vol = dual.Constant(0)
		}

		delta := rho.Sub(dual.Constant(s.Rho0))
		u := delta.Mul(delta).Scale(0.5 * s.K)
		total = total.Add(u.Mul(vol))
	}
	return total
}
