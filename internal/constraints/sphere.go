package constraints

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/kickthemoon/moo/internal/state"
)

// defaultMinSeparation is the smallest separation used to derive a contact
// normal before falling back to relative velocity (or the x-axis).
const defaultMinSeparation = 1e-6

// Sphere resolves pairwise non-penetration between particles treated as
// spheres of radius state.Radius[i], using positional correction plus a
// symmetric impulse along the contact normal.
type Sphere struct {
	Restitution  float64
	MinSeparation float64
}

// NewSphere returns a Sphere constraint with the default minimum
// separation.
func NewSphere(restitution float64) *Sphere {
	return &Sphere{Restitution: restitution, MinSeparation: defaultMinSeparation}
}

// NewSphereWithMinSeparation returns a Sphere constraint with an explicit
// minimum separation floor.
func NewSphereWithMinSeparation(restitution, minSeparation float64) *Sphere {
	if minSeparation < 0 {
		minSeparation = -minSeparation
	}
	return &Sphere{Restitution: restitution, MinSeparation: minSeparation}
}

// maxSpherePasses bounds how many pair sweeps one Project call makes.
const maxSpherePasses = 256

// Project sweeps all pairs repeatedly until a sweep finds no overlapping
// pair, or maxSpherePasses sweeps have run.
func (c *Sphere) Project(s *state.PhaseSpace) {
	for pass := 0; pass < maxSpherePasses; pass++ {
		if !c.sweep(s) {
			return
		}
	}
}

// sweep makes one pass over every pair i<j and reports whether it
// corrected any overlapping pair.
func (c *Sphere) sweep(s *state.PhaseSpace) bool {
	corrected := false
	n := s.NumParticles()
	minSep := c.MinSeparation
	if minSep < defaultMinSeparation {
		minSep = defaultMinSeparation
	}
	minSepSq := minSep * minSep

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			idxI, idxJ := i*3, j*3

			p1 := mgl64.Vec3{s.Q[idxI], s.Q[idxI+1], s.Q[idxI+2]}
			p2 := mgl64.Vec3{s.Q[idxJ], s.Q[idxJ+1], s.Q[idxJ+2]}
			diff := p1.Sub(p2)
			distSq := diff.Dot(diff)
			rSum := s.Radius[i] + s.Radius[j]

			if distSq >= rSum*rSum {
				continue
			}

			v1 := mgl64.Vec3{s.V[idxI], s.V[idxI+1], s.V[idxI+2]}
			v2 := mgl64.Vec3{s.V[idxJ], s.V[idxJ+1], s.V[idxJ+2]}
			relVel := v1.Sub(v2)

			var normal mgl64.Vec3
			var dist float64
			if distSq < minSepSq {
				fallback := normalizeOrZero(relVel)
				if fallback.Dot(fallback) == 0 {
					fallback = mgl64.Vec3{1, 0, 0}
				}
				normal, dist = fallback, minSep
			} else {
				dist = math.Sqrt(distSq)
				normal = diff.Mul(1 / dist)
			}

			overlap := rSum - dist
			if overlap <= 0 {
				continue
			}
			corrected = true

			correction := normal.Mul(overlap * 0.5)
			s.Q[idxI] += correction[0]
			s.Q[idxI+1] += correction[1]
			s.Q[idxI+2] += correction[2]
			s.Q[idxJ] -= correction[0]
			s.Q[idxJ+1] -= correction[1]
			s.Q[idxJ+2] -= correction[2]

			velAlongNormal := relVel.Dot(normal)
			if velAlongNormal >= 0 {
				continue
			}

			invMass1 := 1 / s.MassOf(idxI)
			invMass2 := 1 / s.MassOf(idxJ)
			impulseMag := -(1 + c.Restitution) * velAlongNormal / (invMass1 + invMass2)
			impulse := normal.Mul(impulseMag)

			s.V[idxI] += impulse[0] * invMass1
			s.V[idxI+1] += impulse[1] * invMass1
			s.V[idxI+2] += impulse[2] * invMass1
			s.V[idxJ] -= impulse[0] * invMass2
			s.V[idxJ+1] -= impulse[1] * invMass2
			s.V[idxJ+2] -= impulse[2] * invMass2
		}
	}
	return corrected
}

func normalizeOrZero(v mgl64.Vec3) mgl64.Vec3 {
	l2 := v.Dot(v)
	if l2 == 0 {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / math.Sqrt(l2))
}
