package laws

import "github.com/kickthemoon/moo/internal/dual"

// UniformGravity is a constant downward field, V = g * sum_i m_i * y_i,
// matching the flat gravitational term the GPU force/integrate kernel
// adds unconditionally (spec.md §4.7's "add gravity"), as distinct from
// the pairwise Newtonian Gravity law used for orbital scenarios. Axis 1
// of each particle's three translational DOFs is treated as "up".
type UniformGravity struct {
	G float64
}

// NewUniformGravity returns a UniformGravity law with downward
// acceleration g (positive values pull toward -y).
func NewUniformGravity(g float64) *UniformGravity {
	return &UniformGravity{G: g}
}

func (u *UniformGravity) Potential(q []dual.D, mass []float64) dual.D {
	total := dual.Constant(0)
	if len(q)%3 != 0 {
		return total
	}
	n := len(q) / 3
	stride := massStride(q, mass)

	for i := 0; i < n; i++ {
		y := q[3*i+1]
		total = total.Add(y.Scale(u.G * mass[i*stride]))
	}
	return total
}
