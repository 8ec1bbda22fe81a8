// Package state holds the structure-of-arrays phase space mutated by
// integrators and read by laws, constraints, and probes.
package state

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// PhaseSpace is the SoA state of the system: positions, velocities, masses,
// radii, rigid-body rotations/angular velocities/inertia, and time.
type PhaseSpace struct {
	Dof int // translational degrees of freedom, always a multiple of 3

	Q    []float64 // generalized coordinates, len == Dof
	V    []float64 // generalized velocities, len == Dof
	Mass []float64 // either len == Dof (per-DOF) or len == Dof/3 (per-particle)

	Radius []float64 // len == Dof/3, one per particle

	Rot   []mgl64.Quat // unit-quaternion orientation, len == nR
	AngV  []mgl64.Vec3 // body-frame angular velocity, len == nR
	Inertia []mgl64.Vec3 // diagonal principal moments, len == nR

	T float64 // current simulation time
}

// New builds a phase space with dof translational degrees of freedom and
// per-DOF unit mass. dof must be a multiple of 3.
func New(dof int) (*PhaseSpace, error) {
	if dof%3 != 0 {
		return nil, errors.Errorf("state: dof %d is not a multiple of 3", dof)
	}
	n := dof / 3
	mass := make([]float64, dof)
	for i := range mass {
		mass[i] = 1
	}
	radius := make([]float64, n)
	for i := range radius {
		radius[i] = 1
	}
	return &PhaseSpace{
		Dof:    dof,
		Q:      make([]float64, dof),
		V:      make([]float64, dof),
		Mass:   mass,
		Radius: radius,
	}, nil
}

// NumParticles returns Dof/3.
func (p *PhaseSpace) NumParticles() int {
	return p.Dof / 3
}

// Resize grows or shrinks the translational arrays to a new dof. Existing
// values below the new size are preserved; new slots get unit mass and
// radius. Must only be called between steps, never during gradient
// evaluation.
func (p *PhaseSpace) Resize(newDof int) error {
	if newDof%3 != 0 {
		return errors.Errorf("state: dof %d is not a multiple of 3", newDof)
	}
	p.Q = resizeFloats(p.Q, newDof, 0)
	p.V = resizeFloats(p.V, newDof, 0)
	p.Mass = resizeFloats(p.Mass, newDof, 1)
	p.Radius = resizeFloats(p.Radius, newDof/3, 1)
	p.Dof = newDof
	return nil
}

// ResizeRigid grows or shrinks the rigid-body arrays to count bodies.
func (p *PhaseSpace) ResizeRigid(count int) {
	p.Rot = resizeQuats(p.Rot, count)
	p.AngV = resizeVec3s(p.AngV, count, mgl64.Vec3{})
	p.Inertia = resizeVec3s(p.Inertia, count, mgl64.Vec3{1, 1, 1})
}

// MassStride reports whether Mass is stored per-DOF (stride 3) or
// per-particle (stride 1), by comparing its length against Q's.
func (p *PhaseSpace) MassStride() int {
	if len(p.Mass) == len(p.Q) {
		return 3
	}
	return 1
}

// MassOf returns the mass associated with translational DOF index i,
// honoring whichever mass convention is in effect.
func (p *PhaseSpace) MassOf(i int) float64 {
	stride := p.MassStride()
	if stride == 3 {
		return p.Mass[i]
	}
	return p.Mass[i/3]
}

// Validate checks the documented invariants: q/mass length agreement,
// positive masses, non-negative radii, and unit-norm rotations.
func (p *PhaseSpace) Validate() error {
	if len(p.Q) != p.Dof || len(p.V) != p.Dof {
		return errors.Errorf("state: q/v length must equal dof %d", p.Dof)
	}
	if len(p.Mass) != p.Dof && len(p.Mass) != p.Dof/3 {
		return errors.Errorf("state: mass length %d matches neither dof %d nor dof/3 %d", len(p.Mass), p.Dof, p.Dof/3)
	}
	for i, m := range p.Mass {
		if m <= 0 {
			return errors.Errorf("state: mass[%d] = %g must be positive", i, m)
		}
	}
	for i, r := range p.Radius {
		if r < 0 {
			return errors.Errorf("state: radius[%d] = %g must be non-negative", i, r)
		}
	}
	const normTol = 1e-6
	for i, q := range p.Rot {
		n2 := q.W*q.W + q.V.Dot(q.V)
		if n2 < (1-normTol)*(1-normTol) || n2 > (1+normTol)*(1+normTol) {
			return errors.Errorf("state: rot[%d] is not unit-norm (|q|^2 = %g)", i, n2)
		}
	}
	return nil
}

func resizeFloats(s []float64, n int, fill float64) []float64 {
	if len(s) >= n {
		return s[:n]
	}
	out := make([]float64, n)
	copy(out, s)
	for i := len(s); i < n; i++ {
		out[i] = fill
	}
	return out
}

func resizeQuats(s []mgl64.Quat, n int) []mgl64.Quat {
	if len(s) >= n {
		return s[:n]
	}
	out := make([]mgl64.Quat, n)
	copy(out, s)
	for i := len(s); i < n; i++ {
		out[i] = mgl64.Quat{W: 1}
	}
	return out
}

func resizeVec3s(s []mgl64.Vec3, n int, fill mgl64.Vec3) []mgl64.Vec3 {
	if len(s) >= n {
		return s[:n]
	}
	out := make([]mgl64.Vec3, n)
	copy(out, s)
	for i := len(s); i < n; i++ {
		out[i] = fill
	}
	return out
}
