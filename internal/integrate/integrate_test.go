package integrate

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/kickthemoon/moo/internal/constraints"
	"github.com/kickthemoon/moo/internal/laws"
	"github.com/kickthemoon/moo/internal/probe"
	"github.com/kickthemoon/moo/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario 1 from spec.md §8: harmonic oscillator. Two particles, masses
// 1.0 and 1000.0, single spring k=10 L0=0. Velocity-Verlet, dt=0.01, 1000
// steps. Energy must drift by less than 1e-2 of its initial value.
func TestHarmonicOscillatorEnergyConservation(t *testing.T) {
	s, err := state.New(6)
	require.NoError(t, err)
	s.Q[0] = 1
	s.Mass = []float64{1, 1, 1, 1000, 1000, 1000}

	reg := laws.NewRegistry()
	reg.Add(laws.NewSpring(10, 0, 0, 1))

	integrator := VelocityVerlet{}
	e := probe.Energy{}
	initial := e.Measure(s, reg)

	for i := 0; i < 1000; i++ {
		integrator.Step(s, reg, nil, 0.01)
	}

	final := e.Measure(s, reg)
	assert.Less(t, math.Abs(final-initial), 1e-2*math.Abs(initial))
}

// Scenario 2 from spec.md §8: circular orbit. Masses 1000 and 10,
// separation 100, G=1, zero center-of-mass momentum, circular orbit.
// Velocity-Verlet, dt=1e-3, 1e4 steps. Final separation within 0.1 of 100.
func TestCircularOrbitSeparationStable(t *testing.T) {
	s, err := state.New(6)
	require.NoError(t, err)

	const (
		m1  = 1000.0
		m2  = 10.0
		sep = 100.0
		g   = 1.0
	)
	s.Mass = []float64{m1, m1, m1, m2, m2, m2}
	s.Q[3] = sep // particle 2 at (sep, 0, 0); particle 1 at origin

	// Circular orbit speed around the common center of mass, with zero net
	// momentum: v1*m1 = v2*m2, and v1+v2 relative speed satisfies
	// v_rel^2 = G*(m1+m2)/sep for a circular two-body orbit.
	vRel := math.Sqrt(g * (m1 + m2) / sep)
	v1 := vRel * m2 / (m1 + m2)
	v2 := vRel * m1 / (m1 + m2)
	s.V[1] = v1   // particle 1 drifts +y
	s.V[4] = -v2  // particle 2 drifts -y, opposite momentum

	reg := laws.NewRegistry()
	reg.Add(laws.NewGravity(g))

	integrator := VelocityVerlet{}
	for i := 0; i < 10000; i++ {
		integrator.Step(s, reg, nil, 1e-3)
	}

	dx := s.Q[0] - s.Q[3]
	dy := s.Q[1] - s.Q[4]
	dz := s.Q[2] - s.Q[5]
	finalSep := math.Sqrt(dx*dx + dy*dy + dz*dz)
	assert.InDelta(t, sep, finalSep, 0.1)
}

// Scenario 5 from spec.md §8: Dzhanibekov tumbling. Single rigid body,
// principal inertia (1,2,3), initial omega=(0.1,5,0.1). Velocity-Verlet,
// dt=1e-3, 5000 steps. Rotational kinetic energy drift must be below 1.0.
func TestDzhanibekovRotationalEnergyBounded(t *testing.T) {
	s, err := state.New(3)
	require.NoError(t, err)
	s.ResizeRigid(1)
	s.Rot[0] = mgl64.Quat{W: 1}
	s.AngV[0] = mgl64.Vec3{0.1, 5, 0.1}
	s.Inertia[0] = mgl64.Vec3{1, 2, 3}

	rotEnergy := func() float64 {
		w := s.AngV[0]
		inertia := s.Inertia[0]
		return 0.5 * (w[0]*w[0]*inertia[0] + w[1]*w[1]*inertia[1] + w[2]*w[2]*inertia[2])
	}

	initial := rotEnergy()

	integrator := VelocityVerlet{}
	reg := laws.NewRegistry()
	for i := 0; i < 5000; i++ {
		integrator.Step(s, reg, nil, 1e-3)
	}

	final := rotEnergy()
	assert.Less(t, math.Abs(final-initial), 1.0)

	norm := math.Sqrt(s.Rot[0].W*s.Rot[0].W + s.Rot[0].V.Dot(s.Rot[0].V))
	assert.InDelta(t, 1.0, norm, 1e-6)
}

func TestSymplecticEulerAdvancesTime(t *testing.T) {
	s, err := state.New(3)
	require.NoError(t, err)
	reg := laws.NewRegistry()

	SymplecticEuler{}.Step(s, reg, nil, 0.1)
	assert.InDelta(t, 0.1, s.T, 1e-12)
}

func TestVelocityVerletAppliesConstraintsBetweenForceEvaluations(t *testing.T) {
	s, err := state.New(3)
	require.NoError(t, err)
	s.Q[1] = -1
	s.V[1] = -1

	reg := laws.NewRegistry()
	floor := constraints.NewFloor(0, 0.5)

	VelocityVerlet{}.Step(s, reg, []constraints.Constraint{floor}, 0.01)

	assert.GreaterOrEqual(t, s.Q[1], 0.0)
}
