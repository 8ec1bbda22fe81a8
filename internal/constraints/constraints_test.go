package constraints

import (
	"math"
	"math/rand"
	"testing"

	"github.com/kickthemoon/moo/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloorClampsPenetrationAndReflects(t *testing.T) {
	s, err := state.New(3)
	require.NoError(t, err)
	s.Q[1] = -0.5
	s.V[0] = 2
	s.V[1] = -4
	s.V[2] = 1

	f := NewFloor(0, 0.5)
	f.Project(s)

	assert.Equal(t, 0.0, s.Q[1])
	assert.InDelta(t, 2.0, s.V[1], 1e-12)
	assert.InDelta(t, 1.8, s.V[0], 1e-12)
	assert.InDelta(t, 0.9, s.V[2], 1e-12)
}

func TestFloorIsIdempotent(t *testing.T) {
	s, err := state.New(3)
	require.NoError(t, err)
	s.Q[1] = 5
	s.V[1] = -1

	f := NewFloor(0, 0.5)
	f.Project(s)
	before := append([]float64(nil), s.V...)
	f.Project(s)
	assert.Equal(t, before, s.V)
}

// Scenario 4 from spec.md §8: twenty overlapping particles; after one
// projection pass, all pairwise distances exceed r_i+r_j - 1e-6.
func TestSphereNonPenetrationAfterOneProjection(t *testing.T) {
	const n = 20
	s, err := state.New(n * 3)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < n; i++ {
		idx := i * 3
		s.Q[idx] = rng.Float64() * 0.1
		s.Q[idx+1] = rng.Float64() * 0.1
		s.Q[idx+2] = rng.Float64() * 0.1
		s.Radius[i] = 0.5
	}

	c := NewSphere(0.5)
	c.Project(s)

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			ii, jj := i*3, j*3
			dx := s.Q[ii] - s.Q[jj]
			dy := s.Q[ii+1] - s.Q[jj+1]
			dz := s.Q[ii+2] - s.Q[jj+2]
			dist := math.Sqrt(dx*dx + dy*dy + dz*dz)
			minAllowed := s.Radius[i] + s.Radius[j] - 1e-6
			assert.GreaterOrEqual(t, dist, minAllowed, "pair (%d,%d)", i, j)
		}
	}
}

func TestSphereImpulseConservesMomentumForEqualMass(t *testing.T) {
	s, err := state.New(6)
	require.NoError(t, err)
	s.Radius[0], s.Radius[1] = 0.6, 0.6
	s.Q[0], s.Q[3] = 0, 1 // overlapping (sum radius 1.2 > distance 1)
	s.V[0], s.V[3] = 1, -1

	totalBefore := s.Mass[0]*s.V[0] + s.Mass[3]*s.V[3]

	c := NewSphere(1.0)
	c.Project(s)

	totalAfter := s.Mass[0]*s.V[0] + s.Mass[3]*s.V[3]
	assert.InDelta(t, totalBefore, totalAfter, 1e-9)
}
