package probe

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/kickthemoon/moo/internal/laws"
	"github.com/kickthemoon/moo/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnergyProbeNameAndTranslationalKinetic(t *testing.T) {
	s, err := state.New(3)
	require.NoError(t, err)
	s.V[0] = 2
	s.Mass[0], s.Mass[1], s.Mass[2] = 2, 2, 2

	e := Energy{}
	assert.Equal(t, "total_energy", e.Name())
	assert.InDelta(t, 0.5*2*4, e.Measure(s, laws.NewRegistry()), 1e-12)
}

func TestEnergyProbeIncludesRotationalKinetic(t *testing.T) {
	s, err := state.New(3)
	require.NoError(t, err)
	s.ResizeRigid(1)
	s.Rot[0] = mgl64.Quat{W: 1}
	s.AngV[0] = mgl64.Vec3{1, 0, 0}
	s.Inertia[0] = mgl64.Vec3{2, 1, 1}

	e := Energy{}
	assert.InDelta(t, 0.5*2*1, e.Measure(s, laws.NewRegistry()), 1e-12)
}

func TestEnergyProbeIncludesPotential(t *testing.T) {
	s, err := state.New(6)
	require.NoError(t, err)
	s.Q[0] = 2

	reg := laws.NewRegistry()
	reg.Add(laws.NewSpring(10, 0, 0, 1))

	e := Energy{}
	expectedV := 0.5 * 10 * 2 * 2
	assert.InDelta(t, expectedV, e.Measure(s, reg), 1e-9)
}
