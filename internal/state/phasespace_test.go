package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsNonMultipleOfThree(t *testing.T) {
	_, err := New(10)
	assert.Error(t, err)
}

func TestNewDefaults(t *testing.T) {
	ps, err := New(6)
	require.NoError(t, err)
	assert.Equal(t, 2, ps.NumParticles())
	assert.Len(t, ps.Mass, 6)
	assert.Len(t, ps.Radius, 2)
	require.NoError(t, ps.Validate())
}

func TestMassStrideDetection(t *testing.T) {
	ps, err := New(6)
	require.NoError(t, err)
	assert.Equal(t, 3, ps.MassStride())

	ps.Mass = []float64{2, 5}
	assert.Equal(t, 1, ps.MassStride())
	assert.Equal(t, 2.0, ps.MassOf(0))
	assert.Equal(t, 2.0, ps.MassOf(1))
	assert.Equal(t, 5.0, ps.MassOf(3))
}

func TestResizePreservesExistingValues(t *testing.T) {
	ps, err := New(3)
	require.NoError(t, err)
	ps.Q[0] = 1.5

	require.NoError(t, ps.Resize(6))
	assert.Equal(t, 1.5, ps.Q[0])
	assert.Len(t, ps.Q, 6)
	assert.Equal(t, 1.0, ps.Mass[3])
	assert.Equal(t, 1.0, ps.Radius[1])
}

func TestValidateRejectsNonPositiveMass(t *testing.T) {
	ps, err := New(3)
	require.NoError(t, err)
	ps.Mass[0] = 0
	assert.Error(t, ps.Validate())
}

func TestValidateRejectsNonUnitRotation(t *testing.T) {
	ps, err := New(3)
	require.NoError(t, err)
	ps.ResizeRigid(1)
	ps.Rot[0].W = 5
	assert.Error(t, ps.Validate())
}
