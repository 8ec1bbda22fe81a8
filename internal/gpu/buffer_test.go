package gpu

import (
	"testing"

	"github.com/kickthemoon/moo/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeParticlesRoundTrip(t *testing.T) {
	s, err := state.New(6)
	require.NoError(t, err)
	s.Q = []float64{1, 2, 3, -4, 5, -6}
	s.V = []float64{0.5, -0.5, 1.5, 2, 0, -2}
	s.Mass = []float64{1, 1, 1, 2, 2, 2}

	buf, err := EncodeParticles(s)
	require.NoError(t, err)
	assert.Len(t, buf, 2*particleStride)

	decoded, err := state.New(6)
	require.NoError(t, err)
	decoded.Mass = []float64{1, 1, 1, 2, 2, 2}
	require.NoError(t, DecodeParticles(buf, decoded))

	for i := range s.Q {
		assert.InDelta(t, s.Q[i], decoded.Q[i], 1e-5)
	}
	for i := range s.V {
		assert.InDelta(t, s.V[i], decoded.V[i], 1e-5)
	}
}

func TestDecodeParticlesRejectsWrongSize(t *testing.T) {
	s, err := state.New(3)
	require.NoError(t, err)
	err = DecodeParticles(make([]byte, particleStride*2), s)
	assert.Error(t, err)
}

func TestEncodeSimParams(t *testing.T) {
	buf, err := EncodeSimParams(SimParams{Dt: 0.01, H: 1.0, ParticleCount: 64, GridDim: 128})
	require.NoError(t, err)
	assert.Len(t, buf, SimParamsSize) // 16 fields * 4 bytes, padded to a multiple of 16
}

func TestEncodeBitonicStages(t *testing.T) {
	stages := BitonicStages(4)
	buf := EncodeBitonicStages(stages)
	assert.Len(t, buf, len(stages)*BitonicStageStride)
}
