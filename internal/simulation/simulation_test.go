package simulation

import (
	"testing"

	"github.com/kickthemoon/moo/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSeedsDeterministicLattice(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.NumParticles = 12
	cfg.LatticeCols = 4

	f, err := New(cfg)
	require.NoError(t, err)

	s := f.State()
	require.Equal(t, 12, s.NumParticles())
	assert.Equal(t, 0.0, s.Q[0])
	assert.Equal(t, cfg.LatticeSpacing, s.Q[3])
	assert.Equal(t, cfg.LatticeStartY, s.Q[1])
}

func TestResetIsDeterministic(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.NumParticles = 8

	f1, err := New(cfg)
	require.NoError(t, err)
	f2, err := New(cfg)
	require.NoError(t, err)

	assert.Equal(t, f1.State().Q, f2.State().Q)
}

func TestStepAdvancesCPUState(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.NumParticles = 4
	cfg.LatticeCols = 2

	f, err := New(cfg)
	require.NoError(t, err)

	before := append([]float64(nil), f.State().Q...)
	require.NoError(t, f.Step(0.01, 1))

	changed := false
	for i := range before {
		if before[i] != f.State().Q[i] {
			changed = true
			break
		}
	}
	assert.True(t, changed, "position should change under gravity")
}

func TestStepRejectsNonPositiveSubsteps(t *testing.T) {
	f, err := New(config.DefaultConfig())
	require.NoError(t, err)
	assert.Error(t, f.Step(0.01, 0))
}

func TestSetParametersRejectsParticleCountChange(t *testing.T) {
	f, err := New(config.DefaultConfig())
	require.NoError(t, err)

	other := config.DefaultConfig()
	other.NumParticles = f.cfg.NumParticles + 1
	assert.Error(t, f.SetParameters(other))
}

func TestSetParametersAppliesNewCoefficients(t *testing.T) {
	f, err := New(config.DefaultConfig())
	require.NoError(t, err)

	updated := f.cfg.Clone()
	updated.GravitationalConstant = 42
	require.NoError(t, f.SetParameters(updated))
	assert.Equal(t, 42.0, f.cfg.GravitationalConstant)
}

func TestCurrentOutputBufferNilWithoutGPU(t *testing.T) {
	f, err := New(config.DefaultConfig())
	require.NoError(t, err)
	assert.Nil(t, f.CurrentOutputBuffer())
}
