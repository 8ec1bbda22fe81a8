package simulation

import (
	"context"

	"github.com/google/uuid"
	"github.com/kickthemoon/moo/internal/config"
	"github.com/kickthemoon/moo/internal/constraints"
	"github.com/kickthemoon/moo/internal/gpu"
	"github.com/kickthemoon/moo/internal/integrate"
	"github.com/kickthemoon/moo/internal/laws"
	"github.com/kickthemoon/moo/internal/state"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Facade owns everything one simulation run needs: the phase space, the
// law registry and constraint list driving the CPU path, and (once
// EnableGPU has succeeded) the GPU engine driving the SPH path. It exposes
// the four operations a host loop or a test drives: Reset, Step,
// SetParameters, CurrentOutputBuffer.
type Facade struct {
	id     uuid.UUID
	cfg    *config.Config
	state  *state.PhaseSpace
	reg    *laws.Registry
	cons   []constraints.Constraint
	integr integrate.Integrator

	engine *gpu.Engine
	log    zerolog.Logger
}

// New constructs a Facade from cfg and seeds its initial lattice. It
// does not acquire a GPU device even when cfg.UseGPU is set; call
// EnableGPU explicitly once a context for adapter/device acquisition is
// available.
func New(cfg *config.Config) (*Facade, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	f := &Facade{
		id:     uuid.New(),
		cfg:    cfg,
		integr: integrate.VelocityVerlet{},
	}
	f.log = log.With().Str("facade_id", f.id.String()).Logger()
	if err := f.Reset(); err != nil {
		return nil, err
	}
	return f, nil
}

// EnableGPU acquires a GPU device and uploads the current state to it.
// A device error here is surfaced directly; per spec.md's error model
// the facade cannot recover from it and a new Facade must be
// constructed instead.
func (f *Facade) EnableGPU(ctx context.Context) error {
	n := uint32(f.state.NumParticles())
	engine, err := gpu.NewEngine(ctx, n, f.cfg.GridDim)
	if err != nil {
		return errors.Wrap(err, "simulation: enable gpu")
	}
	if err := engine.Upload(f.state); err != nil {
		return errors.Wrap(err, "simulation: initial gpu upload")
	}
	f.engine = engine
	f.cfg.UseGPU = true
	f.log.Info().Msg("gpu engine acquired")
	return nil
}

// Reset rebuilds the particle lattice deterministically from
// Config.LatticeCols/LatticeSpacing/LatticeStartY: columns x rows in the
// XZ plane, one layer, at rest. This replaces the teacher's pure-random
// scatter so repeated runs with the same Config start from the same
// state, which spec.md §8 scenario 6 (GPU/CPU agreement) requires.
func (f *Facade) Reset() error {
	n := f.cfg.NumParticles
	s, err := state.New(n * 3)
	if err != nil {
		return errors.Wrap(err, "simulation: reset")
	}

	cols := f.cfg.LatticeCols
	spacing := f.cfg.LatticeSpacing
	s.Mass = make([]float64, n) // per-particle convention, stride 1
	for i := 0; i < n; i++ {
		col := i % cols
		row := i / cols
		s.Q[3*i] = float64(col) * spacing
		s.Q[3*i+1] = f.cfg.LatticeStartY
		s.Q[3*i+2] = float64(row) * spacing
		s.Mass[i] = 1.0
		s.Radius[i] = spacing * 0.4
	}
	f.state = s

	f.reg = laws.NewRegistry()
	f.reg.Add(laws.NewGravity(f.cfg.GravitationalConstant))
	f.reg.Add(laws.NewSPH(f.cfg.H, f.cfg.Rho0, f.cfg.K))

	f.cons = []constraints.Constraint{
		constraints.NewFloor(f.cfg.FloorLevel, f.cfg.FloorRestitution),
		constraints.NewSphere(f.cfg.FloorRestitution),
	}
	return nil
}

// Step advances the simulation by nSubsteps integrator steps of size
// dt/nSubsteps each. When GPU acceleration is enabled it instead
// dispatches nSubsteps GPU steps and reads the result back into the CPU
// state, so CurrentOutputBuffer and State agree regardless of path.
func (f *Facade) Step(dt float64, nSubsteps int) error {
	if nSubsteps <= 0 {
		return errors.Errorf("simulation: n_substeps must be positive, got %d", nSubsteps)
	}
	sub := dt / float64(nSubsteps)

	if f.cfg.UseGPU && f.engine != nil {
		params := gpu.SimParams{
			Dt:                    float32(sub),
			H:                     float32(f.cfg.H),
			Rho0:                  float32(f.cfg.Rho0),
			K:                     float32(f.cfg.K),
			Mu:                    float32(f.cfg.Mu),
			ParticleCount:         uint32(f.state.NumParticles()),
			GridDim:               f.cfg.GridDim,
			ClampNegativePressure: boolToU32(f.cfg.ClampNegativePressure),
		}
		for i := 0; i < nSubsteps; i++ {
			if err := f.engine.Step(params); err != nil {
				return errors.Wrap(err, "simulation: gpu step")
			}
		}

		buf, err := f.engine.ReadParticles()
		if err != nil {
			return errors.Wrap(err, "simulation: gpu readback")
		}
		if err := gpu.DecodeParticles(buf, f.state); err != nil {
			return errors.Wrap(err, "simulation: decode gpu readback")
		}
		return nil
	}

	for i := 0; i < nSubsteps; i++ {
		f.integr.Step(f.state, f.reg, f.cons, sub)
	}
	return nil
}

// SetParameters applies a new configuration's law and kernel
// coefficients without reseeding the lattice or touching GPU buffers.
// Particle count changes are rejected; call Reset for those.
func (f *Facade) SetParameters(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.NumParticles != f.cfg.NumParticles {
		return errors.New("simulation: set_parameters cannot change particle count, call Reset")
	}
	f.cfg = cfg
	f.reg = laws.NewRegistry()
	f.reg.Add(laws.NewGravity(cfg.GravitationalConstant))
	f.reg.Add(laws.NewSPH(cfg.H, cfg.Rho0, cfg.K))
	f.cons = []constraints.Constraint{
		constraints.NewFloor(cfg.FloorLevel, cfg.FloorRestitution),
		constraints.NewSphere(cfg.FloorRestitution),
	}
	return nil
}

// CurrentOutputBuffer returns the GPU particle buffer a renderer should
// bind read-only for the current frame, or nil on the CPU path.
func (f *Facade) CurrentOutputBuffer() interface{} {
	if f.engine == nil {
		return nil
	}
	return f.engine.CurrentParticleBuffer()
}

// State exposes the CPU phase space directly, read-only by convention,
// for probes and tests.
func (f *Facade) State() *state.PhaseSpace {
	return f.state
}

func boolToU32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
