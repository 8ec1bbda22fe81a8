// Command moosim runs a headless simulation loop: no renderer, no input,
// just the facade stepping forward and logging probe measurements. It
// exists to exercise internal/simulation outside of test code.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/kickthemoon/moo/internal/config"
	"github.com/kickthemoon/moo/internal/laws"
	"github.com/kickthemoon/moo/internal/probe"
	"github.com/kickthemoon/moo/internal/simulation"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	steps := flag.Int("steps", 1000, "number of substeps to run")
	dt := flag.Float64("dt", 0.01, "timestep in seconds")
	particles := flag.Int("particles", 64, "particle count")
	useGPU := flag.Bool("gpu", false, "drive the GPU SPH path instead of the CPU AD path")
	verbose := flag.Bool("v", false, "debug-level logging")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := config.DefaultConfig()
	cfg.NumParticles = *particles

	facade, err := simulation.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("construct simulation facade")
	}

	if *useGPU {
		if err := facade.EnableGPU(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("enable gpu acceleration")
		}
	}

	energy := probe.Energy{}
	reg := laws.NewRegistry()
	reg.Add(laws.NewGravity(cfg.GravitationalConstant))

	log.Info().Int("particles", *particles).Int("steps", *steps).Float64("dt", *dt).Msg("starting run")

	for i := 0; i < *steps; i++ {
		if err := facade.Step(*dt, 1); err != nil {
			log.Fatal().Err(err).Int("step", i).Msg("step failed")
		}
		if i%100 == 0 {
			log.Debug().Int("step", i).Float64("energy", energy.Measure(facade.State(), reg)).Msg("progress")
		}
	}

	log.Info().Float64("final_energy", energy.Measure(facade.State(), reg)).Msg("run complete")
}
