package neural

import (
	"github.com/yaricom/goNEAT/v4/neat"

	"github.com/pthm-cable/flappy/config"
)

// BrainInputs is the number of sensor nodes: bird y, distance to the gap top,
// distance to the gap bottom, and a bias node fed with 1.
const BrainInputs = 4

// BrainOutputs is the number of outputs from the brain network (flap signal).
const BrainOutputs = 1

// Config holds all neural network configuration.
type Config struct {
	NEAT                  *neat.Options
	Elitism               int     // Champions copied unchanged per species
	InitialConnectionProb float64 // Probability of each input->output link in the seed genomes
	FitnessThreshold      float64 // Run stops once a genome reaches this (0 = never)
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		NEAT:                  DefaultNEATOptions(),
		Elitism:               2,
		InitialConnectionProb: 1.0,
	}
}

// DefaultNEATOptions returns NEAT options tuned for the flap task.
func DefaultNEATOptions() *neat.Options {
	return &neat.Options{
		// Weight mutation
		WeightMutPower: 0.5,

		// Structural mutation rates
		MutateAddNodeProb:      0.2,
		MutateAddLinkProb:      0.5,
		MutateToggleEnableProb: 0.01,

		// Weight mutation probability
		MutateLinkWeightsProb: 0.8,

		// Reproduction mode probabilities
		MutateOnlyProb: 0.25,
		MateOnlyProb:   0.2,

		// Speciation
		CompatThreshold: 3.0,
		DisjointCoeff:   1.0,
		ExcessCoeff:     1.0,
		MutdiffCoeff:    0.5,

		// Species management
		DropOffAge:     20,
		SurvivalThresh: 0.2,

		PopSize: 50,
	}
}

// ConfigFromSettings converts the loaded YAML settings into neural configuration.
func ConfigFromSettings(cfg *config.Config) *Config {
	n := cfg.NEAT
	opts := DefaultNEATOptions()
	opts.WeightMutPower = n.WeightMutPower
	opts.MutateLinkWeightsProb = n.MutateLinkWeightsProb
	opts.MutateAddNodeProb = n.MutateAddNodeProb
	opts.MutateAddLinkProb = n.MutateAddLinkProb
	opts.MutateToggleEnableProb = n.MutateToggleEnableProb
	opts.MutateOnlyProb = n.MutateOnlyProb
	opts.MateOnlyProb = n.MateOnlyProb
	opts.CompatThreshold = n.CompatThreshold
	opts.DisjointCoeff = n.DisjointCoeff
	opts.ExcessCoeff = n.ExcessCoeff
	opts.MutdiffCoeff = n.MutdiffCoeff
	opts.DropOffAge = n.DropOffAge
	opts.SurvivalThresh = n.SurvivalThresh
	opts.PopSize = cfg.Training.Population

	return &Config{
		NEAT:                  opts,
		Elitism:               n.Elitism,
		InitialConnectionProb: n.InitialConnectionProb,
		FitnessThreshold:      cfg.Training.FitnessThreshold,
	}
}
