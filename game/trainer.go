package game

import (
	"context"
	"math/rand"

	"github.com/pthm-cable/flappy/neural"
	"github.com/pthm-cable/flappy/telemetry"
)

// Ticks of timing kept for the per-generation perf summary.
const perfWindow = 600

// Trainer evaluates population generations by playing one episode per generation.
type Trainer struct {
	settings *Settings
	rng      *rand.Rand
	renderer Renderer
	perf     *telemetry.PerfCollector

	last Result
}

// NewTrainer creates a trainer. renderer may be nil for headless training.
func NewTrainer(settings *Settings, rng *rand.Rand, renderer Renderer) *Trainer {
	return &Trainer{
		settings: settings,
		rng:      rng,
		renderer: renderer,
		perf:     telemetry.NewPerfCollector(perfWindow),
	}
}

// Evaluate plays one episode with every individual and leaves the episode
// fitness on each of them. It has the signature of neural.EvalFunc.
func (t *Trainer) Evaluate(ctx context.Context, generation int, individuals []*neural.Individual) error {
	genomes := make([]Genome, len(individuals))
	for i, ind := range individuals {
		genomes[i] = ind
	}

	ep, err := NewEpisode(genomes, t.settings, t.rng, t.renderer)
	if err != nil {
		return err
	}
	ep.SetGeneration(generation)
	t.perf.Reset()
	ep.SetPerf(t.perf)

	t.last, err = ep.Run(ctx)
	return err
}

// LastResult returns the result of the most recent episode.
func (t *Trainer) LastResult() Result {
	return t.last
}

// Perf returns the tick timing of the most recent episodes.
func (t *Trainer) Perf() *telemetry.PerfCollector {
	return t.perf
}
