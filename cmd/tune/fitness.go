package main

import (
	"context"
	"math"
	"math/rand"
	"sync"

	"github.com/pthm-cable/flappy/config"
	"github.com/pthm-cable/flappy/game"
	"github.com/pthm-cable/flappy/neural"
)

// FitnessEvaluator runs short headless trainings and scores parameter vectors.
type FitnessEvaluator struct {
	params      *ParamVector
	generations int
	maxTicks    int
	seeds       []int64
	baseConfig  *config.Config

	mu          sync.Mutex
	bestFitness float64
	lastScore   float64 // mean best pipe score from the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, generations, maxTicks int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		generations: generations,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// LastScore returns the mean best score of the most recent evaluation.
func (fe *FitnessEvaluator) LastScore() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastScore
}

// runResult holds the outcome of one training run.
type runResult struct {
	bestFitness float64
	bestScore   int
	err         error
}

// Evaluate computes fitness for a raw parameter vector (lower = better):
// the negated mean champion fitness over all seeds.
func (fe *FitnessEvaluator) Evaluate(ctx context.Context, x []float64) float64 {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	results := make([]runResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runTraining(ctx, cfg, s)
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalScore float64
	for _, r := range results {
		if r.err != nil {
			// Failed runs score as if nothing was learned
			continue
		}
		totalFitness += r.bestFitness
		totalScore += float64(r.bestScore)
	}

	n := float64(len(fe.seeds))
	fitness := -totalFitness / n

	fe.mu.Lock()
	fe.bestFitness = math.Min(fe.bestFitness, fitness)
	fe.lastScore = totalScore / n
	fe.mu.Unlock()

	return fitness
}

// runTraining evolves a population for fe.generations and reports its champion.
func (fe *FitnessEvaluator) runTraining(ctx context.Context, cfg *config.Config, seed int64) runResult {
	rng := rand.New(rand.NewSource(seed))
	settings := game.NewSettings(cfg, game.BoxShapes(cfg))
	settings.MaxTicks = fe.maxTicks

	pop, err := neural.NewPopulation(neural.ConfigFromSettings(cfg), cfg.Policy.Threshold, rng)
	if err != nil {
		return runResult{err: err}
	}

	trainer := game.NewTrainer(settings, rng, nil)
	bestScore := 0
	pop.AddReporter(neural.ReporterFunc(func(neural.GenerationReport) {
		bestScore = max(bestScore, trainer.LastResult().Score)
	}))

	best, err := pop.Run(ctx, trainer.Evaluate, fe.generations)
	if err != nil || best == nil {
		return runResult{err: err}
	}
	return runResult{bestFitness: best.Fitness(), bestScore: bestScore}
}

// copyConfig returns an independent copy of the base config.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}
