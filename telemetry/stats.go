// Package telemetry records per-generation training statistics.
package telemetry

import (
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// NewRunID returns a fresh identifier that tags every row of one training run.
func NewRunID() string {
	return uuid.NewString()
}

// GenerationStats holds aggregated statistics for one evaluated generation.
type GenerationStats struct {
	RunID      string `csv:"run_id"`
	Generation int    `csv:"generation"`
	Population int    `csv:"population"`
	Species    int    `csv:"species"`

	// Fitness distribution
	BestFitness   float64 `csv:"best_fitness"`
	MeanFitness   float64 `csv:"mean_fitness"`
	StdDevFitness float64 `csv:"stddev_fitness"`
	MinFitness    float64 `csv:"min_fitness"`
	P50Fitness    float64 `csv:"p50_fitness"`
	P90Fitness    float64 `csv:"p90_fitness"`

	// Episode outcome
	Score       int `csv:"score"`
	Ticks       int `csv:"ticks"`
	Collisions  int `csv:"collisions"`
	OutOfBounds int `csv:"out_of_bounds"`

	// Run-wide champion
	ChampionFitness float64 `csv:"champion_fitness"`
	ChampionNodes   int     `csv:"champion_nodes"`
	ChampionLinks   int     `csv:"champion_links"`

	DurationMs int64 `csv:"duration_ms"`
}

// EpisodeOutcome is the part of GenerationStats that comes from the played episode.
type EpisodeOutcome struct {
	Score       int
	Ticks       int
	Collisions  int
	OutOfBounds int
	Duration    time.Duration
}

// NewGenerationStats computes the fitness distribution of one generation.
func NewGenerationStats(runID string, generation, species int, fitness []float64, outcome EpisodeOutcome) GenerationStats {
	s := GenerationStats{
		RunID:       runID,
		Generation:  generation,
		Population:  len(fitness),
		Species:     species,
		Score:       outcome.Score,
		Ticks:       outcome.Ticks,
		Collisions:  outcome.Collisions,
		OutOfBounds: outcome.OutOfBounds,
		DurationMs:  outcome.Duration.Milliseconds(),
	}
	if len(fitness) == 0 {
		return s
	}

	sorted := make([]float64, len(fitness))
	copy(sorted, fitness)
	sort.Float64s(sorted)

	s.BestFitness = floats.Max(sorted)
	s.MinFitness = floats.Min(sorted)
	if len(sorted) > 1 {
		s.MeanFitness, s.StdDevFitness = stat.MeanStdDev(sorted, nil)
	} else {
		s.MeanFitness = sorted[0]
	}
	s.P50Fitness = Percentile(sorted, 0.50)
	s.P90Fitness = Percentile(sorted, 0.90)

	return s
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// LogValue implements slog.LogValuer for structured logging.
func (s GenerationStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("run_id", s.RunID),
		slog.Int("generation", s.Generation),
		slog.Int("population", s.Population),
		slog.Int("species", s.Species),
		slog.Float64("best_fitness", s.BestFitness),
		slog.Float64("mean_fitness", s.MeanFitness),
		slog.Float64("stddev_fitness", s.StdDevFitness),
		slog.Float64("p50_fitness", s.P50Fitness),
		slog.Int("score", s.Score),
		slog.Int("ticks", s.Ticks),
		slog.Float64("champion_fitness", s.ChampionFitness),
	)
}

// LogSummary logs the compact per-generation progress line.
func (s GenerationStats) LogSummary() {
	slog.Info("generation",
		"generation", s.Generation,
		"best_fitness", s.BestFitness,
		"mean_fitness", s.MeanFitness,
		"species", s.Species,
		"score", s.Score,
		"ticks", s.Ticks,
	)
}

// LogStats logs the generation stats using slog.
func (s GenerationStats) LogStats() {
	slog.Info("generation",
		"generation", s.Generation,
		"population", s.Population,
		"species", s.Species,
		"best_fitness", s.BestFitness,
		"mean_fitness", s.MeanFitness,
		"stddev_fitness", s.StdDevFitness,
		"p50_fitness", s.P50Fitness,
		"p90_fitness", s.P90Fitness,
		"score", s.Score,
		"ticks", s.Ticks,
		"collisions", s.Collisions,
		"out_of_bounds", s.OutOfBounds,
		"champion_fitness", s.ChampionFitness,
		"duration_ms", s.DurationMs,
	)
}
