package game

import (
	"log/slog"

	"github.com/pthm-cable/flappy/neural"
	"github.com/pthm-cable/flappy/telemetry"
)

// TelemetryReporter turns generation reports into telemetry rows.
// It implements neural.Reporter.
type TelemetryReporter struct {
	runID    string
	trainer  *Trainer
	output   *telemetry.OutputManager // nil = no CSV
	logStats bool

	fitness []float64
	last    telemetry.GenerationStats
}

// NewTelemetryReporter creates a reporter for one training run.
func NewTelemetryReporter(runID string, trainer *Trainer, output *telemetry.OutputManager, logStats bool) *TelemetryReporter {
	return &TelemetryReporter{
		runID:    runID,
		trainer:  trainer,
		output:   output,
		logStats: logStats,
	}
}

// GenerationEnd records one generation.
func (r *TelemetryReporter) GenerationEnd(report neural.GenerationReport) {
	r.fitness = r.fitness[:0]
	for _, ind := range report.Individuals {
		r.fitness = append(r.fitness, ind.Fitness())
	}

	res := r.trainer.LastResult()
	stats := telemetry.NewGenerationStats(r.runID, report.Generation, report.Species.Count, r.fitness, telemetry.EpisodeOutcome{
		Score:       res.Score,
		Ticks:       res.Ticks,
		Collisions:  res.Collisions,
		OutOfBounds: res.OutOfBounds,
		Duration:    report.Duration,
	})
	if c := report.Champion; c != nil {
		stats.ChampionFitness = c.Fitness()
		stats.ChampionNodes = len(c.Genome.Nodes)
		stats.ChampionLinks = len(c.Genome.Genes)
	}
	r.last = stats

	if r.logStats {
		stats.LogStats()
	} else {
		stats.LogSummary()
	}

	if err := r.output.WriteGeneration(stats); err != nil {
		slog.Error("failed to write generation stats", "error", err)
	}

	perf := r.trainer.Perf().Stats()
	if r.logStats {
		perf.LogStats(report.Generation)
	}
	if err := r.output.WritePerf(perf.ToCSV(r.runID, report.Generation)); err != nil {
		slog.Error("failed to write perf stats", "error", err)
	}
}

// Last returns the most recently recorded stats.
func (r *TelemetryReporter) Last() telemetry.GenerationStats {
	return r.last
}
