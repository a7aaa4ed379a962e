package game

import (
	"log/slog"

	"github.com/pthm-cable/flappy/neural"
)

// LogChampion logs the best individual of a finished run.
func LogChampion(best *neural.Individual, generations int) {
	if best == nil {
		slog.Warn("no champion", "generations", generations)
		return
	}

	enabled := 0
	for _, g := range best.Genome.Genes {
		if g.IsEnabled {
			enabled++
		}
	}

	slog.Info("champion",
		"id", best.ID,
		"fitness", best.Fitness(),
		"species", best.SpeciesID,
		"nodes", len(best.Genome.Nodes),
		"links", len(best.Genome.Genes),
		"enabled_links", enabled,
		"generations", generations,
	)
}
