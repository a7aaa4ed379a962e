// Package game runs flappy episodes: one population of birds flying until
// every bird has hit a pipe or left the screen.
package game

import (
	"sort"

	"github.com/pthm-cable/flappy/components"
	"github.com/pthm-cable/flappy/neural"
)

// Genome is what the driver needs from an evolvable genome.
type Genome interface {
	Fitness() float64
	SetFitness(f float64)
	Policy() (neural.Decider, error)
}

// speciated is implemented by genomes that belong to a species.
type speciated interface {
	Species() int
}

// World holds the live birds and the scenery of one episode.
// genomes, policies and bodies are parallel: index i of each is the same bird.
type World struct {
	genomes  []Genome
	policies []neural.Decider
	bodies   []*components.Body

	obstacles []*components.Obstacle
	ground    *components.Ground
	score     int
}

// Alive returns the number of live birds.
func (w *World) Alive() int {
	return len(w.bodies)
}

// Score returns the number of obstacles passed.
func (w *World) Score() int {
	return w.score
}

// aligned reports whether the parallel slices still line up.
func (w *World) aligned() bool {
	return len(w.genomes) == len(w.policies) && len(w.policies) == len(w.bodies)
}

// kill removes the marked birds from all parallel slices at once.
// Indices may repeat and come in any order; survivors keep their order.
// Returns the number of birds removed.
func (w *World) kill(indices []int) int {
	if len(indices) == 0 {
		return 0
	}

	sort.Ints(indices)
	removed := 0
	// Descending order keeps the lower indices valid while compacting
	for i := len(indices) - 1; i >= 0; i-- {
		idx := indices[i]
		if i < len(indices)-1 && indices[i+1] == idx {
			continue
		}
		if idx < 0 || idx >= len(w.bodies) {
			continue
		}
		w.genomes = append(w.genomes[:idx], w.genomes[idx+1:]...)
		w.policies = append(w.policies[:idx], w.policies[idx+1:]...)
		w.bodies = append(w.bodies[:idx], w.bodies[idx+1:]...)
		removed++
	}
	return removed
}

// targetObstacle returns the index of the obstacle the birds should look at:
// the second one once the leading bird is past the first one's trailing edge.
func (w *World) targetObstacle() int {
	if len(w.obstacles) > 1 && len(w.bodies) > 0 &&
		w.bodies[0].X > w.obstacles[0].X+w.obstacles[0].Width() {
		return 1
	}
	return 0
}
