package game

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/pthm-cable/flappy/collision"
	"github.com/pthm-cable/flappy/components"
	"github.com/pthm-cable/flappy/config"
	"github.com/pthm-cable/flappy/neural"
)

// fakeGenome is a genome with a fixed decider.
type fakeGenome struct {
	name    string
	fitness float64
	decider neural.Decider
	err     error
}

func (g *fakeGenome) Fitness() float64     { return g.fitness }
func (g *fakeGenome) SetFitness(f float64) { g.fitness = f }
func (g *fakeGenome) Policy() (neural.Decider, error) {
	return g.decider, g.err
}

// deciderFunc adapts a function to neural.Decider.
type deciderFunc func(obs neural.Observation) (neural.Action, error)

func (f deciderFunc) Decide(obs neural.Observation) (neural.Action, error) { return f(obs) }

func always(a neural.Action) neural.Decider {
	return deciderFunc(func(neural.Observation) (neural.Action, error) { return a, nil })
}

// hover flaps whenever the bird sinks below level.
func hover(level float64) neural.Decider {
	return deciderFunc(func(obs neural.Observation) (neural.Action, error) {
		return neural.Action(obs.Y > level), nil
	})
}

// ghost is a bird-sized shape that never collides.
type ghost struct{}

func (ghost) Size() (int, int)                       { return 68, 48 }
func (ghost) Opaque(int, int) bool                   { return false }
func (ghost) Overlap(collision.Shape, int, int) bool { return false }

func testSettings() *Settings {
	cfg := config.Default()
	return NewSettings(cfg, BoxShapes(cfg))
}

func ghostSettings() *Settings {
	s := testSettings()
	s.BirdShape = ghost{}
	return s
}

func genomes(gs ...*fakeGenome) []Genome {
	out := make([]Genome, len(gs))
	for i, g := range gs {
		out[i] = g
	}
	return out
}

func TestWorldKill(t *testing.T) {
	tests := []struct {
		name    string
		kill    []int
		want    []string
		removed int
	}{
		{"none", nil, []string{"a", "b", "c", "d", "e"}, 0},
		{"single", []int{2}, []string{"a", "b", "d", "e"}, 1},
		{"unsorted", []int{4, 0, 2}, []string{"b", "d"}, 3},
		{"duplicates", []int{1, 1, 3, 1}, []string{"a", "c", "e"}, 2},
		{"out of range ignored", []int{-1, 5, 0}, []string{"b", "c", "d", "e"}, 1},
		{"all", []int{0, 1, 2, 3, 4}, []string{}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &World{}
			for _, name := range []string{"a", "b", "c", "d", "e"} {
				g := &fakeGenome{name: name, decider: always(neural.Idle)}
				w.genomes = append(w.genomes, g)
				w.policies = append(w.policies, g.decider)
				w.bodies = append(w.bodies, components.NewBody(230, 350, ghost{}, -9))
			}
			bodies := slices.Clone(w.bodies)
			index := map[*components.Body]string{}
			for i, b := range bodies {
				index[b] = w.genomes[i].(*fakeGenome).name
			}

			removed := w.kill(slices.Clone(tt.kill))
			if removed != tt.removed {
				t.Errorf("removed %d, want %d", removed, tt.removed)
			}
			if !w.aligned() {
				t.Fatal("slices out of step after kill")
			}

			got := make([]string, 0, len(w.genomes))
			for i, g := range w.genomes {
				name := g.(*fakeGenome).name
				got = append(got, name)
				if index[w.bodies[i]] != name {
					t.Errorf("index %d: body of %s paired with genome %s", i, index[w.bodies[i]], name)
				}
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("survivors = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTargetObstacle(t *testing.T) {
	spec := testSettings().Obstacle
	rng := rand.New(rand.NewSource(1))

	tests := []struct {
		name      string
		obstacles []float64
		want      int
	}{
		{"single obstacle", []float64{100}, 0},
		{"bird behind first trailing edge", []float64{130, 400}, 0},
		{"trailing edge exactly at bird", []float64{126, 400}, 0},
		{"bird past first obstacle", []float64{125, 400}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &World{bodies: []*components.Body{components.NewBody(230, 350, ghost{}, -9)}}
			for _, x := range tt.obstacles {
				w.obstacles = append(w.obstacles, components.NewObstacle(x, spec, rng))
			}
			if got := w.targetObstacle(); got != tt.want {
				t.Errorf("targetObstacle = %d, want %d", got, tt.want)
			}
		})
	}
}

type countingRenderer struct{ frames int }

func (r *countingRenderer) Draw(*Frame) { r.frames++ }

func TestRenderersFanOut(t *testing.T) {
	a, b := &countingRenderer{}, &countingRenderer{}
	rs := Renderers{a, nil, b}
	rs.Draw(&Frame{})
	rs.Draw(&Frame{})
	if a.frames != 2 || b.frames != 2 {
		t.Errorf("frames = %d, %d; want 2, 2", a.frames, b.frames)
	}
}
