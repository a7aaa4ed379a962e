package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/flappy/components"
	"github.com/pthm-cable/flappy/neural"
	"github.com/pthm-cable/flappy/telemetry"
)

// State is the episode state.
type State uint8

const (
	Running State = iota
	Ended
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Ended:
		return "ended"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// errMisaligned means the parallel bird slices went out of step.
var errMisaligned = errors.New("genome, policy and body slices out of step")

// Result summarizes a finished episode.
type Result struct {
	Ticks       int
	Score       int
	Eliminated  int // Collisions plus OutOfBounds
	Collisions  int
	OutOfBounds int
}

// Episode runs one population of birds until every bird is gone.
type Episode struct {
	settings *Settings
	rng      *rand.Rand
	renderer Renderer
	perf     *telemetry.PerfCollector // nil = untimed

	world  World
	state  State
	result Result

	frame  Frame
	marked []bool
	kills  []int
	exited []int
}

// NewEpisode creates one bird per genome and resets every genome's fitness to zero.
// renderer may be nil for headless runs.
func NewEpisode(genomes []Genome, settings *Settings, rng *rand.Rand, renderer Renderer) (*Episode, error) {
	e := &Episode{
		settings: settings,
		rng:      rng,
		renderer: renderer,
	}

	w := &e.world
	w.genomes = make([]Genome, 0, len(genomes))
	w.policies = make([]neural.Decider, 0, len(genomes))
	w.bodies = make([]*components.Body, 0, len(genomes))
	for i, g := range genomes {
		policy, err := g.Policy()
		if err != nil {
			return nil, fmt.Errorf("genome %d: %w", i, err)
		}
		g.SetFitness(0)
		w.genomes = append(w.genomes, g)
		w.policies = append(w.policies, policy)
		w.bodies = append(w.bodies, components.NewBody(settings.BirdX, settings.BirdY, settings.BirdShape, settings.ImpulseVelocity))
	}

	w.obstacles = []*components.Obstacle{components.NewObstacle(settings.SpawnX, settings.Obstacle, rng)}
	w.ground = components.NewGround(settings.GroundY, settings.GroundWidth, settings.Speed)

	return e, nil
}

// SetGeneration tags rendered frames with the generation number.
func (e *Episode) SetGeneration(gen int) {
	e.frame.Generation = gen
}

// SetPerf times every following tick into p.
func (e *Episode) SetPerf(p *telemetry.PerfCollector) {
	e.perf = p
}

// State returns the current state.
func (e *Episode) State() State {
	return e.state
}

// World returns the episode's world.
func (e *Episode) World() *World {
	return &e.world
}

// Result returns the summary so far.
func (e *Episode) Result() Result {
	r := e.result
	r.Score = e.world.score
	r.Eliminated = r.Collisions + r.OutOfBounds
	return r
}

// Run steps until the episode ends. It stops between ticks when ctx is done
// and returns the partial result with ctx.Err().
func (e *Episode) Run(ctx context.Context) (Result, error) {
	slog.Debug("episode started", "generation", e.frame.Generation, "birds", e.world.Alive())
	for {
		state, err := e.Step(ctx)
		if err != nil {
			return e.Result(), err
		}
		if state == Ended {
			break
		}
	}
	r := e.Result()
	slog.Debug("episode ended", "generation", e.frame.Generation, "ticks", r.Ticks, "score", r.Score)
	return r, nil
}

// Step advances the episode by one tick.
func (e *Episode) Step(ctx context.Context) (State, error) {
	if e.state == Ended {
		return Ended, nil
	}
	if err := ctx.Err(); err != nil {
		return e.state, err
	}

	w := &e.world
	s := e.settings

	if w.Alive() == 0 || (s.MaxTicks > 0 && e.result.Ticks >= s.MaxTicks) {
		e.state = Ended
		return Ended, nil
	}
	e.result.Ticks++
	e.frame.Events = e.frame.Events[:0]
	if e.perf != nil {
		e.perf.StartTick()
		defer e.perf.EndTick()
	}
	e.phase(telemetry.PhaseDecide)

	target := w.targetObstacle()
	gap := w.obstacles[target]

	// Reward, move and decide
	for i, b := range w.bodies {
		g := w.genomes[i]
		g.SetFitness(g.Fitness() + s.TickReward)

		b.Advance()

		action, err := w.policies[i].Decide(neural.Observe(b.Y, gap.Top, gap.Bottom))
		if err != nil {
			return e.state, fmt.Errorf("tick %d: bird %d: %w", e.result.Ticks, i, err)
		}
		if action == neural.Flap {
			b.Impulse()
		}
	}

	// Collisions and passes. A bird that hits a pipe still passes it.
	e.phase(telemetry.PhaseCollide)
	e.marked = resetMarks(e.marked, len(w.bodies))
	e.kills = e.kills[:0]
	passed := false
	for _, o := range w.obstacles {
		for i, b := range w.bodies {
			if e.marked[i] {
				continue
			}
			if o.Overlaps(b) {
				e.marked[i] = true
				e.kills = append(e.kills, i)
				e.birdEvent(EventCollision, b)
			}
			if !o.Passed && b.X > o.X {
				o.Passed = true
				passed = true
				e.event(EventPass, o.X+o.Width()/2, (o.Top+o.Bottom)/2)
			}
		}
	}
	e.result.Collisions += w.kill(e.kills)

	// Scroll obstacles and drop the ones that left the screen
	e.phase(telemetry.PhaseScroll)
	e.exited = e.exited[:0]
	for i, o := range w.obstacles {
		o.Advance()
		if o.OffScreen() {
			e.exited = append(e.exited, i)
		}
	}
	for i := len(e.exited) - 1; i >= 0; i-- {
		idx := e.exited[i]
		w.obstacles = append(w.obstacles[:idx], w.obstacles[idx+1:]...)
	}

	if passed {
		w.score++
		for _, g := range w.genomes {
			g.SetFitness(g.Fitness() + s.PassBonus)
		}
		if s.SpawnOnPass {
			w.obstacles = append(w.obstacles, components.NewObstacle(s.SpawnX, s.Obstacle, e.rng))
		}
	}
	if len(w.obstacles) == 0 {
		w.obstacles = append(w.obstacles, components.NewObstacle(s.SpawnX, s.Obstacle, e.rng))
	}

	// Ground and sky
	e.phase(telemetry.PhaseBounds)
	e.kills = e.kills[:0]
	for i, b := range w.bodies {
		if b.OutOfBounds(s.GroundY) {
			e.kills = append(e.kills, i)
			e.birdEvent(EventOutOfBounds, b)
		}
	}
	e.result.OutOfBounds += w.kill(e.kills)

	if !w.aligned() {
		return e.state, fmt.Errorf("tick %d: %w", e.result.Ticks, errMisaligned)
	}

	w.ground.Advance()

	if e.renderer != nil {
		e.phase(telemetry.PhaseRender)
		e.frame.Tick = e.result.Ticks
		w.snapshot(&e.frame, w.targetObstacle())
		e.renderer.Draw(&e.frame)
	}

	return e.state, nil
}

func (e *Episode) phase(p telemetry.Phase) {
	if e.perf != nil {
		e.perf.StartPhase(p)
	}
}

func (e *Episode) event(kind EventKind, x, y float64) {
	e.frame.Events = append(e.frame.Events, Event{Kind: kind, X: x, Y: y})
}

// birdEvent records an event at the center of the bird's sprite.
func (e *Episode) birdEvent(kind EventKind, b *components.Body) {
	w, h := b.Shape.Size()
	e.event(kind, b.X+float64(w)/2, b.Y+float64(h)/2)
}

func resetMarks(marks []bool, n int) []bool {
	if cap(marks) < n {
		return make([]bool, n)
	}
	marks = marks[:n]
	clear(marks)
	return marks
}
