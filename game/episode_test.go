package game

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/flappy/neural"
)

const eps = 1e-9

func newTestEpisode(t *testing.T, s *Settings, r Renderer, gs ...*fakeGenome) *Episode {
	t.Helper()
	ep, err := NewEpisode(genomes(gs...), s, rand.New(rand.NewSource(1)), r)
	if err != nil {
		t.Fatalf("NewEpisode failed: %v", err)
	}
	return ep
}

func TestEmptyPopulationEndsImmediately(t *testing.T) {
	ep := newTestEpisode(t, testSettings(), nil)

	state, err := ep.Step(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if state != Ended {
		t.Errorf("state = %v, want ended", state)
	}
	if r := ep.Result(); r.Ticks != 0 {
		t.Errorf("ticks = %d, want 0", r.Ticks)
	}
}

func TestNewEpisodeResetsFitness(t *testing.T) {
	g := &fakeGenome{fitness: 99, decider: always(neural.Idle)}
	newTestEpisode(t, testSettings(), nil, g)
	if g.fitness != 0 {
		t.Errorf("fitness = %v, want 0", g.fitness)
	}
}

func TestNewEpisodePolicyError(t *testing.T) {
	boom := errors.New("no phenotype")
	_, err := NewEpisode(genomes(&fakeGenome{err: boom}), testSettings(), rand.New(rand.NewSource(1)), nil)
	if !errors.Is(err, boom) {
		t.Errorf("expected policy error, got %v", err)
	}
}

func TestFallingBirdHitsGround(t *testing.T) {
	g := &fakeGenome{decider: always(neural.Idle)}
	ep := newTestEpisode(t, testSettings(), nil, g)

	res, err := ep.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	// y = 350 + 1 + 4 + ... + n^2 first reaches 730-48 at n = 10
	if res.Ticks != 10 {
		t.Errorf("ticks = %d, want 10", res.Ticks)
	}
	if res.OutOfBounds != 1 || res.Collisions != 0 || res.Eliminated != 1 {
		t.Errorf("unexpected result %+v", res)
	}
	if math.Abs(g.fitness-1.0) > eps {
		t.Errorf("fitness = %v, want 1.0", g.fitness)
	}
	if ep.State() != Ended {
		t.Errorf("state = %v, want ended", ep.State())
	}
}

func TestFlappingEveryTickDriftsUp(t *testing.T) {
	g := &fakeGenome{decider: always(neural.Flap)}
	ep := newTestEpisode(t, testSettings(), nil, g)
	ctx := context.Background()

	prev := ep.World().bodies[0].Y
	for ep.World().Alive() > 0 {
		if _, err := ep.Step(ctx); err != nil {
			t.Fatal(err)
		}
		if ep.World().Alive() == 0 {
			break
		}
		b := ep.World().bodies[0]
		if b.Velocity != -9 || b.Age != 0 {
			t.Fatalf("tick %d: velocity=%v age=%d, want -9 and 0", ep.Result().Ticks, b.Velocity, b.Age)
		}
		if ep.Result().Ticks > 1 && b.Y >= prev {
			t.Fatalf("tick %d: no upward drift, y %v -> %v", ep.Result().Ticks, prev, b.Y)
		}
		prev = b.Y
	}

	// 351 after the first tick, then 8 up per tick until y < 0
	if res := ep.Result(); res.Ticks != 45 || res.OutOfBounds != 1 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestCollisionRemovesOnlyCollider(t *testing.T) {
	survivor := &fakeGenome{name: "survivor", decider: always(neural.Idle)}
	collider := &fakeGenome{name: "collider", decider: always(neural.Idle)}
	ep := newTestEpisode(t, testSettings(), nil, collider, survivor)
	ctx := context.Background()

	w := ep.World()
	o := w.obstacles[0]
	o.X, o.Top, o.Bottom = 200, 300, 500
	w.bodies[0].Y = 100 // inside the top segment
	w.bodies[1].Y = 380 // inside the gap

	if _, err := ep.Step(ctx); err != nil {
		t.Fatal(err)
	}

	if w.Alive() != 1 || !w.aligned() {
		t.Fatalf("alive = %d aligned = %v, want 1 and true", w.Alive(), w.aligned())
	}
	if w.genomes[0] != Genome(survivor) {
		t.Fatal("wrong bird removed")
	}
	if w.bodies[0].Y != 381 {
		t.Errorf("survivor body y = %v, want 381", w.bodies[0].Y)
	}
	if r := ep.Result(); r.Collisions != 1 || r.Score != 1 {
		t.Errorf("unexpected result %+v", r)
	}

	// The survivor passed the pipe and got the bonus; the collider did not
	if math.Abs(collider.fitness-0.1) > eps {
		t.Errorf("collider fitness = %v, want 0.1", collider.fitness)
	}
	if math.Abs(survivor.fitness-5.1) > eps {
		t.Errorf("survivor fitness = %v, want 5.1", survivor.fitness)
	}
	if len(w.obstacles) != 2 {
		t.Errorf("a new obstacle should spawn on pass, have %d", len(w.obstacles))
	}

	// Survivor keeps earning per tick, no second bonus for the same pipe
	if _, err := ep.Step(ctx); err != nil {
		t.Fatal(err)
	}
	if math.Abs(survivor.fitness-5.2) > eps {
		t.Errorf("survivor fitness = %v, want 5.2", survivor.fitness)
	}
	if ep.Result().Score != 1 {
		t.Errorf("score = %d, want 1", ep.Result().Score)
	}
}

func TestCollidingBirdStillPasses(t *testing.T) {
	collider := &fakeGenome{name: "collider", decider: always(neural.Idle)}
	ep := newTestEpisode(t, testSettings(), nil, collider)

	w := ep.World()
	o := w.obstacles[0]
	o.X, o.Top, o.Bottom = 229, 300, 500
	w.bodies[0].Y = 100 // inside the top segment

	state, err := ep.Step(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if state != Running || w.Alive() != 0 {
		t.Fatalf("state = %v alive = %d, want running with no birds", state, w.Alive())
	}

	// The pass scores even though nobody survives to collect the bonus
	if r := ep.Result(); r.Collisions != 1 || r.Score != 1 {
		t.Errorf("unexpected result %+v", r)
	}
	if len(w.obstacles) != 2 {
		t.Errorf("obstacles = %d, want 2 after the pass spawn", len(w.obstacles))
	}
	if math.Abs(collider.fitness-0.1) > eps {
		t.Errorf("collider fitness = %v, want 0.1 without a bonus", collider.fitness)
	}
}

type recordingRenderer struct {
	scores []int
	passes int
	alive  []int
}

func (r *recordingRenderer) Draw(f *Frame) {
	r.scores = append(r.scores, f.Score)
	r.alive = append(r.alive, f.Alive)
	for _, e := range f.Events {
		if e.Kind == EventPass {
			r.passes++
		}
	}
}

func TestScoreAndSurvivalBonus(t *testing.T) {
	s := ghostSettings()
	s.MaxTicks = 400

	hoverers := []*fakeGenome{
		{decider: hover(360)},
		{decider: hover(360)},
		{decider: hover(360)},
	}
	faller := &fakeGenome{decider: always(neural.Idle)}
	rec := &recordingRenderer{}
	ep := newTestEpisode(t, s, rec, hoverers[0], faller, hoverers[1], hoverers[2])

	res, err := ep.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if res.Ticks != 400 || len(rec.scores) != 400 {
		t.Fatalf("ticks = %d frames = %d, want 400", res.Ticks, len(rec.scores))
	}

	// A pipe is passed every 76 ticks
	if res.Score != 5 || rec.passes != 5 {
		t.Errorf("score = %d passes = %d, want 5", res.Score, rec.passes)
	}
	for i := 1; i < len(rec.scores); i++ {
		if d := rec.scores[i] - rec.scores[i-1]; d < 0 || d > 1 {
			t.Fatalf("tick %d: score jumped %d -> %d", i+1, rec.scores[i-1], rec.scores[i])
		}
	}

	for i, g := range hoverers {
		want := 400*0.1 + 5*5.0
		if math.Abs(g.fitness-want) > 1e-6 {
			t.Errorf("hoverer %d fitness = %v, want %v", i, g.fitness, want)
		}
	}
	if math.Abs(faller.fitness-1.0) > eps {
		t.Errorf("faller fitness = %v, want 1.0 (no bonus after elimination)", faller.fitness)
	}
	if rec.alive[len(rec.alive)-1] != 3 {
		t.Errorf("alive at end = %d, want 3", rec.alive[len(rec.alive)-1])
	}
}

func TestObstacleRemovedWhenTrailingEdgeCrosses(t *testing.T) {
	s := ghostSettings()
	s.SpawnOnPass = false
	ep := newTestEpisode(t, s, nil, &fakeGenome{decider: hover(360)})
	ctx := context.Background()

	first := ep.World().obstacles[0]
	for {
		if _, err := ep.Step(ctx); err != nil {
			t.Fatal(err)
		}
		still := false
		for _, o := range ep.World().obstacles {
			if o == first {
				still = true
			}
		}
		if first.X+first.Width() >= 0 && !still {
			t.Fatalf("tick %d: removed before the trailing edge left (x=%v)", ep.Result().Ticks, first.X)
		}
		if !still {
			if first.X+first.Width()+s.Speed < 0 {
				t.Errorf("tick %d: removed late (x=%v)", ep.Result().Ticks, first.X)
			}
			break
		}
		if ep.Result().Ticks > 1000 {
			t.Fatal("obstacle never left")
		}
	}

	// 600 - 5t < -104 first holds at t = 141
	if ep.Result().Ticks != 141 {
		t.Errorf("removed at tick %d, want 141", ep.Result().Ticks)
	}
	if len(ep.World().obstacles) != 1 {
		t.Errorf("a replacement obstacle must exist, have %d", len(ep.World().obstacles))
	}
}

func TestPolicyErrorStopsEpisode(t *testing.T) {
	boom := errors.New("activation failed")
	g := &fakeGenome{decider: deciderFunc(func(neural.Observation) (neural.Action, error) {
		return neural.Idle, boom
	})}
	ep := newTestEpisode(t, testSettings(), nil, g)

	if _, err := ep.Step(context.Background()); !errors.Is(err, boom) {
		t.Errorf("expected decider error, got %v", err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &cancelAfter{n: 5, cancel: cancel}
	ep := newTestEpisode(t, ghostSettings(), r, &fakeGenome{decider: hover(360)})

	res, err := ep.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if res.Ticks != 5 {
		t.Errorf("ticks = %d, want 5", res.Ticks)
	}
}

type cancelAfter struct {
	n      int
	cancel context.CancelFunc
}

func (c *cancelAfter) Draw(f *Frame) {
	if f.Tick == c.n {
		c.cancel()
	}
}

func TestObservationUsesTargetGap(t *testing.T) {
	var seen []neural.Observation
	g := &fakeGenome{decider: deciderFunc(func(obs neural.Observation) (neural.Action, error) {
		seen = append(seen, obs)
		return neural.Idle, nil
	})}
	ep := newTestEpisode(t, testSettings(), nil, g)
	o := ep.World().obstacles[0]
	o.Top, o.Bottom = 300, 500

	if _, err := ep.Step(context.Background()); err != nil {
		t.Fatal(err)
	}
	want := neural.Observation{Y: 351, TopDistance: 51, BottomDistance: 149}
	if len(seen) != 1 || seen[0] != want {
		t.Errorf("observations = %+v, want [%+v]", seen, want)
	}
}
