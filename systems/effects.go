// Package systems holds per-tick systems that run alongside the episode.
package systems

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/flappy/components"
	"github.com/pthm-cable/flappy/game"
)

// MaxParticles caps the number of live effect particles.
const MaxParticles = 500

// Effects is an ECS world of short-lived particles spawned from frame events.
// It implements game.Renderer so it can ride along with the episode's renderers.
type Effects struct {
	world  *ecs.World
	mapper *ecs.Map3[components.Position, components.Velocity, components.Lifetime]
	filter *ecs.Filter3[components.Position, components.Velocity, components.Lifetime]
	rng    *rand.Rand

	count   int
	expired []ecs.Entity
}

// NewEffects creates an empty effects world.
func NewEffects(rng *rand.Rand) *Effects {
	world := ecs.NewWorld()
	return &Effects{
		world:  world,
		mapper: ecs.NewMap3[components.Position, components.Velocity, components.Lifetime](world),
		filter: ecs.NewFilter3[components.Position, components.Velocity, components.Lifetime](world),
		rng:    rng,
	}
}

// Draw spawns particles for the frame's events and advances every particle one tick.
func (e *Effects) Draw(f *game.Frame) {
	for _, ev := range f.Events {
		switch ev.Kind {
		case game.EventCollision, game.EventOutOfBounds:
			e.EmitFeathers(float32(ev.X), float32(ev.Y))
		case game.EventPass:
			e.EmitSparks(float32(ev.X), float32(ev.Y))
		}
	}
	e.Update()
}

// EmitFeathers releases a puff of feathers (6-9 particles) that drift down.
func (e *Effects) EmitFeathers(x, y float32) {
	count := 6 + e.rng.Intn(4)
	for i := 0; i < count; i++ {
		vel := components.Velocity{
			X: (e.rng.Float32() - 0.5) * 3,
			Y: -e.rng.Float32() * 2,
		}
		e.spawn(x, y, vel, 40+e.rng.Int31n(30), components.EffectFeather, 3+e.rng.Float32()*2)
	}
}

// EmitSparks releases a radial burst (8-14 particles).
func (e *Effects) EmitSparks(x, y float32) {
	count := 8 + e.rng.Intn(7)
	for i := 0; i < count; i++ {
		angle := e.rng.Float64() * 2 * math.Pi
		speed := 1.5 + e.rng.Float64()*2
		vel := components.Velocity{
			X: float32(math.Cos(angle) * speed),
			Y: float32(math.Sin(angle) * speed),
		}
		e.spawn(x, y, vel, 20+e.rng.Int31n(20), components.EffectSpark, 2+e.rng.Float32()*1.5)
	}
}

func (e *Effects) spawn(x, y float32, vel components.Velocity, life int32, kind components.EffectKind, size float32) {
	if e.count >= MaxParticles {
		return
	}
	pos := components.Position{
		X: x + (e.rng.Float32()-0.5)*6,
		Y: y + (e.rng.Float32()-0.5)*6,
	}
	lt := components.Lifetime{Remaining: life, Max: life, Kind: kind, Size: size}
	e.mapper.NewEntity(&pos, &vel, &lt)
	e.count++
}

// Update ages, accelerates and moves every particle, then removes the expired ones.
func (e *Effects) Update() {
	e.expired = e.expired[:0]

	query := e.filter.Query()
	for query.Next() {
		pos, vel, life := query.Get()

		life.Remaining--
		if life.Remaining <= 0 {
			e.expired = append(e.expired, query.Entity())
			continue
		}

		switch life.Kind {
		case components.EffectFeather:
			// Sink with flutter
			vel.Y += 0.15
			vel.X *= 0.92
		case components.EffectSpark:
			vel.Y += 0.05
			vel.X *= 0.95
		}
		vel.Y *= 0.97

		pos.X += vel.X
		pos.Y += vel.Y
	}

	// Query iteration complete
	for _, entity := range e.expired {
		e.mapper.Remove(entity)
	}
	e.count -= len(e.expired)
}

// Each calls fn for every live particle.
func (e *Effects) Each(fn func(pos *components.Position, life *components.Lifetime)) {
	query := e.filter.Query()
	for query.Next() {
		pos, _, life := query.Get()
		fn(pos, life)
	}
}

// Count returns the number of live particles.
func (e *Effects) Count() int {
	return e.count
}
