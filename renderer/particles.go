package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flappy/components"
	"github.com/pthm-cable/flappy/systems"
)

// ParticleRenderer renders effect particles inside the playfield.
type ParticleRenderer struct {
	maxX, maxY float32
}

// NewParticleRenderer creates a particle renderer that skips particles right
// of maxX or below maxY.
func NewParticleRenderer(maxX, maxY float32) *ParticleRenderer {
	return &ParticleRenderer{maxX: maxX, maxY: maxY}
}

// Draw renders all particles, fading them out over their lifetime.
func (r *ParticleRenderer) Draw(fx *systems.Effects) {
	fx.Each(func(pos *components.Position, life *components.Lifetime) {
		if pos.X > r.maxX || pos.Y > r.maxY {
			return
		}
		lifeRatio := life.Fraction()

		var color rl.Color
		switch life.Kind {
		case components.EffectFeather:
			color = rl.Color{R: 250, G: 240, B: 200, A: uint8(lifeRatio * 220)}
		case components.EffectSpark:
			color = rl.Color{R: 255, G: 210, B: 60, A: uint8(lifeRatio * 255)}
		}

		size := max(life.Size*lifeRatio, 0.5)
		rl.DrawCircle(int32(pos.X), int32(pos.Y), size, color)
	})
}
