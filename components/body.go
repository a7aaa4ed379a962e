// Package components defines the actors of the game world.
package components

import "github.com/pthm-cable/flappy/collision"

// DefaultImpulseVelocity is the vertical velocity a flap sets (negative = up).
const DefaultImpulseVelocity = -9.0

// Body is a flight-controlled actor. X never changes; Y follows Advance.
type Body struct {
	X, Y     float64
	Velocity float64
	Age      int // Ticks since the last impulse
	Shape    collision.Shape

	impulseVelocity float64
}

// NewBody creates a body at rest.
func NewBody(x, y float64, shape collision.Shape, impulseVelocity float64) *Body {
	return &Body{
		X:               x,
		Y:               y,
		Shape:           shape,
		impulseVelocity: impulseVelocity,
	}
}

// Impulse sets the upward velocity and restarts the motion clock.
func (b *Body) Impulse() {
	b.Velocity = b.impulseVelocity
	b.Age = 0
}

// Advance moves the body one tick.
// Age is used both as the time term and as the acceleration term, so the
// displacement is velocity*age + age^2. Learned policies depend on this curve.
func (b *Body) Advance() {
	b.Age++
	b.Y += b.Velocity*float64(b.Age) + float64(b.Age*b.Age)
}

// Height returns the sprite height used for bounds checks.
func (b *Body) Height() float64 {
	_, h := b.Shape.Size()
	return float64(h)
}

// OutOfBounds reports whether the body touches the ground line or left the top of the screen.
func (b *Body) OutOfBounds(groundY float64) bool {
	return b.Y+b.Height() >= groundY || b.Y < 0
}
