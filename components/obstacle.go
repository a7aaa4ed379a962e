package components

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/flappy/collision"
)

// ObstacleSpec holds the geometry shared by every obstacle.
type ObstacleSpec struct {
	Gap    float64
	MinTop int // Inclusive
	MaxTop int // Exclusive
	Speed  float64

	TopShape    collision.Shape // Vertically flipped segment hanging above the gap
	BottomShape collision.Shape // Segment standing below the gap
}

// Obstacle is a top/bottom barrier pair with a gap between Top and Bottom.
type Obstacle struct {
	X      float64
	Top    float64 // Lower edge of the top segment
	Bottom float64 // Upper edge of the bottom segment
	Passed bool

	spec *ObstacleSpec
}

// NewObstacle creates an obstacle at x with a gap drawn once from spec's MinTop/MaxTop range.
func NewObstacle(x float64, spec *ObstacleSpec, rng *rand.Rand) *Obstacle {
	top := float64(spec.MinTop + rng.Intn(spec.MaxTop-spec.MinTop))
	return &Obstacle{
		X:      x,
		Top:    top,
		Bottom: top + spec.Gap,
		spec:   spec,
	}
}

// Advance scrolls the obstacle left by one tick.
func (o *Obstacle) Advance() {
	o.X -= o.spec.Speed
}

// Width returns the segment width.
func (o *Obstacle) Width() float64 {
	w, _ := o.spec.BottomShape.Size()
	return float64(w)
}

// TopY returns where the top segment is drawn: hanging so that it ends at Top.
func (o *Obstacle) TopY() float64 {
	_, h := o.spec.TopShape.Size()
	return o.Top - float64(h)
}

// Overlaps tests both segments against the body's sprite shape.
func (o *Obstacle) Overlaps(b *Body) bool {
	bx := pixel(b.X)
	by := int(math.Round(b.Y))
	dx := pixel(o.X) - bx

	if b.Shape.Overlap(o.spec.TopShape, dx, pixel(o.TopY())-by) {
		return true
	}
	return b.Shape.Overlap(o.spec.BottomShape, dx, pixel(o.Bottom)-by)
}

// pixel floors a world coordinate, also left of the screen edge.
func pixel(v float64) int {
	return int(math.Floor(v))
}

// OffScreen reports whether the trailing edge has crossed the left screen edge.
func (o *Obstacle) OffScreen() bool {
	return o.X+o.Width() < 0
}
