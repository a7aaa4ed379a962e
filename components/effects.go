package components

// EffectKind identifies the type of a visual effect particle.
type EffectKind uint8

const (
	EffectFeather EffectKind = iota // Released where a bird is eliminated
	EffectSpark                     // Released at a pipe that was just passed
)

// Position represents an effect particle's screen position.
type Position struct {
	X, Y float32
}

// Velocity represents an effect particle's per-tick displacement.
type Velocity struct {
	X, Y float32
}

// Lifetime counts down the ticks a particle has left.
type Lifetime struct {
	Remaining int32
	Max       int32
	Kind      EffectKind
	Size      float32
}

// Fraction returns the remaining life in [0, 1].
func (l *Lifetime) Fraction() float32 {
	if l.Max <= 0 {
		return 0
	}
	return float32(l.Remaining) / float32(l.Max)
}
