package components

// Ground is a horizontally tiling strip made of two segments.
type Ground struct {
	Y      float64
	X1, X2 float64
	Width  float64
	Speed  float64
}

// NewGround places the first segment at the left edge and the second right behind it.
func NewGround(y, width, speed float64) *Ground {
	return &Ground{
		Y:     y,
		X1:    0,
		X2:    width,
		Width: width,
		Speed: speed,
	}
}

// Advance scrolls both segments and wraps any segment that left the screen.
func (g *Ground) Advance() {
	g.X1 -= g.Speed
	g.X2 -= g.Speed

	if g.X1+g.Width < 0 {
		g.X1 = g.X2 + g.Width
	}
	if g.X2+g.Width < 0 {
		g.X2 = g.X1 + g.Width
	}
}

// Covers reports whether the union of both segments spans [0, screenWidth).
func (g *Ground) Covers(screenWidth float64) bool {
	lo, hi := g.X1, g.X2
	if hi < lo {
		lo, hi = hi, lo
	}
	// Segments are adjacent, so the union is [lo, hi+Width)
	return lo <= 0 && hi+g.Width >= screenWidth && hi <= lo+g.Width
}
