// Package collision provides pixel-accurate overlap tests between sprite shapes.
package collision

import "image"

// AlphaThreshold is the minimum alpha (0-255) for a sprite pixel to be solid.
const AlphaThreshold = 127

// Shape is the collision capability of a sprite.
// Coordinates are local to the shape's top-left corner.
type Shape interface {
	Size() (w, h int)
	Opaque(x, y int) bool
	// Overlap reports whether other, placed with its origin at (dx, dy)
	// relative to this shape, shares at least one solid pixel.
	Overlap(other Shape, dx, dy int) bool
}

// Mask is a per-pixel solidity bitmap.
type Mask struct {
	w, h int
	bits []bool
}

// NewMask creates an empty (fully transparent) mask.
func NewMask(w, h int) *Mask {
	return &Mask{w: w, h: h, bits: make([]bool, w*h)}
}

// FromImage builds a mask from an image's alpha channel.
func FromImage(img image.Image) *Mask {
	b := img.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			_, _, _, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			if a>>8 > AlphaThreshold {
				m.bits[y*m.w+x] = true
			}
		}
	}
	return m
}

// Size returns the mask dimensions.
func (m *Mask) Size() (int, int) {
	return m.w, m.h
}

// Opaque reports whether (x, y) is solid. Out-of-range points are transparent.
func (m *Mask) Opaque(x, y int) bool {
	if x < 0 || y < 0 || x >= m.w || y >= m.h {
		return false
	}
	return m.bits[y*m.w+x]
}

// Set marks (x, y) solid.
func (m *Mask) Set(x, y int) {
	if x < 0 || y < 0 || x >= m.w || y >= m.h {
		return
	}
	m.bits[y*m.w+x] = true
}

// Count returns the number of solid pixels.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.bits {
		if b {
			n++
		}
	}
	return n
}

// FlipVertical returns the mask of the vertically mirrored sprite.
func (m *Mask) FlipVertical() *Mask {
	out := NewMask(m.w, m.h)
	for y := 0; y < m.h; y++ {
		copy(out.bits[(m.h-1-y)*m.w:(m.h-y)*m.w], m.bits[y*m.w:(y+1)*m.w])
	}
	return out
}

// Scale returns the mask enlarged k times with nearest-neighbor sampling.
func (m *Mask) Scale(k int) *Mask {
	if k <= 1 {
		return m
	}
	out := NewMask(m.w*k, m.h*k)
	for y := 0; y < out.h; y++ {
		for x := 0; x < out.w; x++ {
			out.bits[y*out.w+x] = m.bits[(y/k)*m.w+x/k]
		}
	}
	return out
}

// Overlap implements Shape.
func (m *Mask) Overlap(other Shape, dx, dy int) bool {
	return overlap(m, other, dx, dy)
}

// Box is a fully solid rectangle. It stands in for sprite masks when no
// images are loaded, which turns collision into a bounding-box test.
type Box struct {
	W, H int
}

// NewBox creates a solid w x h shape.
func NewBox(w, h int) Box {
	return Box{W: w, H: h}
}

// Size returns the box dimensions.
func (b Box) Size() (int, int) {
	return b.W, b.H
}

// Opaque reports whether (x, y) lies inside the box.
func (b Box) Opaque(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.W && y < b.H
}

// Overlap implements Shape. Box against box is a rectangle intersection.
func (b Box) Overlap(other Shape, dx, dy int) bool {
	if ob, ok := other.(Box); ok {
		if b.W <= 0 || b.H <= 0 || ob.W <= 0 || ob.H <= 0 {
			return false
		}
		return dx < b.W && dx+ob.W > 0 && dy < b.H && dy+ob.H > 0
	}
	return overlap(b, other, dx, dy)
}

// overlap scans the intersection of a and b (offset by dx, dy) for a shared solid pixel.
func overlap(a, b Shape, dx, dy int) bool {
	aw, ah := a.Size()
	bw, bh := b.Size()

	x0, y0 := max(0, dx), max(0, dy)
	x1, y1 := min(aw, dx+bw), min(ah, dy+bh)
	if x0 >= x1 || y0 >= y1 {
		return false
	}

	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			if a.Opaque(x, y) && b.Opaque(x-dx, y-dy) {
				return true
			}
		}
	}
	return false
}
