package collision

import (
	"image"
	"image/color"
	"testing"
)

func TestBoxOverlap(t *testing.T) {
	a := NewBox(10, 10)
	b := NewBox(5, 5)

	tests := []struct {
		name   string
		dx, dy int
		want   bool
	}{
		{"inside", 2, 2, true},
		{"touching right edge", 10, 0, false},
		{"one pixel overlap right", 9, 0, true},
		{"touching top edge", 0, -5, false},
		{"one pixel overlap top", 0, -4, true},
		{"far away", 100, 100, false},
		{"negative corner", -4, -4, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Overlap(b, tt.dx, tt.dy); got != tt.want {
				t.Errorf("Overlap(%d,%d) = %v, want %v", tt.dx, tt.dy, got, tt.want)
			}
			// Generic scan must agree with the rectangle fast path
			if got := overlap(a, b, tt.dx, tt.dy); got != tt.want {
				t.Errorf("overlap scan(%d,%d) = %v, want %v", tt.dx, tt.dy, got, tt.want)
			}
		})
	}
}

func TestMaskOverlapRespectsTransparency(t *testing.T) {
	// Diagonal line mask: only (i, i) solid
	diag := NewMask(4, 4)
	for i := 0; i < 4; i++ {
		diag.Set(i, i)
	}

	dot := NewMask(1, 1)
	dot.Set(0, 0)

	if !diag.Overlap(dot, 2, 2) {
		t.Error("dot on the diagonal should overlap")
	}
	if diag.Overlap(dot, 2, 1) {
		t.Error("dot off the diagonal must not overlap even though boxes intersect")
	}
	if !NewBox(4, 4).Overlap(dot, 2, 1) {
		t.Error("box approximation should report the bounding-box hit")
	}
}

func TestFromImageAndFlip(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 4))
	// Solid top row only; a faint pixel below the threshold
	for x := 0; x < 3; x++ {
		img.Set(x, 0, color.NRGBA{R: 255, A: 255})
	}
	img.Set(1, 2, color.NRGBA{R: 255, A: 100})

	m := FromImage(img)
	if w, h := m.Size(); w != 3 || h != 4 {
		t.Fatalf("size = %dx%d, want 3x4", w, h)
	}
	if m.Count() != 3 {
		t.Errorf("count = %d, want 3", m.Count())
	}
	if m.Opaque(1, 2) {
		t.Error("pixel below alpha threshold must be transparent")
	}

	flipped := m.FlipVertical()
	for x := 0; x < 3; x++ {
		if !flipped.Opaque(x, 3) {
			t.Errorf("flipped (%d,3) should be solid", x)
		}
		if flipped.Opaque(x, 0) {
			t.Errorf("flipped (%d,0) should be empty", x)
		}
	}
}

func TestOpaqueOutOfRange(t *testing.T) {
	m := NewMask(2, 2)
	m.Set(5, 5) // ignored
	if m.Count() != 0 {
		t.Error("out of range Set must be ignored")
	}
	if m.Opaque(-1, 0) || m.Opaque(0, 2) {
		t.Error("out of range points must be transparent")
	}
}

func TestMaskScale(t *testing.T) {
	m := NewMask(2, 1)
	m.Set(1, 0)

	s := m.Scale(2)
	if w, h := s.Size(); w != 4 || h != 2 {
		t.Fatalf("Size() = %dx%d, want 4x2", w, h)
	}
	if s.Count() != 4 {
		t.Errorf("Count() = %d, want 4", s.Count())
	}
	for _, p := range [][2]int{{2, 0}, {3, 0}, {2, 1}, {3, 1}} {
		if !s.Opaque(p[0], p[1]) {
			t.Errorf("(%d,%d) should be solid", p[0], p[1])
		}
	}
	if m.Scale(1) != m {
		t.Error("Scale(1) should return the receiver")
	}
}
