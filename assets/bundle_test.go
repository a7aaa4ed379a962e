package assets

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/flappy/collision"
	"github.com/pthm-cable/flappy/config"
)

// writePNG writes a w x h image whose top row is transparent and the rest opaque.
func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 1; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 200, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func spriteDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, BackgroundFile), 4, 4)
	writePNG(t, filepath.Join(dir, GroundFile), 6, 2)
	writePNG(t, filepath.Join(dir, PipeFile), 5, 8)
	for _, name := range BirdFiles {
		writePNG(t, filepath.Join(dir, name), 3, 2)
	}
	return dir
}

func TestLoadWithoutDirUsesBoxes(t *testing.T) {
	cfg := config.Default()
	b, err := Load("", cfg)
	if err != nil {
		t.Fatal(err)
	}
	if b.Textured() {
		t.Error("bundle without a directory should not be textured")
	}

	s := b.Shapes()
	if w, h := s.Bird.Size(); w != cfg.Bird.Width || h != cfg.Bird.Height {
		t.Errorf("bird size %dx%d, want %dx%d", w, h, cfg.Bird.Width, cfg.Bird.Height)
	}
	if _, ok := s.PipeTop.(collision.Box); !ok {
		t.Errorf("pipe shape is %T, want collision.Box", s.PipeTop)
	}
}

func TestLoadBuildsScaledMasks(t *testing.T) {
	b, err := Load(spriteDir(t), config.Default())
	if err != nil {
		t.Fatal(err)
	}
	if !b.Textured() || len(b.Birds) != len(BirdFiles) {
		t.Fatalf("textured=%v birds=%d", b.Textured(), len(b.Birds))
	}

	s := b.Shapes()
	if w, h := s.Bird.Size(); w != 6 || h != 4 {
		t.Errorf("bird mask %dx%d, want 6x4", w, h)
	}

	// The source's transparent top row ends up at the bottom of the flipped segment
	bw, bh := s.PipeBottom.Size()
	if s.PipeBottom.Opaque(0, 0) || !s.PipeBottom.Opaque(0, bh-1) {
		t.Error("bottom segment should be transparent on top only")
	}
	if !s.PipeTop.Opaque(bw-1, 0) || s.PipeTop.Opaque(bw-1, bh-1) {
		t.Error("top segment should be the vertical mirror of the bottom one")
	}
}

func TestLoadBirdMaskFromUpflap(t *testing.T) {
	dir := spriteDir(t)
	// Give the first frame a size no other frame has
	writePNG(t, filepath.Join(dir, BirdFiles[0]), 4, 3)

	b, err := Load(dir, config.Default())
	if err != nil {
		t.Fatal(err)
	}
	if w, h := b.Shapes().Bird.Size(); w != 8 || h != 6 {
		t.Errorf("bird mask %dx%d, want 8x6 from %s", w, h, BirdFiles[0])
	}
}

func TestLoadMissingSprite(t *testing.T) {
	dir := spriteDir(t)
	if err := os.Remove(filepath.Join(dir, PipeFile)); err != nil {
		t.Fatal(err)
	}

	_, err := Load(dir, config.Default())
	if !errors.Is(err, ErrMissingSprite) {
		t.Errorf("Load() error = %v, want ErrMissingSprite", err)
	}
}
