// Package assets loads the sprite bundle shared by the simulation and the renderers.
package assets

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/pthm-cable/flappy/collision"
	"github.com/pthm-cable/flappy/config"
	"github.com/pthm-cable/flappy/game"
)

// Sprite file names inside an asset directory.
const (
	BackgroundFile = "background-day.png"
	GroundFile     = "base.png"
	PipeFile       = "pipe-green.png"
)

// BirdFiles are the flap animation frames, in playback order.
var BirdFiles = []string{
	"yellowbird-upflap.png",
	"yellowbird-midflap.png",
	"yellowbird-downflap.png",
	"yellowbird-midflap.png",
}

// DefaultScale is the factor sprites are enlarged by on load.
const DefaultScale = 2

// ErrMissingSprite is returned (wrapped) when a required image is absent.
var ErrMissingSprite = errors.New("missing sprite")

// Bundle is the read-only sprite set. It is loaded once and passed by pointer.
type Bundle struct {
	Dir   string
	Scale int

	// Texture paths, empty when the bundle has no images
	Background string
	Ground     string
	Pipe       string
	Birds      []string

	shapes game.Shapes
}

// Load builds a bundle from dir. An empty dir gives box shapes sized from cfg
// and no textures, so renderers fall back to primitives.
func Load(dir string, cfg *config.Config) (*Bundle, error) {
	if dir == "" {
		return &Bundle{Scale: 1, shapes: game.BoxShapes(cfg)}, nil
	}

	b := &Bundle{
		Dir:        dir,
		Scale:      DefaultScale,
		Background: filepath.Join(dir, BackgroundFile),
		Ground:     filepath.Join(dir, GroundFile),
		Pipe:       filepath.Join(dir, PipeFile),
	}
	for _, name := range BirdFiles {
		b.Birds = append(b.Birds, filepath.Join(dir, name))
	}

	// Birds collide with the first animation frame only
	bird, err := loadMask(b.Birds[0], b.Scale)
	if err != nil {
		return nil, err
	}
	pipe, err := loadMask(b.Pipe, b.Scale)
	if err != nil {
		return nil, err
	}
	for _, path := range []string{b.Background, b.Ground} {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingSprite, path)
		}
	}

	b.shapes = game.Shapes{
		Bird:       bird,
		PipeTop:    pipe.FlipVertical(),
		PipeBottom: pipe,
	}
	return b, nil
}

// Textured reports whether the bundle carries images.
func (b *Bundle) Textured() bool {
	return b.Dir != ""
}

// Shapes returns the collision shapes of the bird and both pipe segments.
func (b *Bundle) Shapes() game.Shapes {
	return b.shapes
}

func loadMask(path string, scale int) (*collision.Mask, error) {
	img, err := decode(path)
	if err != nil {
		return nil, err
	}
	return collision.FromImage(img).Scale(scale), nil
}

func decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingSprite, path)
		}
		return nil, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}
