// Package renderer draws episode frames to a raylib window or a terminal.
package renderer

import rl "github.com/gen2brain/raylib-go/raylib"

// Sky gradient used when no background texture is loaded.
var (
	skyTop    = rl.Color{R: 78, G: 192, B: 202, A: 255}
	skyBottom = rl.Color{R: 200, G: 236, B: 230, A: 255}
)

// BackgroundRenderer draws the static backdrop behind the playfield.
type BackgroundRenderer struct {
	texture rl.Texture2D
	scale   float32

	screenW, screenH int32
	textured         bool
}

// NewBackgroundRenderer creates a background renderer. path may be empty,
// in which case a sky gradient is drawn.
func NewBackgroundRenderer(screenW, screenH int32, path string, scale float32) *BackgroundRenderer {
	b := &BackgroundRenderer{screenW: screenW, screenH: screenH, scale: scale}
	if path != "" {
		b.texture = rl.LoadTexture(path)
		b.textured = b.texture.ID != 0
	}
	return b
}

// Draw renders the backdrop, tiling the texture horizontally if it is narrower than the screen.
func (b *BackgroundRenderer) Draw() {
	if !b.textured {
		rl.DrawRectangleGradientV(0, 0, b.screenW, b.screenH, skyTop, skyBottom)
		return
	}

	w := float32(b.texture.Width) * b.scale
	for x := float32(0); x < float32(b.screenW); x += w {
		rl.DrawTextureEx(b.texture, rl.Vector2{X: x, Y: 0}, 0, b.scale, rl.White)
	}
}

// Unload frees resources.
func (b *BackgroundRenderer) Unload() {
	if b.textured {
		rl.UnloadTexture(b.texture)
		b.textured = false
	}
}
