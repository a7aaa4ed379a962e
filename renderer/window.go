package renderer

import (
	"context"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flappy/assets"
	"github.com/pthm-cable/flappy/config"
	"github.com/pthm-cable/flappy/game"
	"github.com/pthm-cable/flappy/neural"
	"github.com/pthm-cable/flappy/systems"
	"github.com/pthm-cable/flappy/ui"
)

// Fallback colors for drawing without textures.
var (
	pipeColor   = rl.Color{R: 84, G: 180, B: 60, A: 255}
	pipeEdge    = rl.Color{R: 40, G: 90, B: 30, A: 255}
	groundColor = rl.Color{R: 222, G: 216, B: 149, A: 255}
	grassColor  = rl.Color{R: 110, G: 190, B: 60, A: 255}
	birdColor   = rl.Color{R: 250, G: 200, B: 40, A: 255}
	sensorColor = rl.Color{R: 255, G: 60, B: 60, A: 200}
)

// Ticks each bird animation frame stays on screen.
const animationTicks = 5

// Window draws frames to a raylib window with a control side panel.
// It must be created and used on the main goroutine.
type Window struct {
	cfg    *config.Config
	bundle *assets.Bundle
	cancel context.CancelFunc

	background *BackgroundRenderer
	particles  *ParticleRenderer
	effects    *systems.Effects

	pipe   rl.Texture2D
	ground rl.Texture2D
	birds  []rl.Texture2D
	scale  float32
	birdW  float32
	birdH  float32
	playW  int32
	playH  int32

	widgets  *ui.Renderer
	hud      *ui.HUD
	stats    *ui.NeuralStatsPanel
	panel    *ui.ControlsPanel
	controls ui.Controls

	population *neural.Population
}

// NewWindow opens the window and loads the bundle's textures. cancel is
// called when the window is closed.
func NewWindow(cfg *config.Config, bundle *assets.Bundle, effects *systems.Effects, cancel context.CancelFunc) *Window {
	w := &Window{
		cfg:       cfg,
		bundle:    bundle,
		cancel:    cancel,
		effects:   effects,
		particles: NewParticleRenderer(cfg.Derived.ScreenW32, cfg.Derived.GroundY32),
		scale:     float32(bundle.Scale),
		playW:     int32(cfg.Screen.Width),
		playH:     int32(cfg.Screen.Height),
		widgets:   ui.NewRenderer(),
		hud:       ui.NewHUD(),
		stats:     ui.NewNeuralStatsPanel(),
		panel:     ui.NewControlsPanel(),
		controls:  ui.DefaultControls(),
	}

	bw, bh := bundle.Shapes().Bird.Size()
	w.birdW, w.birdH = float32(bw), float32(bh)

	rl.InitWindow(w.playW+ui.PanelWidth, w.playH, cfg.Screen.Title)
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	w.background = NewBackgroundRenderer(w.playW, w.playH, bundle.Background, w.scale)
	if bundle.Textured() {
		w.pipe = rl.LoadTexture(bundle.Pipe)
		w.ground = rl.LoadTexture(bundle.Ground)
		for _, path := range bundle.Birds {
			w.birds = append(w.birds, rl.LoadTexture(path))
		}
	}
	return w
}

// SetPopulation makes the species panel show p.
func (w *Window) SetPopulation(p *neural.Population) {
	w.population = p
}

// Draw implements game.Renderer. It draws every FrameSkip-th tick and blocks
// while paused. Closing the window cancels the run.
func (w *Window) Draw(f *game.Frame) {
	if w.effects != nil {
		w.effects.Draw(f)
	}
	if rl.WindowShouldClose() {
		w.cancel()
		return
	}
	if f.Tick%w.controls.FrameSkip != 0 {
		return
	}

	for {
		w.drawFrame(f)
		if !w.controls.Paused {
			return
		}
		if rl.WindowShouldClose() {
			w.cancel()
			return
		}
	}
}

func (w *Window) drawFrame(f *game.Frame) {
	w.controls.HandleKeys()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	w.background.Draw()
	for i := range f.Obstacles {
		w.drawObstacle(&f.Obstacles[i])
	}
	for i := range f.Birds {
		w.drawBird(&f.Birds[i], f.Tick)
	}
	if w.controls.ShowSensors && len(f.Obstacles) > 0 {
		w.drawSensors(f)
	}
	if w.controls.ShowEffects && w.effects != nil {
		w.particles.Draw(w.effects)
	}
	w.drawGround(&f.Ground)
	ui.DrawScore(f.Score, w.playW)

	w.drawPanel(f)

	rl.EndDrawing()
}

func (w *Window) drawObstacle(o *game.ObstacleView) {
	if w.pipe.ID == 0 {
		x, width := int32(o.X), int32(o.Width)
		rl.DrawRectangle(x, int32(o.TopY), width, int32(o.Top-o.TopY), pipeColor)
		rl.DrawRectangleLines(x, int32(o.TopY), width, int32(o.Top-o.TopY), pipeEdge)
		rl.DrawRectangle(x, int32(o.Bottom), width, int32(w.cfg.Pipe.Height), pipeColor)
		rl.DrawRectangleLines(x, int32(o.Bottom), width, int32(w.cfg.Pipe.Height), pipeEdge)
		return
	}

	tw, th := float32(w.pipe.Width), float32(w.pipe.Height)
	dw, dh := tw*w.scale, th*w.scale

	// Negative source height flips the top segment
	rl.DrawTexturePro(w.pipe,
		rl.Rectangle{X: 0, Y: 0, Width: tw, Height: -th},
		rl.Rectangle{X: float32(o.X), Y: float32(o.TopY), Width: dw, Height: dh},
		rl.Vector2{}, 0, rl.White)
	rl.DrawTextureEx(w.pipe, rl.Vector2{X: float32(o.X), Y: float32(o.Bottom)}, 0, w.scale, rl.White)
}

func (w *Window) drawBird(b *game.BirdView, tick int) {
	tint := rl.White
	if w.controls.ShowSpecies && w.population != nil && b.Species != 0 {
		tint = ui.SpeciesColor(w.population.Species().GetSpeciesColor(b.Species))
	}

	if len(w.birds) == 0 {
		color := birdColor
		if tint != rl.White {
			color = tint
		}
		rl.DrawRectangle(int32(b.X), int32(b.Y), int32(w.birdW), int32(w.birdH), color)
		rl.DrawRectangleLines(int32(b.X), int32(b.Y), int32(w.birdW), int32(w.birdH), rl.Black)
		return
	}

	tex := w.birds[birdFrame(tick, len(w.birds))]
	// Rotate around the sprite center
	center := rl.Vector2{X: w.birdW / 2, Y: w.birdH / 2}
	rl.DrawTexturePro(tex,
		rl.Rectangle{X: 0, Y: 0, Width: float32(tex.Width), Height: float32(tex.Height)},
		rl.Rectangle{X: float32(b.X) + center.X, Y: float32(b.Y) + center.Y, Width: w.birdW, Height: w.birdH},
		center, birdTilt(b.Climb), tint)
}

// drawSensors draws each bird's observation: lines to both edges of the target gap.
func (w *Window) drawSensors(f *game.Frame) {
	o := &f.Obstacles[f.Target]
	gx := int32(o.X + o.Width/2)
	for i := range f.Birds {
		b := &f.Birds[i]
		bx := int32(float32(b.X) + w.birdW/2)
		by := int32(float32(b.Y) + w.birdH/2)
		rl.DrawLine(bx, by, gx, int32(o.Top), sensorColor)
		rl.DrawLine(bx, by, gx, int32(o.Bottom), sensorColor)
	}
}

func (w *Window) drawGround(g *game.GroundView) {
	if w.ground.ID == 0 {
		h := w.playH - int32(g.Y)
		for _, x := range []float64{g.X1, g.X2} {
			rl.DrawRectangle(int32(x), int32(g.Y), int32(g.Width), h, groundColor)
			rl.DrawRectangle(int32(x), int32(g.Y), int32(g.Width), 8, grassColor)
		}
		return
	}
	rl.DrawTextureEx(w.ground, rl.Vector2{X: float32(g.X1), Y: float32(g.Y)}, 0, w.scale, rl.White)
	rl.DrawTextureEx(w.ground, rl.Vector2{X: float32(g.X2), Y: float32(g.Y)}, 0, w.scale, rl.White)
}

func (w *Window) drawPanel(f *game.Frame) {
	x := w.playW
	r := w.widgets
	r.DrawPanel(x, 0, ui.PanelWidth, w.playH)

	pad := r.Theme.Padding
	width := int32(ui.PanelWidth) - 2*pad

	data := ui.HUDData{
		Title:      w.cfg.Screen.Title,
		Generation: f.Generation,
		Alive:      f.Alive,
		Score:      f.Score,
		Tick:       f.Tick,
		FrameSkip:  w.controls.FrameSkip,
		FPS:        rl.GetFPS(),
		Paused:     w.controls.Paused,
	}
	if w.population != nil {
		data.Population = len(w.population.Individuals())
	}
	y := w.hud.Draw(data, x+pad, pad, width)

	if w.population != nil {
		best := 0.0
		if c := w.population.Best(); c != nil {
			best = c.Fitness()
		}
		y = w.stats.Draw(ui.NewNeuralStatsData(w.population.Species(), best, 5), x+pad, y)
	}

	w.panel.Draw(&w.controls, x+pad, y+8, width)
}

// Close unloads textures and closes the window.
func (w *Window) Close() {
	w.background.Unload()
	if w.pipe.ID != 0 {
		rl.UnloadTexture(w.pipe)
	}
	if w.ground.ID != 0 {
		rl.UnloadTexture(w.ground)
	}
	for _, t := range w.birds {
		rl.UnloadTexture(t)
	}
	rl.CloseWindow()
}

// birdFrame picks the animation frame for a tick.
func birdFrame(tick, frames int) int {
	return (tick / animationTicks) % frames
}

// birdTilt maps vertical speed to a sprite rotation in degrees:
// nose up to -25 while climbing, down to 90 in a dive.
func birdTilt(climb float64) float32 {
	return float32(min(max(climb*3, -25), 90))
}
