package ui

import (
	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Frame-skip bounds for the speed slider.
const (
	MinFrameSkip = 1
	MaxFrameSkip = 20
)

// Controls is the state the control panel edits.
type Controls struct {
	FrameSkip   int  // Ticks simulated per drawn frame
	Paused      bool
	ShowSensors bool // Draw each bird's observation lines to the target gap
	ShowSpecies bool // Tint birds by species
	ShowEffects bool
}

// DefaultControls returns the initial control state.
func DefaultControls() Controls {
	return Controls{
		FrameSkip:   MinFrameSkip,
		ShowSpecies: true,
		ShowEffects: true,
	}
}

// SetFrameSkip stores n clamped to [MinFrameSkip, MaxFrameSkip].
func (c *Controls) SetFrameSkip(n int) {
	c.FrameSkip = min(max(n, MinFrameSkip), MaxFrameSkip)
}

// HandleKeys applies keyboard shortcuts: space pauses, S toggles sensors,
// C toggles species colors, E toggles effects, +/- change the frame skip.
func (c *Controls) HandleKeys() {
	if rl.IsKeyPressed(rl.KeySpace) {
		c.Paused = !c.Paused
	}
	if rl.IsKeyPressed(rl.KeyS) {
		c.ShowSensors = !c.ShowSensors
	}
	if rl.IsKeyPressed(rl.KeyC) {
		c.ShowSpecies = !c.ShowSpecies
	}
	if rl.IsKeyPressed(rl.KeyE) {
		c.ShowEffects = !c.ShowEffects
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		c.SetFrameSkip(c.FrameSkip + 1)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		c.SetFrameSkip(c.FrameSkip - 1)
	}
}

// ControlsPanel renders the raygui widgets that edit Controls.
type ControlsPanel struct {
	renderer *Renderer
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel() *ControlsPanel {
	return &ControlsPanel{renderer: NewRenderer()}
}

// Draw renders the panel at (x, y), applies any widget changes to c and
// returns the Y below it.
func (p *ControlsPanel) Draw(c *Controls, x, y, width int32) int32 {
	r := p.renderer
	fx, fw := float32(x), float32(width)

	y = r.DrawSectionHeader(x, y, "Controls")

	rl.DrawText("Ticks per frame", x, y, r.Theme.FontSize, r.Theme.LabelColor)
	y += r.Theme.LineHeight
	skip := gui.SliderBar(
		rl.Rectangle{X: fx + 20, Y: float32(y), Width: fw - 60, Height: 20},
		"1", "20",
		float32(c.FrameSkip), MinFrameSkip, MaxFrameSkip,
	)
	c.SetFrameSkip(int(skip + 0.5))
	y += 30

	half := (fw - 10) / 2
	if gui.Button(rl.Rectangle{X: fx, Y: float32(y), Width: half, Height: 26}, toggleText(c.Paused, "Resume", "Pause")) {
		c.Paused = !c.Paused
	}
	if gui.Button(rl.Rectangle{X: fx + half + 10, Y: float32(y), Width: half, Height: 26}, toggleText(c.ShowSensors, "Hide sensors", "Show sensors")) {
		c.ShowSensors = !c.ShowSensors
	}
	y += 34

	if gui.Button(rl.Rectangle{X: fx, Y: float32(y), Width: half, Height: 26}, toggleText(c.ShowSpecies, "Plain birds", "Species colors")) {
		c.ShowSpecies = !c.ShowSpecies
	}
	if gui.Button(rl.Rectangle{X: fx + half + 10, Y: float32(y), Width: half, Height: 26}, toggleText(c.ShowEffects, "Hide effects", "Show effects")) {
		c.ShowEffects = !c.ShowEffects
	}
	y += 34

	rl.DrawText("[Space] pause  [S] sensors  [+/-] speed", x, y, 10, rl.Gray)
	return y + 16
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}
