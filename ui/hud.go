package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flappy/neural"
)

// ScoreFontSize is the size of the in-game score text.
const ScoreFontSize = 40

// ScoreMargin is the distance of the score text from the top-right corner.
const ScoreMargin = 10

// ScoreText formats the in-game score.
func ScoreText(score int) string {
	return fmt.Sprintf("Score: %d", score)
}

// ScoreX returns the left edge of a score text of textWidth pixels that is
// right-aligned ScoreMargin pixels inside a playfield of areaWidth.
func ScoreX(areaWidth, textWidth int32) int32 {
	return areaWidth - ScoreMargin - textWidth
}

// DrawScore draws "Score: N" right-aligned in the top-right corner of the playfield.
func DrawScore(score int, areaWidth int32) {
	text := ScoreText(score)
	w := rl.MeasureText(text, ScoreFontSize)
	rl.DrawText(text, ScoreX(areaWidth, w), ScoreMargin, ScoreFontSize, rl.White)
}

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title      string
	Generation int
	Alive      int
	Population int
	Score      int
	Tick       int
	FrameSkip  int
	FPS        int32
	Paused     bool
}

// HUD renders the run status at the top of the side panel.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the HUD at (x, y) and returns the Y below it.
func (h *HUD) Draw(data HUDData, x, y, width int32) int32 {
	r := h.renderer

	rl.DrawText(data.Title, x, y, 20, rl.White)
	y += 28

	y = r.DrawLabelValue(x, y, "Generation", fmt.Sprintf("%d", data.Generation))
	y = r.DrawLabelValue(x, y, "Tick", fmt.Sprintf("%d", data.Tick))
	y = r.DrawLabelValue(x, y, "Score", fmt.Sprintf("%d", data.Score))
	y = r.DrawLabelValue(x, y, "Speed", fmt.Sprintf("%dx | FPS: %d", data.FrameSkip, data.FPS))

	alive := float32(0)
	if data.Population > 0 {
		alive = float32(data.Alive) / float32(data.Population)
	}
	y = r.DrawBar(x, y, fmt.Sprintf("Alive %d", data.Alive), alive, width)

	statusText := "Running"
	if data.Paused {
		statusText = "PAUSED"
	}
	rl.DrawText(statusText, x, y, 16, rl.Yellow)

	return y + 24
}

// NeuralStatsData holds data for the neural evolution stats panel.
type NeuralStatsData struct {
	SpeciesCount int
	TotalMembers int
	BestFitness  float64
	TopSpecies   []SpeciesInfo
}

// SpeciesInfo holds info about a single species.
type SpeciesInfo struct {
	ID      int
	Size    int
	Age     int
	BestFit float64
	Color   rl.Color
}

// NewNeuralStatsData summarizes the species manager for display.
func NewNeuralStatsData(sm *neural.SpeciesManager, best float64, top int) NeuralStatsData {
	stats := sm.GetStats()
	data := NeuralStatsData{
		SpeciesCount: stats.Count,
		TotalMembers: stats.TotalMembers,
		BestFitness:  best,
	}
	for _, sp := range sm.GetTopSpecies(top) {
		data.TopSpecies = append(data.TopSpecies, SpeciesInfo{
			ID:      sp.ID,
			Size:    sp.Size,
			Age:     sp.Age,
			BestFit: sp.BestFit,
			Color:   SpeciesColor(sp.Color),
		})
	}
	return data
}

// SpeciesColor converts a species color to an opaque raylib color.
func SpeciesColor(c neural.SpeciesColor) rl.Color {
	return rl.Color{R: c.R, G: c.G, B: c.B, A: 255}
}

// NeuralStatsPanel renders the neural evolution statistics.
type NeuralStatsPanel struct {
	renderer *Renderer
}

// NewNeuralStatsPanel creates a new neural stats panel.
func NewNeuralStatsPanel() *NeuralStatsPanel {
	return &NeuralStatsPanel{renderer: NewRenderer()}
}

// Draw renders the neural stats panel at (x, y) and returns the Y below it.
func (n *NeuralStatsPanel) Draw(data NeuralStatsData, x, y int32) int32 {
	r := n.renderer

	y = r.DrawSectionHeader(x, y, "Evolution")
	y = r.DrawLabelValue(x, y, "Species", fmt.Sprintf("%d (%d members)", data.SpeciesCount, data.TotalMembers))
	y = r.DrawLabelValue(x, y, "Best", fmt.Sprintf("%.1f", data.BestFitness))
	y += 4

	if len(data.TopSpecies) > 0 {
		y = r.DrawSectionHeader(x, y, "Top Species")
		for _, sp := range data.TopSpecies {
			text := fmt.Sprintf("#%d: %d members (age: %d, fit: %.0f)", sp.ID, sp.Size, sp.Age, sp.BestFit)
			y = r.DrawColorSwatch(x, y, sp.Color, text)
		}
	}
	return y + 4
}
