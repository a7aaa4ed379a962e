package renderer

import (
	"context"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/flappy/config"
	"github.com/pthm-cable/flappy/game"
)

func newSimTerminal(t *testing.T, cancel context.CancelFunc) (*Terminal, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	// One cell per 10x10 world pixels
	screen.SetSize(50, 80)

	cfg := config.Default()
	settings := game.NewSettings(cfg, game.BoxShapes(cfg))
	term := NewTerminal(screen, settings, float64(cfg.Screen.Height), 0, cancel)
	t.Cleanup(term.Close)
	return term, screen
}

func cellRune(screen tcell.Screen, x, y int) rune {
	r, _, _, _ := screen.GetContent(x, y)
	return r
}

func TestTerminalDraw(t *testing.T) {
	term, screen := newSimTerminal(t, func() {})

	term.Draw(&game.Frame{
		Tick:  12,
		Score: 3,
		Alive: 1,
		Birds: []game.BirdView{{X: 230, Y: 350}},
		Obstacles: []game.ObstacleView{
			{X: 300, Top: 200, TopY: -440, Bottom: 400, Width: 104},
		},
		Ground: game.GroundView{Y: 730, X1: 0, X2: 672, Width: 672},
	})

	tests := []struct {
		name string
		x, y int
		want rune
	}{
		{"bird at sprite center", 26, 37, '@'},
		{"top segment", 30, 10, '█'},
		{"gap", 30, 30, ' '},
		{"bottom segment", 30, 50, '█'},
		{"ground", 5, 75, '▒'},
		{"score ends one cell from the right", 48, 0, '3'},
		{"score label", 41, 0, 'S'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cellRune(screen, tt.x, tt.y); got != tt.want {
				t.Errorf("cell (%d,%d) = %q, want %q", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestTerminalQuitKeyCancels(t *testing.T) {
	tests := []struct {
		name string
		key  tcell.Key
		r    rune
	}{
		{"q", tcell.KeyRune, 'q'},
		{"escape", tcell.KeyEscape, 0},
		{"ctrl-c", tcell.KeyCtrlC, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			_, screen := newSimTerminal(t, cancel)

			screen.InjectKey(tt.key, tt.r, tcell.ModNone)

			select {
			case <-ctx.Done():
			case <-time.After(2 * time.Second):
				t.Fatal("key did not cancel the run")
			}
		})
	}
}

func TestBirdAnimation(t *testing.T) {
	tests := []struct {
		tick, want int
	}{
		{0, 0},
		{4, 0},
		{5, 1},
		{15, 3},
		{20, 0},
	}
	for _, tt := range tests {
		if got := birdFrame(tt.tick, 4); got != tt.want {
			t.Errorf("birdFrame(%d, 4) = %d, want %d", tt.tick, got, tt.want)
		}
	}

	if birdTilt(-9) != -25 || birdTilt(100) != 90 || birdTilt(0) != 0 {
		t.Error("birdTilt should clamp to [-25, 90]")
	}
}
