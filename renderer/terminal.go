package renderer

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/flappy/game"
)

var (
	termPipe   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	termBird   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	termGround = tcell.StyleDefault.Foreground(tcell.ColorOlive)
	termText   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	termHUD    = tcell.StyleDefault.Foreground(tcell.ColorSilver)
)

// Terminal draws frames as character cells. The world is scaled to fit the screen.
type Terminal struct {
	screen tcell.Screen
	cancel context.CancelFunc
	ticker *time.Ticker // nil = no pacing

	worldW, worldH float64
	groundY        float64
	birdW, birdH   float64

	done chan struct{}
}

// NewTerminal takes ownership of an initialized screen, starts polling keys
// and paces draws at fps (0 = as fast as possible). q, Esc and Ctrl-C call cancel.
func NewTerminal(screen tcell.Screen, settings *game.Settings, worldH float64, fps int, cancel context.CancelFunc) *Terminal {
	bw, bh := settings.BirdShape.Size()
	t := &Terminal{
		screen:  screen,
		cancel:  cancel,
		worldW:  settings.ScreenWidth,
		worldH:  worldH,
		groundY: settings.GroundY,
		birdW:   float64(bw),
		birdH:   float64(bh),
		done:    make(chan struct{}),
	}
	if fps > 0 {
		t.ticker = time.NewTicker(time.Second / time.Duration(fps))
	}
	screen.HideCursor()
	go t.pollEvents()
	return t
}

func (t *Terminal) pollEvents() {
	defer close(t.done)
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			// Screen finalized
			return
		}
		t.handleEvent(ev)
	}
}

func (t *Terminal) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
			(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
			t.cancel()
		}
	case *tcell.EventResize:
		t.screen.Sync()
	}
}

// Draw implements game.Renderer.
func (t *Terminal) Draw(f *game.Frame) {
	cols, rows := t.screen.Size()
	if cols <= 0 || rows <= 0 {
		return
	}
	sx := float64(cols) / t.worldW
	sy := float64(rows) / t.worldH

	t.screen.Clear()

	groundRow := int(t.groundY * sy)
	for i := range f.Obstacles {
		o := &f.Obstacles[i]
		x0, x1 := int(o.X*sx), int((o.X+o.Width)*sx)
		top, bottom := int(o.Top*sy), int(o.Bottom*sy)
		for x := max(x0, 0); x < min(x1, cols); x++ {
			for y := 0; y < top; y++ {
				t.screen.SetContent(x, y, '█', nil, termPipe)
			}
			for y := bottom; y < groundRow; y++ {
				t.screen.SetContent(x, y, '█', nil, termPipe)
			}
		}
	}

	for i := range f.Birds {
		b := &f.Birds[i]
		x := int((b.X + t.birdW/2) * sx)
		y := int((b.Y + t.birdH/2) * sy)
		t.screen.SetContent(x, y, '@', nil, termBird)
	}

	for y := groundRow; y < rows; y++ {
		for x := 0; x < cols; x++ {
			t.screen.SetContent(x, y, '▒', nil, termGround)
		}
	}

	score := fmt.Sprintf("Score: %d", f.Score)
	t.drawText(cols-1-len(score), 0, score, termText)
	t.drawText(0, rows-1, fmt.Sprintf("Gen %d  Alive %d  Tick %d  [q] quit", f.Generation, f.Alive, f.Tick), termHUD)

	t.screen.Show()

	if t.ticker != nil {
		<-t.ticker.C
	}
}

func (t *Terminal) drawText(x, y int, text string, style tcell.Style) {
	for i, r := range []rune(text) {
		t.screen.SetContent(x+i, y, r, nil, style)
	}
}

// Close restores the terminal and waits for the event loop to exit.
func (t *Terminal) Close() {
	if t.ticker != nil {
		t.ticker.Stop()
	}
	t.screen.Fini()
	<-t.done
}
