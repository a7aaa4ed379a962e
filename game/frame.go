package game

// EventKind classifies what happened to the world during a tick.
type EventKind uint8

const (
	EventCollision   EventKind = iota // A bird hit a pipe
	EventOutOfBounds                  // A bird hit the ground or left the top of the screen
	EventPass                         // An obstacle was passed
)

// Event marks where something happened during a tick. Bird events sit at
// the center of the sprite, pass events at the center of the gap.
type Event struct {
	Kind EventKind
	X, Y float64
}

// BirdView is a snapshot of one live bird.
type BirdView struct {
	X, Y    float64
	Climb   float64 // Vertical speed at the current age, negative while rising
	Species int     // 0 when the genome has no species
}

// ObstacleView is a snapshot of one obstacle.
type ObstacleView struct {
	X      float64
	Top    float64 // Lower edge of the top segment
	TopY   float64 // Where the top segment sprite starts
	Bottom float64 // Upper edge of the bottom segment
	Width  float64
	Passed bool
}

// GroundView is a snapshot of the scrolling ground.
type GroundView struct {
	Y, X1, X2, Width float64
}

// Frame is the world state handed to renderers after every tick.
// Renderers must treat it as read-only; the slices are rebuilt every tick.
type Frame struct {
	Tick       int
	Generation int
	Score      int
	Alive      int

	Birds     []BirdView
	Obstacles []ObstacleView
	Target    int // Index into Obstacles of the target obstacle
	Ground    GroundView
	Events    []Event
}

// Renderer draws frames. Draw is called once per tick, after the tick completed.
type Renderer interface {
	Draw(frame *Frame)
}

// Renderers fans one frame out to several renderers in order.
type Renderers []Renderer

// Draw calls Draw on every renderer.
func (rs Renderers) Draw(frame *Frame) {
	for _, r := range rs {
		if r != nil {
			r.Draw(frame)
		}
	}
}

// snapshot copies the world into f, reusing its slices.
func (w *World) snapshot(f *Frame, target int) {
	f.Score = w.score
	f.Alive = len(w.bodies)
	f.Target = target

	f.Birds = f.Birds[:0]
	for i, b := range w.bodies {
		view := BirdView{X: b.X, Y: b.Y, Climb: b.Velocity + 2*float64(b.Age)}
		if s, ok := w.genomes[i].(speciated); ok {
			view.Species = s.Species()
		}
		f.Birds = append(f.Birds, view)
	}

	f.Obstacles = f.Obstacles[:0]
	for _, o := range w.obstacles {
		f.Obstacles = append(f.Obstacles, ObstacleView{
			X:      o.X,
			Top:    o.Top,
			TopY:   o.TopY(),
			Bottom: o.Bottom,
			Width:  o.Width(),
			Passed: o.Passed,
		})
	}

	f.Ground = GroundView{Y: w.ground.Y, X1: w.ground.X1, X2: w.ground.X2, Width: w.ground.Width}
}
