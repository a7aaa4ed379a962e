package game

import (
	"github.com/pthm-cable/flappy/collision"
	"github.com/pthm-cable/flappy/components"
	"github.com/pthm-cable/flappy/config"
)

// Settings holds everything an episode needs to build and run its world.
type Settings struct {
	ScreenWidth float64

	BirdX, BirdY    float64
	BirdShape       collision.Shape
	ImpulseVelocity float64
	GroundY         float64 // Birds touching this line are eliminated

	Obstacle    *components.ObstacleSpec
	SpawnX      float64
	SpawnOnPass bool

	GroundWidth float64
	Speed       float64

	TickReward float64
	PassBonus  float64

	MaxTicks int // 0 = until every bird is gone
}

// Shapes are the collision shapes of the three sprites that collide.
type Shapes struct {
	Bird       collision.Shape
	PipeTop    collision.Shape
	PipeBottom collision.Shape
}

// BoxShapes returns bounding-box shapes sized from the config.
func BoxShapes(cfg *config.Config) Shapes {
	pipe := collision.NewBox(cfg.Pipe.Width, cfg.Pipe.Height)
	return Shapes{
		Bird:       collision.NewBox(cfg.Bird.Width, cfg.Bird.Height),
		PipeTop:    pipe,
		PipeBottom: pipe,
	}
}

// NewSettings builds episode settings from the loaded config and sprite shapes.
func NewSettings(cfg *config.Config, shapes Shapes) *Settings {
	return &Settings{
		ScreenWidth:     float64(cfg.Screen.Width),
		BirdX:           cfg.Bird.X,
		BirdY:           cfg.Bird.Y,
		BirdShape:       shapes.Bird,
		ImpulseVelocity: cfg.Physics.ImpulseVelocity,
		GroundY:         cfg.Physics.GroundY,
		Obstacle: &components.ObstacleSpec{
			Gap:         cfg.Pipe.Gap,
			MinTop:      cfg.Pipe.MinTop,
			MaxTop:      cfg.Pipe.MaxTop,
			Speed:       cfg.Physics.Speed,
			TopShape:    shapes.PipeTop,
			BottomShape: shapes.PipeBottom,
		},
		SpawnX:      cfg.Pipe.SpawnX,
		SpawnOnPass: cfg.Pipe.SpawnOnPass,
		GroundWidth: float64(cfg.Ground.Width),
		Speed:       cfg.Physics.Speed,
		TickReward:  cfg.Fitness.TickReward,
		PassBonus:   cfg.Fitness.PassBonus,
		MaxTicks:    cfg.Training.MaxTicks,
	}
}
