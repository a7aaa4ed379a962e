package systems

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/flappy/components"
	"github.com/pthm-cable/flappy/game"
)

func TestEffectsSpawnFromEvents(t *testing.T) {
	tests := []struct {
		name     string
		kind     game.EventKind
		want     components.EffectKind
		min, max int
	}{
		{"collision", game.EventCollision, components.EffectFeather, 6, 9},
		{"out of bounds", game.EventOutOfBounds, components.EffectFeather, 6, 9},
		{"pass", game.EventPass, components.EffectSpark, 8, 14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := NewEffects(rand.New(rand.NewSource(1)))
			fx.Draw(&game.Frame{Events: []game.Event{{Kind: tt.kind, X: 100, Y: 200}}})

			n := fx.Count()
			if n < tt.min || n > tt.max {
				t.Fatalf("Count() = %d, want %d..%d", n, tt.min, tt.max)
			}

			seen := 0
			fx.Each(func(pos *components.Position, life *components.Lifetime) {
				seen++
				if life.Kind != tt.want {
					t.Errorf("kind = %d, want %d", life.Kind, tt.want)
				}
				if life.Remaining != life.Max-1 {
					t.Errorf("Remaining = %d, want Max-1 = %d after one update", life.Remaining, life.Max-1)
				}
				if f := life.Fraction(); f <= 0 || f >= 1 {
					t.Errorf("Fraction() = %v, want in (0, 1)", f)
				}
			})
			if seen != n {
				t.Errorf("Each visited %d particles, Count() = %d", seen, n)
			}
		})
	}
}

func TestEffectsExpire(t *testing.T) {
	fx := NewEffects(rand.New(rand.NewSource(2)))
	fx.EmitFeathers(10, 10)
	fx.EmitSparks(50, 50)
	if fx.Count() == 0 {
		t.Fatal("no particles spawned")
	}

	// Longest lifetime is 69 ticks
	for i := 0; i < 70; i++ {
		fx.Update()
	}
	if fx.Count() != 0 {
		t.Errorf("Count() = %d after every lifetime elapsed, want 0", fx.Count())
	}
	fx.Each(func(*components.Position, *components.Lifetime) {
		t.Error("Each visited an expired particle")
	})
}

func TestFeathersSink(t *testing.T) {
	fx := NewEffects(rand.New(rand.NewSource(3)))
	fx.EmitFeathers(0, 0)

	for i := 0; i < 30; i++ {
		fx.Update()
	}
	fx.Each(func(pos *components.Position, _ *components.Lifetime) {
		if pos.Y <= 0 {
			t.Errorf("feather at y=%v should have sunk below its origin", pos.Y)
		}
	})
}

func TestEffectsCap(t *testing.T) {
	fx := NewEffects(rand.New(rand.NewSource(4)))
	for i := 0; i < MaxParticles; i++ {
		fx.EmitSparks(0, 0)
	}
	if fx.Count() != MaxParticles {
		t.Errorf("Count() = %d, want cap %d", fx.Count(), MaxParticles)
	}
}
