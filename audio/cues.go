// Package audio plays short sound cues for score changes and eliminations.
package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/pthm-cable/flappy/game"
)

const sampleRate = beep.SampleRate(44100)

// Speaker lock, swapped out in tests.
var (
	lockSpeaker   = speaker.Lock
	unlockSpeaker = speaker.Unlock
)

// Cue lengths.
const (
	chirpNote = 60 * time.Millisecond
	buzzTime  = 150 * time.Millisecond
)

// Cues turns frames into sound. It implements game.Renderer; at most one
// chirp and one buzz are queued per frame.
type Cues struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	volume      float64
	initialized bool

	generation int
	lastScore  int
	lastAlive  int

	Chirps int // Chirps queued so far
	Buzzes int // Buzzes queued so far
}

// NewCues creates a cue player at the given linear volume.
func NewCues(volume float64) *Cues {
	return &Cues{
		mixer:      &beep.Mixer{},
		volume:     volume,
		generation: -1,
	}
}

// Initialize opens the speaker and starts the mixer.
func (c *Cues) Initialize() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(c.mixer)
	c.initialized = true
	return nil
}

// Draw implements game.Renderer.
func (c *Cues) Draw(f *game.Frame) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// First frame of an episode: no baseline yet
	if f.Generation != c.generation || f.Tick <= 1 {
		c.generation = f.Generation
		c.lastScore = f.Score
		c.lastAlive = f.Alive + countEliminations(f)
	}

	if f.Score > c.lastScore {
		c.Chirps++
		c.play(c.chirp())
	}
	if f.Alive < c.lastAlive {
		c.Buzzes++
		c.play(c.buzz())
	}
	c.lastScore = f.Score
	c.lastAlive = f.Alive
}

func countEliminations(f *game.Frame) int {
	n := 0
	for _, ev := range f.Events {
		if ev.Kind == game.EventCollision || ev.Kind == game.EventOutOfBounds {
			n++
		}
	}
	return n
}

func (c *Cues) play(s beep.Streamer) {
	if !c.initialized || s == nil {
		return
	}
	// The speaker goroutine streams the mixer
	lockSpeaker()
	c.mixer.Add(s)
	unlockSpeaker()
}

// chirp is two rising sine notes.
func (c *Cues) chirp() beep.Streamer {
	lo, err := generators.SineTone(sampleRate, 880)
	if err != nil {
		return nil
	}
	hi, err := generators.SineTone(sampleRate, 1320)
	if err != nil {
		return nil
	}
	n := sampleRate.N(chirpNote)
	return c.gain(beep.Seq(beep.Take(n, lo), beep.Take(n, hi)))
}

// buzz is a short low tone with harmonics.
func (c *Cues) buzz() beep.Streamer {
	return c.gain(beep.Take(sampleRate.N(buzzTime), NewBuzzGenerator(sampleRate, 110)))
}

func (c *Cues) gain(s beep.Streamer) beep.Streamer {
	return &effects.Gain{Streamer: s, Gain: c.volume - 1}
}

// Pending returns the number of cues still playing.
func (c *Cues) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return c.mixer.Len()
	}
	lockSpeaker()
	defer unlockSpeaker()
	return c.mixer.Len()
}

// Close stops all cues.
func (c *Cues) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return
	}
	speaker.Clear()
	lockSpeaker()
	c.mixer.Clear()
	unlockSpeaker()
	speaker.Close()
	c.initialized = false
}

// BuzzGenerator generates a low-pitch buzz that fades in over 20ms.
type BuzzGenerator struct {
	sr   beep.SampleRate
	freq float64
	pos  int
}

// NewBuzzGenerator creates a buzz sound generator.
func NewBuzzGenerator(sr beep.SampleRate, freq float64) *BuzzGenerator {
	return &BuzzGenerator{sr: sr, freq: freq}
}

func (g *BuzzGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)

		sample := 0.3 * math.Sin(2*math.Pi*g.freq*t)
		sample += 0.15 * math.Sin(2*math.Pi*g.freq*2*t)
		sample += 0.075 * math.Sin(2*math.Pi*g.freq*3*t)

		envelope := math.Min(t/0.02, 1.0)
		sample *= envelope

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *BuzzGenerator) Err() error {
	return nil
}
