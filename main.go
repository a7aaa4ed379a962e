package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/flappy/assets"
	"github.com/pthm-cable/flappy/audio"
	"github.com/pthm-cable/flappy/config"
	"github.com/pthm-cable/flappy/game"
	"github.com/pthm-cable/flappy/neural"
	"github.com/pthm-cable/flappy/renderer"
	"github.com/pthm-cable/flappy/systems"
	"github.com/pthm-cable/flappy/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics (same as -renderer none)")
	rendererName := flag.String("renderer", "raylib", "Renderer: raylib, terminal or none")
	generations := flag.Int("generations", 0, "Generations to train (0 = use config)")
	population := flag.Int("population", 0, "Population size (0 = use config)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	assetsDir := flag.String("assets", "", "Sprite directory (empty = draw boxes, collide with bounding boxes)")
	logFormat := flag.String("log-format", "json", "Log format: json or text")
	withAudio := flag.Bool("audio", false, "Play sound cues (overrides config)")
	logStats := flag.Bool("log-stats", false, "Output generation stats via slog")

	flag.Parse()

	if *headless {
		*rendererName = "none"
	}

	// Terminal output belongs to the grid; logs go to a file or nowhere
	var logOut io.Writer = os.Stdout
	if *rendererName == "terminal" {
		logOut = io.Discard
		if *outputDir != "" {
			if err := os.MkdirAll(*outputDir, 0755); err == nil {
				if f, err := os.Create(filepath.Join(*outputDir, "run.log")); err == nil {
					defer f.Close()
					logOut = f
				}
			}
		}
	}
	var handler slog.Handler = slog.NewJSONHandler(logOut, nil)
	if *logFormat == "text" {
		handler = slog.NewTextHandler(logOut, nil)
	}
	slog.SetDefault(slog.New(handler))

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *population > 0 {
		cfg.Training.Population = *population
	}
	if *generations > 0 {
		cfg.Training.Generations = *generations
	}
	if *withAudio {
		cfg.Audio.Enabled = true
	}

	if err := run(cfg, *rendererName, *seed, *outputDir, *assetsDir, *logStats); err != nil {
		slog.Error("training failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, rendererName string, seed int64, outputDir, assetsDir string, logStats bool) error {
	// Set up seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	bundle, err := assets.Load(assetsDir, cfg)
	if err != nil {
		return err
	}
	settings := game.NewSettings(cfg, bundle.Shapes())

	pop, err := neural.NewPopulation(neural.ConfigFromSettings(cfg), cfg.Policy.Threshold, rng)
	if err != nil {
		return err
	}

	var renderers game.Renderers
	switch rendererName {
	case "raylib":
		effects := systems.NewEffects(rand.New(rand.NewSource(seed + 1)))
		window := renderer.NewWindow(cfg, bundle, effects, cancel)
		defer window.Close()
		window.SetPopulation(pop)
		renderers = append(renderers, window)
	case "terminal":
		screen, err := tcell.NewScreen()
		if err != nil {
			return err
		}
		if err := screen.Init(); err != nil {
			return err
		}
		term := renderer.NewTerminal(screen, settings, float64(cfg.Screen.Height), cfg.Screen.TargetFPS, cancel)
		defer term.Close()
		renderers = append(renderers, term)
	case "none":
	default:
		return errors.New("unknown renderer " + rendererName)
	}

	if cfg.Audio.Enabled && len(renderers) > 0 {
		cues := audio.NewCues(cfg.Audio.Volume)
		if err := cues.Initialize(); err != nil {
			slog.Warn("audio disabled", "error", err)
		} else {
			defer cues.Close()
			renderers = append(renderers, cues)
		}
	}

	var r game.Renderer
	switch len(renderers) {
	case 0:
	case 1:
		r = renderers[0]
	default:
		r = renderers
	}
	trainer := game.NewTrainer(settings, rng, r)

	output, err := telemetry.NewOutputManager(outputDir)
	if err != nil {
		return err
	}
	defer output.Close()
	if cfg.Telemetry.WriteConfig {
		if err := output.WriteConfig(cfg); err != nil {
			slog.Error("failed to write config", "error", err)
		}
	}
	if !cfg.Telemetry.WriteCSV {
		output = nil
	}

	runID := telemetry.NewRunID()
	pop.AddReporter(game.NewTelemetryReporter(runID, trainer, output, logStats))

	slog.Info("starting training",
		"run_id", runID,
		"seed", seed,
		"renderer", rendererName,
		"population", cfg.Training.Population,
		"generations", cfg.Training.Generations,
		"assets", bundle.Dir,
	)

	best, err := pop.Run(ctx, trainer.Evaluate, cfg.Training.Generations)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if err != nil {
		slog.Info("training stopped", "generation", pop.Generation())
	}

	game.LogChampion(best, pop.Generation())
	return nil
}
