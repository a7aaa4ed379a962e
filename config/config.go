// Package config provides configuration loading and access for the trainer.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is returned (wrapped) when a loaded configuration fails validation.
var ErrInvalid = errors.New("invalid config")

// Config holds all game and training configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Bird      BirdConfig      `yaml:"bird"`
	Pipe      PipeConfig      `yaml:"pipe"`
	Ground    GroundConfig    `yaml:"ground"`
	Fitness   FitnessConfig   `yaml:"fitness"`
	Policy    PolicyConfig    `yaml:"policy"`
	Training  TrainingConfig  `yaml:"training"`
	NEAT      NEATConfig      `yaml:"neat"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Audio     AudioConfig     `yaml:"audio"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	TargetFPS int    `yaml:"target_fps"`
	Title     string `yaml:"title"`
}

// PhysicsConfig holds per-tick motion parameters shared by all actors.
type PhysicsConfig struct {
	Speed           float64 `yaml:"speed"`            // Horizontal scroll per tick (pipes and ground)
	ImpulseVelocity float64 `yaml:"impulse_velocity"` // Vertical velocity set by a flap (negative = up)
	GroundY         float64 `yaml:"ground_y"`         // Birds touching this line are eliminated
}

// BirdConfig holds the spawn position and sprite size of every bird.
type BirdConfig struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
}

// PipeConfig holds obstacle geometry.
type PipeConfig struct {
	SpawnX      float64 `yaml:"spawn_x"`
	Gap         float64 `yaml:"gap"`
	MinTop      int     `yaml:"min_top"` // Inclusive lower bound of the gap's top extent
	MaxTop      int     `yaml:"max_top"` // Exclusive upper bound of the gap's top extent
	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
	SpawnOnPass bool    `yaml:"spawn_on_pass"` // Append a new pipe whenever one is passed
}

// GroundConfig holds the scrolling ground strip size.
type GroundConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// FitnessConfig holds reward shaping parameters.
type FitnessConfig struct {
	TickReward float64 `yaml:"tick_reward"` // Added to every live genome each tick
	PassBonus  float64 `yaml:"pass_bonus"`  // Added to every survivor when a pipe is passed
}

// PolicyConfig holds decision parameters for the network adapter.
type PolicyConfig struct {
	Threshold float64 `yaml:"threshold"` // Network output above this = flap
}

// TrainingConfig holds outer-loop parameters.
type TrainingConfig struct {
	Population       int     `yaml:"population"`
	Generations      int     `yaml:"generations"`
	FitnessThreshold float64 `yaml:"fitness_threshold"` // Stop early when best fitness reaches this (0 = never)
	MaxTicks         int     `yaml:"max_ticks"`         // Cap per episode (0 = until all birds are gone)
}

// NEATConfig holds mutation and speciation parameters.
type NEATConfig struct {
	WeightMutPower         float64 `yaml:"weight_mut_power"`
	MutateLinkWeightsProb  float64 `yaml:"mutate_link_weights_prob"`
	MutateAddNodeProb      float64 `yaml:"mutate_add_node_prob"`
	MutateAddLinkProb      float64 `yaml:"mutate_add_link_prob"`
	MutateToggleEnableProb float64 `yaml:"mutate_toggle_enable_prob"`
	MutateOnlyProb         float64 `yaml:"mutate_only_prob"`
	MateOnlyProb           float64 `yaml:"mate_only_prob"`
	CompatThreshold        float64 `yaml:"compat_threshold"`
	DisjointCoeff          float64 `yaml:"disjoint_coeff"`
	ExcessCoeff            float64 `yaml:"excess_coeff"`
	MutdiffCoeff           float64 `yaml:"mutdiff_coeff"`
	DropOffAge             int     `yaml:"drop_off_age"`
	SurvivalThresh         float64 `yaml:"survival_thresh"`
	Elitism                int     `yaml:"elitism"`
	InitialConnectionProb  float64 `yaml:"initial_connection_prob"`
}

// TelemetryConfig holds output parameters.
type TelemetryConfig struct {
	WriteCSV    bool `yaml:"write_csv"`
	WriteConfig bool `yaml:"write_config"`
}

// AudioConfig holds sound cue parameters.
type AudioConfig struct {
	Enabled bool    `yaml:"enabled"`
	Volume  float64 `yaml:"volume"` // Linear gain applied to cue tones
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ScreenW32 float32 // Screen.Width as float32
	GroundY32 float32 // Physics.GroundY as float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are broken: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.computeDerived()

	return cfg, nil
}

// Validate checks the values that would otherwise break the simulation.
func (c *Config) Validate() error {
	switch {
	case c.Screen.Width <= 0 || c.Screen.Height <= 0:
		return fmt.Errorf("%w: screen size must be positive", ErrInvalid)
	case c.Bird.Width <= 0 || c.Bird.Height <= 0:
		return fmt.Errorf("%w: bird size must be positive", ErrInvalid)
	case c.Pipe.Width <= 0 || c.Pipe.Height <= 0:
		return fmt.Errorf("%w: pipe size must be positive", ErrInvalid)
	case c.Pipe.Gap <= 0:
		return fmt.Errorf("%w: pipe gap must be positive", ErrInvalid)
	case c.Pipe.MinTop >= c.Pipe.MaxTop:
		return fmt.Errorf("%w: pipe min_top (%d) must be below max_top (%d)", ErrInvalid, c.Pipe.MinTop, c.Pipe.MaxTop)
	case c.Ground.Width <= 0:
		return fmt.Errorf("%w: ground width must be positive", ErrInvalid)
	case c.Training.Population < 1:
		return fmt.Errorf("%w: population must be at least 1", ErrInvalid)
	case c.Training.Generations < 0:
		return fmt.Errorf("%w: generations must not be negative", ErrInvalid)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.GroundY32 = float32(c.Physics.GroundY)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
