// Package config provides configuration loading and access for the pets.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"image/color"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all configuration parameters.
type Config struct {
	Tick        TickConfig        `yaml:"tick"`
	Sprite      SpriteConfig      `yaml:"sprite"`
	Physics     PhysicsConfig     `yaml:"physics"`
	Evolution   EvolutionConfig   `yaml:"evolution"`
	Spawn       SpawnConfig       `yaml:"spawn"`
	Pets        []PetConfig       `yaml:"pets"`
	Screens     []ScreenConfig    `yaml:"screens"`
	Progression ProgressionConfig `yaml:"progression"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
	Audio       AudioConfig       `yaml:"audio"`
	Parallel    ParallelConfig    `yaml:"parallel"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// TickConfig holds tick driver settings.
type TickConfig struct {
	PeriodMS   int `yaml:"period_ms"`
	MaxCatchUp int `yaml:"max_catch_up"` // Ticks per frame cap in windowed mode
}

// SpriteConfig holds sprite geometry and asset settings.
type SpriteConfig struct {
	Width        int    `yaml:"width"`
	Height       int    `yaml:"height"`
	GroundOffset int    `yaml:"ground_offset"`
	AssetDir     string `yaml:"asset_dir"`
	Tint         []int  `yaml:"tint"` // RGBA overlay used while evolving
}

// PhysicsConfig holds movement parameters.
type PhysicsConfig struct {
	TerminalVelocity int     `yaml:"terminal_velocity"`
	WalkSpeed        int     `yaml:"walk_speed"`
	BobAmplitude     float64 `yaml:"bob_amplitude"`
	BobFrequency     float64 `yaml:"bob_frequency"`
}

// EvolutionConfig holds evolution sequencer parameters.
type EvolutionConfig struct {
	Ticks      int   `yaml:"ticks"`
	Thresholds []int `yaml:"thresholds"` // Thresholds[i] is the level needed to leave stage i
}

// SpawnConfig bounds the random initial position of a pet.
type SpawnConfig struct {
	MinX int `yaml:"min_x"`
	MaxX int `yaml:"max_x"`
	MinY int `yaml:"min_y"`
	MaxY int `yaml:"max_y"`
}

// PetConfig describes one pet created at startup.
type PetConfig struct {
	Name  string `yaml:"name"`
	Level int    `yaml:"level"`
}

// ScreenConfig is one screen rectangle of the static topology.
type ScreenConfig struct {
	Left   int `yaml:"left"`
	Top    int `yaml:"top"`
	Right  int `yaml:"right"`
	Bottom int `yaml:"bottom"`
}

// ProgressionConfig selects where the level signal comes from.
type ProgressionConfig struct {
	Mode        string  `yaml:"mode"` // static | uptime | work
	IntervalSec float64 `yaml:"interval_sec"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"`
	PerfWindow  int     `yaml:"perf_window"`
}

// AudioConfig holds the evolution chime settings.
type AudioConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Frequency float64 `yaml:"frequency"`
}

// ParallelConfig holds worker pool settings.
type ParallelConfig struct {
	Threshold int `yaml:"threshold"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	TickPeriod     time.Duration
	TicksPerSecond float64
	Tint           color.NRGBA
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

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := Overlay(cfg, data); err != nil {
			return nil, err
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	cfg.computeDerived()

	return cfg, nil
}

// Overlay unmarshals data into cfg. Only keys present in data are overwritten,
// except lists, which are replaced as a whole.
func Overlay(cfg *Config, data []byte) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

func (c *Config) validate() error {
	var errs []error
	if c.Tick.PeriodMS <= 0 {
		errs = append(errs, fmt.Errorf("tick.period_ms must be positive, got %d", c.Tick.PeriodMS))
	}
	if c.Sprite.Width <= 0 || c.Sprite.Height <= 0 {
		errs = append(errs, fmt.Errorf("sprite size must be positive, got %dx%d", c.Sprite.Width, c.Sprite.Height))
	}
	if len(c.Sprite.Tint) != 0 && len(c.Sprite.Tint) != 4 {
		errs = append(errs, fmt.Errorf("sprite.tint needs 4 components, got %d", len(c.Sprite.Tint)))
	}
	if c.Physics.WalkSpeed <= 0 {
		errs = append(errs, fmt.Errorf("physics.walk_speed must be positive, got %d", c.Physics.WalkSpeed))
	}
	if c.Physics.TerminalVelocity <= 0 {
		errs = append(errs, fmt.Errorf("physics.terminal_velocity must be positive, got %d", c.Physics.TerminalVelocity))
	}
	if c.Evolution.Ticks <= 0 {
		errs = append(errs, fmt.Errorf("evolution.ticks must be positive, got %d", c.Evolution.Ticks))
	}
	for i := 1; i < len(c.Evolution.Thresholds); i++ {
		if c.Evolution.Thresholds[i] < c.Evolution.Thresholds[i-1] {
			errs = append(errs, fmt.Errorf("evolution.thresholds must be ascending: %v", c.Evolution.Thresholds))
			break
		}
	}
	if c.Spawn.MaxX < c.Spawn.MinX || c.Spawn.MaxY < c.Spawn.MinY {
		errs = append(errs, errors.New("spawn range is inverted"))
	}
	for i, s := range c.Screens {
		if s.Right <= s.Left || s.Bottom <= s.Top {
			errs = append(errs, fmt.Errorf("screens[%d] is empty", i))
		}
	}
	switch c.Progression.Mode {
	case "", "static", "uptime", "work":
	default:
		errs = append(errs, fmt.Errorf("unknown progression.mode %q", c.Progression.Mode))
	}
	return errors.Join(errs...)
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.TickPeriod = time.Duration(c.Tick.PeriodMS) * time.Millisecond
	c.Derived.TicksPerSecond = float64(time.Second) / float64(c.Derived.TickPeriod)

	c.Derived.Tint = color.NRGBA{R: 255, G: 255, B: 255, A: 200}
	if len(c.Sprite.Tint) == 4 {
		c.Derived.Tint = color.NRGBA{
			R: clampByte(c.Sprite.Tint[0]),
			G: clampByte(c.Sprite.Tint[1]),
			B: clampByte(c.Sprite.Tint[2]),
			A: clampByte(c.Sprite.Tint[3]),
		}
	}

	if c.Tick.MaxCatchUp < 1 {
		c.Tick.MaxCatchUp = 1
	}
	if c.Parallel.Threshold < 1 {
		c.Parallel.Threshold = 64
	}
	if c.Progression.Mode == "" {
		c.Progression.Mode = "static"
	}
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
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
