// Package config provides configuration loading and access for the
// simulation: embedded defaults overridable by an optional YAML file,
// exposed through a process-global singleton the way the rest of the
// module expects.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tccd-sim/collider/particle"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds every simulation parameter that can be set from the CLI
// or a config file.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Particles ParticlesConfig `yaml:"particles"`

	// Derived values computed after loading.
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display and frame-rate settings.
type ScreenConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	TargetFPS  int  `yaml:"target_fps"`
	Fullscreen bool `yaml:"fullscreen"`
}

// PhysicsConfig holds simulation time-stepping and broadphase parameters.
type PhysicsConfig struct {
	DT           float64 `yaml:"dt"`
	GridCellSize float64 `yaml:"grid_cell_size"`
}

// ParticlesConfig holds particle population and randomization parameters.
type ParticlesConfig struct {
	Count       int     `yaml:"count"`
	MinRadius   float64 `yaml:"min_radius"`
	MaxRadius   float64 `yaml:"max_radius"`
	MaxVelocity float64 `yaml:"max_velocity"`
	Seed        int64   `yaml:"seed"`
	HasSeed     bool    `yaml:"-"`
}

// DerivedConfig holds values computed once after loading so hot code
// doesn't repeat float64-to-float32 conversions or extent arithmetic.
type DerivedConfig struct {
	DT32           float32
	GridCellSize32 float32
	Bounds         particle.Bounds
}

var global *Config

// Init loads configuration from path, or uses embedded defaults if path
// is empty. Must be called before Cfg.
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

// Load loads configuration from a YAML file, merging with embedded
// defaults. If path is empty, only the embedded defaults are used.
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
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()
	return cfg, nil
}

// WriteYAML marshals c and writes it to path, for runs that want to
// archive the exact configuration a trace was produced under.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Physics.DT)
	c.Derived.GridCellSize32 = float32(c.Physics.GridCellSize)
	c.Derived.Bounds = particle.Bounds{
		Width:  float32(c.Screen.Width),
		Height: float32(c.Screen.Height),
	}
}
