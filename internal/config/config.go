package config

import (
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/relsim/internal/experiment"
	"github.com/san-kum/relsim/internal/physics"
)

const (
	DefaultBound      = 1e9
	DefaultNumPoints  = 5000
	DefaultObservable = string(physics.PulseDuration)
)

type Config struct {
	Constants  ConstantsConfig  `yaml:"constants"`
	Engine     EngineConfig     `yaml:"engine"`
	Experiment ExperimentConfig `yaml:"experiment"`
	Bodies     []BodyConfig     `yaml:"bodies"`
}

type ConstantsConfig struct {
	C float64 `yaml:"c"`
	G float64 `yaml:"g"`
}

type EngineConfig struct {
	LaserRadius float64 `yaml:"laser_radius"`
	Doppler     string  `yaml:"doppler"`
}

type ExperimentConfig struct {
	Observable string `yaml:"observable"`
	Body       int    `yaml:"body"`
	NumPoints  int    `yaml:"num_points"`
	Seed       int64  `yaml:"seed"`
	Workers    int    `yaml:"workers,omitempty"`
}

// BodyConfig holds vectors as three-element lists. Bounds default to a
// cube of half-width DefaultBound around the origin when both are omitted.
type BodyConfig struct {
	Name     string    `yaml:"name"`
	Mass     float64   `yaml:"mass"`
	Position []float64 `yaml:"position"`
	Velocity []float64 `yaml:"velocity,omitempty"`
	MinBound []float64 `yaml:"min_bound,omitempty"`
	MaxBound []float64 `yaml:"max_bound,omitempty"`
}

func DefaultConfig() *Config {
	return GetPreset("trl")
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks every setting without evaluating any formula.
func (c *Config) Validate() error {
	if _, err := c.NewEngine(); err != nil {
		return err
	}
	_, err := c.ExperimentConfig()
	return err
}

func (c *Config) PhysicalConstants() physics.Constants {
	return physics.Constants{C: c.Constants.C, G: c.Constants.G}
}

func (c *Config) EngineOptions() ([]physics.Option, error) {
	d, err := physics.ParseDoppler(c.Engine.Doppler)
	if err != nil {
		return nil, err
	}
	return []physics.Option{
		physics.WithLaserRadius(c.Engine.LaserRadius),
		physics.WithDoppler(d),
	}, nil
}

func (c *Config) NewEngine() (*physics.Engine, error) {
	opts, err := c.EngineOptions()
	if err != nil {
		return nil, err
	}
	return physics.NewEngine(c.PhysicalConstants(), opts...)
}

func (c *Config) Scene() (physics.Scene, error) {
	bodies := make([]physics.Body, len(c.Bodies))
	for i, bc := range c.Bodies {
		b, err := bc.Body()
		if err != nil {
			return physics.Scene{}, fmt.Errorf("body %d (%s): %w", i, bc.Name, err)
		}
		bodies[i] = b
	}
	scene := physics.NewScene(bodies...)
	return scene, scene.Validate()
}

func (c *Config) Observable() (physics.Observable, error) {
	return physics.ParseObservable(c.Experiment.Observable)
}

func (c *Config) ExperimentConfig() (experiment.Config, error) {
	scene, err := c.Scene()
	if err != nil {
		return experiment.Config{}, err
	}
	obs, err := c.Observable()
	if err != nil {
		return experiment.Config{}, err
	}
	if c.Experiment.Body < 0 || c.Experiment.Body >= scene.Len() {
		return experiment.Config{}, &physics.ConfigError{
			Field:  "experiment.body",
			Reason: fmt.Sprintf("index %d outside scene of %d bodies", c.Experiment.Body, scene.Len()),
		}
	}
	if c.Experiment.NumPoints < 0 {
		return experiment.Config{}, &physics.ConfigError{Field: "experiment.num_points", Reason: "must not be negative"}
	}
	return experiment.Config{
		Scene:      scene,
		Observable: obs,
		Body:       c.Experiment.Body,
		NumPoints:  c.Experiment.NumPoints,
		Seed:       c.Experiment.Seed,
		Workers:    c.Experiment.Workers,
	}, nil
}

func (bc BodyConfig) Body() (physics.Body, error) {
	pos, err := vec("position", bc.Position, true)
	if err != nil {
		return physics.Body{}, err
	}
	vel, err := vec("velocity", bc.Velocity, false)
	if err != nil {
		return physics.Body{}, err
	}

	lo := r3.Vec{X: -DefaultBound, Y: -DefaultBound, Z: -DefaultBound}
	hi := r3.Vec{X: DefaultBound, Y: DefaultBound, Z: DefaultBound}
	if bc.MinBound != nil || bc.MaxBound != nil {
		if lo, err = vec("min_bound", bc.MinBound, true); err != nil {
			return physics.Body{}, err
		}
		if hi, err = vec("max_bound", bc.MaxBound, true); err != nil {
			return physics.Body{}, err
		}
	}

	return physics.Body{
		Name:     bc.Name,
		Mass:     bc.Mass,
		Position: pos,
		Velocity: vel,
		MinBound: lo,
		MaxBound: hi,
	}, nil
}

func vec(field string, v []float64, required bool) (r3.Vec, error) {
	if v == nil && !required {
		return r3.Vec{}, nil
	}
	if len(v) != 3 {
		return r3.Vec{}, &physics.ConfigError{Field: field, Reason: fmt.Sprintf("want 3 components, got %d", len(v))}
	}
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}, nil
}

func list(v r3.Vec) []float64 {
	return []float64{v.X, v.Y, v.Z}
}
