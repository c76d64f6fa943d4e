package config

import (
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/relsim/internal/physics"
)

// Presets build fresh configs so callers may mutate the result.
var Presets = map[string]func() *Config{
	// Three black holes of the circulating-laser experiment. The first sits
	// at the origin and the other two inside their own horizons, so every
	// pulse duration is a domain failure; frame dragging and time dilation
	// still produce values for the off-origin bodies.
	"trl": func() *Config {
		return &Config{
			Constants:  defaultConstants(),
			Engine:     EngineConfig{LaserRadius: physics.DefaultLaserRadius, Doppler: string(physics.DopplerStandard)},
			Experiment: ExperimentConfig{Observable: DefaultObservable, NumPoints: DefaultNumPoints},
			Bodies: []BodyConfig{
				{Name: "black_hole1", Mass: 1e36, Position: []float64{0, 0, 0}},
				{Name: "black_hole2", Mass: 5e35, Position: []float64{1e8, 0, 0}, Velocity: []float64{0, 1e7, 0}},
				{Name: "black_hole3", Mass: 2e35, Position: []float64{-1e8, 0, 0}, Velocity: []float64{0, -1e7, 0}},
			},
		}
	},
	// Seen from an observer on Earth: the Sun at 1 AU, Jupiter at
	// opposition and Sagittarius A* at the galactic center.
	"solar": func() *Config {
		return &Config{
			Constants:  defaultConstants(),
			Engine:     EngineConfig{LaserRadius: 6.371e6, Doppler: string(physics.DopplerStandard)},
			Experiment: ExperimentConfig{Observable: string(physics.TimeDilation), NumPoints: 4000, Seed: 1},
			Bodies: []BodyConfig{
				around("sun", 1.989e30, r3.Vec{X: 1.496e11}, r3.Vec{Y: 2.978e4}, 5e10),
				around("jupiter", 1.898e27, r3.Vec{X: 6.289e11}, r3.Vec{Y: 1.307e4}, 5e10),
				around("sgr_a", 8.26e36, r3.Vec{X: 2.47e20}, r3.Vec{Y: 2.2e5}, 1e19),
			},
		}
	},
	"binary": func() *Config {
		return &Config{
			Constants:  defaultConstants(),
			Engine:     EngineConfig{LaserRadius: physics.DefaultLaserRadius, Doppler: string(physics.DopplerStandard)},
			Experiment: ExperimentConfig{Observable: string(physics.FrameDragging), NumPoints: 3000, Seed: 7},
			Bodies: []BodyConfig{
				around("primary", 3e31, r3.Vec{X: 1e9}, r3.Vec{Y: 1e6}, 2e9),
				around("secondary", 2e31, r3.Vec{X: -1e9}, r3.Vec{Y: -1.5e6}, 2e9),
			},
		}
	},
}

func defaultConstants() ConstantsConfig {
	k := physics.DefaultConstants()
	return ConstantsConfig{C: k.C, G: k.G}
}

// around centers a sampling cube of the given half-width on the body.
func around(name string, mass float64, pos, vel r3.Vec, half float64) BodyConfig {
	d := r3.Vec{X: half, Y: half, Z: half}
	return BodyConfig{
		Name:     name,
		Mass:     mass,
		Position: list(pos),
		Velocity: list(vel),
		MinBound: list(r3.Sub(pos, d)),
		MaxBound: list(r3.Add(pos, d)),
	}
}

func GetPreset(name string) *Config {
	fn, ok := Presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
