package physics

import "math"

const (
	SpeedOfLight  = 299792458.0 // m/s
	Gravitational = 6.67430e-11 // m^3 kg^-1 s^-2
)

// Constants is the fixed scalar bundle an Engine is built with.
type Constants struct {
	C float64
	G float64
}

func DefaultConstants() Constants {
	return Constants{C: SpeedOfLight, G: Gravitational}
}

func (k Constants) Validate() error {
	if !(k.C > 0) || math.IsInf(k.C, 0) {
		return configErr("c", "must be positive and finite, got %g", k.C)
	}
	if !(k.G > 0) || math.IsInf(k.G, 0) {
		return configErr("g", "must be positive and finite, got %g", k.G)
	}
	return nil
}
