package physics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Body is a massive object placed in a scene. Bodies are values and are
// not mutated once a scene is assembled.
type Body struct {
	Name     string
	Mass     float64 // kg
	Position r3.Vec  // m, relative to the observer at the origin
	Velocity r3.Vec  // m/s
	MinBound r3.Vec
	MaxBound r3.Vec
}

// Radius is the distance from the origin.
func (b Body) Radius() float64 { return r3.Norm(b.Position) }

// Speed is the magnitude of the velocity vector; scalar formulas use it.
func (b Body) Speed() float64 { return r3.Norm(b.Velocity) }

func (b Body) Validate() error {
	if err := b.validateState(); err != nil {
		return err
	}
	return validateBounds(b.MinBound, b.MaxBound)
}

// validateState checks the fields the formulas read. Bounds only matter
// for sampling.
func (b Body) validateState() error {
	if !(b.Mass > 0) || math.IsInf(b.Mass, 0) {
		return configErr("mass", "must be positive and finite, got %g", b.Mass)
	}
	if !finiteVec(b.Position) {
		return configErr("position", "non-finite component in %v", b.Position)
	}
	if !finiteVec(b.Velocity) {
		return configErr("velocity", "non-finite component in %v", b.Velocity)
	}
	return nil
}

// Scene is an ordered collection of bodies. Result slices produced from a
// scene are index-aligned with Bodies.
type Scene struct {
	Bodies []Body
}

func NewScene(bodies ...Body) Scene {
	return Scene{Bodies: bodies}
}

func (s Scene) Len() int { return len(s.Bodies) }

func (s Scene) Validate() error {
	if len(s.Bodies) == 0 {
		return configErr("bodies", "scene is empty")
	}
	for i, b := range s.Bodies {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("body %d (%s): %w", i, b.Name, err)
		}
	}
	return nil
}

// Nearest returns the index of the body closest to p, or -1 for an empty scene.
func (s Scene) Nearest(p r3.Vec) int {
	best, bestD := -1, math.Inf(1)
	for i, b := range s.Bodies {
		if d := r3.Norm2(r3.Sub(p, b.Position)); d < bestD {
			best, bestD = i, d
		}
	}
	return best
}

func validateBounds(lo, hi r3.Vec) error {
	if !finiteVec(lo) || !finiteVec(hi) {
		return configErr("bounds", "non-finite bound %v..%v", lo, hi)
	}
	if lo.X > hi.X || lo.Y > hi.Y || lo.Z > hi.Z {
		return configErr("bounds", "min %v exceeds max %v", lo, hi)
	}
	return nil
}

func finiteVec(v r3.Vec) bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
