// Package sweep evaluates an observable over a grid of body parameters.
package sweep

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/relsim/internal/physics"
)

// Parameter names accepted by Param.
const (
	Mass     = "mass"
	Distance = "distance"
	Speed    = "speed"
)

type Param struct {
	Name   string
	Values []float64
}

// Point is one grid cell. Params holds the value of every swept parameter.
type Point struct {
	Params map[string]float64
	Value  float64
	Err    error
}

func (p Point) OK() bool { return p.Err == nil }

type Grid struct {
	params []Param
}

func NewGrid(params ...Param) *Grid {
	return &Grid{params: params}
}

func (g *Grid) Params() []Param { return g.params }

// Size is the number of cells in the cartesian product.
func (g *Grid) Size() int {
	if len(g.params) == 0 {
		return 0
	}
	n := 1
	for _, p := range g.params {
		n *= len(p.Values)
	}
	return n
}

func (g *Grid) Validate() error {
	if len(g.params) == 0 {
		return &physics.ConfigError{Field: "sweep", Reason: "no parameters"}
	}
	seen := make(map[string]bool, len(g.params))
	for _, p := range g.params {
		if !known(p.Name) {
			return &physics.ConfigError{Field: "sweep." + p.Name, Reason: "unknown parameter (mass, distance, speed)"}
		}
		if seen[p.Name] {
			return &physics.ConfigError{Field: "sweep." + p.Name, Reason: "listed twice"}
		}
		seen[p.Name] = true
		if len(p.Values) == 0 {
			return &physics.ConfigError{Field: "sweep." + p.Name, Reason: "no values"}
		}
	}
	return nil
}

// Run evaluates obs for base with every combination of parameter values.
// Points are returned in row-major order, first parameter outermost.
// A cell that fails carries NaN and its error; it does not stop the sweep.
func (g *Grid) Run(ctx context.Context, eng *physics.Engine, base physics.Body, obs physics.Observable) ([]Point, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	points := make([]Point, 0, g.Size())
	if err := g.runRecursive(ctx, 0, make(map[string]float64, len(g.params)), eng, base, obs, &points); err != nil {
		return nil, err
	}
	return points, nil
}

func (g *Grid) runRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	eng *physics.Engine,
	base physics.Body,
	obs physics.Observable,
	points *[]Point,
) error {
	if depth == len(g.params) {
		if err := ctx.Err(); err != nil {
			return err
		}
		params := make(map[string]float64, len(current))
		for k, v := range current {
			params[k] = v
		}
		pt := Point{Params: params, Value: math.NaN()}
		v, err := eng.Evaluate(obs, Apply(base, params))
		if err != nil {
			pt.Err = err
		} else {
			pt.Value = v
		}
		*points = append(*points, pt)
		return nil
	}

	p := g.params[depth]
	for _, val := range p.Values {
		current[p.Name] = val
		if err := g.runRecursive(ctx, depth+1, current, eng, base, obs, points); err != nil {
			return err
		}
	}
	delete(current, p.Name)
	return nil
}

// Apply returns a copy of b with the given parameters substituted.
// Distance and speed rescale the existing direction, falling back to +x
// and +y for zero vectors.
func Apply(b physics.Body, params map[string]float64) physics.Body {
	if m, ok := params[Mass]; ok {
		b.Mass = m
	}
	if d, ok := params[Distance]; ok {
		b.Position = rescale(b.Position, r3.Vec{X: 1}, d)
	}
	if s, ok := params[Speed]; ok {
		b.Velocity = rescale(b.Velocity, r3.Vec{Y: 1}, s)
	}
	return b
}

func rescale(v, fallback r3.Vec, norm float64) r3.Vec {
	if n := r3.Norm(v); n > 0 {
		return r3.Scale(norm/n, v)
	}
	return r3.Scale(norm, fallback)
}

// Best returns the point with the smallest finite value.
func Best(points []Point) (Point, bool) {
	var best Point
	found := false
	for _, p := range points {
		if !p.OK() || math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			continue
		}
		if !found || p.Value < best.Value {
			best, found = p, true
		}
	}
	return best, found
}

func Linear(lo, hi float64, n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

// Log spaces n values geometrically; lo and hi must be positive.
func Log(lo, hi float64, n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{lo}
	}
	return floats.LogSpan(make([]float64, n), lo, hi)
}

// ParseParam reads "name=lo:hi:n".
func ParseParam(s string, logScale bool) (Param, error) {
	name, rng, ok := strings.Cut(s, "=")
	name = strings.ToLower(strings.TrimSpace(name))
	if !ok || name == "" {
		return Param{}, &physics.ConfigError{Field: "sweep", Reason: fmt.Sprintf("expected name=lo:hi:n, got %q", s)}
	}
	if !known(name) {
		return Param{}, &physics.ConfigError{Field: "sweep." + name, Reason: "unknown parameter (mass, distance, speed)"}
	}
	parts := strings.Split(rng, ":")
	if len(parts) != 3 {
		return Param{}, &physics.ConfigError{Field: "sweep." + name, Reason: fmt.Sprintf("expected lo:hi:n, got %q", rng)}
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return Param{}, &physics.ConfigError{Field: "sweep." + name, Reason: "bad lower bound: " + err.Error()}
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return Param{}, &physics.ConfigError{Field: "sweep." + name, Reason: "bad upper bound: " + err.Error()}
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 1 {
		return Param{}, &physics.ConfigError{Field: "sweep." + name, Reason: fmt.Sprintf("point count must be a positive integer, got %q", parts[2])}
	}

	if logScale {
		if !(lo > 0 && hi > 0) {
			return Param{}, &physics.ConfigError{Field: "sweep." + name, Reason: "log scale needs positive bounds"}
		}
		return Param{Name: name, Values: Log(lo, hi, n)}, nil
	}
	return Param{Name: name, Values: Linear(lo, hi, n)}, nil
}

func known(name string) bool {
	switch name {
	case Mass, Distance, Speed:
		return true
	}
	return false
}
