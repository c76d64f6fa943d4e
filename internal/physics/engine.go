package physics

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// DopplerConvention picks how the scalar speed enters the Doppler factor.
type DopplerConvention string

const (
	// DopplerStandard uses beta = v/c; valid for 0 < v < c.
	DopplerStandard DopplerConvention = "standard"
	// DopplerVerbatim uses c/v in place of beta; valid for v > c only.
	DopplerVerbatim DopplerConvention = "verbatim"
)

func ParseDoppler(s string) (DopplerConvention, error) {
	switch d := DopplerConvention(s); d {
	case DopplerStandard, DopplerVerbatim:
		return d, nil
	case "":
		return DopplerStandard, nil
	}
	return "", configErr("doppler", "unknown convention %q", s)
}

const DefaultLaserRadius = 1e9 // m

type Option func(*Engine)

func WithLaserRadius(r float64) Option {
	return func(e *Engine) { e.laserRadius = r }
}

func WithDoppler(d DopplerConvention) Option {
	return func(e *Engine) { e.doppler = d }
}

type evalFunc func(e *Engine, b Body) (float64, error)

var evaluators = map[Observable]evalFunc{
	PulseDuration: func(e *Engine, b Body) (float64, error) {
		return e.AdjustedPulseDuration(b, e.laserRadius)
	},
	FrameDragging:   (*Engine).FrameDragging,
	TimeDilation:    (*Engine).TimeDilation,
	HorizonDilation: (*Engine).HorizonDilation,
	DopplerFactor:   (*Engine).DopplerFactor,
	SchwarzschildRadius: func(e *Engine, b Body) (float64, error) {
		return finite(SchwarzschildRadius, e.SchwarzschildRadius(b))
	},
}

// Engine evaluates closed-form weak-field observables for single bodies.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	k           Constants
	laserRadius float64
	doppler     DopplerConvention
}

func NewEngine(k Constants, opts ...Option) (*Engine, error) {
	if err := k.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{k: k, laserRadius: DefaultLaserRadius, doppler: DopplerStandard}
	for _, opt := range opts {
		opt(e)
	}
	if !(e.laserRadius > 0) || math.IsInf(e.laserRadius, 0) {
		return nil, configErr("laser_radius", "must be positive and finite, got %g", e.laserRadius)
	}
	if _, err := ParseDoppler(string(e.doppler)); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) Constants() Constants       { return e.k }
func (e *Engine) LaserRadius() float64       { return e.laserRadius }
func (e *Engine) Doppler() DopplerConvention { return e.doppler }

// Evaluate dispatches to the formula selected by obs. A body with a
// non-positive or non-finite mass, or non-finite vectors, is a ConfigError.
func (e *Engine) Evaluate(obs Observable, b Body) (float64, error) {
	fn, ok := evaluators[obs]
	if !ok {
		return math.NaN(), configErr("observable", "unknown observable %q", obs)
	}
	if err := b.validateState(); err != nil {
		return math.NaN(), err
	}
	return fn(e, b)
}

// SchwarzschildRadius returns 2Gm/c^2.
func (e *Engine) SchwarzschildRadius(b Body) float64 {
	return 2 * e.k.G * b.Mass / (e.k.C * e.k.C)
}

// HorizonDilation returns sqrt(1 - rs/r).
func (e *Engine) HorizonDilation(b Body) (float64, error) {
	r := b.Radius()
	if r == 0 {
		return math.NaN(), domainErr(HorizonDilation, "body at origin")
	}
	rs := e.SchwarzschildRadius(b)
	if rs >= r {
		return math.NaN(), domainErr(HorizonDilation, "schwarzschild radius %.6g m >= distance %.6g m", rs, r)
	}
	return finite(HorizonDilation, math.Sqrt(1-rs/r))
}

// DopplerFactor returns sqrt((1+x)/(1-x)) where x is v/c or c/v depending
// on the engine convention. Zero speed is always rejected.
func (e *Engine) DopplerFactor(b Body) (float64, error) {
	v := b.Speed()
	if v == 0 {
		return math.NaN(), domainErr(DopplerFactor, "zero speed")
	}
	var x float64
	switch e.doppler {
	case DopplerVerbatim:
		x = e.k.C / v
		if x >= 1 {
			return math.NaN(), domainErr(DopplerFactor, "speed %.6g m/s must exceed c under verbatim convention", v)
		}
	default:
		x = v / e.k.C
		if x >= 1 {
			return math.NaN(), domainErr(DopplerFactor, "speed %.6g m/s not below c", v)
		}
	}
	return finite(DopplerFactor, math.Sqrt((1+x)/(1-x)))
}

// AdjustedPulseDuration is laserRadius * dilation * doppler / c.
func (e *Engine) AdjustedPulseDuration(b Body, laserRadius float64) (float64, error) {
	if !(laserRadius > 0) || math.IsInf(laserRadius, 0) {
		return math.NaN(), configErr("laser_radius", "must be positive and finite, got %g", laserRadius)
	}
	dilation, err := e.HorizonDilation(b)
	if err != nil {
		return math.NaN(), retag(err, PulseDuration)
	}
	doppler, err := e.DopplerFactor(b)
	if err != nil {
		return math.NaN(), retag(err, PulseDuration)
	}
	d, err := finite(PulseDuration, laserRadius*dilation*doppler/e.k.C)
	if err == nil && d <= 0 {
		return math.NaN(), domainErr(PulseDuration, "non-positive duration %g", d)
	}
	return d, err
}

// FrameDragging returns 2G|r x v| / (c^2 |r|^3).
func (e *Engine) FrameDragging(b Body) (float64, error) {
	r := b.Radius()
	if r == 0 {
		return math.NaN(), domainErr(FrameDragging, "body at origin")
	}
	l := r3.Norm(r3.Cross(b.Position, b.Velocity))
	return finite(FrameDragging, 2*e.k.G*l/(e.k.C*e.k.C*r*r*r))
}

// TimeDilation returns sqrt(1 - 2*phi/c^2) with phi = -Gm/r. Since phi is
// negative the factor is always above one.
func (e *Engine) TimeDilation(b Body) (float64, error) {
	r := b.Radius()
	if r == 0 {
		return math.NaN(), domainErr(TimeDilation, "body at origin")
	}
	phi := -e.k.G * b.Mass / r
	return finite(TimeDilation, math.Sqrt(1-2*phi/(e.k.C*e.k.C)))
}

func finite(obs Observable, v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return math.NaN(), domainErr(obs, "non-finite result")
	}
	return v, nil
}

// retag reports a component failure under the composite observable.
func retag(err error, obs Observable) error {
	var de *DomainError
	if errors.As(err, &de) {
		return &DomainError{Body: de.Body, Observable: obs, Reason: string(de.Observable) + ": " + de.Reason}
	}
	return err
}
