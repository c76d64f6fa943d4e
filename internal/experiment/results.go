package experiment

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/relsim/internal/physics"
)

// Outcome is one body's value. A failed body keeps its slot with Value set
// to NaN and Err holding the *physics.DomainError.
type Outcome struct {
	Value float64
	Err   error
}

func (o Outcome) OK() bool { return o.Err == nil }

// Results is index-aligned with the scene the values were computed from.
type Results []Outcome

func (rs Results) Values() []float64 {
	vals := make([]float64, len(rs))
	for i, o := range rs {
		vals[i] = o.Value
	}
	return vals
}

// Errors joins every per-body failure, or returns nil when all succeeded.
func (rs Results) Errors() error {
	var errs []error
	for _, o := range rs {
		if o.Err != nil {
			errs = append(errs, o.Err)
		}
	}
	return errors.Join(errs...)
}

// Valid counts the bodies that produced a value.
func (rs Results) Valid() int {
	n := 0
	for _, o := range rs {
		if o.OK() {
			n++
		}
	}
	return n
}

// Frame is what a rendering sink consumes: a point cloud and one scalar per point.
type Frame struct {
	Observable physics.Observable
	Body       int
	Points     physics.PointCloud
	Field      []float64
}

// Range returns the min and max over the finite field values.
func (f Frame) Range() (lo, hi float64, ok bool) {
	return finiteRange(f.Field)
}

func finiteRange(vals []float64) (lo, hi float64, ok bool) {
	finite := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return 0, 0, false
	}
	return floats.Min(finite), floats.Max(finite), true
}
