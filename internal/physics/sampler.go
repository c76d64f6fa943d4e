package physics

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"
)

// PointCloud is an unordered set of sample coordinates. It carries no
// physical meaning; renderers use it as a substrate for coloring.
type PointCloud []r3.Vec

// Bounds returns the componentwise extent of the cloud. An empty cloud
// yields two zero vectors.
func (pc PointCloud) Bounds() (lo, hi r3.Vec) {
	if len(pc) == 0 {
		return
	}
	lo, hi = pc[0], pc[0]
	for _, p := range pc[1:] {
		lo = r3.Vec{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y), Z: math.Min(lo.Z, p.Z)}
		hi = r3.Vec{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y), Z: math.Max(hi.Z, p.Z)}
	}
	return lo, hi
}

// Sampler draws points uniformly inside axis-aligned boxes.
// A Sampler is not safe for concurrent use.
type Sampler struct {
	rng *rand.Rand
}

func NewSampler(src rand.Source) *Sampler {
	return &Sampler{rng: rand.New(src)}
}

func NewSeededSampler(seed int64) *Sampler {
	return NewSampler(rand.NewSource(seed))
}

// Sample draws n points with every axis uniform in [lo_i, hi_i].
func (s *Sampler) Sample(lo, hi r3.Vec, n int) (PointCloud, error) {
	if n < 0 {
		return nil, configErr("num_points", "must not be negative, got %d", n)
	}
	if err := validateBounds(lo, hi); err != nil {
		return nil, err
	}
	span := r3.Sub(hi, lo)
	if !finiteVec(span) {
		return nil, configErr("bounds", "extent %v overflows", span)
	}

	pc := make(PointCloud, n)
	for i := range pc {
		pc[i] = r3.Vec{
			X: lo.X + span.X*s.rng.Float64(),
			Y: lo.Y + span.Y*s.rng.Float64(),
			Z: lo.Z + span.Z*s.rng.Float64(),
		}
	}
	return pc, nil
}

func (s *Sampler) SampleBody(b Body, n int) (PointCloud, error) {
	return s.Sample(b.MinBound, b.MaxBound, n)
}
