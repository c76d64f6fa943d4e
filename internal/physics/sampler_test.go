package physics_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/relsim/internal/physics"
)

var _ = Describe("Sampler", func() {
	lo := r3.Vec{X: -1, Y: -1, Z: -1}
	hi := r3.Vec{X: 1, Y: 1, Z: 1}

	It("keeps every coordinate inside the box", func() {
		pc, err := physics.NewSeededSampler(7).Sample(lo, hi, 1000)
		Expect(err).NotTo(HaveOccurred())
		Expect(pc).To(HaveLen(1000))
		for _, p := range pc {
			for _, v := range []float64{p.X, p.Y, p.Z} {
				Expect(v).To(BeNumerically(">=", -1))
				Expect(v).To(BeNumerically("<=", 1))
			}
		}
	})

	It("is reproducible for a fixed seed", func() {
		a, err := physics.NewSeededSampler(42).Sample(lo, hi, 64)
		Expect(err).NotTo(HaveOccurred())
		b, err := physics.NewSeededSampler(42).Sample(lo, hi, 64)
		Expect(err).NotTo(HaveOccurred())
		Expect(a).To(Equal(b))

		other, err := physics.NewSeededSampler(43).Sample(lo, hi, 64)
		Expect(err).NotTo(HaveOccurred())
		Expect(other).NotTo(Equal(a))
	})

	It("pins degenerate axes", func() {
		pc, err := physics.NewSeededSampler(1).Sample(r3.Vec{X: -1, Y: 5, Z: 0}, r3.Vec{X: 1, Y: 5, Z: 0}, 50)
		Expect(err).NotTo(HaveOccurred())
		for _, p := range pc {
			Expect(p.Y).To(Equal(5.0))
			Expect(p.Z).To(Equal(0.0))
		}
	})

	It("returns an empty cloud for zero points", func() {
		pc, err := physics.NewSeededSampler(1).Sample(lo, hi, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(pc).To(BeEmpty())
	})

	It("rejects inverted bounds and negative counts", func() {
		s := physics.NewSeededSampler(1)
		_, err := s.Sample(hi, lo, 10)
		Expect(err).To(MatchError(physics.ErrConfig))

		_, err = s.Sample(lo, hi, -1)
		Expect(err).To(MatchError(physics.ErrConfig))
	})

	It("samples inside a body's bounding box", func() {
		b := physics.Body{Mass: 1, MinBound: r3.Vec{X: 10, Y: 10, Z: 10}, MaxBound: r3.Vec{X: 20, Y: 20, Z: 20}}
		pc, err := physics.NewSeededSampler(3).SampleBody(b, 200)
		Expect(err).NotTo(HaveOccurred())

		bmin, bmax := pc.Bounds()
		Expect(bmin.X).To(BeNumerically(">=", 10))
		Expect(bmax.Z).To(BeNumerically("<=", 20))
	})
})
