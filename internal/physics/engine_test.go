package physics_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/relsim/internal/physics"
)

const (
	c = physics.SpeedOfLight
	g = physics.Gravitational
)

func body(mass float64, pos, vel r3.Vec) physics.Body {
	return physics.Body{
		Mass:     mass,
		Position: pos,
		Velocity: vel,
		MinBound: r3.Vec{X: -1, Y: -1, Z: -1},
		MaxBound: r3.Vec{X: 1, Y: 1, Z: 1},
	}
}

var _ = Describe("Engine", func() {
	var eng *physics.Engine

	BeforeEach(func() {
		var err error
		eng, err = physics.NewEngine(physics.DefaultConstants())
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("construction", func() {
		It("rejects non-positive constants", func() {
			_, err := physics.NewEngine(physics.Constants{C: 0, G: g})
			Expect(err).To(MatchError(physics.ErrConfig))

			_, err = physics.NewEngine(physics.Constants{C: c, G: -1})
			Expect(err).To(MatchError(physics.ErrConfig))
		})

		It("rejects a non-positive laser radius", func() {
			_, err := physics.NewEngine(physics.DefaultConstants(), physics.WithLaserRadius(0))
			Expect(err).To(MatchError(physics.ErrConfig))
		})

		It("rejects an unknown doppler convention", func() {
			_, err := physics.NewEngine(physics.DefaultConstants(), physics.WithDoppler("sideways"))
			Expect(err).To(MatchError(physics.ErrConfig))
		})

		It("applies defaults", func() {
			Expect(eng.LaserRadius()).To(Equal(physics.DefaultLaserRadius))
			Expect(eng.Doppler()).To(Equal(physics.DopplerStandard))
			Expect(eng.Constants()).To(Equal(physics.DefaultConstants()))
		})
	})

	Describe("AdjustedPulseDuration", func() {
		DescribeTable("is finite and positive outside the horizon with 0 < v < c",
			func(mass float64, pos, vel r3.Vec) {
				b := body(mass, pos, vel)
				d, err := eng.AdjustedPulseDuration(b, 1e9)
				Expect(err).NotTo(HaveOccurred())
				Expect(math.IsInf(d, 0) || math.IsNaN(d)).To(BeFalse())
				Expect(d).To(BeNumerically(">", 0))
			},
			Entry("stellar mass far away", 2e30, r3.Vec{X: 1.5e11}, r3.Vec{Y: 3e4}),
			Entry("compact mass close in", 1e30, r3.Vec{X: 1e8}, r3.Vec{Y: 1e7}),
			Entry("negative axis", 5e29, r3.Vec{X: -1e8}, r3.Vec{X: -1e7}),
			Entry("near light speed", 1e20, r3.Vec{Z: 1e3}, r3.Vec{X: 0.99 * c}),
		)

		It("matches the closed form", func() {
			b := body(1e30, r3.Vec{X: 1e8}, r3.Vec{Y: 1e7})
			rs := 2 * g * 1e30 / (c * c)
			beta := 1e7 / c
			want := 1e9 * math.Sqrt(1-rs/1e8) * math.Sqrt((1+beta)/(1-beta)) / c

			got, err := eng.AdjustedPulseDuration(b, 1e9)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(BeNumerically("~", want, want*1e-12))
		})

		It("fails with a domain error at zero velocity", func() {
			b := body(1e30, r3.Vec{X: 1e8}, r3.Vec{})
			_, err := eng.AdjustedPulseDuration(b, 1e9)
			Expect(err).To(MatchError(physics.ErrDomain))

			var de *physics.DomainError
			Expect(errors.As(err, &de)).To(BeTrue())
			Expect(de.Observable).To(Equal(physics.PulseDuration))
			Expect(de.Reason).To(ContainSubstring("zero speed"))
		})

		It("fails at the speed of light", func() {
			b := body(1e30, r3.Vec{X: 1e8}, r3.Vec{Y: c})
			_, err := eng.AdjustedPulseDuration(b, 1e9)
			Expect(err).To(MatchError(physics.ErrDomain))
		})

		It("fails inside the schwarzschild radius", func() {
			b := body(1e36, r3.Vec{X: 1e8}, r3.Vec{Y: 1e7})
			Expect(eng.SchwarzschildRadius(b)).To(BeNumerically(">", 1e8))

			_, err := eng.AdjustedPulseDuration(b, 1e9)
			Expect(err).To(MatchError(physics.ErrDomain))
		})

		It("fails for a body at the origin", func() {
			_, err := eng.AdjustedPulseDuration(body(1e30, r3.Vec{}, r3.Vec{X: 1}), 1e9)
			Expect(err).To(MatchError(physics.ErrDomain))
		})

		It("rejects a non-positive laser radius as configuration", func() {
			_, err := eng.AdjustedPulseDuration(body(1e30, r3.Vec{X: 1e8}, r3.Vec{Y: 1e7}), -1)
			Expect(err).To(MatchError(physics.ErrConfig))
		})
	})

	Describe("DopplerFactor", func() {
		It("is above one for any non-zero speed under the standard convention", func() {
			f, err := eng.DopplerFactor(body(1, r3.Vec{X: 1}, r3.Vec{X: -1e7}))
			Expect(err).NotTo(HaveOccurred())
			Expect(f).To(BeNumerically(">", 1))
		})

		Context("verbatim convention", func() {
			BeforeEach(func() {
				var err error
				eng, err = physics.NewEngine(physics.DefaultConstants(), physics.WithDoppler(physics.DopplerVerbatim))
				Expect(err).NotTo(HaveOccurred())
			})

			It("is defined only above c", func() {
				f, err := eng.DopplerFactor(body(1, r3.Vec{X: 1}, r3.Vec{X: 2 * c}))
				Expect(err).NotTo(HaveOccurred())
				Expect(f).To(BeNumerically("~", math.Sqrt(3), 1e-12))

				_, err = eng.DopplerFactor(body(1, r3.Vec{X: 1}, r3.Vec{X: 1e7}))
				Expect(err).To(MatchError(physics.ErrDomain))

				_, err = eng.DopplerFactor(body(1, r3.Vec{X: 1}, r3.Vec{X: c}))
				Expect(err).To(MatchError(physics.ErrDomain))
			})
		})
	})

	Describe("TimeDilation", func() {
		DescribeTable("exceeds one for positive mass away from the origin",
			func(mass float64, pos r3.Vec) {
				d, err := eng.TimeDilation(body(mass, pos, r3.Vec{}))
				Expect(err).NotTo(HaveOccurred())
				Expect(d).To(BeNumerically(">", 1))

				want := math.Sqrt(1 + 2*g*mass/(c*c*r3.Norm(pos)))
				Expect(d).To(BeNumerically("~", want, want*1e-12))
			},
			Entry("black hole", 1e36, r3.Vec{X: 1e8}),
			Entry("sun at 1 au", 1.989e30, r3.Vec{Y: 1.496e11}),
			Entry("diagonal", 5e35, r3.Vec{X: 3e8, Y: 4e8, Z: -1e8}),
		)

		It("fails at the origin", func() {
			_, err := eng.TimeDilation(body(1e30, r3.Vec{}, r3.Vec{}))
			Expect(err).To(MatchError(physics.ErrDomain))
		})
	})

	Describe("FrameDragging", func() {
		It("is zero for velocity parallel to position", func() {
			f, err := eng.FrameDragging(body(1e30, r3.Vec{X: 1e8}, r3.Vec{X: 1e7}))
			Expect(err).NotTo(HaveOccurred())
			Expect(f).To(Equal(0.0))

			f, err = eng.FrameDragging(body(1e30, r3.Vec{X: 1, Y: 2, Z: 3}, r3.Vec{X: 2, Y: 4, Z: 6}))
			Expect(err).NotTo(HaveOccurred())
			Expect(f).To(Equal(0.0))
		})

		It("uses the cross product magnitude", func() {
			f, err := eng.FrameDragging(body(1e30, r3.Vec{X: 1e8}, r3.Vec{Y: 1e7}))
			Expect(err).NotTo(HaveOccurred())
			want := 2 * g * 1e15 / (c * c * 1e24)
			Expect(f).To(BeNumerically("~", want, want*1e-12))
		})

		It("fails at the origin", func() {
			_, err := eng.FrameDragging(body(1e30, r3.Vec{}, r3.Vec{Y: 1}))
			Expect(err).To(MatchError(physics.ErrDomain))
		})
	})

	Describe("Evaluate", func() {
		b := body(1e30, r3.Vec{X: 1e8}, r3.Vec{Y: 1e7})

		DescribeTable("dispatches to the matching formula",
			func(obs physics.Observable, direct func(*physics.Engine) (float64, error)) {
				got, err := eng.Evaluate(obs, b)
				Expect(err).NotTo(HaveOccurred())
				want, err := direct(eng)
				Expect(err).NotTo(HaveOccurred())
				Expect(got).To(Equal(want))
			},
			Entry("pulse", physics.PulseDuration, func(e *physics.Engine) (float64, error) {
				return e.AdjustedPulseDuration(b, e.LaserRadius())
			}),
			Entry("frame dragging", physics.FrameDragging, func(e *physics.Engine) (float64, error) { return e.FrameDragging(b) }),
			Entry("time dilation", physics.TimeDilation, func(e *physics.Engine) (float64, error) { return e.TimeDilation(b) }),
			Entry("horizon", physics.HorizonDilation, func(e *physics.Engine) (float64, error) { return e.HorizonDilation(b) }),
			Entry("doppler", physics.DopplerFactor, func(e *physics.Engine) (float64, error) { return e.DopplerFactor(b) }),
			Entry("radius", physics.SchwarzschildRadius, func(e *physics.Engine) (float64, error) {
				return e.SchwarzschildRadius(b), nil
			}),
		)

		DescribeTable("rejects bodies with invalid state before any formula",
			func(bad physics.Body) {
				for _, obs := range physics.Observables() {
					v, err := eng.Evaluate(obs, bad)
					Expect(err).To(MatchError(physics.ErrConfig), string(obs))
					Expect(math.IsNaN(v)).To(BeTrue(), string(obs))
				}
			},
			Entry("negative mass", body(-1e30, r3.Vec{X: 1e8}, r3.Vec{Y: 1e7})),
			Entry("zero mass", body(0, r3.Vec{X: 1e8}, r3.Vec{Y: 1e7})),
			Entry("NaN mass", body(math.NaN(), r3.Vec{X: 1e8}, r3.Vec{Y: 1e7})),
			Entry("infinite mass", body(math.Inf(1), r3.Vec{X: 1e8}, r3.Vec{Y: 1e7})),
			Entry("NaN position", body(1e30, r3.Vec{X: math.NaN()}, r3.Vec{Y: 1e7})),
			Entry("infinite velocity", body(1e30, r3.Vec{X: 1e8}, r3.Vec{Y: math.Inf(-1)})),
		)

		It("ignores sampling bounds", func() {
			unbounded := physics.Body{Mass: 1e30, Position: r3.Vec{X: 1e8}, Velocity: r3.Vec{Y: 1e7}}
			_, err := eng.Evaluate(physics.TimeDilation, unbounded)
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects an unknown observable", func() {
			_, err := eng.Evaluate("redshift", b)
			Expect(err).To(MatchError(physics.ErrConfig))
		})
	})

	Describe("selectors", func() {
		It("parses normalized names", func() {
			o, err := physics.ParseObservable(" Pulse-Duration ")
			Expect(err).NotTo(HaveOccurred())
			Expect(o).To(Equal(physics.PulseDuration))

			_, err = physics.ParseObservable("redshift")
			Expect(err).To(MatchError(physics.ErrConfig))
		})

		It("lists every observable in sorted order", func() {
			obs := physics.Observables()
			Expect(obs).To(HaveLen(6))
			for i := 1; i < len(obs); i++ {
				Expect(obs[i-1] < obs[i]).To(BeTrue())
			}
		})

		It("defaults the doppler convention", func() {
			d, err := physics.ParseDoppler("")
			Expect(err).NotTo(HaveOccurred())
			Expect(d).To(Equal(physics.DopplerStandard))
		})
	})
})
