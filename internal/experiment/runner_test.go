package experiment_test

import (
	"bytes"
	"context"
	"errors"
	"log"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/relsim/internal/experiment"
	"github.com/san-kum/relsim/internal/physics"
)

func box(half float64) (r3.Vec, r3.Vec) {
	return r3.Vec{X: -half, Y: -half, Z: -half}, r3.Vec{X: half, Y: half, Z: half}
}

func massive(name string, mass float64, pos, vel r3.Vec) physics.Body {
	lo, hi := box(1e9)
	return physics.Body{Name: name, Mass: mass, Position: pos, Velocity: vel, MinBound: lo, MaxBound: hi}
}

func threeBodies() physics.Scene {
	return physics.NewScene(
		massive("a", 1e30, r3.Vec{X: 1e8}, r3.Vec{Y: 1e7}),
		massive("b", 2e30, r3.Vec{X: -1e8}, r3.Vec{Y: -1e7}),
		massive("c", 3e30, r3.Vec{Y: 5e8}, r3.Vec{X: 1e6}),
	)
}

var _ = Describe("Runner", func() {
	var (
		eng    *physics.Engine
		runner *experiment.Runner
		ctx    context.Context
	)

	BeforeEach(func() {
		var err error
		eng, err = physics.NewEngine(physics.DefaultConstants())
		Expect(err).NotTo(HaveOccurred())
		runner = experiment.NewRunner(eng, physics.NewSeededSampler(1))
		ctx = context.Background()
	})

	Describe("Simulate", func() {
		It("returns one value per body in scene order", func() {
			scene := threeBodies()
			res, err := runner.Simulate(ctx, scene, physics.SchwarzschildRadius)
			Expect(err).NotTo(HaveOccurred())
			Expect(res).To(HaveLen(3))
			for i, b := range scene.Bodies {
				Expect(res[i].Err).NotTo(HaveOccurred())
				Expect(res[i].Value).To(Equal(eng.SchwarzschildRadius(b)))
			}
			Expect(res[0].Value).To(BeNumerically("<", res[1].Value))
			Expect(res[1].Value).To(BeNumerically("<", res[2].Value))
		})

		It("isolates a failing body and keeps the others", func() {
			scene := threeBodies()
			scene.Bodies[1].Position = r3.Vec{}

			res, err := runner.Simulate(ctx, scene, physics.TimeDilation)
			Expect(err).NotTo(HaveOccurred())
			Expect(res).To(HaveLen(3))
			Expect(res.Valid()).To(Equal(2))
			Expect(res[0].OK()).To(BeTrue())
			Expect(res[2].OK()).To(BeTrue())
			Expect(math.IsNaN(res.Values()[1])).To(BeTrue())

			var de *physics.DomainError
			Expect(errors.As(res[1].Err, &de)).To(BeTrue())
			Expect(de.Body).To(Equal(1))
			Expect(res.Errors()).To(MatchError(physics.ErrDomain))
		})

		It("logs skipped bodies", func() {
			var buf bytes.Buffer
			runner = experiment.NewRunner(eng, physics.NewSeededSampler(1), experiment.WithLogger(log.New(&buf, "", 0)))

			scene := threeBodies()
			scene.Bodies[2].Velocity = r3.Vec{}
			_, err := runner.Simulate(ctx, scene, physics.DopplerFactor)
			Expect(err).NotTo(HaveOccurred())
			Expect(buf.String()).To(ContainSubstring("body 2 (c) skipped"))
		})

		It("fails fast on configuration errors", func() {
			_, err := runner.Simulate(ctx, physics.NewScene(), physics.TimeDilation)
			Expect(err).To(MatchError(physics.ErrConfig))

			_, err = runner.Simulate(ctx, threeBodies(), "redshift")
			Expect(err).To(MatchError(physics.ErrConfig))

			scene := threeBodies()
			scene.Bodies[0].MinBound.X = 2e9
			res, err := runner.Simulate(ctx, scene, physics.TimeDilation)
			Expect(err).To(MatchError(physics.ErrConfig))
			Expect(res).To(BeNil())
		})

		It("stops on a cancelled context", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := runner.Simulate(cctx, threeBodies(), physics.TimeDilation)
			Expect(err).To(MatchError(context.Canceled))
		})

		It("gives the same answer serially and in parallel", func() {
			bodies := make([]physics.Body, 500)
			for i := range bodies {
				x := float64(i+1) * 1e7
				bodies[i] = massive("", 1e30+float64(i)*1e27, r3.Vec{X: x, Y: -x / 2}, r3.Vec{Y: 1e5, Z: float64(i)})
			}
			scene := physics.NewScene(bodies...)

			serial := experiment.NewRunner(eng, physics.NewSeededSampler(1), experiment.WithWorkers(1))
			parallel := experiment.NewRunner(eng, physics.NewSeededSampler(1), experiment.WithWorkers(8))

			a, err := serial.Simulate(ctx, scene, physics.FrameDragging)
			Expect(err).NotTo(HaveOccurred())
			b, err := parallel.Simulate(ctx, scene, physics.FrameDragging)
			Expect(err).NotTo(HaveOccurred())
			Expect(b.Values()).To(Equal(a.Values()))
		})

		It("keeps a failing body at its own index in parallel", func() {
			bodies := make([]physics.Body, 500)
			for i := range bodies {
				x := float64(i+1) * 1e7
				bodies[i] = massive("", 1e30, r3.Vec{X: x}, r3.Vec{Y: 1e5})
			}
			// Inside its own horizon: rs is about 1.485e9 m at r = 1e8 m.
			const bad = 250
			bodies[bad] = massive("inside", 1e36, r3.Vec{X: 1e8}, r3.Vec{Y: 1e5})
			scene := physics.NewScene(bodies...)

			parallel := experiment.NewRunner(eng, physics.NewSeededSampler(1), experiment.WithWorkers(8))
			res, err := parallel.Simulate(ctx, scene, physics.HorizonDilation)
			Expect(err).NotTo(HaveOccurred())
			Expect(res).To(HaveLen(500))
			Expect(res.Valid()).To(Equal(499))

			Expect(math.IsNaN(res[bad].Value)).To(BeTrue())
			var de *physics.DomainError
			Expect(errors.As(res[bad].Err, &de)).To(BeTrue())
			Expect(de.Body).To(Equal(bad))
			Expect(de.Observable).To(Equal(physics.HorizonDilation))

			for i, o := range res {
				if i == bad {
					continue
				}
				Expect(o.Err).NotTo(HaveOccurred(), "body %d", i)
				want, err := eng.HorizonDilation(scene.Bodies[i])
				Expect(err).NotTo(HaveOccurred())
				Expect(o.Value).To(Equal(want), "body %d", i)
			}
		})
	})

	Describe("SimulateAll", func() {
		It("covers every observable", func() {
			all, err := runner.SimulateAll(ctx, threeBodies())
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(len(physics.Observables())))
			for _, res := range all {
				Expect(res).To(HaveLen(3))
			}
		})
	})

	Describe("BuildVisualization", func() {
		It("colors each point with its nearest body", func() {
			scene := threeBodies()
			res, err := runner.Simulate(ctx, scene, physics.SchwarzschildRadius)
			Expect(err).NotTo(HaveOccurred())

			frame, err := runner.BuildVisualization(scene, 0, physics.SchwarzschildRadius, res, 300)
			Expect(err).NotTo(HaveOccurred())
			Expect(frame.Points).To(HaveLen(300))
			Expect(frame.Field).To(HaveLen(300))
			Expect(frame.Body).To(Equal(0))
			for i, p := range frame.Points {
				Expect(frame.Field[i]).To(Equal(res[scene.Nearest(p)].Value))
			}

			lo, hi, ok := frame.Range()
			Expect(ok).To(BeTrue())
			Expect(lo).To(BeNumerically(">=", res[0].Value))
			Expect(hi).To(BeNumerically("<=", res[2].Value))
		})

		It("broadcasts a single body's value", func() {
			scene := physics.NewScene(massive("solo", 1e30, r3.Vec{X: 1e8}, r3.Vec{Y: 1e7}))
			res := experiment.Results{{Value: 4.2}}
			frame, err := runner.BuildVisualization(scene, 0, physics.PulseDuration, res, 20)
			Expect(err).NotTo(HaveOccurred())
			for _, v := range frame.Field {
				Expect(v).To(Equal(4.2))
			}
		})

		It("rejects bad indices and mismatched results", func() {
			scene := threeBodies()
			res := make(experiment.Results, 3)

			_, err := runner.BuildVisualization(scene, 3, physics.TimeDilation, res, 10)
			Expect(err).To(MatchError(physics.ErrConfig))

			_, err = runner.BuildVisualization(scene, 0, physics.TimeDilation, res[:2], 10)
			Expect(err).To(MatchError(physics.ErrConfig))

			_, err = runner.BuildVisualization(scene, 0, physics.TimeDilation, res, -5)
			Expect(err).To(MatchError(physics.ErrConfig))
		})

		It("rejects an unknown observable label", func() {
			scene := threeBodies()
			res := make(experiment.Results, 3)

			_, err := runner.BuildVisualization(scene, 0, "redshift", res, 10)
			var ce *physics.ConfigError
			Expect(errors.As(err, &ce)).To(BeTrue())
			Expect(ce.Field).To(Equal("observable"))
		})

		It("reports no range when every value failed", func() {
			frame := experiment.Frame{Field: []float64{math.NaN(), math.Inf(1)}}
			_, _, ok := frame.Range()
			Expect(ok).To(BeFalse())
		})
	})

	Describe("end to end", func() {
		It("rejects the pulse inside the horizon but still computes frame dragging", func() {
			scene := physics.NewScene(massive("bh2", 1e36, r3.Vec{X: 1e8}, r3.Vec{Y: 1e7}))

			pulse, err := runner.Simulate(ctx, scene, physics.PulseDuration)
			Expect(err).NotTo(HaveOccurred())
			Expect(pulse[0].Err).To(MatchError(physics.ErrDomain))

			drag, err := runner.Simulate(ctx, scene, physics.FrameDragging)
			Expect(err).NotTo(HaveOccurred())
			Expect(drag[0].Err).NotTo(HaveOccurred())
			Expect(drag[0].Value).To(BeNumerically(">", 0))
		})

		It("produces physical magnitudes outside the horizon", func() {
			scene := physics.NewScene(massive("star", 1e30, r3.Vec{X: 1e8}, r3.Vec{Y: 1e7}))

			dil, err := runner.Simulate(ctx, scene, physics.HorizonDilation)
			Expect(err).NotTo(HaveOccurred())
			Expect(dil[0].Value).To(BeNumerically(">", 0))
			Expect(dil[0].Value).To(BeNumerically("<", 1))

			pulse, err := runner.Simulate(ctx, scene, physics.PulseDuration)
			Expect(err).NotTo(HaveOccurred())
			Expect(pulse[0].Value).To(BeNumerically(">", 0))
		})
	})
})

var _ = Describe("Experiment", func() {
	It("runs a configured scene into a report", func() {
		eng, err := physics.NewEngine(physics.DefaultConstants())
		Expect(err).NotTo(HaveOccurred())

		exp := experiment.New(eng, experiment.Config{
			Scene:      threeBodies(),
			Observable: physics.TimeDilation,
			Body:       2,
			NumPoints:  128,
			Seed:       9,
		})
		report, err := exp.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Results).To(HaveLen(3))
		Expect(report.Frame.Points).To(HaveLen(128))
		Expect(report.Frame.Body).To(Equal(2))
		Expect(exp.Runner().Engine()).To(BeIdenticalTo(eng))
	})

	It("wraps configuration failures", func() {
		eng, err := physics.NewEngine(physics.DefaultConstants())
		Expect(err).NotTo(HaveOccurred())

		_, err = experiment.New(eng, experiment.Config{Scene: threeBodies(), Observable: physics.TimeDilation, Body: 7}).Run(context.Background())
		Expect(err).To(MatchError(physics.ErrConfig))
		Expect(err.Error()).To(HavePrefix("visualize:"))
	})
})
