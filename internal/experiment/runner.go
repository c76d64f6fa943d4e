package experiment

import (
	"context"
	"errors"
	"io"
	"log"
	"math"
	"runtime"

	"github.com/san-kum/relsim/internal/physics"
)

// minChunk keeps tiny scenes on the calling goroutine.
const minChunk = 64

type Runner struct {
	engine  *physics.Engine
	sampler *physics.Sampler
	workers int
	logger  *log.Logger
}

type RunnerOption func(*Runner)

// WithWorkers bounds the goroutines used by Simulate. Values below one keep
// the default of runtime.NumCPU(); pass 1 to run serially.
func WithWorkers(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

func WithLogger(l *log.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

func NewRunner(engine *physics.Engine, sampler *physics.Sampler, opts ...RunnerOption) *Runner {
	r := &Runner{
		engine:  engine,
		sampler: sampler,
		workers: runtime.NumCPU(),
		logger:  log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) Engine() *physics.Engine { return r.engine }

// Simulate evaluates obs for every body. Configuration problems fail before
// any body is evaluated. Domain failures are isolated per body: the slot
// holds NaN and the error, and the remaining bodies are still computed.
func (r *Runner) Simulate(ctx context.Context, scene physics.Scene, obs physics.Observable) (Results, error) {
	if err := scene.Validate(); err != nil {
		return nil, err
	}
	if _, err := physics.ParseObservable(string(obs)); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(Results, scene.Len())
	ParallelFor(scene.Len(), r.workers, minChunk, func(start, end int) {
		for i := start; i < end; i++ {
			if ctx.Err() != nil {
				return
			}
			out[i] = r.evaluate(i, scene.Bodies[i], obs)
		}
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for i, o := range out {
		if o.Err != nil {
			r.logger.Printf("%s: body %d (%s) skipped: %v", obs, i, scene.Bodies[i].Name, o.Err)
		}
	}
	return out, nil
}

func (r *Runner) evaluate(i int, b physics.Body, obs physics.Observable) Outcome {
	v, err := r.engine.Evaluate(obs, b)
	if err == nil {
		return Outcome{Value: v}
	}
	var de *physics.DomainError
	if errors.As(err, &de) {
		tagged := *de
		tagged.Body = i
		err = &tagged
	}
	return Outcome{Value: math.NaN(), Err: err}
}

// SimulateAll runs every registered observable over the scene.
func (r *Runner) SimulateAll(ctx context.Context, scene physics.Scene) (map[physics.Observable]Results, error) {
	all := make(map[physics.Observable]Results)
	for _, obs := range physics.Observables() {
		res, err := r.Simulate(ctx, scene, obs)
		if err != nil {
			return nil, err
		}
		all[obs] = res
	}
	return all, nil
}

// BuildVisualization samples n points in the chosen body's box and colors
// each point with the value of the nearest body. obs labels the frame and
// must name a known observable. It performs no physics.
func (r *Runner) BuildVisualization(scene physics.Scene, body int, obs physics.Observable, results Results, n int) (Frame, error) {
	if err := scene.Validate(); err != nil {
		return Frame{}, err
	}
	obs, err := physics.ParseObservable(string(obs))
	if err != nil {
		return Frame{}, err
	}
	if body < 0 || body >= scene.Len() {
		return Frame{}, &physics.ConfigError{Field: "body", Reason: "index out of range"}
	}
	if len(results) != scene.Len() {
		return Frame{}, &physics.ConfigError{Field: "results", Reason: "length does not match scene"}
	}

	points, err := r.sampler.SampleBody(scene.Bodies[body], n)
	if err != nil {
		return Frame{}, err
	}

	field := make([]float64, len(points))
	for i, p := range points {
		idx := 0
		if scene.Len() > 1 {
			idx = scene.Nearest(p)
		}
		field[i] = results[idx].Value
	}

	return Frame{Observable: obs, Body: body, Points: points, Field: field}, nil
}
