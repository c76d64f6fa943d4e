package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/relsim/internal/physics"
)

type Config struct {
	Scene      physics.Scene
	Observable physics.Observable
	Body       int
	NumPoints  int
	Seed       int64
	Workers    int
}

// Report bundles one experiment run: the per-body values and the frame
// handed to a rendering sink.
type Report struct {
	Config  Config
	Results Results
	Frame   Frame
}

type Experiment struct {
	cfg    Config
	runner *Runner
}

func New(engine *physics.Engine, cfg Config, opts ...RunnerOption) *Experiment {
	opts = append([]RunnerOption{WithWorkers(cfg.Workers)}, opts...)
	return &Experiment{
		cfg:    cfg,
		runner: NewRunner(engine, physics.NewSeededSampler(cfg.Seed), opts...),
	}
}

func (e *Experiment) Run(ctx context.Context) (*Report, error) {
	res, err := e.runner.Simulate(ctx, e.cfg.Scene, e.cfg.Observable)
	if err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}

	frame, err := e.runner.BuildVisualization(e.cfg.Scene, e.cfg.Body, e.cfg.Observable, res, e.cfg.NumPoints)
	if err != nil {
		return nil, fmt.Errorf("visualize: %w", err)
	}

	return &Report{Config: e.cfg, Results: res, Frame: frame}, nil
}

// Runner returns the underlying runner for ad-hoc simulations.
func (e *Experiment) Runner() *Runner {
	return e.runner
}
