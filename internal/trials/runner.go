// File: internal/trials/runner.go
package trials

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/outbreak-cli/internal/epidemic"
)

// ErrNoTrials is returned when a run is configured with fewer than one trial.
var ErrNoTrials = errors.New("at least one trial is required")

// PopulationFactory builds a fresh population for one trial from that trial's own
// generator. It must not retain or share state across calls.
type PopulationFactory func(rng *rand.Rand) (epidemic.Population, error)

// PopulationOf returns a factory producing the given mix of states.
func PopulationOf(total, infected, vaccinated int) PopulationFactory {
	return func(rng *rand.Rand) (epidemic.Population, error) {
		return epidemic.BuildPopulation(total, infected, vaccinated, rng)
	}
}

// Options configures a Runner.
type Options struct {
	Trials      int
	Concurrency int
	// Seed is the master seed; every trial derives its own stream from it.
	Seed   int64
	Params epidemic.Params
	// ProgressInterval throttles progress logging. Zero logs roughly every tenth trial.
	ProgressInterval time.Duration
}

// Runner executes independent trials, optionally in parallel.
type Runner struct {
	opts   Options
	logger *zap.Logger
}

// NewRunner validates opts and returns a Runner.
func NewRunner(opts Options, logger *zap.Logger) (*Runner, error) {
	if opts.Trials < 1 {
		return nil, fmt.Errorf("trials=%d: %w", opts.Trials, ErrNoTrials)
	}
	if err := opts.Params.Validate(); err != nil {
		return nil, err
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		opts:   opts,
		logger: logger.Named("trials"),
	}, nil
}

// Trial runs trial number n to completion and returns its daily table along with the
// population in its end-of-trial state.
func (r *Runner) Trial(n int, factory PopulationFactory) ([]epidemic.DailyCounts, epidemic.Population, error) {
	rng := NewRand(r.opts.Seed, n)
	pop, err := factory(rng)
	if err != nil {
		return nil, nil, fmt.Errorf("build population: %w", err)
	}

	sim, err := epidemic.NewSimulator(r.opts.Params, epidemic.NewRandSource(rng), r.logger.With(zap.Int("trial", n)))
	if err != nil {
		return nil, nil, err
	}
	rows, err := sim.RunTrial(pop)
	if err != nil {
		return nil, nil, err
	}
	return rows, pop, nil
}

// Run executes every configured trial and returns one Summary per trial, in trial order.
// Trials share nothing, so they run concurrently up to Options.Concurrency. A failing
// trial or a cancelled context stops scheduling further trials.
func (r *Runner) Run(ctx context.Context, factory PopulationFactory) ([]Summary, error) {
	start := time.Now()
	summaries := make([]Summary, r.opts.Trials)

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)

	var completed atomic.Int64
	progress := r.newProgress()

	r.logger.Info("Starting trials",
		zap.Int("trials", r.opts.Trials),
		zap.Int("concurrency", r.opts.Concurrency),
		zap.Int64("seed", r.opts.Seed),
	)

	for i := 0; i < r.opts.Trials; i++ {
		if groupCtx.Err() != nil {
			break
		}
		trial := i
		g.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			rows, _, err := r.Trial(trial, factory)
			if err != nil {
				return fmt.Errorf("trial %d: %w", trial, err)
			}
			// Each goroutine owns its own index.
			summaries[trial] = Summarize(trial, rows)

			done := completed.Add(1)
			progress.Do(func() {
				r.logger.Info("Trial progress",
					zap.Int64("completed", done),
					zap.Int("total", r.opts.Trials),
				)
			})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("trials interrupted after %d of %d: %w", completed.Load(), r.opts.Trials, err)
	}

	r.logger.Info("Trials finished",
		zap.Int("trials", r.opts.Trials),
		zap.Duration("elapsed", time.Since(start)),
	)
	return summaries, nil
}

func (r *Runner) newProgress() *rate.Sometimes {
	if r.opts.ProgressInterval > 0 {
		return &rate.Sometimes{First: 1, Interval: r.opts.ProgressInterval}
	}
	return &rate.Sometimes{First: 1, Every: max(1, r.opts.Trials/10)}
}
