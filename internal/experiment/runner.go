// Package experiment repeats a simulation scenario and summarizes the outcomes.
//
// Repetitions are independent: repetition i uses the configured seed with
// stream i, so results do not depend on how many run in parallel.
package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nvandessel/recsim/internal/logging"
	"github.com/nvandessel/recsim/internal/simulation"
)

// Options controls repetition.
type Options struct {
	Experiments int
	// Workers bounds how many experiments run at once. Zero uses GOMAXPROCS.
	Workers  int
	Analysis Analysis
}

// Outcome holds everything a run produced.
type Outcome struct {
	Scenario simulation.Scenario
	Metrics  []Metrics
	Average  Metrics

	// Last is the final repetition with its probe detached, kept for
	// matrix export and the per-person report.
	Last *simulation.SimulationResult

	Started  time.Time
	Duration time.Duration
}

// Runner repeats a scenario.
type Runner struct {
	scenario  simulation.Scenario
	opts      Options
	logger    *slog.Logger
	decisions *logging.DecisionLogger
}

// NewRunner creates a runner. logger may be nil.
func NewRunner(sc simulation.Scenario, opts Options, logger *slog.Logger, decisions *logging.DecisionLogger) *Runner {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Runner{scenario: sc, opts: opts, logger: logger, decisions: decisions}
}

// Run executes every repetition and returns their metrics in repetition order.
// The first failing repetition cancels the rest.
func (r *Runner) Run(ctx context.Context) (*Outcome, error) {
	if r.opts.Experiments <= 0 {
		return nil, fmt.Errorf("number of experiments must be positive, got %d", r.opts.Experiments)
	}
	workers := r.opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	out := &Outcome{
		Scenario: r.scenario,
		Metrics:  make([]Metrics, r.opts.Experiments),
		Started:  time.Now(),
	}

	r.logger.Info("running experiments",
		"scenario", r.scenario.Name,
		"experiments", r.opts.Experiments,
		"workers", workers,
		"size", r.scenario.Size,
		"seed", r.scenario.Seed)

	// Decisions are buffered per experiment and flushed in experiment order.
	// done[i] closes once experiment i has flushed or given up.
	done := make([]chan struct{}, r.opts.Experiments)
	for i := range done {
		done[i] = make(chan struct{})
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < r.opts.Experiments; i++ {
		g.Go(func() error {
			defer close(done[i])
			sc := r.scenario
			sc.Stream = uint64(i)

			decisions := r.decisions.Buffer()
			res, err := simulation.NewRunner(r.logger, decisions).Run(gCtx, sc, i)
			if err != nil {
				return err
			}
			out.Metrics[i] = Measure(&res, r.opts.Analysis)
			if err := res.DetachProbe(); err != nil {
				return fmt.Errorf("experiment %d: %w", i, err)
			}
			if i == r.opts.Experiments-1 {
				out.Last = &res
			}

			if i > 0 {
				select {
				case <-done[i-1]:
				case <-gCtx.Done():
					return gCtx.Err()
				}
			}
			decisions.Flush()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out.Average = Average(out.Metrics)
	out.Duration = time.Since(out.Started)

	r.logger.Info("experiments complete",
		"experiments", r.opts.Experiments,
		"percent_optimal", fmt.Sprintf("%.1f", out.Average.PercentOptimal),
		"duration", out.Duration.Round(time.Millisecond))
	return out, nil
}
