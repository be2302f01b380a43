package simulation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nvandessel/recsim/internal/logging"
	"github.com/nvandessel/recsim/internal/matrix"
	"github.com/nvandessel/recsim/internal/people"
	"github.com/nvandessel/recsim/internal/rng"
)

// Runner orchestrates a complete experiment: market loop, oracle allocation,
// cold-start probe and random baseline, all drawing from one seeded source.
type Runner struct {
	logger    *slog.Logger
	decisions *logging.DecisionLogger
}

// NewRunner creates a runner. Either logger may be nil.
func NewRunner(logger *slog.Logger, decisions *logging.DecisionLogger) *Runner {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Runner{logger: logger, decisions: decisions}
}

// Run executes the scenario and returns the collected results. experiment
// labels log lines and decision traces.
func (r *Runner) Run(ctx context.Context, sc Scenario, experiment int) (SimulationResult, error) {
	if err := sc.Validate(); err != nil {
		return SimulationResult{}, err
	}
	scale, err := sc.Scale()
	if err != nil {
		return SimulationResult{}, fmt.Errorf("scenario %q: %w", sc.Name, err)
	}

	src := rng.New(sc.Seed, sc.Stream)
	sim := New(sc.Params, src)
	sim.SetLogger(r.logger, r.decisions, experiment)

	// Phase 1: Build the market.
	utility := matrix.NewUtilityMatrix(sc.Size, sc.Size, sc.UtilityMean, sc.UtilityStd, src)
	pop := people.Generate(sc.Size, sc.Size, sc.Params.Budget, src)
	reviews, err := matrix.NewReviewMatrix(pop, utility, scale, src)
	if err != nil {
		return SimulationResult{}, fmt.Errorf("experiment %d: %w", experiment, err)
	}
	res := SimulationResult{Scenario: sc, Scale: scale, Utility: utility, Reviews: reviews}

	// Phase 2: Run the market loop.
	res.Market, err = sim.Run(ctx, reviews)
	if err != nil {
		return res, fmt.Errorf("experiment %d market: %w", experiment, err)
	}

	// Phase 3: Oracle allocation over the same utilities.
	res.Optimal, err = sim.Optimal(utility, scale)
	if err != nil {
		return res, fmt.Errorf("experiment %d: %w", experiment, err)
	}

	// Phase 4: Cold-start probe on the warm market.
	res.Probe, err = sim.Probe(ctx, utility, reviews, sc.probeName())
	if err != nil {
		return res, fmt.Errorf("experiment %d: %w", experiment, err)
	}

	// Phase 5: Random choice with the probe's utilities.
	res.Random, err = sim.RandomBaseline(res.Probe.Person, scale)
	if err != nil {
		return res, fmt.Errorf("experiment %d random baseline: %w", experiment, err)
	}

	r.logger.Debug("experiment complete",
		"experiment", experiment,
		"ticks", len(res.Market.Ticks),
		"stopped_early", res.Market.StoppedEarly)
	return res, nil
}
