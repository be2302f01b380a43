package simulation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nvandessel/recsim/internal/goods"
	"github.com/nvandessel/recsim/internal/logging"
	"github.com/nvandessel/recsim/internal/matrix"
	"github.com/nvandessel/recsim/internal/people"
	"github.com/nvandessel/recsim/internal/rng"
)

// Phases recorded in decision traces.
const (
	PhaseMarket = "market"
	PhaseProbe  = "probe"
)

// Params controls the tick loop. All costs are in budget units.
type Params struct {
	Ticks             int
	Budget            int
	ConsiderationCost int
	UsageCost         int

	// AcceptanceThreshold is the expected utility a good must reach to be consumed.
	AcceptanceThreshold float64

	// NoiseMean and NoiseStd parameterize the expectation noise added to true utility.
	NoiseMean float64
	NoiseStd  float64

	// Strict requires the consideration and usage cost together before a
	// person may browse. Otherwise the consideration cost alone suffices.
	Strict bool

	// CountNegative lets negative signed reviews lower a good's popularity
	// when recommending.
	CountNegative bool
}

// Validate checks the parameters the loop relies on.
func (p Params) Validate() error {
	if p.Ticks <= 0 {
		return fmt.Errorf("ticks must be positive, got %d", p.Ticks)
	}
	if p.Budget <= 0 {
		return fmt.Errorf("budget must be positive, got %d", p.Budget)
	}
	if p.ConsiderationCost <= 0 || p.UsageCost <= 0 {
		return fmt.Errorf("costs must be positive, got consideration=%d usage=%d", p.ConsiderationCost, p.UsageCost)
	}
	if p.NoiseStd < 0 {
		return fmt.Errorf("noise std must not be negative, got %v", p.NoiseStd)
	}
	return nil
}

// ConsumptionsPerTick is how many goods a person can afford to consider and
// use in one tick.
func (p Params) ConsumptionsPerTick() int {
	return p.Budget / (p.ConsiderationCost + p.UsageCost)
}

// TickStats summarizes one tick of the market loop.
type TickStats struct {
	Tick       int
	Considered int
	Consumed   int
	Utility    float64
	Unobserved int
}

// Result is the outcome of the market loop.
type Result struct {
	Ticks []TickStats

	// StoppedEarly is set when every cell was observed before the last tick.
	StoppedEarly bool
}

// Simulator advances a market through discrete ticks.
// It is not safe for concurrent use; each experiment owns its own Simulator.
type Simulator struct {
	params      Params
	src         *rng.Source
	recommender *goods.Recommender
	logger      *slog.Logger
	decisions   *logging.DecisionLogger
	experiment  int
}

// New creates a simulator drawing all randomness from src.
func New(params Params, src *rng.Source) *Simulator {
	return &Simulator{
		params:      params,
		src:         src,
		recommender: goods.NewRecommender(params.CountNegative, src),
		logger:      logging.Discard(),
	}
}

// SetLogger sets the structured logger and decision logger for observability.
// experiment labels the decisions this simulator writes.
func (s *Simulator) SetLogger(logger *slog.Logger, decisions *logging.DecisionLogger, experiment int) {
	if logger != nil {
		s.logger = logger
	}
	s.decisions = decisions
	s.experiment = experiment
}

// Params returns the loop parameters.
func (s *Simulator) Params() Params { return s.params }

// Run advances m for the configured number of ticks, or until every cell of m
// is observed.
//
// Each tick starts from a snapshot of m. Recommendations for every person are
// computed from the snapshot, so people processed earlier in a tick cannot
// influence what later people are offered. Ratings, spending and realized
// utility are written to the live people and therefore to m.
func (s *Simulator) Run(ctx context.Context, m *matrix.ReviewMatrix) (Result, error) {
	var res Result
	pop := m.Population()

	for tick := 0; tick < s.params.Ticks; tick++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		snapshot := m.Snapshot()
		if m.FullyObserved() {
			res.StoppedEarly = true
			s.logger.Debug("market fully observed", "tick", tick)
			break
		}

		stats := TickStats{Tick: tick}
		for i, person := range pop.People() {
			view := snapshot.Population().At(i)
			out, err := s.browse(PhaseMarket, tick, person, view, snapshot)
			if err != nil {
				return res, fmt.Errorf("tick %d: %w", tick, err)
			}
			stats.add(out)
			s.logger.Log(ctx, logging.LevelTrace, "person browsed",
				"tick", tick,
				"person", person.Name(),
				"considered", len(out.considered),
				"consumed", out.consumed,
				"budget_left", person.Budget())
		}
		pop.ResetBudgets()

		stats.Unobserved = m.Unobserved()
		res.Ticks = append(res.Ticks, stats)
		s.logger.Debug("tick complete",
			"experiment", s.experiment,
			"tick", tick,
			"considered", stats.Considered,
			"consumed", stats.Consumed,
			"unobserved", stats.Unobserved)
	}
	return res, nil
}

type browseOutcome struct {
	considered []int
	consumed   int
	utility    float64
}

func (t *TickStats) add(out browseOutcome) {
	t.Considered += len(out.considered)
	t.Consumed += out.consumed
	t.Utility += out.utility
}

// canBrowse reports whether person can afford another consideration.
func (s *Simulator) canBrowse(person *people.Person) bool {
	need := s.params.ConsiderationCost
	if s.params.Strict {
		need += s.params.UsageCost
	}
	return person.Budget() >= need
}

// browse runs one person's tick: keep asking for recommendations while the
// budget allows, pay to consider each one and consume it when its noisy
// expected utility clears the acceptance threshold.
//
// live receives spending, ratings and utility. view and m are what the
// recommender reads; for the market loop they are the tick's snapshot.
func (s *Simulator) browse(phase string, tick int, live, view *people.Person, m *matrix.ReviewMatrix) (browseOutcome, error) {
	var out browseOutcome
	none := goods.NoRecommendation(m)

	for s.canBrowse(live) {
		g := s.recommender.RecommendGood(view, m, out.considered)
		if g == none {
			break
		}
		out.considered = append(out.considered, g)
		live.Spend(s.params.ConsiderationCost)

		trueUtility := live.Utility(g)
		expected := trueUtility + s.src.Normal(s.params.NoiseMean, s.params.NoiseStd)
		decision := logging.Decision{
			Experiment:      s.experiment,
			Phase:           phase,
			Tick:            tick,
			Person:          live.Name(),
			Good:            g,
			TrueUtility:     trueUtility,
			ExpectedUtility: expected,
		}

		if live.Budget() >= s.params.UsageCost && expected >= s.params.AcceptanceThreshold {
			live.Spend(s.params.UsageCost)
			r := goods.GiveRating(m.Scale(), trueUtility)
			if err := live.Rate(g, r); err != nil {
				return out, err
			}
			live.AddUtility(trueUtility)
			out.consumed++
			out.utility += trueUtility
			decision.Consumed = true
			decision.Rating = &r
		}

		decision.BudgetLeft = live.Budget()
		s.decisions.Log(decision)
	}
	return out, nil
}
