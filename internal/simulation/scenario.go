package simulation

import (
	"fmt"

	"github.com/nvandessel/recsim/internal/constants"
	"github.com/nvandessel/recsim/internal/matrix"
	"github.com/nvandessel/recsim/internal/people"
	"github.com/nvandessel/recsim/internal/rating"
)

// Scenario defines one complete experiment: the market to build and how the
// loop, the oracle and the probe run on it.
type Scenario struct {
	Name string

	// Size is both the number of people and the number of goods.
	Size int

	// Seed and Stream select the random sequence. Repetitions of the same
	// configuration share a seed and use their index as the stream.
	Seed   uint64
	Stream uint64

	UtilityMean float64
	UtilityStd  float64

	// Rating selects the rating system. Its utility fields are filled from
	// UtilityMean and UtilityStd.
	Rating rating.Params

	Params Params

	// ProbeName names the cold-start user. Empty uses constants.ProbeUserName.
	ProbeName string
}

// Validate checks that the scenario can be built.
func (sc Scenario) Validate() error {
	if sc.Size <= 0 {
		return fmt.Errorf("scenario %q: size must be positive, got %d", sc.Name, sc.Size)
	}
	if sc.UtilityStd <= 0 {
		return fmt.Errorf("scenario %q: utility std must be positive, got %v", sc.Name, sc.UtilityStd)
	}
	if err := sc.Params.Validate(); err != nil {
		return fmt.Errorf("scenario %q: %w", sc.Name, err)
	}
	return nil
}

// Scale builds the scenario's rating system.
func (sc Scenario) Scale() (rating.Scale, error) {
	p := sc.Rating
	p.UtilityMean = sc.UtilityMean
	p.UtilityStd = sc.UtilityStd
	return rating.New(p)
}

func (sc Scenario) probeName() string {
	if sc.ProbeName == "" {
		return constants.ProbeUserName
	}
	return sc.ProbeName
}

// SimulationResult captures the final state of every part of an experiment.
//
// The probe is still attached to Utility and Reviews so that it can be
// analyzed together with the market; DetachProbe restores the base market.
type SimulationResult struct {
	Scenario Scenario
	Scale    rating.Scale

	Utility *matrix.UtilityMatrix
	Reviews *matrix.ReviewMatrix
	Market  Result

	// Optimal is the oracle allocation over the same utilities.
	Optimal *matrix.ReviewMatrix

	Probe  ProbeResult
	Random *people.Person

	detached bool
}

// MarketPeople returns the base population, without the probe.
func (r *SimulationResult) MarketPeople() []*people.Person {
	var out []*people.Person
	for _, p := range r.Reviews.Population().People() {
		if p != r.Probe.Person {
			out = append(out, p)
		}
	}
	return out
}

// MarketRows returns the review rows of the base population, without the probe.
func (r *SimulationResult) MarketRows() []rating.Row {
	if r.detached || r.Probe.Person == nil {
		return r.Reviews.Rows()
	}
	return r.Reviews.RowsExcluding(r.Probe.Person)
}

// DetachProbe removes the probe from both matrices. It is a no-op once done.
func (r *SimulationResult) DetachProbe() error {
	if r.detached || r.Probe.Person == nil {
		return nil
	}
	if err := Detach(r.Utility, r.Reviews, r.Probe.Person); err != nil {
		return err
	}
	r.detached = true
	return nil
}
