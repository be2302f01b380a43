package simulation

import (
	"fmt"

	"github.com/nvandessel/recsim/internal/constants"
	"github.com/nvandessel/recsim/internal/matrix"
	"github.com/nvandessel/recsim/internal/people"
	"github.com/nvandessel/recsim/internal/rating"
	"github.com/nvandessel/recsim/internal/rng"
)

// DefaultParams returns the loop parameters built from the package defaults.
// Expectation noise and the acceptance bar are centred on the utility mean.
func DefaultParams() Params {
	return Params{
		Ticks:               constants.DefaultNumberOfTicks,
		Budget:              constants.DefaultUserBudget,
		ConsiderationCost:   constants.DefaultConsiderationCost,
		UsageCost:           constants.DefaultUsageCost,
		AcceptanceThreshold: constants.DefaultUtilityMean,
		NoiseMean:           constants.DefaultUtilityMean,
		NoiseStd:            constants.DefaultUtilityStd,
		CountNegative:       true,
	}
}

// DefaultScenario returns a signed-scale scenario of the given size using the
// package defaults for everything else.
func DefaultScenario(name string, size int, seed uint64) Scenario {
	return Scenario{
		Name:        name,
		Size:        size,
		Seed:        seed,
		UtilityMean: constants.DefaultUtilityMean,
		UtilityStd:  constants.DefaultUtilityStd,
		Rating: rating.Params{
			Scale:      constants.SignedScale,
			RatingMean: constants.UnsetRatingParam,
			RatingStd:  constants.UnsetRatingParam,
			Policy:     rating.PolicyBoth,
		},
		Params: DefaultParams(),
	}
}

// MarketFromRows builds a small market with explicit utilities and an
// all-unobserved review matrix. Names are "P0", "P1", ... in row order.
func MarketFromRows(utilities [][]float64, scale rating.Scale, budget int, src *rng.Source) (*matrix.UtilityMatrix, *matrix.ReviewMatrix, error) {
	if len(utilities) == 0 {
		return nil, nil, fmt.Errorf("market needs at least one person")
	}
	goodsCount := len(utilities[0])
	persons := make([]*people.Person, len(utilities))
	for i := range persons {
		persons[i] = people.New(fmt.Sprintf("P%d", i), budget, goodsCount)
	}
	utility := matrix.UtilityFromRows(utilities, constants.DefaultUtilityMean, constants.DefaultUtilityStd, src)
	reviews, err := matrix.NewReviewMatrix(people.NewPopulation(persons...), utility, scale, src)
	if err != nil {
		return nil, nil, err
	}
	return utility, reviews, nil
}
