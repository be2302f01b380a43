package simulation

import (
	"fmt"

	"github.com/nvandessel/recsim/internal/constants"
	"github.com/nvandessel/recsim/internal/goods"
	"github.com/nvandessel/recsim/internal/matrix"
	"github.com/nvandessel/recsim/internal/order"
	"github.com/nvandessel/recsim/internal/people"
	"github.com/nvandessel/recsim/internal/rating"
)

// OptimalCount is how many goods the oracle hands each person: what the loop
// could afford over all ticks, capped at the number of goods.
func (s *Simulator) OptimalCount(goodsCount int) int {
	return min(s.params.Ticks*s.params.ConsumptionsPerTick(), goodsCount)
}

// Optimal builds the oracle allocation for utility: a fresh population bound
// to the same utility rows, where every person consumes exactly their
// OptimalCount highest-utility goods.
func (s *Simulator) Optimal(utility *matrix.UtilityMatrix, scale rating.Scale) (*matrix.ReviewMatrix, error) {
	users, goodsCount := utility.Dims()
	pop := people.Generate(users, goodsCount, s.params.Budget, s.src)
	m, err := matrix.NewReviewMatrix(pop, utility, scale, s.src)
	if err != nil {
		return nil, fmt.Errorf("building optimal matrix: %w", err)
	}

	k := s.OptimalCount(goodsCount)
	for _, p := range pop.People() {
		u := p.Utilities()
		for _, g := range order.Largest(len(u), k, func(i int) float64 { return u[i] }) {
			if err := p.Rate(g, goods.GiveRating(scale, u[g])); err != nil {
				return nil, err
			}
			p.AddUtility(u[g])
		}
	}
	return m, nil
}

// RandomBaseline consumes as many goods as probe did, chosen uniformly at
// random without replacement, for a user with probe's utilities. It measures
// what picking blindly would have achieved.
func (s *Simulator) RandomBaseline(probe *people.Person, scale rating.Scale) (*people.Person, error) {
	goodsCount := len(probe.Reviews())
	random := people.New(constants.RandomUserName, probe.Allowance(), goodsCount)
	random.SetUtility(probe.Utilities())

	for _, g := range s.src.Sample(goodsCount, probe.Reviews().Observed()) {
		u := random.Utility(g)
		if err := random.Rate(g, goods.GiveRating(scale, u)); err != nil {
			return nil, err
		}
		random.AddUtility(u)
	}
	return random, nil
}
