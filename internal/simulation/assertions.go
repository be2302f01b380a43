package simulation

import (
	"math"
	"testing"

	"github.com/nvandessel/recsim/internal/analysis"
)

// utilityTolerance absorbs summation-order rounding when two utility totals
// are built from the same goods.
const utilityTolerance = 1e-9

// AssertBudgetsReset asserts that every market person ended the run with
// their full allowance restored.
func AssertBudgetsReset(t *testing.T, result SimulationResult) {
	t.Helper()
	for _, p := range result.MarketPeople() {
		if p.Budget() != p.Allowance() {
			t.Errorf("AssertBudgetsReset: %s has budget %d, want %d", p.Name(), p.Budget(), p.Allowance())
		}
	}
}

// AssertNeverBeatsOracle asserts that no person, including the probe,
// realized more utility than the best selection of the same number of goods.
func AssertNeverBeatsOracle(t *testing.T, result SimulationResult) {
	t.Helper()
	for _, p := range result.Reviews.Population().People() {
		optimal := analysis.FindOptimalUtility(p)
		if p.GeneratedUtility() > optimal+utilityTolerance {
			t.Errorf("AssertNeverBeatsOracle: %s generated %.6f > optimal %.6f", p.Name(), p.GeneratedUtility(), optimal)
		}
	}
}

// AssertReviewsMatchConsumption asserts that each person's realized utility
// is exactly the utility of the goods they reviewed, so a review exists if
// and only if the good was consumed.
func AssertReviewsMatchConsumption(t *testing.T, result SimulationResult) {
	t.Helper()
	for _, p := range result.Reviews.Population().People() {
		total := 0.0
		for g, c := range p.Reviews() {
			if c.IsSet() {
				total += p.Utility(g)
			}
		}
		if math.Abs(total-p.GeneratedUtility()) > utilityTolerance {
			t.Errorf("AssertReviewsMatchConsumption: %s reviewed goods worth %.6f but generated %.6f", p.Name(), total, p.GeneratedUtility())
		}
	}
}

// AssertUtilityBound asserts that every person holds the utility row of the
// matrix at their own index.
func AssertUtilityBound(t *testing.T, result SimulationResult) {
	t.Helper()
	for i, p := range result.Reviews.Population().People() {
		row := result.Utility.Row(i)
		for g, u := range row {
			if p.Utility(g) != u {
				t.Errorf("AssertUtilityBound: %s good %d utility %.6f, matrix has %.6f", p.Name(), g, p.Utility(g), u)
				break
			}
		}
	}
}

// AssertOptimalAllocation asserts that every oracle person consumed exactly
// want goods.
func AssertOptimalAllocation(t *testing.T, result SimulationResult, want int) {
	t.Helper()
	for _, p := range result.Optimal.Population().People() {
		if got := p.Reviews().Observed(); got != want {
			t.Errorf("AssertOptimalAllocation: %s consumed %d goods, want %d", p.Name(), got, want)
		}
	}
}

// AssertRandomMatchesProbe asserts that the random baseline consumed as many
// goods as the probe, with the probe's utilities.
func AssertRandomMatchesProbe(t *testing.T, result SimulationResult) {
	t.Helper()
	probe, random := result.Probe.Person, result.Random
	if got, want := random.Reviews().Observed(), probe.Reviews().Observed(); got != want {
		t.Errorf("AssertRandomMatchesProbe: random consumed %d goods, probe %d", got, want)
	}
	for g := range probe.Utilities() {
		if random.Utility(g) != probe.Utility(g) {
			t.Errorf("AssertRandomMatchesProbe: utility of good %d differs", g)
			return
		}
	}
}

// TotalConsumed counts the reviews written during the market loop.
func TotalConsumed(result SimulationResult) int {
	n := 0
	for _, ts := range result.Market.Ticks {
		n += ts.Consumed
	}
	return n
}
