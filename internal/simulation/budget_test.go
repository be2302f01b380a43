package simulation_test

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvandessel/recsim/internal/logging"
	"github.com/nvandessel/recsim/internal/simulation"
)

// TestBudgetNeverNegative traces every consideration of a full experiment and
// checks the budget left after each one.
//
// Setup: 12 people and goods, default costs (1 to consider, 5 to use) and a
// budget of 10. Expected: no decision leaves a negative budget, and every
// market person ends the run with their allowance restored.
func TestBudgetNeverNegative(t *testing.T) {
	dir := t.TempDir()
	decisions := logging.NewDecisionLogger(dir, "debug")
	require.NotNil(t, decisions)

	r := simulation.NewRunner(nil, decisions)
	result, err := r.Run(context.Background(), simulation.DefaultScenario("budget", 12, 3), 0)
	require.NoError(t, err)
	decisions.Close()

	simulation.AssertBudgetsReset(t, result)

	f, err := os.Open(filepath.Join(dir, logging.DecisionsFile))
	require.NoError(t, err)
	defer f.Close()

	lines := 0
	phases := map[string]int{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var d logging.Decision
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &d))
		assert.GreaterOrEqual(t, d.BudgetLeft, 0, "decision %+v", d)
		assert.LessOrEqual(t, d.BudgetLeft, result.Scenario.Params.Budget)
		if d.Consumed {
			require.NotNil(t, d.Rating)
		}
		phases[d.Phase]++
		lines++
	}
	require.NoError(t, scanner.Err())

	considered := 0
	for _, ts := range result.Market.Ticks {
		considered += ts.Considered
	}
	assert.Equal(t, considered, phases[simulation.PhaseMarket])
	assert.Equal(t, len(result.Probe.Considered), phases[simulation.PhaseProbe])
	assert.Equal(t, considered+len(result.Probe.Considered), lines)
}

// TestStrictBudget checks that requiring both costs up front caps a person
// at one consideration per tick when the budget only covers one of each.
func TestStrictBudget(t *testing.T) {
	sc := simulation.DefaultScenario("strict", 8, 5)
	sc.Params.Budget = 6
	sc.Params.Strict = true

	result, err := simulation.NewRunner(nil, nil).Run(context.Background(), sc, 0)
	require.NoError(t, err)

	require.NotEmpty(t, result.Market.Ticks)
	for _, ts := range result.Market.Ticks {
		assert.LessOrEqual(t, ts.Considered, sc.Size, "tick %d", ts.Tick)
		assert.LessOrEqual(t, ts.Consumed, ts.Considered)
	}
	simulation.AssertBudgetsReset(t, result)
}

// TestLenientBudget checks that without the strict rule a person keeps
// considering goods after the last affordable use.
func TestLenientBudget(t *testing.T) {
	sc := simulation.DefaultScenario("lenient", 8, 5)
	sc.Params.Budget = 6
	sc.Params.AcceptanceThreshold = 1e9

	result, err := simulation.NewRunner(nil, nil).Run(context.Background(), sc, 0)
	require.NoError(t, err)

	// Nothing is ever accepted, so each person spends the whole budget on
	// considering six different goods every tick.
	for _, ts := range result.Market.Ticks {
		assert.Equal(t, 6*sc.Size, ts.Considered, "tick %d", ts.Tick)
		assert.Zero(t, ts.Consumed)
	}
	assert.Len(t, result.Market.Ticks, sc.Params.Ticks)
}
