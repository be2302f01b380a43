package simulation_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvandessel/recsim/internal/rng"
	"github.com/nvandessel/recsim/internal/simulation"
)

// TestRun_StopsWhenFullyObserved uses goods everybody loves and a budget for
// three consumptions a tick, so a 3x3 market is fully reviewed after one tick.
func TestRun_StopsWhenFullyObserved(t *testing.T) {
	p := simulation.DefaultParams()
	p.Budget = 18
	p.Ticks = 5

	src := rng.New(1, 0)
	_, reviews, err := simulation.MarketFromRows([][]float64{
		{100, 100, 100},
		{100, 100, 100},
		{100, 100, 100},
	}, signedScale(t), p.Budget, src)
	require.NoError(t, err)

	res, err := simulation.New(p, src).Run(context.Background(), reviews)
	require.NoError(t, err)

	assert.True(t, res.StoppedEarly)
	require.Len(t, res.Ticks, 1)
	assert.Equal(t, 9, res.Ticks[0].Consumed)
	assert.Equal(t, 9, res.Ticks[0].Considered)
	assert.Equal(t, 0, res.Ticks[0].Unobserved)
	assert.True(t, reviews.FullyObserved())

	for i := 0; i < 3; i++ {
		for g := 0; g < 3; g++ {
			v, ok := reviews.Cell(i, g).Get()
			require.True(t, ok)
			assert.Equal(t, 1, v)
		}
		assert.Equal(t, 300.0, reviews.Population().At(i).GeneratedUtility())
	}
}

// TestRun_NothingAcceptedLeavesMatrixEmpty sets an unreachable acceptance bar.
// Every person considers each good once per tick and then runs out of
// recommendations; no review is ever written.
func TestRun_NothingAcceptedLeavesMatrixEmpty(t *testing.T) {
	p := simulation.DefaultParams()
	p.Ticks = 3
	p.AcceptanceThreshold = math.Inf(1)

	src := rng.New(2, 0)
	_, reviews, err := simulation.MarketFromRows([][]float64{
		{1, 2, 3, 4},
		{4, 3, 2, 1},
		{0, 9, 0, 9},
		{5, 5, 5, 5},
	}, signedScale(t), p.Budget, src)
	require.NoError(t, err)

	res, err := simulation.New(p, src).Run(context.Background(), reviews)
	require.NoError(t, err)

	assert.False(t, res.StoppedEarly)
	require.Len(t, res.Ticks, 3)
	for _, ts := range res.Ticks {
		assert.Equal(t, simulation.TickStats{Tick: ts.Tick, Considered: 16, Unobserved: 16}, ts)
	}
	for _, person := range reviews.Population().People() {
		assert.Zero(t, person.Reviews().Observed())
		assert.Zero(t, person.GeneratedUtility())
		assert.Equal(t, person.Allowance(), person.Budget())
	}
}

// TestRun_RecommendsFromTickSnapshot gives twelve people the same love for
// every good and a budget for one consumption per tick. Recommendations are
// drawn from the empty pre-tick matrix, so the good P0 rated during the tick
// must not be offered to everyone after P0.
func TestRun_RecommendsFromTickSnapshot(t *testing.T) {
	const size = 12
	p := simulation.DefaultParams()
	p.Ticks = 1
	p.Budget = 6
	p.NoiseMean = 0
	p.NoiseStd = 0
	p.AcceptanceThreshold = 0

	utilities := make([][]float64, size)
	for i := range utilities {
		utilities[i] = make([]float64, size)
		for g := range utilities[i] {
			utilities[i][g] = 100
		}
	}

	for seed := uint64(1); seed <= 5; seed++ {
		src := rng.New(seed, 0)
		_, reviews, err := simulation.MarketFromRows(utilities, signedScale(t), p.Budget, src)
		require.NoError(t, err)

		res, err := simulation.New(p, src).Run(context.Background(), reviews)
		require.NoError(t, err)
		require.Len(t, res.Ticks, 1)
		assert.Equal(t, size, res.Ticks[0].Consumed)

		consumed := make([]int, size)
		for i := range consumed {
			require.Equal(t, 1, reviews.Row(i).Observed(), "seed %d person %d", seed, i)
			for g := 0; g < size; g++ {
				if reviews.Cell(i, g).IsSet() {
					consumed[i] = g
				}
			}
		}

		copied := 0
		for _, g := range consumed[1:] {
			if g == consumed[0] {
				copied++
			}
		}
		assert.Less(t, copied, size-1, "seed %d: every later person consumed P0's good %d", seed, consumed[0])
	}
}

func TestRun_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := simulation.NewRunner(nil, nil).Run(ctx, simulation.DefaultScenario("canceled", 5, 1), 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScenario_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*simulation.Scenario)
	}{
		{"zero size", func(sc *simulation.Scenario) { sc.Size = 0 }},
		{"zero utility std", func(sc *simulation.Scenario) { sc.UtilityStd = 0 }},
		{"zero ticks", func(sc *simulation.Scenario) { sc.Params.Ticks = 0 }},
		{"zero usage cost", func(sc *simulation.Scenario) { sc.Params.UsageCost = 0 }},
		{"negative noise", func(sc *simulation.Scenario) { sc.Params.NoiseStd = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := simulation.DefaultScenario(tt.name, 5, 1)
			tt.mutate(&sc)
			assert.Error(t, sc.Validate())
		})
	}
	assert.NoError(t, simulation.DefaultScenario("ok", 5, 1).Validate())
}
