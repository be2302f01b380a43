package experiment

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvandessel/recsim/internal/config"
	"github.com/nvandessel/recsim/internal/logging"
)

func smallConfig() *config.Config {
	cfg := config.Default()
	cfg.MatrixSize = 12
	cfg.NumberOfTicks = 4
	cfg.NumberOfExperiments = 3
	cfg.AnalyzeNGoods = 6
	return cfg
}

func TestTopCounts(t *testing.T) {
	tests := []struct {
		nGoods, goods       int
		one, quarter, half int
	}{
		{10, 20, 1, 3, 5},
		{4, 20, 1, 1, 2},
		{1, 20, 1, 1, 1},
		{10, 2, 1, 2, 2},
		{10, 0, 0, 0, 0},
	}
	for _, tt := range tests {
		one, quarter, half := Analysis{NGoods: tt.nGoods}.TopCounts(tt.goods)
		assert.Equal(t, []int{tt.one, tt.quarter, tt.half}, []int{one, quarter, half},
			"nGoods=%d goods=%d", tt.nGoods, tt.goods)
	}
}

func TestAverage(t *testing.T) {
	assert.Equal(t, Metrics{}, Average(nil))

	avg := Average([]Metrics{
		{MaxUtility: 10, PercentOptimal: 50, TicksRun: 4},
		{MaxUtility: 20, PercentOptimal: 100, TicksRun: 2},
	})
	assert.Equal(t, 15.0, avg.MaxUtility)
	assert.Equal(t, 75.0, avg.PercentOptimal)
	assert.Equal(t, 3.0, avg.TicksRun)
}

func TestFields_CoverEveryMetric(t *testing.T) {
	seen := map[string]bool{}
	var m Metrics
	for i, f := range Fields {
		assert.False(t, seen[f.Name], "duplicate field %s", f.Name)
		seen[f.Name] = true
		*f.ptr(&m) = float64(i + 1)
	}
	// Every field writes a distinct struct member.
	values := m.Values()
	for i, v := range values {
		assert.Equal(t, float64(i+1), v, Fields[i].Name)
	}
}

func TestScenarioFromConfig(t *testing.T) {
	cfg := smallConfig()
	cfg.StrictBudget = true
	cfg.RatingSystemScale = 5
	threshold := 3.0
	cfg.AcceptanceThreshold = &threshold

	sc := ScenarioFromConfig("small", cfg)
	require.NoError(t, sc.Validate())
	assert.Equal(t, 12, sc.Size)
	assert.Equal(t, 4, sc.Params.Ticks)
	assert.Equal(t, 3.0, sc.Params.AcceptanceThreshold)
	assert.Equal(t, cfg.UtilityMean, sc.Params.NoiseMean)
	assert.Equal(t, cfg.UtilityStd, sc.Params.NoiseStd)
	assert.True(t, sc.Params.Strict)
	assert.Equal(t, 5, sc.Rating.Scale)

	opts := OptionsFromConfig(cfg)
	assert.Equal(t, 3, opts.Experiments)
	assert.Equal(t, 6, opts.Analysis.NGoods)
}

func TestRunner_Run(t *testing.T) {
	cfg := smallConfig()
	out, err := NewRunner(ScenarioFromConfig("run", cfg), OptionsFromConfig(cfg), nil, nil).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, out.Metrics, 3)
	require.NotNil(t, out.Last)
	assert.Len(t, out.Last.Reviews.Rows(), 12, "probe is detached from the kept result")

	for i, m := range out.Metrics {
		assert.LessOrEqual(t, m.ActualUtility, m.MaxUtility+1e-9, "experiment %d", i)
		assert.GreaterOrEqual(t, m.PercentWellServed, 0.0)
		assert.LessOrEqual(t, m.PercentWellServed, 100.0)
		assert.InDelta(t, m.ProbeActualUtility-m.RandomUtility, m.RecommenderGain, 1e-9)
		assert.LessOrEqual(t, m.ProbeActualUtility, m.ProbeOptimalUtility+1e-9)
		assert.LessOrEqual(t, m.TicksRun, 4.0)
	}
	assert.Equal(t, Average(out.Metrics), out.Average)
}

func TestRunner_DeterministicAcrossWorkers(t *testing.T) {
	cfg := smallConfig()
	sc := ScenarioFromConfig("det", cfg)

	serial := OptionsFromConfig(cfg)
	serial.Workers = 1
	parallel := OptionsFromConfig(cfg)
	parallel.Workers = 3

	a, err := NewRunner(sc, serial, nil, nil).Run(context.Background())
	require.NoError(t, err)
	b, err := NewRunner(sc, parallel, nil, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, a.Metrics, b.Metrics)
}

func TestRunner_DecisionsInExperimentOrder(t *testing.T) {
	cfg := smallConfig()
	cfg.NumberOfExperiments = 5
	sc := ScenarioFromConfig("decisions", cfg)

	trace := func(workers int) []byte {
		t.Helper()
		dir := t.TempDir()
		decisions := logging.NewDecisionLogger(dir, "debug")
		require.NotNil(t, decisions)

		opts := OptionsFromConfig(cfg)
		opts.Workers = workers
		_, err := NewRunner(sc, opts, nil, decisions).Run(context.Background())
		require.NoError(t, err)
		decisions.Close()

		data, err := os.ReadFile(filepath.Join(dir, logging.DecisionsFile))
		require.NoError(t, err)
		require.NotEmpty(t, data)
		return data
	}

	assert.Equal(t, string(trace(1)), string(trace(4)))
}

func TestRunner_Errors(t *testing.T) {
	cfg := smallConfig()
	opts := OptionsFromConfig(cfg)
	opts.Experiments = 0
	_, err := NewRunner(ScenarioFromConfig("none", cfg), opts, nil, nil).Run(context.Background())
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewRunner(ScenarioFromConfig("canceled", cfg), OptionsFromConfig(cfg), nil, nil).Run(ctx)
	assert.Error(t, err)
}
