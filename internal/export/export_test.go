package export

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvandessel/recsim/internal/config"
	"github.com/nvandessel/recsim/internal/experiment"
	"github.com/nvandessel/recsim/internal/matrix"
	"github.com/nvandessel/recsim/internal/people"
	"github.com/nvandessel/recsim/internal/rating"
	"github.com/nvandessel/recsim/internal/rng"
)

var m = rating.Missing

func smallMarket(t *testing.T) (*matrix.UtilityMatrix, *matrix.ReviewMatrix) {
	t.Helper()
	scale, err := rating.New(rating.Params{Scale: 0, UtilityMean: 4, UtilityStd: 2})
	require.NoError(t, err)
	src := rng.New(1, 0)
	pop := people.NewPopulation(
		people.WithReviews("Ann", 10, rating.Row{rating.Of(1), m, rating.Of(-1)}),
		people.WithReviews("Bob", 10, rating.Row{m, rating.Of(0), m}),
	)
	reviews, err := matrix.FromPopulation(pop, 3, scale, src)
	require.NoError(t, err)
	utility := matrix.UtilityFromRows([][]float64{{6.5, 1, 0.25}, {3, 4, 5}}, 4, 2, src)
	return utility, reviews
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriteReviewsCSV_MissingCellsAreEmpty(t *testing.T) {
	_, reviews := smallMarket(t)
	path := filepath.Join(t.TempDir(), ReviewsCSV)
	require.NoError(t, WriteReviewsCSV(path, reviews))

	assert.Equal(t, [][]string{
		{"person", "g0", "g1", "g2"},
		{"Ann", "1", "", "-1"},
		{"Bob", "", "0", ""},
	}, readCSV(t, path))
}

func TestWriteUtilityCSV(t *testing.T) {
	utility, reviews := smallMarket(t)
	path := filepath.Join(t.TempDir(), UtilityCSV)
	require.NoError(t, WriteUtilityCSV(path, utility, reviews))

	records := readCSV(t, path)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Ann", "6.5", "1", "0.25"}, records[1])
	assert.Equal(t, []string{"Bob", "3", "4", "5"}, records[2])
}

func TestWriteMetricsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), MetricsCSV)
	ms := []experiment.Metrics{{MaxUtility: 10}, {MaxUtility: 20}}
	require.NoError(t, WriteMetricsCSV(path, ms, experiment.Average(ms)))

	records := readCSV(t, path)
	require.Len(t, records, 4)
	assert.Equal(t, "experiment", records[0][0])
	assert.Equal(t, "max_utility", records[0][1])
	assert.Len(t, records[0], len(experiment.Fields)+1)
	assert.Equal(t, []string{"0", "10"}, records[1][:2])
	assert.Equal(t, []string{"average", "15"}, records[3][:2])
}

func TestWriteArrow_RoundTrip(t *testing.T) {
	utility, reviews := smallMarket(t)
	dir := t.TempDir()
	require.NoError(t, WriteUtilityArrow(filepath.Join(dir, UtilityArrow), utility, reviews))
	require.NoError(t, WriteReviewsArrow(filepath.Join(dir, ReviewsArrow), reviews))

	f, err := os.Open(filepath.Join(dir, ReviewsArrow))
	require.NoError(t, err)
	defer f.Close()

	r, err := ipc.NewFileReader(f, ipc.WithAllocator(memory.NewGoAllocator()))
	require.NoError(t, err)
	defer r.Close()
	require.Equal(t, 1, r.NumRecords())

	rec, err := r.Record(0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rec.NumRows())
	assert.Equal(t, int64(4), rec.NumCols())

	names := rec.Column(0).(*array.String)
	assert.Equal(t, "Ann", names.Value(0))

	g0 := rec.Column(1).(*array.Int64)
	assert.Equal(t, int64(1), g0.Value(0))
	assert.True(t, g0.IsNull(1))
	g2 := rec.Column(3).(*array.Int64)
	assert.Equal(t, int64(-1), g2.Value(0))

	uf, err := os.Open(filepath.Join(dir, UtilityArrow))
	require.NoError(t, err)
	defer uf.Close()
	ur, err := ipc.NewFileReader(uf)
	require.NoError(t, err)
	defer ur.Close()
	urec, err := ur.Record(0)
	require.NoError(t, err)
	assert.Equal(t, 5.0, urec.Column(3).(*array.Float64).Value(1))
}

func TestWritePromTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recsim.prom")
	require.NoError(t, WritePromTextfile(path, "base", experiment.Metrics{PercentOptimal: 87.5}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `recsim_percent_optimal{scenario="base"} 87.5`)
	assert.Contains(t, text, "# TYPE recsim_ticks_run gauge")
}

func TestWrite_FromOutcome(t *testing.T) {
	cfg := config.Default()
	cfg.MatrixSize = 8
	cfg.NumberOfTicks = 3
	cfg.NumberOfExperiments = 2
	cfg.AnalyzeNGoods = 4
	out, err := experiment.NewRunner(experiment.ScenarioFromConfig("export", cfg), experiment.OptionsFromConfig(cfg), nil, nil).
		Run(context.Background())
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "results")
	written, err := Write(out, Options{Dir: dir, CSV: true, Arrow: true, PromTextfile: "recsim.prom"})
	require.NoError(t, err)

	var names []string
	for _, p := range written {
		names = append(names, filepath.Base(p))
		assert.True(t, strings.HasPrefix(p, dir))
	}
	assert.Equal(t, []string{MetricsCSV, UtilityCSV, ReviewsCSV, UtilityArrow, ReviewsArrow, "recsim.prom"}, names)

	reviews := readCSV(t, filepath.Join(dir, ReviewsCSV))
	assert.Len(t, reviews, 9, "header plus one row per market person")
}

func TestWrite_NothingSelected(t *testing.T) {
	written, err := Write(&experiment.Outcome{}, Options{Dir: t.TempDir()})
	require.NoError(t, err)
	assert.Empty(t, written)
}
