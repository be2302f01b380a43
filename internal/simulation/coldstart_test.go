package simulation_test

import (
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvandessel/recsim/internal/constants"
	"github.com/nvandessel/recsim/internal/matrix"
	"github.com/nvandessel/recsim/internal/people"
	"github.com/nvandessel/recsim/internal/rating"
	"github.com/nvandessel/recsim/internal/rng"
	"github.com/nvandessel/recsim/internal/simulation"
)

func warmMarket(t *testing.T, size int, seed uint64) (*simulation.Simulator, *matrix.UtilityMatrix, *matrix.ReviewMatrix) {
	t.Helper()
	sc := simulation.DefaultScenario("warm", size, seed)
	scale, err := sc.Scale()
	require.NoError(t, err)

	src := rng.New(seed, 0)
	sim := simulation.New(sc.Params, src)
	utility := matrix.NewUtilityMatrix(size, size, sc.UtilityMean, sc.UtilityStd, src)
	pop := people.Generate(size, size, sc.Params.Budget, src)
	reviews, err := matrix.NewReviewMatrix(pop, utility, scale, src)
	require.NoError(t, err)

	_, err = sim.Run(context.Background(), reviews)
	require.NoError(t, err)
	return sim, utility, reviews
}

// TestProbe_AddThenDetachRestoresMarket adds a cold-start user to a warm
// market, lets them browse, then detaches them.
//
// Expected: while attached the probe owns the last row of both matrices;
// after detaching, the population size, every other person's reviews and
// every utility row are exactly what they were before.
func TestProbe_AddThenDetachRestoresMarket(t *testing.T) {
	sim, utility, reviews := warmMarket(t, 10, 4)

	beforeRows := make([]rating.Row, reviews.Users())
	beforeUtil := make([][]float64, reviews.Users())
	for i := range beforeRows {
		beforeRows[i] = reviews.Row(i).Clone()
		beforeUtil[i] = slices.Clone(reviews.Population().At(i).Utilities())
	}
	beforeTable := utility.Table()

	res, err := sim.Probe(context.Background(), utility, reviews, constants.ProbeUserName)
	require.NoError(t, err)
	probe := res.Person

	require.Equal(t, 11, reviews.Users())
	users, _ := utility.Dims()
	require.Equal(t, 11, users)
	assert.Same(t, probe, reviews.Population().At(10))
	assert.Equal(t, utility.Row(10), probe.Utilities())
	assert.Equal(t, reviews.Row(10), probe.Reviews())
	assert.Equal(t, constants.ProbeUserName, probe.Name())

	require.NoError(t, simulation.Detach(utility, reviews, probe))

	assert.Equal(t, 10, reviews.Users())
	assert.Equal(t, 10, reviews.Population().Len())
	assert.Equal(t, beforeTable, utility.Table())
	for i := range beforeRows {
		assert.Equal(t, beforeRows[i], reviews.Row(i))
		assert.Equal(t, beforeUtil[i], reviews.Population().At(i).Utilities())
	}

	assert.ErrorIs(t, simulation.Detach(utility, reviews, probe), people.ErrUnknownPerson)
}

// TestProbe_RecordsEveryConsideredGood checks that consumed goods are a
// subset of the considered ones and that the probe never beats its oracle.
func TestProbe_RecordsEveryConsideredGood(t *testing.T) {
	sim, utility, reviews := warmMarket(t, 12, 8)

	res, err := sim.Probe(context.Background(), utility, reviews, "_User")
	require.NoError(t, err)
	probe := res.Person

	require.NotEmpty(t, res.Considered)
	for g, c := range probe.Reviews() {
		if c.IsSet() {
			assert.Contains(t, res.Considered, g)
		}
	}
	assert.Equal(t, probe.Allowance(), probe.Budget())
	assert.LessOrEqual(t, probe.Reviews().Observed(), len(res.Considered))
}

// TestProbe_OtherPeopleUntouched checks that only the probe browses while it
// is attached.
func TestProbe_OtherPeopleUntouched(t *testing.T) {
	sim, utility, reviews := warmMarket(t, 8, 9)

	generated := make([]float64, reviews.Users())
	for i, p := range reviews.Population().People() {
		generated[i] = p.GeneratedUtility()
	}

	_, err := sim.Probe(context.Background(), utility, reviews, "_User")
	require.NoError(t, err)

	for i := range generated {
		assert.Equal(t, generated[i], reviews.Population().At(i).GeneratedUtility())
	}
}
