// Package goods picks which good to recommend to a user.
//
// Goods have no state of their own: a good is a column index into the
// review and utility matrices, and its popularity is derived from the
// reviews in that column.
package goods

import (
	"slices"

	"github.com/nvandessel/recsim/internal/matrix"
	"github.com/nvandessel/recsim/internal/people"
	"github.com/nvandessel/recsim/internal/rating"
	"github.com/nvandessel/recsim/internal/rng"
)

// NoRecommendation is the sentinel returned when nothing is left to recommend
// from a matrix of the given width. It equals the number of goods.
func NoRecommendation(m *matrix.ReviewMatrix) int {
	return m.Goods()
}

// Recommender suggests goods using the reviews of a user's most similar peers.
type Recommender struct {
	countNegative bool
	src           *rng.Source
}

// NewRecommender creates a recommender. countNegative selects whether
// negative signed reviews lower a good's popularity or are ignored.
func NewRecommender(countNegative bool, src *rng.Source) *Recommender {
	return &Recommender{countNegative: countNegative, src: src}
}

// RecommendGood returns the good to suggest to user, reading reviews from m.
//
// Candidates are the goods user has not reviewed, minus previouslyRecommended.
// The most popular candidate among user's most similar peers wins, with ties
// broken uniformly at random. When no candidate remains the result is
// NoRecommendation(m).
func (r *Recommender) RecommendGood(user *people.Person, m *matrix.ReviewMatrix, previouslyRecommended []int) int {
	candidates := unusedAndNotRecommended(user.Reviews(), previouslyRecommended)
	if len(candidates) == 0 {
		return NoRecommendation(m)
	}

	similar := m.FindAllMostSimilar(user)
	rows := make([]rating.Row, len(similar))
	for i, p := range similar {
		rows[i] = p.Reviews()
	}

	return candidates[r.FindMostPopular(m.Scale(), rows, candidates)]
}

// FindMostPopular scores each candidate column over rows and returns the
// position in candidates of the most popular one. Equally popular
// candidates are chosen between uniformly at random.
func (r *Recommender) FindMostPopular(scale rating.Scale, rows []rating.Row, candidates []int) int {
	column := make([]rating.Value, len(rows))
	best := 0.0
	var ties []int
	for pos, g := range candidates {
		for i, row := range rows {
			column[i] = row.Get(g)
		}
		score := scale.Popularity(column, r.countNegative)
		switch {
		case len(ties) == 0 || score > best:
			best = score
			ties = append(ties[:0], pos)
		case score == best:
			ties = append(ties, pos)
		}
	}
	return r.src.Choice(ties)
}

func unusedAndNotRecommended(reviews rating.Row, previouslyRecommended []int) []int {
	var out []int
	for _, g := range reviews.Unobserved() {
		if !slices.Contains(previouslyRecommended, g) {
			out = append(out, g)
		}
	}
	return out
}

// GiveRating converts a true utility into a review on scale.
func GiveRating(scale rating.Scale, utility float64) int {
	return scale.Rate(utility)
}
