// Package analysis measures the outcome of a finished simulation.
//
// Every function is pure: it reads people and review rows and never writes
// to them. Popularity here always counts negative reviews, unlike the
// recommender which may be configured to ignore them.
package analysis

import (
	"slices"

	"github.com/nvandessel/recsim/internal/matrix"
	"github.com/nvandessel/recsim/internal/order"
	"github.com/nvandessel/recsim/internal/people"
	"github.com/nvandessel/recsim/internal/rating"
)

// FindOptimalUtility returns the sum of p's m highest true utilities, where m
// is the number of goods p reviewed. It is the best p could have done with
// the same number of consumptions.
func FindOptimalUtility(p *people.Person) float64 {
	u := p.Utilities()
	top := order.Largest(len(u), p.Reviews().Observed(), func(i int) float64 { return u[i] })
	total := 0.0
	for _, g := range top {
		total += u[g]
	}
	return total
}

// IsWellServed reports whether p realized at least percent of their optimal utility.
func IsWellServed(p *people.Person, percent float64) bool {
	return p.GeneratedUtility() >= FindOptimalUtility(p)*percent
}

// Popularity scores every good from the given review rows.
func Popularity(scale rating.Scale, rows []rating.Row, goods int) []float64 {
	scores := make([]float64, goods)
	column := make([]rating.Value, len(rows))
	for g := range scores {
		for i, row := range rows {
			column[i] = row.Get(g)
		}
		scores[g] = scale.Popularity(column, true)
	}
	return scores
}

// FindMostPopular returns the n most popular goods, most popular first.
// Equally popular goods are ordered by index.
func FindMostPopular(scale rating.Scale, rows []rating.Row, goods, n int) []int {
	scores := Popularity(scale, rows, goods)
	return order.Largest(goods, n, func(g int) float64 { return scores[g] })
}

// FindLeastPopular returns the n least popular goods, least popular first.
func FindLeastPopular(scale rating.Scale, rows []rating.Row, goods, n int) []int {
	scores := Popularity(scale, rows, goods)
	return order.Smallest(goods, n, func(g int) float64 { return scores[g] })
}

// NumMostPopularUsed counts how many of the n most popular goods p reviewed.
func NumMostPopularUsed(p *people.Person, scale rating.Scale, rows []rating.Row, n int) int {
	reviews := p.Reviews()
	count := 0
	for _, g := range FindMostPopular(scale, rows, len(reviews), n) {
		if reviews.Get(g).IsSet() {
			count++
		}
	}
	return count
}

// AllMostPopularUsed reports whether p reviewed every one of the n most popular goods.
func AllMostPopularUsed(p *people.Person, scale rating.Scale, rows []rating.Row, n int) bool {
	return NumMostPopularUsed(p, scale, rows, n) == n
}

// FindPopularUtility returns what p would have realized by consuming the most
// popular goods instead, taking as many goods as p actually reviewed.
// Popularity is judged by everyone else's reviews in m.
func FindPopularUtility(p *people.Person, m *matrix.ReviewMatrix) float64 {
	rows := m.RowsExcluding(p)
	total := 0.0
	for _, g := range FindMostPopular(m.Scale(), rows, m.Goods(), p.Reviews().Observed()) {
		total += p.Utility(g)
	}
	return total
}

// TotalOptimalUtility sums FindOptimalUtility over the population.
func TotalOptimalUtility(pop *people.Population) float64 {
	total := 0.0
	for _, p := range pop.People() {
		total += FindOptimalUtility(p)
	}
	return total
}

// TotalGeneratedUtility sums the realized utility of the population.
func TotalGeneratedUtility(pop *people.Population) float64 {
	total := 0.0
	for _, p := range pop.People() {
		total += p.GeneratedUtility()
	}
	return total
}

// PercentWellServed returns the percentage of people who are well served.
func PercentWellServed(pop *people.Population, percent float64) float64 {
	n := 0
	for _, p := range pop.People() {
		if IsWellServed(p, percent) {
			n++
		}
	}
	return Percent(float64(n), float64(pop.Len()))
}

// PercentAllMostPopularUsed returns the percentage of persons who reviewed
// all of the n most popular goods, popularity being judged over rows.
func PercentAllMostPopularUsed(persons []*people.Person, scale rating.Scale, rows []rating.Row, n int) float64 {
	count := 0
	for _, p := range persons {
		if AllMostPopularUsed(p, scale, rows, n) {
			count++
		}
	}
	return Percent(float64(count), float64(len(persons)))
}

// CountAmong counts the entries of goods that appear in set. Repeated
// entries are counted each time.
func CountAmong(goods, set []int) int {
	n := 0
	for _, g := range goods {
		if slices.Contains(set, g) {
			n++
		}
	}
	return n
}

// Ratio returns a/b, or 0 when b is 0.
func Ratio(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// Percent returns 100*a/b, or 0 when b is 0.
func Percent(a, b float64) float64 {
	return 100 * Ratio(a, b)
}
