package matrix

import (
	"math"

	"github.com/nvandessel/recsim/internal/order"
	"github.com/nvandessel/recsim/internal/people"
)

// Scores returns user's similarity to every row. noisy carries a uniform
// [0, 1) tie-breaker per row so equal scores rank in random order; exact is
// the plain agreement count.
func (m *ReviewMatrix) Scores(user *people.Person) (noisy []float64, exact []int) {
	noisy = make([]float64, len(m.rows))
	exact = make([]int, len(m.rows))
	reviews := user.Reviews()
	for i, row := range m.rows {
		exact[i] = m.scale.Similarity(row, reviews)
		noisy[i] = float64(exact[i]) + m.src.Float64()
	}
	return noisy, exact
}

// FindMostSimilar returns the single person whose reviews best match user's,
// skipping user's own row when it ranks first.
func (m *ReviewMatrix) FindMostSimilar(user *people.Person) *people.Person {
	noisy, _ := m.Scores(user)
	return m.pop.At(m.bestMatch(user, noisy))
}

// FindAllMostSimilar returns every person tied with the best match.
//
// The best match is the top-ranked row by noisy score, or the runner-up when
// the top row is user's own. The tie class is then taken on the noiseless
// score: the best match's noisy score truncated toward zero, compared against
// every other row's exact agreement count. user's own row is never included.
func (m *ReviewMatrix) FindAllMostSimilar(user *people.Person) []*people.Person {
	if len(m.rows) == 0 {
		return nil
	}
	noisy, exact := m.Scores(user)
	best := m.bestMatch(user, noisy)
	target := int(math.Trunc(noisy[best]))

	var similar []*people.Person
	for i, score := range exact {
		p := m.pop.At(i)
		if p == user || score != target {
			continue
		}
		similar = append(similar, p)
	}
	return similar
}

func (m *ReviewMatrix) bestMatch(user *people.Person, noisy []float64) int {
	top := order.Largest(len(noisy), 2, func(i int) float64 { return noisy[i] })
	if m.pop.At(top[0]) == user {
		return top[len(top)-1]
	}
	return top[0]
}
