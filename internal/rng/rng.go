// Package rng provides the single seedable random source an experiment draws from.
//
// Every stochastic value in a run (utilities, expectation noise, tie-breaking,
// random names, baseline sampling) comes from one Source, so a whole run is
// reproducible from its seed.
package rng

import (
	"math/rand/v2"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"
)

// Source is a deterministic random generator. It is not safe for concurrent
// use; each experiment owns its own Source.
type Source struct {
	src rand.Source
	r   *rand.Rand
}

// New returns a Source seeded with seed. Different stream values yield
// independent sequences for the same seed.
func New(seed, stream uint64) *Source {
	src := rand.NewPCG(seed, stream)
	return &Source{src: src, r: rand.New(src)}
}

// Float64 returns a uniform value in [0, 1).
func (s *Source) Float64() float64 {
	return s.r.Float64()
}

// IntN returns a uniform value in [0, n). It panics if n <= 0.
func (s *Source) IntN(n int) int {
	return s.r.IntN(n)
}

// Normal draws one value from Normal(mean, std).
func (s *Source) Normal(mean, std float64) float64 {
	return distuv.Normal{Mu: mean, Sigma: std, Src: s.src}.Rand()
}

// NormalVector draws n independent values from Normal(mean, std).
func (s *Source) NormalVector(n int, mean, std float64) []float64 {
	dist := distuv.Normal{Mu: mean, Sigma: std, Src: s.src}
	out := make([]float64, n)
	for i := range out {
		out[i] = dist.Rand()
	}
	return out
}

// Sample returns k distinct values from [0, n) in random order.
// k is clamped to [0, n].
func (s *Source) Sample(n, k int) []int {
	if k > n {
		k = n
	}
	if k < 0 {
		k = 0
	}
	return s.r.Perm(n)[:k]
}

// Choice returns a uniformly chosen element of values. It panics on an empty slice.
func (s *Source) Choice(values []int) int {
	return values[s.r.IntN(len(values))]
}

// Name returns a random Title-case name of n lowercase ASCII letters.
func (s *Source) Name(n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		c := byte('a' + s.r.IntN(26))
		if i == 0 {
			c -= 'a' - 'A'
		}
		b.WriteByte(c)
	}
	return b.String()
}
