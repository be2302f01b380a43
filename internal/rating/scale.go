package rating

import (
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"
)

// Similarity policies for the signed scale.
const (
	PolicyBoth     = "both"
	PolicyLikes    = "likes"
	PolicyDislikes = "dislikes"
)

// Scale is a rating system. It decides how true utility becomes a rating,
// how two review rows are compared, and how a column of reviews adds up to
// a popularity score.
type Scale interface {
	// Rate converts a true utility into a rating on the scale.
	Rate(utility float64) int

	// Similarity counts the comparable agreements between two review rows.
	Similarity(a, b Row) int

	// Popularity scores one good from the reviews it received. When
	// countNegative is false the signed scale only counts positive reviews.
	Popularity(column []Value, countNegative bool) float64

	// Neutral is the rating a perfectly average good would receive.
	Neutral() float64

	// Name describes the scale for logs and reports.
	Name() string
}

// Params selects and parameterizes a Scale.
type Params struct {
	// Scale is 0 for the signed {-1, 0, +1} system, or K for an ordinal 1..K system.
	Scale int

	// RatingMean and RatingStd describe how ordinal ratings should be distributed.
	// Out-of-range values fall back to values derived from the scale.
	RatingMean float64
	RatingStd  float64

	// UtilityMean and UtilityStd describe the true utility distribution.
	UtilityMean float64
	UtilityStd  float64

	// Policy selects which signed agreements count toward similarity.
	Policy string
}

// New builds the Scale described by p.
func New(p Params) (Scale, error) {
	if p.UtilityStd <= 0 {
		return nil, fmt.Errorf("utility std must be positive, got %v", p.UtilityStd)
	}
	if p.Scale < 0 {
		return nil, fmt.Errorf("rating scale must be 0 or positive, got %d", p.Scale)
	}
	if p.Scale == 0 {
		policy := p.Policy
		if policy == "" {
			policy = PolicyBoth
		}
		switch policy {
		case PolicyBoth, PolicyLikes, PolicyDislikes:
		default:
			return nil, fmt.Errorf("unknown similarity policy %q", p.Policy)
		}
		return &Signed{Mean: p.UtilityMean, Std: p.UtilityStd, Policy: policy}, nil
	}
	return NewOrdinal(p.Scale, p.RatingMean, p.RatingStd, p.UtilityMean, p.UtilityStd), nil
}

// Signed is the three-valued {-1, 0, +1} rating system.
type Signed struct {
	Mean   float64
	Std    float64
	Policy string
}

// Rate gives +1 above mean+std, -1 below mean-std and 0 otherwise.
func (s *Signed) Rate(utility float64) int {
	switch {
	case utility > s.Mean+s.Std:
		return 1
	case utility < s.Mean-s.Std:
		return -1
	default:
		return 0
	}
}

// Similarity counts goods both rows liked and/or disliked, depending on the policy.
// Neutral ratings never count.
func (s *Signed) Similarity(a, b Row) int {
	likes, dislikes := 0, 0
	for g := range a {
		x, okA := a[g].Get()
		y, okB := b[g].Get()
		if !okA || !okB || x != y {
			continue
		}
		switch x {
		case 1:
			likes++
		case -1:
			dislikes++
		}
	}
	switch s.Policy {
	case PolicyLikes:
		return likes
	case PolicyDislikes:
		return dislikes
	default:
		return likes + dislikes
	}
}

// Popularity sums the ratings, or counts the positive ones when countNegative is false.
func (s *Signed) Popularity(column []Value, countNegative bool) float64 {
	total := 0
	for _, c := range column {
		v, ok := c.Get()
		if !ok {
			continue
		}
		if countNegative {
			total += v
		} else if v > 0 {
			total++
		}
	}
	return float64(total)
}

// Neutral returns 0.
func (s *Signed) Neutral() float64 { return 0 }

// Name returns "signed".
func (s *Signed) Name() string { return "signed" }

// Ordinal is a 1..K rating system. Ratings follow a normal distribution over
// the scale; the utility thresholds separating adjacent ratings are the
// utility quantiles matching that distribution's cumulative bin probabilities.
type Ordinal struct {
	K          int
	Mean       float64
	Std        float64
	thresholds []float64
}

// NewOrdinal builds a 1..k scale. A rating mean outside [0, k] falls back to
// the scale midpoint (k+1)/2, and a non-positive rating std falls back to k/4.
func NewOrdinal(k int, ratingMean, ratingStd, utilityMean, utilityStd float64) *Ordinal {
	if ratingMean < 0 || ratingMean > float64(k) {
		ratingMean = float64(k+1) / 2
	}
	if ratingStd <= 0 {
		ratingStd = float64(k) / 4
	}

	ratings := distuv.Normal{Mu: ratingMean, Sigma: ratingStd}
	utility := distuv.Normal{Mu: utilityMean, Sigma: utilityStd}

	thresholds := make([]float64, 0, k-1)
	for r := 1; r < k; r++ {
		p := ratings.CDF(float64(r) + 0.5)
		thresholds = append(thresholds, utility.Quantile(p))
	}

	return &Ordinal{K: k, Mean: ratingMean, Std: ratingStd, thresholds: thresholds}
}

// Thresholds returns the upper utility bound of ratings 1..K-1.
func (o *Ordinal) Thresholds() []float64 {
	out := make([]float64, len(o.thresholds))
	copy(out, o.thresholds)
	return out
}

// Rate returns the smallest rating whose upper threshold the utility falls under, or K.
func (o *Ordinal) Rate(utility float64) int {
	for i, t := range o.thresholds {
		if utility < t {
			return i + 1
		}
	}
	return o.K
}

// Similarity counts goods both rows rated identically.
func (o *Ordinal) Similarity(a, b Row) int {
	n := 0
	for g := range a {
		x, okA := a[g].Get()
		y, okB := b[g].Get()
		if okA && okB && x == y {
			n++
		}
	}
	return n
}

// Popularity sums the ratings relative to the scale mean, so heavily rated but
// average goods do not outrank well-liked ones.
func (o *Ordinal) Popularity(column []Value, _ bool) float64 {
	total := 0.0
	for _, c := range column {
		if v, ok := c.Get(); ok {
			total += float64(v) - o.Mean
		}
	}
	return total
}

// Neutral returns the rating mean.
func (o *Ordinal) Neutral() float64 { return o.Mean }

// Name returns "ordinal(1..K)".
func (o *Ordinal) Name() string { return fmt.Sprintf("ordinal(1..%d)", o.K) }
