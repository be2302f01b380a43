// Package people models the users of the simulated market.
//
// A Person's reviews are a rating.Row view. Once a Population is bound to a
// review matrix, every Person reads and writes the matrix's own cells, so a
// rating written through the Person is the rating stored in the matrix.
package people

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nvandessel/recsim/internal/constants"
	"github.com/nvandessel/recsim/internal/rating"
	"github.com/nvandessel/recsim/internal/rng"
)

// ErrUnknownPerson is returned when a person is not part of a population.
var ErrUnknownPerson = errors.New("person not in population")

// Person is one user: a per-tick budget, a review vector and a hidden utility vector.
type Person struct {
	name             string
	allowance        int
	budget           int
	reviews          rating.Row
	utility          []float64
	generatedUtility float64
}

// New creates a person with an unobserved review for each of goods and a full budget.
// Utility is assigned later with SetUtility, or drawn up front with Create.
func New(name string, allowance, goods int) *Person {
	return &Person{
		name:      name,
		allowance: allowance,
		budget:    allowance,
		reviews:   rating.NewRow(goods),
	}
}

// Create makes a person whose utility is drawn from Normal(mean, std).
func Create(name string, allowance, goods int, src *rng.Source, mean, std float64) *Person {
	p := New(name, allowance, goods)
	p.utility = src.NormalVector(goods, mean, std)
	return p
}

// WithReviews creates a person from an existing review row. The row is used
// as-is, so the caller's slice becomes the person's reviews.
func WithReviews(name string, allowance int, reviews rating.Row) *Person {
	return &Person{name: name, allowance: allowance, budget: allowance, reviews: reviews}
}

func (p *Person) String() string {
	return fmt.Sprintf("%s's reviews: %s", p.name, formatRow(p.reviews))
}

// Name returns the display name.
func (p *Person) Name() string { return p.name }

// Budget returns what is left of this tick's allowance.
func (p *Person) Budget() int { return p.budget }

// Allowance returns the budget restored at the end of every tick.
func (p *Person) Allowance() int { return p.allowance }

// Spend deducts cost from the budget. Callers check affordability first.
func (p *Person) Spend(cost int) { p.budget -= cost }

// ResetBudget restores the full per-tick allowance.
func (p *Person) ResetBudget() { p.budget = p.allowance }

// Reviews returns the person's review row. The row is a view onto the
// backing storage: writes through it are the person's reviews.
func (p *Person) Reviews() rating.Row { return p.reviews }

// Review returns the person's review of good g.
func (p *Person) Review(g int) rating.Value { return p.reviews.Get(g) }

// Rate records the person's rating of good g. A good is rated at most once.
func (p *Person) Rate(g, v int) error {
	if err := p.reviews.Set(g, v); err != nil {
		return fmt.Errorf("%s rating good %d: %w", p.name, g, err)
	}
	return nil
}

// BindReviews points the person's reviews at row, typically a row owned by a
// review matrix. The previous review storage is no longer referenced.
func (p *Person) BindReviews(row rating.Row) { p.reviews = row }

// Utility returns the true utility of good g.
func (p *Person) Utility(g int) float64 { return p.utility[g] }

// Utilities returns the true utility vector. It must not be modified.
func (p *Person) Utilities() []float64 { return p.utility }

// SetUtility assigns the true utility vector. The values are copied.
func (p *Person) SetUtility(u []float64) {
	p.utility = append([]float64(nil), u...)
}

// GeneratedUtility returns the true utility realized through consumption so far.
func (p *Person) GeneratedUtility() float64 { return p.generatedUtility }

// AddUtility accumulates realized utility.
func (p *Person) AddUtility(u float64) { p.generatedUtility += u }

// Clone returns an independent copy with its own review storage.
func (p *Person) Clone() *Person {
	c := *p
	c.reviews = p.reviews.Clone()
	return &c
}

func formatRow(row rating.Row) string {
	parts := make([]string, len(row))
	for i, c := range row {
		if v, ok := c.Get(); ok {
			parts[i] = fmt.Sprintf("%2d", v)
		} else {
			parts[i] = " " + constants.BlankRep
		}
	}
	return "[" + strings.Join(parts, " ") + "]"
}
