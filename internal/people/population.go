package people

import (
	"fmt"
	"strings"

	"github.com/nvandessel/recsim/internal/constants"
	"github.com/nvandessel/recsim/internal/rating"
	"github.com/nvandessel/recsim/internal/rng"
)

// Population is an ordered list of people. Order is significant: a person's
// position is their row in the utility and review matrices.
type Population struct {
	people []*Person
}

// NewPopulation wraps an existing list of people.
func NewPopulation(people ...*Person) *Population {
	return &Population{people: people}
}

// Generate creates size people with distinct random names, no reviews and
// the given per-tick allowance.
func Generate(size, goods, allowance int, src *rng.Source) *Population {
	seen := make(map[string]bool, size)
	pop := make([]*Person, 0, size)
	for len(pop) < size {
		name := src.Name(constants.NameLength)
		if seen[name] {
			continue
		}
		seen[name] = true
		pop = append(pop, New(name, allowance, goods))
	}
	return &Population{people: pop}
}

func (p *Population) String() string {
	lines := make([]string, len(p.people))
	for i, person := range p.people {
		lines[i] = person.String()
	}
	return strings.Join(lines, "\n")
}

// Len returns the number of people.
func (p *Population) Len() int { return len(p.people) }

// At returns the person at row i.
func (p *Population) At(i int) *Person { return p.people[i] }

// People returns the people in row order. The slice must not be modified.
func (p *Population) People() []*Person { return p.people }

// Index returns the row of person, or -1.
func (p *Population) Index(person *Person) int {
	for i, q := range p.people {
		if q == person {
			return i
		}
	}
	return -1
}

// Append adds a person as the last row.
func (p *Population) Append(person *Person) {
	p.people = append(p.people, person)
}

// Remove deletes person and returns the row it occupied.
func (p *Population) Remove(person *Person) (int, error) {
	i := p.Index(person)
	if i < 0 {
		return -1, fmt.Errorf("removing %s: %w", person.Name(), ErrUnknownPerson)
	}
	p.people = append(p.people[:i:i], p.people[i+1:]...)
	return i, nil
}

// ReviewTable stacks every person's review row in row order. The rows are the
// people's own views, not copies.
func (p *Population) ReviewTable() []rating.Row {
	rows := make([]rating.Row, len(p.people))
	for i, person := range p.people {
		rows[i] = person.Reviews()
	}
	return rows
}

// BindRows re-points each person's reviews at the matching row of an
// externally owned table so that writes through the table and through the
// person stay consistent.
func (p *Population) BindRows(rows []rating.Row) error {
	if len(rows) != len(p.people) {
		return fmt.Errorf("binding %d rows to %d people", len(rows), len(p.people))
	}
	for i, person := range p.people {
		person.BindReviews(rows[i])
	}
	return nil
}

// ResetBudgets restores every person's allowance.
func (p *Population) ResetBudgets() {
	for _, person := range p.people {
		person.ResetBudget()
	}
}
