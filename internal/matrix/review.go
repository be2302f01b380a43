package matrix

import (
	"fmt"
	"strings"

	"github.com/nvandessel/recsim/internal/constants"
	"github.com/nvandessel/recsim/internal/people"
	"github.com/nvandessel/recsim/internal/rating"
	"github.com/nvandessel/recsim/internal/rng"
)

// ReviewMatrix is the observable, sparse signal: row i, column g is user i's
// review of good g, or unobserved.
//
// The matrix owns the review rows. Every person in its population is bound
// to the matching row, so person.Rate and ReviewMatrix.Rate write the same cell.
type ReviewMatrix struct {
	pop   *people.Population
	rows  []rating.Row
	goods int
	scale rating.Scale
	src   *rng.Source
}

// NewReviewMatrix builds the review table from pop, binds each person's
// reviews to their matrix row and assigns each person's utility from the
// same row of utility.
func NewReviewMatrix(pop *people.Population, utility *UtilityMatrix, scale rating.Scale, src *rng.Source) (*ReviewMatrix, error) {
	users, goods := utility.Dims()
	if pop.Len() != users {
		return nil, fmt.Errorf("population of %d does not match %d utility rows", pop.Len(), users)
	}

	m, err := FromPopulation(pop, goods, scale, src)
	if err != nil {
		return nil, err
	}
	for i, person := range pop.People() {
		person.SetUtility(utility.Row(i))
	}
	return m, nil
}

// FromPopulation builds the review table from the people's current reviews
// without touching their utilities.
func FromPopulation(pop *people.Population, goods int, scale rating.Scale, src *rng.Source) (*ReviewMatrix, error) {
	table := pop.ReviewTable()
	rows := make([]rating.Row, len(table))
	for i, r := range table {
		if len(r) != goods {
			return nil, fmt.Errorf("%s has %d reviews, want %d", pop.At(i).Name(), len(r), goods)
		}
		rows[i] = r.Clone()
	}
	if err := pop.BindRows(rows); err != nil {
		return nil, err
	}
	return &ReviewMatrix{pop: pop, rows: rows, goods: goods, scale: scale, src: src}, nil
}

func (m *ReviewMatrix) String() string {
	var b strings.Builder
	for _, row := range m.rows {
		for g, c := range row {
			if g > 0 {
				b.WriteByte(' ')
			}
			if v, ok := c.Get(); ok {
				fmt.Fprintf(&b, "%2d", v)
			} else {
				b.WriteString(" " + constants.BlankRep)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Population returns the people bound to the rows.
func (m *ReviewMatrix) Population() *people.Population { return m.pop }

// Scale returns the rating system used to compare rows.
func (m *ReviewMatrix) Scale() rating.Scale { return m.scale }

// Goods returns the number of columns.
func (m *ReviewMatrix) Goods() int { return m.goods }

// Users returns the number of rows.
func (m *ReviewMatrix) Users() int { return len(m.rows) }

// Row returns user i's review row. It is the same view the person holds.
func (m *ReviewMatrix) Row(i int) rating.Row { return m.rows[i] }

// Rows returns every row in population order.
func (m *ReviewMatrix) Rows() []rating.Row { return m.rows }

// Cell returns user i's review of good g.
func (m *ReviewMatrix) Cell(i, g int) rating.Value { return m.rows[i].Get(g) }

// Rate writes user i's rating of good g. A cell is written at most once.
func (m *ReviewMatrix) Rate(i, g, v int) error {
	if err := m.rows[i].Set(g, v); err != nil {
		return fmt.Errorf("row %d good %d: %w", i, g, err)
	}
	return nil
}

// RowsExcluding returns every row except those belonging to skip.
func (m *ReviewMatrix) RowsExcluding(skip ...*people.Person) []rating.Row {
	out := make([]rating.Row, 0, len(m.rows))
	for i, row := range m.rows {
		excluded := false
		for _, p := range skip {
			if m.pop.At(i) == p {
				excluded = true
				break
			}
		}
		if !excluded {
			out = append(out, row)
		}
	}
	return out
}

// Unobserved counts the cells nobody has reviewed yet.
func (m *ReviewMatrix) Unobserved() int {
	n := 0
	for _, row := range m.rows {
		n += m.goods - row.Observed()
	}
	return n
}

// FullyObserved reports whether every cell has been reviewed.
func (m *ReviewMatrix) FullyObserved() bool {
	for _, row := range m.rows {
		if row.Observed() < m.goods {
			return false
		}
	}
	return true
}

// AddUser appends person with a fresh, unobserved row and binds the person's
// reviews to it.
func (m *ReviewMatrix) AddUser(person *people.Person) {
	row := rating.NewRow(m.goods)
	person.BindReviews(row)
	m.pop.Append(person)
	m.rows = append(m.rows, row)
}

// RemoveUser detaches person and their row. Other rows are untouched. It
// returns the row index the person occupied.
func (m *ReviewMatrix) RemoveUser(person *people.Person) (int, error) {
	i, err := m.pop.Remove(person)
	if err != nil {
		return -1, err
	}
	m.rows = append(m.rows[:i:i], m.rows[i+1:]...)
	return i, nil
}

// Snapshot returns a deep copy: a cloned population bound to copied rows.
// Writes to the live matrix after the snapshot are not visible in it.
func (m *ReviewMatrix) Snapshot() *ReviewMatrix {
	clones := make([]*people.Person, m.pop.Len())
	rows := make([]rating.Row, len(m.rows))
	for i, p := range m.pop.People() {
		clones[i] = p.Clone()
		rows[i] = clones[i].Reviews()
	}
	return &ReviewMatrix{
		pop:   people.NewPopulation(clones...),
		rows:  rows,
		goods: m.goods,
		scale: m.scale,
		src:   m.src,
	}
}
