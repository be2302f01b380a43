// Package rating defines review cells and the rating systems users rate goods with.
package rating

import (
	"errors"
	"strconv"
)

// ErrAlreadyRated is returned when a review cell that is already set is written again.
// A (person, good) pair is rated at most once per experiment.
var ErrAlreadyRated = errors.New("good already rated")

// Value is a single review cell: either a rating or unobserved.
// The zero Value is unobserved, which is distinct from a rating of 0.
type Value struct {
	v   int
	set bool
}

// Missing is the unobserved review cell.
var Missing = Value{}

// Of returns a set review cell holding v.
func Of(v int) Value {
	return Value{v: v, set: true}
}

// Get returns the rating and whether the cell is set.
func (r Value) Get() (int, bool) {
	return r.v, r.set
}

// IsSet reports whether the good has been reviewed.
func (r Value) IsSet() bool {
	return r.set
}

// String renders the rating, or "" when unobserved.
func (r Value) String() string {
	if !r.set {
		return ""
	}
	return strconv.Itoa(r.v)
}

// Row is one user's review vector, indexed by good.
//
// A Row is a view: copying the slice header shares the cells, so a write
// through any holder is visible to every other holder. Use Clone for an
// independent copy.
type Row []Value

// NewRow returns a row of n unobserved cells.
func NewRow(n int) Row {
	return make(Row, n)
}

// RowOf builds a fully observed row from raw ratings.
func RowOf(values ...int) Row {
	row := make(Row, len(values))
	for i, v := range values {
		row[i] = Of(v)
	}
	return row
}

// Get returns the cell for good g.
func (r Row) Get(g int) Value {
	return r[g]
}

// Set writes a rating for good g. Setting a cell twice returns ErrAlreadyRated
// and leaves the original rating in place.
func (r Row) Set(g, v int) error {
	if r[g].set {
		return ErrAlreadyRated
	}
	r[g] = Of(v)
	return nil
}

// Clone returns an independent copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	copy(out, r)
	return out
}

// Observed returns how many goods have been reviewed.
func (r Row) Observed() int {
	n := 0
	for _, c := range r {
		if c.set {
			n++
		}
	}
	return n
}

// Unobserved returns the indexes of goods without a review, in ascending order.
func (r Row) Unobserved() []int {
	var out []int
	for g, c := range r {
		if !c.set {
			out = append(out, g)
		}
	}
	return out
}

// Sum adds every set rating.
func (r Row) Sum() int {
	total := 0
	for _, c := range r {
		if c.set {
			total += c.v
		}
	}
	return total
}
