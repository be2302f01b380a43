// Package matrix holds the two tables behind a simulated market: the hidden
// utility matrix and the observable review matrix.
package matrix

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/nvandessel/recsim/internal/people"
	"github.com/nvandessel/recsim/internal/rng"
)

// UtilityMatrix is the ground truth: row i, column g is user i's true utility
// for good g. Rows are only ever appended (new users) or dropped (detached
// probes); existing values never change.
type UtilityMatrix struct {
	data *mat.Dense
	mean float64
	std  float64
	src  *rng.Source
}

// NewUtilityMatrix draws a users x goods matrix of independent Normal(mean, std) values.
func NewUtilityMatrix(users, goods int, mean, std float64, src *rng.Source) *UtilityMatrix {
	values := src.NormalVector(users*goods, mean, std)
	return &UtilityMatrix{
		data: mat.NewDense(users, goods, values),
		mean: mean,
		std:  std,
		src:  src,
	}
}

// UtilityFromRows builds a utility matrix from explicit rows, mainly for tests.
func UtilityFromRows(rows [][]float64, mean, std float64, src *rng.Source) *UtilityMatrix {
	goods := len(rows[0])
	data := mat.NewDense(len(rows), goods, nil)
	for i, r := range rows {
		data.SetRow(i, r)
	}
	return &UtilityMatrix{data: data, mean: mean, std: std, src: src}
}

func (u *UtilityMatrix) String() string {
	return fmt.Sprintf("%.1f", mat.Formatted(u.data, mat.Squeeze(), mat.Excerpt(5)))
}

// Dims returns the number of users and goods.
func (u *UtilityMatrix) Dims() (users, goods int) {
	return u.data.Dims()
}

// At returns user i's utility for good g.
func (u *UtilityMatrix) At(i, g int) float64 {
	return u.data.At(i, g)
}

// Row returns a copy of user i's utilities.
func (u *UtilityMatrix) Row(i int) []float64 {
	return mat.Row(nil, i, u.data)
}

// Mean returns the mean the matrix draws utilities with.
func (u *UtilityMatrix) Mean() float64 { return u.mean }

// Std returns the standard deviation the matrix draws utilities with.
func (u *UtilityMatrix) Std() float64 { return u.std }

// AddUser draws a fresh utility row with the matrix's own distribution,
// assigns it to person and appends it. It returns the new row index.
func (u *UtilityMatrix) AddUser(person *people.Person) int {
	users, goods := u.data.Dims()
	row := u.src.NormalVector(goods, u.mean, u.std)
	person.SetUtility(row)

	u.data = u.data.Grow(1, 0).(*mat.Dense)
	u.data.SetRow(users, row)
	return users
}

// RemoveRow drops user i's row. The last remaining row cannot be removed.
func (u *UtilityMatrix) RemoveRow(i int) error {
	users, goods := u.data.Dims()
	if i < 0 || i >= users {
		return fmt.Errorf("utility row %d out of range [0, %d)", i, users)
	}
	if users == 1 {
		return fmt.Errorf("cannot remove the only utility row")
	}

	next := mat.NewDense(users-1, goods, nil)
	for r, dst := 0, 0; r < users; r++ {
		if r == i {
			continue
		}
		next.SetRow(dst, u.data.RawRowView(r))
		dst++
	}
	u.data = next
	return nil
}

// Table returns every row as a copy, for export.
func (u *UtilityMatrix) Table() [][]float64 {
	users, _ := u.data.Dims()
	out := make([][]float64, users)
	for i := range out {
		out[i] = u.Row(i)
	}
	return out
}
