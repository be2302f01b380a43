package export

import (
	"fmt"
	"os"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/nvandessel/recsim/internal/matrix"
)

func matrixSchema(goods int, cell arrow.DataType) *arrow.Schema {
	fields := []arrow.Field{{Name: "person", Type: arrow.BinaryTypes.String}}
	for _, name := range goodColumns(goods) {
		fields = append(fields, arrow.Field{Name: name, Type: cell, Nullable: true})
	}
	return arrow.NewSchema(fields, nil)
}

func writeRecord(path string, schema *arrow.Schema, fill func(b *array.RecordBuilder)) error {
	mem := memory.NewGoAllocator()
	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()
	fill(b)

	rec := b.NewRecord()
	defer rec.Release()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	w, err := ipc.NewFileWriter(f, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	if err != nil {
		f.Close()
		return fmt.Errorf("creating arrow writer: %w", err)
	}
	if err := w.Write(rec); err != nil {
		w.Close()
		f.Close()
		return fmt.Errorf("writing record: %w", err)
	}
	if err := w.Close(); err != nil {
		f.Close()
		return fmt.Errorf("closing arrow writer: %w", err)
	}
	return f.Close()
}

// WriteUtilityArrow writes the utility matrix as a single Arrow record with a
// float64 column per good.
func WriteUtilityArrow(path string, utility *matrix.UtilityMatrix, reviews *matrix.ReviewMatrix) error {
	users, goods := utility.Dims()
	names := personNames(reviews)
	if len(names) != users {
		return fmt.Errorf("utility matrix has %d rows but %d people", users, len(names))
	}

	return writeRecord(path, matrixSchema(goods, arrow.PrimitiveTypes.Float64), func(b *array.RecordBuilder) {
		b.Field(0).(*array.StringBuilder).AppendValues(names, nil)
		for g := range goods {
			col := b.Field(g + 1).(*array.Float64Builder)
			for i := range users {
				col.Append(utility.At(i, g))
			}
		}
	})
}

// WriteReviewsArrow writes the review matrix with an int64 column per good.
// Unobserved cells are null.
func WriteReviewsArrow(path string, reviews *matrix.ReviewMatrix) error {
	goods := reviews.Goods()
	return writeRecord(path, matrixSchema(goods, arrow.PrimitiveTypes.Int64), func(b *array.RecordBuilder) {
		b.Field(0).(*array.StringBuilder).AppendValues(personNames(reviews), nil)
		for g := range goods {
			col := b.Field(g + 1).(*array.Int64Builder)
			for _, row := range reviews.Rows() {
				if v, ok := row.Get(g).Get(); ok {
					col.Append(int64(v))
				} else {
					col.AppendNull()
				}
			}
		}
	})
}
