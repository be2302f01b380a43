package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/nvandessel/recsim/internal/experiment"
	"github.com/nvandessel/recsim/internal/matrix"
)

func writeCSV(path string, records [][]string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		f.Close()
		return fmt.Errorf("writing csv: %w", err)
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteMetricsCSV writes one row per experiment followed by an average row.
func WriteMetricsCSV(path string, metrics []experiment.Metrics, average experiment.Metrics) error {
	header := []string{"experiment"}
	for _, f := range experiment.Fields {
		header = append(header, f.Name)
	}
	records := [][]string{header}

	row := func(label string, m experiment.Metrics) []string {
		rec := []string{label}
		for _, v := range m.Values() {
			rec = append(rec, formatFloat(v))
		}
		return rec
	}
	for i, m := range metrics {
		records = append(records, row(strconv.Itoa(i), m))
	}
	records = append(records, row(averageRowName, average))
	return writeCSV(path, records)
}

// WriteUtilityCSV writes the true utility of every good for every person,
// labelled with the names in reviews.
func WriteUtilityCSV(path string, utility *matrix.UtilityMatrix, reviews *matrix.ReviewMatrix) error {
	users, goods := utility.Dims()
	names := personNames(reviews)
	if len(names) != users {
		return fmt.Errorf("utility matrix has %d rows but %d people", users, len(names))
	}

	records := [][]string{append([]string{"person"}, goodColumns(goods)...)}
	for i := range users {
		rec := []string{names[i]}
		for _, v := range utility.Row(i) {
			rec = append(rec, formatFloat(v))
		}
		records = append(records, rec)
	}
	return writeCSV(path, records)
}

// WriteReviewsCSV writes the review matrix. Unobserved cells are empty.
func WriteReviewsCSV(path string, reviews *matrix.ReviewMatrix) error {
	names := personNames(reviews)
	records := [][]string{append([]string{"person"}, goodColumns(reviews.Goods())...)}
	for i, row := range reviews.Rows() {
		rec := []string{names[i]}
		for _, v := range row {
			rec = append(rec, v.String())
		}
		records = append(records, rec)
	}
	return writeCSV(path, records)
}
