// Package export writes experiment results to files: CSV tables, Arrow IPC
// matrices and a Prometheus textfile of the averaged metrics.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/nvandessel/recsim/internal/experiment"
	"github.com/nvandessel/recsim/internal/matrix"
)

// File names written under the output directory.
const (
	MetricsCSV     = "metrics.csv"
	UtilityCSV     = "utility_matrix.csv"
	ReviewsCSV     = "review_matrix.csv"
	UtilityArrow   = "utility_matrix.arrow"
	ReviewsArrow   = "review_matrix.arrow"
	averageRowName = "average"
)

// Options selects which files Write produces.
type Options struct {
	Dir          string
	CSV          bool
	Arrow        bool
	PromTextfile string
}

// Write exports an outcome and returns the paths it wrote, in order.
func Write(out *experiment.Outcome, opts Options) ([]string, error) {
	if err := os.MkdirAll(opts.Dir, 0700); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	var written []string
	write := func(name string, fn func(string) error) error {
		path := filepath.Join(opts.Dir, name)
		if err := fn(path); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
		written = append(written, path)
		return nil
	}

	if opts.CSV {
		if err := write(MetricsCSV, func(p string) error { return WriteMetricsCSV(p, out.Metrics, out.Average) }); err != nil {
			return written, err
		}
		if out.Last != nil {
			if err := write(UtilityCSV, func(p string) error { return WriteUtilityCSV(p, out.Last.Utility, out.Last.Reviews) }); err != nil {
				return written, err
			}
			if err := write(ReviewsCSV, func(p string) error { return WriteReviewsCSV(p, out.Last.Reviews) }); err != nil {
				return written, err
			}
		}
	}

	if opts.Arrow && out.Last != nil {
		if err := write(UtilityArrow, func(p string) error { return WriteUtilityArrow(p, out.Last.Utility, out.Last.Reviews) }); err != nil {
			return written, err
		}
		if err := write(ReviewsArrow, func(p string) error { return WriteReviewsArrow(p, out.Last.Reviews) }); err != nil {
			return written, err
		}
	}

	if opts.PromTextfile != "" {
		path := opts.PromTextfile
		if !filepath.IsAbs(path) {
			path = filepath.Join(opts.Dir, path)
		}
		if err := WritePromTextfile(path, out.Scenario.Name, out.Average); err != nil {
			return written, fmt.Errorf("writing prometheus textfile: %w", err)
		}
		written = append(written, path)
	}

	return written, nil
}

// goodColumns names one column per good: g0, g1, ...
func goodColumns(goods int) []string {
	cols := make([]string, goods)
	for g := range cols {
		cols[g] = "g" + strconv.Itoa(g)
	}
	return cols
}

// personNames returns the name of every row of m.
func personNames(m *matrix.ReviewMatrix) []string {
	pop := m.Population()
	names := make([]string, pop.Len())
	for i := range names {
		names[i] = pop.At(i).Name()
	}
	return names
}
