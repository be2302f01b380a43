// Package store archives finished experiment runs so they can be listed and
// compared later.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/nvandessel/recsim/internal/config"
	"github.com/nvandessel/recsim/internal/experiment"
)

// ErrNotFound is returned when no run has the requested ID.
var ErrNotFound = errors.New("run not found")

// Run is one archived invocation: the configuration it ran with and the
// metrics of every repetition.
type Run struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	StartedAt   time.Time            `json:"started_at"`
	Duration    time.Duration        `json:"duration"`
	Seed        uint64               `json:"seed"`
	MatrixSize  int                  `json:"matrix_size"`
	Experiments int                  `json:"experiments"`
	ConfigYAML  string               `json:"config_yaml,omitempty"`
	Average     experiment.Metrics   `json:"average"`
	Metrics     []experiment.Metrics `json:"metrics,omitempty"`
}

// Summary is the listing view of a Run.
type Summary struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	StartedAt         time.Time `json:"started_at"`
	Experiments       int       `json:"experiments"`
	MatrixSize        int       `json:"matrix_size"`
	PercentOptimal    float64   `json:"percent_optimal"`
	PercentWellServed float64   `json:"percent_well_served"`
	RecommenderGain   float64   `json:"recommender_gain"`
}

// Summary returns the listing view of r.
func (r Run) Summary() Summary {
	return Summary{
		ID:                r.ID,
		Name:              r.Name,
		StartedAt:         r.StartedAt,
		Experiments:       r.Experiments,
		MatrixSize:        r.MatrixSize,
		PercentOptimal:    r.Average.PercentOptimal,
		PercentWellServed: r.Average.PercentWellServed,
		RecommenderGain:   r.Average.RecommenderGain,
	}
}

// NewRun builds the archive record of an outcome with a fresh ID.
func NewRun(out *experiment.Outcome, cfg *config.Config) (Run, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return Run{}, fmt.Errorf("marshal config: %w", err)
	}
	return Run{
		ID:          uuid.NewString(),
		Name:        out.Scenario.Name,
		StartedAt:   out.Started.UTC(),
		Duration:    out.Duration,
		Seed:        out.Scenario.Seed,
		MatrixSize:  out.Scenario.Size,
		Experiments: len(out.Metrics),
		ConfigYAML:  string(data),
		Average:     out.Average,
		Metrics:     out.Metrics,
	}, nil
}

// RunStore persists runs.
type RunStore interface {
	SaveRun(ctx context.Context, run Run) error
	GetRun(ctx context.Context, id string) (*Run, error)

	// ListRuns returns the newest runs first. A limit of zero or less returns all.
	ListRuns(ctx context.Context, limit int) ([]Summary, error)

	DeleteRun(ctx context.Context, id string) error
	Close() error
}
