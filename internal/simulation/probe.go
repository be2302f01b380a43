package simulation

import (
	"context"
	"fmt"

	"github.com/nvandessel/recsim/internal/matrix"
	"github.com/nvandessel/recsim/internal/people"
)

// ProbeResult is the outcome of a cold-start probe.
type ProbeResult struct {
	Person *people.Person

	// Considered lists every good the probe paid to consider, across all
	// ticks, in order. A good can appear more than once if it was skipped
	// and offered again on a later tick.
	Considered []int
}

// Probe appends a new user named name to both matrices and runs the browse
// loop for that user alone against the warm, live review matrix. Nobody else
// browses while the probe runs.
//
// The probe stays attached; call Detach once it has been analyzed.
func (s *Simulator) Probe(ctx context.Context, utility *matrix.UtilityMatrix, m *matrix.ReviewMatrix, name string) (ProbeResult, error) {
	probe := people.New(name, s.params.Budget, m.Goods())
	utility.AddUser(probe)
	m.AddUser(probe)

	res := ProbeResult{Person: probe}
	for tick := 0; tick < s.params.Ticks; tick++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if m.FullyObserved() {
			break
		}

		out, err := s.browse(PhaseProbe, tick, probe, probe, m)
		if err != nil {
			return res, fmt.Errorf("probe tick %d: %w", tick, err)
		}
		res.Considered = append(res.Considered, out.considered...)
		probe.ResetBudget()
	}

	s.logger.Debug("probe complete",
		"experiment", s.experiment,
		"considered", len(res.Considered),
		"consumed", probe.Reviews().Observed(),
		"utility", probe.GeneratedUtility())
	return res, nil
}

// Detach removes person from both matrices, leaving every other row as it was.
func Detach(utility *matrix.UtilityMatrix, m *matrix.ReviewMatrix, person *people.Person) error {
	row, err := m.RemoveUser(person)
	if err != nil {
		return fmt.Errorf("detaching from reviews: %w", err)
	}
	if err := utility.RemoveRow(row); err != nil {
		return fmt.Errorf("detaching from utility: %w", err)
	}
	return nil
}
