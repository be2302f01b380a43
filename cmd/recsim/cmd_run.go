package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/nvandessel/recsim/internal/config"
	"github.com/nvandessel/recsim/internal/experiment"
	"github.com/nvandessel/recsim/internal/export"
	"github.com/nvandessel/recsim/internal/logging"
	"github.com/nvandessel/recsim/internal/report"
	"github.com/nvandessel/recsim/internal/store"
)

const defaultScenarioName = "market"

// runResult is the --json output of the run command.
type runResult struct {
	RunID    string               `json:"run_id,omitempty"`
	Scenario string               `json:"scenario"`
	Config   *config.Config       `json:"config"`
	Average  experiment.Metrics   `json:"average"`
	Metrics  []experiment.Metrics `json:"metrics"`
	Files    []string             `json:"files,omitempty"`
	Duration string               `json:"duration"`
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [name]",
		Short: "Run the simulation and report the averaged metrics",
		Long: `Run NUMBER_OF_EXPERIMENTS independent experiments and average their metrics.

Each experiment builds a market, runs the recommendation loop, computes the
oracle allocation, sends a newcomer through the warm market and compares them
with random choice. Flags override the configuration file and environment.

Examples:
  recsim run                                # Default experiment
  recsim run big --size 100 --ticks 30      # Larger market
  recsim run --scale 5 --experiments 50     # Five-point ordinal ratings
  recsim run --log-level debug              # Also write decisions.jsonl`,
		Args: cobra.MaximumNArgs(1),
		RunE: runSimulation,
	}

	cmd.Flags().Int("size", 0, "Number of people and goods")
	cmd.Flags().Int("ticks", 0, "Ticks per experiment")
	cmd.Flags().Int("experiments", 0, "Number of repetitions to average")
	cmd.Flags().Uint64("seed", 0, "Random seed")
	cmd.Flags().Int("scale", 0, "Rating scale: 0 for signed, K for ordinal 1..K")
	cmd.Flags().Int("workers", 0, "Parallel repetitions (0 = all CPUs)")
	cmd.Flags().Bool("strict-budget", false, "Require consideration plus usage cost to browse")
	cmd.Flags().String("policy", "", "Signed similarity policy: both, likes or dislikes")
	cmd.Flags().String("log-level", "", "Log level: info, debug or trace")
	cmd.Flags().String("output", "", "Output directory")
	cmd.Flags().Bool("arrow", false, "Also write Arrow IPC matrices")
	cmd.Flags().String("db", "", "SQLite results archive")
	cmd.Flags().Bool("no-archive", false, "Do not archive the run")
	cmd.Flags().Bool("people", false, "Print every person of the last experiment")
	cmd.Flags().Bool("matrices", false, "Print the matrices of the last experiment")

	return cmd
}

// applyRunFlags copies explicitly set flags over cfg.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("size") {
		cfg.MatrixSize, _ = flags.GetInt("size")
	}
	if flags.Changed("ticks") {
		cfg.NumberOfTicks, _ = flags.GetInt("ticks")
	}
	if flags.Changed("experiments") {
		cfg.NumberOfExperiments, _ = flags.GetInt("experiments")
	}
	if flags.Changed("seed") {
		cfg.Seed, _ = flags.GetUint64("seed")
	}
	if flags.Changed("scale") {
		cfg.RatingSystemScale, _ = flags.GetInt("scale")
	}
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("strict-budget") {
		cfg.StrictBudget, _ = flags.GetBool("strict-budget")
	}
	if flags.Changed("policy") {
		cfg.SimilarityPolicy, _ = flags.GetString("policy")
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("output") {
		cfg.Output.Dir, _ = flags.GetString("output")
	}
	if flags.Changed("arrow") {
		cfg.Output.Arrow, _ = flags.GetBool("arrow")
	}
	if flags.Changed("db") {
		cfg.Output.Database, _ = flags.GetString("db")
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyRunFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	name := defaultScenarioName
	if len(args) == 1 {
		name = args[0]
	}
	jsonOut, _ := cmd.Flags().GetBool("json")
	noColor, _ := cmd.Flags().GetBool("no-color")
	noArchive, _ := cmd.Flags().GetBool("no-archive")
	showPeople, _ := cmd.Flags().GetBool("people")
	showMatrices, _ := cmd.Flags().GetBool("matrices")

	logger := logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())
	decisions := logging.NewDecisionLogger(cfg.Output.Dir, cfg.Logging.Level)
	defer decisions.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	notifySignals(sigCh)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("interrupted, stopping experiments")
			cancel()
		case <-ctx.Done():
		}
	}()

	opts := experiment.OptionsFromConfig(cfg)
	out, err := experiment.NewRunner(experiment.ScenarioFromConfig(name, cfg), opts, logger, decisions).Run(ctx)
	if err != nil {
		return err
	}

	files, err := export.Write(out, export.Options{
		Dir:          cfg.Output.Dir,
		CSV:          cfg.Output.CSV,
		Arrow:        cfg.Output.Arrow,
		PromTextfile: cfg.Output.PromTextfile,
	})
	if err != nil {
		return fmt.Errorf("failed to export results: %w", err)
	}

	var runID string
	if cfg.Output.Database != "" && !noArchive {
		runID, err = archiveRun(ctx, cfg, out)
		if err != nil {
			return err
		}
		logger.Info("archived run", "id", runID, "database", cfg.Output.Database)
	}

	if jsonOut {
		return writeJSON(cmd.OutOrStdout(), runResult{
			RunID:    runID,
			Scenario: name,
			Config:   cfg,
			Average:  out.Average,
			Metrics:  out.Metrics,
			Files:    files,
			Duration: out.Duration.String(),
		})
	}

	p := report.New(cmd.OutOrStdout(), noColor)
	if showMatrices {
		p.Matrices(out.Last)
	}
	if showPeople {
		p.People(out.Last, cfg.WellServedPercent)
		fmt.Fprintln(cmd.OutOrStdout())
	}
	p.Summary(out, opts.Analysis)
	p.Files(files)
	if runID != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "\nArchived as run %s\n", runID)
	}
	return nil
}

func archiveRun(ctx context.Context, cfg *config.Config, out *experiment.Outcome) (string, error) {
	s, err := store.NewSQLiteRunStore(cfg.Output.Database)
	if err != nil {
		return "", fmt.Errorf("failed to open archive: %w", err)
	}
	defer s.Close()

	run, err := store.NewRun(out, cfg)
	if err != nil {
		return "", err
	}
	if err := s.SaveRun(ctx, run); err != nil {
		return "", fmt.Errorf("failed to archive run: %w", err)
	}
	return run.ID, nil
}
