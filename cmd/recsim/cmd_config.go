package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nvandessel/recsim/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage recsim configuration",
		Long: `View and modify recsim configuration settings.

Configuration is stored in ~/.recsim/config.yaml. RECSIM_* environment
variables override the file.

Examples:
  recsim config list                       # Show all settings
  recsim config get matrix_size            # Get a specific setting
  recsim config set number_of_ticks 30     # Set a setting
  recsim config validate                   # Check the effective configuration`,
	}

	cmd.AddCommand(
		newConfigListCmd(),
		newConfigGetCmd(),
		newConfigSetCmd(),
		newConfigValidateCmd(),
	)

	return cmd
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), cfg)
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			key := args[0]

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			value, found := getConfigValue(cfg, key)
			if !found {
				return fmt.Errorf("unknown configuration key: %s", key)
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"key":   key,
					"value": value,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", key, value)
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value in ~/.recsim/config.yaml",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			key, value := args[0], args[1]

			path, err := config.DefaultPath()
			if err != nil {
				return fmt.Errorf("failed to locate config: %w", err)
			}
			cfg := config.Default()
			if existing, err := config.LoadFromFile(path); err == nil {
				cfg = existing
			}

			if err := setConfigValue(cfg, key, value); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.Save(path); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"status": "updated",
					"key":    key,
					"value":  value,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
			return nil
		},
	}
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			verr := cfg.Validate()

			if jsonOut {
				result := map[string]any{"valid": verr == nil}
				if verr != nil {
					result["error"] = verr.Error()
				}
				if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
					return err
				}
				return verr
			}
			if verr != nil {
				return verr
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Configuration is valid")
			return nil
		},
	}
}

// getConfigValue retrieves a configuration value by key.
func getConfigValue(cfg *config.Config, key string) (any, bool) {
	switch key {
	case "matrix_size":
		return cfg.MatrixSize, true
	case "number_of_ticks":
		return cfg.NumberOfTicks, true
	case "number_of_experiments":
		return cfg.NumberOfExperiments, true
	case "utility_mean":
		return cfg.UtilityMean, true
	case "utility_std":
		return cfg.UtilityStd, true
	case "user_budget":
		return cfg.UserBudget, true
	case "consideration_cost":
		return cfg.ConsiderationCost, true
	case "usage_cost":
		return cfg.UsageCost, true
	case "rating_system_scale":
		return cfg.RatingSystemScale, true
	case "rating_system_mean":
		return cfg.RatingSystemMean, true
	case "rating_system_std":
		return cfg.RatingSystemStd, true
	case "analyze_n_goods":
		return cfg.AnalyzeNGoods, true
	case "well_served_percent":
		return cfg.WellServedPercent, true
	case "seed":
		return cfg.Seed, true
	case "count_negative_reviews":
		return cfg.CountNegativeReviews, true
	case "acceptance_threshold":
		return cfg.EffectiveAcceptanceThreshold(), true
	case "noise_mean":
		return cfg.EffectiveNoiseMean(), true
	case "strict_budget":
		return cfg.StrictBudget, true
	case "similarity_policy":
		return cfg.SimilarityPolicy, true
	case "workers":
		return cfg.Workers, true
	case "logging.level":
		return cfg.Logging.Level, true
	case "output.dir":
		return cfg.Output.Dir, true
	case "output.csv":
		return cfg.Output.CSV, true
	case "output.arrow":
		return cfg.Output.Arrow, true
	case "output.database":
		return cfg.Output.Database, true
	case "output.prom_textfile":
		return cfg.Output.PromTextfile, true
	default:
		return nil, false
	}
}

// setConfigValue sets a configuration value by key.
func setConfigValue(cfg *config.Config, key, value string) error {
	intField := map[string]*int{
		"matrix_size":           &cfg.MatrixSize,
		"number_of_ticks":       &cfg.NumberOfTicks,
		"number_of_experiments": &cfg.NumberOfExperiments,
		"user_budget":           &cfg.UserBudget,
		"consideration_cost":    &cfg.ConsiderationCost,
		"usage_cost":            &cfg.UsageCost,
		"rating_system_scale":   &cfg.RatingSystemScale,
		"analyze_n_goods":       &cfg.AnalyzeNGoods,
		"workers":               &cfg.Workers,
	}
	floatField := map[string]*float64{
		"utility_mean":        &cfg.UtilityMean,
		"utility_std":         &cfg.UtilityStd,
		"rating_system_mean":  &cfg.RatingSystemMean,
		"rating_system_std":   &cfg.RatingSystemStd,
		"well_served_percent": &cfg.WellServedPercent,
	}
	boolField := map[string]*bool{
		"count_negative_reviews": &cfg.CountNegativeReviews,
		"strict_budget":          &cfg.StrictBudget,
		"output.csv":             &cfg.Output.CSV,
		"output.arrow":           &cfg.Output.Arrow,
	}
	stringField := map[string]*string{
		"similarity_policy":    &cfg.SimilarityPolicy,
		"logging.level":        &cfg.Logging.Level,
		"output.dir":           &cfg.Output.Dir,
		"output.database":      &cfg.Output.Database,
		"output.prom_textfile": &cfg.Output.PromTextfile,
	}

	if dst, ok := intField[key]; ok {
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %s", key, value)
		}
		*dst = n
		return nil
	}
	if dst, ok := floatField[key]; ok {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid number for %s: %s", key, value)
		}
		*dst = f
		return nil
	}
	if dst, ok := boolField[key]; ok {
		*dst = value == "true" || value == "1"
		return nil
	}
	if dst, ok := stringField[key]; ok {
		*dst = value
		return nil
	}

	switch key {
	case "seed":
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid seed: %s", value)
		}
		cfg.Seed = n
	case "acceptance_threshold", "noise_mean":
		var dst **float64 = &cfg.AcceptanceThreshold
		if key == "noise_mean" {
			dst = &cfg.NoiseMean
		}
		if value == "" || value == "default" {
			*dst = nil
			return nil
		}
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid number for %s: %s", key, value)
		}
		*dst = &f
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}
