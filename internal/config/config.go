// Package config provides unified configuration loading for recsim.
// It supports loading from YAML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/nvandessel/recsim/internal/constants"
	"github.com/nvandessel/recsim/internal/rating"
)

// EnvPrefix prefixes every environment override, e.g. RECSIM_MATRIX_SIZE.
const EnvPrefix = "RECSIM_"

// Config contains all recsim configuration settings.
type Config struct {
	// MatrixSize is the number of people and of goods in the base market.
	MatrixSize int `json:"matrix_size" yaml:"matrix_size" validate:"gt=0"`

	// NumberOfTicks is how many discrete time steps an experiment runs for.
	NumberOfTicks int `json:"number_of_ticks" yaml:"number_of_ticks" validate:"gt=0"`

	// NumberOfExperiments is how many independent repetitions are averaged.
	NumberOfExperiments int `json:"number_of_experiments" yaml:"number_of_experiments" validate:"gt=0"`

	UtilityMean float64 `json:"utility_mean" yaml:"utility_mean"`
	UtilityStd  float64 `json:"utility_std" yaml:"utility_std" validate:"gt=0"`

	UserBudget        int `json:"user_budget" yaml:"user_budget" validate:"gt=0"`
	ConsiderationCost int `json:"consideration_cost" yaml:"consideration_cost" validate:"gt=0"`
	UsageCost         int `json:"usage_cost" yaml:"usage_cost" validate:"gt=0"`

	// RatingSystemScale is 0 for signed {-1, 0, +1} ratings, or K for an
	// ordinal 1..K scale.
	RatingSystemScale int `json:"rating_system_scale" yaml:"rating_system_scale" validate:"gte=0"`

	// RatingSystemMean and RatingSystemStd shape ordinal ratings. Values
	// outside the scale fall back to values derived from it.
	RatingSystemMean float64 `json:"rating_system_mean" yaml:"rating_system_mean"`
	RatingSystemStd  float64 `json:"rating_system_std" yaml:"rating_system_std"`

	// AnalyzeNGoods is how many most and least popular goods are analyzed.
	AnalyzeNGoods int `json:"analyze_n_goods" yaml:"analyze_n_goods" validate:"gt=0,ltefield=MatrixSize"`

	// WellServedPercent is the share of optimal utility a person needs to be well served.
	WellServedPercent float64 `json:"well_served_percent" yaml:"well_served_percent" validate:"gt=0,lte=1"`

	Seed uint64 `json:"seed" yaml:"seed"`

	// CountNegativeReviews lets negative signed reviews lower a good's
	// popularity when recommending.
	CountNegativeReviews bool `json:"count_negative_reviews" yaml:"count_negative_reviews"`

	// AcceptanceThreshold is the expected utility a good must reach to be
	// consumed. Unset means the utility mean.
	AcceptanceThreshold *float64 `json:"acceptance_threshold,omitempty" yaml:"acceptance_threshold,omitempty"`

	// NoiseMean is the mean of the expectation noise. Unset means the utility mean.
	NoiseMean *float64 `json:"noise_mean,omitempty" yaml:"noise_mean,omitempty"`

	// StrictBudget requires consideration plus usage cost before browsing.
	StrictBudget bool `json:"strict_budget" yaml:"strict_budget"`

	// SimilarityPolicy selects which signed agreements count: both, likes or dislikes.
	SimilarityPolicy string `json:"similarity_policy" yaml:"similarity_policy" validate:"oneof=both likes dislikes"`

	// Workers bounds parallel repetitions. Zero uses every CPU.
	Workers int `json:"workers" yaml:"workers" validate:"gte=0"`

	// Logging contains settings for operational and decision logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Output contains settings for result files.
	Output OutputConfig `json:"output" yaml:"output"`
}

// LoggingConfig configures recsim's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables decision logging to <output.dir>/decisions.jsonl.
	// "trace" additionally logs every person's tick.
	Level string `json:"level" yaml:"level" validate:"omitempty,oneof=info debug trace"`
}

// OutputConfig configures where results are written.
type OutputConfig struct {
	// Dir receives every output file.
	Dir string `json:"dir" yaml:"dir" validate:"required"`

	// CSV writes metrics and the last experiment's matrices as CSV.
	CSV bool `json:"csv" yaml:"csv"`

	// Arrow writes the last experiment's matrices as Arrow IPC files.
	Arrow bool `json:"arrow" yaml:"arrow"`

	// Database is the SQLite results archive. Empty disables archiving.
	Database string `json:"database" yaml:"database"`

	// PromTextfile is a Prometheus textfile of the averaged metrics. Empty disables it.
	PromTextfile string `json:"prom_textfile" yaml:"prom_textfile"`
}

// Default returns a Config with the default experiment.
func Default() *Config {
	return &Config{
		MatrixSize:           constants.DefaultMatrixSize,
		NumberOfTicks:        constants.DefaultNumberOfTicks,
		NumberOfExperiments:  constants.DefaultNumberOfExperiments,
		UtilityMean:          constants.DefaultUtilityMean,
		UtilityStd:           constants.DefaultUtilityStd,
		UserBudget:           constants.DefaultUserBudget,
		ConsiderationCost:    constants.DefaultConsiderationCost,
		UsageCost:            constants.DefaultUsageCost,
		RatingSystemScale:    constants.SignedScale,
		RatingSystemMean:     constants.UnsetRatingParam,
		RatingSystemStd:      constants.UnsetRatingParam,
		AnalyzeNGoods:        constants.DefaultAnalyzeNGoods,
		WellServedPercent:    constants.DefaultWellServedPercent,
		Seed:                 constants.DefaultSeed,
		CountNegativeReviews: true,
		SimilarityPolicy:     rating.PolicyBoth,
		Logging: LoggingConfig{
			Level: "info",
		},
		Output: OutputConfig{
			Dir: "results",
			CSV: true,
		},
	}
}

// EffectiveAcceptanceThreshold returns the acceptance threshold, defaulting to the utility mean.
func (c *Config) EffectiveAcceptanceThreshold() float64 {
	if c.AcceptanceThreshold != nil {
		return *c.AcceptanceThreshold
	}
	return c.UtilityMean
}

// EffectiveNoiseMean returns the expectation noise mean, defaulting to the utility mean.
func (c *Config) EffectiveNoiseMean() float64 {
	if c.NoiseMean != nil {
		return *c.NoiseMean
	}
	return c.UtilityMean
}

// DefaultPath returns ~/.recsim/config.yaml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".recsim", "config.yaml"), nil
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.recsim/config.yaml -> path (if non-empty) -> environment variables
func Load(path string) (*Config, error) {
	config := Default()

	// Try to load from default config file
	if configPath, err := DefaultPath(); err == nil {
		if _, statErr := os.Stat(configPath); statErr == nil {
			if err := mergeFile(config, configPath); err != nil {
				return nil, fmt.Errorf("loading config file: %w", err)
			}
		}
	}

	if path != "" {
		if err := mergeFile(config, path); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	// Apply environment variable overrides
	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file on top of the defaults.
func LoadFromFile(path string) (*Config, error) {
	config := Default()
	if err := mergeFile(config, path); err != nil {
		return nil, err
	}
	return config, nil
}

func mergeFile(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	config.Output.Dir = expandEnvVars(config.Output.Dir)
	config.Output.Database = expandEnvVars(config.Output.Database)
	config.Output.PromTextfile = expandEnvVars(config.Output.PromTextfile)
	return nil
}

// Save writes the configuration as YAML to path, creating its directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

var validate = newValidator()

// newValidator reports fields by their YAML keys.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = describe(fe)
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	if c.RatingSystemScale == 1 {
		return fmt.Errorf("rating_system_scale must be 0 (signed) or at least 2, got 1")
	}
	if c.UserBudget < c.ConsiderationCost {
		return fmt.Errorf("user_budget %d cannot cover consideration_cost %d", c.UserBudget, c.ConsiderationCost)
	}
	return nil
}

func describe(fe validator.FieldError) string {
	field := yamlName(fe.Namespace())
	switch fe.Tag() {
	case "gt":
		return fmt.Sprintf("%s must be greater than %s, got %v", field, fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("%s must be at least %s, got %v", field, fe.Param(), fe.Value())
	case "lte":
		return fmt.Sprintf("%s must be at most %s, got %v", field, fe.Param(), fe.Value())
	case "ltefield":
		return fmt.Sprintf("%s must not exceed %s, got %v", field, fieldKey(fe.Param()), fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value())
	case "required":
		return fmt.Sprintf("%s is required", field)
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

// yamlName strips the root type from a namespace such as "Config.output.dir".
func yamlName(namespace string) string {
	_, rest, ok := strings.Cut(namespace, ".")
	if !ok {
		return namespace
	}
	return rest
}

// fieldKey maps a Go field name used as a cross-field parameter to its YAML key.
func fieldKey(name string) string {
	if f, ok := reflect.TypeOf(Config{}).FieldByName(name); ok {
		key, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		return key
	}
	return name
}

// applyEnvOverrides applies RECSIM_* environment variable overrides to the config.
func applyEnvOverrides(config *Config) error {
	ints := map[string]*int{
		"MATRIX_SIZE":           &config.MatrixSize,
		"NUMBER_OF_TICKS":       &config.NumberOfTicks,
		"NUMBER_OF_EXPERIMENTS": &config.NumberOfExperiments,
		"USER_BUDGET":           &config.UserBudget,
		"CONSIDERATION_COST":    &config.ConsiderationCost,
		"USAGE_COST":            &config.UsageCost,
		"RATING_SYSTEM_SCALE":   &config.RatingSystemScale,
		"ANALYZE_N_GOODS":       &config.AnalyzeNGoods,
		"WORKERS":               &config.Workers,
	}
	for name, dst := range ints {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
			}
			*dst = n
		}
	}

	floats := map[string]*float64{
		"UTILITY_MEAN":        &config.UtilityMean,
		"UTILITY_STD":         &config.UtilityStd,
		"RATING_SYSTEM_MEAN":  &config.RatingSystemMean,
		"RATING_SYSTEM_STD":   &config.RatingSystemStd,
		"WELL_SERVED_PERCENT": &config.WellServedPercent,
	}
	for name, dst := range floats {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
			}
			*dst = f
		}
	}

	for name, dst := range map[string]**float64{
		"ACCEPTANCE_THRESHOLD": &config.AcceptanceThreshold,
		"NOISE_MEAN":           &config.NoiseMean,
	} {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
			}
			*dst = &f
		}
	}

	if v := os.Getenv(EnvPrefix + "SEED"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sSEED: %w", EnvPrefix, err)
		}
		config.Seed = n
	}

	if v := os.Getenv(EnvPrefix + "COUNT_NEGATIVE_REVIEWS"); v != "" {
		config.CountNegativeReviews = v == "true" || v == "1"
	}
	if v := os.Getenv(EnvPrefix + "STRICT_BUDGET"); v != "" {
		config.StrictBudget = v == "true" || v == "1"
	}
	if v := os.Getenv(EnvPrefix + "SIMILARITY_POLICY"); v != "" {
		config.SimilarityPolicy = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv(EnvPrefix + "OUTPUT_DIR"); v != "" {
		config.Output.Dir = v
	}
	if v := os.Getenv(EnvPrefix + "DATABASE"); v != "" {
		config.Output.Database = v
	}

	return nil
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
