package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	config := Default()

	if config.MatrixSize != 20 {
		t.Errorf("expected MatrixSize 20, got %d", config.MatrixSize)
	}
	if config.NumberOfTicks != 10 || config.NumberOfExperiments != 10 {
		t.Errorf("expected 10 ticks and 10 experiments, got %d and %d", config.NumberOfTicks, config.NumberOfExperiments)
	}
	if config.UtilityMean != 4 || config.UtilityStd != 2 {
		t.Errorf("expected utility N(4, 2), got N(%v, %v)", config.UtilityMean, config.UtilityStd)
	}
	if config.UserBudget != 10 || config.ConsiderationCost != 1 || config.UsageCost != 5 {
		t.Errorf("unexpected budget defaults: %d/%d/%d", config.UserBudget, config.ConsiderationCost, config.UsageCost)
	}
	if config.RatingSystemScale != 0 {
		t.Errorf("expected signed rating scale, got %d", config.RatingSystemScale)
	}
	if !config.CountNegativeReviews {
		t.Error("expected CountNegativeReviews to be true by default")
	}
	if config.StrictBudget {
		t.Error("expected StrictBudget to be false by default")
	}
	if config.SimilarityPolicy != "both" {
		t.Errorf("expected SimilarityPolicy 'both', got '%s'", config.SimilarityPolicy)
	}

	// Logging defaults
	if config.Logging.Level != "info" {
		t.Errorf("expected Logging.Level 'info', got '%s'", config.Logging.Level)
	}

	if err := config.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestEffectiveDefaultsToUtilityMean(t *testing.T) {
	config := Default()
	config.UtilityMean = 7

	if got := config.EffectiveAcceptanceThreshold(); got != 7 {
		t.Errorf("expected threshold 7, got %v", got)
	}
	if got := config.EffectiveNoiseMean(); got != 7 {
		t.Errorf("expected noise mean 7, got %v", got)
	}

	threshold, noise := 2.5, 0.0
	config.AcceptanceThreshold = &threshold
	config.NoiseMean = &noise
	if got := config.EffectiveAcceptanceThreshold(); got != 2.5 {
		t.Errorf("expected threshold 2.5, got %v", got)
	}
	if got := config.EffectiveNoiseMean(); got != 0 {
		t.Errorf("expected noise mean 0, got %v", got)
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
matrix_size: 50
number_of_ticks: 20
rating_system_scale: 5
acceptance_threshold: 3.5
similarity_policy: likes
strict_budget: true

logging:
  level: debug

output:
  dir: out
  arrow: true
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if config.MatrixSize != 50 {
		t.Errorf("expected MatrixSize 50, got %d", config.MatrixSize)
	}
	if config.NumberOfTicks != 20 {
		t.Errorf("expected NumberOfTicks 20, got %d", config.NumberOfTicks)
	}
	if config.RatingSystemScale != 5 {
		t.Errorf("expected RatingSystemScale 5, got %d", config.RatingSystemScale)
	}
	if config.AcceptanceThreshold == nil || *config.AcceptanceThreshold != 3.5 {
		t.Errorf("expected AcceptanceThreshold 3.5, got %v", config.AcceptanceThreshold)
	}
	if config.NoiseMean != nil {
		t.Errorf("expected NoiseMean unset, got %v", *config.NoiseMean)
	}
	if config.SimilarityPolicy != "likes" || !config.StrictBudget {
		t.Errorf("expected likes policy and strict budget, got %q/%v", config.SimilarityPolicy, config.StrictBudget)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("expected Logging.Level 'debug', got '%s'", config.Logging.Level)
	}
	if config.Output.Dir != "out" || !config.Output.Arrow {
		t.Errorf("expected output dir 'out' with arrow, got %+v", config.Output)
	}

	// Unset keys keep their defaults
	if config.UserBudget != 10 {
		t.Errorf("expected default UserBudget 10, got %d", config.UserBudget)
	}
	if !config.Output.CSV {
		t.Error("expected default Output.CSV to survive")
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadFromFile_Malformed(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("matrix_size: [oops"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	if _, err := LoadFromFile(configPath); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadFromFile_ExpandsEnvVars(t *testing.T) {
	t.Setenv("RECSIM_TEST_ROOT", "/tmp/recsim-test")
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := "output:\n  dir: ${RECSIM_TEST_ROOT}/out\n  database: ${RECSIM_TEST_ROOT}/runs.db\n"
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if config.Output.Dir != "/tmp/recsim-test/out" {
		t.Errorf("expected expanded dir, got '%s'", config.Output.Dir)
	}
	if config.Output.Database != "/tmp/recsim-test/runs.db" {
		t.Errorf("expected expanded database, got '%s'", config.Output.Database)
	}
}

func TestLoad_Precedence(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	homeConfig := filepath.Join(home, ".recsim", "config.yaml")
	if err := os.MkdirAll(filepath.Dir(homeConfig), 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(homeConfig, []byte("matrix_size: 30\nnumber_of_ticks: 30\nusage_cost: 3\n"), 0600); err != nil {
		t.Fatal(err)
	}

	explicit := filepath.Join(t.TempDir(), "run.yaml")
	if err := os.WriteFile(explicit, []byte("number_of_ticks: 40\nusage_cost: 4\n"), 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("RECSIM_USAGE_COST", "2")

	config, err := Load(explicit)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if config.MatrixSize != 30 {
		t.Errorf("expected home config MatrixSize 30, got %d", config.MatrixSize)
	}
	if config.NumberOfTicks != 40 {
		t.Errorf("expected explicit file NumberOfTicks 40, got %d", config.NumberOfTicks)
	}
	if config.UsageCost != 2 {
		t.Errorf("expected env UsageCost 2, got %d", config.UsageCost)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("RECSIM_MATRIX_SIZE", "12")
	t.Setenv("RECSIM_UTILITY_MEAN", "5.5")
	t.Setenv("RECSIM_SEED", "99")
	t.Setenv("RECSIM_NOISE_MEAN", "0")
	t.Setenv("RECSIM_STRICT_BUDGET", "true")
	t.Setenv("RECSIM_COUNT_NEGATIVE_REVIEWS", "false")
	t.Setenv("RECSIM_LOG_LEVEL", "trace")

	config := Default()
	if err := applyEnvOverrides(config); err != nil {
		t.Fatalf("applyEnvOverrides failed: %v", err)
	}

	if config.MatrixSize != 12 {
		t.Errorf("expected MatrixSize 12, got %d", config.MatrixSize)
	}
	if config.UtilityMean != 5.5 {
		t.Errorf("expected UtilityMean 5.5, got %v", config.UtilityMean)
	}
	if config.Seed != 99 {
		t.Errorf("expected Seed 99, got %d", config.Seed)
	}
	if config.NoiseMean == nil || *config.NoiseMean != 0 {
		t.Errorf("expected NoiseMean 0, got %v", config.NoiseMean)
	}
	if !config.StrictBudget {
		t.Error("expected StrictBudget true")
	}
	if config.CountNegativeReviews {
		t.Error("expected CountNegativeReviews false")
	}
	if config.Logging.Level != "trace" {
		t.Errorf("expected Logging.Level 'trace', got '%s'", config.Logging.Level)
	}
}

func TestApplyEnvOverrides_BadNumber(t *testing.T) {
	t.Setenv("RECSIM_NUMBER_OF_TICKS", "ten")
	if err := applyEnvOverrides(Default()); err == nil {
		t.Error("expected error for non-numeric tick count")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid default", func(c *Config) {}, ""},
		{"zero matrix", func(c *Config) { c.MatrixSize = 0 }, "matrix_size must be greater than 0"},
		{"zero ticks", func(c *Config) { c.NumberOfTicks = 0 }, "number_of_ticks"},
		{"negative std", func(c *Config) { c.UtilityStd = -1 }, "utility_std"},
		{"zero usage cost", func(c *Config) { c.UsageCost = 0 }, "usage_cost"},
		{"analyze beyond matrix", func(c *Config) { c.AnalyzeNGoods = 21 }, "analyze_n_goods must not exceed matrix_size"},
		{"well served above one", func(c *Config) { c.WellServedPercent = 1.5 }, "well_served_percent must be at most 1"},
		{"unknown policy", func(c *Config) { c.SimilarityPolicy = "some" }, "similarity_policy must be one of"},
		{"unknown log level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
		{"missing output dir", func(c *Config) { c.Output.Dir = "" }, "output.dir is required"},
		{"one point scale", func(c *Config) { c.RatingSystemScale = 1 }, "rating_system_scale"},
		{"budget below consideration", func(c *Config) { c.ConsiderationCost = 11 }, "cannot cover"},
		{"ordinal scale", func(c *Config) { c.RatingSystemScale = 7 }, ""},
		{"negative workers", func(c *Config) { c.Workers = -1 }, "workers must be at least 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.mutate(config)
			err := config.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("expected valid config, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	config := Default()
	config.MatrixSize = 33
	threshold := 1.5
	config.AcceptanceThreshold = &threshold

	if err := config.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("expected mode 0600, got %o", perm)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if loaded.MatrixSize != 33 {
		t.Errorf("expected MatrixSize 33, got %d", loaded.MatrixSize)
	}
	if loaded.AcceptanceThreshold == nil || *loaded.AcceptanceThreshold != 1.5 {
		t.Errorf("expected AcceptanceThreshold 1.5, got %v", loaded.AcceptanceThreshold)
	}
}
