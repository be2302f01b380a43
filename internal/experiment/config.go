package experiment

import (
	"github.com/nvandessel/recsim/internal/config"
	"github.com/nvandessel/recsim/internal/rating"
	"github.com/nvandessel/recsim/internal/simulation"
)

// ScenarioFromConfig builds the scenario a configuration describes. Stream is
// left at zero; the runner assigns one per repetition.
func ScenarioFromConfig(name string, cfg *config.Config) simulation.Scenario {
	return simulation.Scenario{
		Name:        name,
		Size:        cfg.MatrixSize,
		Seed:        cfg.Seed,
		UtilityMean: cfg.UtilityMean,
		UtilityStd:  cfg.UtilityStd,
		Rating: rating.Params{
			Scale:      cfg.RatingSystemScale,
			RatingMean: cfg.RatingSystemMean,
			RatingStd:  cfg.RatingSystemStd,
			Policy:     cfg.SimilarityPolicy,
		},
		Params: simulation.Params{
			Ticks:               cfg.NumberOfTicks,
			Budget:              cfg.UserBudget,
			ConsiderationCost:   cfg.ConsiderationCost,
			UsageCost:           cfg.UsageCost,
			AcceptanceThreshold: cfg.EffectiveAcceptanceThreshold(),
			NoiseMean:           cfg.EffectiveNoiseMean(),
			NoiseStd:            cfg.UtilityStd,
			Strict:              cfg.StrictBudget,
			CountNegative:       cfg.CountNegativeReviews,
		},
	}
}

// OptionsFromConfig returns the repetition options a configuration describes.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Experiments: cfg.NumberOfExperiments,
		Workers:     cfg.Workers,
		Analysis: Analysis{
			NGoods:            cfg.AnalyzeNGoods,
			WellServedPercent: cfg.WellServedPercent,
		},
	}
}
