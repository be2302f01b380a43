// Package constants provides named constants used throughout the recsim codebase.
// This centralizes the default experiment parameters for better maintainability and documentation.
package constants

// Market size and duration
const (
	// DefaultMatrixSize is the number of users and goods in the base (n x n) market.
	DefaultMatrixSize = 20

	// DefaultNumberOfTicks is how many discrete time steps a single experiment runs for.
	DefaultNumberOfTicks = 10

	// DefaultNumberOfExperiments is how many independent repetitions are averaged.
	DefaultNumberOfExperiments = 10
)

// Utility distribution
const (
	// DefaultUtilityMean is the mean of the normal distribution true utilities are drawn from.
	DefaultUtilityMean = 4.0

	// DefaultUtilityStd is the standard deviation of the true utility distribution.
	DefaultUtilityStd = 2.0
)

// Budget and costs, all expressed in the same per-tick unit (time, attention or money).
const (
	// DefaultUserBudget is the allowance every user gets back at the end of each tick.
	DefaultUserBudget = 10

	// DefaultConsiderationCost is charged whenever a user looks at a recommendation.
	DefaultConsiderationCost = 1

	// DefaultUsageCost is charged when a user actually consumes a recommended good.
	DefaultUsageCost = 5
)

// Rating system
const (
	// SignedScale selects the three-valued {-1, 0, +1} rating system.
	SignedScale = 0

	// UnsetRatingParam marks the ordinal rating mean/std as "derive from the scale".
	UnsetRatingParam = -1.0
)

// Analysis
const (
	// DefaultAnalyzeNGoods is how many most/least popular goods are inspected.
	DefaultAnalyzeNGoods = 10

	// DefaultWellServedPercent is the share of optimal utility a user needs to be well served.
	DefaultWellServedPercent = 0.8
)

// Reproducibility and presentation
const (
	// DefaultSeed seeds the experiment generator.
	DefaultSeed = 20

	// NameLength is the number of letters in a randomly generated user name.
	NameLength = 5

	// BlankRep is printed for unobserved review cells.
	BlankRep = "·"

	// ProbeUserName is the display name of the cold-start probe user.
	ProbeUserName = "_User"

	// RandomUserName is the display name of the random-choice baseline user.
	RandomUserName = "_Rand"
)
