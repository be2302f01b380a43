package experiment

import (
	"github.com/nvandessel/recsim/internal/analysis"
	"github.com/nvandessel/recsim/internal/people"
	"github.com/nvandessel/recsim/internal/simulation"
)

// Metrics is the outcome record of one experiment. Every field is a float64
// so that repetitions can be averaged field by field.
type Metrics struct {
	MaxUtility        float64 `json:"max_utility"`
	ActualUtility     float64 `json:"actual_utility"`
	PercentOptimal    float64 `json:"percent_optimal"`
	PercentWellServed float64 `json:"percent_well_served"`

	PercentUsedTop1         float64 `json:"percent_used_top1"`
	PercentUsedTopQuarter   float64 `json:"percent_used_top_quarter"`
	PercentUsedTopHalf      float64 `json:"percent_used_top_half"`
	OptimalUsedTop1         float64 `json:"optimal_percent_used_top1"`
	OptimalUsedTopQuarter   float64 `json:"optimal_percent_used_top_quarter"`
	OptimalUsedTopHalf      float64 `json:"optimal_percent_used_top_half"`
	ProbePercentTopReceived float64 `json:"probe_percent_top_received"`

	ProbeMostTop1   float64 `json:"probe_most_top1"`
	ProbeLeastTop1  float64 `json:"probe_least_top1"`
	ProbeMostHalf   float64 `json:"probe_most_half"`
	ProbeLeastHalf  float64 `json:"probe_least_half"`
	ProbeMostAll    float64 `json:"probe_most_all"`
	ProbeLeastAll   float64 `json:"probe_least_all"`
	MostVsLeastTop1 float64 `json:"most_vs_least_top1"`
	MostVsLeastHalf float64 `json:"most_vs_least_half"`
	MostVsLeastAll  float64 `json:"most_vs_least_all"`

	ProbeOptimalUtility float64 `json:"probe_optimal_utility"`
	ProbePopularUtility float64 `json:"probe_popular_utility"`
	ProbeActualUtility  float64 `json:"probe_actual_utility"`
	RandomUtility       float64 `json:"random_utility"`
	RecommenderGain     float64 `json:"recommender_gain"`
	GainOverMean        float64 `json:"gain_over_mean"`

	TicksRun float64 `json:"ticks_run"`
}

// Field describes one metric for tabular and gauge output.
type Field struct {
	Name string
	Help string
	ptr  func(*Metrics) *float64
}

// Value reads the field from m.
func (f Field) Value(m Metrics) float64 { return *f.ptr(&m) }

// Fields lists every metric in output order.
var Fields = []Field{
	{"max_utility", "Sum of every person's optimal utility for the goods they consumed.", func(m *Metrics) *float64 { return &m.MaxUtility }},
	{"actual_utility", "Utility realized by the market.", func(m *Metrics) *float64 { return &m.ActualUtility }},
	{"percent_optimal", "Actual utility as a percentage of the maximum.", func(m *Metrics) *float64 { return &m.PercentOptimal }},
	{"percent_well_served", "Percentage of people who reached the well-served share of their optimal utility.", func(m *Metrics) *float64 { return &m.PercentWellServed }},
	{"percent_used_top1", "Percentage of people who used the most popular good.", func(m *Metrics) *float64 { return &m.PercentUsedTop1 }},
	{"percent_used_top_quarter", "Percentage of people who used the top quarter of analyzed goods.", func(m *Metrics) *float64 { return &m.PercentUsedTopQuarter }},
	{"percent_used_top_half", "Percentage of people who used the top half of analyzed goods.", func(m *Metrics) *float64 { return &m.PercentUsedTopHalf }},
	{"optimal_percent_used_top1", "Oracle allocation: percentage who used the most popular good.", func(m *Metrics) *float64 { return &m.OptimalUsedTop1 }},
	{"optimal_percent_used_top_quarter", "Oracle allocation: percentage who used the top quarter.", func(m *Metrics) *float64 { return &m.OptimalUsedTopQuarter }},
	{"optimal_percent_used_top_half", "Oracle allocation: percentage who used the top half.", func(m *Metrics) *float64 { return &m.OptimalUsedTopHalf }},
	{"probe_percent_top_received", "Percentage of the analyzed most popular goods the probe consumed.", func(m *Metrics) *float64 { return &m.ProbePercentTopReceived }},
	{"probe_most_top1", "Times the most popular good was considered by the probe.", func(m *Metrics) *float64 { return &m.ProbeMostTop1 }},
	{"probe_least_top1", "Times the least popular good was considered by the probe.", func(m *Metrics) *float64 { return &m.ProbeLeastTop1 }},
	{"probe_most_half", "Considerations of the half-set of most popular goods.", func(m *Metrics) *float64 { return &m.ProbeMostHalf }},
	{"probe_least_half", "Considerations of the half-set of least popular goods.", func(m *Metrics) *float64 { return &m.ProbeLeastHalf }},
	{"probe_most_all", "Considerations of the analyzed most popular goods.", func(m *Metrics) *float64 { return &m.ProbeMostAll }},
	{"probe_least_all", "Considerations of the analyzed least popular goods.", func(m *Metrics) *float64 { return &m.ProbeLeastAll }},
	{"most_vs_least_top1", "Most over least popular considerations, single good.", func(m *Metrics) *float64 { return &m.MostVsLeastTop1 }},
	{"most_vs_least_half", "Most over least popular considerations, half-set.", func(m *Metrics) *float64 { return &m.MostVsLeastHalf }},
	{"most_vs_least_all", "Most over least popular considerations, analyzed set.", func(m *Metrics) *float64 { return &m.MostVsLeastAll }},
	{"probe_optimal_utility", "Best utility the probe could have realized.", func(m *Metrics) *float64 { return &m.ProbeOptimalUtility }},
	{"probe_popular_utility", "Utility of the most popular goods for the probe.", func(m *Metrics) *float64 { return &m.ProbePopularUtility }},
	{"probe_actual_utility", "Utility the probe realized.", func(m *Metrics) *float64 { return &m.ProbeActualUtility }},
	{"random_utility", "Utility of random choices with the probe's preferences.", func(m *Metrics) *float64 { return &m.RandomUtility }},
	{"recommender_gain", "Probe utility minus random utility.", func(m *Metrics) *float64 { return &m.RecommenderGain }},
	{"gain_over_mean", "Recommender gain in units of the utility mean.", func(m *Metrics) *float64 { return &m.GainOverMean }},
	{"ticks_run", "Ticks the market loop ran before stopping.", func(m *Metrics) *float64 { return &m.TicksRun }},
}

// Values returns the metrics in Fields order.
func (m Metrics) Values() []float64 {
	out := make([]float64, len(Fields))
	for i, f := range Fields {
		out[i] = f.Value(m)
	}
	return out
}

// Average returns the field-wise mean of ms. It returns the zero Metrics for
// an empty slice.
func Average(ms []Metrics) Metrics {
	var avg Metrics
	if len(ms) == 0 {
		return avg
	}
	for _, f := range Fields {
		sum := 0.0
		for i := range ms {
			sum += *f.ptr(&ms[i])
		}
		*f.ptr(&avg) = sum / float64(len(ms))
	}
	return avg
}

// Analysis controls how outcomes are measured.
type Analysis struct {
	// NGoods is how many most and least popular goods are inspected.
	NGoods int

	// WellServedPercent is the share of optimal utility that counts as well served.
	WellServedPercent float64
}

// TopCounts returns the three popularity cut-offs: the single most popular
// good, a quarter and a half of NGoods (rounded up). None exceeds goods.
func (a Analysis) TopCounts(goods int) (one, quarter, half int) {
	return min(1, goods), min((a.NGoods+3)/4, goods), min((a.NGoods+1)/2, goods)
}

// Measure computes the metrics of a finished experiment. The probe must still
// be attached to result.
func Measure(result *simulation.SimulationResult, a Analysis) Metrics {
	var m Metrics
	scale := result.Scale
	goods := result.Reviews.Goods()
	market := people.NewPopulation(result.MarketPeople()...)
	marketRows := result.MarketRows()
	one, quarter, half := a.TopCounts(goods)

	m.MaxUtility = analysis.TotalOptimalUtility(market)
	m.ActualUtility = analysis.TotalGeneratedUtility(market)
	m.PercentOptimal = analysis.Percent(m.ActualUtility, m.MaxUtility)
	m.PercentWellServed = analysis.PercentWellServed(market, a.WellServedPercent)

	m.PercentUsedTop1 = analysis.PercentAllMostPopularUsed(market.People(), scale, marketRows, one)
	m.PercentUsedTopQuarter = analysis.PercentAllMostPopularUsed(market.People(), scale, marketRows, quarter)
	m.PercentUsedTopHalf = analysis.PercentAllMostPopularUsed(market.People(), scale, marketRows, half)

	oracle := result.Optimal
	m.OptimalUsedTop1 = analysis.PercentAllMostPopularUsed(oracle.Population().People(), scale, oracle.Rows(), one)
	m.OptimalUsedTopQuarter = analysis.PercentAllMostPopularUsed(oracle.Population().People(), scale, oracle.Rows(), quarter)
	m.OptimalUsedTopHalf = analysis.PercentAllMostPopularUsed(oracle.Population().People(), scale, oracle.Rows(), half)

	probe := result.Probe.Person
	considered := result.Probe.Considered
	all := min(a.NGoods, goods)
	m.ProbePercentTopReceived = analysis.Percent(
		float64(analysis.NumMostPopularUsed(probe, scale, result.Reviews.Rows(), all)),
		float64(all))

	most := func(n int) float64 {
		return float64(analysis.CountAmong(considered, analysis.FindMostPopular(scale, marketRows, goods, n)))
	}
	least := func(n int) float64 {
		return float64(analysis.CountAmong(considered, analysis.FindLeastPopular(scale, marketRows, goods, n)))
	}
	halfDown := min(a.NGoods/2, goods)
	m.ProbeMostTop1, m.ProbeLeastTop1 = most(one), least(one)
	m.ProbeMostHalf, m.ProbeLeastHalf = most(halfDown), least(halfDown)
	m.ProbeMostAll, m.ProbeLeastAll = most(all), least(all)
	m.MostVsLeastTop1 = analysis.Ratio(m.ProbeMostTop1, m.ProbeLeastTop1)
	m.MostVsLeastHalf = analysis.Ratio(m.ProbeMostHalf, m.ProbeLeastHalf)
	m.MostVsLeastAll = analysis.Ratio(m.ProbeMostAll, m.ProbeLeastAll)

	m.ProbeOptimalUtility = analysis.FindOptimalUtility(probe)
	m.ProbePopularUtility = analysis.FindPopularUtility(probe, result.Reviews)
	m.ProbeActualUtility = probe.GeneratedUtility()
	m.RandomUtility = result.Random.GeneratedUtility()
	m.RecommenderGain = m.ProbeActualUtility - m.RandomUtility
	m.GainOverMean = analysis.Ratio(m.RecommenderGain, result.Scenario.UtilityMean)

	m.TicksRun = float64(len(result.Market.Ticks))
	return m
}
