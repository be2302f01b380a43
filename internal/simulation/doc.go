// Package simulation runs the recommender market.
//
// A Simulator advances a review matrix through discrete ticks. In each tick
// every person browses recommendations while their budget allows: each
// consideration costs attention, and a good is consumed (and reviewed) only
// when its noisy expected utility clears the acceptance threshold and the
// usage cost is still affordable. Recommendations within a tick are computed
// from a snapshot taken when the tick starts.
//
// Besides the market loop the package builds the oracle allocation, runs a
// cold-start probe user against the warm market and a random-choice baseline
// for that probe. A Runner wires all of these together for one Scenario:
//
//	r := simulation.NewRunner(logger, nil)
//	result, err := r.Run(ctx, simulation.DefaultScenario("baseline", 20, 20), 0)
//	if err != nil {
//	    return err
//	}
//	simulation.AssertNeverBeatsOracle(t, result)
//
// All randomness comes from one rng.Source seeded by the scenario, so a
// scenario always produces the same result.
package simulation
