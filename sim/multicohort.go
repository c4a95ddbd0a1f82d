package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// MultiCohort simulates several independently parameterized cohorts in order
// and aggregates their outcomes. Each cohort draws only from its own seed, so
// no cohort's random stream depends on another's.
type MultiCohort struct {
	cohorts  []*Cohort
	specs    []CohortSpec
	outcomes *FinalizedOutcomes
}

// NewMultiCohort builds one cohort per index of the aligned ids, popSizes and
// mortalityProbs sequences. Fails with ErrConfiguration when the sequences
// differ in length or are empty, and with ErrInvalidParameter when any
// cohort's parameters are out of domain. Nothing is simulated here.
func NewMultiCohort(ids []int, popSizes []int, mortalityProbs []float64) (*MultiCohort, error) {
	if len(ids) != len(popSizes) || len(ids) != len(mortalityProbs) {
		return nil, fmt.Errorf("%w: got %d ids, %d population sizes, %d mortality probabilities; lengths must match",
			ErrConfiguration, len(ids), len(popSizes), len(mortalityProbs))
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: at least one cohort is required", ErrConfiguration)
	}

	cohorts := make([]*Cohort, len(ids))
	for i := range ids {
		c, err := NewCohort(ids[i], popSizes[i], mortalityProbs[i])
		if err != nil {
			return nil, fmt.Errorf("cohort[%d]: %w", i, err)
		}
		cohorts[i] = c
	}
	return &MultiCohort{cohorts: cohorts}, nil
}

// NumCohorts returns the number of cohorts this runner simulates.
func (mc *MultiCohort) NumCohorts() int {
	return len(mc.cohorts)
}

// Simulate runs every cohort for numTimeSteps steps, cohort i seeded with
// seeds[i], extracting each outcome into a fresh aggregate and finalizing it
// once all cohorts are done. All inputs are checked before the first cohort
// runs. On error the outcomes of any earlier successful run are kept.
func (mc *MultiCohort) Simulate(numTimeSteps int, seeds []int64) error {
	if len(seeds) != len(mc.cohorts) {
		return fmt.Errorf("%w: got %d seeds for %d cohorts", ErrConfiguration, len(seeds), len(mc.cohorts))
	}
	if numTimeSteps <= 0 {
		return fmt.Errorf("%w: number of time steps must be positive, got %d", ErrInvalidParameter, numTimeSteps)
	}

	logrus.Infof("Simulating %d cohorts for %d time steps", len(mc.cohorts), numTimeSteps)

	agg := NewMultiCohortOutcomes()
	specs := make([]CohortSpec, len(mc.cohorts))
	for i, c := range mc.cohorts {
		outcome, err := c.Simulate(numTimeSteps, seeds[i])
		if err != nil {
			return fmt.Errorf("cohort[%d]: %w", i, err)
		}
		logrus.Debugf("cohort %d: population=%d mortality=%v seed=%d deaths=%d",
			c.ID(), len(outcome.SurvivalTimes), c.spec.MortalityProbability, seeds[i], outcome.NumDeaths())

		if err := agg.Extract(outcome); err != nil {
			return fmt.Errorf("cohort[%d]: %w", i, err)
		}
		specs[i] = c.Spec()
		specs[i].Seed = seeds[i]
	}

	finalized, err := agg.Finalize()
	if err != nil {
		return err
	}
	mc.outcomes = finalized
	mc.specs = specs

	logrus.Infof("Simulation complete. Mean of cohort mean survival times: %.4f", finalized.SummaryOfMeans().Mean())
	return nil
}

// Outcomes returns the finalized aggregate of the last successful Simulate.
// Fails with ErrEmptyAggregate if Simulate has not yet succeeded.
func (mc *MultiCohort) Outcomes() (*FinalizedOutcomes, error) {
	if mc.outcomes == nil {
		return nil, fmt.Errorf("%w: Simulate has not completed", ErrEmptyAggregate)
	}
	return mc.outcomes, nil
}

// Specs returns the cohort parameters, including seeds, of the last
// successful Simulate. Nil before the first run.
func (mc *MultiCohort) Specs() []CohortSpec {
	if mc.specs == nil {
		return nil
	}
	out := make([]CohortSpec, len(mc.specs))
	copy(out, mc.specs)
	return out
}
