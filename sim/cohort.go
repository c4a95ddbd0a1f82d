package sim

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// CohortSpec describes one cohort to simulate. Immutable value type.
type CohortSpec struct {
	ID                   int
	PopulationSize       int
	MortalityProbability float64
	Seed                 int64
}

// Validate checks the population size and mortality probability.
// The seed is unconstrained.
func (c CohortSpec) Validate() error {
	if c.PopulationSize <= 0 {
		return fmt.Errorf("%w: cohort %d: population size must be positive, got %d",
			ErrInvalidParameter, c.ID, c.PopulationSize)
	}
	if math.IsNaN(c.MortalityProbability) || c.MortalityProbability < 0 || c.MortalityProbability > 1 {
		return fmt.Errorf("%w: cohort %d: mortality probability must be in [0, 1], got %v",
			ErrInvalidParameter, c.ID, c.MortalityProbability)
	}
	return nil
}

// CohortOutcome is the result of simulating one cohort.
//
//   - SurvivalTimes has one entry per individual, in individual order. An
//     individual dying during step k (0-based) has survival time k+1; one
//     still alive after the last step is censored at the step count.
//   - NumLivingPerStep[k] counts individuals alive at the start of step k,
//     for k = 0..numTimeSteps. It starts at the population size and never
//     increases.
type CohortOutcome struct {
	SurvivalTimes    []float64
	NumLivingPerStep []int
}

// Validate checks the data-model invariants: a non-empty curve starting at
// the number of survival times, with no negative or increasing counts.
func (o *CohortOutcome) Validate() error {
	if len(o.NumLivingPerStep) == 0 {
		return fmt.Errorf("%w: survival curve is empty", ErrInvalidParameter)
	}
	if o.NumLivingPerStep[0] != len(o.SurvivalTimes) {
		return fmt.Errorf("%w: survival curve starts at %d but there are %d survival times",
			ErrInvalidParameter, o.NumLivingPerStep[0], len(o.SurvivalTimes))
	}
	for k := 1; k < len(o.NumLivingPerStep); k++ {
		if o.NumLivingPerStep[k] < 0 {
			return fmt.Errorf("%w: negative living count %d at step %d",
				ErrInvalidParameter, o.NumLivingPerStep[k], k)
		}
		if o.NumLivingPerStep[k] > o.NumLivingPerStep[k-1] {
			return fmt.Errorf("%w: survival curve increases at step %d: %d -> %d",
				ErrInvalidParameter, k, o.NumLivingPerStep[k-1], o.NumLivingPerStep[k])
		}
	}
	return nil
}

// NumDeaths returns how many individuals died within the horizon.
func (o *CohortOutcome) NumDeaths() int {
	if len(o.NumLivingPerStep) == 0 {
		return 0
	}
	return o.NumLivingPerStep[0] - o.NumLivingPerStep[len(o.NumLivingPerStep)-1]
}

// SurvivalProbabilities returns NumLivingPerStep normalised by the initial
// population, i.e. the empirical survival function at each step boundary.
func (o *CohortOutcome) SurvivalProbabilities() []float64 {
	probs := make([]float64, len(o.NumLivingPerStep))
	if len(o.NumLivingPerStep) == 0 || o.NumLivingPerStep[0] == 0 {
		return probs
	}
	initial := float64(o.NumLivingPerStep[0])
	for k, n := range o.NumLivingPerStep {
		probs[k] = float64(n) / initial
	}
	return probs
}

// Cohort simulates a population under a constant per-step mortality probability.
type Cohort struct {
	spec CohortSpec
}

// NewCohort validates the parameters and returns a Cohort ready to simulate.
func NewCohort(id, populationSize int, mortalityProbability float64) (*Cohort, error) {
	spec := CohortSpec{ID: id, PopulationSize: populationSize, MortalityProbability: mortalityProbability}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &Cohort{spec: spec}, nil
}

// ID returns the cohort identifier.
func (c *Cohort) ID() int { return c.spec.ID }

// Spec returns the cohort's parameters. Seeds are supplied per Simulate call,
// so Seed is always zero here.
func (c *Cohort) Spec() CohortSpec { return c.spec }

// Simulate runs every individual through numTimeSteps steps using an RNG
// stream derived only from seed. The outcome is a pure function of
// (population size, mortality probability, numTimeSteps, seed).
func (c *Cohort) Simulate(numTimeSteps int, seed int64) (*CohortOutcome, error) {
	if numTimeSteps <= 0 {
		return nil, fmt.Errorf("%w: cohort %d: number of time steps must be positive, got %d",
			ErrInvalidParameter, c.spec.ID, numTimeSteps)
	}

	rng := newStream(seed, StreamMortality)
	p := c.spec.MortalityProbability
	n := c.spec.PopulationSize

	survivalTimes := make([]float64, n)
	// deathsAtStep[k] counts deaths during step k
	deathsAtStep := make([]int, numTimeSteps)
	for i := 0; i < n; i++ {
		survivalTimes[i] = float64(numTimeSteps)
		for k := 0; k < numTimeSteps; k++ {
			if rng.Float64() < p {
				survivalTimes[i] = float64(k + 1)
				deathsAtStep[k]++
				break
			}
		}
	}

	numLiving := make([]int, numTimeSteps+1)
	numLiving[0] = n
	for k := 0; k < numTimeSteps; k++ {
		numLiving[k+1] = numLiving[k] - deathsAtStep[k]
	}

	outcome := &CohortOutcome{SurvivalTimes: survivalTimes, NumLivingPerStep: numLiving}
	if outcome.NumDeaths() == 0 {
		logrus.Warnf("cohort %d: no deaths within %d steps; all %d survival times are censored",
			c.spec.ID, numTimeSteps, n)
	}
	return outcome, nil
}
