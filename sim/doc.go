// Package sim simulates survival of independent cohorts under a
// discrete-time mortality model and aggregates their outcomes.
//
// # Reading Guide
//
// Start with these three files:
//   - cohort.go: CohortSpec, CohortOutcome and the per-step mortality loop
//   - outcomes.go: the two-phase aggregate (MultiCohortOutcomes accumulates,
//     FinalizedOutcomes answers queries)
//   - multicohort.go: MultiCohort, which runs cohorts in order and finalizes
//
// # Architecture
//
// Sub-packages:
//   - sim/stats/: summary statistics, confidence and prediction intervals
//   - sim/experiment/: YAML experiment files and report generation
//
// # Reproducibility
//
// Every cohort draws from named random streams derived from its own seed;
// there is no package-level random state. Identical (population size, mortality
// probability, time steps, seed) always produce identical outcomes.
//
// # Errors
//
// Failures wrap one of ErrConfiguration, ErrInvalidParameter,
// ErrEmptyAggregate, ErrEmptyCohort, ErrIndex or ErrFinalized; test with
// errors.Is.
package sim
