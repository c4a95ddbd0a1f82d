package sim

import "errors"

// Sentinel errors. Call sites wrap them with context; test with errors.Is.
var (
	// ErrConfiguration reports malformed or mismatched input sequences.
	ErrConfiguration = errors.New("configuration error")

	// ErrInvalidParameter reports an out-of-domain scalar: probability,
	// alpha, step count or population size.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrEmptyAggregate reports statistics requested before any cohort was recorded.
	ErrEmptyAggregate = errors.New("no cohorts recorded")

	// ErrEmptyCohort reports statistics requested from a cohort without enough observations.
	ErrEmptyCohort = errors.New("cohort has too few observations")

	// ErrIndex reports an out-of-range cohort index.
	ErrIndex = errors.New("cohort index out of range")

	// ErrFinalized reports a mutation or second finalize on an already finalized aggregate.
	ErrFinalized = errors.New("outcomes already finalized")
)
