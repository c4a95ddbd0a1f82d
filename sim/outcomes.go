package sim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/cohort-sim/cohort-sim/sim/stats"
)

// SummaryOfMeansName labels the cross-cohort summary of mean survival times.
const SummaryOfMeansName = "Mean survival time"

// MultiCohortOutcomes accumulates per-cohort outcomes in cohort-processing
// order. It is the accumulating phase of the aggregate: derived statistics
// live on the FinalizedOutcomes returned by Finalize.
//
// Invariant: len(survivalTimes) == len(survivalCurves) == cohorts extracted.
// Not safe for concurrent use.
type MultiCohortOutcomes struct {
	survivalTimes  [][]float64
	survivalCurves [][]int
	finalized      bool
}

// NewMultiCohortOutcomes returns an empty accumulator.
func NewMultiCohortOutcomes() *MultiCohortOutcomes {
	return &MultiCohortOutcomes{}
}

// Extract records one cohort's outcome and takes ownership of its slices.
// The call order defines the cohort index.
func (m *MultiCohortOutcomes) Extract(outcome *CohortOutcome) error {
	if m.finalized {
		return fmt.Errorf("%w: cannot extract cohort %d", ErrFinalized, len(m.survivalTimes))
	}
	if outcome == nil {
		return fmt.Errorf("%w: nil cohort outcome", ErrInvalidParameter)
	}
	if err := outcome.Validate(); err != nil {
		return fmt.Errorf("cohort index %d: %w", len(m.survivalTimes), err)
	}
	m.survivalTimes = append(m.survivalTimes, outcome.SurvivalTimes)
	m.survivalCurves = append(m.survivalCurves, outcome.NumLivingPerStep)
	return nil
}

// NumCohorts returns the number of cohorts extracted so far.
func (m *MultiCohortOutcomes) NumCohorts() int {
	return len(m.survivalTimes)
}

// SurvivalTimesByCohort returns a copy of the per-cohort survival times.
func (m *MultiCohortOutcomes) SurvivalTimesByCohort() [][]float64 {
	return cloneRows(m.survivalTimes)
}

// SurvivalCurvesByCohort returns a copy of the per-cohort survival curves.
func (m *MultiCohortOutcomes) SurvivalCurvesByCohort() [][]int {
	return cloneRows(m.survivalCurves)
}

// Finalize computes each cohort's mean survival time and the summary of
// those means. It may succeed only once; the accumulator rejects further
// Extract calls afterwards.
func (m *MultiCohortOutcomes) Finalize() (*FinalizedOutcomes, error) {
	if m.finalized {
		return nil, fmt.Errorf("%w: finalize called twice", ErrFinalized)
	}
	if len(m.survivalTimes) == 0 {
		return nil, fmt.Errorf("%w: finalize needs at least one extracted cohort", ErrEmptyAggregate)
	}

	means := make([]float64, len(m.survivalTimes))
	for i, obs := range m.survivalTimes {
		if len(obs) == 0 {
			return nil, fmt.Errorf("%w: cohort index %d has no survival times", ErrEmptyCohort, i)
		}
		means[i] = stat.Mean(obs, nil)
	}

	m.finalized = true
	return &FinalizedOutcomes{
		survivalTimes:  m.survivalTimes,
		survivalCurves: m.survivalCurves,
		meanSurvival:   means,
		summaryOfMeans: stats.NewSummaryStat(SummaryOfMeansName, means),
	}, nil
}

// FinalizedOutcomes is the read-only finalized phase of the aggregate.
// Only Finalize constructs it, so its derived fields are always populated.
type FinalizedOutcomes struct {
	survivalTimes  [][]float64
	survivalCurves [][]int
	meanSurvival   []float64
	summaryOfMeans *stats.SummaryStat
}

// NumCohorts returns the number of cohorts in the aggregate.
func (f *FinalizedOutcomes) NumCohorts() int {
	return len(f.survivalTimes)
}

// SurvivalTimesByCohort returns a copy of the per-cohort survival times.
func (f *FinalizedOutcomes) SurvivalTimesByCohort() [][]float64 {
	return cloneRows(f.survivalTimes)
}

// SurvivalCurvesByCohort returns a copy of the per-cohort survival curves.
func (f *FinalizedOutcomes) SurvivalCurvesByCohort() [][]int {
	return cloneRows(f.survivalCurves)
}

// MeanSurvivalTimeByCohort returns each cohort's mean survival time, in cohort order.
func (f *FinalizedOutcomes) MeanSurvivalTimeByCohort() []float64 {
	out := make([]float64, len(f.meanSurvival))
	copy(out, f.meanSurvival)
	return out
}

// SummaryOfMeans returns the summary statistic over the cohort means.
func (f *FinalizedOutcomes) SummaryOfMeans() *stats.SummaryStat {
	return f.summaryOfMeans
}

// ConfidenceIntervalOfMean returns the t-based confidence interval for the
// mean survival time of one cohort, computed from that cohort's individual
// survival times (not from the cross-cohort means).
func (f *FinalizedOutcomes) ConfidenceIntervalOfMean(cohortIndex int, alpha float64) (stats.Interval, error) {
	s, err := f.cohortStat(cohortIndex, alpha)
	if err != nil {
		return stats.Interval{}, err
	}
	if s.N() < 2 {
		return stats.Interval{}, fmt.Errorf("%w: cohort index %d has %d survival times, need at least 2",
			ErrEmptyCohort, cohortIndex, s.N())
	}
	return s.ConfidenceInterval(alpha)
}

// PredictionInterval returns the interval for a new individual's survival
// time in one cohort, computed from that cohort's individual survival times.
func (f *FinalizedOutcomes) PredictionInterval(cohortIndex int, alpha float64) (stats.Interval, error) {
	s, err := f.cohortStat(cohortIndex, alpha)
	if err != nil {
		return stats.Interval{}, err
	}
	return s.PredictionInterval(alpha)
}

// BootstrapIntervalOfMean returns a percentile-bootstrap confidence interval
// for one cohort's mean survival time. Resampling draws from the bootstrap
// stream of seed, so the result is reproducible.
func (f *FinalizedOutcomes) BootstrapIntervalOfMean(cohortIndex int, alpha float64, numSamples int, seed int64) (stats.Interval, error) {
	s, err := f.cohortStat(cohortIndex, alpha)
	if err != nil {
		return stats.Interval{}, err
	}
	if numSamples <= 0 {
		return stats.Interval{}, fmt.Errorf("%w: bootstrap sample count must be positive, got %d",
			ErrInvalidParameter, numSamples)
	}
	return s.BootstrapConfidenceInterval(alpha, numSamples, newStream(seed, StreamBootstrap))
}

// ConfidenceIntervalOfMeans returns the t-based confidence interval over the
// cross-cohort sample of mean survival times.
func (f *FinalizedOutcomes) ConfidenceIntervalOfMeans(alpha float64) (stats.Interval, error) {
	if err := validateAlpha(alpha); err != nil {
		return stats.Interval{}, err
	}
	if f.summaryOfMeans.N() < 2 {
		return stats.Interval{}, fmt.Errorf("%w: %d cohort means, need at least 2",
			ErrEmptyAggregate, f.summaryOfMeans.N())
	}
	return f.summaryOfMeans.ConfidenceInterval(alpha)
}

// PredictionIntervalOfMeans returns the percentile interval of the
// cross-cohort sample of mean survival times.
func (f *FinalizedOutcomes) PredictionIntervalOfMeans(alpha float64) (stats.Interval, error) {
	if err := validateAlpha(alpha); err != nil {
		return stats.Interval{}, err
	}
	return f.summaryOfMeans.PredictionInterval(alpha)
}

// MeanSurvivalCurve averages the survival curves across cohorts step by
// step. Curves shorter than the longest one contribute only to the steps
// they cover.
func (f *FinalizedOutcomes) MeanSurvivalCurve() []float64 {
	longest := 0
	for _, c := range f.survivalCurves {
		longest = max(longest, len(c))
	}
	sums := make([]float64, longest)
	counts := make([]int, longest)
	for _, c := range f.survivalCurves {
		for k, n := range c {
			sums[k] += float64(n)
			counts[k]++
		}
	}
	for k := range sums {
		sums[k] /= float64(counts[k])
	}
	return sums
}

func (f *FinalizedOutcomes) cohortStat(cohortIndex int, alpha float64) (*stats.SummaryStat, error) {
	if cohortIndex < 0 || cohortIndex >= len(f.survivalTimes) {
		return nil, fmt.Errorf("%w: index %d, have %d cohorts", ErrIndex, cohortIndex, len(f.survivalTimes))
	}
	if err := validateAlpha(alpha); err != nil {
		return nil, err
	}
	name := fmt.Sprintf("Survival times of cohort index %d", cohortIndex)
	return stats.NewSummaryStat(name, f.survivalTimes[cohortIndex]), nil
}

func validateAlpha(alpha float64) error {
	if math.IsNaN(alpha) || alpha <= 0 || alpha >= 1 {
		return fmt.Errorf("%w: significance level must be in (0, 1), got %v", ErrInvalidParameter, alpha)
	}
	return nil
}

func cloneRows[T any](rows [][]T) [][]T {
	out := make([][]T, len(rows))
	for i, r := range rows {
		out[i] = append([]T(nil), r...)
	}
	return out
}
