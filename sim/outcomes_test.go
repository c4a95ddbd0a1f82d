package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cohort-sim/cohort-sim/sim/internal/testutil"
)

func fixedOutcome(times []float64, curve []int) *CohortOutcome {
	return &CohortOutcome{SurvivalTimes: times, NumLivingPerStep: curve}
}

func TestMultiCohortOutcomes_Extract_PreservesOrderAndAlignment(t *testing.T) {
	m := NewMultiCohortOutcomes()
	require.NoError(t, m.Extract(fixedOutcome([]float64{1, 2}, []int{2, 1, 0})))
	require.NoError(t, m.Extract(fixedOutcome([]float64{3, 3, 3}, []int{3, 3, 3, 3})))

	assert.Equal(t, 2, m.NumCohorts())
	assert.Equal(t, [][]float64{{1, 2}, {3, 3, 3}}, m.SurvivalTimesByCohort())
	assert.Equal(t, [][]int{{2, 1, 0}, {3, 3, 3, 3}}, m.SurvivalCurvesByCohort())
}

func TestMultiCohortOutcomes_Extract_Nil(t *testing.T) {
	m := NewMultiCohortOutcomes()
	err := m.Extract(nil)
	assert.True(t, errors.Is(err, ErrInvalidParameter))
	assert.Equal(t, 0, m.NumCohorts())
}

func TestMultiCohortOutcomes_Extract_RejectsMalformedOutcome(t *testing.T) {
	tests := []struct {
		name    string
		outcome *CohortOutcome
	}{
		{"empty curve", fixedOutcome([]float64{1, 2}, nil)},
		{"curve start differs from survival time count", fixedOutcome([]float64{1, 2}, []int{3, 1, 0})},
		{"increasing curve", fixedOutcome([]float64{1, 3}, []int{2, 1, 2})},
		{"negative living count", fixedOutcome([]float64{1, 1}, []int{2, 0, -1})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMultiCohortOutcomes()
			require.NoError(t, m.Extract(fixedOutcome([]float64{1}, []int{1, 0})))

			err := m.Extract(tt.outcome)
			assert.True(t, errors.Is(err, ErrInvalidParameter), "got %v", err)
			assert.Contains(t, err.Error(), "cohort index 1")
			assert.Equal(t, 1, m.NumCohorts(), "rejected outcome must not be recorded")
		})
	}
}

func TestMultiCohortOutcomes_AccessorsReturnCopies(t *testing.T) {
	m := NewMultiCohortOutcomes()
	require.NoError(t, m.Extract(fixedOutcome([]float64{1, 2}, []int{2, 1, 0})))

	times := m.SurvivalTimesByCohort()
	times[0][0] = 99
	assert.Equal(t, 1.0, m.SurvivalTimesByCohort()[0][0])
}

func TestMultiCohortOutcomes_Finalize_Empty(t *testing.T) {
	_, err := NewMultiCohortOutcomes().Finalize()
	assert.True(t, errors.Is(err, ErrEmptyAggregate), "got %v", err)
}

func TestMultiCohortOutcomes_Finalize_EmptyCohort(t *testing.T) {
	m := NewMultiCohortOutcomes()
	require.NoError(t, m.Extract(fixedOutcome([]float64{1}, []int{1, 0})))
	require.NoError(t, m.Extract(fixedOutcome(nil, []int{0})))

	_, err := m.Finalize()
	assert.True(t, errors.Is(err, ErrEmptyCohort), "got %v", err)
}

func TestMultiCohortOutcomes_Finalize_ComputesMeans(t *testing.T) {
	m := NewMultiCohortOutcomes()
	require.NoError(t, m.Extract(fixedOutcome([]float64{1, 2, 3}, []int{3, 2, 1, 1})))
	require.NoError(t, m.Extract(fixedOutcome([]float64{4, 4}, []int{2, 2, 2, 2, 2})))
	require.NoError(t, m.Extract(fixedOutcome([]float64{5, 1}, []int{2, 1, 1, 1, 1, 1})))

	f, err := m.Finalize()
	require.NoError(t, err)

	assert.Equal(t, 3, f.NumCohorts())
	assert.Equal(t, []float64{2, 4, 3}, f.MeanSurvivalTimeByCohort())

	sum := f.SummaryOfMeans()
	assert.Equal(t, SummaryOfMeansName, sum.Name())
	assert.Equal(t, 3, sum.N())
	assert.InDelta(t, 3.0, sum.Mean(), 1e-12)
}

func TestMultiCohortOutcomes_FinalizeIsOneShot(t *testing.T) {
	m := NewMultiCohortOutcomes()
	require.NoError(t, m.Extract(fixedOutcome([]float64{1, 2}, []int{2, 1, 0})))
	_, err := m.Finalize()
	require.NoError(t, err)

	_, err = m.Finalize()
	assert.True(t, errors.Is(err, ErrFinalized))
	err = m.Extract(fixedOutcome([]float64{1}, []int{1, 0}))
	assert.True(t, errors.Is(err, ErrFinalized))
	assert.Equal(t, 1, m.NumCohorts())
}

func finalizedFixture(t *testing.T) *FinalizedOutcomes {
	t.Helper()
	m := NewMultiCohortOutcomes()
	require.NoError(t, m.Extract(fixedOutcome([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, []int{10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 1})))
	require.NoError(t, m.Extract(fixedOutcome([]float64{10, 10, 10, 2, 2, 2}, []int{6, 6, 3, 3, 3, 3, 3, 3, 3, 3, 3})))
	require.NoError(t, m.Extract(fixedOutcome([]float64{5}, []int{1, 1, 1, 1, 1, 0})))
	f, err := m.Finalize()
	require.NoError(t, err)
	return f
}

func TestFinalizedOutcomes_ConfidenceIntervalOfMean_UsesRawCohortData(t *testing.T) {
	f := finalizedFixture(t)

	ci, err := f.ConfidenceIntervalOfMean(0, 0.05)
	require.NoError(t, err)

	// cohort 0: mean 5.5, sd sqrt(55/6), n=10, t(0.975, 9) = 2.2621572
	half := 2.2621572 * math.Sqrt(55.0/6.0) / math.Sqrt(10)
	assert.InDelta(t, 5.5-half, ci.Lower, 1e-5)
	assert.InDelta(t, 5.5+half, ci.Upper, 1e-5)
	assert.True(t, ci.Contains(f.MeanSurvivalTimeByCohort()[0]))
}

func TestFinalizedOutcomes_ConfidenceIntervalOfMean_WidensAsAlphaShrinks(t *testing.T) {
	f := finalizedFixture(t)

	prev := 0.0
	for _, alpha := range []float64{0.4, 0.1, 0.05, 0.01} {
		ci, err := f.ConfidenceIntervalOfMean(1, alpha)
		require.NoError(t, err)
		assert.Greater(t, ci.Width(), prev, "alpha=%v", alpha)
		prev = ci.Width()
	}
}

func TestFinalizedOutcomes_ConfidenceIntervalOfMean_SingleObservation(t *testing.T) {
	f := finalizedFixture(t)
	_, err := f.ConfidenceIntervalOfMean(2, 0.05)
	assert.True(t, errors.Is(err, ErrEmptyCohort), "got %v", err)
}

func TestFinalizedOutcomes_PredictionInterval(t *testing.T) {
	f := finalizedFixture(t)

	pi, err := f.PredictionInterval(0, 0.1)
	require.NoError(t, err)
	// percentiles 5 and 95 of 1..10 with linear interpolation
	assert.InDelta(t, 1.45, pi.Lower, 1e-9)
	assert.InDelta(t, 9.55, pi.Upper, 1e-9)

	ci, err := f.ConfidenceIntervalOfMean(0, 0.1)
	require.NoError(t, err)
	assert.Greater(t, pi.Width(), ci.Width())
}

func TestFinalizedOutcomes_IntervalQueries_Validation(t *testing.T) {
	f := finalizedFixture(t)

	tests := []struct {
		name    string
		index   int
		alpha   float64
		wantErr error
	}{
		{"index past end", 3, 0.05, ErrIndex},
		{"index far past end", 5, 0.05, ErrIndex},
		{"negative index", -1, 0.05, ErrIndex},
		{"alpha zero", 0, 0, ErrInvalidParameter},
		{"alpha one", 0, 1, ErrInvalidParameter},
		{"alpha negative", 0, -0.2, ErrInvalidParameter},
		{"alpha NaN", 0, math.NaN(), ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ConfidenceIntervalOfMean(tt.index, tt.alpha)
			assert.True(t, errors.Is(err, tt.wantErr), "CI: got %v", err)
			_, err = f.PredictionInterval(tt.index, tt.alpha)
			assert.True(t, errors.Is(err, tt.wantErr), "PI: got %v", err)
			_, err = f.BootstrapIntervalOfMean(tt.index, tt.alpha, 100, 1)
			assert.True(t, errors.Is(err, tt.wantErr), "bootstrap: got %v", err)
		})
	}
}

func TestFinalizedOutcomes_BootstrapIntervalOfMean(t *testing.T) {
	f := finalizedFixture(t)

	a, err := f.BootstrapIntervalOfMean(0, 0.05, 400, 8)
	require.NoError(t, err)
	b, err := f.BootstrapIntervalOfMean(0, 0.05, 400, 8)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.True(t, a.Contains(5.5))

	_, err = f.BootstrapIntervalOfMean(0, 0.05, 0, 8)
	assert.True(t, errors.Is(err, ErrInvalidParameter))
}

func TestFinalizedOutcomes_IntervalsOfMeans(t *testing.T) {
	f := finalizedFixture(t)
	means := f.MeanSurvivalTimeByCohort()
	assert.Equal(t, []float64{5.5, 6, 5}, means)

	ci, err := f.ConfidenceIntervalOfMeans(0.05)
	require.NoError(t, err)
	assert.True(t, ci.Contains(f.SummaryOfMeans().Mean()))

	pi, err := f.PredictionIntervalOfMeans(0.05)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, pi.Lower, 5.0)
	assert.LessOrEqual(t, pi.Upper, 6.0)

	_, err = f.ConfidenceIntervalOfMeans(2)
	assert.True(t, errors.Is(err, ErrInvalidParameter))
	_, err = f.PredictionIntervalOfMeans(0)
	assert.True(t, errors.Is(err, ErrInvalidParameter))
}

func TestFinalizedOutcomes_ConfidenceIntervalOfMeans_SingleCohort(t *testing.T) {
	m := NewMultiCohortOutcomes()
	require.NoError(t, m.Extract(fixedOutcome([]float64{1, 2}, []int{2, 1, 0})))
	f, err := m.Finalize()
	require.NoError(t, err)

	_, err = f.ConfidenceIntervalOfMeans(0.05)
	assert.True(t, errors.Is(err, ErrEmptyAggregate))
}

func TestFinalizedOutcomes_MeanSurvivalCurve(t *testing.T) {
	m := NewMultiCohortOutcomes()
	require.NoError(t, m.Extract(fixedOutcome([]float64{1, 1, 2, 2}, []int{4, 2, 0})))
	require.NoError(t, m.Extract(fixedOutcome([]float64{2, 2}, []int{2, 2, 2})))
	f, err := m.Finalize()
	require.NoError(t, err)

	curve := f.MeanSurvivalCurve()
	for k, want := range []float64{3, 2, 1} {
		testutil.AssertFloat64Equal(t, "mean curve", want, curve[k], 1e-12)
	}
}
