// Package stats provides summary statistics and interval estimates over a
// sample of real-valued observations.
//
// A SummaryStat is immutable once built: every method is a pure function of
// the data it was constructed from (plus alpha, where applicable).
package stats

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	// ErrInsufficientData is returned when a statistic is requested from a
	// sample too small to define it.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrInvalidAlpha is returned when a significance level is outside (0,1).
	ErrInvalidAlpha = errors.New("significance level must be in (0, 1)")

	// ErrInvalidSampleCount is returned when a bootstrap is asked for a
	// non-positive number of resamples.
	ErrInvalidSampleCount = errors.New("bootstrap sample count must be positive")
)

// Interval is a closed interval estimate [Lower, Upper].
type Interval struct {
	Lower float64
	Upper float64
}

// Width returns Upper - Lower.
func (iv Interval) Width() float64 {
	return iv.Upper - iv.Lower
}

// Contains reports whether x lies in the closed interval.
func (iv Interval) Contains(x float64) bool {
	return iv.Lower <= x && x <= iv.Upper
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%.4f, %.4f]", iv.Lower, iv.Upper)
}

// SummaryStat summarizes a labelled sample of observations.
type SummaryStat struct {
	name   string
	data   []float64
	sorted []float64
}

// NewSummaryStat builds a SummaryStat over a copy of data.
func NewSummaryStat(name string, data []float64) *SummaryStat {
	own := make([]float64, len(data))
	copy(own, data)
	return &SummaryStat{
		name:   name,
		data:   own,
		sorted: sortedCopy(own),
	}
}

// Name returns the label given at construction.
func (s *SummaryStat) Name() string { return s.name }

// N returns the number of observations.
func (s *SummaryStat) N() int { return len(s.data) }

// Mean returns the arithmetic mean, or NaN for an empty sample.
func (s *SummaryStat) Mean() float64 {
	if len(s.data) == 0 {
		return math.NaN()
	}
	return stat.Mean(s.data, nil)
}

// StDev returns the sample standard deviation (n-1 denominator), or NaN
// when fewer than two observations exist.
func (s *SummaryStat) StDev() float64 {
	if len(s.data) < 2 {
		return math.NaN()
	}
	return stat.StdDev(s.data, nil)
}

// StErr returns the standard error of the mean.
func (s *SummaryStat) StErr() float64 {
	return s.StDev() / math.Sqrt(float64(len(s.data)))
}

// Min returns the smallest observation, or NaN for an empty sample.
func (s *SummaryStat) Min() float64 {
	if len(s.sorted) == 0 {
		return math.NaN()
	}
	return s.sorted[0]
}

// Max returns the largest observation, or NaN for an empty sample.
func (s *SummaryStat) Max() float64 {
	if len(s.sorted) == 0 {
		return math.NaN()
	}
	return s.sorted[len(s.sorted)-1]
}

// Percentile returns the q-th percentile, q in [0,100].
func (s *SummaryStat) Percentile(q float64) float64 {
	return percentile(s.sorted, q)
}

// Distribution returns the compact percentile summary of the sample.
func (s *SummaryStat) Distribution() Distribution {
	return NewDistribution(s.data)
}

// ConfidenceInterval returns the Student's t confidence interval for the
// population mean at significance level alpha.
func (s *SummaryStat) ConfidenceInterval(alpha float64) (Interval, error) {
	if err := validateAlpha(alpha); err != nil {
		return Interval{}, err
	}
	n := len(s.data)
	if n < 2 {
		return Interval{}, fmt.Errorf("%w: %q has %d observations, t interval needs at least 2", ErrInsufficientData, s.name, n)
	}
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}.Quantile(1 - alpha/2)
	mean := s.Mean()
	half := t * s.StErr()
	return Interval{Lower: mean - half, Upper: mean + half}, nil
}

// PredictionInterval returns the percentile interval
// [P(100·alpha/2), P(100·(1-alpha/2))] of the observations, an interval
// estimate for one future observation.
func (s *SummaryStat) PredictionInterval(alpha float64) (Interval, error) {
	if err := validateAlpha(alpha); err != nil {
		return Interval{}, err
	}
	if len(s.data) == 0 {
		return Interval{}, fmt.Errorf("%w: %q has no observations", ErrInsufficientData, s.name)
	}
	return Interval{
		Lower: percentile(s.sorted, 100*alpha/2),
		Upper: percentile(s.sorted, 100*(1-alpha/2)),
	}, nil
}

// BootstrapConfidenceInterval returns a percentile-bootstrap confidence
// interval for the mean using numSamples resamples drawn from rng.
func (s *SummaryStat) BootstrapConfidenceInterval(alpha float64, numSamples int, rng *rand.Rand) (Interval, error) {
	if err := validateAlpha(alpha); err != nil {
		return Interval{}, err
	}
	n := len(s.data)
	if n == 0 {
		return Interval{}, fmt.Errorf("%w: %q has no observations", ErrInsufficientData, s.name)
	}
	if numSamples <= 0 {
		return Interval{}, fmt.Errorf("%w: got %d", ErrInvalidSampleCount, numSamples)
	}

	means := make([]float64, numSamples)
	for b := range means {
		sum := 0.0
		for i := 0; i < n; i++ {
			sum += s.data[rng.Intn(n)]
		}
		means[b] = sum / float64(n)
	}
	sorted := sortedCopy(means)
	return Interval{
		Lower: percentile(sorted, 100*alpha/2),
		Upper: percentile(sorted, 100*(1-alpha/2)),
	}, nil
}

func validateAlpha(alpha float64) error {
	if math.IsNaN(alpha) || alpha <= 0 || alpha >= 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidAlpha, alpha)
	}
	return nil
}
