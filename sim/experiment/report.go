package experiment

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/cohort-sim/cohort-sim/sim"
	"github.com/cohort-sim/cohort-sim/sim/stats"
)

// CohortReport holds per-cohort results. CI and PI are computed from the
// cohort's individual survival times.
type CohortReport struct {
	ID                   int
	PopulationSize       int
	MortalityProbability float64
	Seed                 int64
	MeanSurvivalTime     float64
	Deaths               int
	CI                   stats.Interval
	PI                   stats.Interval
}

// Report summarizes a completed multi-cohort experiment.
type Report struct {
	NumTimeSteps int
	Alpha        float64
	Cohorts      []CohortReport

	// Cross-cohort statistics over the per-cohort mean survival times.
	MeanOfMeans float64
	Means       stats.Distribution
	CIOfMeans   *stats.Interval // nil with fewer than two cohorts
	PIOfMeans   stats.Interval

	MeanSurvivalCurve []float64
}

// Run validates cfg, simulates every cohort and builds the report.
func Run(cfg *Config) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ids, popSizes, probs, seeds := cfg.Columns()

	mc, err := sim.NewMultiCohort(ids, popSizes, probs)
	if err != nil {
		return nil, err
	}
	if err := mc.Simulate(cfg.NumTimeSteps, seeds); err != nil {
		return nil, err
	}
	out, err := mc.Outcomes()
	if err != nil {
		return nil, err
	}
	return NewReport(out, mc.Specs(), cfg.NumTimeSteps, cfg.SignificanceLevel())
}

// NewReport builds a Report from finalized outcomes and the cohort specs
// that produced them, index-aligned.
func NewReport(out *sim.FinalizedOutcomes, specs []sim.CohortSpec, numTimeSteps int, alpha float64) (*Report, error) {
	if len(specs) != out.NumCohorts() {
		return nil, fmt.Errorf("%w: %d specs for %d cohorts", sim.ErrConfiguration, len(specs), out.NumCohorts())
	}

	means := out.MeanSurvivalTimeByCohort()
	times := out.SurvivalTimesByCohort()
	curves := out.SurvivalCurvesByCohort()
	r := &Report{
		NumTimeSteps:      numTimeSteps,
		Alpha:             alpha,
		Cohorts:           make([]CohortReport, len(specs)),
		MeanOfMeans:       out.SummaryOfMeans().Mean(),
		Means:             out.SummaryOfMeans().Distribution(),
		MeanSurvivalCurve: out.MeanSurvivalCurve(),
	}

	for i, spec := range specs {
		pi, err := out.PredictionInterval(i, alpha)
		if err != nil {
			return nil, fmt.Errorf("cohort %d: %w", spec.ID, err)
		}
		cr := CohortReport{
			ID:                   spec.ID,
			PopulationSize:       spec.PopulationSize,
			MortalityProbability: spec.MortalityProbability,
			Seed:                 spec.Seed,
			MeanSurvivalTime:     means[i],
			Deaths:               (&sim.CohortOutcome{NumLivingPerStep: curves[i]}).NumDeaths(),
			PI:                   pi,
		}
		// Fewer than two survival times have no t interval; report a degenerate one.
		if len(times[i]) >= 2 {
			ci, err := out.ConfidenceIntervalOfMean(i, alpha)
			if err != nil {
				return nil, fmt.Errorf("cohort %d: %w", spec.ID, err)
			}
			cr.CI = ci
		} else {
			cr.CI = stats.Interval{Lower: means[i], Upper: means[i]}
		}
		r.Cohorts[i] = cr
	}

	if out.NumCohorts() >= 2 {
		ci, err := out.ConfidenceIntervalOfMeans(alpha)
		if err != nil {
			return nil, err
		}
		r.CIOfMeans = &ci
	}
	pi, err := out.PredictionIntervalOfMeans(alpha)
	if err != nil {
		return nil, err
	}
	r.PIOfMeans = pi

	return r, nil
}

// Log writes the report at Info level.
func (r *Report) Log() {
	confidence := 100 * (1 - r.Alpha)
	logrus.Infof("=== Multi-cohort survival report (%d cohorts, %d time steps) ===", len(r.Cohorts), r.NumTimeSteps)
	for _, c := range r.Cohorts {
		logrus.Infof("cohort %d: pop=%d p=%v seed=%d deaths=%d mean=%.4f %.0f%% CI=%s %.0f%% PI=%s",
			c.ID, c.PopulationSize, c.MortalityProbability, c.Seed, c.Deaths,
			c.MeanSurvivalTime, confidence, c.CI, confidence, c.PI)
	}
	logrus.Infof("mean of cohort means: %.4f (min=%.4f, p50=%.4f, max=%.4f)",
		r.MeanOfMeans, r.Means.Min, r.Means.P50, r.Means.Max)
	if r.CIOfMeans != nil {
		logrus.Infof("%.0f%% CI of mean survival time across cohorts: %s", confidence, *r.CIOfMeans)
	}
	logrus.Infof("%.0f%% PI of mean survival time across cohorts: %s", confidence, r.PIOfMeans)
}
