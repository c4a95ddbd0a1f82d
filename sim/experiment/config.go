// Package experiment loads multi-cohort experiment files and turns a
// completed simulation into a report.
package experiment

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cohort-sim/cohort-sim/sim"
)

// DefaultAlpha is the significance level used when a config omits alpha.
const DefaultAlpha = 0.05

// Config is the top-level experiment configuration.
// Loaded from YAML via LoadConfig(path).
type Config struct {
	NumTimeSteps int            `yaml:"num_time_steps"`
	Alpha        *float64       `yaml:"alpha,omitempty"`
	Cohorts      []CohortConfig `yaml:"cohorts"`
}

// CohortConfig defines one cohort of the experiment.
// Seed is a pointer so an omitted seed is distinguishable from seed: 0.
type CohortConfig struct {
	ID                   int     `yaml:"id"`
	PopulationSize       int     `yaml:"population_size"`
	MortalityProbability float64 `yaml:"mortality_probability"`
	Seed                 *int64  `yaml:"seed"`
}

// LoadConfig reads and parses a YAML experiment file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading experiment config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML experiment bytes with strict field checking.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: experiment config is empty", sim.ErrConfiguration)
		}
		return nil, fmt.Errorf("%w: parsing experiment config: %v", sim.ErrConfiguration, err)
	}
	return &cfg, nil
}

// SignificanceLevel returns the configured alpha, or DefaultAlpha if unset.
func (c *Config) SignificanceLevel() float64 {
	if c.Alpha == nil {
		return DefaultAlpha
	}
	return *c.Alpha
}

// Validate checks that all fields in the config are valid.
func (c *Config) Validate() error {
	if c.NumTimeSteps <= 0 {
		return fmt.Errorf("%w: num_time_steps must be positive, got %d", sim.ErrInvalidParameter, c.NumTimeSteps)
	}
	alpha := c.SignificanceLevel()
	if math.IsNaN(alpha) || alpha <= 0 || alpha >= 1 {
		return fmt.Errorf("%w: alpha must be in (0, 1), got %v", sim.ErrInvalidParameter, alpha)
	}
	if len(c.Cohorts) == 0 {
		return fmt.Errorf("%w: at least one cohort required", sim.ErrConfiguration)
	}
	seen := make(map[int]bool, len(c.Cohorts))
	for i, cc := range c.Cohorts {
		prefix := fmt.Sprintf("cohorts[%d]", i)
		if seen[cc.ID] {
			return fmt.Errorf("%w: %s: duplicate id %d", sim.ErrConfiguration, prefix, cc.ID)
		}
		seen[cc.ID] = true
		if cc.Seed == nil {
			return fmt.Errorf("%w: %s: seed is required", sim.ErrConfiguration, prefix)
		}
		if err := cc.spec().Validate(); err != nil {
			return fmt.Errorf("%s: %w", prefix, err)
		}
	}
	return nil
}

// Columns splits the cohorts into the aligned sequences sim.NewMultiCohort
// and (*sim.MultiCohort).Simulate expect. Index i of every slice describes
// cohort i.
func (c *Config) Columns() (ids []int, popSizes []int, mortalityProbs []float64, seeds []int64) {
	n := len(c.Cohorts)
	ids = make([]int, n)
	popSizes = make([]int, n)
	mortalityProbs = make([]float64, n)
	seeds = make([]int64, n)
	for i, cc := range c.Cohorts {
		ids[i] = cc.ID
		popSizes[i] = cc.PopulationSize
		mortalityProbs[i] = cc.MortalityProbability
		seeds[i] = cc.seed()
	}
	return ids, popSizes, mortalityProbs, seeds
}

func (cc CohortConfig) spec() sim.CohortSpec {
	return sim.CohortSpec{
		ID:                   cc.ID,
		PopulationSize:       cc.PopulationSize,
		MortalityProbability: cc.MortalityProbability,
		Seed:                 cc.seed(),
	}
}

func (cc CohortConfig) seed() int64 {
	if cc.Seed == nil {
		return 0
	}
	return *cc.Seed
}
