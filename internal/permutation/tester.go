// Package permutation tests whether an observed separation between the two
// entities is compatible with no real group difference, by shuffling entity
// labels to build a null distribution. Unlike the bootstrap significance
// test, permutation deliberately breaks the pairing structure.
package permutation

import (
	"context"
	"math"

	"github.com/montanaflynn/stats"

	"sefval/domain/core"
	"sefval/domain/report"
	"sefval/domain/sample"
	"sefval/internal/resample"
)

// DefaultPermutations is the recommended null-distribution size.
const DefaultPermutations = 10000

// StatisticKind selects the observed statistic under test.
type StatisticKind string

const (
	StatisticSEF            StatisticKind = "sef"
	StatisticMeanDifference StatisticKind = "mean_difference"
)

// Config parameterizes a permutation test.
type Config struct {
	Statistic     StatisticKind
	Sided         report.Sidedness
	Permutations  int
	Seed          *int64
	Workers       int
	MinSampleSize int

	// SEFStatistic supplies the statistic when Statistic is StatisticSEF.
	SEFStatistic resample.Statistic
}

func (c Config) permutations() int {
	if c.Permutations <= 0 {
		return DefaultPermutations
	}
	return c.Permutations
}

// Tester runs permutation tests through a shared resampler.
type Tester struct {
	resampler *resample.Resampler
}

// New creates a permutation tester.
func New(r *resample.Resampler) *Tester {
	return &Tester{resampler: r}
}

// Test computes the observed statistic, builds the permutation null, and
// reports the p-value for the configured direction plus a standardized
// effect size against the null. The (b+1)/(M+1) correction keeps the
// p-value strictly positive.
func (t *Tester) Test(ctx context.Context, s sample.PairedSample, cfg Config) (report.PermutationResult, error) {
	stat, name, err := t.statistic(cfg)
	if err != nil {
		return report.PermutationResult{}, err
	}
	sided := cfg.Sided
	if sided == "" {
		sided = TwoSidedDefault()
	}

	res := report.PermutationResult{
		Metric:    s.Metric,
		Statistic: name,
		Sided:     sided,
	}

	clean, _ := s.Clean()
	observed, ok := stat(clean)
	if !ok {
		res.Undefined = true
		res.PValue = 1
		return res, nil
	}
	res.Observed = observed

	dist, err := t.resampler.Run(ctx, s, stat, resample.Config{
		Mode:          resample.ModePermutation,
		Repetitions:   cfg.permutations(),
		Seed:          cfg.Seed,
		Workers:       cfg.Workers,
		MinSampleSize: cfg.MinSampleSize,
	})
	if err != nil {
		return report.PermutationResult{}, err
	}

	res.Permutations = dist.Requested
	res.Dropped = dist.Dropped
	if dist.Empty {
		res.Undefined = true
		res.PValue = 1
		res.Warnings = append(res.Warnings, report.WarningEmptyDistribution)
		return res, nil
	}
	if dist.Dropped > 0 {
		res.Warnings = append(res.Warnings, report.WarningDroppedRepetitions)
	}

	extreme := 0
	for _, v := range dist.Values {
		switch sided {
		case report.OneSidedGreater:
			if v >= observed {
				extreme++
			}
		default:
			if math.Abs(v) >= math.Abs(observed) {
				extreme++
			}
		}
	}
	res.PValue = float64(extreme+1) / float64(len(dist.Values)+1)

	mean, _ := stats.Mean(dist.Values)
	sd, _ := stats.StandardDeviationSample(dist.Values)
	res.NullMean = mean
	res.NullStdDev = sd
	if sd > 0 {
		res.EffectSize = (observed - mean) / sd
	}

	return res, nil
}

func (t *Tester) statistic(cfg Config) (resample.Statistic, string, error) {
	switch cfg.Statistic {
	case StatisticSEF:
		if cfg.SEFStatistic == nil {
			return nil, "", core.NewConfigurationError("sef_statistic", "must be set for the sef statistic kind")
		}
		return cfg.SEFStatistic, string(StatisticSEF), nil
	case StatisticMeanDifference, "":
		return resample.MeanDifferenceStatistic(), string(StatisticMeanDifference), nil
	default:
		return nil, "", core.NewConfigurationError("statistic",
			"unknown permutation statistic "+string(cfg.Statistic))
	}
}

// TwoSidedDefault returns the default sidedness.
func TwoSidedDefault() report.Sidedness {
	return report.TwoSided
}
