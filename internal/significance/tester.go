// Package significance tests "SEF > 1" for one metric by bootstrapping the
// SEF sampling distribution. Bootstrap preserves the pairing structure; it
// estimates variability of SEF itself, not a null of no difference.
package significance

import (
	"context"

	"github.com/montanaflynn/stats"

	"sefval/domain/core"
	"sefval/domain/report"
	"sefval/domain/sample"
	"sefval/domain/sef"
	"sefval/internal/resample"
)

// DefaultRepetitions is the recommended bootstrap size; below it the
// requested percentiles of a 99% interval are undersampled.
const DefaultRepetitions = 1000

// Config parameterizes the tester.
type Config struct {
	Repetitions      int
	Seed             *int64
	Workers          int
	MinSampleSize    int
	ConfidenceLevels []float64
	SEF              sef.Options
}

func (c Config) repetitions() int {
	if c.Repetitions <= 0 {
		return DefaultRepetitions
	}
	return c.Repetitions
}

func (c Config) levels() []float64 {
	if len(c.ConfidenceLevels) == 0 {
		return []float64{0.95, 0.99}
	}
	return c.ConfidenceLevels
}

// Tester produces SignificanceResults from a shared resampler.
type Tester struct {
	resampler *resample.Resampler
}

// New creates a significance tester.
func New(r *resample.Resampler) *Tester {
	return &Tester{resampler: r}
}

// Test computes the observed SEF, bootstraps its distribution, and reports a
// one-sided p-value for "SEF <= 1", percentile confidence intervals, and a
// standardized effect size. Configuration errors surface before any draw;
// per-metric statistical failures are reported on the result record.
func (t *Tester) Test(ctx context.Context, s sample.PairedSample, cfg Config) (report.SignificanceResult, error) {
	for _, level := range cfg.levels() {
		if level <= 0 || level >= 1 {
			return report.SignificanceResult{}, core.ErrInvalidConfidence
		}
	}

	res := report.SignificanceResult{Metric: s.Metric}

	observed := sef.Calculate(s, cfg.SEF)
	res.Observed = observed
	if observed.Undefined || observed.InsufficientData {
		res.Undefined = true
		res.PValue = 1
		return res, nil
	}

	dist, err := t.resampler.Run(ctx, s, resample.SEFStatistic(cfg.SEF), resample.Config{
		Mode:          resample.ModeBootstrap,
		Repetitions:   cfg.repetitions(),
		Seed:          cfg.Seed,
		Workers:       cfg.Workers,
		MinSampleSize: cfg.MinSampleSize,
	})
	if err != nil {
		return report.SignificanceResult{}, err
	}

	res.Repetitions = dist.Requested
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

	// One-sided: probability that the enhancement disappears. Fixed
	// direction; see the result type's documentation.
	atOrBelowOne := 0
	for _, v := range dist.Values {
		if v <= 1 {
			atOrBelowOne++
		}
	}
	res.PValue = float64(atOrBelowOne) / float64(len(dist.Values))

	mean, _ := stats.Mean(dist.Values)
	sd, _ := stats.StandardDeviationSample(dist.Values)
	res.ResampleMean = mean
	res.ResampleStdDev = sd
	if sd > 0 {
		res.EffectSize = (observed.SEF - mean) / sd
	}

	for _, level := range cfg.levels() {
		iv, warn := percentileInterval(dist.Values, level)
		if warn {
			res.Warnings = append(res.Warnings, report.WarningLowPercentileResolution)
		}
		res.Intervals = append(res.Intervals, iv)
	}

	return res, nil
}

// percentileInterval computes the two-sided percentile interval at the given
// level. The warn flag fires when the tail mass is supported by fewer than
// 10 resampled values, per the undersampling rule N*(1-level) < 10.
func percentileInterval(values []float64, level float64) (report.Interval, bool) {
	alpha := 1 - level
	lower, _ := stats.Percentile(values, 100*alpha/2)
	upper, _ := stats.Percentile(values, 100*(1-alpha/2))

	low := float64(len(values))*(1-level) < 10
	return report.Interval{
		Level:         level,
		Lower:         lower,
		Upper:         upper,
		LowResolution: low,
	}, low
}
