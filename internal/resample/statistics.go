package resample

import (
	"github.com/montanaflynn/stats"

	"sefval/domain/sample"
	"sefval/domain/sef"
)

// SEFStatistic adapts the canonical SEF calculator to the resampler's
// statistic contract. Draws where SEF is undefined are dropped.
func SEFStatistic(opts sef.Options) Statistic {
	return func(s sample.PairedSample) (float64, bool) {
		res := sef.Calculate(s, opts)
		if res.Undefined || res.InsufficientData {
			return 0, false
		}
		return res.SEF, true
	}
}

// MeanDifferenceStatistic returns mean(A) - mean(B), the plain separation
// statistic used by permutation tests that target group difference rather
// than SEF itself.
func MeanDifferenceStatistic() Statistic {
	return func(s sample.PairedSample) (float64, bool) {
		if len(s.A) == 0 || len(s.B) == 0 {
			return 0, false
		}
		muA, errA := stats.Mean(s.A)
		muB, errB := stats.Mean(s.B)
		if errA != nil || errB != nil {
			return 0, false
		}
		return muA - muB, true
	}
}
