// Package correction adjusts a batch of raw p-values for multiple
// comparisons. The batch must be complete: correcting subsets in separate
// calls silently weakens the error control and is not supported.
package correction

import (
	"fmt"
	"sort"

	"sefval/domain/core"
	"sefval/domain/report"
)

// DefaultAlpha is the significance threshold applied to corrected p-values.
const DefaultAlpha = 0.05

// Corrector applies one correction method to full hypothesis batches.
type Corrector struct {
	method report.CorrectionMethod
	alpha  float64
}

// New creates a corrector. An unknown method is a configuration error.
func New(method report.CorrectionMethod, alpha float64) (*Corrector, error) {
	if _, err := report.ParseCorrectionMethod(string(method)); err != nil {
		return nil, err
	}
	if alpha <= 0 || alpha >= 1 {
		return nil, core.NewConfigurationError("alpha", "must be in (0, 1)")
	}
	return &Corrector{method: method, alpha: alpha}, nil
}

// Correct adjusts the complete batch and returns per-hypothesis corrected
// p-values and significance flags in the original input order.
func (c *Corrector) Correct(rawP []float64) (report.CorrectionResult, error) {
	if len(rawP) == 0 {
		return report.CorrectionResult{}, core.NewConfigurationError("p_values", "empty batch")
	}
	for i, p := range rawP {
		if p < 0 || p > 1 {
			return report.CorrectionResult{}, core.NewConfigurationError("p_values",
				fmt.Sprintf("p[%d]=%g outside [0,1]", i, p))
		}
	}

	var corrected []float64
	switch c.method {
	case report.CorrectionBonferroni:
		corrected = bonferroni(rawP)
	case report.CorrectionHolm:
		corrected = holm(rawP)
	case report.CorrectionFDR:
		corrected = benjaminiHochberg(rawP)
	default:
		return report.CorrectionResult{}, core.ErrUnknownCorrection
	}

	result := report.CorrectionResult{
		Method:     c.method,
		Alpha:      c.alpha,
		Hypotheses: make([]report.HypothesisCorrection, len(rawP)),
	}
	for i := range rawP {
		result.Hypotheses[i] = report.HypothesisCorrection{
			Index:       i,
			RawP:        rawP[i],
			CorrectedP:  corrected[i],
			Significant: corrected[i] <= c.alpha,
		}
	}
	return result, nil
}

func bonferroni(rawP []float64) []float64 {
	k := float64(len(rawP))
	out := make([]float64, len(rawP))
	for i, p := range rawP {
		out[i] = clamp01(p * k)
	}
	return out
}

// ascending returns input indices ordered by raw p-value.
func ascending(rawP []float64) []int {
	order := make([]int, len(rawP))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return rawP[order[a]] < rawP[order[b]]
	})
	return order
}

// holm is the step-down family-wise procedure: the r-th smallest p-value is
// scaled by (K - r + 1), then monotonicity is enforced by propagating the
// running maximum from the most significant end.
func holm(rawP []float64) []float64 {
	k := len(rawP)
	order := ascending(rawP)

	out := make([]float64, k)
	runningMax := 0.0
	for rank, idx := range order {
		adjusted := rawP[idx] * float64(k-rank)
		if adjusted < runningMax {
			adjusted = runningMax
		} else {
			runningMax = adjusted
		}
		out[idx] = clamp01(adjusted)
	}
	return out
}

// benjaminiHochberg controls the false discovery rate: the r-th smallest
// p-value is scaled by K/r, then monotonicity is enforced by propagating the
// running minimum from the least significant end.
func benjaminiHochberg(rawP []float64) []float64 {
	k := len(rawP)
	order := ascending(rawP)

	out := make([]float64, k)
	runningMin := 1.0
	for rank := k - 1; rank >= 0; rank-- {
		idx := order[rank]
		adjusted := rawP[idx] * float64(k) / float64(rank+1)
		if adjusted > runningMin {
			adjusted = runningMin
		} else {
			runningMin = adjusted
		}
		out[idx] = clamp01(adjusted)
	}
	return out
}

func clamp01(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}
