package sef

import "math"

// EstimatorName labels a candidate relative-measure estimator.
type EstimatorName string

const (
	EstimatorPairedDifference     EstimatorName = "paired_difference"
	EstimatorLogRatio             EstimatorName = "log_ratio"
	EstimatorNormalizedDifference EstimatorName = "normalized_difference"
)

// Estimator maps one paired observation to a relative measure. NaN marks an
// observation outside the estimator's domain (e.g. log of a non-positive
// ratio) and is excluded by consumers.
type Estimator struct {
	Name EstimatorName
	Eval func(a, b float64) float64
}

// PairedDifference is the framework's canonical relative measure, R = A - B.
func PairedDifference() Estimator {
	return Estimator{
		Name: EstimatorPairedDifference,
		Eval: func(a, b float64) float64 { return a - b },
	}
}

// LogRatio is the multiplicative alternative, R = ln(A/B).
func LogRatio() Estimator {
	return Estimator{
		Name: EstimatorLogRatio,
		Eval: func(a, b float64) float64 {
			if a <= 0 || b <= 0 {
				return math.NaN()
			}
			return math.Log(a / b)
		},
	}
}

// NormalizedDifference scales the difference by the pair mean,
// R = (A - B) / ((A + B) / 2).
func NormalizedDifference() Estimator {
	return Estimator{
		Name: EstimatorNormalizedDifference,
		Eval: func(a, b float64) float64 {
			m := (a + b) / 2
			if m == 0 {
				return math.NaN()
			}
			return (a - b) / m
		},
	}
}

// CandidateEstimators returns the comparison set used by the statistical
// optimality axiom, canonical estimator first.
func CandidateEstimators() []Estimator {
	return []Estimator{PairedDifference(), LogRatio(), NormalizedDifference()}
}

// Apply evaluates the estimator over aligned sequences, skipping
// out-of-domain pairs.
func (e Estimator) Apply(a, b []float64) []float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	out := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		v := e.Eval(a[i], b[i])
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}
