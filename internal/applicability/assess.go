// Package applicability scores how well a sample fits the SEF framework's
// assumptions: adequate size, bounded variance ratio, usable signal
// separation, approximate normality, and a meaningful effect size.
package applicability

import (
	"math"

	"github.com/montanaflynn/stats"

	"sefval/domain/report"
	"sefval/domain/sample"
	"sefval/domain/sef"
)

// Gate names used as keys in the Applicability record.
const (
	GateSampleSize    = "sample_size"
	GateVarianceRatio = "variance_ratio"
	GateSeparation    = "signal_separation"
	GateNormality     = "normality"
	GateEffectSize    = "effect_size"
)

// Assess runs the five framework-fit gates over a cleaned sample and its
// SEF parameters. The gates mirror the framework's published applicability
// criteria: n >= 20 per side, kappa in [0.5, 5], delta/sigma_A > 0.1,
// normality of both sides, and Cohen's d > 0.2.
func Assess(s sample.PairedSample, params sef.Params) report.Applicability {
	clean, _ := s.Clean()

	gates := make(map[string]bool, 5)
	result := report.Applicability{MaxScore: 5, Gates: gates}

	gates[GateSampleSize] = len(clean.A) >= 20 && len(clean.B) >= 20
	gates[GateVarianceRatio] = params.Kappa >= 0.5 && params.Kappa <= 5.0

	separation := 0.0
	if params.SigmaA > 0 {
		separation = params.Delta / params.SigmaA
	}
	gates[GateSeparation] = separation > 0.1

	normalA, pA := testNormality(clean.A)
	normalB, pB := testNormality(clean.B)
	result.NormalityPA = pA
	result.NormalityPB = pB
	gates[GateNormality] = normalA && normalB

	result.CohensD = pooledCohensD(clean.A, clean.B)
	gates[GateEffectSize] = math.Abs(result.CohensD) > 0.2

	for _, passed := range gates {
		if passed {
			result.Score++
		}
	}
	return result
}

// LogTransformCheck recomputes SEF on the log-transformed sample and reports
// the relative shift. Only defined when all observations are positive.
func LogTransformCheck(s sample.PairedSample, opts sef.Options) report.LogTransformCheck {
	raw := sef.Calculate(s, opts)
	check := report.LogTransformCheck{}
	if raw.Undefined || raw.InsufficientData {
		check.Undefined = true
		return check
	}
	check.RawSEF = raw.SEF

	logged := sample.PairedSample{Metric: s.Metric, Paired: s.Paired}
	for i := range s.A {
		if s.A[i] <= 0 || i >= len(s.B) || s.B[i] <= 0 {
			check.Undefined = true
			return check
		}
		logged.A = append(logged.A, math.Log(s.A[i]))
		logged.B = append(logged.B, math.Log(s.B[i]))
	}

	logResult := sef.Calculate(logged, opts)
	if logResult.Undefined || logResult.InsufficientData {
		check.Undefined = true
		return check
	}
	check.LogSEF = logResult.SEF
	check.RelativeShift = math.Abs(logResult.SEF-raw.SEF) / raw.SEF
	return check
}

func pooledCohensD(a, b []float64) float64 {
	if len(a) < 2 || len(b) < 2 {
		return 0
	}
	meanA, _ := stats.Mean(a)
	meanB, _ := stats.Mean(b)
	varA, _ := stats.SampleVariance(a)
	varB, _ := stats.SampleVariance(b)

	nA, nB := float64(len(a)), float64(len(b))
	pooled := math.Sqrt(((nA-1)*varA + (nB-1)*varB) / (nA + nB - 2))
	if pooled == 0 {
		return 0
	}
	return math.Abs(meanA-meanB) / pooled
}
