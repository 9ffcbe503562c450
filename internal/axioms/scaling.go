package axioms

import (
	"context"
	"math"
	"strconv"
	"strings"

	"sefval/domain/report"
	"sefval/domain/sample"
)

// ScalingScorer checks proportionality: R(alpha*A, alpha*B) must equal
// alpha * R(A, B) for every checked alpha.
type ScalingScorer struct{}

// NewScalingScorer creates the scaling-proportionality scorer.
func NewScalingScorer() *ScalingScorer {
	return &ScalingScorer{}
}

func (sc *ScalingScorer) Name() report.AxiomName {
	return report.AxiomScaling
}

// Score evaluates the proportionality error at each configured scale factor
// and scores 1 minus the mean normalized error.
func (sc *ScalingScorer) Score(ctx context.Context, s sample.PairedSample, cfg Config) report.AxiomScore {
	if !s.Paired || len(s.A) < cfg.minSize() {
		return undefinedScore(sc.Name(), "requires a paired sample at minimum size")
	}

	est := measure()
	base := est.Apply(s.A, s.B)
	if len(base) == 0 {
		return undefinedScore(sc.Name(), "relative measure undefined on all observations")
	}

	meanAbsBase := 0.0
	for _, v := range base {
		meanAbsBase += math.Abs(v)
	}
	meanAbsBase /= float64(len(base))
	if meanAbsBase == 0 {
		return undefinedScore(sc.Name(), "relative measure identically zero")
	}

	details := make(map[string]float64, len(cfg.scaleFactors()))
	totalErr := 0.0
	for _, alpha := range cfg.scaleFactors() {
		scaledA := scale(s.A, alpha)
		scaledB := scale(s.B, alpha)
		scaled := est.Apply(scaledA, scaledB)
		if len(scaled) != len(base) {
			return undefinedScore(sc.Name(), "scaling changed measure domain")
		}

		err := 0.0
		for i := range base {
			err += math.Abs(scaled[i] - alpha*base[i])
		}
		err /= float64(len(base)) * math.Abs(alpha) * meanAbsBase

		details["error_alpha_"+formatAlpha(alpha)] = err
		totalErr += err
	}

	meanErr := totalErr / float64(len(cfg.scaleFactors()))
	return report.AxiomScore{
		Axiom:   sc.Name(),
		Score:   clamp01(1 - meanErr),
		Details: details,
	}
}

func scale(data []float64, alpha float64) []float64 {
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = alpha * v
	}
	return out
}

func formatAlpha(alpha float64) string {
	return strings.ReplaceAll(strconv.FormatFloat(alpha, 'g', -1, 64), ".", "_")
}
