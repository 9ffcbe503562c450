package axioms

import (
	"context"
	"math"

	"github.com/montanaflynn/stats"

	"sefval/domain/report"
	"sefval/domain/sample"
	"sefval/domain/sef"
)

// OptimalityScorer compares the paired-difference estimator's mean-squared
// error at predicting the outcome signal against the alternative candidate
// estimators (log-ratio, normalized difference).
type OptimalityScorer struct{}

// NewOptimalityScorer creates the statistical-optimality scorer.
func NewOptimalityScorer() *OptimalityScorer {
	return &OptimalityScorer{}
}

func (sc *OptimalityScorer) Name() report.AxiomName {
	return report.AxiomOptimality
}

// Score standardizes each candidate's values and measures its MSE against a
// +1/-1 outcome target. Score is 1 when the paired difference is
// MSE-minimal; otherwise the relative MSE ratio (best / paired-difference).
func (sc *OptimalityScorer) Score(ctx context.Context, s sample.PairedSample, cfg Config) report.AxiomScore {
	if !s.Paired || len(s.Outcomes) != len(s.A) {
		return undefinedScore(sc.Name(), "requires per-observation outcome labels")
	}

	details := make(map[string]float64)
	mses := make(map[sef.EstimatorName]float64)
	for _, est := range sef.CandidateEstimators() {
		mse, ok := outcomeMSE(s, est)
		if !ok {
			continue
		}
		mses[est.Name] = mse
		details["mse_"+string(est.Name)] = mse
	}

	pdMSE, ok := mses[sef.EstimatorPairedDifference]
	if !ok {
		return undefinedScore(sc.Name(), "paired-difference estimator undefined on this sample")
	}
	if len(mses) < 2 {
		return undefinedScore(sc.Name(), "no alternative estimator evaluable for comparison")
	}

	best := pdMSE
	for _, mse := range mses {
		if mse < best {
			best = mse
		}
	}

	score := 1.0
	if pdMSE > best && pdMSE > 0 {
		score = best / pdMSE
	}

	return report.AxiomScore{Axiom: sc.Name(), Score: clamp01(score), Details: details}
}

// outcomeMSE standardizes the estimator's values and returns the MSE against
// the signed outcome target. ok=false when the estimator's domain or the
// outcome groups are too thin to evaluate.
func outcomeMSE(s sample.PairedSample, est sef.Estimator) (float64, bool) {
	var values, targets []float64
	for i := range s.A {
		var target float64
		switch s.Outcomes[i] {
		case sample.OutcomeAFavored:
			target = 1
		case sample.OutcomeBFavored:
			target = -1
		default:
			continue
		}
		v := est.Eval(s.A[i], s.B[i])
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		values = append(values, v)
		targets = append(targets, target)
	}

	if len(values) < 4 {
		return 0, false
	}

	mean, _ := stats.Mean(values)
	sd, _ := stats.StandardDeviationSample(values)
	if sd == 0 {
		return 0, false
	}

	mse := 0.0
	for i, v := range values {
		z := (v - mean) / sd
		diff := z - targets[i]
		mse += diff * diff
	}
	return mse / float64(len(values)), true
}
