package axioms

import (
	"context"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"sefval/domain/report"
	"sefval/domain/sample"
)

// OrdinalScorer checks that the relative measure orders outcomes correctly:
// its mean conditioned on "A favored" must exceed its mean conditioned on
// "B favored".
type OrdinalScorer struct{}

// NewOrdinalScorer creates the ordinal-consistency scorer.
func NewOrdinalScorer() *OrdinalScorer {
	return &OrdinalScorer{}
}

func (sc *OrdinalScorer) Name() report.AxiomName {
	return report.AxiomOrdinal
}

// Score combines the standardized separation between the two outcome groups
// with the significance of a Welch two-sample test. A sample that cannot
// form both outcome groups reports Undefined, never a default split.
func (sc *OrdinalScorer) Score(ctx context.Context, s sample.PairedSample, cfg Config) report.AxiomScore {
	if !s.Paired || len(s.Outcomes) != len(s.A) {
		return undefinedScore(sc.Name(), "requires per-observation outcome labels")
	}

	var favoredA, favoredB []float64
	est := measure()
	for i := range s.A {
		v := est.Eval(s.A[i], s.B[i])
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		switch s.Outcomes[i] {
		case sample.OutcomeAFavored:
			favoredA = append(favoredA, v)
		case sample.OutcomeBFavored:
			favoredB = append(favoredB, v)
		}
	}

	if len(favoredA) < 2 || len(favoredB) < 2 {
		return undefinedScore(sc.Name(), "insufficient data to form both outcome groups")
	}

	meanA, _ := stats.Mean(favoredA)
	meanB, _ := stats.Mean(favoredB)
	d := cohensD(favoredA, favoredB)
	t, df := welchT(favoredA, favoredB)
	p := welchP(t, df)

	details := map[string]float64{
		"mean_a_favored": meanA,
		"mean_b_favored": meanB,
		"cohens_d":       d,
		"welch_t":        t,
		"welch_p":        p,
	}

	if meanA <= meanB {
		return report.AxiomScore{Axiom: sc.Name(), Score: 0, Details: details}
	}

	// Half the weight on effect magnitude (saturating at a large effect,
	// d = 0.8), half on test significance.
	effectComponent := clamp01(math.Abs(d) / 0.8)
	significanceComponent := clamp01(1 - p)
	score := 0.5*effectComponent + 0.5*significanceComponent

	return report.AxiomScore{Axiom: sc.Name(), Score: clamp01(score), Details: details}
}

// cohensD computes the pooled standardized mean difference.
func cohensD(a, b []float64) float64 {
	meanA, _ := stats.Mean(a)
	meanB, _ := stats.Mean(b)
	varA, _ := stats.SampleVariance(a)
	varB, _ := stats.SampleVariance(b)

	nA, nB := float64(len(a)), float64(len(b))
	pooled := math.Sqrt(((nA-1)*varA + (nB-1)*varB) / (nA + nB - 2))
	if pooled == 0 {
		return 0
	}
	return (meanA - meanB) / pooled
}

// welchT returns Welch's t statistic and Satterthwaite degrees of freedom.
func welchT(a, b []float64) (t, df float64) {
	meanA, _ := stats.Mean(a)
	meanB, _ := stats.Mean(b)
	varA, _ := stats.SampleVariance(a)
	varB, _ := stats.SampleVariance(b)

	nA, nB := float64(len(a)), float64(len(b))
	se2 := varA/nA + varB/nB
	if se2 == 0 {
		return 0, 1
	}
	t = (meanA - meanB) / math.Sqrt(se2)

	num := se2 * se2
	den := (varA*varA)/(nA*nA*(nA-1)) + (varB*varB)/(nB*nB*(nB-1))
	if den == 0 {
		return t, 1
	}
	df = num / den
	return t, df
}

// welchP converts the t statistic to a two-sided p-value.
func welchP(t, df float64) float64 {
	if df <= 0 {
		return 1
	}
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * (1 - dist.CDF(math.Abs(t)))
	if p > 1 {
		p = 1
	}
	if p < 0 {
		p = 0
	}
	return p
}
