// Package axioms scores a relative measure against the four mathematical
// properties a good one should satisfy: invariance to shared effects,
// ordinal consistency with outcomes, scaling proportionality, and
// statistical optimality among candidate estimators.
package axioms

import (
	"context"

	"sefval/domain/report"
	"sefval/domain/sample"
	"sefval/domain/sef"
	"sefval/ports"
)

// DefaultThreshold is the per-axiom compliance threshold.
const DefaultThreshold = 0.6

// Config parameterizes an axiom validation run.
type Config struct {
	// Threshold a defined axiom score must reach for compliance.
	// Zero means DefaultThreshold.
	Threshold float64

	// MinSampleSize below which every axiom reports Undefined.
	MinSampleSize int

	// Seed drives the simulated perturbations of the invariance axiom.
	// Nil means fresh entropy.
	Seed *int64

	// ScaleFactors checked by the proportionality axiom.
	// Empty means {0.5, 2, 10}.
	ScaleFactors []float64
}

func (c Config) threshold() float64 {
	if c.Threshold <= 0 {
		return DefaultThreshold
	}
	return c.Threshold
}

func (c Config) minSize() int {
	if c.MinSampleSize <= 0 {
		return sample.DefaultMinSampleSize
	}
	return c.MinSampleSize
}

func (c Config) scaleFactors() []float64 {
	if len(c.ScaleFactors) == 0 {
		return []float64{0.5, 2, 10}
	}
	return c.ScaleFactors
}

// Scorer evaluates one axiom. Scorers are independent and side-effect free;
// the engine may run them in any order or in parallel.
type Scorer interface {
	Name() report.AxiomName
	Score(ctx context.Context, s sample.PairedSample, cfg Config) report.AxiomScore
}

// Engine orchestrates the four axiom scorers concurrently.
type Engine struct {
	scorers []Scorer
}

// NewEngine creates an engine with the four standard scorers. The measure
// under test is the canonical paired-difference estimator; the optimality
// axiom compares it against the alternative candidates.
func NewEngine(rng ports.RNGPort) *Engine {
	return &Engine{
		scorers: []Scorer{
			NewInvarianceScorer(rng),
			NewOrdinalScorer(),
			NewScalingScorer(),
			NewOptimalityScorer(),
		},
	}
}

// Validate scores all axioms for one metric's sample. Axioms that cannot be
// evaluated report Undefined and are excluded from the aggregate mean; they
// are never treated as zero.
func (e *Engine) Validate(ctx context.Context, s sample.PairedSample, cfg Config) report.AxiomResult {
	clean, _ := s.Clean()

	type indexed struct {
		score report.AxiomScore
		idx   int
	}
	results := make(chan indexed, len(e.scorers))
	for i, scorer := range e.scorers {
		go func(scorer Scorer, idx int) {
			results <- indexed{score: scorer.Score(ctx, clean, cfg), idx: idx}
		}(scorer, i)
	}

	scores := make([]report.AxiomScore, len(e.scorers))
	for range e.scorers {
		r := <-results
		scores[r.idx] = r.score
	}

	res := report.AxiomResult{
		Metric:    s.Metric,
		Scores:    scores,
		Threshold: cfg.threshold(),
	}

	defined := 0
	sum := 0.0
	compliant := true
	for _, sc := range scores {
		if sc.Undefined {
			continue
		}
		defined++
		sum += sc.Score
		if sc.Score < cfg.threshold() {
			compliant = false
		}
	}

	if defined == 0 {
		res.AggregateUndefined = true
		res.Compliant = false
		return res
	}
	res.Aggregate = sum / float64(defined)
	res.Compliant = compliant
	return res
}

// measure is the canonical relative measure every scorer evaluates.
func measure() sef.Estimator {
	return sef.PairedDifference()
}

func undefinedScore(name report.AxiomName, reason string) report.AxiomScore {
	return report.AxiomScore{Axiom: name, Undefined: true, Reason: reason}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
