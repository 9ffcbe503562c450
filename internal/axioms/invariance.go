package axioms

import (
	"context"
	"math"

	"github.com/montanaflynn/stats"

	"sefval/domain/report"
	"sefval/domain/sample"
	"sefval/ports"
)

// InvarianceScorer checks that injecting a simulated common perturbation
// into both entities leaves the relative measure unchanged.
type InvarianceScorer struct {
	rng ports.RNGPort
}

// NewInvarianceScorer creates the shared-effects invariance scorer.
func NewInvarianceScorer(rng ports.RNGPort) *InvarianceScorer {
	return &InvarianceScorer{rng: rng}
}

func (sc *InvarianceScorer) Name() report.AxiomName {
	return report.AxiomInvariance
}

// Score perturbs both sides by the same per-observation shift, scaled to the
// sample's own spread, and scores 1 minus the normalized deviation of the
// relative measure from exact invariance.
func (sc *InvarianceScorer) Score(ctx context.Context, s sample.PairedSample, cfg Config) report.AxiomScore {
	if !s.Paired || len(s.A) < cfg.minSize() {
		return undefinedScore(sc.Name(), "requires a paired sample at minimum size")
	}

	gen, err := sc.seededGen(ctx, cfg)
	if err != nil {
		return undefinedScore(sc.Name(), "rng unavailable")
	}

	base := measure().Apply(s.A, s.B)
	if len(base) == 0 {
		return undefinedScore(sc.Name(), "relative measure undefined on all observations")
	}

	sd, _ := stats.StandardDeviationSample(s.A)
	if sd == 0 {
		sd = 1
	}

	// Shared environmental shift, one draw per observation, same value added
	// to both entities.
	perturbedA := make([]float64, len(s.A))
	perturbedB := make([]float64, len(s.B))
	perturbMagnitude := 0.0
	for i := range s.A {
		shift := (gen.Float64()*2 - 1) * sd
		perturbedA[i] = s.A[i] + shift
		perturbedB[i] = s.B[i] + shift
		perturbMagnitude += math.Abs(shift)
	}
	perturbMagnitude /= float64(len(s.A))

	perturbed := measure().Apply(perturbedA, perturbedB)
	if len(perturbed) != len(base) {
		return undefinedScore(sc.Name(), "perturbation changed measure domain")
	}

	deviation := 0.0
	for i := range base {
		deviation += math.Abs(perturbed[i] - base[i])
	}
	deviation /= float64(len(base))

	normalized := 0.0
	if perturbMagnitude > 0 {
		normalized = deviation / perturbMagnitude
	}

	return report.AxiomScore{
		Axiom: sc.Name(),
		Score: clamp01(1 - normalized),
		Details: map[string]float64{
			"mean_deviation":         deviation,
			"perturbation_magnitude": perturbMagnitude,
		},
	}
}

func (sc *InvarianceScorer) seededGen(ctx context.Context, cfg Config) (randSource, error) {
	if cfg.Seed != nil {
		return sc.rng.SeededStream(ctx, "axiom-invariance", *cfg.Seed)
	}
	return sc.rng.Entropy(ctx)
}

// randSource is the subset of math/rand used here.
type randSource interface {
	Float64() float64
}
