// Package testkit generates synthetic paired samples with known population
// parameters for the engine's tests.
package testkit

import (
	"math"
	"math/rand"

	"sefval/domain/core"
	"sefval/domain/sample"
)

// PairedSpec describes the synthetic population to draw from.
type PairedSpec struct {
	N      int
	MuA    float64
	MuB    float64
	SigmaA float64
	SigmaB float64
	Rho    float64
	Seed   int64
}

// GeneratePaired draws N correlated normal pairs with the requested means,
// standard deviations and correlation.
func GeneratePaired(metric core.MetricKey, spec PairedSpec) sample.PairedSample {
	gen := rand.New(rand.NewSource(spec.Seed))

	a := make([]float64, spec.N)
	b := make([]float64, spec.N)
	for i := 0; i < spec.N; i++ {
		z1 := gen.NormFloat64()
		z2 := gen.NormFloat64()
		// Cholesky factor of the 2x2 correlation matrix.
		corr := spec.Rho*z1 + math.Sqrt(1-spec.Rho*spec.Rho)*z2
		a[i] = spec.MuA + spec.SigmaA*z1
		b[i] = spec.MuB + spec.SigmaB*corr
	}

	return sample.PairedSample{Metric: metric, A: a, B: b, Paired: true}
}

// WithRoundRobinGroups labels observations with k groups cycling in order.
func WithRoundRobinGroups(s sample.PairedSample, groups []core.GroupID) sample.PairedSample {
	labels := make([]core.GroupID, len(s.A))
	for i := range labels {
		labels[i] = groups[i%len(groups)]
	}
	out := s
	out.Groups = labels
	return out
}

// WithDifferenceOutcomes labels each observation by the sign of A-B, the
// outcome pattern a well-behaved relative measure should recover.
func WithDifferenceOutcomes(s sample.PairedSample) sample.PairedSample {
	outcomes := make([]sample.Outcome, len(s.A))
	for i := range outcomes {
		switch {
		case s.A[i] > s.B[i]:
			outcomes[i] = sample.OutcomeAFavored
		case s.A[i] < s.B[i]:
			outcomes[i] = sample.OutcomeBFavored
		default:
			outcomes[i] = sample.OutcomeNone
		}
	}
	out := s
	out.Outcomes = outcomes
	return out
}

// WithNaNs replaces every k-th observation's A value with NaN.
func WithNaNs(s sample.PairedSample, every int) sample.PairedSample {
	out := s
	out.A = append([]float64(nil), s.A...)
	for i := 0; i < len(out.A); i += every {
		out.A[i] = math.NaN()
	}
	return out
}
