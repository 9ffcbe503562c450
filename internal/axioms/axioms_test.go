package axioms

import (
	"context"
	"testing"

	"sefval/adapters/rng"
	"sefval/domain/core"
	"sefval/domain/report"
	"sefval/domain/sample"
	"sefval/internal/testkit"
)

func labeledSample(seed int64) sample.PairedSample {
	s := testkit.GeneratePaired(core.MetricKey("axioms_test"), testkit.PairedSpec{
		N: 100, MuA: 100, MuB: 95, SigmaA: 10, SigmaB: 12, Rho: 0.6, Seed: seed,
	})
	return testkit.WithDifferenceOutcomes(s)
}

// TestEngine_AllFourAxiomsScored verifies the engine reports exactly the four
// standard axioms
func TestEngine_AllFourAxiomsScored(t *testing.T) {
	engine := NewEngine(rng.New())
	seed := int64(41)

	res := engine.Validate(context.Background(), labeledSample(71), Config{Seed: &seed})

	if len(res.Scores) != 4 {
		t.Fatalf("Expected 4 axiom scores, got %d", len(res.Scores))
	}
	expected := map[report.AxiomName]bool{
		report.AxiomInvariance: false,
		report.AxiomOrdinal:    false,
		report.AxiomScaling:    false,
		report.AxiomOptimality: false,
	}
	for _, sc := range res.Scores {
		if _, known := expected[sc.Axiom]; !known {
			t.Errorf("Unexpected axiom %q", sc.Axiom)
		}
		expected[sc.Axiom] = true
		if !sc.Undefined && (sc.Score < 0 || sc.Score > 1) {
			t.Errorf("Axiom %s score %f outside [0,1]", sc.Axiom, sc.Score)
		}
	}
	for name, seen := range expected {
		if !seen {
			t.Errorf("Axiom %s was not scored", name)
		}
	}
}

// TestInvariance_PairedDifferenceIsExact verifies the canonical measure
// cancels shared shifts perfectly
func TestInvariance_PairedDifferenceIsExact(t *testing.T) {
	scorer := NewInvarianceScorer(rng.New())
	seed := int64(42)

	score := scorer.Score(context.Background(), labeledSample(72), Config{Seed: &seed})
	if score.Undefined {
		t.Fatalf("Expected defined score, reason %q", score.Reason)
	}
	// (A+s) - (B+s) == A - B exactly, so deviation is zero.
	if score.Score < 0.999 {
		t.Errorf("Paired difference must be invariant to shared shifts, score %f", score.Score)
	}
}

// TestInvariance_SeededReproducibility verifies the simulated perturbation is
// deterministic under a seed
func TestInvariance_SeededReproducibility(t *testing.T) {
	scorer := NewInvarianceScorer(rng.New())
	seed := int64(43)
	s := labeledSample(73)

	first := scorer.Score(context.Background(), s, Config{Seed: &seed})
	second := scorer.Score(context.Background(), s, Config{Seed: &seed})
	if first.Score != second.Score {
		t.Errorf("Seeded invariance scores differ: %f vs %f", first.Score, second.Score)
	}
	if first.Details["perturbation_magnitude"] != second.Details["perturbation_magnitude"] {
		t.Error("Seeded perturbation magnitudes differ")
	}
}

// TestScaling_PairedDifferenceIsProportional verifies R(aA, aB) = a*R(A,B)
// holds exactly for the canonical measure at every default factor
func TestScaling_PairedDifferenceIsProportional(t *testing.T) {
	scorer := NewScalingScorer()

	score := scorer.Score(context.Background(), labeledSample(74), Config{})
	if score.Undefined {
		t.Fatalf("Expected defined score, reason %q", score.Reason)
	}
	if score.Score < 0.999 {
		t.Errorf("Paired difference must scale proportionally, score %f", score.Score)
	}
	for key, errVal := range score.Details {
		if errVal > 1e-9 {
			t.Errorf("Expected zero proportionality error, %s = %g", key, errVal)
		}
	}
}

// TestOrdinal_ConsistentOutcomesScoreHigh verifies outcome labels derived
// from the measure itself produce a near-perfect score
func TestOrdinal_ConsistentOutcomesScoreHigh(t *testing.T) {
	scorer := NewOrdinalScorer()

	// Outcomes follow sign(A-B), so the measure separates the groups by
	// construction.
	score := scorer.Score(context.Background(), labeledSample(75), Config{})
	if score.Undefined {
		t.Fatalf("Expected defined score, reason %q", score.Reason)
	}
	if score.Score < 0.9 {
		t.Errorf("Expected near-perfect ordinal score for consistent outcomes, got %f", score.Score)
	}
}

// TestOrdinal_ReversedOutcomesScoreZero verifies a measure pointing the wrong
// way scores zero, not merely low
func TestOrdinal_ReversedOutcomesScoreZero(t *testing.T) {
	s := labeledSample(76)
	for i, o := range s.Outcomes {
		switch o {
		case sample.OutcomeAFavored:
			s.Outcomes[i] = sample.OutcomeBFavored
		case sample.OutcomeBFavored:
			s.Outcomes[i] = sample.OutcomeAFavored
		}
	}

	score := NewOrdinalScorer().Score(context.Background(), s, Config{})
	if score.Undefined {
		t.Fatalf("Expected defined score, reason %q", score.Reason)
	}
	if score.Score != 0 {
		t.Errorf("Expected zero score for reversed ordering, got %f", score.Score)
	}
}

// TestOrdinal_MissingOutcomesUndefined verifies the axiom never invents a
// default outcome split
func TestOrdinal_MissingOutcomesUndefined(t *testing.T) {
	s := testkit.GeneratePaired(core.MetricKey("nolabels"), testkit.PairedSpec{
		N: 50, MuA: 10, MuB: 9, SigmaA: 2, SigmaB: 2, Rho: 0.5, Seed: 6,
	})

	score := NewOrdinalScorer().Score(context.Background(), s, Config{})
	if !score.Undefined {
		t.Error("Expected undefined ordinal score without outcome labels")
	}
}

// TestOptimality_PairedDifferenceCompetitive verifies the canonical
// estimator is not dominated on outcome-consistent data
func TestOptimality_PairedDifferenceCompetitive(t *testing.T) {
	score := NewOptimalityScorer().Score(context.Background(), labeledSample(77), Config{})
	if score.Undefined {
		t.Fatalf("Expected defined score, reason %q", score.Reason)
	}
	if score.Score < 0.5 {
		t.Errorf("Expected paired difference to be competitive, score %f", score.Score)
	}
	if _, ok := score.Details["mse_paired_difference"]; !ok {
		t.Error("Expected paired-difference MSE in details")
	}
}

// TestEngine_TinySampleAggregateUndefined verifies undefined axioms are
// excluded from the mean instead of counted as zero
func TestEngine_TinySampleAggregateUndefined(t *testing.T) {
	tiny := sample.PairedSample{
		Metric: core.MetricKey("tiny"),
		A:      []float64{1, 2, 3},
		B:      []float64{4, 5, 6},
		Paired: true,
	}

	engine := NewEngine(rng.New())
	res := engine.Validate(context.Background(), tiny, Config{})
	if !res.AggregateUndefined {
		t.Error("Expected aggregate undefined when no axiom is evaluable")
	}
	if res.Compliant {
		t.Error("An unevaluable sample must not be compliant")
	}
	for _, sc := range res.Scores {
		if !sc.Undefined {
			t.Errorf("Expected axiom %s undefined at n=3, got score %f", sc.Axiom, sc.Score)
		}
	}
}

// TestEngine_ComplianceThreshold verifies the configured threshold drives the
// compliance verdict
func TestEngine_ComplianceThreshold(t *testing.T) {
	engine := NewEngine(rng.New())
	seed := int64(44)
	s := labeledSample(78)

	lenient := engine.Validate(context.Background(), s, Config{Threshold: 0.01, Seed: &seed})
	if lenient.AggregateUndefined {
		t.Fatal("Expected defined aggregate")
	}
	if !lenient.Compliant {
		t.Error("Expected compliance at a trivial threshold")
	}

	// Reversing the outcome labels drives the ordinal score to exactly zero,
	// which must break compliance at any positive threshold.
	reversed := s
	reversed.Outcomes = append([]sample.Outcome(nil), s.Outcomes...)
	for i, o := range reversed.Outcomes {
		switch o {
		case sample.OutcomeAFavored:
			reversed.Outcomes[i] = sample.OutcomeBFavored
		case sample.OutcomeBFavored:
			reversed.Outcomes[i] = sample.OutcomeAFavored
		}
	}
	broken := engine.Validate(context.Background(), reversed, Config{Threshold: 0.01, Seed: &seed})
	if broken.Compliant {
		t.Error("A zero ordinal score must break compliance")
	}
}
