package sensitivity

import (
	"math"
	"testing"

	"sefval/domain/core"
)

// TestLinspace covers endpoints and degenerate counts
func TestLinspace(t *testing.T) {
	values := Linspace(0, 1, 5)
	want := []float64{0, 0.25, 0.5, 0.75, 1}
	if len(values) != len(want) {
		t.Fatalf("Expected %d values, got %d", len(want), len(values))
	}
	for i := range want {
		if math.Abs(values[i]-want[i]) > 1e-12 {
			t.Errorf("Expected %f at %d, got %f", want[i], i, values[i])
		}
	}

	single := Linspace(3, 9, 1)
	if len(single) != 1 || single[0] != 3 {
		t.Errorf("Expected single lower bound, got %v", single)
	}
}

// TestKappaSweep_ZeroRhoIsFlat verifies the surface is identically 1 at
// rho=0, so the kappa index vanishes
func TestKappaSweep_ZeroRhoIsFlat(t *testing.T) {
	res, err := KappaSweep(0, Linspace(0.1, 10, 25))
	if err != nil {
		t.Fatal(err)
	}
	if res.Kappa == nil {
		t.Fatal("Expected kappa sensitivity summary")
	}
	if res.Kappa.Undefined {
		t.Fatal("Expected defined summary")
	}
	if math.Abs(res.Kappa.MinSEF-1) > 1e-12 || math.Abs(res.Kappa.MaxSEF-1) > 1e-12 {
		t.Errorf("Expected flat SEF=1 surface at rho=0, got [%f, %f]",
			res.Kappa.MinSEF, res.Kappa.MaxSEF)
	}
	if res.Kappa.Index != 0 {
		t.Errorf("Expected zero sensitivity index on a flat surface, got %f", res.Kappa.Index)
	}
}

// TestRhoSweep_MonotoneAtFixedKappa verifies SEF grows with rho at kappa=1
// and the index reflects the spread
func TestRhoSweep_MonotoneAtFixedKappa(t *testing.T) {
	rhos := Linspace(0, 0.9, 10)
	res, err := RhoSweep(1.0, rhos)
	if err != nil {
		t.Fatal(err)
	}
	if res.Rho == nil || res.Rho.Undefined {
		t.Fatal("Expected defined rho summary")
	}

	// kappa=1: SEF = 2/(2-2rho) = 1/(1-rho), monotone in rho.
	prev := 0.0
	for i, p := range res.Points {
		if p.Undefined {
			t.Fatalf("Unexpected undefined point at rho=%f", p.Rho)
		}
		if p.SEF < prev {
			t.Errorf("Expected monotone growth in rho, point %d dropped to %f", i, p.SEF)
		}
		prev = p.SEF
	}

	if math.Abs(res.Rho.MinSEF-1) > 1e-12 {
		t.Errorf("Expected min SEF 1 at rho=0, got %f", res.Rho.MinSEF)
	}
	if math.Abs(res.Rho.MaxSEF-10) > 1e-9 {
		t.Errorf("Expected max SEF 10 at rho=0.9, got %f", res.Rho.MaxSEF)
	}
	if math.Abs(res.Rho.Index-0.9) > 1e-9 {
		t.Errorf("Expected index (10-1)/10 = 0.9, got %f", res.Rho.Index)
	}
}

// TestGrid_FlagsUndefinedPoints verifies out-of-domain corners are flagged at
// the point and excluded from the summary
func TestGrid_FlagsUndefinedPoints(t *testing.T) {
	// kappa=1, rho=1 has a zero denominator.
	res, err := Grid([]float64{1}, []float64{0, 0.5, 1})
	if err != nil {
		t.Fatal(err)
	}

	undefined := 0
	for _, p := range res.Points {
		if p.Undefined {
			undefined++
			if p.Rho != 1 {
				t.Errorf("Unexpected undefined point at rho=%f", p.Rho)
			}
		}
	}
	if undefined != 1 {
		t.Fatalf("Expected exactly 1 undefined point, got %d", undefined)
	}
	if res.Kappa.UndefinedPoints != 1 || res.Kappa.DefinedPoints != 2 {
		t.Errorf("Summary miscounted: %d defined, %d undefined",
			res.Kappa.DefinedPoints, res.Kappa.UndefinedPoints)
	}
	// Max over defined points only: SEF(1, 0.5) = 2.
	if math.Abs(res.Kappa.MaxSEF-2) > 1e-12 {
		t.Errorf("Expected max SEF 2 over defined points, got %f", res.Kappa.MaxSEF)
	}
}

// TestSweep_InvalidRanges verifies configuration validation happens before
// evaluation
func TestSweep_InvalidRanges(t *testing.T) {
	if _, err := KappaSweep(0, nil); !core.IsConfigurationError(err) {
		t.Errorf("Expected configuration error for empty kappa range, got %v", err)
	}
	if _, err := KappaSweep(0, []float64{-1}); !core.IsConfigurationError(err) {
		t.Errorf("Expected configuration error for negative kappa, got %v", err)
	}
	if _, err := RhoSweep(1, []float64{1.5}); !core.IsConfigurationError(err) {
		t.Errorf("Expected configuration error for rho outside [-1,1], got %v", err)
	}
	if _, err := KappaSweep(2, []float64{1}); !core.IsConfigurationError(err) {
		t.Errorf("Expected configuration error for baseline rho outside [-1,1], got %v", err)
	}
}

// TestSummarize_AllUndefined verifies a fully undefined sweep is flagged
// rather than reported as zeros
func TestSummarize_AllUndefined(t *testing.T) {
	res, err := RhoSweep(1.0, []float64{1})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Rho.Undefined {
		t.Error("Expected undefined summary when every point is out of domain")
	}
}
