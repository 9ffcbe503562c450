package permutation

import (
	"context"
	"testing"

	"sefval/adapters/rng"
	"sefval/domain/core"
	"sefval/domain/report"
	"sefval/domain/sample"
	"sefval/internal/resample"
	"sefval/internal/testkit"
)

func newTester() *Tester {
	return New(resample.New(rng.New()))
}

// TestTest_RealSeparationSignificant verifies a large mean difference is
// incompatible with the shuffled null
func TestTest_RealSeparationSignificant(t *testing.T) {
	s := testkit.GeneratePaired(core.MetricKey("separated"), testkit.PairedSpec{
		N: 100, MuA: 110, MuB: 100, SigmaA: 5, SigmaB: 5, Rho: 0.3, Seed: 51,
	})
	seed := int64(14)

	res, err := newTester().Test(context.Background(), s, Config{
		Statistic:    StatisticMeanDifference,
		Sided:        report.TwoSided,
		Permutations: 2000,
		Seed:         &seed,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Undefined {
		t.Fatal("Expected a defined result")
	}
	if res.PValue > 0.01 {
		t.Errorf("Expected p <= 0.01 for a 2-sigma separation at n=100, got %f", res.PValue)
	}
	if res.PValue <= 0 {
		t.Errorf("The (b+1)/(M+1) correction must keep p strictly positive, got %f", res.PValue)
	}
}

// TestTest_NoSeparationNotSignificant verifies identical populations produce
// an unremarkable p-value
func TestTest_NoSeparationNotSignificant(t *testing.T) {
	s := testkit.GeneratePaired(core.MetricKey("null"), testkit.PairedSpec{
		N: 100, MuA: 100, MuB: 100, SigmaA: 10, SigmaB: 10, Rho: 0.0, Seed: 52,
	})
	seed := int64(15)

	res, err := newTester().Test(context.Background(), s, Config{
		Statistic:    StatisticMeanDifference,
		Sided:        report.TwoSided,
		Permutations: 2000,
		Seed:         &seed,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.PValue < 0.01 {
		t.Errorf("Expected an unremarkable p-value under the null, got %f", res.PValue)
	}
}

// TestTest_SidednessIsFixed verifies the direction comes from the request,
// not from the data
func TestTest_SidednessIsFixed(t *testing.T) {
	// B exceeds A, so mean(A)-mean(B) is strongly negative. A one-sided
	// "greater" test must NOT flag this as significant.
	s := testkit.GeneratePaired(core.MetricKey("reversed"), testkit.PairedSpec{
		N: 100, MuA: 100, MuB: 110, SigmaA: 5, SigmaB: 5, Rho: 0.3, Seed: 53,
	})
	seed := int64(16)

	oneSided, err := newTester().Test(context.Background(), s, Config{
		Statistic:    StatisticMeanDifference,
		Sided:        report.OneSidedGreater,
		Permutations: 1000,
		Seed:         &seed,
	})
	if err != nil {
		t.Fatal(err)
	}
	if oneSided.PValue < 0.5 {
		t.Errorf("One-sided greater test on a reversed effect should have large p, got %f", oneSided.PValue)
	}

	twoSided, err := newTester().Test(context.Background(), s, Config{
		Statistic:    StatisticMeanDifference,
		Sided:        report.TwoSided,
		Permutations: 1000,
		Seed:         &seed,
	})
	if err != nil {
		t.Fatal(err)
	}
	if twoSided.PValue > 0.05 {
		t.Errorf("Two-sided test should detect the reversed effect, got %f", twoSided.PValue)
	}
}

// TestTest_SEFStatisticRequiresFunc verifies the sef statistic kind demands
// an explicit statistic
func TestTest_SEFStatisticRequiresFunc(t *testing.T) {
	s := testkit.GeneratePaired(core.MetricKey("cfg"), testkit.PairedSpec{
		N: 50, MuA: 10, MuB: 9, SigmaA: 2, SigmaB: 2, Rho: 0.5, Seed: 5,
	})

	_, err := newTester().Test(context.Background(), s, Config{Statistic: StatisticSEF})
	if !core.IsConfigurationError(err) {
		t.Errorf("Expected configuration error for missing SEF statistic, got %v", err)
	}
}

// TestTest_UndefinedObservedIsolated verifies an undefined observed statistic
// is reported on the record, not as an error
func TestTest_UndefinedObservedIsolated(t *testing.T) {
	s := sample.NewIndependent(core.MetricKey("empty"), nil, nil)

	res, err := newTester().Test(context.Background(), s, Config{
		Statistic:    StatisticMeanDifference,
		Permutations: 100,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Undefined {
		t.Error("Expected Undefined for an empty sample")
	}
	if res.PValue != 1 {
		t.Errorf("Expected p=1 for undefined result, got %f", res.PValue)
	}
}
