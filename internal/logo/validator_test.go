package logo

import (
	"errors"
	"testing"

	"sefval/domain/core"
	"sefval/domain/sample"
	"sefval/internal/testkit"
)

func groupedSample(seed int64, groups ...core.GroupID) sample.PairedSample {
	s := testkit.GeneratePaired(core.MetricKey("logo_test"), testkit.PairedSpec{
		N: 120, MuA: 100, MuB: 98, SigmaA: 10, SigmaB: 11, Rho: 0.7, Seed: seed,
	})
	return testkit.WithRoundRobinGroups(s, groups)
}

// TestValidate_RequiresGroupLabels verifies unlabeled samples are rejected
func TestValidate_RequiresGroupLabels(t *testing.T) {
	s := testkit.GeneratePaired(core.MetricKey("nolabels"), testkit.PairedSpec{
		N: 50, MuA: 1, MuB: 2, SigmaA: 1, SigmaB: 1, Rho: 0.5, Seed: 1,
	})

	_, err := Validate(s, Config{})
	if !errors.Is(err, core.ErrMissingGroupLabels) {
		t.Errorf("Expected ErrMissingGroupLabels, got %v", err)
	}
}

// TestValidate_RequiresPairing verifies group exclusion refuses unpaired
// samples, where per-side row removal is not well defined
func TestValidate_RequiresPairing(t *testing.T) {
	s := sample.NewIndependent(core.MetricKey("unpaired"),
		[]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
		[]float64{2, 3, 4, 5, 6, 7, 8, 9, 10, 11})
	s.Groups = []core.GroupID{"g1", "g2", "g1", "g2", "g1", "g2", "g1", "g2", "g1", "g2", "g1", "g2"}

	_, err := Validate(s, Config{})
	if !core.IsConfigurationError(err) {
		t.Errorf("Expected configuration error for unpaired sample, got %v", err)
	}
}

// TestValidate_LabelLengthMismatch verifies partial labeling is rejected
func TestValidate_LabelLengthMismatch(t *testing.T) {
	s := testkit.GeneratePaired(core.MetricKey("partial"), testkit.PairedSpec{
		N: 20, MuA: 1, MuB: 2, SigmaA: 1, SigmaB: 1, Rho: 0.5, Seed: 2,
	})
	s.Groups = []core.GroupID{"only_one"}

	_, err := Validate(s, Config{})
	if !errors.Is(err, core.ErrGroupLabelLenMismatch) {
		t.Errorf("Expected ErrGroupLabelLenMismatch, got %v", err)
	}
}

// TestValidate_BalancedGroupsAreStable verifies homogeneous round-robin
// groups each have limited influence
func TestValidate_BalancedGroupsAreStable(t *testing.T) {
	s := groupedSample(61, "g1", "g2", "g3", "g4")

	res, err := Validate(s, Config{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Undefined {
		t.Fatal("Expected a defined result")
	}
	if res.EvaluatedGroups != 4 {
		t.Fatalf("Expected 4 evaluated groups, got %d", res.EvaluatedGroups)
	}
	if res.UndefinedGroups != 0 {
		t.Errorf("Expected no undefined groups, got %d", res.UndefinedGroups)
	}
	if len(res.Exclusions) != 4 {
		t.Fatalf("Expected one exclusion per group, got %d", len(res.Exclusions))
	}

	for _, excl := range res.Exclusions {
		if excl.GroupSize != 30 {
			t.Errorf("Expected round-robin group size 30, got %d for %s", excl.GroupSize, excl.Group)
		}
		// Removing a quarter of a homogeneous sample should not move SEF by
		// an order of magnitude.
		if excl.StabilityIndex > 1.0 {
			t.Errorf("Group %s moves SEF by %f of its value, sample is not stable",
				excl.Group, excl.StabilityIndex)
		}
	}
	if res.MaxStability < res.MeanStability {
		t.Error("Max stability must not be below mean stability")
	}
}

// TestValidate_SmallGroupReportedUndefined verifies a group whose exclusion
// starves the sample is counted, not hidden
func TestValidate_SmallGroupReportedUndefined(t *testing.T) {
	// 12 observations: excluding the dominant group leaves 2 < minimum 10.
	s := testkit.GeneratePaired(core.MetricKey("dominant"), testkit.PairedSpec{
		N: 12, MuA: 50, MuB: 48, SigmaA: 5, SigmaB: 6, Rho: 0.6, Seed: 63,
	})
	groups := make([]core.GroupID, 12)
	for i := range groups {
		groups[i] = "big"
	}
	groups[0], groups[1] = "small", "small"
	s.Groups = groups

	res, err := Validate(s, Config{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Undefined {
		t.Fatal("Full-sample SEF should be defined at n=12")
	}
	if res.UndefinedGroups != 1 {
		t.Fatalf("Expected 1 undefined group exclusion, got %d", res.UndefinedGroups)
	}
	if res.EvaluatedGroups != 1 {
		t.Fatalf("Expected 1 evaluated group exclusion, got %d", res.EvaluatedGroups)
	}

	for _, excl := range res.Exclusions {
		switch excl.Group {
		case "big":
			if !excl.Undefined {
				t.Error("Excluding the dominant group must be undefined")
			}
		case "small":
			if excl.Undefined {
				t.Error("Excluding the small group must stay defined")
			}
		}
	}
}

// TestValidate_UndefinedFullSEF verifies a degenerate full sample yields an
// undefined result without per-group noise
func TestValidate_UndefinedFullSEF(t *testing.T) {
	constant := make([]float64, 20)
	varying := make([]float64, 20)
	groups := make([]core.GroupID, 20)
	for i := range constant {
		constant[i] = 7
		varying[i] = float64(i)
		groups[i] = core.GroupID([]string{"g1", "g2"}[i%2])
	}
	s, err := sample.NewPaired(core.MetricKey("degenerate"), constant, varying)
	if err != nil {
		t.Fatal(err)
	}
	s.Groups = groups

	res, err := Validate(s, Config{})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Undefined {
		t.Error("Expected undefined LOGO result for zero-variance side")
	}
	if len(res.Exclusions) != 0 {
		t.Errorf("Expected no per-group exclusions without a reference SEF, got %d", len(res.Exclusions))
	}
}
