package sample

import (
	"math"
	"testing"

	"sefval/domain/core"
)

// TestNewPaired_LengthMismatch verifies misaligned sequences are rejected
func TestNewPaired_LengthMismatch(t *testing.T) {
	_, err := NewPaired(core.MetricKey("m"), []float64{1, 2, 3}, []float64{1, 2})
	if err == nil {
		t.Fatal("Expected error for unequal paired sequences")
	}
	if !core.IsConfigurationError(err) {
		t.Errorf("Expected configuration error, got %v", err)
	}
}

// TestClean_PairedDropsWholeRows verifies a NaN on either side removes the
// whole pair and keeps labels aligned
func TestClean_PairedDropsWholeRows(t *testing.T) {
	s, err := NewPaired(core.MetricKey("m"),
		[]float64{1, math.NaN(), 3, 4},
		[]float64{10, 20, math.Inf(1), 40})
	if err != nil {
		t.Fatal(err)
	}
	s, err = s.WithGroups([]core.GroupID{"g1", "g2", "g3", "g4"})
	if err != nil {
		t.Fatal(err)
	}
	s, err = s.WithOutcomes([]Outcome{OutcomeAFavored, OutcomeBFavored, OutcomeNone, OutcomeAFavored})
	if err != nil {
		t.Fatal(err)
	}

	clean, n := s.Clean()
	if n != 2 {
		t.Fatalf("Expected 2 usable pairs, got %d", n)
	}
	if clean.A[0] != 1 || clean.A[1] != 4 {
		t.Errorf("Unexpected A after cleaning: %v", clean.A)
	}
	if clean.B[0] != 10 || clean.B[1] != 40 {
		t.Errorf("Unexpected B after cleaning: %v", clean.B)
	}
	if clean.Groups[0] != "g1" || clean.Groups[1] != "g4" {
		t.Errorf("Group labels lost alignment: %v", clean.Groups)
	}
	if clean.Outcomes[0] != OutcomeAFavored || clean.Outcomes[1] != OutcomeAFavored {
		t.Errorf("Outcome labels lost alignment: %v", clean.Outcomes)
	}
}

// TestClean_IndependentFiltersSidesSeparately verifies each side keeps its
// own finite values
func TestClean_IndependentFiltersSidesSeparately(t *testing.T) {
	s := NewIndependent(core.MetricKey("m"),
		[]float64{1, math.NaN(), 3},
		[]float64{10, 20, 30, math.Inf(-1)})

	clean, n := s.Clean()
	if len(clean.A) != 2 || len(clean.B) != 3 {
		t.Errorf("Expected sides of length 2 and 3, got %d and %d", len(clean.A), len(clean.B))
	}
	if n != 2 {
		t.Errorf("Expected usable count 2 (smaller side), got %d", n)
	}
}

// TestUniqueGroups_FirstSeenOrder verifies group enumeration order is stable
func TestUniqueGroups_FirstSeenOrder(t *testing.T) {
	s := PairedSample{
		A:      []float64{1, 2, 3, 4, 5},
		B:      []float64{1, 2, 3, 4, 5},
		Paired: true,
		Groups: []core.GroupID{"b", "a", "b", "c", "a"},
	}

	groups := s.UniqueGroups()
	want := []core.GroupID{"b", "a", "c"}
	if len(groups) != len(want) {
		t.Fatalf("Expected %d groups, got %d", len(want), len(groups))
	}
	for i := range want {
		if groups[i] != want[i] {
			t.Errorf("Expected group %s at position %d, got %s", want[i], i, groups[i])
		}
	}
}

// TestExcludeGroup removes exactly one group's rows
func TestExcludeGroup(t *testing.T) {
	s := PairedSample{
		A:      []float64{1, 2, 3, 4},
		B:      []float64{10, 20, 30, 40},
		Paired: true,
		Groups: []core.GroupID{"x", "y", "x", "z"},
	}

	out := s.ExcludeGroup("x")
	if len(out.A) != 2 {
		t.Fatalf("Expected 2 remaining observations, got %d", len(out.A))
	}
	if out.A[0] != 2 || out.A[1] != 4 {
		t.Errorf("Unexpected remaining A: %v", out.A)
	}
	for _, g := range out.Groups {
		if g == "x" {
			t.Error("Excluded group still present in labels")
		}
	}

	// Excluding an unknown group changes nothing.
	same := s.ExcludeGroup("missing")
	if len(same.A) != len(s.A) {
		t.Errorf("Expected no change for unknown group, got %d observations", len(same.A))
	}
}
