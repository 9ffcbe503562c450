package sample

import (
	"math"

	"sefval/domain/core"
)

// DefaultMinSampleSize is the usable-length threshold below which downstream
// statistics report themselves as undefined rather than numeric.
const DefaultMinSampleSize = 10

// Outcome labels which entity was favored on a given observation.
// Required only by the ordinal-consistency axiom.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeAFavored
	OutcomeBFavored
)

// PairedSample holds repeated observations of two entities on one metric.
//
// When Paired is true the sequences are aligned pairs from the same
// observation (same match, same cohort row) and must have equal length.
// When Paired is false the sequences are independent draws; correlation
// between them has no meaning and must be supplied explicitly by the caller
// (typically 0) rather than computed.
type PairedSample struct {
	Metric core.MetricKey `json:"metric"`
	A      []float64      `json:"a"`
	B      []float64      `json:"b"`
	Paired bool           `json:"paired"`

	// Groups optionally assigns a group id to each paired observation
	// (teams, cohorts, seasons). Length must match len(A) when set.
	Groups []core.GroupID `json:"groups,omitempty"`

	// Outcomes optionally labels each paired observation with the favored
	// entity. Length must match len(A) when set.
	Outcomes []Outcome `json:"outcomes,omitempty"`
}

// NewPaired builds an aligned paired sample. Returns a configuration error
// when the sequences or auxiliary label arrays disagree in length.
func NewPaired(metric core.MetricKey, a, b []float64) (PairedSample, error) {
	if len(a) != len(b) {
		return PairedSample{}, core.NewConfigurationError("sample",
			"paired sequences must have equal length")
	}
	return PairedSample{Metric: metric, A: a, B: b, Paired: true}, nil
}

// NewIndependent builds a sample from two independently drawn sequences.
// Lengths may differ; pairing-dependent statistics are unavailable.
func NewIndependent(metric core.MetricKey, a, b []float64) PairedSample {
	return PairedSample{Metric: metric, A: a, B: b, Paired: false}
}

// WithGroups attaches per-observation group ids.
func (s PairedSample) WithGroups(groups []core.GroupID) (PairedSample, error) {
	if s.Paired && len(groups) != len(s.A) {
		return s, core.ErrGroupLabelLenMismatch
	}
	out := s
	out.Groups = groups
	return out, nil
}

// WithOutcomes attaches per-observation outcome labels.
func (s PairedSample) WithOutcomes(outcomes []Outcome) (PairedSample, error) {
	if s.Paired && len(outcomes) != len(s.A) {
		return s, core.NewConfigurationError("outcomes",
			"outcome label count does not match observation count")
	}
	out := s
	out.Outcomes = outcomes
	return out, nil
}

// Clean returns a copy with missing values removed and reports the usable
// observation count. For paired samples a row is dropped when either side is
// NaN/Inf, keeping group and outcome labels aligned. For independent samples
// each side is filtered on its own and the smaller side's length is returned.
func (s PairedSample) Clean() (PairedSample, int) {
	if !s.Paired {
		out := s
		out.A = filterFinite(s.A)
		out.B = filterFinite(s.B)
		n := len(out.A)
		if len(out.B) < n {
			n = len(out.B)
		}
		return out, n
	}

	out := PairedSample{Metric: s.Metric, Paired: true}
	out.A = make([]float64, 0, len(s.A))
	out.B = make([]float64, 0, len(s.B))
	if s.Groups != nil {
		out.Groups = make([]core.GroupID, 0, len(s.Groups))
	}
	if s.Outcomes != nil {
		out.Outcomes = make([]Outcome, 0, len(s.Outcomes))
	}

	for i := range s.A {
		if !isFinite(s.A[i]) || !isFinite(s.B[i]) {
			continue
		}
		out.A = append(out.A, s.A[i])
		out.B = append(out.B, s.B[i])
		if s.Groups != nil {
			out.Groups = append(out.Groups, s.Groups[i])
		}
		if s.Outcomes != nil {
			out.Outcomes = append(out.Outcomes, s.Outcomes[i])
		}
	}
	return out, len(out.A)
}

// Len returns the paired observation count, or the smaller side for
// independent samples.
func (s PairedSample) Len() int {
	if len(s.B) < len(s.A) {
		return len(s.B)
	}
	return len(s.A)
}

// UniqueGroups returns the distinct group ids in first-seen order.
func (s PairedSample) UniqueGroups() []core.GroupID {
	seen := make(map[core.GroupID]bool, len(s.Groups))
	out := make([]core.GroupID, 0)
	for _, g := range s.Groups {
		if !seen[g] {
			seen[g] = true
			out = append(out, g)
		}
	}
	return out
}

// ExcludeGroup returns a copy with every observation of group g removed.
// Only meaningful for paired samples carrying group labels.
func (s PairedSample) ExcludeGroup(g core.GroupID) PairedSample {
	out := PairedSample{Metric: s.Metric, Paired: s.Paired}
	for i := range s.A {
		if i < len(s.Groups) && s.Groups[i] == g {
			continue
		}
		out.A = append(out.A, s.A[i])
		out.B = append(out.B, s.B[i])
		if s.Groups != nil {
			out.Groups = append(out.Groups, s.Groups[i])
		}
		if s.Outcomes != nil && i < len(s.Outcomes) {
			out.Outcomes = append(out.Outcomes, s.Outcomes[i])
		}
	}
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func filterFinite(data []float64) []float64 {
	out := make([]float64, 0, len(data))
	for _, v := range data {
		if isFinite(v) {
			out = append(out, v)
		}
	}
	return out
}
