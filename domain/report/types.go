// Package report defines the structured result records produced by the
// validation engine. Every record is a value object: created by one
// component, returned by value, never cached or mutated afterwards.
package report

import (
	"fmt"

	"sefval/domain/core"
	"sefval/domain/sef"
)

// WarningCode represents structured warning types attached to results that
// were computed but deserve reduced confidence.
type WarningCode string

const (
	// WarningLowPercentileResolution fires when N*(1-level) < 10 for a
	// requested confidence interval.
	WarningLowPercentileResolution WarningCode = "LOW_PERCENTILE_RESOLUTION"
	WarningLowN                    WarningCode = "LOW_N"
	WarningDroppedRepetitions      WarningCode = "DROPPED_REPETITIONS"
	WarningEmptyDistribution       WarningCode = "EMPTY_DISTRIBUTION"
	WarningNonNormal               WarningCode = "NON_NORMAL"
)

// CorrectionMethod identifies a multiple-comparison correction procedure.
type CorrectionMethod string

const (
	CorrectionBonferroni CorrectionMethod = "bonferroni"
	CorrectionHolm       CorrectionMethod = "holm"
	CorrectionFDR        CorrectionMethod = "fdr"
)

// ParseCorrectionMethod validates a method name from configuration.
func ParseCorrectionMethod(s string) (CorrectionMethod, error) {
	switch CorrectionMethod(s) {
	case CorrectionBonferroni, CorrectionHolm, CorrectionFDR:
		return CorrectionMethod(s), nil
	default:
		return "", fmt.Errorf("%w: %q", core.ErrUnknownCorrection, s)
	}
}

// Sidedness fixes the direction of a permutation test. It is part of the
// request, never inferred from the data.
type Sidedness string

const (
	OneSidedGreater Sidedness = "one_sided_greater"
	TwoSided        Sidedness = "two_sided"
)

// Interval is a percentile confidence interval over a resample distribution.
type Interval struct {
	Level         float64 `json:"level"`
	Lower         float64 `json:"lower"`
	Upper         float64 `json:"upper"`
	LowResolution bool    `json:"low_resolution"`
}

// SignificanceResult reports the bootstrap test of "SEF > 1" for one metric.
//
// PValue is the fraction of bootstrap SEF values <= 1: the estimated
// probability that the observed enhancement disappears under resampling.
type SignificanceResult struct {
	Metric         core.MetricKey `json:"metric"`
	Observed       sef.Result     `json:"observed"`
	PValue         float64        `json:"p_value"`
	Intervals      []Interval     `json:"intervals"`
	EffectSize     float64        `json:"effect_size"`
	ResampleMean   float64        `json:"resample_mean"`
	ResampleStdDev float64        `json:"resample_std_dev"`
	Repetitions    int            `json:"repetitions"`
	Dropped        int            `json:"dropped"`
	Undefined      bool           `json:"undefined"`
	Warnings       []WarningCode  `json:"warnings,omitempty"`
}

// HypothesisCorrection is one hypothesis's entry in a correction batch,
// reported in the caller's original order.
type HypothesisCorrection struct {
	Index       int     `json:"index"`
	RawP        float64 `json:"raw_p"`
	CorrectedP  float64 `json:"corrected_p"`
	Significant bool    `json:"significant"`
}

// CorrectionResult covers the entire batch of simultaneous hypotheses
// submitted in one call. Partial or incremental correction is not supported.
type CorrectionResult struct {
	Method     CorrectionMethod       `json:"method"`
	Alpha      float64                `json:"alpha"`
	Hypotheses []HypothesisCorrection `json:"hypotheses"`
}

// PermutationResult reports a label-shuffling null-distribution test.
type PermutationResult struct {
	Metric       core.MetricKey `json:"metric"`
	Statistic    string         `json:"statistic"`
	Observed     float64        `json:"observed"`
	Sided        Sidedness      `json:"sided"`
	PValue       float64        `json:"p_value"`
	EffectSize   float64        `json:"effect_size"`
	NullMean     float64        `json:"null_mean"`
	NullStdDev   float64        `json:"null_std_dev"`
	Permutations int            `json:"permutations"`
	Dropped      int            `json:"dropped"`
	Undefined    bool           `json:"undefined"`
	Warnings     []WarningCode  `json:"warnings,omitempty"`
}

// GroupExclusion is one leave-one-group-out recomputation.
type GroupExclusion struct {
	Group          core.GroupID `json:"group"`
	GroupSize      int          `json:"group_size"`
	SEF            float64      `json:"sef"`
	StabilityIndex float64      `json:"stability_index"`
	Undefined      bool         `json:"undefined"`
	ObservedN      int          `json:"observed_n"`
}

// LOGOResult reports stability of SEF under group exclusion. Undefined
// groups are visible in the count and excluded from the summary statistics,
// never silently skipped.
type LOGOResult struct {
	Metric          core.MetricKey   `json:"metric"`
	Full            sef.Result       `json:"full"`
	Exclusions      []GroupExclusion `json:"exclusions"`
	MeanStability   float64          `json:"mean_stability"`
	MaxStability    float64          `json:"max_stability"`
	EvaluatedGroups int              `json:"evaluated_groups"`
	UndefinedGroups int              `json:"undefined_groups"`
	Undefined       bool             `json:"undefined"`
}

// GridPoint is one evaluated (kappa, rho) coordinate of the SEF surface.
type GridPoint struct {
	Kappa     float64 `json:"kappa"`
	Rho       float64 `json:"rho"`
	SEF       float64 `json:"sef"`
	Undefined bool    `json:"undefined"`
}

// ParamSensitivity is the normalized SEF range observed while sweeping one
// parameter with the other fixed.
type ParamSensitivity struct {
	Parameter       string  `json:"parameter"`
	MinSEF          float64 `json:"min_sef"`
	MaxSEF          float64 `json:"max_sef"`
	Index           float64 `json:"index"`
	DefinedPoints   int     `json:"defined_points"`
	UndefinedPoints int     `json:"undefined_points"`
	Undefined       bool    `json:"undefined"`
}

// SensitivityResult carries the evaluated surface plus per-parameter
// sensitivity indices. Recomputed per query, never cached.
type SensitivityResult struct {
	Points []GridPoint       `json:"points"`
	Kappa  *ParamSensitivity `json:"kappa,omitempty"`
	Rho    *ParamSensitivity `json:"rho,omitempty"`
}

// AxiomName identifies one of the four relative-measure axioms.
type AxiomName string

const (
	AxiomInvariance        AxiomName = "invariance"
	AxiomOrdinal           AxiomName = "ordinal_consistency"
	AxiomScaling           AxiomName = "scaling_proportionality"
	AxiomOptimality        AxiomName = "statistical_optimality"
)

// AxiomScore is one axiom's score in [0,1] for one metric. Undefined axioms
// carry a reason and are excluded from the aggregate mean.
type AxiomScore struct {
	Axiom     AxiomName          `json:"axiom"`
	Score     float64            `json:"score"`
	Undefined bool               `json:"undefined"`
	Reason    string             `json:"reason,omitempty"`
	Details   map[string]float64 `json:"details,omitempty"`
}

// AxiomResult aggregates the four axiom scores for one metric.
type AxiomResult struct {
	Metric             core.MetricKey `json:"metric"`
	Scores             []AxiomScore   `json:"scores"`
	Aggregate          float64        `json:"aggregate"`
	AggregateUndefined bool           `json:"aggregate_undefined"`
	Compliant          bool           `json:"compliant"`
	Threshold          float64        `json:"threshold"`
}

// Applicability is the five-gate framework-fit assessment.
type Applicability struct {
	Score       int             `json:"score"`
	MaxScore    int             `json:"max_score"`
	Gates       map[string]bool `json:"gates"`
	CohensD     float64         `json:"cohens_d"`
	NormalityPA float64         `json:"normality_p_a"`
	NormalityPB float64         `json:"normality_p_b"`
}

// LogTransformCheck reports how much SEF moves when the sample is
// log-transformed, as an extra robustness signal.
type LogTransformCheck struct {
	RawSEF        float64 `json:"raw_sef"`
	LogSEF        float64 `json:"log_sef"`
	RelativeShift float64 `json:"relative_shift"`
	Undefined     bool    `json:"undefined"`
}

// MetricValidation merges every per-metric result. Nil sub-results mean the
// component was not requested; Undefined flags inside them mean it ran and
// could not produce a value. The two are deliberately distinguishable.
type MetricValidation struct {
	Metric        core.MetricKey      `json:"metric"`
	SEF           sef.Result          `json:"sef"`
	Significance  *SignificanceResult `json:"significance,omitempty"`
	Permutation   *PermutationResult  `json:"permutation,omitempty"`
	LOGO          *LOGOResult         `json:"logo,omitempty"`
	Axioms        *AxiomResult        `json:"axioms,omitempty"`
	Applicability *Applicability      `json:"applicability,omitempty"`
	LogTransform  *LogTransformCheck  `json:"log_transform,omitempty"`

	// Filled by the correction pass after all metrics complete.
	CorrectedP  float64 `json:"corrected_p"`
	Significant bool    `json:"significant"`
	Corrected   bool    `json:"corrected"`
}

// ValidationReport is the merged output of one validation run.
type ValidationReport struct {
	ID          core.ReportID      `json:"id"`
	RunID       core.RunID         `json:"run_id"`
	CreatedAt   core.Timestamp     `json:"created_at"`
	Seed        *int64             `json:"seed,omitempty"`
	Metrics     []MetricValidation `json:"metrics"`
	Correction  *CorrectionResult  `json:"correction,omitempty"`
	Sensitivity *SensitivityResult `json:"sensitivity,omitempty"`
}

// Metric looks up one metric's validation by typed key.
func (r *ValidationReport) Metric(key core.MetricKey) (*MetricValidation, error) {
	for i := range r.Metrics {
		if r.Metrics[i].Metric == key {
			return &r.Metrics[i], nil
		}
	}
	return nil, core.NewNotFoundError("metric", key.String())
}

// ValidateMetricKeys checks the batch key set once at construction time:
// keys must be non-empty and unique. Runtime existence checks scattered
// through consumers are not an acceptable substitute.
func ValidateMetricKeys(keys []core.MetricKey) error {
	seen := make(map[core.MetricKey]bool, len(keys))
	for _, k := range keys {
		if k == "" {
			return core.NewConfigurationError("metric_keys", "empty metric key")
		}
		if seen[k] {
			return core.NewConfigurationError("metric_keys",
				fmt.Sprintf("duplicate metric key %q", k))
		}
		seen[k] = true
	}
	return nil
}
