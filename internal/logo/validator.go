// Package logo recomputes SEF with each group excluded in turn
// (leave-one-group-out) and reports a per-exclusion stability index.
package logo

import (
	"math"

	"github.com/montanaflynn/stats"

	"sefval/domain/core"
	"sefval/domain/report"
	"sefval/domain/sample"
	"sefval/domain/sef"
)

// Config parameterizes a LOGO validation.
type Config struct {
	MinSampleSize int
	SEF           sef.Options
}

// Validate recomputes SEF once per unique group with that group's rows
// removed. Groups whose exclusion drops the subsample below the minimum size
// are reported Undefined and counted; they are excluded from the mean/max
// stability aggregation but never hidden from the caller.
func Validate(s sample.PairedSample, cfg Config) (report.LOGOResult, error) {
	if !s.Paired {
		return report.LOGOResult{}, core.NewConfigurationError("logo",
			"group exclusion requires a paired sample")
	}
	if len(s.Groups) == 0 {
		return report.LOGOResult{}, core.ErrMissingGroupLabels
	}
	if len(s.Groups) != len(s.A) {
		return report.LOGOResult{}, core.ErrGroupLabelLenMismatch
	}

	res := report.LOGOResult{Metric: s.Metric}

	full := sef.Calculate(s, cfg.SEF)
	res.Full = full
	if full.Undefined || full.InsufficientData {
		// Without a defined full-dataset SEF there is no reference point for
		// a stability index.
		res.Undefined = true
		return res, nil
	}

	groupSizes := make(map[core.GroupID]int)
	for _, g := range s.Groups {
		groupSizes[g]++
	}

	var indices []float64
	for _, g := range s.UniqueGroups() {
		excluded := s.ExcludeGroup(g)
		exclResult := sef.Calculate(excluded, cfg.SEF)

		entry := report.GroupExclusion{
			Group:     g,
			GroupSize: groupSizes[g],
			ObservedN: exclResult.ObservedN,
		}
		if exclResult.Undefined || exclResult.InsufficientData {
			entry.Undefined = true
			res.UndefinedGroups++
		} else {
			entry.SEF = exclResult.SEF
			entry.StabilityIndex = math.Abs(exclResult.SEF-full.SEF) / full.SEF
			indices = append(indices, entry.StabilityIndex)
			res.EvaluatedGroups++
		}
		res.Exclusions = append(res.Exclusions, entry)
	}

	if len(indices) > 0 {
		mean, _ := stats.Mean(indices)
		max, _ := stats.Max(indices)
		res.MeanStability = mean
		res.MaxStability = max
	}
	return res, nil
}
