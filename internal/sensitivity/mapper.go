// Package sensitivity maps the SEF surface over (kappa, rho) parameter
// ranges and summarizes how strongly each parameter moves the statistic.
package sensitivity

import (
	"fmt"

	"sefval/domain/core"
	"sefval/domain/report"
	"sefval/domain/sef"
)

// Linspace produces n evenly spaced values across [lo, hi] inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

func validateKappas(kappas []float64) error {
	if len(kappas) == 0 {
		return core.NewConfigurationError("kappa_range", "empty sweep range")
	}
	for _, k := range kappas {
		if k < 0 {
			return core.NewConfigurationError("kappa_range",
				fmt.Sprintf("kappa=%g outside [0, inf)", k))
		}
	}
	return nil
}

func validateRhos(rhos []float64) error {
	if len(rhos) == 0 {
		return core.NewConfigurationError("rho_range", "empty sweep range")
	}
	for _, r := range rhos {
		if r < -1 || r > 1 {
			return core.NewConfigurationError("rho_range",
				fmt.Sprintf("rho=%g outside [-1, 1]", r))
		}
	}
	return nil
}

// KappaSweep evaluates SEF over kappa values at a fixed baseline rho and
// reports the kappa sensitivity index.
func KappaSweep(rho float64, kappas []float64) (report.SensitivityResult, error) {
	if err := validateRhos([]float64{rho}); err != nil {
		return report.SensitivityResult{}, err
	}
	if err := validateKappas(kappas); err != nil {
		return report.SensitivityResult{}, err
	}

	points := evaluate(kappas, []float64{rho})
	sens := summarize("kappa", points)
	return report.SensitivityResult{Points: points, Kappa: &sens}, nil
}

// RhoSweep evaluates SEF over rho values at a fixed baseline kappa and
// reports the rho sensitivity index.
func RhoSweep(kappa float64, rhos []float64) (report.SensitivityResult, error) {
	if err := validateKappas([]float64{kappa}); err != nil {
		return report.SensitivityResult{}, err
	}
	if err := validateRhos(rhos); err != nil {
		return report.SensitivityResult{}, err
	}

	points := evaluate([]float64{kappa}, rhos)
	sens := summarize("rho", points)
	return report.SensitivityResult{Points: points, Rho: &sens}, nil
}

// Grid evaluates the full 2-D surface and reports both parameter indices.
// Each index is computed over the whole grid with the respective parameter
// treated as the varied one.
func Grid(kappas, rhos []float64) (report.SensitivityResult, error) {
	if err := validateKappas(kappas); err != nil {
		return report.SensitivityResult{}, err
	}
	if err := validateRhos(rhos); err != nil {
		return report.SensitivityResult{}, err
	}

	points := evaluate(kappas, rhos)
	kappaSens := summarize("kappa", points)
	rhoSens := summarize("rho", points)
	return report.SensitivityResult{Points: points, Kappa: &kappaSens, Rho: &rhoSens}, nil
}

// evaluate computes the surface point by point. Non-positive denominators
// are flagged Undefined at the point; they never NaN-propagate into the
// summary statistics.
func evaluate(kappas, rhos []float64) []report.GridPoint {
	points := make([]report.GridPoint, 0, len(kappas)*len(rhos))
	for _, k := range kappas {
		for _, r := range rhos {
			p := report.GridPoint{Kappa: k, Rho: r}
			v, reason := sef.EvaluateAt(k, r)
			if reason != sef.ReasonNone {
				p.Undefined = true
			} else {
				p.SEF = v
			}
			points = append(points, p)
		}
	}
	return points
}

// summarize computes the sensitivity index: the SEF range across defined
// points, normalized to [0,1] by the largest observed magnitude.
func summarize(parameter string, points []report.GridPoint) report.ParamSensitivity {
	sens := report.ParamSensitivity{Parameter: parameter}

	first := true
	for _, p := range points {
		if p.Undefined {
			sens.UndefinedPoints++
			continue
		}
		sens.DefinedPoints++
		if first {
			sens.MinSEF, sens.MaxSEF = p.SEF, p.SEF
			first = false
			continue
		}
		if p.SEF < sens.MinSEF {
			sens.MinSEF = p.SEF
		}
		if p.SEF > sens.MaxSEF {
			sens.MaxSEF = p.SEF
		}
	}

	if sens.DefinedPoints == 0 {
		sens.Undefined = true
		return sens
	}
	if sens.MaxSEF > 0 {
		sens.Index = (sens.MaxSEF - sens.MinSEF) / sens.MaxSEF
	}
	return sens
}
