package api

import (
	"fmt"

	"sefval/app"
	"sefval/domain/core"
	"sefval/domain/sample"
)

// metricPayload is one metric's raw observations in a validation request.
type metricPayload struct {
	Metric   string    `json:"metric" binding:"required"`
	A        []float64 `json:"a" binding:"required"`
	B        []float64 `json:"b" binding:"required"`
	Paired   bool      `json:"paired"`
	Groups   []string  `json:"groups,omitempty"`
	Outcomes []string  `json:"outcomes,omitempty"`
}

// sensitivityPayload requests a parameter sweep alongside the run.
type sensitivityPayload struct {
	BaselineKappa float64   `json:"baseline_kappa"`
	BaselineRho   float64   `json:"baseline_rho"`
	KappaRange    []float64 `json:"kappa_range,omitempty"`
	RhoRange      []float64 `json:"rho_range,omitempty"`
}

// validatePayload is the body of POST /api/validate.
type validatePayload struct {
	Metrics     []metricPayload     `json:"metrics" binding:"required"`
	Sensitivity *sensitivityPayload `json:"sensitivity,omitempty"`
	Seed        *int64              `json:"seed,omitempty"`
}

func (p *validatePayload) toRequest() (app.ValidationRequest, error) {
	req := app.ValidationRequest{Seed: p.Seed}

	for _, m := range p.Metrics {
		metric, err := core.ParseMetricKey(m.Metric)
		if err != nil {
			return app.ValidationRequest{}, err
		}

		var s sample.PairedSample
		if m.Paired {
			s, err = sample.NewPaired(metric, m.A, m.B)
			if err != nil {
				return app.ValidationRequest{}, err
			}
		} else {
			s = sample.NewIndependent(metric, m.A, m.B)
		}

		if len(m.Groups) > 0 {
			groups := make([]core.GroupID, len(m.Groups))
			for i, g := range m.Groups {
				groups[i] = core.GroupID(g)
			}
			s, err = s.WithGroups(groups)
			if err != nil {
				return app.ValidationRequest{}, err
			}
		}

		if len(m.Outcomes) > 0 {
			outcomes := make([]sample.Outcome, len(m.Outcomes))
			for i, o := range m.Outcomes {
				outcomes[i], err = parseOutcome(o)
				if err != nil {
					return app.ValidationRequest{}, err
				}
			}
			s, err = s.WithOutcomes(outcomes)
			if err != nil {
				return app.ValidationRequest{}, err
			}
		}

		req.Samples = append(req.Samples, s)
	}

	if p.Sensitivity != nil {
		req.Sensitivity = &app.SensitivitySpec{
			BaselineKappa: p.Sensitivity.BaselineKappa,
			BaselineRho:   p.Sensitivity.BaselineRho,
			KappaRange:    p.Sensitivity.KappaRange,
			RhoRange:      p.Sensitivity.RhoRange,
		}
	}
	return req, nil
}

func parseOutcome(s string) (sample.Outcome, error) {
	switch s {
	case "a":
		return sample.OutcomeAFavored, nil
	case "b":
		return sample.OutcomeBFavored, nil
	case "", "none":
		return sample.OutcomeNone, nil
	default:
		return sample.OutcomeNone, fmt.Errorf("unknown outcome label %q", s)
	}
}
