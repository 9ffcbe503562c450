// Package sef computes the Signal Enhancement Factor: the signal-to-noise
// improvement a relative (paired-difference) measurement gains over an
// absolute one, as a function of the variance ratio between the two compared
// entities and their correlation.
package sef

import (
	"math"

	"github.com/montanaflynn/stats"

	"sefval/domain/core"
	"sefval/domain/sample"
)

// UndefinedReason explains why a SEF value could not be computed.
type UndefinedReason string

const (
	ReasonNone                UndefinedReason = ""
	ReasonZeroVarianceA       UndefinedReason = "zero_variance_a"
	ReasonZeroVarianceB       UndefinedReason = "zero_variance_b"
	ReasonNonPositiveDenom    UndefinedReason = "non_positive_denominator"
	ReasonInsufficientData    UndefinedReason = "insufficient_data"
	ReasonInvalidKappa        UndefinedReason = "negative_variance_ratio"
	ReasonCorrelationOutRange UndefinedReason = "correlation_out_of_range"
)

// Params are the derived distribution parameters SEF is built from.
//
// Kappa is the variance ratio sigma_B^2 / sigma_A^2 and Delta the absolute
// mean separation. Rho is the Pearson correlation of the aligned pairs, or
// the caller-supplied value for independent samples.
type Params struct {
	MuA    float64 `json:"mu_a"`
	MuB    float64 `json:"mu_b"`
	SigmaA float64 `json:"sigma_a"`
	SigmaB float64 `json:"sigma_b"`
	Rho    float64 `json:"rho"`
	Kappa  float64 `json:"kappa"`
	Delta  float64 `json:"delta"`
}

// Result is the calculator's output record. Consumers must check Undefined
// and InsufficientData before using SEF; the value is never silently clamped
// or coerced when either flag is set.
type Result struct {
	Metric           core.MetricKey  `json:"metric"`
	Params           Params          `json:"params"`
	SEF              float64         `json:"sef"`
	Undefined        bool            `json:"undefined"`
	UndefinedReason  UndefinedReason `json:"undefined_reason,omitempty"`
	InsufficientData bool            `json:"insufficient_data"`
	ObservedN        int             `json:"observed_n"`
}

// Options configure a calculation.
type Options struct {
	// MinSampleSize is the usable-length threshold after missing-value
	// filtering. Zero means sample.DefaultMinSampleSize.
	MinSampleSize int

	// Rho overrides the correlation for independent (unpaired) samples.
	// Ignored for paired samples, where rho is always computed from the
	// aligned pairs. The default of 0 encodes "no pairing structure".
	Rho float64
}

func (o Options) minSize() int {
	if o.MinSampleSize <= 0 {
		return sample.DefaultMinSampleSize
	}
	return o.MinSampleSize
}

// Calculate derives Params and the canonical SEF from a sample. The sample
// is cleaned of missing values first; if either side falls below the minimum
// usable length the result reports InsufficientData instead of a value.
func Calculate(s sample.PairedSample, opts Options) Result {
	clean, n := s.Clean()
	res := Result{Metric: s.Metric, ObservedN: n}

	minA, minB := len(clean.A), len(clean.B)
	if minA < opts.minSize() || minB < opts.minSize() {
		res.InsufficientData = true
		res.Undefined = true
		res.UndefinedReason = ReasonInsufficientData
		return res
	}

	muA, _ := stats.Mean(clean.A)
	muB, _ := stats.Mean(clean.B)
	sdA, _ := stats.StandardDeviationSample(clean.A)
	sdB, _ := stats.StandardDeviationSample(clean.B)

	rho := opts.Rho
	if clean.Paired {
		r, err := stats.Pearson(clean.A, clean.B)
		if err != nil {
			res.Undefined = true
			res.UndefinedReason = ReasonZeroVarianceA
			return res
		}
		rho = r
	}

	res.Params = Params{
		MuA:    muA,
		MuB:    muB,
		SigmaA: sdA,
		SigmaB: sdB,
		Rho:    rho,
		Delta:  math.Abs(muA - muB),
	}

	if sdA == 0 {
		res.Undefined = true
		res.UndefinedReason = ReasonZeroVarianceA
		return res
	}
	if sdB == 0 {
		res.Undefined = true
		res.UndefinedReason = ReasonZeroVarianceB
		return res
	}

	kappa := (sdB * sdB) / (sdA * sdA)
	res.Params.Kappa = kappa

	value, reason := EvaluateAt(kappa, rho)
	if reason != ReasonNone {
		res.Undefined = true
		res.UndefinedReason = reason
		return res
	}

	res.SEF = value
	return res
}

// EvaluateAt computes the canonical SEF = (1 + kappa) / (1 + kappa - 2*sqrt(kappa)*rho)
// at a parameter point. A non-empty reason means the point is outside the
// formula's domain; the returned value must then be ignored.
func EvaluateAt(kappa, rho float64) (float64, UndefinedReason) {
	if kappa < 0 || math.IsNaN(kappa) {
		return 0, ReasonInvalidKappa
	}
	if rho < -1 || rho > 1 || math.IsNaN(rho) {
		return 0, ReasonCorrelationOutRange
	}
	denom := 1 + kappa - 2*math.Sqrt(kappa)*rho
	if denom <= 0 {
		return 0, ReasonNonPositiveDenom
	}
	return (1 + kappa) / denom, ReasonNone
}

// NoiseCancellationSEF is the reduced, independence-only formula branch found
// alongside the canonical one in the framework's derivations: 4 / (1 + kappa).
// It has a ceiling of 4 as kappa -> 0 and decays monotonically toward 0.
// It is kept as a separately labeled alternative estimator for comparison
// purposes and is never substituted for the canonical formula.
func NoiseCancellationSEF(kappa float64) (float64, UndefinedReason) {
	if kappa < 0 || math.IsNaN(kappa) {
		return 0, ReasonInvalidKappa
	}
	return 4 / (1 + kappa), ReasonNone
}
