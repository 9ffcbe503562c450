package app

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"sefval/domain/core"
	"sefval/domain/report"
	"sefval/domain/sample"
	"sefval/domain/sef"
	"sefval/internal/applicability"
	"sefval/internal/axioms"
	"sefval/internal/config"
	"sefval/internal/correction"
	"sefval/internal/logo"
	"sefval/internal/permutation"
	"sefval/internal/resample"
	"sefval/internal/sensitivity"
	"sefval/internal/significance"
	"sefval/ports"
)

// ValidationService runs the full SEF validation pipeline: per-metric SEF,
// bootstrap significance, permutation test, LOGO stability, axiom scoring
// and applicability, then one multiple-comparison correction pass over the
// complete p-value batch.
type ValidationService struct {
	engine       config.EngineConfig
	resampler    *resample.Resampler
	significance *significance.Tester
	permutation  *permutation.Tester
	axiomEngine  *axioms.Engine
	corrector    *correction.Corrector
}

// SensitivitySpec requests a parameter-space sweep alongside the per-metric
// validation. Ranges left nil are skipped; setting both produces a 2-D grid.
type SensitivitySpec struct {
	BaselineKappa float64
	BaselineRho   float64
	KappaRange    []float64
	RhoRange      []float64
}

// ValidationRequest is one batch of metrics to validate together. All
// metrics in the batch form a single hypothesis family for correction.
type ValidationRequest struct {
	Samples     []sample.PairedSample
	Sensitivity *SensitivitySpec

	// Seed overrides the configured seed for this run when set.
	Seed *int64
}

// NewValidationService wires the engine components. Configuration problems
// surface here, before any computation starts.
func NewValidationService(engine config.EngineConfig, rng ports.RNGPort) (*ValidationService, error) {
	method, err := report.ParseCorrectionMethod(engine.CorrectionMethod)
	if err != nil {
		return nil, err
	}
	corrector, err := correction.New(method, engine.CorrectionAlpha)
	if err != nil {
		return nil, err
	}

	resampler := resample.New(rng)
	return &ValidationService{
		engine:       engine,
		resampler:    resampler,
		significance: significance.New(resampler),
		permutation:  permutation.New(resampler),
		axiomEngine:  axioms.NewEngine(rng),
		corrector:    corrector,
	}, nil
}

// Run validates every metric in the request and returns the merged report.
// Metrics are evaluated in parallel; per-metric statistical failures are
// isolated on their result records and never abort sibling metrics.
func (s *ValidationService) Run(ctx context.Context, req ValidationRequest) (*report.ValidationReport, error) {
	keys := make([]core.MetricKey, len(req.Samples))
	for i, smp := range req.Samples {
		keys[i] = smp.Metric
	}
	if err := report.ValidateMetricKeys(keys); err != nil {
		return nil, err
	}

	seed := s.engine.RandomSeed
	if req.Seed != nil {
		seed = req.Seed
	}

	start := time.Now()
	log.Printf("[Validation] starting run: %d metrics, seeded=%t", len(req.Samples), seed != nil)

	metrics := make([]report.MetricValidation, len(req.Samples))
	g, gctx := errgroup.WithContext(ctx)
	for i := range req.Samples {
		i := i
		g.Go(func() error {
			mv, err := s.validateMetric(gctx, req.Samples[i], seed)
			if err != nil {
				return err
			}
			metrics[i] = mv
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &report.ValidationReport{
		ID:        core.ReportID(core.NewID()),
		RunID:     core.RunID(core.NewID()),
		CreatedAt: core.Now(),
		Seed:      seed,
		Metrics:   metrics,
	}

	// Correction barrier: runs once, only after every metric's significance
	// test has completed, over the complete batch of defined p-values.
	if err := s.applyCorrection(result); err != nil {
		return nil, err
	}

	if req.Sensitivity != nil {
		sens, err := s.runSensitivity(*req.Sensitivity)
		if err != nil {
			return nil, err
		}
		result.Sensitivity = &sens
	}

	log.Printf("[Validation] run %s complete in %s", result.RunID, time.Since(start))
	return result, nil
}

func (s *ValidationService) validateMetric(ctx context.Context, smp sample.PairedSample, seed *int64) (report.MetricValidation, error) {
	sefOpts := sef.Options{MinSampleSize: s.engine.MinSampleSize}
	mv := report.MetricValidation{Metric: smp.Metric}

	mv.SEF = sef.Calculate(smp, sefOpts)

	sig, err := s.significance.Test(ctx, smp, significance.Config{
		Repetitions:      s.engine.BootstrapRepetitions,
		Seed:             seed,
		Workers:          s.engine.Workers,
		MinSampleSize:    s.engine.MinSampleSize,
		ConfidenceLevels: s.engine.ConfidenceLevels,
		SEF:              sefOpts,
	})
	if err != nil {
		return mv, err
	}
	mv.Significance = &sig

	perm, err := s.permutation.Test(ctx, smp, permutation.Config{
		Statistic:     permutation.StatisticMeanDifference,
		Sided:         report.TwoSided,
		Permutations:  s.engine.PermutationRepetitions,
		Seed:          seed,
		Workers:       s.engine.Workers,
		MinSampleSize: s.engine.MinSampleSize,
	})
	if err != nil {
		return mv, err
	}
	mv.Permutation = &perm

	if smp.Paired && len(smp.Groups) > 0 {
		lg, err := logo.Validate(smp, logo.Config{
			MinSampleSize: s.engine.MinSampleSize,
			SEF:           sefOpts,
		})
		if err != nil {
			return mv, err
		}
		mv.LOGO = &lg
	}

	ax := s.axiomEngine.Validate(ctx, smp, axioms.Config{
		Threshold:     s.engine.AxiomThreshold,
		MinSampleSize: s.engine.MinSampleSize,
		Seed:          seed,
	})
	mv.Axioms = &ax

	if !mv.SEF.InsufficientData {
		app := applicability.Assess(smp, mv.SEF.Params)
		mv.Applicability = &app
		lt := applicability.LogTransformCheck(smp, sefOpts)
		mv.LogTransform = &lt
	}

	return mv, nil
}

// applyCorrection gathers the defined significance p-values, corrects them
// as one family, and writes corrected values back in original metric order.
// Metrics whose test could not run stay uncorrected and visibly so; "could
// not be evaluated" and "evaluated, not significant" are never conflated.
func (s *ValidationService) applyCorrection(r *report.ValidationReport) error {
	var rawP []float64
	var indices []int
	for i := range r.Metrics {
		sig := r.Metrics[i].Significance
		if sig == nil || sig.Undefined {
			continue
		}
		rawP = append(rawP, sig.PValue)
		indices = append(indices, i)
	}
	if len(rawP) == 0 {
		return nil
	}

	corrected, err := s.corrector.Correct(rawP)
	if err != nil {
		return err
	}

	for batchIdx, metricIdx := range indices {
		h := corrected.Hypotheses[batchIdx]
		r.Metrics[metricIdx].CorrectedP = h.CorrectedP
		r.Metrics[metricIdx].Significant = h.Significant
		r.Metrics[metricIdx].Corrected = true
	}
	r.Correction = &corrected
	return nil
}

func (s *ValidationService) runSensitivity(spec SensitivitySpec) (report.SensitivityResult, error) {
	switch {
	case len(spec.KappaRange) > 0 && len(spec.RhoRange) > 0:
		return sensitivity.Grid(spec.KappaRange, spec.RhoRange)
	case len(spec.KappaRange) > 0:
		return sensitivity.KappaSweep(spec.BaselineRho, spec.KappaRange)
	case len(spec.RhoRange) > 0:
		return sensitivity.RhoSweep(spec.BaselineKappa, spec.RhoRange)
	default:
		return report.SensitivityResult{}, core.NewConfigurationError("sensitivity",
			"at least one parameter range is required")
	}
}
