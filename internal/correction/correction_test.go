package correction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sefval/domain/report"
)

func newCorrector(t *testing.T, method report.CorrectionMethod) *Corrector {
	t.Helper()
	c, err := New(method, DefaultAlpha)
	require.NoError(t, err)
	return c
}

// TestNew_Validation rejects unknown methods and out-of-range alphas
func TestNew_Validation(t *testing.T) {
	_, err := New("sidak", DefaultAlpha)
	assert.Error(t, err, "unknown method must be rejected")

	_, err = New(report.CorrectionHolm, 0)
	assert.Error(t, err, "alpha=0 must be rejected")

	_, err = New(report.CorrectionHolm, 1)
	assert.Error(t, err, "alpha=1 must be rejected")
}

// TestCorrect_SingleHypothesisIdentity verifies every method is the identity
// at K=1
func TestCorrect_SingleHypothesisIdentity(t *testing.T) {
	for _, method := range []report.CorrectionMethod{
		report.CorrectionBonferroni, report.CorrectionHolm, report.CorrectionFDR,
	} {
		res, err := newCorrector(t, method).Correct([]float64{0.032})
		require.NoError(t, err, method)
		require.Len(t, res.Hypotheses, 1)
		assert.InDelta(t, 0.032, res.Hypotheses[0].CorrectedP, 1e-12,
			"%s must be identity for a single hypothesis", method)
	}
}

// TestCorrect_Bonferroni checks the straight p*K scaling with clamping
func TestCorrect_Bonferroni(t *testing.T) {
	res, err := newCorrector(t, report.CorrectionBonferroni).Correct(
		[]float64{0.01, 0.04, 0.5})
	require.NoError(t, err)

	assert.InDelta(t, 0.03, res.Hypotheses[0].CorrectedP, 1e-12)
	assert.InDelta(t, 0.12, res.Hypotheses[1].CorrectedP, 1e-12)
	assert.InDelta(t, 1.0, res.Hypotheses[2].CorrectedP, 1e-12, "p*K above 1 must clamp")

	assert.True(t, res.Hypotheses[0].Significant)
	assert.False(t, res.Hypotheses[1].Significant)
}

// TestCorrect_HolmKnownValues checks the step-down schedule on a worked
// example
func TestCorrect_HolmKnownValues(t *testing.T) {
	// Sorted: 0.01*4=0.04, 0.02*3=0.06, 0.03*2=0.06, 0.05*1=0.06 (monotone max).
	res, err := newCorrector(t, report.CorrectionHolm).Correct(
		[]float64{0.03, 0.01, 0.05, 0.02})
	require.NoError(t, err)

	assert.InDelta(t, 0.06, res.Hypotheses[0].CorrectedP, 1e-12)
	assert.InDelta(t, 0.04, res.Hypotheses[1].CorrectedP, 1e-12)
	assert.InDelta(t, 0.06, res.Hypotheses[2].CorrectedP, 1e-12)
	assert.InDelta(t, 0.06, res.Hypotheses[3].CorrectedP, 1e-12)
}

// TestCorrect_FDRKnownValues checks the Benjamini-Hochberg schedule on a
// worked example
func TestCorrect_FDRKnownValues(t *testing.T) {
	// Sorted: 0.01*4/1=0.04, 0.02*4/2=0.04, 0.03*4/3=0.04, 0.05*4/4=0.05.
	res, err := newCorrector(t, report.CorrectionFDR).Correct(
		[]float64{0.03, 0.01, 0.05, 0.02})
	require.NoError(t, err)

	assert.InDelta(t, 0.04, res.Hypotheses[0].CorrectedP, 1e-12)
	assert.InDelta(t, 0.04, res.Hypotheses[1].CorrectedP, 1e-12)
	assert.InDelta(t, 0.05, res.Hypotheses[2].CorrectedP, 1e-12)
	assert.InDelta(t, 0.04, res.Hypotheses[3].CorrectedP, 1e-12)
}

// TestCorrect_MethodOrdering verifies the conservativeness ordering
// FDR <= Holm <= Bonferroni pointwise
func TestCorrect_MethodOrdering(t *testing.T) {
	rawP := []float64{0.001, 0.008, 0.02, 0.04, 0.11, 0.25, 0.6, 0.9}

	bonf, err := newCorrector(t, report.CorrectionBonferroni).Correct(rawP)
	require.NoError(t, err)
	holm, err := newCorrector(t, report.CorrectionHolm).Correct(rawP)
	require.NoError(t, err)
	fdr, err := newCorrector(t, report.CorrectionFDR).Correct(rawP)
	require.NoError(t, err)

	for i := range rawP {
		assert.LessOrEqual(t, fdr.Hypotheses[i].CorrectedP, holm.Hypotheses[i].CorrectedP,
			"FDR must not exceed Holm at index %d", i)
		assert.LessOrEqual(t, holm.Hypotheses[i].CorrectedP, bonf.Hypotheses[i].CorrectedP,
			"Holm must not exceed Bonferroni at index %d", i)
		assert.GreaterOrEqual(t, fdr.Hypotheses[i].CorrectedP, rawP[i],
			"corrected p must not fall below raw p at index %d", i)
	}
}

// TestCorrect_PreservesInputOrder verifies results map back to the caller's
// original positions
func TestCorrect_PreservesInputOrder(t *testing.T) {
	rawP := []float64{0.7, 0.001, 0.2}
	res, err := newCorrector(t, report.CorrectionHolm).Correct(rawP)
	require.NoError(t, err)

	for i, h := range res.Hypotheses {
		assert.Equal(t, i, h.Index)
		assert.Equal(t, rawP[i], h.RawP)
	}
	// The smallest raw p must remain the most significant after correction.
	assert.Less(t, res.Hypotheses[1].CorrectedP, res.Hypotheses[0].CorrectedP)
}

// TestCorrect_TiedPValues verifies equal inputs get equal corrected values
func TestCorrect_TiedPValues(t *testing.T) {
	for _, method := range []report.CorrectionMethod{
		report.CorrectionBonferroni, report.CorrectionHolm, report.CorrectionFDR,
	} {
		res, err := newCorrector(t, method).Correct([]float64{0.02, 0.02, 0.02})
		require.NoError(t, err, method)
		first := res.Hypotheses[0].CorrectedP
		for _, h := range res.Hypotheses {
			assert.Equal(t, first, h.CorrectedP, "%s must treat ties identically", method)
		}
	}
}

// TestCorrect_InvalidBatches verifies empty and out-of-range batches are
// rejected whole
func TestCorrect_InvalidBatches(t *testing.T) {
	c := newCorrector(t, report.CorrectionFDR)

	_, err := c.Correct(nil)
	assert.Error(t, err, "empty batch must be rejected")

	_, err = c.Correct([]float64{0.05, 1.2})
	assert.Error(t, err, "p>1 must be rejected")

	_, err = c.Correct([]float64{-0.01})
	assert.Error(t, err, "p<0 must be rejected")
}
