package api

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"sefval/domain/report"
)

// RenderMarkdown builds a human-readable summary of a validation report.
func RenderMarkdown(rep *report.ValidationReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Validation Report %s\n\n", rep.ID)
	fmt.Fprintf(&b, "- Run: `%s`\n", rep.RunID)
	fmt.Fprintf(&b, "- Created: %s\n", rep.CreatedAt.Time().Format("2006-01-02 15:04:05 MST"))
	if rep.Seed != nil {
		fmt.Fprintf(&b, "- Seed: %d\n", *rep.Seed)
	}
	if rep.Correction != nil {
		fmt.Fprintf(&b, "- Correction: %s (alpha %.3g, %d hypotheses)\n",
			rep.Correction.Method, rep.Correction.Alpha, len(rep.Correction.Hypotheses))
	}
	b.WriteString("\n## Metrics\n\n")
	b.WriteString("| Metric | SEF | p (raw) | p (corrected) | Significant | Axioms |\n")
	b.WriteString("|---|---|---|---|---|---|\n")

	for i := range rep.Metrics {
		m := &rep.Metrics[i]
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			m.Metric,
			formatSEF(m),
			formatRawP(m),
			formatCorrectedP(m),
			formatSignificance(m),
			formatAxioms(m))
	}

	for i := range rep.Metrics {
		m := &rep.Metrics[i]
		fmt.Fprintf(&b, "\n### %s\n\n", m.Metric)
		writeMetricDetail(&b, m)
	}

	if rep.Sensitivity != nil {
		b.WriteString("\n## Sensitivity\n\n")
		writeSensitivity(&b, rep.Sensitivity)
	}
	return b.String()
}

// RenderHTML renders the markdown summary to an HTML page body.
func RenderHTML(rep *report.ValidationReport) []byte {
	md := RenderMarkdown(rep)
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.CompletePage})
	return markdown.ToHTML([]byte(md), p, renderer)
}

func formatSEF(m *report.MetricValidation) string {
	if m.SEF.Undefined {
		return "undefined (" + string(m.SEF.UndefinedReason) + ")"
	}
	if m.SEF.InsufficientData {
		return "insufficient data"
	}
	return fmt.Sprintf("%.4f", m.SEF.SEF)
}

func formatRawP(m *report.MetricValidation) string {
	if m.Significance == nil || m.Significance.Undefined {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", m.Significance.PValue)
}

func formatCorrectedP(m *report.MetricValidation) string {
	if !m.Corrected {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", m.CorrectedP)
}

// formatSignificance keeps "could not be evaluated" visibly distinct from
// "evaluated and not significant".
func formatSignificance(m *report.MetricValidation) string {
	if !m.Corrected {
		return "not evaluated"
	}
	if m.Significant {
		return "yes"
	}
	return "no"
}

func formatAxioms(m *report.MetricValidation) string {
	if m.Axioms == nil {
		return "n/a"
	}
	if m.Axioms.AggregateUndefined {
		return "undefined"
	}
	verdict := "fail"
	if m.Axioms.Compliant {
		verdict = "pass"
	}
	return fmt.Sprintf("%.2f (%s)", m.Axioms.Aggregate, verdict)
}

func writeMetricDetail(b *strings.Builder, m *report.MetricValidation) {
	if !m.SEF.Undefined && !m.SEF.InsufficientData {
		fmt.Fprintf(b, "- kappa %.4f, rho %.4f, delta %.4f (n=%d)\n",
			m.SEF.Params.Kappa, m.SEF.Params.Rho, m.SEF.Params.Delta, m.SEF.ObservedN)
	}
	if sig := m.Significance; sig != nil && !sig.Undefined {
		for _, iv := range sig.Intervals {
			note := ""
			if iv.LowResolution {
				note = " (low resolution)"
			}
			fmt.Fprintf(b, "- %.0f%% CI: [%.4f, %.4f]%s\n", iv.Level*100, iv.Lower, iv.Upper, note)
		}
	}
	if perm := m.Permutation; perm != nil && !perm.Undefined {
		fmt.Fprintf(b, "- permutation %s: p=%.4f over %d permutations\n",
			perm.Statistic, perm.PValue, perm.Permutations)
	}
	if lg := m.LOGO; lg != nil && !lg.Undefined {
		fmt.Fprintf(b, "- LOGO stability: mean %.4f, max %.4f over %d groups (%d undefined)\n",
			lg.MeanStability, lg.MaxStability, lg.EvaluatedGroups, lg.UndefinedGroups)
	}
	if appc := m.Applicability; appc != nil {
		fmt.Fprintf(b, "- applicability: %d/%d gates\n", appc.Score, appc.MaxScore)
	}
	if lt := m.LogTransform; lt != nil && !lt.Undefined {
		fmt.Fprintf(b, "- log-transform shift: %.2f%%\n", lt.RelativeShift*100)
	}
}

func writeSensitivity(b *strings.Builder, sens *report.SensitivityResult) {
	if sens.Kappa != nil && !sens.Kappa.Undefined {
		fmt.Fprintf(b, "- kappa sweep: SEF in [%.4f, %.4f], index %.4f\n",
			sens.Kappa.MinSEF, sens.Kappa.MaxSEF, sens.Kappa.Index)
	}
	if sens.Rho != nil && !sens.Rho.Undefined {
		fmt.Fprintf(b, "- rho sweep: SEF in [%.4f, %.4f], index %.4f\n",
			sens.Rho.MinSEF, sens.Rho.MaxSEF, sens.Rho.Index)
	}
	fmt.Fprintf(b, "- %d evaluated points\n", len(sens.Points))
}
