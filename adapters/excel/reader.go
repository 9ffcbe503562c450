// Package excel loads paired samples from Excel workbooks and CSV files.
//
// Two layouts are supported. In the wide layout CLASS_A and CLASS_B name two
// value columns and every row contributes one paired observation. In the long
// layout a class column tags each row as belonging to signal A or signal B and
// the sides are collected independently. An optional metric column splits the
// file into one sample per metric.
package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"sefval/domain/core"
	"sefval/domain/sample"
	"sefval/internal/config"
)

// WorkbookSource reads samples from an .xlsx or .csv file.
type WorkbookSource struct {
	cfg      config.DataConfig
	fileType string // "xlsx" or "csv"
}

// NewWorkbookSource creates a sample source for the configured file.
func NewWorkbookSource(cfg config.DataConfig) *WorkbookSource {
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(cfg.WorkbookFile)) == ".csv" {
		fileType = "csv"
	}
	return &WorkbookSource{cfg: cfg, fileType: fileType}
}

// Samples reads the configured file and returns one PairedSample per metric.
// Non-numeric and blank value cells become NaN so the engine's cleaning pass
// can account for them; rows are never silently dropped here.
func (w *WorkbookSource) Samples(ctx context.Context) ([]sample.PairedSample, error) {
	log.Printf("[Workbook] reading %s file: %s", w.fileType, w.cfg.WorkbookFile)

	if _, err := os.Stat(w.cfg.WorkbookFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("workbook not found: %s", w.cfg.WorkbookFile)
	}

	var rows [][]string
	var err error
	switch w.fileType {
	case "csv":
		rows, err = w.readCSV()
	default:
		rows, err = w.readExcel()
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("workbook must have a header row and at least one data row")
	}

	samples, err := w.extract(rows)
	if err != nil {
		return nil, err
	}
	log.Printf("[Workbook] extracted %d metric sample(s) from %d rows", len(samples), len(rows)-1)
	return samples, nil
}

func (w *WorkbookSource) readExcel() ([][]string, error) {
	f, err := excelize.OpenFile(w.cfg.WorkbookFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(w.cfg.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", w.cfg.SheetName, err)
	}
	return rows, nil
}

func (w *WorkbookSource) readCSV() ([][]string, error) {
	f, err := os.Open(w.cfg.WorkbookFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return rows, nil
}

// columnIndex maps header names to positions, case-insensitively.
type columnIndex map[string]int

func indexHeader(header []string) columnIndex {
	idx := make(columnIndex, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return idx
}

func (c columnIndex) lookup(name string) (int, bool) {
	i, ok := c[strings.ToLower(strings.TrimSpace(name))]
	return i, ok
}

func (w *WorkbookSource) extract(rows [][]string) ([]sample.PairedSample, error) {
	header := indexHeader(rows[0])

	if w.cfg.ClassA != "" && w.cfg.ClassColumn == "" {
		return w.extractWide(header, rows[1:])
	}
	return w.extractLong(header, rows[1:])
}

// extractWide reads the paired layout: CLASS_A and CLASS_B name two value
// columns and each row is one pair.
func (w *WorkbookSource) extractWide(header columnIndex, rows [][]string) ([]sample.PairedSample, error) {
	colA, ok := header.lookup(w.cfg.ClassA)
	if !ok {
		return nil, fmt.Errorf("column %q not found in header", w.cfg.ClassA)
	}
	colB, ok := header.lookup(w.cfg.ClassB)
	if !ok {
		return nil, fmt.Errorf("column %q not found in header", w.cfg.ClassB)
	}
	groupCol, hasGroups := header.lookup(w.cfg.GroupColumn)
	if w.cfg.GroupColumn == "" {
		hasGroups = false
	}
	outcomeCol, hasOutcomes := header.lookup(w.cfg.OutcomeColumn)
	if w.cfg.OutcomeColumn == "" {
		hasOutcomes = false
	}

	metric, err := core.ParseMetricKey(w.cfg.ClassA + "_vs_" + w.cfg.ClassB)
	if err != nil {
		return nil, err
	}

	s := sample.PairedSample{Metric: metric, Paired: true}
	for _, row := range rows {
		s.A = append(s.A, parseCell(row, colA))
		s.B = append(s.B, parseCell(row, colB))
		if hasGroups {
			s.Groups = append(s.Groups, core.GroupID(cell(row, groupCol)))
		}
		if hasOutcomes {
			s.Outcomes = append(s.Outcomes, parseOutcome(cell(row, outcomeCol), w.cfg))
		}
	}
	return []sample.PairedSample{s}, nil
}

// extractLong reads the stacked layout: every row carries a class label and a
// value, optionally a metric name and a group label. Sides are independent.
func (w *WorkbookSource) extractLong(header columnIndex, rows [][]string) ([]sample.PairedSample, error) {
	classCol, ok := header.lookup(w.cfg.ClassColumn)
	if !ok {
		return nil, fmt.Errorf("column %q not found in header", w.cfg.ClassColumn)
	}
	valueCol, ok := header.lookup(w.cfg.ValueColumn)
	if !ok {
		return nil, fmt.Errorf("column %q not found in header", w.cfg.ValueColumn)
	}
	metricCol, hasMetrics := header.lookup(w.cfg.MetricColumn)
	if w.cfg.MetricColumn == "" {
		hasMetrics = false
	}
	groupCol, hasGroups := header.lookup(w.cfg.GroupColumn)
	if w.cfg.GroupColumn == "" {
		hasGroups = false
	}

	byMetric := make(map[string]*sample.PairedSample)
	var order []string
	for _, row := range rows {
		name := w.cfg.ValueColumn
		if hasMetrics {
			name = cell(row, metricCol)
		}
		s, seen := byMetric[name]
		if !seen {
			metric, err := core.ParseMetricKey(name)
			if err != nil {
				return nil, err
			}
			s = &sample.PairedSample{Metric: metric, Paired: false}
			byMetric[name] = s
			order = append(order, name)
		}

		value := parseCell(row, valueCol)
		switch strings.TrimSpace(cell(row, classCol)) {
		case w.cfg.ClassA:
			s.A = append(s.A, value)
			if hasGroups {
				s.Groups = append(s.Groups, core.GroupID(cell(row, groupCol)))
			}
		case w.cfg.ClassB:
			s.B = append(s.B, value)
		default:
			// Rows tagged with neither class are not part of the comparison.
		}
	}

	samples := make([]sample.PairedSample, 0, len(order))
	for _, name := range order {
		samples = append(samples, *byMetric[name])
	}
	return samples, nil
}

// parseOutcome maps an outcome cell to the favored side. Cells matching the
// configured class names label that side as favored; anything else is no call.
func parseOutcome(raw string, cfg config.DataConfig) sample.Outcome {
	switch strings.TrimSpace(raw) {
	case cfg.ClassA:
		return sample.OutcomeAFavored
	case cfg.ClassB:
		return sample.OutcomeBFavored
	default:
		return sample.OutcomeNone
	}
}

func cell(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return row[col]
}

// parseCell converts a cell to float64, returning NaN for blanks and
// non-numeric content so downstream cleaning sees the gap.
func parseCell(row []string, col int) float64 {
	raw := strings.TrimSpace(cell(row, col))
	if raw == "" {
		return math.NaN()
	}
	raw = strings.ReplaceAll(raw, ",", "")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
