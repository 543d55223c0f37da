// Package logging writes processing reports and the debug trace.
// This file contains the aligned metric tables used by the report
// (Input → Output).

package logging

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/linuxmatters/colimiter/internal/level"
)

// MetricRow represents a single row in a comparison table.
// Values are pre-formatted strings to allow for mixed formatting (decimals, scientific notation).
type MetricRow struct {
	Label          string   // Row label, e.g., "Peak level"
	Values         []string // One value per column (Input, Output)
	Unit           string   // Unit suffix, e.g., "dBFS", "%", "" for unitless
	Interpretation string   // Optional interpretation text (only shown if non-empty)
}

// MetricTable formats aligned columns for metric comparison.
// Handles variable column widths, missing values, and optional interpretation column.
type MetricTable struct {
	Headers []string    // Column headers, e.g., ["Input", "Output"]
	Rows    []MetricRow // Data rows
}

// String renders the table with labels left-aligned, values right-aligned
// under their headers, units after the last value and, when any row has
// one, an interpretation column.
func (t *MetricTable) String() string {
	if len(t.Rows) == 0 {
		return ""
	}

	labelWidth, unitWidth := 0, 0
	valueWidths := make([]int, len(t.Headers))
	for i, header := range t.Headers {
		valueWidths[i] = len(header)
	}

	hasInterpretation := false
	for _, row := range t.Rows {
		labelWidth = max(labelWidth, len(row.Label))
		unitWidth = max(unitWidth, len(row.Unit))
		for i := range valueWidths {
			valueWidths[i] = max(valueWidths[i], len(row.value(i)))
		}
		hasInterpretation = hasInterpretation || row.Interpretation != ""
	}

	var sb strings.Builder
	writeLine := func(label string, values []string, unit, interpretation string) {
		fmt.Fprintf(&sb, "%-*s  ", labelWidth, label)
		for i, v := range values {
			fmt.Fprintf(&sb, "%*s  ", valueWidths[i], v)
		}
		if unitWidth > 0 {
			fmt.Fprintf(&sb, "%-*s ", unitWidth, unit)
		}
		if hasInterpretation {
			sb.WriteString(interpretation)
		}
		sb.WriteString("\n")
	}

	header := "Interpretation"
	writeLine("", t.Headers, "", header)

	values := make([]string, len(t.Headers))
	for _, row := range t.Rows {
		for i := range values {
			values[i] = row.value(i)
		}
		writeLine(row.Label, values, row.Unit, row.Interpretation)
	}

	return sb.String()
}

// value returns the formatted value for column i, or MissingValue
func (r MetricRow) value(i int) string {
	if i < len(r.Values) && r.Values[i] != "" {
		return r.Values[i]
	}
	return MissingValue
}

// =============================================================================
// Metric Formatting Helpers
// =============================================================================

// MissingValue is the placeholder for unavailable measurements
const MissingValue = "-"

// SilenceLabel is shown for levels on the meter floor
var SilenceLabel = fmt.Sprintf("< %.0f", level.MinusInfinityDB)

// isDigitalSilence returns true if a dB value sits on or below the meter floor
func isDigitalSilence(value float64) bool {
	return math.IsInf(value, -1) || value <= float64(level.MinusInfinityDB)
}

// formatMetric formats a numeric value with appropriate precision.
// Very small non-zero values use scientific notation; NaN and Inf are missing.
func formatMetric(value float64, decimals int) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return MissingValue
	}

	if value != 0 && math.Abs(value) < 0.0001 {
		return fmt.Sprintf("%.2e", value)
	}

	return strconv.FormatFloat(value, 'f', decimals, 64)
}

// formatMetricDB formats a dB value, showing the floor label for silence
func formatMetricDB(value float64, decimals int) string {
	if math.IsNaN(value) || math.IsInf(value, 1) {
		return MissingValue
	}
	if isDigitalSilence(value) {
		return SilenceLabel
	}
	return strconv.FormatFloat(value, 'f', decimals, 64)
}

// formatMetricPeak formats a linear level (0.0-1.0 scale) in dBFS
func formatMetricPeak(value float64, decimals int) string {
	if math.IsNaN(value) {
		return MissingValue
	}
	return formatMetricDB(float64(level.GainToDB(float32(value))), decimals)
}

// formatMetricPercent formats a 0..1 ratio as a percentage
func formatMetricPercent(ratio float64, decimals int) string {
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return MissingValue
	}
	return strconv.FormatFloat(ratio*100, 'f', decimals, 64)
}

// formatMetricSigned formats a value with explicit sign for positive values.
// Useful for showing level changes like "+2.5 dB" or "-1.2 dB".
func formatMetricSigned(value float64, decimals int) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return MissingValue
	}

	format := fmt.Sprintf("%%+.%df", decimals)
	return fmt.Sprintf(format, value)
}

// formatMetricWithUnit combines value and unit for display.
// Returns "value unit" if unit is non-empty, otherwise just "value".
func formatMetricWithUnit(value float64, decimals int, unit string) string {
	formatted := formatMetric(value, decimals)
	if formatted == MissingValue || unit == "" {
		return formatted
	}
	return formatted + " " + unit
}

// =============================================================================
// Table Builder Helpers
// =============================================================================

// NewMetricTable creates a MetricTable comparing the colimiter's input and output.
func NewMetricTable() *MetricTable {
	return &MetricTable{
		Headers: []string{"Input", "Output"},
		Rows:    make([]MetricRow, 0),
	}
}

// AddRow adds a row to the table with pre-formatted values.
func (t *MetricTable) AddRow(label string, values []string, unit string, interpretation string) {
	t.Rows = append(t.Rows, MetricRow{
		Label:          label,
		Values:         values,
		Unit:           unit,
		Interpretation: interpretation,
	})
}

// AddMetricRow adds an input/output row with numeric values, formatting them
// automatically. Pass math.NaN() for missing values - they display as "-".
func (t *MetricTable) AddMetricRow(label string, input, output float64, decimals int, unit string, interpretation string) {
	t.AddRow(label, []string{formatMetric(input, decimals), formatMetric(output, decimals)}, unit, interpretation)
}

// AddPeakRow adds an input/output row of linear levels shown in dBFS.
func (t *MetricTable) AddPeakRow(label string, input, output float64, interpretation string) {
	t.AddRow(label, []string{formatMetricPeak(input, 1), formatMetricPeak(output, 1)}, "dBFS", interpretation)
}
