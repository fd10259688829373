package export

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"

	"EquityPulse/internal/domain/models"
)

const (
	SheetSummary    = "Summary"
	SheetIndicators = "Indicators"
	SheetMetrics    = "Metrics"
)

// WriteXLSX writes a workbook with a summary sheet, the latest indicator
// values and the market metrics. Undefined values are left blank.
func WriteXLSX(w io.Writer, r *models.AnalysisReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return err
	}
	m := r.Metadata
	summary := [][]interface{}{
		{"Field", "Value"},
		{"Ticker", m.Ticker},
		{"Sector", m.Sector},
		{"Analysis Date", m.AnalysisDate.Format("2006-01-02 15:04:05")},
		{"Period Start", m.DataPeriod.Start},
		{"Period End", m.DataPeriod.End},
		{"Total Days", m.DataPeriod.TotalDays},
		{"Latest Signal", signalLabel(r.Signals.LatestSignal)},
		{"Directional Accuracy", cell(r.Signals.DirectionalAccuracy)},
		{"Requires Attention", yesNo(r.AttentionFlags.RequiresAttention)},
		{"Risk Level", r.AttentionFlags.RiskLevel.String()},
	}
	for _, reason := range r.AttentionFlags.TriggeredReasons {
		summary = append(summary, []interface{}{"Reason", reason})
	}
	if err := writeRows(f, SheetSummary, summary); err != nil {
		return err
	}

	ind := [][]interface{}{{"Indicator", "Value", "Signal"}}
	for _, name := range sortedKeys(r.Signals.TechnicalIndicators) {
		row := []interface{}{name, cell(r.Signals.TechnicalIndicators[name]), ""}
		if s, ok := r.Signals.SignalBreakdown[name]; ok {
			row[2] = s.Int()
		}
		ind = append(ind, row)
	}
	if err := addSheet(f, SheetIndicators, ind); err != nil {
		return err
	}

	metrics, err := metricRows(r.MarketMetrics)
	if err != nil {
		return err
	}
	if err := addSheet(f, SheetMetrics, metrics); err != nil {
		return err
	}
	return f.Write(w)
}

func addSheet(f *excelize.File, name string, rows [][]interface{}) error {
	if _, err := f.NewSheet(name); err != nil {
		return err
	}
	return writeRows(f, name, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		for j, v := range row {
			if v == nil {
				continue
			}
			name, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, name, v); err != nil {
				return fmt.Errorf("%s!%s: %w", sheet, name, err)
			}
		}
	}
	return nil
}

// metricRows lists the market metrics by their JSON names.
func metricRows(mm models.MarketMetrics) ([][]interface{}, error) {
	raw, err := json.Marshal(mm)
	if err != nil {
		return nil, err
	}
	var fields map[string]*float64
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	rows := [][]interface{}{{"Metric", "Value"}}
	for _, k := range sortedKeys(fields) {
		rows = append(rows, []interface{}{k, cell(fields[k])})
	}
	return rows, nil
}

func cell(p *float64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
