// Package export writes analysis reports to files: JSON, a plain text
// summary, an xlsx workbook and a PNG price chart.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"EquityPulse/internal/domain/models"
	"EquityPulse/internal/services/indicators"
	applogger "EquityPulse/pkg/logger"
	"EquityPulse/pkg/util"
)

const stampLayout = "20060102_150405"

type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts json, text or xlsx.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatJSON, FormatText, FormatXLSX:
		return f, nil
	}
	return "", fmt.Errorf("%w: unknown export format %q", models.ErrInput, s)
}

// FileName builds "<TICKER>_<kind>_<stamp>.<ext>" with the ticker made safe
// for file systems.
func FileName(ticker, kind, ext string, at time.Time) string {
	return fmt.Sprintf("%s_%s_%s.%s", util.FileSafe(ticker), kind, at.Format(stampLayout), ext)
}

// Exporter writes files into Dir.
type Exporter struct {
	Dir        string
	Indicators indicators.Config
	Now        func() time.Time
	l          *applogger.Logger
}

func New(dir string, cfg indicators.Config, l *applogger.Logger) *Exporter {
	if l == nil {
		l = applogger.Nop()
	}
	return &Exporter{Dir: dir, Indicators: cfg, Now: time.Now, l: l}
}

// Save writes env in the requested format. The JSON report is always
// written; text adds the summary, xlsx adds the workbook. It returns the
// paths written.
func (x *Exporter) Save(env *models.ReportEnvelope, format Format) ([]string, error) {
	if env == nil || env.Report == nil {
		return nil, fmt.Errorf("%w: empty report", models.ErrInput)
	}
	if err := os.MkdirAll(x.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	at := x.Now()

	var paths []string
	write := func(kind, ext string, fn func(io.Writer) error) error {
		p := filepath.Join(x.Dir, FileName(env.Ticker, kind, ext, at))
		if err := writeFile(p, fn); err != nil {
			return err
		}
		x.l.Info("report written", applogger.String("ticker", env.Ticker), applogger.String("path", p))
		paths = append(paths, p)
		return nil
	}

	if err := write("analysis", "json", func(w io.Writer) error { return WriteJSON(w, env.Report) }); err != nil {
		return paths, err
	}
	switch format {
	case FormatText:
		if err := write("summary", "txt", func(w io.Writer) error { return WriteSummary(w, env.Report) }); err != nil {
			return paths, err
		}
	case FormatXLSX:
		if err := write("analysis", "xlsx", func(w io.Writer) error { return WriteXLSX(w, env.Report) }); err != nil {
			return paths, err
		}
	}
	return paths, nil
}

// SaveChart renders the close and Bollinger band chart of series.
func (x *Exporter) SaveChart(series models.OHLCVSeries) (string, error) {
	png, err := RenderChart(series, x.Indicators)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(x.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	p := filepath.Join(x.Dir, FileName(series.Ticker, "chart", "png", x.Now()))
	if err := os.WriteFile(p, png, 0o644); err != nil {
		return "", fmt.Errorf("write chart: %w", err)
	}
	x.l.Info("chart written", applogger.String("ticker", series.Ticker), applogger.String("path", p))
	return p, nil
}

func WriteJSON(w io.Writer, r *models.AnalysisReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func writeFile(path string, fn func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	if err := fn(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
