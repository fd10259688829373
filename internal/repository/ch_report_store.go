package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"EquityPulse/internal/domain/models"
	domrepo "EquityPulse/internal/domain/repository"
	pkgch "EquityPulse/pkg/clickhouse"
	applogger "EquityPulse/pkg/logger"
)

// CHReportStore archives reports in ClickHouse. The full report is kept as a
// JSON string next to a few columns used for filtering.
type CHReportStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHReportStore(ch *pkgch.Client) *CHReportStore {
	return &CHReportStore{db: ch.DB(), table: qualified(ch.Database(), reportsTable)}
}

// SetLogger injects a structured logger.
func (s *CHReportStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHReportStore) Save(ctx context.Context, env *models.ReportEnvelope, createdAt time.Time) error {
	row, err := reportRow(env, createdAt)
	if err != nil {
		return err
	}
	q := fmt.Sprintf(`INSERT INTO %s (id, request_id, ticker, created_at, period_start, period_end,
        latest_signal, risk_level, attention, report) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table)
	if _, err := s.db.ExecContext(ctx, q, row...); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse save_report error",
				applogger.String("table", s.table),
				applogger.String("ticker", env.Ticker),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

func (s *CHReportStore) ListByTicker(ctx context.Context, ticker string, limit int) ([]models.StoredReport, error) {
	start := time.Now()
	q := fmt.Sprintf(`
        SELECT id, request_id, ticker, created_at, report
        FROM %s
        WHERE ticker = ?
        ORDER BY created_at DESC
        LIMIT ?
    `, s.table)
	rows, err := s.db.QueryContext(ctx, q, ticker, limit)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse list_reports query error",
				applogger.String("ticker", ticker),
				applogger.Int("limit", limit),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	out := make([]models.StoredReport, 0, limit)
	for rows.Next() {
		var (
			r   models.StoredReport
			raw string
		)
		if err := rows.Scan(&r.ID, &r.RequestID, &r.Ticker, &r.CreatedAt, &raw); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		r.Report = &models.AnalysisReport{}
		if err := json.Unmarshal([]byte(raw), r.Report); err != nil {
			return nil, fmt.Errorf("decode report %s: %w", r.ID, err)
		}
		r.RiskLevel = r.Report.AttentionFlags.RiskLevel
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Debug("clickhouse list_reports ok",
			applogger.String("ticker", ticker),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

// reportRow flattens env into the column order of the reports table.
func reportRow(env *models.ReportEnvelope, createdAt time.Time) ([]interface{}, error) {
	if env == nil || env.Report == nil {
		return nil, fmt.Errorf("save report: empty envelope")
	}
	r := env.Report
	body, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	var latest int8
	if r.Signals.LatestSignal != nil {
		latest = int8(*r.Signals.LatestSignal)
	}
	var attention uint8
	if r.AttentionFlags.RequiresAttention {
		attention = 1
	}
	return []interface{}{
		env.ID,
		env.RequestID,
		env.Ticker,
		createdAt.UTC(),
		parseDay(r.Metadata.DataPeriod.Start),
		parseDay(r.Metadata.DataPeriod.End),
		latest,
		r.AttentionFlags.RiskLevel.String(),
		attention,
		string(body),
	}, nil
}

func parseDay(s string) time.Time {
	t, _ := time.Parse(models.DateLayout, s)
	return t
}

var _ domrepo.ReportStore = (*CHReportStore)(nil)
