package repository

import "fmt"

const (
	barsTable    = "daily_bars"
	reportsTable = "analysis_reports"
)

// Schema returns the DDL for database, in execution order.
func Schema(database string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
    ticker      LowCardinality(String),
    date        Date,
    open        Float64,
    high        Float64,
    low         Float64,
    close       Float64,
    volume      Float64,
    source      LowCardinality(String),
    inserted_at DateTime DEFAULT now()
) ENGINE = ReplacingMergeTree(inserted_at)
ORDER BY (ticker, date)`, database, barsTable),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
    id             String,
    request_id     String,
    ticker         LowCardinality(String),
    created_at     DateTime64(3),
    period_start   Date,
    period_end     Date,
    latest_signal  Int8,
    risk_level     LowCardinality(String),
    attention      UInt8,
    report         String
) ENGINE = MergeTree
PARTITION BY toYYYYMM(created_at)
ORDER BY (ticker, created_at)
TTL toDateTime(created_at) + INTERVAL 365 DAY`, database, reportsTable),
	}
}

func qualified(database, table string) string {
	if database == "" {
		return table
	}
	return database + "." + table
}
