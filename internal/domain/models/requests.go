package models

import "time"

// Requests accepted by the HTTP API.

type AnalyzeRequest struct {
	Ticker    string `query:"ticker" json:"ticker" validate:"required,max=16"`
	Start     string `query:"start" json:"start" validate:"required,datetime=2006-01-02"`
	End       string `query:"end" json:"end" validate:"omitempty,datetime=2006-01-02"`
	Benchmark string `query:"benchmark" json:"benchmark" validate:"omitempty,max=16"`
	NoCache   bool   `query:"no_cache" json:"no_cache"`

	Overrides
}

// Overrides carries per-request engine configuration changes. Zero keeps the
// configured value, except for RiskFreeRate where only nil does.
type Overrides struct {
	RSIPeriod       int      `query:"rsi_period" json:"rsi_period,omitempty" validate:"omitempty,gte=2,lte=200"`
	MAShort         int      `query:"ma_short" json:"ma_short,omitempty" validate:"omitempty,gte=1,lte=400"`
	MALong          int      `query:"ma_long" json:"ma_long,omitempty" validate:"omitempty,gte=2,lte=400"`
	BacktestHorizon int      `query:"horizon" json:"horizon,omitempty" validate:"omitempty,gte=1,lte=60"`
	VaRConfidence   float64  `query:"var_confidence" json:"var_confidence,omitempty" validate:"omitempty,gt=0.5,lt=1"`
	VaRWindow       int      `query:"var_window" json:"var_window,omitempty" validate:"omitempty,gte=2,lte=5000"`
	RiskFreeRate    *float64 `query:"risk_free_rate" json:"risk_free_rate,omitempty" validate:"omitempty,gte=0,lt=1"`
	LowVolBand      float64  `query:"low_vol_band" json:"low_vol_band,omitempty" validate:"omitempty,gt=0"`
	HighVolBand     float64  `query:"high_vol_band" json:"high_vol_band,omitempty" validate:"omitempty,gt=0"`
}

type BatchAnalyzeRequest struct {
	Tickers   []string `json:"tickers" validate:"required,min=1,max=50,dive,required,max=16"`
	Start     string   `json:"start" validate:"required,datetime=2006-01-02"`
	End       string   `json:"end" validate:"omitempty,datetime=2006-01-02"`
	Benchmark string   `json:"benchmark" validate:"omitempty,max=16"`
}

type ReportsRequest struct {
	Ticker string `param:"ticker" validate:"required,max=16"`
	Limit  int    `query:"limit" default:"20" validate:"gte=1,lte=500"`
}

// AnalysisRequestMessage is the payload consumed from the analysis request topic.
type AnalysisRequestMessage struct {
	RequestID string `json:"request_id"`
	Ticker    string `json:"ticker" validate:"required,max=16"`
	Start     string `json:"start" validate:"required,datetime=2006-01-02"`
	End       string `json:"end" validate:"omitempty,datetime=2006-01-02"`
	Benchmark string `json:"benchmark,omitempty"`
}

// ReportEnvelope wraps a report on the wire (Kafka, websocket).
type ReportEnvelope struct {
	ID        string          `json:"id"`
	RequestID string          `json:"request_id,omitempty"`
	Ticker    string          `json:"ticker"`
	Report    *AnalysisReport `json:"report"`
}

// StoredReport is an archived report as returned by the report store.
type StoredReport struct {
	ID        string          `json:"id"`
	RequestID string          `json:"request_id,omitempty"`
	Ticker    string          `json:"ticker"`
	CreatedAt time.Time       `json:"created_at"`
	RiskLevel Severity        `json:"risk_level"`
	Report    *AnalysisReport `json:"report"`
}

// BatchItem is the outcome for one ticker of a batch analysis.
type BatchItem struct {
	Ticker string          `json:"ticker"`
	Result *ReportEnvelope `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}
