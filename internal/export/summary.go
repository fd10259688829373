package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"EquityPulse/internal/catalog"
	"EquityPulse/internal/domain/models"
	"EquityPulse/internal/services/indicators"
)

// WriteSummary writes the human readable report summary.
func WriteSummary(w io.Writer, r *models.AnalysisReport) error {
	bw := bufio.NewWriter(w)
	m := r.Metadata

	fmt.Fprintf(bw, "EQUITY ANALYSIS SUMMARY - %s\n", m.Ticker)
	fmt.Fprintf(bw, "%s\n\n", strings.Repeat("=", 50))
	fmt.Fprintf(bw, "Analysis Date: %s\n", m.AnalysisDate.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(bw, "Ticker: %s\n", m.Ticker)
	if t, ok := catalog.Lookup(m.Ticker); ok {
		fmt.Fprintf(bw, "Company: %s\n", t.Name)
	}
	fmt.Fprintf(bw, "Sector: %s\n", m.Sector)
	fmt.Fprintf(bw, "Data Period: %s to %s\n", m.DataPeriod.Start, m.DataPeriod.End)
	fmt.Fprintf(bw, "Total Days: %d\n\n", m.DataPeriod.TotalDays)

	section(bw, "SIGNALS")
	fmt.Fprintf(bw, "Latest Signal: %s\n", signalLabel(r.Signals.LatestSignal))
	fmt.Fprintf(bw, "Directional Accuracy: %s\n\n", num(r.Signals.DirectionalAccuracy, "%.2f%%"))

	section(bw, "TECHNICAL INDICATORS")
	ti := r.Signals.TechnicalIndicators
	fmt.Fprintf(bw, "RSI: %s\n", num(ti[indicators.NameRSI], "%.2f"))
	fmt.Fprintf(bw, "MACD: %s\n", num(ti[indicators.NameMACD], "%.4f"))
	fmt.Fprintf(bw, "Bollinger Position: %s\n\n", num(ti[indicators.NameBBPosition], "%.2f"))

	section(bw, "VOLATILITY REGIME")
	regime := "N/A"
	if d := r.VolatilityRegime.RegimeDescription; d != nil {
		regime = strings.ToUpper(*d)
	}
	fmt.Fprintf(bw, "Current Regime: %s\n", regime)
	fmt.Fprintf(bw, "Volatility Cluster: %s\n\n", yesNo(r.VolatilityRegime.VolatilityCluster))

	section(bw, "RISK")
	mm := r.MarketMetrics
	fmt.Fprintf(bw, "Current Price: %.2f\n", mm.CurrentPrice)
	fmt.Fprintf(bw, "Value at Risk: %s\n", num(mm.ValueAtRisk, "%.2f%%"))
	fmt.Fprintf(bw, "Expected Shortfall: %s\n", num(mm.ExpectedShortfall, "%.2f%%"))
	fmt.Fprintf(bw, "Sharpe Ratio: %s\n", num(mm.SharpeRatio, "%.2f"))
	fmt.Fprintf(bw, "Max Drawdown: %s\n", num(mm.MaxDrawdown, "%.2f%%"))
	fmt.Fprintf(bw, "Liquidity Score: %s\n\n", num(mm.LiquidityScore, "%.1f"))

	if rp := r.RelativePerformance; rp != nil {
		section(bw, "RELATIVE PERFORMANCE")
		fmt.Fprintf(bw, "Benchmark: %s (%d common days)\n", rp.Benchmark, rp.CommonDays)
		fmt.Fprintf(bw, "Beta: %s\n", num(rp.Beta, "%.2f"))
		fmt.Fprintf(bw, "Correlation: %s\n", num(rp.Correlation, "%.2f"))
		fmt.Fprintf(bw, "Excess Return: %s\n\n", num(rp.ExcessReturnPct, "%.2f%%"))
	}

	section(bw, "ATTENTION FLAGS")
	f := r.AttentionFlags
	fmt.Fprintf(bw, "Requires Attention: %s\n", yesNo(f.RequiresAttention))
	fmt.Fprintf(bw, "Risk Level: %s\n", strings.ToUpper(f.RiskLevel.String()))
	if len(f.TriggeredReasons) > 0 {
		fmt.Fprintln(bw, "Reasons:")
		for _, reason := range f.TriggeredReasons {
			fmt.Fprintf(bw, "  - %s\n", reason)
		}
	}
	return bw.Flush()
}

func section(w io.Writer, title string) {
	fmt.Fprintf(w, "%s\n%s\n", title, strings.Repeat("-", len(title)+5))
}

func signalLabel(s *models.Signal) string {
	if s == nil {
		return "N/A"
	}
	switch *s {
	case models.Buy:
		return "BUY"
	case models.Sell:
		return "SELL"
	default:
		return "HOLD"
	}
}

func num(p *float64, format string) string {
	if p == nil {
		return "N/A"
	}
	return fmt.Sprintf(format, *p)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
