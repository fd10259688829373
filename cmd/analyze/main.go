// Command analyze runs one equity analysis and writes the report to disk.
//
//	analyze -ticker SHOP.TO -start 2023-01-01
//	analyze -ticker RY.TO -start 2023-01-01 -end 2023-12-31 -format xlsx -chart
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"EquityPulse/internal/di"
	"EquityPulse/internal/domain/models"
	"EquityPulse/internal/export"
	"EquityPulse/internal/usecase"
	"EquityPulse/pkg/config"
	applogger "EquityPulse/pkg/logger"
	"EquityPulse/pkg/util"
)

type options struct {
	ticker    string
	start     string
	end       string
	benchmark string
	config    string
	out       string
	format    string
	chart     bool
	noCache   bool
	verbose   bool
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.StringVar(&o.ticker, "ticker", "", "ticker symbol, e.g. SHOP.TO (required)")
	fs.StringVar(&o.start, "start", "", "start date YYYY-MM-DD (required)")
	fs.StringVar(&o.end, "end", "", "end date YYYY-MM-DD, defaults to today")
	fs.StringVar(&o.benchmark, "benchmark", "", "benchmark symbol for relative performance, e.g. ^GSPTSE")
	fs.StringVar(&o.config, "config", "", "config file path")
	fs.StringVar(&o.out, "out", "", "output directory (overrides export.dir)")
	fs.StringVar(&o.format, "format", "json", "output format: json, text or xlsx")
	fs.BoolVar(&o.chart, "chart", false, "also write a PNG chart of close and Bollinger bands")
	fs.BoolVar(&o.noCache, "no-cache", false, "bypass the series cache")
	fs.BoolVar(&o.verbose, "v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return o, err
	}

	if o.ticker == "" || o.start == "" {
		return o, errors.New("-ticker and -start are required")
	}
	for _, d := range []string{o.start, o.end} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(models.DateLayout, d); err != nil {
			return o, fmt.Errorf("invalid date %q, use YYYY-MM-DD", d)
		}
	}
	if _, err := export.ParseFormat(o.format); err != nil {
		return o, err
	}
	return o, nil
}

func main() {
	o, err := parseFlags(os.Args[1:])
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(2)
	}

	cfg, err := config.LoadWithEnv(o.config)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}
	if o.out != "" {
		cfg.Export.Dir = o.out
	}
	if o.verbose {
		cfg.Logging.Level = "debug"
	}

	a, cleanup, err := di.InitializeAnalyzer(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, a, cfg, o, os.Stdout)
	stop()
	cleanup()
	if err != nil {
		a.Logger.Error("analysis failed", applogger.String("ticker", o.ticker), applogger.Error(err))
		if usecase.IsClientError(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, a *di.Analyzer, cfg *config.Config, o options, stdout io.Writer) error {
	format, _ := export.ParseFormat(o.format)

	env, err := a.Service.Analyze(ctx, usecase.AnalyzeParams{
		Ticker:    o.ticker,
		Start:     o.start,
		End:       o.end,
		Benchmark: o.benchmark,
		NoCache:   o.noCache,
	})
	if err != nil {
		return err
	}

	paths, err := a.Exporter.Save(env, format)
	if err != nil {
		return err
	}
	if o.chart {
		from, to, err := util.DateRange(o.start, o.end, time.Now(), cfg.Provider.LookbackDays)
		if err != nil {
			return err
		}
		series, err := a.Provider.Fetch(ctx, env.Ticker, from, to)
		if err != nil {
			return fmt.Errorf("chart data: %w", err)
		}
		series.Ticker = env.Ticker
		p, err := a.Exporter.SaveChart(series)
		if err != nil {
			return err
		}
		paths = append(paths, p)
	}

	rule := strings.Repeat("=", 60)
	fmt.Fprintf(stdout, "\n%s\nEQUITY ANALYSIS COMPLETE - %s\n%s\n", rule, env.Ticker, rule)
	if err := export.WriteSummary(stdout, env.Report); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "\nResults saved to:")
	for _, p := range paths {
		fmt.Fprintf(stdout, "  %s\n", p)
	}
	fmt.Fprintln(stdout, rule)
	return nil
}
