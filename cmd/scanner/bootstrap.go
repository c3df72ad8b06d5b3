package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"earnings-scanner/internal/analyzer"
	"earnings-scanner/internal/calendar"
	"earnings-scanner/internal/filter"
	"earnings-scanner/internal/interfaces"
	"earnings-scanner/internal/logger"
	"earnings-scanner/internal/report"
	"earnings-scanner/internal/scorer"
	"earnings-scanner/internal/scorer/scorerobs"
	"earnings-scanner/internal/store"
	"earnings-scanner/internal/trace"
)

// initializeSystem initializes environment, logger, and tracer
func initializeSystem() error {
	// Load environment variables
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		return fmt.Errorf("failed to initialize tracer: %w", err)
	}

	return nil
}

// pipeline wires the scan stages in sequence: resolve -> filter ->
// analyze -> report. Data flows strictly one direction.
type pipeline struct {
	resolver *calendar.Resolver
	rules    filter.Rules
	analyzer *analyzer.Analyzer
	out      io.Writer
}

func newPipeline(cfg *store.Config, out io.Writer) *pipeline {
	interval := time.Duration(cfg.Throttle.IntervalSeconds * float64(time.Second))
	limiter := rate.NewLimiter(rate.Every(interval), 1)

	a := analyzer.New(buildScorer(cfg),
		analyzer.WithLimiter(limiter),
		analyzer.WithProgress(terminalProgress(out)),
	)

	return &pipeline{
		resolver: calendar.NewResolver(out, buildCalendarSources(cfg)...),
		rules: filter.Rules{
			UseStaticList:  cfg.FilterEnabled(),
			StaticListPath: cfg.Filter.StaticListPath,
		},
		analyzer: a,
		out:      out,
	}
}

// buildCalendarSources selects the calendar sources from config, in
// fallback order.
func buildCalendarSources(cfg *store.Config) []interfaces.CalendarSource {
	if cfg.DataSource == "MOCK" {
		return []interfaces.CalendarSource{calendar.NewMockSource()}
	}

	timeout := time.Duration(cfg.Calendar.TimeoutSeconds) * time.Second
	sources := make([]interfaces.CalendarSource, 0, len(cfg.Calendar.Sources))
	for _, name := range cfg.Calendar.Sources {
		switch name {
		case "nasdaq":
			sources = append(sources, calendar.NewNasdaqSource())
		case "yahoo-scrape":
			sources = append(sources, calendar.NewYahooScrapeSource(timeout))
		}
	}
	return sources
}

// buildScorer selects the scorer from config and wraps it with
// observability middleware.
func buildScorer(cfg *store.Config) interfaces.Scorer {
	if cfg.DataSource == "MOCK" {
		return scorerobs.Wrap(scorer.NewMockScorer())
	}

	return scorerobs.Wrap(scorer.NewYahooScorer(scorer.Config{
		MinAvgVolume: cfg.Scorer.MinAvgVolume,
		MinIVRVRatio: cfg.Scorer.MinIVRVRatio,
		MaxTermSlope: cfg.Scorer.MaxTermSlope,
	}))
}

// terminalProgress writes the in-place per-symbol progress indicator.
func terminalProgress(out io.Writer) interfaces.ProgressFunc {
	return func(symbol string, done, total int) {
		fmt.Fprintf(out, "\rAnalyzing %s (%d/%d)...", symbol, done, total)
	}
}

// run executes one scan. Almost every failure degrades to fewer
// results plus an explanation; only a filter configuration failure
// (missing allow-list) aborts with an error.
func (p *pipeline) run(ctx context.Context, dateStr string) error {
	ctx, span := trace.StartSpan(ctx, "scanner.run")
	defer span.End()

	entries := p.resolver.Resolve(ctx, dateStr)
	if len(entries) == 0 {
		return nil
	}

	fmt.Fprintf(p.out, "\nFound %d stocks with earnings before filter\n", len(entries))

	filtered, err := filter.Apply(entries, p.rules)
	if err != nil {
		return err
	}
	fmt.Fprintf(p.out, "\nFound %d stocks with earnings\n", len(filtered))

	result := p.analyzer.Analyze(ctx, filtered)

	// Newline to terminate the in-place progress indicator.
	fmt.Fprintln(p.out)
	fmt.Fprint(p.out, report.Render(result))
	return nil
}
