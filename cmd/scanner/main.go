package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"earnings-scanner/internal/logger"
	"earnings-scanner/internal/store"
	"earnings-scanner/internal/trace"
)

func main() {
	dateFlag := flag.String("date", "", "Date in YYYY-MM-DD format (default: today)")
	configFlag := flag.String("config", "config.yaml", "Path to config file")
	flag.Parse()

	// A bare positional date works too: `scanner 2025-07-24`.
	dateStr := *dateFlag
	if dateStr == "" && flag.NArg() > 0 {
		dateStr = flag.Arg(0)
	}

	if err := initializeSystem(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	defer func() { _ = trace.Shutdown(ctx) }()

	cfg, err := store.LoadConfig(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	p := newPipeline(cfg, os.Stdout)
	if err := p.run(ctx, dateStr); err != nil {
		logger.ErrorWithErr(ctx, "Scan aborted", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
