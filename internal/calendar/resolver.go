package calendar

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"earnings-scanner/internal/interfaces"
	"earnings-scanner/internal/logger"
	"earnings-scanner/internal/trace"
	"earnings-scanner/internal/types"
)

const (
	inputFormat   = "2006-01-02"
	displayFormat = "Jan 02 2006"
)

// Resolver normalizes the requested date, queries the calendar sources
// in order, and maps raw rows into EarningsEntry records. All date
// parsing and "no data" policy lives here: downstream stages only ever
// see a (possibly empty) entry slice, never a transport error.
type Resolver struct {
	sources []interfaces.CalendarSource
	out     io.Writer
}

// NewResolver creates a resolver over the given sources, tried in
// order until one returns rows. out receives user-facing diagnostics
// and defaults to stdout.
func NewResolver(out io.Writer, sources ...interfaces.CalendarSource) *Resolver {
	if out == nil {
		out = os.Stdout
	}
	return &Resolver{
		sources: sources,
		out:     out,
	}
}

// Resolve returns the earnings entries for dateStr (YYYY-MM-DD), or
// for today when dateStr is empty. A malformed date, an empty
// calendar, and a failing source all degrade to an empty result with
// an explanation; the caller treats empty as "nothing to process".
func (r *Resolver) Resolve(ctx context.Context, dateStr string) []types.EarningsEntry {
	ctx, span := trace.StartSpan(ctx, "calendar.Resolve")
	defer span.End()

	var date time.Time
	if dateStr == "" {
		date = time.Now()
	} else {
		var err error
		date, err = time.ParseInLocation(inputFormat, dateStr, time.Local)
		if err != nil {
			fmt.Fprintln(r.out, "Error: Invalid date format. Please use YYYY-MM-DD (e.g., 2025-07-24)")
			return nil
		}
	}

	display := date.Format(displayFormat)
	fmt.Fprintf(r.out, "Fetching earnings for %s...\n", display)

	for _, src := range r.sources {
		entries, err := src.EarningsByDate(ctx, date)
		if err != nil {
			// Transport and parse failures stop at this boundary.
			logger.ErrorWithErr(ctx, "Calendar source failed", err, "source", src.Name(), "date", display)
			fmt.Fprintf(r.out, "\nError fetching earnings data from %s: %v\n", src.Name(), err)
			continue
		}
		if len(entries) == 0 {
			logger.Info(ctx, "Calendar source returned no rows", "source", src.Name(), "date", display)
			continue
		}

		for i := range entries {
			if entries[i].Time == "" {
				entries[i].Time = types.TimeNotSupplied
			}
		}

		logger.Info(ctx, "Earnings calendar resolved",
			"source", src.Name(), "date", display, "entries", len(entries))
		fmt.Fprintf(r.out, "Successfully found %d earnings reports for %s\n", len(entries), display)
		return entries
	}

	fmt.Fprintf(r.out, "\nNo earnings data found for %s\n", display)
	fmt.Fprintln(r.out, "This could be because:")
	fmt.Fprintln(r.out, "1. The market is closed on this date")
	fmt.Fprintln(r.out, "2. Earnings data isn't yet available")
	fmt.Fprintln(r.out, "3. The date is too far in future")
	return nil
}
