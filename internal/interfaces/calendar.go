package interfaces

import (
	"context"
	"time"

	"earnings-scanner/internal/types"
)

// CalendarSource fetches raw earnings rows for one calendar date.
// Sources are treated as unreliable: both empty results and errors are
// expected and handled by the resolver.
type CalendarSource interface {
	// Name identifies the source in logs and diagnostics.
	Name() string

	// EarningsByDate returns every earnings entry the source knows
	// for the given date (00:00:00 to 23:59:59 local).
	EarningsByDate(ctx context.Context, date time.Time) ([]types.EarningsEntry, error)
}
