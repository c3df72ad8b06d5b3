package calendar

import (
	"context"
	"math/rand"
	"time"

	"earnings-scanner/internal/types"
)

// MockSource provides deterministic calendar data for offline runs and
// testing. The same date always yields the same entries.
type MockSource struct{}

// NewMockSource creates a new mock calendar source.
func NewMockSource() *MockSource {
	return &MockSource{}
}

func (m *MockSource) Name() string { return "mock" }

var mockSymbols = []string{
	"AAPL", "MSFT", "NVDA", "AMZN", "GOOGL", "META", "TSLA", "AMD",
	"NFLX", "CRM", "ORCL", "INTC", "QCOM", "AVGO", "ADBE", "PYPL",
}

var mockTimes = []string{
	types.TimeBeforeMarket,
	types.TimeAfterMarket,
	types.TimeNotSupplied,
}

// EarningsByDate generates a deterministic subset of the symbol pool
// seeded by the date.
func (m *MockSource) EarningsByDate(_ context.Context, date time.Time) ([]types.EarningsEntry, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	r := rand.New(rand.NewSource(day.Unix()))

	count := 4 + r.Intn(5)
	perm := r.Perm(len(mockSymbols))

	entries := make([]types.EarningsEntry, 0, count)
	for _, idx := range perm[:count] {
		entries = append(entries, types.EarningsEntry{
			Symbol: mockSymbols[idx],
			Time:   mockTimes[r.Intn(len(mockTimes))],
		})
	}
	return entries, nil
}
