package calendar

import (
	"context"
	"fmt"
	"time"

	"earnings-scanner/internal/api"
	"earnings-scanner/internal/types"
)

// NasdaqSource queries the public Nasdaq earnings calendar API. It is
// the primary live source: one GET per scanned date.
type NasdaqSource struct {
	client *api.Client
}

// NewNasdaqSource creates the source. Extra options are applied after
// the defaults, so tests can point the client at a local server.
func NewNasdaqSource(opts ...api.ClientOption) *NasdaqSource {
	base := []api.ClientOption{
		api.WithBaseURL("https://api.nasdaq.com"),
		api.WithHeaders(api.NasdaqHeaders()),
		api.WithTimeout(30 * time.Second),
		api.WithLogging(true),
	}
	return &NasdaqSource{
		client: api.NewClient(append(base, opts...)...),
	}
}

func (n *NasdaqSource) Name() string { return "nasdaq" }

type nasdaqCalendarResponse struct {
	Data struct {
		Rows []struct {
			Symbol string `json:"symbol"`
			Name   string `json:"name"`
			Time   string `json:"time"`
		} `json:"rows"`
	} `json:"data"`
	Status struct {
		RCode int `json:"rCode"`
	} `json:"status"`
}

// EarningsByDate fetches the calendar rows for one date. Rows are
// returned in source order and are not de-duplicated.
func (n *NasdaqSource) EarningsByDate(ctx context.Context, date time.Time) ([]types.EarningsEntry, error) {
	path := fmt.Sprintf("/api/calendar/earnings?date=%s", date.Format(inputFormat))

	resp, err := n.client.GETWithRetry(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("nasdaq calendar request failed: %w", err)
	}

	var payload nasdaqCalendarResponse
	if err := resp.ParseJSON(&payload); err != nil {
		return nil, fmt.Errorf("nasdaq calendar response malformed: %w", err)
	}

	entries := make([]types.EarningsEntry, 0, len(payload.Data.Rows))
	for _, row := range payload.Data.Rows {
		if row.Symbol == "" {
			continue
		}
		entries = append(entries, types.EarningsEntry{
			Symbol: row.Symbol,
			Time:   normalizeNasdaqTime(row.Time),
		})
	}
	return entries, nil
}

// normalizeNasdaqTime maps Nasdaq's timing labels onto the internal
// vocabulary. Unknown labels pass through untouched.
func normalizeNasdaqTime(t string) string {
	switch t {
	case "time-pre-market":
		return types.TimeBeforeMarket
	case "time-after-hours":
		return types.TimeAfterMarket
	case "", "time-not-supplied":
		return types.TimeNotSupplied
	default:
		return t
	}
}
