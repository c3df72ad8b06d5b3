package calendar

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"earnings-scanner/internal/logger"
	"earnings-scanner/internal/types"
)

// YahooScrapeSource scrapes the Yahoo Finance earnings calendar page.
// It is the fallback when the Nasdaq API yields nothing.
type YahooScrapeSource struct {
	baseURL string
	timeout time.Duration
	domains []string
}

// NewYahooScrapeSource creates the fallback scraper.
func NewYahooScrapeSource(timeout time.Duration) *YahooScrapeSource {
	return &YahooScrapeSource{
		baseURL: "https://finance.yahoo.com",
		timeout: timeout,
		domains: []string{"finance.yahoo.com"},
	}
}

func (y *YahooScrapeSource) Name() string { return "yahoo-scrape" }

// EarningsByDate scrapes the calendar table for one date.
func (y *YahooScrapeSource) EarningsByDate(ctx context.Context, date time.Time) ([]types.EarningsEntry, error) {
	c := colly.NewCollector(
		colly.AllowedDomains(y.domains...),
		colly.MaxDepth(1),
		colly.Async(false),
	)
	c.SetRequestTimeout(y.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	})

	var entries []types.EarningsEntry

	c.OnHTML("table tbody tr", func(e *colly.HTMLElement) {
		entry, ok := parseCalendarRow(e.DOM)
		if !ok {
			return
		}
		entries = append(entries, entry)
	})

	var scrapeErr error
	c.OnError(func(r *colly.Response, err error) {
		scrapeErr = err
		logger.ErrorWithErr(ctx, "Calendar scrape error", err, "url", r.Request.URL.String())
	})

	pageURL := fmt.Sprintf("%s/calendar/earnings?day=%s", y.baseURL, date.Format(inputFormat))
	if err := c.Visit(pageURL); err != nil {
		return nil, fmt.Errorf("failed to visit %s: %w", pageURL, err)
	}
	c.Wait()

	if scrapeErr != nil && len(entries) == 0 {
		return nil, fmt.Errorf("calendar scrape failed: %w", scrapeErr)
	}
	return entries, nil
}

// parseCalendarRow extracts one earnings entry from a calendar table
// row. The symbol sits in the first cell (usually as a link); the call
// time is whichever cell carries a known timing label.
func parseCalendarRow(row *goquery.Selection) (types.EarningsEntry, bool) {
	cells := row.Find("td")
	if cells.Length() == 0 {
		return types.EarningsEntry{}, false
	}

	first := cells.First()
	symbol := strings.TrimSpace(first.Find("a").First().Text())
	if symbol == "" {
		symbol = strings.TrimSpace(first.Text())
	}
	if symbol == "" {
		return types.EarningsEntry{}, false
	}

	callTime := types.TimeNotSupplied
	cells.EachWithBreak(func(_ int, td *goquery.Selection) bool {
		if t, ok := normalizeYahooTime(strings.TrimSpace(td.Text())); ok {
			callTime = t
			return false
		}
		return true
	})

	return types.EarningsEntry{Symbol: symbol, Time: callTime}, true
}

// normalizeYahooTime maps Yahoo's timing labels onto the internal
// vocabulary. The second return is false for cells that are not a
// timing label at all.
func normalizeYahooTime(text string) (string, bool) {
	switch text {
	case "Before Market Open", "BMO":
		return types.TimeBeforeMarket, true
	case "After Market Close", "AMC":
		return types.TimeAfterMarket, true
	case "Time Not Supplied", "TNS":
		return types.TimeNotSupplied, true
	default:
		return "", false
	}
}
