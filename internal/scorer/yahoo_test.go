package scorer

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"earnings-scanner/internal/api"
)

// chartJSON builds a 3-month candle payload: closes alternate between
// 100 and 100.5 so the realized volatility is small and predictable,
// and every volume bar is 2M shares.
func chartJSON(days int) string {
	closes := make([]string, days)
	volumes := make([]string, days)
	for i := range closes {
		if i%2 == 0 {
			closes[i] = "100"
		} else {
			closes[i] = "100.5"
		}
		volumes[i] = "2000000"
	}
	return fmt.Sprintf(`{
		"chart": {"result": [{
			"meta": {"regularMarketPrice": 100},
			"indicators": {"quote": [{
				"close": [%s],
				"volume": [%s]
			}]}
		}]}
	}`, strings.Join(closes, ","), strings.Join(volumes, ","))
}

func optionsRootJSON(near, far int64) string {
	return fmt.Sprintf(`{
		"optionChain": {"result": [{
			"expirationDates": [%d, %d],
			"quote": {"regularMarketPrice": 100},
			"options": []
		}]}
	}`, near, far)
}

func optionsExpiryJSON(iv, callLast, putLast float64) string {
	return fmt.Sprintf(`{
		"optionChain": {"result": [{
			"expirationDates": [],
			"quote": {"regularMarketPrice": 100},
			"options": [{
				"calls": [
					{"strike": 95, "lastPrice": 9.1, "impliedVolatility": 1.8},
					{"strike": 100, "lastPrice": %g, "impliedVolatility": %g},
					{"strike": 110, "lastPrice": 1.2, "impliedVolatility": 1.9}
				],
				"puts": [
					{"strike": 90, "lastPrice": 0.8, "impliedVolatility": 1.7},
					{"strike": 100, "lastPrice": %g, "impliedVolatility": %g}
				]
			}]
		}]}
	}`, callLast, iv, putLast, iv)
}

func TestYahooScorerComputesSignals(t *testing.T) {
	near := time.Now().Add(7 * 24 * time.Hour).Unix()
	far := time.Now().Add(60 * 24 * time.Hour).Unix()

	mux := http.NewServeMux()
	mux.HandleFunc("/v8/finance/chart/TST", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartJSON(40))
	})
	mux.HandleFunc("/v7/finance/options/TST", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("date") {
		case "":
			fmt.Fprint(w, optionsRootJSON(near, far))
		case fmt.Sprint(near):
			// Elevated front-month IV and a 5+4 ATM straddle.
			fmt.Fprint(w, optionsExpiryJSON(0.9, 5.0, 4.0))
		case fmt.Sprint(far):
			fmt.Fprint(w, optionsExpiryJSON(0.5, 7.0, 6.0))
		default:
			http.NotFound(w, r)
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	y := NewYahooScorer(DefaultConfig(), api.WithBaseURL(srv.URL))
	signals, err := y.ComputeRecommendation(context.Background(), "TST")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// 2M average volume clears the 1.5M floor; realized vol on the
	// alternating series is ~8% against an interpolated IV30 of ~73%;
	// the slope (0.5-0.9)/53 days is well below -0.00406.
	if !signals.AvgVolume {
		t.Error("Expected the volume signal to pass")
	}
	if !signals.IV30RV30 {
		t.Error("Expected the IV/RV signal to pass")
	}
	if !signals.TSSlope045 {
		t.Error("Expected the term-slope signal to pass")
	}
	if signals.ExpectedMove != "±9.00%" {
		t.Errorf("Expected move ±9.00%% from the 9.0 straddle on a 100 spot, got %s", signals.ExpectedMove)
	}
}

func TestYahooScorerFlatTermStructureFails(t *testing.T) {
	near := time.Now().Add(7 * 24 * time.Hour).Unix()
	far := time.Now().Add(60 * 24 * time.Hour).Unix()

	mux := http.NewServeMux()
	mux.HandleFunc("/v8/finance/chart/TST", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartJSON(40))
	})
	mux.HandleFunc("/v7/finance/options/TST", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("date") == "" {
			fmt.Fprint(w, optionsRootJSON(near, far))
			return
		}
		// Same IV at both expiries: slope 0 fails the threshold.
		fmt.Fprint(w, optionsExpiryJSON(0.6, 3.0, 3.0))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	y := NewYahooScorer(DefaultConfig(), api.WithBaseURL(srv.URL))
	signals, err := y.ComputeRecommendation(context.Background(), "TST")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if signals.TSSlope045 {
		t.Error("Expected a flat term structure to fail the slope signal")
	}
	if !signals.AvgVolume {
		t.Error("Expected the volume signal to still pass")
	}
}

func TestYahooScorerInsufficientHistory(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v8/finance/chart/TST", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartJSON(10))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	y := NewYahooScorer(DefaultConfig(), api.WithBaseURL(srv.URL))
	_, err := y.ComputeRecommendation(context.Background(), "TST")
	if err == nil {
		t.Fatal("Expected an error for a symbol with 10 days of history")
	}
	if !strings.Contains(err.Error(), "insufficient price history") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestYahooScorerSingleExpiryFails(t *testing.T) {
	near := time.Now().Add(7 * 24 * time.Hour).Unix()

	mux := http.NewServeMux()
	mux.HandleFunc("/v8/finance/chart/TST", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartJSON(40))
	})
	mux.HandleFunc("/v7/finance/options/TST", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"optionChain": {"result": [{
			"expirationDates": [%d],
			"quote": {"regularMarketPrice": 100},
			"options": []
		}]}}`, near)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	y := NewYahooScorer(DefaultConfig(), api.WithBaseURL(srv.URL))
	_, err := y.ComputeRecommendation(context.Background(), "TST")
	if err == nil {
		t.Fatal("Expected an error when only one expiry is listed")
	}
}

func TestInterpolateClamps(t *testing.T) {
	if got := interpolate(7, 0.9, 60, 0.5, 3); got != 0.9 {
		t.Errorf("Expected clamp to the near endpoint, got %v", got)
	}
	if got := interpolate(7, 0.9, 60, 0.5, 90); got != 0.5 {
		t.Errorf("Expected clamp to the far endpoint, got %v", got)
	}
	got := interpolate(0, 1, 10, 2, 5)
	if got < 1.499 || got > 1.501 {
		t.Errorf("Expected midpoint 1.5, got %v", got)
	}
}

func TestNearestStrikePicksATM(t *testing.T) {
	quotes := []optionQuote{
		{Strike: 90}, {Strike: 99}, {Strike: 101}, {Strike: 120},
	}
	best, ok := nearestStrike(quotes, 100)
	if !ok {
		t.Fatal("Expected a contract")
	}
	if best.Strike != 99 {
		t.Errorf("Expected the 99 strike, got %v", best.Strike)
	}
	if _, ok := nearestStrike(nil, 100); ok {
		t.Error("Expected no contract from an empty chain")
	}
}

func TestMockScorerDeterministic(t *testing.T) {
	m := NewMockScorer()

	first, err := m.ComputeRecommendation(context.Background(), "AAPL")
	if err != nil {
		t.Fatal(err)
	}
	second, err := m.ComputeRecommendation(context.Background(), "AAPL")
	if err != nil {
		t.Fatal(err)
	}
	if *first != *second {
		t.Errorf("Expected identical signals per symbol, got %+v vs %+v", first, second)
	}

	if !strings.HasPrefix(first.ExpectedMove, "±") || !strings.HasSuffix(first.ExpectedMove, "%") {
		t.Errorf("Expected a ±X.XX%% move, got %s", first.ExpectedMove)
	}
}
