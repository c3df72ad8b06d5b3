package scorer

import (
	"context"
	"fmt"
	"math"
	"time"

	"earnings-scanner/internal/api"
	"earnings-scanner/internal/types"
)

// Config holds the signal thresholds the scorer evaluates against.
type Config struct {
	// MinAvgVolume is the minimum acceptable 30-day average share
	// volume.
	MinAvgVolume float64
	// MinIVRVRatio is the minimum implied-to-realized volatility
	// ratio.
	MinIVRVRatio float64
	// MaxTermSlope is the maximum acceptable 0-45 day term-structure
	// slope (negative: the front of the curve must be elevated).
	MaxTermSlope float64
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		MinAvgVolume: 1500000,
		MinIVRVRatio: 1.25,
		MaxTermSlope: -0.00406,
	}
}

// YahooScorer computes the volatility and liquidity signals for a
// symbol from Yahoo Finance chart and option-chain data.
type YahooScorer struct {
	client *api.Client
	cfg    Config
}

// NewYahooScorer creates the live scorer. Extra client options are
// applied after the defaults, so tests can point at a local server.
func NewYahooScorer(cfg Config, opts ...api.ClientOption) *YahooScorer {
	base := []api.ClientOption{
		api.WithBaseURL("https://query2.finance.yahoo.com"),
		api.WithHeaders(api.YahooFinanceHeaders()),
		api.WithTimeout(30 * time.Second),
		api.WithLogging(true),
	}
	return &YahooScorer{
		client: api.NewClient(append(base, opts...)...),
		cfg:    cfg,
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Indicators struct {
				Quote []struct {
					Close  []float64 `json:"close"`
					Volume []float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
	} `json:"chart"`
}

type optionsResponse struct {
	OptionChain struct {
		Result []struct {
			ExpirationDates []int64 `json:"expirationDates"`
			Quote           struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"quote"`
			Options []struct {
				Calls []optionQuote `json:"calls"`
				Puts  []optionQuote `json:"puts"`
			} `json:"options"`
		} `json:"result"`
	} `json:"optionChain"`
}

type optionQuote struct {
	Strike            float64 `json:"strike"`
	LastPrice         float64 `json:"lastPrice"`
	ImpliedVolatility float64 `json:"impliedVolatility"`
}

// ComputeRecommendation evaluates one symbol: 30-day average volume
// from daily candles, realized vs implied 30-day volatility, the
// 0-45 day term-structure slope, and the ATM straddle expected move.
func (y *YahooScorer) ComputeRecommendation(ctx context.Context, symbol string) (*types.ScoreSignals, error) {
	avgVolume, rv30, spot, err := y.fetchHistory(ctx, symbol)
	if err != nil {
		return nil, err
	}

	iv30, slope, expectedMove, err := y.fetchTermStructure(ctx, symbol, spot)
	if err != nil {
		return nil, err
	}
	if rv30 <= 0 {
		return nil, fmt.Errorf("%s: realized volatility unavailable", symbol)
	}

	return &types.ScoreSignals{
		AvgVolume:    avgVolume >= y.cfg.MinAvgVolume,
		IV30RV30:     iv30/rv30 >= y.cfg.MinIVRVRatio,
		TSSlope045:   slope <= y.cfg.MaxTermSlope,
		ExpectedMove: expectedMove,
	}, nil
}

// fetchHistory returns the 30-day average volume, the annualized
// 30-day close-to-close realized volatility, and the latest price.
func (y *YahooScorer) fetchHistory(ctx context.Context, symbol string) (avgVolume, rv30, spot float64, err error) {
	path := fmt.Sprintf("/v8/finance/chart/%s?range=3mo&interval=1d", symbol)
	resp, err := y.client.GET(ctx, path)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%s: chart request failed: %w", symbol, err)
	}

	var payload chartResponse
	if err := resp.ParseJSON(&payload); err != nil {
		return 0, 0, 0, fmt.Errorf("%s: chart response malformed: %w", symbol, err)
	}
	if len(payload.Chart.Result) == 0 || len(payload.Chart.Result[0].Indicators.Quote) == 0 {
		return 0, 0, 0, fmt.Errorf("%s: no price history", symbol)
	}

	result := payload.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	closes := dropZeros(quote.Close)
	volumes := dropZeros(quote.Volume)
	if len(closes) < 31 {
		return 0, 0, 0, fmt.Errorf("%s: insufficient price history (%d days)", symbol, len(closes))
	}

	avgVolume = mean(tail(volumes, 30))
	rv30 = realizedVolatility(tail(closes, 31))
	spot = result.Meta.RegularMarketPrice
	if spot == 0 {
		spot = closes[len(closes)-1]
	}
	return avgVolume, rv30, spot, nil
}

// fetchTermStructure returns the interpolated 30-day implied vol, the
// slope of the IV curve between the nearest expiry and the first
// expiry at or beyond 45 days, and the ATM straddle expected move.
func (y *YahooScorer) fetchTermStructure(ctx context.Context, symbol string, spot float64) (iv30, slope float64, expectedMove string, err error) {
	path := fmt.Sprintf("/v7/finance/options/%s", symbol)
	resp, err := y.client.GET(ctx, path)
	if err != nil {
		return 0, 0, "", fmt.Errorf("%s: options request failed: %w", symbol, err)
	}

	var root optionsResponse
	if err := resp.ParseJSON(&root); err != nil {
		return 0, 0, "", fmt.Errorf("%s: options response malformed: %w", symbol, err)
	}
	if len(root.OptionChain.Result) == 0 {
		return 0, 0, "", fmt.Errorf("%s: no option chain", symbol)
	}

	result := root.OptionChain.Result[0]
	expirations := result.ExpirationDates
	if len(expirations) < 2 {
		return 0, 0, "", fmt.Errorf("%s: not enough option expirations (%d)", symbol, len(expirations))
	}
	if spot == 0 {
		spot = result.Quote.RegularMarketPrice
	}
	if spot <= 0 {
		return 0, 0, "", fmt.Errorf("%s: no underlying price", symbol)
	}

	now := time.Now()
	nearExp := expirations[0]
	farExp := expirations[len(expirations)-1]
	for _, exp := range expirations {
		if daysUntil(now, exp) >= 45 {
			farExp = exp
			break
		}
	}
	dteNear := daysUntil(now, nearExp)
	dteFar := daysUntil(now, farExp)
	if dteFar <= dteNear {
		return 0, 0, "", fmt.Errorf("%s: degenerate option term structure", symbol)
	}

	ivNear, straddle, err := y.fetchExpiryIV(ctx, symbol, nearExp, spot)
	if err != nil {
		return 0, 0, "", err
	}
	ivFar, _, err := y.fetchExpiryIV(ctx, symbol, farExp, spot)
	if err != nil {
		return 0, 0, "", err
	}

	slope = (ivFar - ivNear) / (dteFar - dteNear)
	iv30 = interpolate(dteNear, ivNear, dteFar, ivFar, 30)
	expectedMove = fmt.Sprintf("±%.2f%%", straddle/spot*100)
	return iv30, slope, expectedMove, nil
}

// fetchExpiryIV returns the ATM implied volatility for one expiry and
// the price of the ATM straddle.
func (y *YahooScorer) fetchExpiryIV(ctx context.Context, symbol string, expiration int64, spot float64) (atmIV, straddle float64, err error) {
	path := fmt.Sprintf("/v7/finance/options/%s?date=%d", symbol, expiration)
	resp, err := y.client.GET(ctx, path)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: options request for expiry %d failed: %w", symbol, expiration, err)
	}

	var root optionsResponse
	if err := resp.ParseJSON(&root); err != nil {
		return 0, 0, fmt.Errorf("%s: options response malformed: %w", symbol, err)
	}
	if len(root.OptionChain.Result) == 0 || len(root.OptionChain.Result[0].Options) == 0 {
		return 0, 0, fmt.Errorf("%s: empty option chain for expiry %d", symbol, expiration)
	}

	chain := root.OptionChain.Result[0].Options[0]
	call, okCall := nearestStrike(chain.Calls, spot)
	put, okPut := nearestStrike(chain.Puts, spot)
	if !okCall || !okPut {
		return 0, 0, fmt.Errorf("%s: no ATM contracts for expiry %d", symbol, expiration)
	}

	atmIV = (call.ImpliedVolatility + put.ImpliedVolatility) / 2
	straddle = call.LastPrice + put.LastPrice
	return atmIV, straddle, nil
}

func nearestStrike(quotes []optionQuote, spot float64) (optionQuote, bool) {
	var best optionQuote
	found := false
	for _, q := range quotes {
		if !found || math.Abs(q.Strike-spot) < math.Abs(best.Strike-spot) {
			best = q
			found = true
		}
	}
	return best, found
}

func daysUntil(now time.Time, unix int64) float64 {
	return time.Unix(unix, 0).Sub(now).Hours() / 24
}

// interpolate linearly evaluates the line through (x1,y1) and (x2,y2)
// at x, clamped to the endpoints.
func interpolate(x1, y1, x2, y2, x float64) float64 {
	if x <= x1 {
		return y1
	}
	if x >= x2 {
		return y2
	}
	return y1 + (y2-y1)*(x-x1)/(x2-x1)
}

// realizedVolatility annualizes the standard deviation of daily log
// returns over the given closes.
func realizedVolatility(closes []float64) float64 {
	if len(closes) < 2 {
		return 0
	}
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] <= 0 || closes[i] <= 0 {
			continue
		}
		returns = append(returns, math.Log(closes[i]/closes[i-1]))
	}
	if len(returns) < 2 {
		return 0
	}

	m := mean(returns)
	var sum float64
	for _, r := range returns {
		sum += (r - m) * (r - m)
	}
	return math.Sqrt(sum/float64(len(returns)-1)) * math.Sqrt(252)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// dropZeros removes nulls (decoded as zero) from a candle series.
func dropZeros(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v > 0 {
			out = append(out, v)
		}
	}
	return out
}

func tail(values []float64, n int) []float64 {
	if len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}
