package analyzer

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"earnings-scanner/internal/types"
)

// fakeScorer returns canned signals or errors per symbol and records
// the order of calls.
type fakeScorer struct {
	signals map[string]*types.ScoreSignals
	errs    map[string]error
	calls   []string
}

func (f *fakeScorer) ComputeRecommendation(_ context.Context, symbol string) (*types.ScoreSignals, error) {
	f.calls = append(f.calls, symbol)
	if err, ok := f.errs[symbol]; ok {
		return nil, err
	}
	return f.signals[symbol], nil
}

func noDelay() Option {
	return WithLimiter(rate.NewLimiter(rate.Inf, 1))
}

func TestClassifyAllCombinations(t *testing.T) {
	cases := []struct {
		avgVolume, ivrv, slope bool
		want                   types.Recommendation
	}{
		{true, true, true, types.Recommended},
		{true, false, true, types.Consider},
		{false, true, true, types.Consider},
		{false, false, true, types.Avoid},
		{true, true, false, types.Avoid},
		{true, false, false, types.Avoid},
		{false, true, false, types.Avoid},
		{false, false, false, types.Avoid},
	}

	for _, tc := range cases {
		got := Classify(types.ScoreSignals{
			AvgVolume:  tc.avgVolume,
			IV30RV30:   tc.ivrv,
			TSSlope045: tc.slope,
		})
		if got != tc.want {
			t.Errorf("Classify(%v,%v,%v) = %s, want %s",
				tc.avgVolume, tc.ivrv, tc.slope, got, tc.want)
		}
	}
}

func TestAnalyzePartitionsEveryEntry(t *testing.T) {
	scorer := &fakeScorer{
		signals: map[string]*types.ScoreSignals{
			"AAA": {AvgVolume: true, IV30RV30: true, TSSlope045: true, ExpectedMove: "±4%"},
			"BBB": {AvgVolume: true, IV30RV30: false, TSSlope045: true, ExpectedMove: "±6%"},
			"CCC": {AvgVolume: false, IV30RV30: false, TSSlope045: false, ExpectedMove: "±2%"},
		},
		errs: map[string]error{
			"DDD": errors.New("no options data"),
		},
	}

	entries := []types.EarningsEntry{
		{Symbol: "AAA", Time: types.TimeBeforeMarket},
		{Symbol: "BBB", Time: types.TimeAfterMarket},
		{Symbol: "CCC", Time: types.TimeNotSupplied},
		{Symbol: "DDD", Time: types.TimeBeforeMarket},
	}

	a := New(scorer, noDelay())
	result := a.Analyze(context.Background(), entries)

	if result.Total() != len(entries) {
		t.Fatalf("Expected %d entries accounted for, got %d", len(entries), result.Total())
	}
	if len(result.Recommended) != 1 || result.Recommended[0].Symbol != "AAA" {
		t.Errorf("Expected AAA in recommended, got %v", result.Recommended)
	}
	if len(result.Consider) != 1 || result.Consider[0].Symbol != "BBB" {
		t.Errorf("Expected BBB in consider, got %v", result.Consider)
	}
	if len(result.Avoid) != 1 || result.Avoid[0].Symbol != "CCC" {
		t.Errorf("Expected CCC in avoid, got %v", result.Avoid)
	}
	if len(result.Errors) != 1 || result.Errors[0].Symbol != "DDD" {
		t.Errorf("Expected DDD in errors, got %v", result.Errors)
	}
	if result.Recommended[0].ExpectedMove != "±4%" {
		t.Errorf("Expected move ±4%%, got %s", result.Recommended[0].ExpectedMove)
	}
}

func TestAnalyzeIsolatesFailures(t *testing.T) {
	scorer := &fakeScorer{
		signals: map[string]*types.ScoreSignals{
			"AAA": {AvgVolume: true, IV30RV30: true, TSSlope045: true, ExpectedMove: "±4%"},
			"CCC": {AvgVolume: true, IV30RV30: true, TSSlope045: true, ExpectedMove: "±3%"},
		},
		errs: map[string]error{
			"BBB": errors.New("rate limited"),
		},
	}

	entries := []types.EarningsEntry{
		{Symbol: "AAA"}, {Symbol: "BBB"}, {Symbol: "CCC"},
	}

	a := New(scorer, noDelay())
	result := a.Analyze(context.Background(), entries)

	if len(scorer.calls) != 3 {
		t.Fatalf("Expected all 3 symbols scored despite failure, got %d calls", len(scorer.calls))
	}
	if len(result.Errors) != 1 {
		t.Fatalf("Expected exactly one error record, got %d", len(result.Errors))
	}
	if result.Errors[0].Symbol != "BBB" || result.Errors[0].Message != "rate limited" {
		t.Errorf("Unexpected error record: %+v", result.Errors[0])
	}
	if len(result.Recommended) != 2 {
		t.Errorf("Expected AAA and CCC classified, got %d", len(result.Recommended))
	}
}

func TestAnalyzeRecordsNilResult(t *testing.T) {
	scorer := &fakeScorer{
		signals: map[string]*types.ScoreSignals{"AAA": nil},
	}

	a := New(scorer, noDelay())
	result := a.Analyze(context.Background(), []types.EarningsEntry{{Symbol: "AAA"}})

	if len(result.Errors) != 1 {
		t.Fatalf("Expected a nil scorer result to be recorded as an error, got %+v", result)
	}
	if result.Errors[0].Message != "scorer returned no result" {
		t.Errorf("Unexpected message: %s", result.Errors[0].Message)
	}
	if result.Total() != 1 {
		t.Errorf("Expected 1 entry accounted for, got %d", result.Total())
	}
}

func TestAnalyzeReportsProgress(t *testing.T) {
	scorer := &fakeScorer{
		signals: map[string]*types.ScoreSignals{
			"AAA": {TSSlope045: true},
			"BBB": {},
		},
		errs: map[string]error{"CCC": errors.New("boom")},
	}

	type tick struct {
		symbol      string
		done, total int
	}
	var ticks []tick

	a := New(scorer, noDelay(), WithProgress(func(symbol string, done, total int) {
		ticks = append(ticks, tick{symbol, done, total})
	}))
	a.Analyze(context.Background(), []types.EarningsEntry{
		{Symbol: "AAA"}, {Symbol: "BBB"}, {Symbol: "CCC"},
	})

	if len(ticks) != 3 {
		t.Fatalf("Expected 3 progress ticks, got %d", len(ticks))
	}
	for i, tk := range ticks {
		if tk.done != i+1 || tk.total != 3 {
			t.Errorf("Tick %d: got done=%d total=%d", i, tk.done, tk.total)
		}
	}
	if ticks[2].symbol != "CCC" {
		t.Errorf("Expected progress for failed symbols too, got %s", ticks[2].symbol)
	}
}

// timedScorer records when each scoring call arrives.
type timedScorer struct {
	callTimes []time.Time
}

func (s *timedScorer) ComputeRecommendation(_ context.Context, _ string) (*types.ScoreSignals, error) {
	s.callTimes = append(s.callTimes, time.Now())
	return &types.ScoreSignals{}, nil
}

func TestAnalyzeSpacesEveryCall(t *testing.T) {
	const interval = 100 * time.Millisecond

	scorer := &timedScorer{}
	a := New(scorer, WithLimiter(rate.NewLimiter(rate.Every(interval), 1)))
	a.Analyze(context.Background(), []types.EarningsEntry{
		{Symbol: "AAA"}, {Symbol: "BBB"}, {Symbol: "CCC"},
	})

	if len(scorer.callTimes) != 3 {
		t.Fatalf("Expected 3 scoring calls, got %d", len(scorer.callTimes))
	}

	// Every consecutive pair must be a full interval apart, the second
	// call included: the limiter's initial token belongs to the first
	// call only. Allow a little scheduler slack.
	minGap := interval - 20*time.Millisecond
	for i := 1; i < len(scorer.callTimes); i++ {
		gap := scorer.callTimes[i].Sub(scorer.callTimes[i-1])
		if gap < minGap {
			t.Errorf("Calls %d and %d only %v apart, want at least %v", i, i+1, gap, interval)
		}
	}
}

func TestAnalyzeEmptyBatch(t *testing.T) {
	a := New(&fakeScorer{}, noDelay())
	result := a.Analyze(context.Background(), nil)

	if result.Total() != 0 {
		t.Errorf("Expected empty result for empty batch, got %+v", result)
	}
}
