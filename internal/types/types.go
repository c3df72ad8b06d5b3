package types

// Disclosure timing values as normalized by the calendar sources.
// Sources may emit other strings; TimeNotSupplied is the fallback when
// the field is absent.
const (
	TimeBeforeMarket = "before-market"
	TimeAfterMarket  = "after-market"
	TimeNotSupplied  = "time-not-supplied"
)

// EarningsEntry is one company's scheduled earnings disclosure for the
// scanned date. Entries are never mutated after creation; duplicates
// within a date are preserved as the source reports them.
type EarningsEntry struct {
	Symbol string `json:"symbol"`
	Time   string `json:"time"`
}

// ScoreSignals is the scorer's verdict for one symbol: three boolean
// volatility/liquidity signals plus an opaque expected-move string.
type ScoreSignals struct {
	AvgVolume    bool   `json:"avg_volume"`
	IV30RV30     bool   `json:"iv30_rv30"`
	TSSlope045   bool   `json:"ts_slope_0_45"`
	ExpectedMove string `json:"expected_move"`
}

// Recommendation is the bucket a scored symbol lands in.
type Recommendation string

const (
	Recommended Recommendation = "Recommended"
	Consider    Recommendation = "Consider"
	Avoid       Recommendation = "Avoid"
)

// CategorizedEntry is an EarningsEntry extended with the scorer's
// expected move and the assigned recommendation.
type CategorizedEntry struct {
	EarningsEntry
	ExpectedMove   string         `json:"expected_move"`
	Recommendation Recommendation `json:"recommendation"`
}

// ErrorRecord captures a per-symbol scoring failure without aborting
// the batch.
type ErrorRecord struct {
	Symbol  string `json:"symbol"`
	Message string `json:"message"`
}

// RunResult partitions the analyzed entries: every input symbol lands
// in exactly one of the three buckets, or in Errors if scoring failed.
type RunResult struct {
	Recommended []CategorizedEntry `json:"recommended"`
	Consider    []CategorizedEntry `json:"consider"`
	Avoid       []CategorizedEntry `json:"avoid"`
	Errors      []ErrorRecord      `json:"errors"`
}

// Total returns the number of entries accounted for across all buckets
// and the error list.
func (r *RunResult) Total() int {
	return len(r.Recommended) + len(r.Consider) + len(r.Avoid) + len(r.Errors)
}
