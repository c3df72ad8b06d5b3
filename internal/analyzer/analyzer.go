package analyzer

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"earnings-scanner/internal/interfaces"
	"earnings-scanner/internal/logger"
	"earnings-scanner/internal/trace"
	"earnings-scanner/internal/types"
)

// Analyzer scores each candidate entry sequentially and categorizes
// the results. One failing symbol never aborts the batch; its failure
// is accumulated and processing continues.
type Analyzer struct {
	scorer   interfaces.Scorer
	limiter  *rate.Limiter
	progress interfaces.ProgressFunc
}

// Option configures the analyzer.
type Option func(*Analyzer)

// WithLimiter sets the inter-call rate limiter. The default allows one
// scorer call per second; the limiter throttles against the scorer's
// rate-limited upstream, so the loop must stay sequential.
func WithLimiter(l *rate.Limiter) Option {
	return func(a *Analyzer) {
		a.limiter = l
	}
}

// WithProgress sets a callback invoked once per processed symbol.
func WithProgress(fn interfaces.ProgressFunc) Option {
	return func(a *Analyzer) {
		a.progress = fn
	}
}

// New creates an analyzer over the given scorer.
func New(scorer interfaces.Scorer, opts ...Option) *Analyzer {
	a := &Analyzer{
		scorer:  scorer,
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze scores every entry and partitions the batch into the three
// recommendation buckets plus the error list. Every input entry lands
// in exactly one of the four.
func (a *Analyzer) Analyze(ctx context.Context, entries []types.EarningsEntry) types.RunResult {
	ctx, span := trace.StartSpan(ctx, "analyzer.Analyze")
	defer span.End()

	var result types.RunResult
	total := len(entries)

	for i, entry := range entries {
		// Every call goes through the limiter. The limiter starts with
		// one token, so the first call is immediate and each subsequent
		// call is spaced a full interval behind the previous one.
		if err := a.limiter.Wait(ctx); err != nil {
			logger.Warn(ctx, "Rate limiter interrupted, stopping batch", "error", err, "processed", i, "total", total)
			break
		}

		signals, err := a.scorer.ComputeRecommendation(ctx, entry.Symbol)
		switch {
		case err != nil:
			result.Errors = append(result.Errors, types.ErrorRecord{
				Symbol:  entry.Symbol,
				Message: err.Error(),
			})
			logger.Warn(ctx, "Scoring failed", "symbol", entry.Symbol, "error", err)
		case signals == nil:
			// The original data path dropped malformed scorer
			// results on the floor; here they are surfaced as
			// errors so the run accounts for every symbol.
			result.Errors = append(result.Errors, types.ErrorRecord{
				Symbol:  entry.Symbol,
				Message: "scorer returned no result",
			})
			logger.Warn(ctx, "Scorer returned no result", "symbol", entry.Symbol)
		default:
			categorized := types.CategorizedEntry{
				EarningsEntry:  entry,
				ExpectedMove:   signals.ExpectedMove,
				Recommendation: Classify(*signals),
			}
			logger.Classification(ctx, entry.Symbol, string(categorized.Recommendation), categorized.ExpectedMove)

			switch categorized.Recommendation {
			case types.Recommended:
				result.Recommended = append(result.Recommended, categorized)
			case types.Consider:
				result.Consider = append(result.Consider, categorized)
			default:
				result.Avoid = append(result.Avoid, categorized)
			}
		}

		if a.progress != nil {
			a.progress(entry.Symbol, i+1, total)
		}
	}

	return result
}

// Classify maps the three boolean signals onto a recommendation:
// all three true is Recommended; a true term-structure slope with
// exactly one of volume/IV-ratio true is Consider; everything else,
// including any case with a false slope, is Avoid.
func Classify(s types.ScoreSignals) types.Recommendation {
	switch {
	case s.AvgVolume && s.IV30RV30 && s.TSSlope045:
		return types.Recommended
	case s.TSSlope045 && (s.AvgVolume != s.IV30RV30):
		return types.Consider
	default:
		return types.Avoid
	}
}
