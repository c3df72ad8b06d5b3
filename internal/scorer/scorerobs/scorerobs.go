package scorerobs

import (
	"context"

	"earnings-scanner/internal/interfaces"
	"earnings-scanner/internal/logger"
	"earnings-scanner/internal/trace"
	"earnings-scanner/internal/types"
)

// observableScorer wraps a Scorer with observability (logging & tracing)
type observableScorer struct {
	scorer interfaces.Scorer
}

// Compile-time interface check
var _ interfaces.Scorer = (*observableScorer)(nil)

// Wrap wraps a scorer with observability middleware
func Wrap(scorer interfaces.Scorer) interfaces.Scorer {
	return &observableScorer{
		scorer: scorer,
	}
}

// ComputeRecommendation scores a symbol with observability
func (os *observableScorer) ComputeRecommendation(ctx context.Context, symbol string) (*types.ScoreSignals, error) {
	ctx, span := trace.StartSpan(ctx, "scorer.ComputeRecommendation")
	defer span.End()

	// Skip one frame so logs report the actual caller, not this
	// middleware wrapper
	logger.DebugSkip(ctx, 1, "Requesting score", "symbol", symbol)

	signals, err := os.scorer.ComputeRecommendation(ctx, symbol)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Scoring failed", err, "symbol", symbol)
		return nil, err
	}
	if signals == nil {
		logger.InfoSkip(ctx, 1, "Scorer returned no result", "symbol", symbol)
		return nil, nil
	}

	logger.InfoSkip(ctx, 1, "Score received",
		"symbol", symbol,
		"avg_volume", signals.AvgVolume,
		"iv30_rv30", signals.IV30RV30,
		"ts_slope_0_45", signals.TSSlope045,
		"expected_move", signals.ExpectedMove,
	)

	return signals, nil
}
