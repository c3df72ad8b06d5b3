package interfaces

import (
	"context"

	"earnings-scanner/internal/types"
)

// Scorer evaluates one ticker symbol and returns its volatility and
// liquidity signals plus an expected-move estimate. Called at most
// once per symbol per run.
type Scorer interface {
	ComputeRecommendation(ctx context.Context, symbol string) (*types.ScoreSignals, error)
}
