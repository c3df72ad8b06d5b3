package scorer

import (
	"context"
	"fmt"
	"math/rand"

	"earnings-scanner/internal/types"
)

// MockScorer generates deterministic signals for offline runs and
// testing: the same symbol always scores the same way.
type MockScorer struct{}

// NewMockScorer creates a new mock scorer.
func NewMockScorer() *MockScorer {
	return &MockScorer{}
}

// ComputeRecommendation derives signals from a per-symbol seed.
func (m *MockScorer) ComputeRecommendation(_ context.Context, symbol string) (*types.ScoreSignals, error) {
	seed := int64(0)
	for _, c := range symbol {
		seed = seed*31 + int64(c)
	}
	r := rand.New(rand.NewSource(seed))

	// Skew toward a plausible live distribution: the slope condition
	// holds more often than not, the other signals roughly half the
	// time.
	return &types.ScoreSignals{
		AvgVolume:    r.Float64() < 0.5,
		IV30RV30:     r.Float64() < 0.5,
		TSSlope045:   r.Float64() < 0.7,
		ExpectedMove: fmt.Sprintf("±%.2f%%", 2.0+r.Float64()*8.0),
	}, nil
}
