package gateway

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/iho/gosettle/internal/usecase"
)

// RandomScorer implements usecase.FraudScorer with a uniformly random
// score in [0,1) after a fixed latency.
type RandomScorer struct {
	latency time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomScorer creates a scorer seeded from the runtime.
func NewRandomScorer(latency time.Duration) *RandomScorer {
	return newRandomScorer(latency, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
}

func newRandomScorer(latency time.Duration, rng *rand.Rand) *RandomScorer {
	return &RandomScorer{latency: latency, rng: rng}
}

// Score waits for the configured latency and returns a random score.
func (s *RandomScorer) Score(ctx context.Context, _ usecase.FraudCheck) (float64, error) {
	if err := wait(ctx, s.latency); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.rng.Float64(), nil
}

// FixedScorer always returns the same score.
type FixedScorer float64

// Score returns s.
func (s FixedScorer) Score(ctx context.Context, _ usecase.FraudCheck) (float64, error) {
	return float64(s), ctx.Err()
}
