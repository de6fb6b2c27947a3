package workflow

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/kamilakurskaa/TrustFlow/internal/domain"
	"github.com/kamilakurskaa/TrustFlow/internal/generator"
)

// Scorer computes a credit score from a financial feature set
type Scorer interface {
	// Score returns a credit score within the valid scoring range
	Score(ctx context.Context, features *generator.FeatureSet) (int, error)
}

// referenceScorer stands in for the trained scoring model. It draws a uniform
// score over the full valid range, ignoring the feature values.
type referenceScorer struct {
	mu   sync.Mutex
	rand *rand.Rand
}

// NewReferenceScorer creates the stand-in scorer used until a model is wired in
func NewReferenceScorer() Scorer {
	return &referenceScorer{rand: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (s *referenceScorer) Score(_ context.Context, _ *generator.FeatureSet) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.ScoreMin + s.rand.Intn(domain.ScoreMax-domain.ScoreMin+1), nil
}
