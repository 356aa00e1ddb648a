package model

import (
	"context"

	"github.com/google/uuid"
)

// RecommendationCache stores computed recommendations keyed by the
// Directory's graph version. Entries of an older version are never read again.
type RecommendationCache interface {
	Get(ctx context.Context, version int64, userID uuid.UUID) ([]Recommendation, bool, error)
	Set(ctx context.Context, version int64, userID uuid.UUID, recs []Recommendation) error
}
