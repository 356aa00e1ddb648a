package cache

import (
	"context"

	"github.com/google/uuid"

	"github.com/dtroode/gophfriends-server/internal/model"
)

var _ model.RecommendationCache = Noop{}

// Noop is used when no cache backend is configured; every lookup misses.
type Noop struct{}

func (Noop) Get(context.Context, int64, uuid.UUID) ([]model.Recommendation, bool, error) {
	return nil, false, nil
}

func (Noop) Set(context.Context, int64, uuid.UUID, []model.Recommendation) error { return nil }
