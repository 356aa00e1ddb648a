package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/gophfriends-server/internal/model"
)

var _ model.RecommendationCache = (*RecommendationCache)(nil)

type RecommendationCache struct {
	mock.Mock
}

func NewRecommendationCache(t testingT) *RecommendationCache {
	m := &RecommendationCache{}
	register(&m.Mock, t)
	return m
}

func (m *RecommendationCache) Get(ctx context.Context, version int64, userID uuid.UUID) ([]model.Recommendation, bool, error) {
	args := m.Called(ctx, version, userID)
	recs, _ := args.Get(0).([]model.Recommendation)
	return recs, args.Bool(1), args.Error(2)
}

func (m *RecommendationCache) Set(ctx context.Context, version int64, userID uuid.UUID, recs []model.Recommendation) error {
	args := m.Called(ctx, version, userID, recs)
	return args.Error(0)
}
