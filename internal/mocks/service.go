package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/gophfriends-server/internal/model"
)

type FriendService struct {
	mock.Mock
}

func NewFriendService(t testingT) *FriendService {
	m := &FriendService{}
	register(&m.Mock, t)
	return m
}

func (m *FriendService) SearchUsers(ctx context.Context, pattern string) ([]model.PublicUser, error) {
	args := m.Called(ctx, pattern)
	users, _ := args.Get(0).([]model.PublicUser)
	return users, args.Error(1)
}

func (m *FriendService) SendFriendRequest(ctx context.Context, requesterID, targetID uuid.UUID) error {
	args := m.Called(ctx, requesterID, targetID)
	return args.Error(0)
}

func (m *FriendService) AcceptFriendRequest(ctx context.Context, targetID, requesterID uuid.UUID) error {
	args := m.Called(ctx, targetID, requesterID)
	return args.Error(0)
}

func (m *FriendService) RejectFriendRequest(ctx context.Context, targetID, requesterID uuid.UUID) error {
	args := m.Called(ctx, targetID, requesterID)
	return args.Error(0)
}

func (m *FriendService) Unfriend(ctx context.Context, userID, friendID uuid.UUID) error {
	args := m.Called(ctx, userID, friendID)
	return args.Error(0)
}

func (m *FriendService) ListFriends(ctx context.Context, userID uuid.UUID) ([]model.PublicUser, error) {
	args := m.Called(ctx, userID)
	users, _ := args.Get(0).([]model.PublicUser)
	return users, args.Error(1)
}

func (m *FriendService) ListPendingRequests(ctx context.Context, userID uuid.UUID) ([]model.PublicUser, error) {
	args := m.Called(ctx, userID)
	users, _ := args.Get(0).([]model.PublicUser)
	return users, args.Error(1)
}

type RecommendationService struct {
	mock.Mock
}

func NewRecommendationService(t testingT) *RecommendationService {
	m := &RecommendationService{}
	register(&m.Mock, t)
	return m
}

func (m *RecommendationService) GetRecommendations(ctx context.Context, userID uuid.UUID) ([]model.Recommendation, error) {
	args := m.Called(ctx, userID)
	recs, _ := args.Get(0).([]model.Recommendation)
	return recs, args.Error(1)
}
