package handler

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/dtroode/gophfriends-server/internal/api/grpc/friendsv1"
	"github.com/dtroode/gophfriends-server/internal/logger"
	"github.com/dtroode/gophfriends-server/internal/model"
)

// FriendService defines the friend-request and friend-list operations.
type FriendService interface {
	SearchUsers(ctx context.Context, pattern string) ([]model.PublicUser, error)
	SendFriendRequest(ctx context.Context, requesterID, targetID uuid.UUID) error
	AcceptFriendRequest(ctx context.Context, targetID, requesterID uuid.UUID) error
	RejectFriendRequest(ctx context.Context, targetID, requesterID uuid.UUID) error
	Unfriend(ctx context.Context, userID, friendID uuid.UUID) error
	ListFriends(ctx context.Context, userID uuid.UUID) ([]model.PublicUser, error)
	ListPendingRequests(ctx context.Context, userID uuid.UUID) ([]model.PublicUser, error)
}

type RecommendationService interface {
	GetRecommendations(ctx context.Context, userID uuid.UUID) ([]model.Recommendation, error)
}

var _ friendsv1.FriendsServer = (*Friends)(nil)

// Friends handles gRPC endpoints of the friends service. The acting user
// is always taken from the authenticated context.
type Friends struct {
	friendService         FriendService
	recommendationService RecommendationService
	contextManager        model.ContextManager
	logger                *logger.Logger
}

func NewFriends(
	friendService FriendService,
	recommendationService RecommendationService,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Friends {
	return &Friends{
		friendService:         friendService,
		recommendationService: recommendationService,
		contextManager:        contextManager,
		logger:                logger,
	}
}

func (h *Friends) SearchUsers(ctx context.Context, req *wrapperspb.StringValue) (*structpb.ListValue, error) {
	userID, err := h.callerID(ctx)
	if err != nil {
		return nil, err
	}

	users, err := h.friendService.SearchUsers(ctx, req.GetValue())
	if err != nil {
		h.logger.Error("Friends handler: search users failed",
			"user_id", userID,
			"pattern", req.GetValue(),
			"error", err.Error())
		return nil, handleError(err)
	}

	return friendsv1.NewList(publicEntries(users), false), nil
}

func (h *Friends) SendFriendRequest(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	userID, otherID, err := h.pair(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := h.friendService.SendFriendRequest(ctx, userID, otherID); err != nil {
		return nil, handleError(err)
	}

	return &emptypb.Empty{}, nil
}

func (h *Friends) AcceptFriendRequest(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	userID, otherID, err := h.pair(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := h.friendService.AcceptFriendRequest(ctx, userID, otherID); err != nil {
		return nil, handleError(err)
	}

	return &emptypb.Empty{}, nil
}

func (h *Friends) RejectFriendRequest(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	userID, otherID, err := h.pair(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := h.friendService.RejectFriendRequest(ctx, userID, otherID); err != nil {
		return nil, handleError(err)
	}

	return &emptypb.Empty{}, nil
}

func (h *Friends) Unfriend(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	userID, otherID, err := h.pair(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := h.friendService.Unfriend(ctx, userID, otherID); err != nil {
		return nil, handleError(err)
	}

	return &emptypb.Empty{}, nil
}

func (h *Friends) ListFriends(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	userID, err := h.callerID(ctx)
	if err != nil {
		return nil, err
	}

	friends, err := h.friendService.ListFriends(ctx, userID)
	if err != nil {
		h.logger.Error("Friends handler: list friends failed",
			"user_id", userID,
			"error", err.Error())
		return nil, handleError(err)
	}

	return friendsv1.NewList(publicEntries(friends), false), nil
}

func (h *Friends) ListFriendRequests(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	userID, err := h.callerID(ctx)
	if err != nil {
		return nil, err
	}

	requesters, err := h.friendService.ListPendingRequests(ctx, userID)
	if err != nil {
		h.logger.Error("Friends handler: list friend requests failed",
			"user_id", userID,
			"error", err.Error())
		return nil, handleError(err)
	}

	return friendsv1.NewList(publicEntries(requesters), false), nil
}

func (h *Friends) GetRecommendations(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	userID, err := h.callerID(ctx)
	if err != nil {
		return nil, err
	}

	recs, err := h.recommendationService.GetRecommendations(ctx, userID)
	if err != nil {
		h.logger.Error("Friends handler: get recommendations failed",
			"user_id", userID,
			"error", err.Error())
		return nil, handleError(err)
	}

	entries := make([]friendsv1.Entry, 0, len(recs))
	for _, r := range recs {
		entries = append(entries, friendsv1.Entry{
			ID:          r.User.ID.String(),
			Username:    r.User.Username,
			MutualCount: r.MutualCount,
		})
	}

	h.logger.Debug("Friends handler: recommendations returned",
		"user_id", userID,
		"count", len(entries))

	return friendsv1.NewList(entries, true), nil
}

func (h *Friends) callerID(ctx context.Context) (uuid.UUID, error) {
	userID, ok := h.contextManager.GetUserIDFromContext(ctx)
	if !ok {
		return uuid.Nil, status.Error(codes.Unauthenticated, "missing authorization token")
	}
	return userID, nil
}

// pair returns the caller and the user named by the request.
func (h *Friends) pair(ctx context.Context, req *wrapperspb.StringValue) (uuid.UUID, uuid.UUID, error) {
	userID, err := h.callerID(ctx)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}

	otherID, err := uuid.Parse(req.GetValue())
	if err != nil {
		return uuid.Nil, uuid.Nil, status.Error(codes.InvalidArgument, "invalid user ID")
	}

	return userID, otherID, nil
}

func publicEntries(users []model.PublicUser) []friendsv1.Entry {
	entries := make([]friendsv1.Entry, 0, len(users))
	for _, u := range users {
		entries = append(entries, friendsv1.Entry{ID: u.ID.String(), Username: u.Username})
	}
	return entries
}
