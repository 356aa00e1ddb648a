package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/gophfriends-server/internal/logger"
	"github.com/dtroode/gophfriends-server/internal/model"
)

// Friendship drives the friend-request lifecycle. Request and friendship
// state is never stored as a status; it is read off the pending list and the
// friend sets of the two records involved.
type Friendship struct {
	directory model.Directory
	logger    *logger.Logger
}

func NewFriendship(directory model.Directory, logger *logger.Logger) *Friendship {
	return &Friendship{
		directory: directory,
		logger:    logger,
	}
}

// SendFriendRequest appends requesterID to the target's pending list. Sending
// to an existing friend, or to someone with a request of their own pending,
// is allowed.
func (s *Friendship) SendFriendRequest(ctx context.Context, requesterID, targetID uuid.UUID) error {
	if requesterID == targetID {
		return model.ErrSelfRequest
	}

	err := s.directory.Update(ctx, []uuid.UUID{requesterID, targetID}, func(users map[uuid.UUID]*model.User) error {
		target := users[targetID]
		if target.HasPendingFrom(requesterID) {
			return model.ErrAlreadyRequested
		}
		target.PendingRequests = append(target.PendingRequests, requesterID)
		return nil
	})
	if err != nil {
		s.logger.Warn("failed to send friend request",
			"requester_id", requesterID,
			"target_id", targetID,
			"error", err)
		return fmt.Errorf("failed to send friend request: %w", err)
	}

	s.logger.Info("friend request sent", "requester_id", requesterID, "target_id", targetID)
	return nil
}

// AcceptFriendRequest consumes the pending entry of requesterID on targetID
// and befriends both users in one update.
func (s *Friendship) AcceptFriendRequest(ctx context.Context, targetID, requesterID uuid.UUID) error {
	err := s.directory.Update(ctx, []uuid.UUID{targetID, requesterID}, func(users map[uuid.UUID]*model.User) error {
		target, requester := users[targetID], users[requesterID]
		if !target.RemovePending(requesterID) {
			return model.ErrNoSuchRequest
		}
		target.AddFriend(requesterID)
		requester.AddFriend(targetID)
		return nil
	})
	if err != nil {
		s.logger.Warn("failed to accept friend request",
			"target_id", targetID,
			"requester_id", requesterID,
			"error", err)
		return fmt.Errorf("failed to accept friend request: %w", err)
	}

	s.logger.Info("friend request accepted", "target_id", targetID, "requester_id", requesterID)
	return nil
}

// RejectFriendRequest drops the pending entry of requesterID on targetID.
func (s *Friendship) RejectFriendRequest(ctx context.Context, targetID, requesterID uuid.UUID) error {
	err := s.directory.Update(ctx, []uuid.UUID{targetID}, func(users map[uuid.UUID]*model.User) error {
		if !users[targetID].RemovePending(requesterID) {
			return model.ErrNoSuchRequest
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("failed to reject friend request",
			"target_id", targetID,
			"requester_id", requesterID,
			"error", err)
		return fmt.Errorf("failed to reject friend request: %w", err)
	}

	s.logger.Info("friend request rejected", "target_id", targetID, "requester_id", requesterID)
	return nil
}

// Unfriend removes the friendship in both directions. It succeeds when the
// two users were not friends.
func (s *Friendship) Unfriend(ctx context.Context, userID, friendID uuid.UUID) error {
	var changed bool
	err := s.directory.Update(ctx, []uuid.UUID{userID, friendID}, func(users map[uuid.UUID]*model.User) error {
		a := users[userID].RemoveFriend(friendID)
		b := users[friendID].RemoveFriend(userID)
		changed = a || b
		return nil
	})
	if err != nil {
		s.logger.Warn("failed to unfriend",
			"user_id", userID,
			"friend_id", friendID,
			"error", err)
		return fmt.Errorf("failed to unfriend: %w", err)
	}

	s.logger.Info("friend removed", "user_id", userID, "friend_id", friendID, "changed", changed)
	return nil
}

func (s *Friendship) ListFriends(ctx context.Context, userID uuid.UUID) ([]model.PublicUser, error) {
	user, err := s.directory.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	friends, err := s.directory.Resolve(ctx, user.Friends)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve friends: %w", err)
	}

	return friends, nil
}

// ListPendingRequests returns the users with a request pending on userID,
// oldest first.
func (s *Friendship) ListPendingRequests(ctx context.Context, userID uuid.UUID) ([]model.PublicUser, error) {
	user, err := s.directory.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	requesters, err := s.directory.Resolve(ctx, user.PendingRequests)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve friend requests: %w", err)
	}

	return requesters, nil
}

func (s *Friendship) SearchUsers(ctx context.Context, pattern string) ([]model.PublicUser, error) {
	users, err := s.directory.Search(ctx, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	return users, nil
}
