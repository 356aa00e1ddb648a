package service

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/dtroode/gophfriends-server/internal/logger"
	"github.com/dtroode/gophfriends-server/internal/model"
)

// RecommendationLimit caps the length of a recommendation list.
const RecommendationLimit = 5

type Recommendation struct {
	directory model.Directory
	cache     model.RecommendationCache
	logger    *logger.Logger
}

func NewRecommendation(
	directory model.Directory,
	cache model.RecommendationCache,
	logger *logger.Logger,
) *Recommendation {
	return &Recommendation{
		directory: directory,
		cache:     cache,
		logger:    logger,
	}
}

// GetRecommendations ranks every user who is neither userID nor one of its
// friends by the number of friends they share with userID.
//
// Cached lists are keyed by the directory version read before computing, so
// a list is only served while no write has committed since it was built.
func (s *Recommendation) GetRecommendations(ctx context.Context, userID uuid.UUID) ([]model.Recommendation, error) {
	version, versionErr := s.directory.Version(ctx)
	if versionErr != nil {
		s.logger.Warn("failed to read graph version, bypassing cache", "error", versionErr)
	} else {
		recs, hit, err := s.cache.Get(ctx, version, userID)
		if err != nil {
			s.logger.Warn("failed to read cached recommendations", "user_id", userID, "error", err)
		} else if hit {
			return recs, nil
		}
	}

	users, err := s.directory.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	recs, err := RankByMutualFriends(userID, users, RecommendationLimit)
	if err != nil {
		return nil, err
	}

	if versionErr == nil {
		if err := s.cache.Set(ctx, version, userID, recs); err != nil {
			s.logger.Warn("failed to cache recommendations", "user_id", userID, "error", err)
		}
	}

	return recs, nil
}

// RankByMutualFriends orders the candidates for subjectID by mutual friend
// count, highest first. Ties go to the lower id. At most limit entries are
// returned.
func RankByMutualFriends(subjectID uuid.UUID, users []model.User, limit int) ([]model.Recommendation, error) {
	idx := slices.IndexFunc(users, func(u model.User) bool { return u.ID == subjectID })
	if idx < 0 {
		return nil, fmt.Errorf("failed to get user by id: %w", model.ErrNotFound)
	}

	friends := make(map[uuid.UUID]struct{}, len(users[idx].Friends))
	for _, id := range users[idx].Friends {
		if id != subjectID {
			friends[id] = struct{}{}
		}
	}

	recs := make([]model.Recommendation, 0, len(users))
	for _, u := range users {
		if u.ID == subjectID {
			continue
		}
		if _, ok := friends[u.ID]; ok {
			continue
		}

		mutual := 0
		for _, id := range u.Friends {
			if _, ok := friends[id]; ok {
				mutual++
			}
		}
		recs = append(recs, model.Recommendation{User: u.Public(), MutualCount: mutual})
	}

	slices.SortFunc(recs, func(a, b model.Recommendation) int {
		if c := cmp.Compare(b.MutualCount, a.MutualCount); c != 0 {
			return c
		}
		return bytes.Compare(a.User.ID[:], b.User.ID[:])
	})

	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}
