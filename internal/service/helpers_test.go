package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/gophfriends-server/internal/model"
	"github.com/dtroode/gophfriends-server/internal/repository/memory"
)

func seedUsers(t *testing.T, dir *memory.Directory, names ...string) map[string]uuid.UUID {
	t.Helper()

	ids := make(map[string]uuid.UUID, len(names))
	for _, name := range names {
		u, err := dir.Create(context.Background(), model.User{Username: name})
		require.NoError(t, err)
		ids[name] = u.ID
	}
	return ids
}

func befriend(t *testing.T, svc *Friendship, a, b uuid.UUID) {
	t.Helper()

	ctx := context.Background()
	require.NoError(t, svc.SendFriendRequest(ctx, a, b))
	require.NoError(t, svc.AcceptFriendRequest(ctx, b, a))
}

func publicIDs(users []model.PublicUser) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}
