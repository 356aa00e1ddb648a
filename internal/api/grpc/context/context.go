package context

import (
	"context"

	"github.com/google/uuid"

	"github.com/dtroode/gophfriends-server/internal/model"
)

var _ model.ContextManager = (*Manager)(nil)

type userIDKey struct{}

// Manager stores the authenticated user ID in the request context. The value
// lives under an unexported key, so request metadata sent by a client cannot
// impersonate another user.
type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) SetUserIDToContext(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// GetUserIDFromContext reports false when no non-nil user ID was set.
func (m *Manager) GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(userIDKey{}).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}
