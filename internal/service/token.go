package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/dtroode/gophfriends-server/internal/model"
)

// TokenService resolves the caller identity from access tokens issued by the
// external auth service.
type TokenService struct {
	verifier model.TokenVerifier
}

func NewTokenService(verifier model.TokenVerifier) *TokenService {
	return &TokenService{verifier: verifier}
}

func (s *TokenService) GetUserID(_ context.Context, token string) (uuid.UUID, error) {
	return s.verifier.ParseAccessToken(token)
}
