package model

import "github.com/google/uuid"

// TokenVerifier validates access tokens minted by the external credential
// issuer and returns the caller id they carry.
type TokenVerifier interface {
	ParseAccessToken(token string) (uuid.UUID, error)
}
