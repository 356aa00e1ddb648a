package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dtroode/gophfriends-server/internal/model"
)

var _ model.TokenVerifier = (*JWT)(nil)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid access token")

const (
	// DefaultIssuer is the iss claim required by JWT.
	DefaultIssuer = "gophfriends"

	typeAccess = "access"
)

// Claims carries the caller id as the subject.
type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"typ"`
}

// JWT verifies HS256 access tokens. Tokens are minted by the external
// credential issuer with the same secret.
type JWT struct {
	secretKey []byte
	issuer    string
	now       func() time.Time
}

type Option func(*JWT)

func WithIssuer(issuer string) Option {
	return func(j *JWT) { j.issuer = issuer }
}

func NewJWT(secretKey string, opts ...Option) *JWT {
	j := &JWT{
		secretKey: []byte(secretKey),
		issuer:    DefaultIssuer,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// ParseAccessToken verifies the signature and the registered claims, and
// returns the subject as a user id.
func (j *JWT) ParseAccessToken(tokenString string) (uuid.UUID, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return j.secretKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(j.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.TokenType != typeAccess {
		return uuid.Nil, fmt.Errorf("%w: token type mismatch: %q", ErrInvalidToken, claims.TokenType)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad subject: %w", ErrInvalidToken, err)
	}
	return userID, nil
}
