package jwt

import (
	"errors"
	"fmt"
	"time"

	"elite_blog/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Kind separates access tokens from refresh tokens signed with the same key.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

type claims struct {
	Email string `json:"email"`
	Kind  Kind   `json:"typ"`
	jwt.RegisteredClaims
}

// NewToken signs an HS256 token for the admin with a fresh jti.
func NewToken(admin models.Admin, kind Kind, secret []byte, ttl time.Duration, now time.Time) (string, models.TokenClaims, error) {
	c := claims{
		Email: admin.Email,
		Kind:  kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.ID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(secret)
	if err != nil {
		return "", models.TokenClaims{}, err
	}

	return signed, models.TokenClaims{
		AdminID:   admin.ID,
		Email:     admin.Email,
		JTI:       c.ID,
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}

// Parse verifies signature, expiry and kind.
func Parse(token string, kind Kind, secret []byte) (models.TokenClaims, error) {
	var c claims

	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.TokenClaims{}, ErrTokenExpired
		}
		return models.TokenClaims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if c.Kind != kind {
		return models.TokenClaims{}, fmt.Errorf("%w: expected %s token", ErrInvalidToken, kind)
	}

	adminID, err := uuid.Parse(c.Subject)
	if err != nil || c.ID == "" {
		return models.TokenClaims{}, fmt.Errorf("%w: bad subject or id", ErrInvalidToken)
	}

	return models.TokenClaims{
		AdminID:   adminID,
		Email:     c.Email,
		JTI:       c.ID,
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}
