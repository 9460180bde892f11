package models

import (
	"time"

	"github.com/google/uuid"
)

type TokenPair struct {
	AdminID      uuid.UUID `json:"admin_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
}

// TokenClaims is the verified content of an access or refresh token.
type TokenClaims struct {
	AdminID   uuid.UUID
	Email     string
	JTI       string
	ExpiresAt time.Time
}

type AuthState string

const (
	AuthStateUnauthenticated AuthState = "unauthenticated"
	AuthStateAuthenticated   AuthState = "authenticated"
)
