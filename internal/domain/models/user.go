package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Admin struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Password  []byte    `db:"password_hash" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// NormalizeEmail is the form admin emails are stored and compared in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
