// Package entity defines the domain entities for the auth feature.
package entity

import (
	"time"

	"github.com/google/uuid"

	profileentity "pitch_backend/internal/feature/profile/domain/entity"
)

// User holds the credentials of a registered account.
type User struct {
	// ID is shared with the user's profile.
	ID uuid.UUID

	// Email is unique across all users.
	Email string

	// Password is the bcrypt hash, never plaintext.
	Password string

	// Role is fixed at signup.
	Role profileentity.Role

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SignupInput is what a new account is created from.
type SignupInput struct {
	Email    string
	Password string
	FullName string
	Role     profileentity.Role
}
