// Package usecase implements the business logic for the profile feature.
package usecase

import "errors"

var (
	// ErrProfileNotFound is returned when no profile exists for the user.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrInvalidPreferences is returned when the submitted preferences are inconsistent.
	ErrInvalidPreferences = errors.New("invalid investment preferences")
)
