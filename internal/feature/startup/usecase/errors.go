// Package usecase implements the startup directory and saved-startup logic.
package usecase

import "errors"

var (
	// ErrStartupNotFound is returned when a startup does not exist.
	ErrStartupNotFound = errors.New("startup not found")

	// ErrStartupExists is returned when a founder already owns a startup.
	ErrStartupExists = errors.New("founder already has a startup")

	// ErrForbidden is returned when the caller does not own the startup.
	ErrForbidden = errors.New("not the owner of this startup")

	// ErrInvalidStartup is returned when submitted startup fields fail validation.
	ErrInvalidStartup = errors.New("invalid startup")
)
