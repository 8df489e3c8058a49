// Package usecase implements investor decisions on analysed pitches.
package usecase

import "errors"

var (
	// ErrPitchNotFound is returned when the pitch analysis does not exist.
	ErrPitchNotFound = errors.New("pitch analysis not found")

	// ErrAnalysisIncomplete is returned when deciding on an analysis that is not completed.
	ErrAnalysisIncomplete = errors.New("pitch analysis is not completed")

	// ErrForbidden is returned when the caller may not see or make the decision.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidDecision is returned when the submitted decision fails validation.
	ErrInvalidDecision = errors.New("invalid decision")
)
