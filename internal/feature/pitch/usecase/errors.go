// Package usecase implements pitch upload, analysis orchestration and expiry.
package usecase

import "errors"

var (
	// ErrPitchNotFound is returned when a pitch analysis does not exist.
	ErrPitchNotFound = errors.New("pitch analysis not found")

	// ErrStartupNotFound is returned when the target startup does not exist.
	ErrStartupNotFound = errors.New("startup not found")

	// ErrForbidden is returned when the caller may not act on the pitch.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidUpload is returned when the file or its form fields fail validation.
	ErrInvalidUpload = errors.New("invalid upload")

	// ErrNotRetryable is returned when a retry is requested in the wrong state
	// or after the attempt limit.
	ErrNotRetryable = errors.New("analysis cannot be retried")

	// ErrConcurrentUpdate is returned when the stored status changed underneath us.
	ErrConcurrentUpdate = errors.New("analysis was modified concurrently")

	// ErrExtractionFailed is returned when no text could be read from the file.
	ErrExtractionFailed = errors.New("failed to extract pitch text")

	// ErrAnalysisFailed wraps analyzer errors after the analysis was marked failed.
	ErrAnalysisFailed = errors.New("pitch analysis failed")
)
