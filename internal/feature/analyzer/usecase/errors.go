// Package usecase implements the pitch analysis function.
package usecase

import "errors"

var (
	// ErrInvalidInput is returned when the pitch or startup name is missing.
	ErrInvalidInput = errors.New("invalid analysis input")

	// ErrRateLimited is returned when the LLM provider answered 429.
	ErrRateLimited = errors.New("llm provider rate limit exceeded")

	// ErrPaymentRequired is returned when the LLM provider answered 402.
	ErrPaymentRequired = errors.New("llm provider requires payment")

	// ErrUpstream covers every other provider failure (non-2xx, transport, bad envelope).
	ErrUpstream = errors.New("llm provider error")

	// ErrUnparseable is returned by ParseScoreResult when the reply holds no JSON object.
	ErrUnparseable = errors.New("model reply is not a JSON object")
)
