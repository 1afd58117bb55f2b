// Package apperrors declares the error taxonomy shared by the service layer.
// Handlers map these to HTTP status codes with errors.Is; services wrap them
// with %w to add operation context.
package apperrors

import "errors"

var (
	// ErrAccessDenied means the caller is authenticated but not permitted to
	// act on the target entity. Never retried.
	ErrAccessDenied = errors.New("access denied")

	// ErrNotFound means a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState means the operation is illegal for the entity's current
	// state, e.g. posting to an ended session or ending it twice.
	ErrInvalidState = errors.New("invalid state")

	// ErrUpstream means a collaborator call (assistant, moderation,
	// summarization) failed or timed out. Callers may retry with backoff; the
	// service layer does not retry on its own.
	ErrUpstream = errors.New("upstream collaborator failure")

	// ErrAlreadySummarized means a second summary was attempted for a session
	// that already has one. Indicates a concurrency or programming bug.
	ErrAlreadySummarized = errors.New("session already summarized")
)
