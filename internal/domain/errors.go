package domain

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface enables extensible error handling at the boundary.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// ForbiddenError indicates an operation attempted by a caller who does
	// not own the resource it targets (e.g. releasing another user's lock)
	ForbiddenError struct {
		Message string
	}

	// UnsupportedError indicates a file type the ingestion pipeline cannot handle
	UnsupportedError struct {
		Message string
	}

	// MalformedError indicates file content that failed to parse
	MalformedError struct {
		Message string
	}
)

// Error implementations
func (e *NotFoundError) Error() string    { return e.Message }
func (e *ValidationError) Error() string  { return e.Message }
func (e *ForbiddenError) Error() string   { return e.Message }
func (e *UnsupportedError) Error() string { return e.Message }
func (e *MalformedError) Error() string   { return e.Message }

// StatusCode implementations (HTTPError interface)
func (e *NotFoundError) StatusCode() int    { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int  { return http.StatusBadRequest }
func (e *ForbiddenError) StatusCode() int   { return http.StatusForbidden }
func (e *UnsupportedError) StatusCode() int { return http.StatusUnsupportedMediaType }
func (e *MalformedError) StatusCode() int   { return http.StatusUnprocessableEntity }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("already exists")
	ErrValidation  = errors.New("validation failed")
	ErrForbidden   = errors.New("forbidden")
	ErrUnsupported = errors.New("unsupported file type")
	ErrMalformed   = errors.New("malformed content")
)

// Is hooks so the typed errors match their sentinels
func (e *NotFoundError) Is(target error) bool    { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool  { return target == ErrValidation }
func (e *ForbiddenError) Is(target error) bool   { return target == ErrForbidden }
func (e *UnsupportedError) Is(target error) bool { return target == ErrUnsupported }
func (e *MalformedError) Is(target error) bool   { return target == ErrMalformed }

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (game_system, document, world)
	ResourceID   string // ID of the existing/conflicting resource
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// LockConflictError is returned when a lease on a resource is held by a
// different user. It reports who holds the lease and when it expires so
// callers can decide whether to wait or retry.
type LockConflictError struct {
	ResourceID string
	HolderID   string
	ExpiresAt  time.Time
}

// Error implements the error interface
func (e *LockConflictError) Error() string {
	return fmt.Sprintf("resource %s is locked by another user until %s",
		e.ResourceID, e.ExpiresAt.Format(time.RFC3339))
}

// StatusCode implements the HTTPError interface
func (e *LockConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *LockConflictError) Is(target error) bool {
	return target == ErrConflict
}
