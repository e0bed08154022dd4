package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError
type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}

	// ForbiddenError indicates authorization failure
	ForbiddenError struct {
		Message string
	}

	// StorageInconsistentError means the blob store no longer holds content the
	// metadata points at. It is never masked: it signals earlier corruption.
	StorageInconsistentError struct {
		Message string
		Key     string
	}
)

func (e *NotFoundError) Error() string            { return e.Message }
func (e *ValidationError) Error() string          { return e.Message }
func (e *UnauthorizedError) Error() string        { return e.Message }
func (e *ForbiddenError) Error() string           { return e.Message }
func (e *StorageInconsistentError) Error() string { return e.Message }

func (e *NotFoundError) StatusCode() int            { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int          { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int        { return http.StatusUnauthorized }
func (e *ForbiddenError) StatusCode() int           { return http.StatusForbidden }
func (e *StorageInconsistentError) StatusCode() int { return http.StatusInternalServerError }

// Is lets errors.Is match the typed errors against the sentinels below.
func (e *NotFoundError) Is(target error) bool            { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool          { return target == ErrValidation }
func (e *UnauthorizedError) Is(target error) bool        { return target == ErrUnauthorized }
func (e *ForbiddenError) Is(target error) bool           { return target == ErrForbidden }
func (e *StorageInconsistentError) Is(target error) bool { return target == ErrStorageInconsistent }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("already exists")
	ErrValidation          = errors.New("validation failed")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrStorageInconsistent = errors.New("storage inconsistent with metadata")
)

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // folder, document, asset
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
