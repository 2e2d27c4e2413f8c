// Package service holds the domain operations of the marketplace.  Every
// failure a caller can act on is returned as one of the typed errors
// below; handler.respondError maps them onto HTTP statuses.
package service

import (
	"errors"
	"fmt"

	"github.com/iliyamo/dantour/internal/repository"
)

// ValidationError reports bad input.  Field is empty for whole-request
// problems.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// NotFoundError reports a missing entity.
type NotFoundError struct{ Entity string }

func (e *NotFoundError) Error() string { return e.Entity + " not found" }

// ForbiddenError reports a caller acting on something it does not own.
type ForbiddenError struct{ Message string }

func (e *ForbiddenError) Error() string {
	if e.Message == "" {
		return "forbidden"
	}
	return e.Message
}

// ConflictError reports a state or uniqueness conflict.
type ConflictError struct{ Message string }

func (e *ConflictError) Error() string { return e.Message }

// UnsupportedTypeError is returned for product types without a
// registered subtype handler.
type UnsupportedTypeError struct{ Type string }

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported product type %q", e.Type)
}

// UpstreamError wraps a failing external collaborator.
type UpstreamError struct {
	Upstream string
	Err      error
}

func (e *UpstreamError) Error() string { return e.Upstream + ": " + e.Err.Error() }
func (e *UpstreamError) Unwrap() error { return e.Err }

func invalid(field, msg string) error { return &ValidationError{Field: field, Message: msg} }

func notFound(entity string) error { return &NotFoundError{Entity: entity} }

// fromRepo translates repository sentinels into typed errors; other
// errors pass through untouched.
func fromRepo(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return notFound(entity)
	case errors.Is(err, repository.ErrForbidden):
		return &ForbiddenError{}
	case errors.Is(err, repository.ErrDuplicate), errors.Is(err, repository.ErrConflict):
		return &ConflictError{Message: entity + " already exists"}
	case errors.Is(err, repository.ErrCapacityExceeded):
		return &ConflictError{Message: "not enough capacity"}
	}
	return err
}
