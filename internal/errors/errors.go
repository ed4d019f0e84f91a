// Package errors defines the error kinds shared by every layer of the service.
// Callers compare with errors.Is against the sentinels below; the typed errors
// carry detail for messages and unwrap to their sentinel.
package errors

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned when an endpoint needs an identity and the
// session token is missing or unknown.
var ErrUnauthorized = errors.New("authentication required")

// ErrForbidden is returned when the viewer is known but the policy denies the action.
var ErrForbidden = errors.New("permission denied")

// ErrNotFound is returned when a referenced entity does not resolve.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned for malformed request payloads.
var ErrValidation = errors.New("validation failed")

// ErrExpired is returned when a share link token is past its expiry.
var ErrExpired = errors.New("share link expired")

// ErrConflict is returned on uniqueness violations (duplicate username, ...).
var ErrConflict = errors.New("conflict")

// ErrUnavailable is returned when the relational store, the session cache or
// another collaborator did not answer in time.
var ErrUnavailable = errors.New("dependency unavailable")

// ValidationError reports which field of a payload is malformed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e ValidationError) Unwrap() error { return ErrValidation }

// NotFoundError names the missing resource.
type NotFoundError struct {
	Resource string
	ID       any
}

func (e NotFoundError) Error() string {
	if e.ID == nil {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %v not found", e.Resource, e.ID)
}

func (e NotFoundError) Unwrap() error { return ErrNotFound }

// ForbiddenError carries the reason a policy check failed.
type ForbiddenError struct {
	Reason string
}

func (e ForbiddenError) Error() string { return e.Reason }

func (e ForbiddenError) Unwrap() error { return ErrForbidden }

// Unavailable wraps a collaborator failure so that it matches ErrUnavailable
// while keeping the original cause in the chain.
func Unavailable(op string, cause error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, cause)
}
