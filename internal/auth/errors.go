package auth

import "errors"

var (
	// ErrOwnerMismatch indicates resource belongs to a different owner.
	ErrOwnerMismatch = errors.New("owner mismatch")
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("resource not found")

	ErrUnauthorized = errors.New("auth: unauthorized")
	ErrForbidden    = errors.New("auth: forbidden")
	ErrInvalidToken = errors.New("auth: invalid token")
)
