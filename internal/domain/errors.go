package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
)

// Verification flow failures. The first four are caller errors; ErrStorage and
// ErrDelivery wrap upstream failures whose detail must stay server-side.
var (
	ErrInvalidDomain        = errors.New("invalid email domain")
	ErrMissingIdentifier    = errors.New("missing data: email or token required")
	ErrInvalidOrExpiredCode = errors.New("invalid or expired code")
	ErrExpiredCode          = errors.New("code expired")
	ErrStorage              = errors.New("storage failure")
	ErrDelivery             = errors.New("email delivery failure")
)
