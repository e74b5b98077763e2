// Package common defines shared constants and sentinel errors used across
// the gophauth server, its transports and the admin tool. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// a user may not delete its own account
	ErrorSelfDeletion = errors.New("self deletion is not allowed")

	// Startup errors: bad algorithm/key pairing, missing key material.
	ErrConfiguration = errors.New("configuration error")

	// Crypto failures at call time.
	ErrEncoding = errors.New("token encoding error")
	ErrDecoding = errors.New("token decoding error")

	// Token lifecycle errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
