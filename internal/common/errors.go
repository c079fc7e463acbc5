// Package common defines shared constants and sentinel errors used across
// client and server layers of GophJournal. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Store-level errors.
	ErrNotFound           = errors.New("not found")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrNetworkUnavailable = errors.New("network unavailable")

	// Auth errors.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrWeakPassword       = errors.New("weak password")
	ErrEmailAlreadyInUse  = errors.New("email already in use")
	ErrRateLimited        = errors.New("too many attempts")

	// Anything the caller cannot classify.
	ErrUnknown = errors.New("unknown error")

	// Invalid or malformed token.
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
