package common

import (
	"context"
	"errors"
)

var messages = []struct {
	err error
	msg string
}{
	{ErrNetworkUnavailable, "Network unavailable. Check your connection and try again."},
	{ErrPermissionDenied, "You do not have access to this entry."},
	{ErrNotFound, "Entry not found."},
	{ErrInvalidArgument, "The request was rejected as invalid."},
	{ErrInvalidCredentials, "Wrong email or password."},
	{ErrUserNotFound, "No account exists for this email."},
	{ErrWeakPassword, "Password must be at least 6 characters."},
	{ErrEmailAlreadyInUse, "An account with this email already exists."},
	{ErrRateLimited, "Too many attempts. Try again later."},
	{ErrRefreshTokenExpired, "Session expired. Please sign in again."},
	{ErrTokenExpired, "Session expired. Please sign in again."},
	{ErrInvalidToken, "Session is invalid. Please sign in again."},
}

// Message returns a short human-readable description of err suitable for
// showing to the user. Nil yields an empty string.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.Canceled) {
		return "Operation cancelled."
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Operation timed out."
	}
	for _, m := range messages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return "Something went wrong. Please try again."
}
