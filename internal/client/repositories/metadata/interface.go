// Package metadata stores small key/value settings in the client's local
// database. The session survives restarts through it.
package metadata

import "context"

type Repository interface {
	// Get returns "" and no error when key is absent.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, keys ...string) error
}
