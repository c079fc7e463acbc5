// Package gateway defines the two backend contracts the client core depends
// on, the authentication gateway and the entry store gateway, with a
// network implementation of each and in-memory implementations.
package gateway

import (
	"context"

	"github.com/dmitrijs2005/gophjournal/internal/client/stream"
	"github.com/dmitrijs2005/gophjournal/internal/journal"
)

// AuthGateway exposes the signed-in user. An empty user id means nobody is
// signed in.
type AuthGateway interface {
	// CurrentUserID is a best-effort synchronous snapshot.
	CurrentUserID() string
	// UserChanges emits the current user immediately and then every change.
	// It never completes; each subscriber gets its own stream.
	UserChanges() *stream.Stream[string]
	SignIn(ctx context.Context, email, password string) (string, error)
	SignUp(ctx context.Context, email, password string) (string, error)
	// SignOut always succeeds locally.
	SignOut(ctx context.Context) error
}

// EntryStore is the document store holding entries.
type EntryStore interface {
	// Observe opens a live query of owner's entries, newest first. Each value
	// is a full replacement list. The stream never completes on its own; the
	// caller must Close it.
	Observe(ctx context.Context, ownerID string) *stream.Stream[[]journal.Entry]
	// Create stores e for owner, assigning the id and, when CreatedAt is not
	// positive, the creation time.
	Create(ctx context.Context, ownerID string, e journal.Entry) (journal.Entry, error)
	// Update overwrites title and body of the existing entry e.ID.
	Update(ctx context.Context, ownerID string, e journal.Entry) error
	// Delete removes the entry. Deleting a missing entry is not an error.
	Delete(ctx context.Context, entryID string) error
	Get(ctx context.Context, ownerID, entryID string) (journal.Entry, error)
}
