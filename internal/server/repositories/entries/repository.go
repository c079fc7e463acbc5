package entries

import (
	"context"

	"github.com/dmitrijs2005/gophjournal/internal/journal"
)

type Repository interface {
	// Upsert inserts e or overwrites it when e.OwnerID owns the stored row.
	// A row owned by someone else yields common.ErrPermissionDenied.
	Upsert(ctx context.Context, e journal.Entry) error
	// Delete removes userID's entry id. Missing rows are not an error.
	Delete(ctx context.Context, userID, id string) error
	Get(ctx context.Context, userID, id string) (journal.Entry, error)
	// List returns userID's entries, newest first.
	List(ctx context.Context, userID string) ([]journal.Entry, error)
}
