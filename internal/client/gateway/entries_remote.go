package gateway

import (
	"context"

	"github.com/dmitrijs2005/gophjournal/internal/client/client"
	"github.com/dmitrijs2005/gophjournal/internal/client/stream"
	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/journal"
	"github.com/dmitrijs2005/gophjournal/internal/logging"
)

// RemoteEntries is the EntryStore backed by the journal service. The
// service scopes every call to the user of the current session.
type RemoteEntries struct {
	client client.Client
	logger logging.Logger
}

func NewRemoteEntries(c client.Client, logger logging.Logger) *RemoteEntries {
	return &RemoteEntries{client: c, logger: logger.With("module", "entries")}
}

// ownerMatches reports whether owner is the user the session belongs to.
func (r *RemoteEntries) ownerMatches(owner string) bool {
	return owner != "" && r.client.Session().UserID == owner
}

func (r *RemoteEntries) Observe(ctx context.Context, ownerID string) *stream.Stream[[]journal.Entry] {
	if !r.ownerMatches(ownerID) {
		return stream.Failed[[]journal.Entry](common.ErrPermissionDenied)
	}
	r.logger.Debug(ctx, "observing entries", "owner", ownerID)
	return r.client.WatchEntries(ctx)
}

func (r *RemoteEntries) Create(ctx context.Context, ownerID string, e journal.Entry) (journal.Entry, error) {
	if !r.ownerMatches(ownerID) {
		return journal.Entry{}, common.ErrPermissionDenied
	}
	e.ID = ""
	e.OwnerID = ownerID
	if e.CreatedAt <= 0 {
		e.CreatedAt = journal.NowMillis()
	}
	created, err := r.client.CreateEntry(ctx, e)
	if err != nil {
		r.logger.Warn(ctx, "create failed", "error", err)
		return journal.Entry{}, err
	}
	return created, nil
}

func (r *RemoteEntries) Update(ctx context.Context, ownerID string, e journal.Entry) error {
	if e.ID == "" {
		return common.ErrInvalidArgument
	}
	if !r.ownerMatches(ownerID) {
		return common.ErrPermissionDenied
	}
	e.OwnerID = ownerID
	if err := r.client.UpdateEntry(ctx, e); err != nil {
		r.logger.Warn(ctx, "update failed", "id", e.ID, "error", err)
		return err
	}
	return nil
}

func (r *RemoteEntries) Delete(ctx context.Context, entryID string) error {
	if err := r.client.DeleteEntry(ctx, entryID); err != nil {
		r.logger.Warn(ctx, "delete failed", "id", entryID, "error", err)
		return err
	}
	return nil
}

func (r *RemoteEntries) Get(ctx context.Context, ownerID, entryID string) (journal.Entry, error) {
	if !r.ownerMatches(ownerID) {
		return journal.Entry{}, common.ErrPermissionDenied
	}
	return r.client.GetEntry(ctx, entryID)
}

// Export uploads a dump of the user's entries and returns a download link.
func (r *RemoteEntries) Export(ctx context.Context) (string, error) {
	return r.client.ExportEntries(ctx)
}
