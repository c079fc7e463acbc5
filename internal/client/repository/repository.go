// Package repository is the single seam between the client core and the
// backend: it joins the auth gateway and the entry store so the sync core
// and the form controller can be tested against fakes.
package repository

import (
	"context"

	"github.com/dmitrijs2005/gophjournal/internal/client/gateway"
	"github.com/dmitrijs2005/gophjournal/internal/client/stream"
	"github.com/dmitrijs2005/gophjournal/internal/journal"
)

type Repository interface {
	gateway.AuthGateway
	gateway.EntryStore
}

type repository struct {
	auth    gateway.AuthGateway
	entries gateway.EntryStore
}

func New(auth gateway.AuthGateway, entries gateway.EntryStore) Repository {
	return &repository{auth: auth, entries: entries}
}

// NewMemory returns a repository over fresh in-memory gateways, and the
// gateways themselves for driving them.
func NewMemory() (Repository, *gateway.MemoryAuth, *gateway.MemoryEntries) {
	auth := gateway.NewMemoryAuth()
	entries := gateway.NewMemoryEntries()
	return New(auth, entries), auth, entries
}

func (r *repository) CurrentUserID() string { return r.auth.CurrentUserID() }

func (r *repository) UserChanges() *stream.Stream[string] { return r.auth.UserChanges() }

func (r *repository) SignIn(ctx context.Context, email, password string) (string, error) {
	return r.auth.SignIn(ctx, email, password)
}

func (r *repository) SignUp(ctx context.Context, email, password string) (string, error) {
	return r.auth.SignUp(ctx, email, password)
}

func (r *repository) SignOut(ctx context.Context) error { return r.auth.SignOut(ctx) }

func (r *repository) Observe(ctx context.Context, ownerID string) *stream.Stream[[]journal.Entry] {
	return r.entries.Observe(ctx, ownerID)
}

func (r *repository) Create(ctx context.Context, ownerID string, e journal.Entry) (journal.Entry, error) {
	return r.entries.Create(ctx, ownerID, e)
}

func (r *repository) Update(ctx context.Context, ownerID string, e journal.Entry) error {
	return r.entries.Update(ctx, ownerID, e)
}

func (r *repository) Delete(ctx context.Context, entryID string) error {
	return r.entries.Delete(ctx, entryID)
}

func (r *repository) Get(ctx context.Context, ownerID, entryID string) (journal.Entry, error) {
	return r.entries.Get(ctx, ownerID, entryID)
}
