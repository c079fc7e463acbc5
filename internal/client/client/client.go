package client

import (
	"context"

	"github.com/dmitrijs2005/gophjournal/internal/client/stream"
	"github.com/dmitrijs2005/gophjournal/internal/journal"
)

// Session is what the client needs to resume after a restart.
type Session struct {
	UserID       string
	RefreshToken string
}

type Client interface {
	Close() error
	Ping(ctx context.Context) error

	SignUp(ctx context.Context, email, password string) (Session, error)
	SignIn(ctx context.Context, email, password string) (Session, error)
	// Resume installs a previously issued session. The access token is
	// obtained lazily on the next call.
	Resume(s Session)
	// Session returns the current session; the refresh token rotates.
	Session() Session
	Forget()
	// OnSessionChange registers a callback run after every token rotation.
	OnSessionChange(fn func(Session))

	CreateEntry(ctx context.Context, e journal.Entry) (journal.Entry, error)
	UpdateEntry(ctx context.Context, e journal.Entry) error
	DeleteEntry(ctx context.Context, id string) error
	GetEntry(ctx context.Context, id string) (journal.Entry, error)
	ExportEntries(ctx context.Context) (string, error)
	WatchEntries(ctx context.Context) *stream.Stream[[]journal.Entry]
}
