package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/client/client"
	"github.com/dmitrijs2005/gophjournal/internal/client/config"
	"github.com/dmitrijs2005/gophjournal/internal/client/gateway"
	"github.com/dmitrijs2005/gophjournal/internal/client/livesync"
	"github.com/dmitrijs2005/gophjournal/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophjournal/internal/client/repository"
	"github.com/dmitrijs2005/gophjournal/internal/journal"
	"github.com/dmitrijs2005/gophjournal/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// exporter produces a download link for the user's entries.
type exporter interface {
	Export(ctx context.Context) (string, error)
}

// pinger probes the backend.
type pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	config  *config.Config
	logger  logging.Logger
	repo    repository.Repository
	core    *livesync.Core
	export  exporter
	ping    pinger
	closers []io.Closer
	reader  *bufio.Reader
	out     io.Writer

	mu    sync.Mutex
	mode  Mode
	email string
	shown []journal.Entry
}

// NewApp opens the local session store, connects to the backend and
// restores a saved session, if any.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewText(os.Stderr, c.LogLevel)

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	apiClient, err := client.NewGRPCClient(c.ServerEndpointAddr, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	auth := gateway.NewRemoteAuth(apiClient, metadata.NewSQLiteRepository(db), logger)
	if _, err := auth.Restore(ctx); err != nil {
		logger.Warn(ctx, "cannot restore session", "error", err)
	}
	entries := gateway.NewRemoteEntries(apiClient, logger)

	a := newApp(c, logger, repository.New(auth, entries), entries, apiClient, os.Stdin, os.Stdout)
	a.email = auth.Email(ctx)
	a.closers = []io.Closer{apiClient, db}
	return a, nil
}

func newApp(c *config.Config, l logging.Logger, repo repository.Repository, e exporter, p pinger, in io.Reader, out io.Writer) *App {
	return &App{
		config: c,
		logger: l,
		repo:   repo,
		core:   livesync.New(repo, l),
		export: e,
		ping:   p,
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// Run starts the live entry list and the REPL, and releases everything
// once the user exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		if err := a.core.Run(ctx); err != nil {
			a.logger.Error(ctx, "live sync stopped", "error", err)
		}
	}()
	go func() {
		defer wg.Done()
		a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}()
	go func() {
		defer wg.Done()
		a.watchMessages(ctx)
	}()

	printlnFn("Welcome to the journal CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)

	cancel()
	wg.Wait()

	if err := a.Close(); err != nil {
		a.logger.Error(context.Background(), "close error", "error", err)
	}
}

// Close releases the backend connection and the session store.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) isLoggedIn() bool {
	return a.repo.CurrentUserID() != ""
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mode != mode {
		a.mode = mode
		a.logger.Info(context.Background(), "connectivity changed", "mode", mode)
	}
}

func (a *App) getStatus() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := ""
	if a.isLoggedIn() && a.email != "" {
		s = a.email + " "
	}
	if a.mode != "" {
		s = s + string(a.mode)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// StartOnlineStatusWatcher pings the backend every interval and records
// whether it answered. A non-positive interval disables the watcher.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 || a.ping == nil {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.ping.Ping(pingCtx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}

// watchMessages prints every new message the live entry list publishes.
func (a *App) watchMessages(ctx context.Context) {
	states := a.core.Watch()
	defer states.Close()

	last := ""
	for {
		select {
		case <-ctx.Done():
			return
		case st := <-states.Next():
			if st.Message != "" && st.Message != last {
				printlnFn("!", st.Message)
			}
			last = st.Message
		}
	}
}
