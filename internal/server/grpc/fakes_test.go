package grpc

import (
	"context"
	"strconv"
	"sync"

	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/journal"
	"github.com/dmitrijs2005/gophjournal/internal/logging"
	"github.com/dmitrijs2005/gophjournal/internal/server/services"
)

type fakeUsers struct {
	session *services.Session
	err     error

	gotEmail, gotPassword, gotRefresh string
}

func (f *fakeUsers) SignUp(_ context.Context, email, password string) (*services.Session, error) {
	f.gotEmail, f.gotPassword = email, password
	return f.session, f.err
}

func (f *fakeUsers) SignIn(_ context.Context, email, password string) (*services.Session, error) {
	f.gotEmail, f.gotPassword = email, password
	return f.session, f.err
}

func (f *fakeUsers) RefreshToken(_ context.Context, token string) (*services.Session, error) {
	f.gotRefresh = token
	return f.session, f.err
}

// fakeEntries keeps entries in memory and pushes a snapshot to every
// watcher after each change.
type fakeEntries struct {
	mu       sync.Mutex
	rows     map[string]journal.Entry
	watchers map[int]chan struct{}
	next     int
	nextID   int

	err       error
	url       string
	gotUserID string
}

func newFakeEntries() *fakeEntries {
	return &fakeEntries{rows: make(map[string]journal.Entry), watchers: make(map[int]chan struct{})}
}

func (f *fakeEntries) changed() {
	for _, ch := range f.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (f *fakeEntries) Create(_ context.Context, userID string, e journal.Entry) (journal.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotUserID = userID
	if f.err != nil {
		return journal.Entry{}, f.err
	}
	f.nextID++
	e.ID = "srv-" + strconv.Itoa(f.nextID)
	e.OwnerID = userID
	f.rows[e.ID] = e
	f.changed()
	return e, nil
}

func (f *fakeEntries) Update(_ context.Context, userID string, e journal.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotUserID = userID
	if f.err != nil {
		return f.err
	}
	if old, ok := f.rows[e.ID]; ok && old.OwnerID != userID {
		return common.ErrPermissionDenied
	}
	e.OwnerID = userID
	f.rows[e.ID] = e
	f.changed()
	return nil
}

func (f *fakeEntries) Delete(_ context.Context, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotUserID = userID
	if f.err != nil {
		return f.err
	}
	delete(f.rows, id)
	f.changed()
	return nil
}

func (f *fakeEntries) Get(_ context.Context, userID, id string) (journal.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotUserID = userID
	if f.err != nil {
		return journal.Entry{}, f.err
	}
	e, ok := f.rows[id]
	if !ok {
		return journal.Entry{}, common.ErrNotFound
	}
	return e, nil
}

func (f *fakeEntries) list(userID string) []journal.Entry {
	out := make([]journal.Entry, 0, len(f.rows))
	for _, e := range f.rows {
		if e.OwnerID == userID {
			out = append(out, e)
		}
	}
	journal.SortNewestFirst(out)
	return out
}

func (f *fakeEntries) Watch(ctx context.Context, userID string, send func([]journal.Entry) error) error {
	f.mu.Lock()
	if f.err != nil {
		f.mu.Unlock()
		return f.err
	}
	id := f.next
	f.next++
	ch := make(chan struct{}, 1)
	f.watchers[id] = ch
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		delete(f.watchers, id)
		f.mu.Unlock()
	}()

	for {
		f.mu.Lock()
		list := f.list(userID)
		f.mu.Unlock()
		if err := send(list); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ch:
		}
	}
}

func (f *fakeEntries) Export(_ context.Context, userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotUserID = userID
	return f.url, f.err
}

func newTestServer(u Users, e Entries) *GRPCServer {
	s, _ := NewGRPCServer("127.0.0.1:0", logging.Nop(), u, e, "secret")
	return s
}

func withUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}
