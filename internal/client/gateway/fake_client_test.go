package gateway

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophjournal/internal/client/client"
	"github.com/dmitrijs2005/gophjournal/internal/client/stream"
	"github.com/dmitrijs2005/gophjournal/internal/journal"
)

type fakeClient struct {
	mu sync.Mutex

	session   client.Session
	onSession func(client.Session)

	signSession client.Session
	signErr     error

	lastCreate journal.Entry
	lastUpdate journal.Entry
	lastDelete string
	createErr  error
	updateErr  error
	deleteErr  error
	getResp    journal.Entry
	exportURL  string
	watches    int
	watch      *stream.Stream[[]journal.Entry]
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) Close() error                 { return nil }
func (f *fakeClient) Ping(ctx context.Context) error { return nil }

func (f *fakeClient) SignUp(ctx context.Context, email, password string) (client.Session, error) {
	return f.SignIn(ctx, email, password)
}

func (f *fakeClient) SignIn(context.Context, string, string) (client.Session, error) {
	if f.signErr != nil {
		return client.Session{}, f.signErr
	}
	f.mu.Lock()
	f.session = f.signSession
	f.mu.Unlock()
	return f.signSession, nil
}

func (f *fakeClient) Resume(s client.Session) {
	f.mu.Lock()
	f.session = s
	f.mu.Unlock()
}

func (f *fakeClient) Session() client.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session
}

func (f *fakeClient) Forget() {
	f.mu.Lock()
	f.session = client.Session{}
	f.mu.Unlock()
}

func (f *fakeClient) OnSessionChange(fn func(client.Session)) { f.onSession = fn }

func (f *fakeClient) CreateEntry(_ context.Context, e journal.Entry) (journal.Entry, error) {
	f.lastCreate = e
	if f.createErr != nil {
		return journal.Entry{}, f.createErr
	}
	e.ID = "srv-id"
	return e, nil
}

func (f *fakeClient) UpdateEntry(_ context.Context, e journal.Entry) error {
	f.lastUpdate = e
	return f.updateErr
}

func (f *fakeClient) DeleteEntry(_ context.Context, id string) error {
	f.lastDelete = id
	return f.deleteErr
}

func (f *fakeClient) GetEntry(context.Context, string) (journal.Entry, error) {
	return f.getResp, nil
}

func (f *fakeClient) ExportEntries(context.Context) (string, error) {
	return f.exportURL, nil
}

func (f *fakeClient) WatchEntries(context.Context) *stream.Stream[[]journal.Entry] {
	f.watches++
	return f.watch
}
