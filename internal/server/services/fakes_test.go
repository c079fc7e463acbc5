package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/dbx"
	"github.com/dmitrijs2005/gophjournal/internal/journal"
	"github.com/dmitrijs2005/gophjournal/internal/server/models"
	"github.com/dmitrijs2005/gophjournal/internal/server/repositories/entries"
	"github.com/dmitrijs2005/gophjournal/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/gophjournal/internal/server/repositories/users"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

type fakeUsersRepo struct {
	byEmail   map[string]*models.User
	createErr error
	getErr    error
}

func newFakeUsers() *fakeUsersRepo {
	return &fakeUsersRepo{byEmail: make(map[string]*models.User)}
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return nil, common.ErrEmailAlreadyInUse
	}
	u.ID = "user-" + u.Email
	f.byEmail[u.Email] = u
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrNotFound
	}
	return u, nil
}

type fakeRefreshRepo struct {
	tokens map[string]*models.RefreshToken

	takeErr    error
	createErr  error
	expiredErr error
	purged     []string
}

func newFakeRefresh() *fakeRefreshRepo {
	return &fakeRefreshRepo{tokens: make(map[string]*models.RefreshToken)}
}

func (f *fakeRefreshRepo) Create(_ context.Context, userID string, token string, validity time.Duration) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.tokens[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (f *fakeRefreshRepo) Take(_ context.Context, token string) (*models.RefreshToken, error) {
	if f.takeErr != nil {
		return nil, f.takeErr
	}
	t, ok := f.tokens[token]
	if !ok {
		return nil, common.ErrNotFound
	}
	delete(f.tokens, token)
	return t, nil
}

func (f *fakeRefreshRepo) DeleteExpired(_ context.Context, userID string, _ time.Time) error {
	f.purged = append(f.purged, userID)
	return f.expiredErr
}

type fakeEntriesRepo struct {
	mu       sync.Mutex
	rows     map[string]journal.Entry
	listErr  error
	writeErr error
}

func newFakeEntries() *fakeEntriesRepo {
	return &fakeEntriesRepo{rows: make(map[string]journal.Entry)}
}

func (f *fakeEntriesRepo) Upsert(_ context.Context, e journal.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	if old, ok := f.rows[e.ID]; ok && old.OwnerID != e.OwnerID {
		return common.ErrPermissionDenied
	}
	f.rows[e.ID] = e
	return nil
}

func (f *fakeEntriesRepo) Delete(_ context.Context, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	if old, ok := f.rows[id]; ok && old.OwnerID == userID {
		delete(f.rows, id)
	}
	return nil
}

func (f *fakeEntriesRepo) Get(_ context.Context, userID, id string) (journal.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.rows[id]
	if !ok {
		return journal.Entry{}, common.ErrNotFound
	}
	if e.OwnerID != userID {
		return journal.Entry{}, common.ErrPermissionDenied
	}
	return e, nil
}

func (f *fakeEntriesRepo) List(_ context.Context, userID string) ([]journal.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]journal.Entry, 0)
	for _, e := range f.rows {
		if e.OwnerID == userID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	journal.SortNewestFirst(out)
	return out, nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	r *fakeRefreshRepo
	e *fakeEntriesRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return m.u }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.r }
func (m *fakeRepoManager) Entries(dbx.DBTX) entries.Repository             { return m.e }
