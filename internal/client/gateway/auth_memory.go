package gateway

import (
	"context"
	"strings"
	"sync"

	"github.com/dmitrijs2005/gophjournal/internal/client/stream"
	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/google/uuid"
)

type memoryAccount struct {
	id       string
	password string
}

// MemoryAuth is an AuthGateway kept entirely in process.
type MemoryAuth struct {
	mu       sync.Mutex
	accounts map[string]memoryAccount
	users    *userFeed

	// Err, when set, is returned by SignIn and SignUp instead of doing work.
	Err error
}

func NewMemoryAuth() *MemoryAuth {
	return &MemoryAuth{accounts: make(map[string]memoryAccount), users: newUserFeed()}
}

func (a *MemoryAuth) CurrentUserID() string {
	return a.users.get()
}

func (a *MemoryAuth) UserChanges() *stream.Stream[string] {
	return a.users.subscribe()
}

// SetUser switches the signed-in user without credentials, as an external
// session change would.
func (a *MemoryAuth) SetUser(userID string) {
	a.users.set(userID)
}

func (a *MemoryAuth) SignUp(_ context.Context, email, password string) (string, error) {
	a.mu.Lock()
	if a.Err != nil {
		a.mu.Unlock()
		return "", a.Err
	}
	if len(password) < common.MinPasswordLength {
		a.mu.Unlock()
		return "", common.ErrWeakPassword
	}
	key := strings.ToLower(strings.TrimSpace(email))
	if _, ok := a.accounts[key]; ok {
		a.mu.Unlock()
		return "", common.ErrEmailAlreadyInUse
	}
	acc := memoryAccount{id: uuid.NewString(), password: password}
	a.accounts[key] = acc
	a.mu.Unlock()

	a.users.set(acc.id)
	return acc.id, nil
}

func (a *MemoryAuth) SignIn(_ context.Context, email, password string) (string, error) {
	a.mu.Lock()
	if a.Err != nil {
		a.mu.Unlock()
		return "", a.Err
	}
	acc, ok := a.accounts[strings.ToLower(strings.TrimSpace(email))]
	a.mu.Unlock()

	if !ok {
		return "", common.ErrUserNotFound
	}
	if acc.password != password {
		return "", common.ErrInvalidCredentials
	}
	a.users.set(acc.id)
	return acc.id, nil
}

func (a *MemoryAuth) SignOut(context.Context) error {
	a.users.set("")
	return nil
}
