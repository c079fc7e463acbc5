package gateway

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophjournal/internal/client/client"
	"github.com/dmitrijs2005/gophjournal/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophjournal/internal/client/stream"
	"github.com/dmitrijs2005/gophjournal/internal/logging"
)

// Metadata keys of the persisted session.
const (
	keyUserID       = "user_id"
	keyEmail        = "email"
	keyRefreshToken = "refresh_token"
)

// RemoteAuth signs in against the backend and keeps the session in the
// local metadata store so it survives restarts.
type RemoteAuth struct {
	client client.Client
	meta   metadata.Repository
	logger logging.Logger
	users  *userFeed
}

func NewRemoteAuth(c client.Client, meta metadata.Repository, logger logging.Logger) *RemoteAuth {
	a := &RemoteAuth{
		client: c,
		meta:   meta,
		logger: logger.With("module", "auth"),
		users:  newUserFeed(),
	}
	c.OnSessionChange(a.persistRotated)
	return a
}

// Restore reloads a saved session. It returns the restored user id, or ""
// when there is nothing to restore.
func (a *RemoteAuth) Restore(ctx context.Context) (string, error) {
	userID, err := a.meta.Get(ctx, keyUserID)
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}
	refreshToken, err := a.meta.Get(ctx, keyRefreshToken)
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}
	if userID == "" || refreshToken == "" {
		return "", nil
	}

	a.client.Resume(client.Session{UserID: userID, RefreshToken: refreshToken})
	a.users.set(userID)
	a.logger.Info(ctx, "session restored", "user_id", userID)
	return userID, nil
}

// Email returns the address of the saved session, if any.
func (a *RemoteAuth) Email(ctx context.Context) string {
	email, err := a.meta.Get(ctx, keyEmail)
	if err != nil {
		return ""
	}
	return email
}

func (a *RemoteAuth) CurrentUserID() string {
	return a.users.get()
}

func (a *RemoteAuth) UserChanges() *stream.Stream[string] {
	return a.users.subscribe()
}

func (a *RemoteAuth) SignIn(ctx context.Context, email, password string) (string, error) {
	sess, err := a.client.SignIn(ctx, email, password)
	if err != nil {
		a.logger.Warn(ctx, "sign in failed", "email", email, "error", err)
		return "", err
	}
	return a.start(ctx, email, sess)
}

func (a *RemoteAuth) SignUp(ctx context.Context, email, password string) (string, error) {
	sess, err := a.client.SignUp(ctx, email, password)
	if err != nil {
		a.logger.Warn(ctx, "sign up failed", "email", email, "error", err)
		return "", err
	}
	return a.start(ctx, email, sess)
}

func (a *RemoteAuth) start(ctx context.Context, email string, sess client.Session) (string, error) {
	if err := a.save(ctx, email, sess); err != nil {
		a.logger.Error(ctx, "cannot persist session", "error", err)
	}
	a.users.set(sess.UserID)
	a.logger.Info(ctx, "signed in", "user_id", sess.UserID)
	return sess.UserID, nil
}

func (a *RemoteAuth) SignOut(ctx context.Context) error {
	a.client.Forget()
	if err := a.meta.Delete(ctx, keyUserID, keyEmail, keyRefreshToken); err != nil {
		a.logger.Error(ctx, "cannot clear session", "error", err)
	}
	a.users.set("")
	a.logger.Info(ctx, "signed out")
	return nil
}

func (a *RemoteAuth) save(ctx context.Context, email string, sess client.Session) error {
	if err := a.meta.Set(ctx, keyUserID, sess.UserID); err != nil {
		return err
	}
	if err := a.meta.Set(ctx, keyEmail, email); err != nil {
		return err
	}
	return a.meta.Set(ctx, keyRefreshToken, sess.RefreshToken)
}

func (a *RemoteAuth) persistRotated(sess client.Session) {
	ctx := context.Background()
	if a.users.get() != sess.UserID {
		return
	}
	if err := a.meta.Set(ctx, keyRefreshToken, sess.RefreshToken); err != nil {
		a.logger.Error(ctx, "cannot persist rotated token", "error", err)
	}
}
