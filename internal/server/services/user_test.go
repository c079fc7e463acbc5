package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/cryptox"
	"github.com/dmitrijs2005/gophjournal/internal/server/auth"
	"github.com/dmitrijs2005/gophjournal/internal/server/config"
	"github.com/dmitrijs2005/gophjournal/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T) (*UserService, *fakeRepoManager, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newSQLMockDB(t)
	rm := &fakeRepoManager{u: newFakeUsers(), r: newFakeRefresh(), e: newFakeEntries()}
	cfg := &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
	}
	return NewUserService(db, rm, cfg), rm, mock
}

func addUser(rm *fakeRepoManager, email, password string) *models.User {
	salt := cryptox.NewSalt()
	u := &models.User{ID: "user-" + email, Email: email, Salt: salt, Verifier: cryptox.DeriveVerifier([]byte(password), salt)}
	rm.u.byEmail[email] = u
	return u
}

func TestSignUp_Success(t *testing.T) {
	s, rm, mock := newUserService(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	sess, err := s.SignUp(context.Background(), "  Alice@Example.com ", "secret1")
	require.NoError(t, err)

	assert.Equal(t, "user-alice@example.com", sess.UserID)
	uid, err := auth.GetUserIDFromToken(sess.AccessToken, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, sess.UserID, uid)
	assert.Contains(t, rm.r.tokens, sess.RefreshToken)

	stored := rm.u.byEmail["alice@example.com"]
	require.NotNil(t, stored)
	assert.True(t, cryptox.CheckPassword([]byte("secret1"), stored.Salt, stored.Verifier))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSignUp_Validation(t *testing.T) {
	s, _, mock := newUserService(t)

	_, err := s.SignUp(context.Background(), "alice@example.com", "12345")
	require.ErrorIs(t, err, common.ErrWeakPassword)

	_, err = s.SignUp(context.Background(), "alice", "secret1")
	require.ErrorIs(t, err, common.ErrInvalidArgument)

	require.NoError(t, mock.ExpectationsWereMet(), "validation happens before the database")
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	s, rm, mock := newUserService(t)
	addUser(rm, "alice@example.com", "secret1")
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.SignUp(context.Background(), "alice@example.com", "other-secret")
	require.ErrorIs(t, err, common.ErrEmailAlreadyInUse)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSignUp_StorageErrors(t *testing.T) {
	s, rm, mock := newUserService(t)
	rm.u.createErr = errBoom{}
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.SignUp(context.Background(), "bob@example.com", "secret1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error creating user")

	rm.u.createErr = nil
	rm.r.createErr = errBoom{}
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err = s.SignUp(context.Background(), "bob@example.com", "secret1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error storing refresh token")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSignIn_Flows(t *testing.T) {
	ctx := context.Background()
	s, rm, _ := newUserService(t)
	u := addUser(rm, "alice@example.com", "secret1")

	_, err := s.SignIn(ctx, "ghost@example.com", "secret1")
	require.ErrorIs(t, err, common.ErrUserNotFound)

	_, err = s.SignIn(ctx, "alice@example.com", "wrong!!")
	require.ErrorIs(t, err, common.ErrInvalidCredentials)

	sess, err := s.SignIn(ctx, "ALICE@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, sess.UserID)
	assert.NotEmpty(t, sess.AccessToken)
	assert.Contains(t, rm.r.tokens, sess.RefreshToken)
	assert.Equal(t, []string{u.ID}, rm.r.purged)
}

func TestSignIn_StorageErrors(t *testing.T) {
	ctx := context.Background()
	s, rm, _ := newUserService(t)
	addUser(rm, "alice@example.com", "secret1")

	rm.u.getErr = errBoom{}
	_, err := s.SignIn(ctx, "alice@example.com", "secret1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error searching user")

	rm.u.getErr = nil
	rm.r.expiredErr = errBoom{}
	_, err = s.SignIn(ctx, "alice@example.com", "secret1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error purging refresh tokens")
}

func TestSignIn_Throttled(t *testing.T) {
	ctx := context.Background()
	s, rm, _ := newUserService(t)
	addUser(rm, "alice@example.com", "secret1")

	for i := 0; i < signInBurst; i++ {
		_, err := s.SignIn(ctx, "alice@example.com", "wrong!!")
		require.ErrorIs(t, err, common.ErrInvalidCredentials)
	}

	_, err := s.SignIn(ctx, "alice@example.com", "secret1")
	require.ErrorIs(t, err, common.ErrRateLimited)

	_, err = s.SignIn(ctx, "ghost@example.com", "x")
	require.ErrorIs(t, err, common.ErrUserNotFound, "other emails are not affected")
}

func TestSignIn_SuccessResetsThrottle(t *testing.T) {
	ctx := context.Background()
	s, rm, _ := newUserService(t)
	addUser(rm, "alice@example.com", "secret1")

	for i := 0; i < signInBurst-1; i++ {
		_, _ = s.SignIn(ctx, "alice@example.com", "wrong!!")
	}
	_, err := s.SignIn(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)

	for i := 0; i < signInBurst-1; i++ {
		_, err := s.SignIn(ctx, "alice@example.com", "wrong!!")
		require.ErrorIs(t, err, common.ErrInvalidCredentials)
	}
}

func TestRefreshToken_Rotates(t *testing.T) {
	s, rm, mock := newUserService(t)
	rm.r.tokens["old"] = &models.RefreshToken{UserID: "u1", Token: "old", Expires: time.Now().Add(time.Minute)}
	mock.ExpectBegin()
	mock.ExpectCommit()

	sess, err := s.RefreshToken(context.Background(), "old")
	require.NoError(t, err)

	assert.Equal(t, "u1", sess.UserID)
	assert.NotEqual(t, "old", sess.RefreshToken)
	assert.NotContains(t, rm.r.tokens, "old")
	assert.Contains(t, rm.r.tokens, sess.RefreshToken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshToken_RedeemsOnce(t *testing.T) {
	ctx := context.Background()
	s, rm, mock := newUserService(t)
	rm.r.tokens["old"] = &models.RefreshToken{UserID: "u1", Token: "old", Expires: time.Now().Add(time.Minute)}

	mock.ExpectBegin()
	mock.ExpectCommit()
	first, err := s.RefreshToken(ctx, "old")
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err = s.RefreshToken(ctx, "old")
	require.ErrorIs(t, err, common.ErrInvalidToken)

	assert.Len(t, rm.r.tokens, 1)
	assert.Contains(t, rm.r.tokens, first.RefreshToken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshToken_Errors(t *testing.T) {
	ctx := context.Background()
	s, rm, mock := newUserService(t)

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := s.RefreshToken(ctx, "unknown")
	require.ErrorIs(t, err, common.ErrInvalidToken)

	rm.r.tokens["stale"] = &models.RefreshToken{UserID: "u1", Expires: time.Now().Add(-time.Minute)}
	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err = s.RefreshToken(ctx, "stale")
	require.ErrorIs(t, err, common.ErrRefreshTokenExpired)

	rm.r.tokens["ok"] = &models.RefreshToken{UserID: "u1", Expires: time.Now().Add(time.Minute)}
	rm.r.createErr = errBoom{}
	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err = s.RefreshToken(ctx, "ok")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error storing refresh token")
	rm.r.createErr = nil

	rm.r.takeErr = errBoom{}
	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err = s.RefreshToken(ctx, "ok")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error redeeming refresh token")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshToken_BeginFails(t *testing.T) {
	s, rm, mock := newUserService(t)
	rm.r.tokens["ok"] = &models.RefreshToken{UserID: "u1", Expires: time.Now().Add(time.Minute)}
	mock.ExpectBegin().WillReturnError(sql.ErrConnDone)

	_, err := s.RefreshToken(context.Background(), "ok")
	require.ErrorIs(t, err, sql.ErrConnDone)
}
