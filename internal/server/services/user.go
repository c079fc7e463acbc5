// Package services holds the server's business logic. UserService manages
// accounts and tokens; EntryService manages journal entries.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/cryptox"
	"github.com/dmitrijs2005/gophjournal/internal/dbx"
	"github.com/dmitrijs2005/gophjournal/internal/server/auth"
	"github.com/dmitrijs2005/gophjournal/internal/server/config"
	"github.com/dmitrijs2005/gophjournal/internal/server/models"
	"github.com/dmitrijs2005/gophjournal/internal/server/repositories/repomanager"
)

// Sign-in throttling: a burst of signInBurst attempts, then one per signInEvery.
const (
	signInBurst = 5
	signInEvery = 12 * time.Second
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Session is what a successful sign-up, sign-in or refresh returns.
type Session struct {
	UserID string
	TokenPair
}

type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	limiter                      *attemptLimiter
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		limiter:                      newAttemptLimiter(signInEvery, signInBurst),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp creates an account and signs it in.
func (s *UserService) SignUp(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if !strings.Contains(email, "@") {
		return nil, common.ErrInvalidArgument
	}
	if len(password) < common.MinPasswordLength {
		return nil, common.ErrWeakPassword
	}

	salt := cryptox.NewSalt()
	user := &models.User{Email: email, Salt: salt, Verifier: cryptox.DeriveVerifier([]byte(password), salt)}

	session, err := dbx.InTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) (*Session, error) {
		u, err := s.repomanager.Users(tx).Create(ctx, user)
		if err != nil {
			return nil, err
		}
		return s.newSession(ctx, u.ID, tx)
	})
	if err != nil {
		if errors.Is(err, common.ErrEmailAlreadyInUse) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return session, nil
}

// SignIn checks the password and issues a new token pair. Repeated attempts
// for one email are throttled.
func (s *UserService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if !s.limiter.Allow(email) {
		return nil, common.ErrRateLimited
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}
	if !cryptox.CheckPassword([]byte(password), user.Salt, user.Verifier) {
		return nil, common.ErrInvalidCredentials
	}
	s.limiter.Reset(email)

	if err := s.repomanager.RefreshTokens(s.db).DeleteExpired(ctx, user.ID, time.Now()); err != nil {
		return nil, fmt.Errorf("error purging refresh tokens: %w", err)
	}
	return s.newSession(ctx, user.ID, s.db)
}

// RefreshToken redeems refreshToken and returns a fresh pair. A token is
// taken and replaced in one transaction, so it works once even under
// concurrent calls. Unknown or already redeemed tokens yield
// common.ErrInvalidToken, expired ones common.ErrRefreshTokenExpired.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*Session, error) {
	return dbx.InTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) (*Session, error) {
		token, err := s.repomanager.RefreshTokens(tx).Take(ctx, refreshToken)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return nil, common.ErrInvalidToken
			}
			return nil, fmt.Errorf("error redeeming refresh token: %w", err)
		}
		if token.Expires.Before(time.Now()) {
			return nil, common.ErrRefreshTokenExpired
		}
		return s.newSession(ctx, token.UserID, tx)
	})
}

func (s *UserService) newSession(ctx context.Context, userID string, tx dbx.DBTX) (*Session, error) {
	access, err := auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("error generating access token: %w", err)
	}
	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, fmt.Errorf("error generating refresh token: %w", err)
	}
	if err := s.repomanager.RefreshTokens(tx).Create(ctx, userID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, fmt.Errorf("error storing refresh token: %w", err)
	}
	return &Session{UserID: userID, TokenPair: TokenPair{AccessToken: access, RefreshToken: refresh}}, nil
}
