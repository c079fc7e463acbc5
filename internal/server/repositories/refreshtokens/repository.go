// Package refreshtokens stores the server side of refresh tokens.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/server/models"
)

type Repository interface {
	// Create stores token for userID, valid until now+validity.
	Create(ctx context.Context, userID string, token string, validity time.Duration) error

	// Take deletes token and returns what it held, so a token can be
	// redeemed once. It returns common.ErrNotFound when token is unknown or
	// was already taken.
	Take(ctx context.Context, token string) (*models.RefreshToken, error)

	// DeleteExpired removes userID's tokens that expired before now.
	DeleteExpired(ctx context.Context, userID string, now time.Time) error
}
