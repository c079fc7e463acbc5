// Package users stores accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/gophjournal/internal/server/models"
)

type Repository interface {
	// Create inserts user and fills its ID. A taken email yields
	// common.ErrEmailAlreadyInUse.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// GetByEmail returns common.ErrNotFound when no account uses email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
