// Package users persists identity records. Uniqueness of usernames and emails
// is enforced by the storage layer itself, never by check-then-insert.
package users

import (
	"context"

	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
)

type Repository interface {
	// Create inserts user and fills its ID and timestamps. A clash on username
	// or email yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// LockByUsername reads the record and holds it for the surrounding transaction.
	LockByUsername(ctx context.Context, username string) (*models.User, error)
	// Update applies the non-nil fields of patch and refreshes UpdatedAt.
	Update(ctx context.Context, username string, patch models.UserPatch) (*models.User, error)
	Delete(ctx context.Context, username string) error
	// List returns every user in insertion order.
	List(ctx context.Context) ([]*models.User, error)
}
