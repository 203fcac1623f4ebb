package repositories

import (
	"context"

	"github.com/reelvault/backend/internal/models"
)

// UserRepository exposes data access for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
}
