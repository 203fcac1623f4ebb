package repositories

import (
	"context"

	"github.com/reelvault/backend/internal/models"
)

// VideoRepository exposes data access for video metadata records.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) error
	Get(ctx context.Context, id string) (models.Video, error)
	Update(ctx context.Context, video models.Video) error
	ListForUser(ctx context.Context, userID string) ([]models.Video, error)
}
