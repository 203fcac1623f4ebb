package handlers

import (
	"context"
	"mime/multipart"

	"github.com/reelvault/backend/internal/models"
)

// UserStore captures the persistence operations required by the auth handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
}

// SessionManager issues, verifies, and revokes authentication tokens.
type SessionManager interface {
	Issue(ctx context.Context, userID string) (models.SessionTokens, error)
	Authenticate(token string) (string, error)
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	Revoke(ctx context.Context, refreshToken string) error
}

// VideoStore captures persistence for video metadata records.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	ListForUser(ctx context.Context, userID string) ([]models.Video, error)
}

// UploadService runs the validated upload-and-persist workflows.
type UploadService interface {
	UploadThumbnail(ctx context.Context, videoID, userID string, file multipart.File, header *multipart.FileHeader) (models.Video, error)
	UploadVideo(ctx context.Context, videoID, userID string, file multipart.File, header *multipart.FileHeader) (models.Video, error)
}
