package app

import (
	"context"
	"fmt"
	"time"

	"github.com/reelvault/backend/internal/auth"
	"github.com/reelvault/backend/internal/config"
	"github.com/reelvault/backend/internal/db"
	"github.com/reelvault/backend/internal/handlers"
	"github.com/reelvault/backend/internal/middleware"
	"github.com/reelvault/backend/internal/repositories"
	"github.com/reelvault/backend/internal/storage"
	"github.com/reelvault/backend/internal/uploads"
)

// buildDependencies wires together concrete implementations used by the HTTP handlers.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config) (handlers.Dependencies, error) {
	videoRepo := repositories.NewPostgresVideoRepository(pool)
	tokenStore := repositories.NewPostgresTokenStore(pool)
	sessions := auth.NewManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, tokenStore)

	assetStorage, assetDir, err := buildStorage(ctx, cfg)
	if err != nil {
		return handlers.Dependencies{}, err
	}

	uploadService := &uploads.Service{
		Videos:  videoRepo,
		Storage: assetStorage,
		Policy:  uploads.PolicyFromConfig(cfg),
		TempDir: cfg.Uploads.TempDir,
	}

	return handlers.Dependencies{
		Users:        repositories.NewPostgresUserRepository(pool),
		Sessions:     sessions,
		Videos:       videoRepo,
		Uploads:      uploadService,
		LoginLimiter: middleware.NewIPRateLimiter(10, time.Minute, 5, 10*time.Minute),
		AssetDir:     assetDir,
	}, nil
}

// buildStorage selects the asset storage backend from configuration. The
// returned directory is non-empty only for the local backend, which serves
// assets from disk.
func buildStorage(ctx context.Context, cfg config.Config) (storage.AssetStorage, string, error) {
	switch cfg.StorageBackend {
	case config.BackendS3:
		s3Store, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
		if err != nil {
			return nil, "", fmt.Errorf("configure s3 storage: %w", err)
		}
		return s3Store, "", nil
	case config.BackendLocal:
		localStore, err := storage.NewLocalStorage(cfg.LocalStore)
		if err != nil {
			return nil, "", fmt.Errorf("configure local storage: %w", err)
		}
		return localStore, localStore.Root(), nil
	default:
		return nil, "", fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
