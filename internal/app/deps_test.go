package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reelvault/backend/internal/config"
)

type fakePool struct{}

func (fakePool) Acquire(context.Context) (*pgxpool.Conn, error) {
	return nil, errors.New("not implemented")
}

func (fakePool) Close() {}

func TestBuildDependenciesLocalBackend(t *testing.T) {
	cfg := config.Config{
		JWTSecret:       "test-secret",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
		StorageBackend:  config.BackendLocal,
		LocalStore: config.LocalStoreConfig{
			AssetRoot: filepath.Join(t.TempDir(), "assets"),
			BaseURL:   "http://localhost:8080",
		},
	}

	deps, err := buildDependencies(context.Background(), fakePool{}, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if deps.Users == nil {
		t.Fatal("expected user repository to be configured")
	}
	if deps.Sessions == nil {
		t.Fatal("expected session manager to be configured")
	}
	if deps.Videos == nil {
		t.Fatal("expected video repository to be configured")
	}
	if deps.Uploads == nil {
		t.Fatal("expected upload service to be configured")
	}
	if deps.LoginLimiter == nil {
		t.Fatal("expected login rate limiter to be configured")
	}
	if deps.AssetDir == "" {
		t.Fatal("expected asset directory for the local backend")
	}
}

func TestBuildDependenciesS3Backend(t *testing.T) {
	cfg := config.Config{
		JWTSecret:       "test-secret",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
		StorageBackend:  config.BackendS3,
		ObjectStore: config.ObjectStoreConfig{
			Bucket:     "test-bucket",
			Endpoint:   "http://localhost:9000",
			Region:     "us-east-1",
			PresignTTL: time.Hour,
		},
	}

	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	deps, err := buildDependencies(context.Background(), fakePool{}, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if deps.Uploads == nil {
		t.Fatal("expected upload service to be configured")
	}
	if deps.AssetDir != "" {
		t.Fatal("expected no asset directory for the s3 backend")
	}
}

func TestBuildDependenciesUnknownBackend(t *testing.T) {
	cfg := config.Config{
		JWTSecret:      "test-secret",
		StorageBackend: "tape",
	}

	if _, err := buildDependencies(context.Background(), fakePool{}, cfg); err == nil {
		t.Fatal("expected error for unknown storage backend")
	}
}
