package repositories

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/cockroachdb/cockroach-go/v2/testserver"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reelvault/backend/internal/auth"
	"github.com/reelvault/backend/internal/models"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	server, err := testserver.NewTestServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "start cockroach test server: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, server.PGURL().String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to cockroach test server: %v\n", err)
		server.Stop()
		os.Exit(1)
	}

	if err := applyMigrations(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "apply migrations: %v\n", err)
		pool.Close()
		server.Stop()
		os.Exit(1)
	}

	testPool = pool

	code := m.Run()

	pool.Close()
	server.Stop()

	os.Exit(code)
}

func TestPostgresUserRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	repo := NewPostgresUserRepository(testPool)

	user := models.User{
		ID:        uuid.NewString(),
		Email:     "alice@example.com",
		Password:  "secret-hash",
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
		UpdatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	dup := models.User{
		ID:        uuid.NewString(),
		Email:     user.Email,
		Password:  "another-hash",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := repo.Create(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict when creating duplicate email, got %v", err)
	}

	fetched, err := repo.FindByEmail(ctx, user.Email)
	if err != nil {
		t.Fatalf("find by email: %v", err)
	}

	if fetched.ID != user.ID || fetched.Email != user.Email || fetched.Password != user.Password {
		t.Fatalf("unexpected user fetched: %+v", fetched)
	}

	if _, err := repo.FindByEmail(ctx, "missing@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown email, got %v", err)
	}
}

func TestPostgresVideoRepository_CreateGetAndUpdate(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	owner := createTestUser(t, userRepo, "owner@example.com")

	repo := NewPostgresVideoRepository(testPool)

	video := models.Video{
		ID:          uuid.NewString(),
		Title:       "First Upload",
		Description: "A short clip",
		UserID:      owner.ID,
		CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
		UpdatedAt:   time.Now().UTC().Truncate(time.Millisecond),
	}

	if err := repo.Create(ctx, video); err != nil {
		t.Fatalf("create video: %v", err)
	}

	if err := repo.Create(ctx, video); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict creating duplicate id, got %v", err)
	}

	orphan := video
	orphan.ID = uuid.NewString()
	orphan.UserID = uuid.NewString()
	if err := repo.Create(ctx, orphan); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown owner, got %v", err)
	}

	fetched, err := repo.Get(ctx, video.ID)
	if err != nil {
		t.Fatalf("get video: %v", err)
	}
	if fetched.Title != video.Title || fetched.Description != video.Description || fetched.UserID != owner.ID {
		t.Fatalf("unexpected video fetched: %+v", fetched)
	}
	if fetched.ThumbnailURL != "" || fetched.VideoURL != "" || fetched.FileSize != 0 {
		t.Fatalf("expected empty media fields on a fresh record, got %+v", fetched)
	}

	updated := fetched
	updated.ThumbnailURL = "http://localhost:8080/assets/thumbnails/" + video.ID + ".png"
	updated.VideoURL = "http://localhost:8080/assets/videos/abc123.mp4"
	updated.FileSize = 2048
	updated.ContentType = "video/mp4"
	updated.UpdatedAt = time.Now().UTC().Add(time.Minute)

	if err := repo.Update(ctx, updated); err != nil {
		t.Fatalf("update video: %v", err)
	}

	fetched, err = repo.Get(ctx, video.ID)
	if err != nil {
		t.Fatalf("get video after update: %v", err)
	}
	if fetched.ThumbnailURL != updated.ThumbnailURL || fetched.VideoURL != updated.VideoURL {
		t.Fatalf("expected media URLs to persist, got %+v", fetched)
	}
	if fetched.FileSize != updated.FileSize || fetched.ContentType != updated.ContentType {
		t.Fatalf("expected size and content type to persist, got %+v", fetched)
	}

	missing := updated
	missing.ID = uuid.NewString()
	if err := repo.Update(ctx, missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound updating missing video, got %v", err)
	}

	if _, err := repo.Get(ctx, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown video, got %v", err)
	}
}

func TestPostgresVideoRepository_ListForUser(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	owner := createTestUser(t, userRepo, "owner@example.com")
	other := createTestUser(t, userRepo, "other@example.com")

	repo := NewPostgresVideoRepository(testPool)

	baseTime := time.Now().UTC().Add(-time.Hour)
	first := models.Video{
		ID:        uuid.NewString(),
		Title:     "Oldest",
		UserID:    owner.ID,
		CreatedAt: baseTime,
		UpdatedAt: baseTime,
	}
	second := models.Video{
		ID:        uuid.NewString(),
		Title:     "Newest",
		UserID:    owner.ID,
		CreatedAt: baseTime.Add(10 * time.Minute),
		UpdatedAt: baseTime.Add(10 * time.Minute),
	}
	foreign := models.Video{
		ID:        uuid.NewString(),
		Title:     "Someone Else",
		UserID:    other.ID,
		CreatedAt: baseTime.Add(20 * time.Minute),
		UpdatedAt: baseTime.Add(20 * time.Minute),
	}

	for _, video := range []models.Video{first, second, foreign} {
		if err := repo.Create(ctx, video); err != nil {
			t.Fatalf("create video %s: %v", video.ID, err)
		}
	}

	videos, err := repo.ListForUser(ctx, owner.ID)
	if err != nil {
		t.Fatalf("list videos: %v", err)
	}

	if len(videos) != 2 {
		t.Fatalf("expected 2 videos for owner, got %d", len(videos))
	}
	if videos[0].ID != second.ID || videos[1].ID != first.ID {
		t.Fatalf("unexpected ordering: %+v", videos)
	}
}

func TestPostgresTokenStore_SaveFindAndRevoke(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	user := createTestUser(t, userRepo, "owner@example.com")

	store := NewPostgresTokenStore(testPool)
	now := time.Now().UTC().Truncate(time.Millisecond)
	token := models.RefreshToken{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: now.Add(24 * time.Hour),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := store.Save(ctx, token); err != nil {
		t.Fatalf("save token: %v", err)
	}

	loaded, err := store.Find(ctx, token.Token)
	if err != nil {
		t.Fatalf("find token: %v", err)
	}
	if loaded.UserID != user.ID || loaded.RevokedAt != nil {
		t.Fatalf("unexpected token loaded: %+v", loaded)
	}
	if !timesClose(loaded.ExpiresAt, token.ExpiresAt, time.Millisecond) {
		t.Fatalf("expected expiry %v, got %v", token.ExpiresAt, loaded.ExpiresAt)
	}

	extended := token
	extended.ExpiresAt = token.ExpiresAt.Add(48 * time.Hour)
	extended.UpdatedAt = now.Add(time.Minute)
	if err := store.Save(ctx, extended); err != nil {
		t.Fatalf("update token: %v", err)
	}

	loaded, err = store.Find(ctx, token.Token)
	if err != nil {
		t.Fatalf("find token after update: %v", err)
	}
	if !timesClose(loaded.ExpiresAt, extended.ExpiresAt, time.Millisecond) {
		t.Fatalf("expected extended expiry, got %v", loaded.ExpiresAt)
	}

	revokedAt := now.Add(time.Hour)
	if err := store.Revoke(ctx, token.Token, revokedAt); err != nil {
		t.Fatalf("revoke token: %v", err)
	}

	loaded, err = store.Find(ctx, token.Token)
	if err != nil {
		t.Fatalf("find token after revoke: %v", err)
	}
	if loaded.RevokedAt == nil || !timesClose(*loaded.RevokedAt, revokedAt, time.Millisecond) {
		t.Fatalf("expected revoked_at %v, got %v", revokedAt, loaded.RevokedAt)
	}

	// Revoking twice keeps the original revocation time.
	if err := store.Revoke(ctx, token.Token, revokedAt.Add(time.Hour)); err != nil {
		t.Fatalf("revoke token twice: %v", err)
	}
	loaded, err = store.Find(ctx, token.Token)
	if err != nil {
		t.Fatalf("find token after second revoke: %v", err)
	}
	if !timesClose(*loaded.RevokedAt, revokedAt, time.Millisecond) {
		t.Fatalf("expected original revocation time to win, got %v", loaded.RevokedAt)
	}

	if err := store.Revoke(ctx, uuid.NewString(), now); !errors.Is(err, auth.ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound revoking unknown token, got %v", err)
	}

	if _, err := store.Find(ctx, uuid.NewString()); !errors.Is(err, auth.ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound for unknown token, got %v", err)
	}
}

func applyMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrationsDir := filepath.Join("..", "..", "migrations")
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		contents, err := os.ReadFile(filepath.Join(migrationsDir, entry.Name()))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}

		if _, err := pool.Exec(ctx, string(contents)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

func resetDatabase(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	conn, err := testPool.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire connection: %v", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "TRUNCATE TABLE refresh_tokens, videos, users CASCADE"); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

func createTestUser(t *testing.T, repo *PostgresUserRepository, email string) models.User {
	t.Helper()
	user := models.User{
		ID:        uuid.NewString(),
		Email:     email,
		Password:  "password-hash",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return user
}

func timesClose(a, b time.Time, delta time.Duration) bool {
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	return diff <= delta
}
