package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"github.com/reelvault/backend/internal/models"
	"github.com/reelvault/backend/internal/repositories"
)

// inMemoryVideoStore backs both the video handlers and the upload service in tests.
type inMemoryVideoStore struct {
	mu     sync.Mutex
	videos map[string]models.Video
}

func newInMemoryVideoStore(videos ...models.Video) *inMemoryVideoStore {
	store := &inMemoryVideoStore{videos: make(map[string]models.Video)}
	for _, v := range videos {
		store.videos[v.ID] = v
	}
	return store
}

func (s *inMemoryVideoStore) Create(_ context.Context, video models.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.videos[video.ID]; exists {
		return repositories.ErrConflict
	}
	s.videos[video.ID] = video
	return nil
}

func (s *inMemoryVideoStore) Get(_ context.Context, id string) (models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	return video, nil
}

func (s *inMemoryVideoStore) Update(_ context.Context, video models.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.videos[video.ID]; !ok {
		return repositories.ErrNotFound
	}
	s.videos[video.ID] = video
	return nil
}

func (s *inMemoryVideoStore) ListForUser(_ context.Context, userID string) ([]models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var videos []models.Video
	for _, v := range s.videos {
		if v.UserID == userID {
			videos = append(videos, v)
		}
	}
	sort.Slice(videos, func(i, j int) bool { return videos[i].CreatedAt.After(videos[j].CreatedAt) })
	return videos, nil
}

func issueToken(t *testing.T, manager SessionManager, userID string) string {
	t.Helper()
	tokens, err := manager.Issue(context.Background(), userID)
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}
	return tokens.AccessToken
}

func TestVideoHandlerCreate(t *testing.T) {
	manager := newTestSessionManager()
	store := newInMemoryVideoStore()
	handler := VideoHandler{Videos: store, Sessions: manager}

	body, err := json.Marshal(createVideoRequest{Title: "Demo", Description: "A short demo"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/videos", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+issueToken(t, manager, "alice"))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var video models.Video
	if err := json.NewDecoder(rec.Body).Decode(&video); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if video.ID == "" || video.Title != "Demo" || video.UserID != "alice" {
		t.Fatalf("unexpected video record %+v", video)
	}
	if video.ThumbnailURL != "" || video.VideoURL != "" {
		t.Fatal("expected URL fields to start empty")
	}
}

func TestVideoHandlerCreateRequiresAuth(t *testing.T) {
	handler := VideoHandler{Videos: newInMemoryVideoStore(), Sessions: newTestSessionManager()}

	req := httptest.NewRequest(http.MethodPost, "/api/videos", bytes.NewReader([]byte(`{"title":"Demo"}`)))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestVideoHandlerCreateRequiresTitle(t *testing.T) {
	manager := newTestSessionManager()
	handler := VideoHandler{Videos: newInMemoryVideoStore(), Sessions: manager}

	req := httptest.NewRequest(http.MethodPost, "/api/videos", bytes.NewReader([]byte(`{"title":"  "}`)))
	req.Header.Set("Authorization", "Bearer "+issueToken(t, manager, "alice"))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestVideoHandlerListReturnsOnlyOwnVideos(t *testing.T) {
	manager := newTestSessionManager()
	store := newInMemoryVideoStore(
		models.Video{ID: "v1", Title: "Mine", UserID: "alice"},
		models.Video{ID: "v2", Title: "Theirs", UserID: "bob"},
	)
	handler := VideoHandler{Videos: store, Sessions: manager}

	req := httptest.NewRequest(http.MethodGet, "/api/videos", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, manager, "alice"))
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}

	var videos []models.Video
	if err := json.NewDecoder(rec.Body).Decode(&videos); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if len(videos) != 1 || videos[0].ID != "v1" {
		t.Fatalf("expected only alice's video, got %+v", videos)
	}
}
