package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/reelvault/backend/internal/logging"
	"github.com/reelvault/backend/internal/models"
)

// VideoHandler provides endpoints for creating and listing video records.
// The binary assets themselves arrive later through the upload endpoints.
type VideoHandler struct {
	Videos   VideoStore
	Sessions SessionManager
	NowFunc  func() time.Time
}

// Create handles POST /api/videos.
func (h VideoHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	userID, err := authenticate(r, h.Sessions)
	if err != nil {
		respondWorkflowError(ctx, w, err)
		return
	}

	var req createVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid create video payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		logger.Warn("create video missing title", "userId", userID)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		return
	}

	now := h.now()
	video := models.Video{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: strings.TrimSpace(req.Description),
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Videos.Create(ctx, video); err != nil {
		logger.Error("create video failed", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to create video"})
		return
	}

	respondJSON(ctx, w, http.StatusCreated, video)
}

// List handles GET /api/videos, returning the caller's videos newest first.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := authenticate(r, h.Sessions)
	if err != nil {
		respondWorkflowError(ctx, w, err)
		return
	}

	videos, err := h.Videos.ListForUser(ctx, userID)
	if err != nil {
		logging.FromContext(ctx).Error("list videos failed", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to list videos"})
		return
	}

	if videos == nil {
		videos = []models.Video{}
	}
	respondJSON(ctx, w, http.StatusOK, videos)
}

type createVideoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (h VideoHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
