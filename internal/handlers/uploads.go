package handlers

import (
	"net/http"

	"github.com/reelvault/backend/internal/logging"
)

// UploadHandler exposes the thumbnail and video upload endpoints. All the
// workflow decisions live in the upload service; the handler only parses the
// request and maps the outcome.
type UploadHandler struct {
	Sessions SessionManager
	Uploads  UploadService
}

// Thumbnail handles POST /api/thumbnail_upload/{videoID}.
func (h UploadHandler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := authenticate(r, h.Sessions)
	if err != nil {
		respondWorkflowError(ctx, w, err)
		return
	}

	file, header, err := r.FormFile("thumbnail")
	if err != nil {
		logging.FromContext(ctx).Warn("thumbnail file missing", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "thumbnail file missing"})
		return
	}
	defer file.Close()

	video, err := h.Uploads.UploadThumbnail(ctx, r.PathValue("videoID"), userID, file, header)
	if err != nil {
		respondWorkflowError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, video)
}

// Video handles POST /api/video_upload/{videoID}.
func (h UploadHandler) Video(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := authenticate(r, h.Sessions)
	if err != nil {
		respondWorkflowError(ctx, w, err)
		return
	}

	file, header, err := r.FormFile("video")
	if err != nil {
		logging.FromContext(ctx).Warn("video file missing", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "video file missing"})
		return
	}
	defer file.Close()

	video, err := h.Uploads.UploadVideo(ctx, r.PathValue("videoID"), userID, file, header)
	if err != nil {
		respondWorkflowError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, video)
}
