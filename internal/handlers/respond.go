package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/reelvault/backend/internal/auth"
	"github.com/reelvault/backend/internal/logging"
	"github.com/reelvault/backend/internal/uploads"
)

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "response", payload)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "response", payload)
	}
}

// respondWorkflowError maps the typed errors returned by the upload workflows
// and the auth layer to transport status codes. The mapping happens here and
// nowhere else.
func respondWorkflowError(ctx context.Context, w http.ResponseWriter, err error) {
	var reqErr *uploads.RequestError

	switch {
	case errors.As(err, &reqErr):
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": reqErr.Reason})
	case errors.Is(err, uploads.ErrForbidden):
		respondJSON(ctx, w, http.StatusForbidden, map[string]string{"error": "not authorized to update this video"})
	case errors.Is(err, uploads.ErrNotFound):
		respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "video not found"})
	case isAuthError(err):
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "invalid or missing credentials"})
	default:
		logging.FromContext(ctx).Error("request failed", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func isAuthError(err error) bool {
	return errors.Is(err, auth.ErrNoAuthHeader) ||
		errors.Is(err, auth.ErrMalformedAuthHeader) ||
		errors.Is(err, auth.ErrInvalidAccessToken) ||
		errors.Is(err, auth.ErrTokenNotFound) ||
		errors.Is(err, auth.ErrTokenExpired) ||
		errors.Is(err, auth.ErrTokenRevoked)
}

// authenticate resolves the calling user from the request's bearer credential.
func authenticate(r *http.Request, sessions SessionManager) (string, error) {
	token, err := auth.GetBearerToken(r.Header)
	if err != nil {
		return "", err
	}
	return sessions.Authenticate(token)
}
