package uploads

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/reelvault/backend/internal/logging"
	"github.com/reelvault/backend/internal/models"
	"github.com/reelvault/backend/internal/repositories"
	"github.com/reelvault/backend/internal/storage"
)

// VideoStore captures the persistence operations the upload workflows need.
type VideoStore interface {
	Get(ctx context.Context, id string) (models.Video, error)
	Update(ctx context.Context, video models.Video) error
}

// Service runs the thumbnail and video upload workflows: ownership check,
// validation, storage write, and record update, in that order. Nothing is
// persisted unless the storage write fully succeeded.
type Service struct {
	Videos  VideoStore
	Storage storage.AssetStorage
	Policy  Policy
	TempDir string

	// NowFunc overrides the time source in tests.
	NowFunc func() time.Time
}

// UploadThumbnail validates and stores a thumbnail image, then records its
// URL on the owning video.
func (s *Service) UploadThumbnail(ctx context.Context, videoID, userID string, file multipart.File, header *multipart.FileHeader) (models.Video, error) {
	video, err := s.loadOwned(ctx, videoID, userID)
	if err != nil {
		return models.Video{}, err
	}

	mediaType, err := declaredMediaType(header)
	if err != nil {
		return models.Video{}, err
	}
	if mediaType != "image/jpeg" && mediaType != "image/png" {
		return models.Video{}, badRequestf("invalid thumbnail type %q, only JPEG and PNG are allowed", mediaType)
	}
	if header.Size > s.Policy.ThumbnailMaxBytes {
		return models.Video{}, badRequestf("thumbnail exceeds the maximum allowed size of %d bytes", s.Policy.ThumbnailMaxBytes)
	}

	// The key is namespaced by video id, so a second upload replaces the
	// previous thumbnail object of the same type.
	key := path.Join("thumbnails", fmt.Sprintf("%s.%s", video.ID, extensionFor(mediaType)))

	url, err := s.Storage.Save(ctx, key, mediaType, file)
	if err != nil {
		return models.Video{}, fmt.Errorf("store thumbnail: %w", err)
	}

	video.ThumbnailURL = url
	video.UpdatedAt = s.now()
	if err := s.Videos.Update(ctx, video); err != nil {
		return models.Video{}, fmt.Errorf("update video record: %w", err)
	}

	return video, nil
}

// UploadVideo validates a video file, stages it to a unique temporary file,
// transfers it to durable storage, and records the resulting URL, size, and
// content type. The staged file is removed on every exit path.
func (s *Service) UploadVideo(ctx context.Context, videoID, userID string, file multipart.File, header *multipart.FileHeader) (models.Video, error) {
	if s.Policy.RequireCanonicalID {
		if _, err := uuid.Parse(videoID); err != nil {
			return models.Video{}, badRequestf("invalid video id format")
		}
	}

	video, err := s.loadOwned(ctx, videoID, userID)
	if err != nil {
		return models.Video{}, err
	}

	mediaType, err := declaredMediaType(header)
	if err != nil {
		return models.Video{}, err
	}
	if !s.Policy.allowsVideoType(mediaType) {
		return models.Video{}, badRequestf("invalid video type %q, allowed types: %s", mediaType, strings.Join(s.Policy.VideoContentTypes, ", "))
	}
	if header.Size > s.Policy.VideoMaxBytes {
		return models.Video{}, badRequestf("video exceeds the maximum allowed size of %d bytes", s.Policy.VideoMaxBytes)
	}

	// The durable key is minted from random bytes, never from the record id.
	key, err := randomObjectKey(extensionFor(mediaType))
	if err != nil {
		return models.Video{}, fmt.Errorf("generate object key: %w", err)
	}

	stagedPath, size, err := s.stage(file)
	if err != nil {
		return models.Video{}, err
	}
	defer s.cleanupStaged(ctx, stagedPath)

	url, err := s.Storage.Promote(ctx, key, mediaType, stagedPath)
	if err != nil {
		return models.Video{}, fmt.Errorf("transfer video: %w", err)
	}

	video.VideoURL = url
	video.FileSize = size
	video.ContentType = mediaType
	video.UpdatedAt = s.now()
	if err := s.Videos.Update(ctx, video); err != nil {
		return models.Video{}, fmt.Errorf("update video record: %w", err)
	}

	return video, nil
}

// loadOwned fetches the video record and re-derives ownership from it. No
// ownership result is cached across requests.
func (s *Service) loadOwned(ctx context.Context, videoID, userID string) (models.Video, error) {
	if strings.TrimSpace(videoID) == "" {
		return models.Video{}, badRequestf("video id is required")
	}

	video, err := s.Videos.Get(ctx, videoID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("load video record: %w", err)
	}

	if video.UserID != userID {
		return models.Video{}, ErrForbidden
	}

	return video, nil
}

// stage copies the upload into a uniquely named temporary file and returns
// its path along with the number of bytes written.
func (s *Service) stage(file multipart.File) (string, int64, error) {
	staged, err := os.CreateTemp(s.TempDir, "reelvault-upload-*")
	if err != nil {
		return "", 0, fmt.Errorf("create staging file: %w", err)
	}

	size, err := io.Copy(staged, file)
	if err != nil {
		staged.Close()
		os.Remove(staged.Name())
		return "", 0, fmt.Errorf("stage upload: %w", err)
	}

	if err := staged.Close(); err != nil {
		os.Remove(staged.Name())
		return "", 0, fmt.Errorf("close staging file: %w", err)
	}

	return staged.Name(), size, nil
}

// cleanupStaged removes the staging artifact. Failures are logged and never
// surfaced: cleanup must not mask the workflow's own error.
func (s *Service) cleanupStaged(ctx context.Context, stagedPath string) {
	if err := os.Remove(stagedPath); err != nil && !os.IsNotExist(err) {
		logging.FromContext(ctx).Error("remove staging file", "path", stagedPath, "error", err)
	}
}

func (s *Service) now() time.Time {
	if s.NowFunc != nil {
		return s.NowFunc().UTC()
	}
	return time.Now().UTC()
}

func declaredMediaType(header *multipart.FileHeader) (string, error) {
	mediaType, _, err := mime.ParseMediaType(header.Header.Get("Content-Type"))
	if err != nil {
		return "", badRequestf("invalid content type")
	}
	return mediaType, nil
}

// extensionFor derives a file extension from the declared media type.
func extensionFor(mediaType string) string {
	switch mediaType {
	case "image/jpeg":
		return "jpg"
	case "image/png":
		return "png"
	case "video/mp4":
		return "mp4"
	}

	if _, subtype, found := strings.Cut(mediaType, "/"); found && subtype != "" {
		return subtype
	}
	return "bin"
}

func randomObjectKey(ext string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s.%s", hex.EncodeToString(buf), ext), nil
}
