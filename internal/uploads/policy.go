package uploads

import "github.com/reelvault/backend/internal/config"

// Policy is the validation contract applied to inbound files before any byte
// reaches durable storage. Ceilings and allow-lists differ per deployment,
// not per code path.
type Policy struct {
	ThumbnailMaxBytes int64
	VideoMaxBytes     int64

	// VideoContentTypes is the allow-list for video uploads. Empty means any
	// declared type is accepted and the file extension is derived from it.
	VideoContentTypes []string

	// RequireCanonicalID demands UUID-formatted video ids. Enforced for
	// object-store deployments where keys are minted per upload.
	RequireCanonicalID bool
}

// thumbnailContentTypes is fixed across deployments.
var thumbnailContentTypes = []string{"image/jpeg", "image/png"}

// PolicyFromConfig derives the upload policy for the configured storage backend.
func PolicyFromConfig(cfg config.Config) Policy {
	policy := Policy{
		ThumbnailMaxBytes: cfg.Uploads.ThumbnailMaxBytes,
		VideoMaxBytes:     cfg.Uploads.VideoMaxBytes,
	}

	if cfg.StorageBackend == config.BackendS3 {
		policy.VideoContentTypes = []string{"video/mp4"}
		policy.RequireCanonicalID = true
	}

	return policy
}

func (p Policy) allowsVideoType(mediaType string) bool {
	if len(p.VideoContentTypes) == 0 {
		return true
	}
	for _, allowed := range p.VideoContentTypes {
		if mediaType == allowed {
			return true
		}
	}
	return false
}
