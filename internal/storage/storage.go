package storage

import (
	"context"
	"errors"
	"io"
)

// ErrEmptyKey indicates a save was attempted without an object key.
var ErrEmptyKey = errors.New("storage: empty key")

// AssetStorage writes uploaded media to a durable location and reports the
// externally reachable URL for what was written.
type AssetStorage interface {
	// Save streams r to the durable location under key, fully replacing any
	// prior content stored there.
	Save(ctx context.Context, key, contentType string, r io.Reader) (string, error)

	// Promote transfers a staged local file into the durable location under
	// key. The caller remains responsible for removing the staged file.
	Promote(ctx context.Context, key, contentType, stagedPath string) (string, error)
}
