package storage

import (
	"context"
	"io"

	"storefront/internal/domain/entity"
)

// ImageStore is the adapter over the external image host. Upload returns a
// reference only on confirmed success; a failed upload must not register
// anything host-side that the returned error does not account for.
//
// Destroy is best-effort from the caller's point of view: a missing object
// is treated as success, and callers are expected to log-and-continue on
// other failures rather than abort a record mutation.
type ImageStore interface {
	Upload(ctx context.Context, r io.Reader, filename, contentType string) (*entity.ImageRef, error)
	Destroy(ctx context.Context, publicID string) error
}
