package gcs

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"storefront/internal/domain/entity"
	domstorage "storefront/internal/domain/storage"
	"storefront/pkg/helpers"
)

const (
	uploadTimeout  = 15 * time.Second
	destroyTimeout = 5 * time.Second
)

// ErrNotConfigured is returned when the store is constructed without a
// client or bucket, which only happens on misconfigured deployments.
var ErrNotConfigured = errors.New("gcs image store not configured")

// ImageStore hosts product images as GCS objects. The object path doubles
// as the public id, so a reference can always be destroyed from the id alone.
type ImageStore struct {
	client *storage.Client
	bucket string
	folder string
}

func NewImageStore(client *storage.Client, bucket, folder string) *ImageStore {
	return &ImageStore{client: client, bucket: bucket, folder: folder}
}

// Upload streams r into a fresh object under the configured folder and
// returns its reference. The writer commits on Close; if Close fails no
// object exists host-side, so no reference is returned.
func (s *ImageStore) Upload(ctx context.Context, r io.Reader, filename, contentType string) (*entity.ImageRef, error) {
	if s.client == nil || s.bucket == "" {
		return nil, ErrNotConfigured
	}
	ext := filepath.Ext(filename)
	objectPath := filepath.ToSlash(filepath.Join(s.folder, uuid.NewString()+ext))

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	wc := s.client.Bucket(s.bucket).Object(objectPath).NewWriter(ctx)
	wc.ContentType = contentType
	wc.ChunkSize = 0 // disable chunking for small files
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return nil, err
	}
	if err := wc.Close(); err != nil {
		return nil, err
	}
	return &entity.ImageRef{
		PublicID:  objectPath,
		SecureURL: helpers.PublicURL(s.bucket, objectPath),
	}, nil
}

// Destroy deletes the object behind publicID. A reference that is already
// gone counts as destroyed.
func (s *ImageStore) Destroy(ctx context.Context, publicID string) error {
	if s.client == nil || s.bucket == "" {
		return ErrNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, destroyTimeout)
	defer cancel()

	err := s.client.Bucket(s.bucket).Object(publicID).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return err
}

var _ domstorage.ImageStore = (*ImageStore)(nil)
