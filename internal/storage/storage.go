package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	gcs "cloud.google.com/go/storage"
)

// ImageStore is an append-only namespace for listing photos. Names are
// random by construction, so writers never overwrite each other.
type ImageStore interface {
	Save(ctx context.Context, name string, data []byte) error
	URL(name string) string
}

type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) Save(_ context.Context, name string, data []byte) error {
	return os.WriteFile(filepath.Join(s.dir, name), data, 0o644)
}

func (s *LocalStore) URL(name string) string {
	return "/upload/" + name
}

func (s *LocalStore) Dir() string {
	return s.dir
}

type GCSStore struct {
	bucket *gcs.BucketHandle
	name   string
}

func NewGCSStore(ctx context.Context, bucket string) (*GCSStore, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCSStore{bucket: client.Bucket(bucket), name: bucket}, nil
}

func (s *GCSStore) Save(ctx context.Context, name string, data []byte) error {
	w := s.bucket.Object(name).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("write object %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close object %s: %w", name, err)
	}
	return nil
}

func (s *GCSStore) URL(name string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.name, name)
}
