package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gcs "cloud.google.com/go/storage"
)

// GCSStore stores blobs in a Google Cloud Storage bucket. Locations look like
// gs://bucket/key.
type GCSStore struct {
	client *gcs.Client
	bucket string
}

func NewGCSStore(ctx context.Context, bucket string) (*GCSStore, error) {
	c, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("init gcs client: %w", err)
	}
	return &GCSStore{client: c, bucket: bucket}, nil
}

func (g *GCSStore) Close() error { return g.client.Close() }

func (g *GCSStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	w := g.client.Bucket(g.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return fmt.Sprintf("gs://%s/%s", g.bucket, key), nil
}

func (g *GCSStore) Remove(ctx context.Context, location string) error {
	bucket, key, err := splitRemoteLocation(location, "gs://")
	if err != nil {
		return err
	}
	err = g.client.Bucket(bucket).Object(key).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil
	}
	return err
}

func (g *GCSStore) Owns(location string) bool {
	return strings.HasPrefix(location, "gs://")
}
