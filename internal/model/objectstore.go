package model

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"discflight/internal/config"
)

// Object describes one artifact in remote storage.
type Object struct {
	Key          string
	LastModified time.Time
	Size         int64
}

// ObjectStore lists and downloads model artifacts.
type ObjectStore interface {
	List(ctx context.Context) ([]Object, error)
	Download(ctx context.Context, key, path string) error
}

// S3Store reads artifacts from an S3-compatible bucket.
type S3Store struct {
	client *minio.Client
	bucket string
}

// NewS3Store builds a store from the [storage] config section. The endpoint's
// scheme decides whether TLS is used.
func NewS3Store(cfg config.Storage) (*S3Store, error) {
	parsed, err := url.Parse(strings.TrimSpace(cfg.Endpoint))
	if err != nil {
		return nil, fmt.Errorf("parse storage endpoint: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("storage endpoint %q has no host", cfg.Endpoint)
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("storage bucket is not configured")
	}
	client, err := minio.New(parsed.Host, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: parsed.Scheme == "https",
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &S3Store{client: client, bucket: cfg.Bucket}, nil
}

// List returns every object in the bucket.
func (s *S3Store) List(ctx context.Context) ([]Object, error) {
	var out []Object
	for info := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if info.Err != nil {
			return nil, fmt.Errorf("list %s: %w", s.bucket, info.Err)
		}
		if strings.HasSuffix(info.Key, "/") {
			continue
		}
		out = append(out, Object{Key: info.Key, LastModified: info.LastModified, Size: info.Size})
	}
	return out, nil
}

// Download writes the object to path.
func (s *S3Store) Download(ctx context.Context, key, path string) error {
	if err := s.client.FGetObject(ctx, s.bucket, key, path, minio.GetObjectOptions{}); err != nil {
		return fmt.Errorf("download %s/%s: %w", s.bucket, key, err)
	}
	return nil
}

// Newest picks the object with the latest LastModified. Ties go to the
// lexically greatest key so the choice is deterministic.
func Newest(objects []Object) (Object, bool) {
	if len(objects) == 0 {
		return Object{}, false
	}
	sorted := append([]Object(nil), objects...)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].LastModified.Equal(sorted[j].LastModified) {
			return sorted[i].LastModified.After(sorted[j].LastModified)
		}
		return sorted[i].Key > sorted[j].Key
	})
	return sorted[0], true
}
