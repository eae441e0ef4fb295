// Package storage holds cover-image object storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// CoverStore stores book cover images and hands out short-lived
// download URLs.
type CoverStore interface {
	Put(ctx context.Context, bookID string, r io.Reader, size int64, contentType string) (key string, err error)
	URL(ctx context.Context, key string, expiry time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// MinioCoverStore implements CoverStore on MinIO/S3-compatible storage.
type MinioCoverStore struct {
	client *minio.Client
	bucket string
}

// NewMinioCoverStore connects to MinIO and ensures the bucket exists.
func NewMinioCoverStore(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioCoverStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}
	return &MinioCoverStore{client: client, bucket: bucket}, nil
}

// Put uploads a cover image keyed by book ID.
func (m *MinioCoverStore) Put(ctx context.Context, bookID string, r io.Reader, size int64, contentType string) (string, error) {
	key := path.Join("covers", bookID)
	if _, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType}); err != nil {
		return "", fmt.Errorf("put cover: %w", err)
	}
	return key, nil
}

// URL generates a pre-signed GET URL for a cover.
func (m *MinioCoverStore) URL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, m.bucket, key, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("presign cover: %w", err)
	}
	return u.String(), nil
}

// Delete removes a cover object.
func (m *MinioCoverStore) Delete(ctx context.Context, key string) error {
	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete cover: %w", err)
	}
	return nil
}

// MemoryCoverStore is an in-process CoverStore for tests and for
// running without object storage.
type MemoryCoverStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryCoverStore initializes an empty in-memory cover store.
func NewMemoryCoverStore() *MemoryCoverStore {
	return &MemoryCoverStore{objects: make(map[string][]byte)}
}

func (m *MemoryCoverStore) Put(_ context.Context, bookID string, r io.Reader, _ int64, _ string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	key := path.Join("covers", bookID)
	m.mu.Lock()
	m.objects[key] = data
	m.mu.Unlock()
	return key, nil
}

func (m *MemoryCoverStore) URL(_ context.Context, key string, _ time.Duration) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.objects[key]; !ok {
		return "", fmt.Errorf("cover %q not found", key)
	}
	return "memory://" + key, nil
}

func (m *MemoryCoverStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}
