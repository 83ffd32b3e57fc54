// Package minio implements the blob store on an S3-compatible object store.
package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config holds connection settings for the object store.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// BlobStore stores document content as objects keyed by an opaque reference
// of the form <parentID>/<uuid>-<originalName>.
type BlobStore struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

// NewBlobStore connects to the object store and ensures the bucket exists.
func NewBlobStore(ctx context.Context, cfg Config, logger *slog.Logger) (*BlobStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect object store: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
		logger.Info("bucket created", "bucket", cfg.Bucket)
	}

	return &BlobStore{
		client: client,
		bucket: cfg.Bucket,
		logger: logger,
	}, nil
}

// Store uploads the bytes and returns the object key as the reference.
func (b *BlobStore) Store(ctx context.Context, data []byte, originalName, parentID string) (string, error) {
	ref := fmt.Sprintf("%s/%s-%s", parentID, uuid.NewString(), originalName)

	_, err := b.client.PutObject(ctx, b.bucket, ref, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("store blob %s: %w", ref, err)
	}

	b.logger.Debug("blob stored", "ref", ref, "size", len(data))
	return ref, nil
}

// Fetch downloads the object stored under ref.
func (b *BlobStore) Fetch(ctx context.Context, ref string) ([]byte, error) {
	obj, err := b.client.GetObject(ctx, b.bucket, ref, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("fetch blob %s: %w", ref, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", ref, err)
	}
	return data, nil
}

// Delete removes the object stored under ref.
func (b *BlobStore) Delete(ctx context.Context, ref string) error {
	if err := b.client.RemoveObject(ctx, b.bucket, ref, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete blob %s: %w", ref, err)
	}
	return nil
}
