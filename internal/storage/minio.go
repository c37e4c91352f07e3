package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ImageArchive stores uploaded sign photos in an S3-compatible bucket,
// keyed by session id, so analyses can be audited against the original
// image later.
type ImageArchive struct {
	client *minio.Client
	bucket string
}

// NewImageArchive connects to an S3-compatible endpoint.
func NewImageArchive(endpoint, accessKey, secretKey string, useSSL bool, bucket string) (*ImageArchive, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: failed to create client: %w", err)
	}

	return &ImageArchive{client: client, bucket: bucket}, nil
}

// EnsureBucket creates the archive bucket if it does not exist yet.
func (a *ImageArchive) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("storage: failed to check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("storage: failed to create bucket %q: %w", a.bucket, err)
	}
	return nil
}

// StoreImage writes a JPEG under <sessionID>.jpg.
func (a *ImageArchive) StoreImage(ctx context.Context, sessionID string, jpeg []byte) error {
	_, err := a.client.PutObject(ctx, a.bucket, sessionID+".jpg",
		bytes.NewReader(jpeg), int64(len(jpeg)),
		minio.PutObjectOptions{ContentType: "image/jpeg"},
	)
	if err != nil {
		return fmt.Errorf("storage: failed to store image %s: %w", sessionID, err)
	}
	return nil
}
