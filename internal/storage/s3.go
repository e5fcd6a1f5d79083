package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"toy-catalog/internal/domain"

	"github.com/gabriel-vasile/mimetype"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectClient is the subset of the minio client used by S3ImageStore.
type ObjectClient interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// S3ImageStore keeps images as objects in an S3-compatible bucket.
type S3ImageStore struct {
	client ObjectClient
	bucket string
}

// NewMinioClient connects to an S3-compatible endpoint with static credentials.
func NewMinioClient(endpoint, accessKey, secretKey string, useSSL bool) (*minio.Client, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return client, nil
}

func NewS3ImageStore(client ObjectClient, bucket string) *S3ImageStore {
	return &S3ImageStore{client: client, bucket: bucket}
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *S3ImageStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	return nil
}

func (s *S3ImageStore) Store(ctx context.Context, content []byte, ext string) (domain.ImageRef, error) {
	filename := NewFilename(ext)

	_, err := s.client.PutObject(ctx, s.bucket, filename, bytes.NewReader(content), int64(len(content)),
		minio.PutObjectOptions{ContentType: mimetype.Detect(content).String()})
	if err != nil {
		return domain.ImageRef{}, fmt.Errorf("failed to upload image object: %w", err)
	}

	return domain.ImageRef{Filename: filename, Path: s.bucket + "/" + filename}, nil
}

func (s *S3ImageStore) Remove(ctx context.Context, filename string) (bool, error) {
	if !isPlainFilename(filename) {
		return false, nil
	}

	if _, err := s.client.StatObject(ctx, s.bucket, filename, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat image object: %w", err)
	}

	if err := s.client.RemoveObject(ctx, s.bucket, filename, minio.RemoveObjectOptions{}); err != nil {
		return false, fmt.Errorf("failed to remove image object: %w", err)
	}

	return true, nil
}
