// Package minio stores uploaded choice images in an S3-compatible bucket.
package minio

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MaxImageSize caps uploaded choice images, mirroring the client-side limit.
const MaxImageSize = 2 << 20 // 2 MiB

// ImageStore uploads choice images and returns public URLs.
type ImageStore struct {
	client   *minio.Client
	endpoint string
	bucket   string
	useSSL   bool
}

type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func NewImageStore(opts Options) (*ImageStore, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return &ImageStore{
		client:   client,
		endpoint: opts.Endpoint,
		bucket:   opts.Bucket,
		useSSL:   opts.UseSSL,
	}, nil
}

// EnsureBucket creates the bucket if it does not exist yet.
func (s *ImageStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("make bucket: %w", err)
	}
	return nil
}

// Upload stores one image under choices/{name} and returns its URL. Size is
// validated by the caller against MaxImageSize before the body is read.
func (s *ImageStore) Upload(ctx context.Context, name string, reader io.Reader, size int64, contentType string) (string, error) {
	object := "choices/" + name
	_, err := s.client.PutObject(ctx, s.bucket, object, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	return s.url(object), nil
}

// Delete removes a previously uploaded image by its URL. Unknown URLs are
// ignored so question deletion never fails on a missing image.
func (s *ImageStore) Delete(ctx context.Context, url string) error {
	prefix := s.url("")
	if !strings.HasPrefix(url, prefix) {
		return nil
	}
	object := strings.TrimPrefix(url, prefix)
	if err := s.client.RemoveObject(ctx, s.bucket, object, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}

func (s *ImageStore) url(object string) string {
	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.endpoint, s.bucket, object)
}
