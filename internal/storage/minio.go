package storage

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/axellelanca/linkshelf/internal/config"
	apperrors "github.com/axellelanca/linkshelf/internal/errors"
)

// Object key prefixes of client uploads.
const (
	PrefixThumbnails = "thumbnails"
	PrefixAvatars    = "avatar"
)

// Upload is a presigned PUT target and the public url the object will have.
type Upload struct {
	PresignedURL string `json:"presignedUrl"`
	ImageURL     string `json:"imageUrl"`
}

// MinioStorage talks to an S3-compatible bucket.
type MinioStorage struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
	presignTTL    time.Duration
}

// NewMinioStorage builds the client. No request is sent until an object is
// removed; presigning is computed locally.
func NewMinioStorage(cfg config.Storage) (*MinioStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	ttl := time.Duration(cfg.PresignMinutes) * time.Minute
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &MinioStorage{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		presignTTL:    ttl,
	}, nil
}

// PresignUpload returns a PUT url for a new object under prefix. The client
// must send the same Content-Type it announced.
func (s *MinioStorage) PresignUpload(ctx context.Context, prefix, fileName, contentType string) (Upload, error) {
	if fileName == "" || contentType == "" {
		return Upload{}, apperrors.ValidationError{Field: "fileName", Reason: "fileName and fileType are required"}
	}
	key := fmt.Sprintf("%s/%s_%s", prefix, uuid.NewString(), path.Base(fileName))

	headers := http.Header{}
	headers.Set("Content-Type", contentType)
	u, err := s.client.PresignHeader(ctx, http.MethodPut, s.bucket, key, s.presignTTL, nil, headers)
	if err != nil {
		return Upload{}, fmt.Errorf("failed to presign upload: %w", err)
	}
	return Upload{PresignedURL: u.String(), ImageURL: s.PublicURL(key)}, nil
}

// PublicURL is the url under which key is served.
func (s *MinioStorage) PublicURL(key string) string {
	return s.publicBaseURL + "/" + key
}

// KeyFromURL returns the object key of a url produced by PublicURL, or ""
// when the url points somewhere else.
func (s *MinioStorage) KeyFromURL(imageURL string) string {
	key, ok := strings.CutPrefix(imageURL, s.publicBaseURL+"/")
	if !ok {
		return ""
	}
	return key
}

// RemoveObject deletes key from the bucket. Missing objects are not an error.
func (s *MinioStorage) RemoveObject(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return apperrors.Unavailable("object storage", err)
	}
	return nil
}
