package blob

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	models "knowledgebase/internal/domain/models/kb"
	kbSvc "knowledgebase/internal/domain/services/kb"
)

// uploadURLTTL is how long a presigned upload stays valid
const uploadURLTTL = 15 * time.Minute

// S3Config holds connection settings for an S3-compatible store
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// S3Store implements BlobStore on any S3-compatible service
type S3Store struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

// NewS3Store connects to the endpoint and creates the bucket if needed
func NewS3Store(ctx context.Context, cfg S3Config, logger *slog.Logger) (*S3Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
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

	return &S3Store{client: client, bucket: cfg.Bucket, logger: logger}, nil
}

// GetContent returns the object body, or found=false if it does not exist
func (s *S3Store) GetContent(ctx context.Context, key string) (string, bool, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get object %s: %w", key, err)
	}
	defer obj.Close()

	body, err := io.ReadAll(obj)
	if err != nil {
		if isNoSuchKey(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read object %s: %w", key, err)
	}
	return string(body), true, nil
}

// UploadContent writes content under key with user metadata
func (s *S3Store) UploadContent(ctx context.Context, key, content, mimeType string, metadata map[string]string) error {
	userMeta := make(map[string]string, len(metadata))
	for k, v := range metadata {
		userMeta[k] = headerSafe(v)
	}

	_, err := s.client.PutObject(ctx, s.bucket, key, strings.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType:  mimeType,
		UserMetadata: userMeta,
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

// DeleteObject removes key; S3 treats a missing key as success
func (s *S3Store) DeleteObject(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s: %w", key, err)
	}
	return nil
}

// GenerateUploadURL returns a presigned POST policy restricted to mimeType
// and at most sizeLimit bytes
func (s *S3Store) GenerateUploadURL(ctx context.Context, key, mimeType string, sizeLimit int64) (*models.UploadTarget, error) {
	expires := time.Now().UTC().Add(uploadURLTTL)

	policy := minio.NewPostPolicy()
	if err := policy.SetBucket(s.bucket); err != nil {
		return nil, err
	}
	if err := policy.SetKey(key); err != nil {
		return nil, err
	}
	if err := policy.SetExpires(expires); err != nil {
		return nil, err
	}
	if err := policy.SetContentType(mimeType); err != nil {
		return nil, err
	}
	if err := policy.SetContentLengthRange(1, sizeLimit); err != nil {
		return nil, err
	}

	u, fields, err := s.client.PresignedPostPolicy(ctx, policy)
	if err != nil {
		return nil, fmt.Errorf("presign upload %s: %w", key, err)
	}

	return &models.UploadTarget{
		URL:       u.String(),
		Method:    http.MethodPost,
		Fields:    fields,
		ExpiresAt: expires,
	}, nil
}

// GenerateDownloadURL returns a presigned GET URL valid for ttl
func (s *S3Store) GenerateDownloadURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign download %s: %w", key, err)
	}
	return u.String(), nil
}

// List lists every object under prefix
func (s *S3Store) List(ctx context.Context, prefix string) ([]kbSvc.ObjectInfo, error) {
	var objects []kbSvc.ObjectInfo
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects %s: %w", prefix, obj.Err)
		}
		objects = append(objects, kbSvc.ObjectInfo{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}
	return objects, nil
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}

// headerSafe percent-encodes values S3 cannot carry in a metadata header
func headerSafe(v string) string {
	for _, r := range v {
		if r > unicode.MaxASCII || !unicode.IsPrint(r) {
			return url.QueryEscape(v)
		}
	}
	return v
}
