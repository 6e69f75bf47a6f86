package sink

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const markdownContentType = "text/markdown; charset=utf-8"

// MinIOConfig holds object storage settings.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool
}

type objectPutter interface {
	PutObject(ctx context.Context, bucket, object string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// MinIO uploads documents to an S3-compatible bucket.
type MinIO struct {
	client objectPutter
	bucket string
	prefix string
}

// NewMinIO connects and creates the bucket if it does not exist.
func NewMinIO(ctx context.Context, cfg MinIOConfig) (*MinIO, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
	}
	return &MinIO{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

func (m *MinIO) Name() string { return "minio" }

// ObjectName is the bucket key for a document key.
func (m *MinIO) ObjectName(key string) string {
	key = strings.TrimPrefix(path.Clean("/"+strings.ReplaceAll(key, "\\", "/")), "/")
	if m.prefix == "" {
		return key
	}
	return path.Join(m.prefix, key)
}

func (m *MinIO) Write(ctx context.Context, obj Object) error {
	name := m.ObjectName(obj.Key)
	_, err := m.client.PutObject(ctx, m.bucket, name, strings.NewReader(obj.Content), int64(len(obj.Content)), minio.PutObjectOptions{
		ContentType: markdownContentType,
		UserMetadata: map[string]string{
			"cti-tag":    obj.Tag,
			"cti-source": obj.Source,
		},
	})
	if err != nil {
		return &RetryableError{Sink: m.Name(), Message: fmt.Sprintf("put %s: %v", name, err)}
	}
	return nil
}

// Close is a no-op; the client holds no dedicated connections.
func (m *MinIO) Close() error { return nil }
