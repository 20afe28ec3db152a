package datasets

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yanqian/property-valuator/internal/domain/nqs"
)

const maxDatasetObjectSize = 8 << 20

// ObjectSource reads the YAML dataset from an S3-compatible bucket (Cloudflare R2 in production).
type ObjectSource struct {
	client *minio.Client
	bucket string
	key    string
	logger *slog.Logger
}

// NewObjectSource constructs the R2 dataset source.
func NewObjectSource(endpoint, accessKey, secretKey, bucket, region, key string, logger *slog.Logger) (*ObjectSource, error) {
	if strings.TrimSpace(bucket) == "" || strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("r2 dataset source needs bucket and key")
	}
	useSSL := !strings.HasPrefix(strings.ToLower(strings.TrimSpace(endpoint)), "http://")
	client, err := minio.New(sanitizeEndpoint(endpoint), &minio.Options{
		Creds:        credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure:       useSSL,
		Region:       region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init r2 client: %w", err)
	}
	return &ObjectSource{
		client: client,
		bucket: bucket,
		key:    key,
		logger: logger.With("component", "datasets.r2"),
	}, nil
}

// Load implements Source.
func (s *ObjectSource) Load(ctx context.Context) (nqs.Dataset, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key, minio.GetObjectOptions{})
	if err != nil {
		return nqs.Dataset{}, fmt.Errorf("get dataset object: %w", err)
	}
	defer obj.Close()

	info, err := obj.Stat()
	if err != nil {
		return nqs.Dataset{}, fmt.Errorf("stat dataset object: %w", err)
	}
	if info.Size > maxDatasetObjectSize {
		return nqs.Dataset{}, fmt.Errorf("dataset object %s is %d bytes, limit %d", s.key, info.Size, maxDatasetObjectSize)
	}
	data, err := io.ReadAll(io.LimitReader(obj, maxDatasetObjectSize))
	if err != nil {
		return nqs.Dataset{}, fmt.Errorf("read dataset object: %w", err)
	}
	s.logger.Info("dataset object fetched", "bucket", s.bucket, "key", s.key, "bytes", len(data), "etag", info.ETag)
	return Parse(data)
}

// sanitizeEndpoint removes schemes and paths to satisfy minio.New expectations.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if i := strings.Index(raw, "/"); i >= 0 {
		raw = raw[:i]
	}
	return raw
}

var _ Source = (*ObjectSource)(nil)
