package store

import (
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"noteapi/internal/config"
	"noteapi/internal/model"
)

// minioStore implements JobStore on an S3-compatible backend (MinIO, AWS S3,
// etc.). Artifacts live under jobs/{id}/{filename}; the result is
// jobs/{id}/notes.md. Object puts are atomic on the backend, which satisfies
// the write-then-publish discipline without a temp file.
// It is safe for concurrent use by multiple goroutines.
type minioStore struct {
	client *minio.Client
	bucket string
}

const resultObjectName = "notes.md"

// NewMinIO creates a new S3-compatible job store backed by MinIO.
// It validates connectivity and ensures the bucket exists (creates it if missing).
func NewMinIO(cfg config.MinIOConfig) (JobStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio credentials are required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ms := &minioStore{client: cli, bucket: cfg.Bucket}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Ensure bucket exists.
	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return ms, nil
}

func jobPrefix(jobID string) string {
	return "jobs/" + jobID + "/"
}

func (m *minioStore) PutArtifact(ctx context.Context, jobID string, kind model.ArtifactKind, filename string, r io.Reader, size int64) (model.Artifact, error) {
	if r == nil {
		return model.Artifact{}, fmt.Errorf("reader is nil")
	}
	name := path.Base(filename)
	key := jobPrefix(jobID) + name

	info, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{
		UserMetadata: map[string]string{
			"original-filename": name,
			"artifact-kind":     string(kind),
		},
	})
	if err != nil {
		return model.Artifact{}, fmt.Errorf("upload artifact %s: %w", key, err)
	}

	return model.Artifact{
		JobID: jobID,
		Kind:  kind,
		Name:  name,
		Key:   key,
		Size:  info.Size,
	}, nil
}

func (m *minioStore) ListArtifacts(ctx context.Context, jobID string) ([]model.Artifact, error) {
	prefix := jobPrefix(jobID)
	artifacts := make([]model.Artifact, 0)

	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list artifacts for job %s: %w", jobID, obj.Err)
		}
		name := strings.TrimPrefix(obj.Key, prefix)
		if name == resultObjectName {
			continue
		}
		artifacts = append(artifacts, model.Artifact{
			JobID: jobID,
			Kind:  model.KindForFilename(name),
			Name:  name,
			Key:   obj.Key,
			Size:  obj.Size,
		})
	}

	sort.Slice(artifacts, func(i, j int) bool { return artifacts[i].Key < artifacts[j].Key })
	return artifacts, nil
}

func (m *minioStore) OpenArtifact(ctx context.Context, a model.Artifact) (io.ReadCloser, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, a.Key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("open artifact %s: %w", a.Key, err)
	}
	// GetObject defers errors to the first read; stat now so a missing
	// artifact surfaces here instead of mid-synthesis.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, fmt.Errorf("stat artifact %s: %w", a.Key, err)
	}
	return obj, nil
}

func (m *minioStore) PutResult(ctx context.Context, jobID string, markdown string) error {
	key := jobPrefix(jobID) + resultObjectName
	r := strings.NewReader(markdown)
	_, err := m.client.PutObject(ctx, m.bucket, key, r, int64(r.Len()), minio.PutObjectOptions{
		ContentType: "text/markdown",
	})
	if err != nil {
		return fmt.Errorf("publish result for job %s: %w", jobID, err)
	}
	return nil
}

func (m *minioStore) GetResult(ctx context.Context, jobID string) (string, error) {
	key := jobPrefix(jobID) + resultObjectName
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("read result for job %s: %w", jobID, err)
	}
	defer obj.Close()

	b, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return "", ErrResultNotFound
		}
		return "", fmt.Errorf("read result for job %s: %w", jobID, err)
	}
	return string(b), nil
}
