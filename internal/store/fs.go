package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"noteapi/internal/model"
)

const resultSuffix = "_notes.md"

// fsStore implements JobStore on a flat local directory. Artifacts are named
// {jobID}_{filename} and the result {jobID}_notes.md, so everything a job
// owns is addressable by id prefix alone.
type fsStore struct {
	baseDir string
}

// NewFilesystem creates a filesystem-backed job store rooted at baseDir,
// creating the directory if missing.
func NewFilesystem(baseDir string) (JobStore, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("upload dir is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", baseDir, err)
	}
	return &fsStore{baseDir: baseDir}, nil
}

func (s *fsStore) PutArtifact(ctx context.Context, jobID string, kind model.ArtifactKind, filename string, r io.Reader, size int64) (model.Artifact, error) {
	if r == nil {
		return model.Artifact{}, fmt.Errorf("reader is nil")
	}
	// filepath.Base guards against path traversal in client-supplied names.
	name := filepath.Base(filename)
	key := jobID + "_" + name

	f, err := os.Create(filepath.Join(s.baseDir, key))
	if err != nil {
		return model.Artifact{}, fmt.Errorf("create artifact file: %w", err)
	}
	written, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return model.Artifact{}, fmt.Errorf("write artifact %s: %w", key, err)
	}

	return model.Artifact{
		JobID: jobID,
		Kind:  kind,
		Name:  name,
		Key:   key,
		Size:  written,
	}, nil
}

func (s *fsStore) ListArtifacts(ctx context.Context, jobID string) ([]model.Artifact, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read upload dir: %w", err)
	}

	prefix := jobID + "_"
	artifacts := make([]model.Artifact, 0)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) {
			continue
		}
		// The published result and in-flight temp files live in the same
		// directory; neither is an input artifact.
		if name == jobID+resultSuffix || strings.HasPrefix(name, ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat artifact %s: %w", name, err)
		}
		original := strings.TrimPrefix(name, prefix)
		artifacts = append(artifacts, model.Artifact{
			JobID: jobID,
			Kind:  model.KindForFilename(original),
			Name:  original,
			Key:   name,
			Size:  info.Size(),
		})
	}

	sort.Slice(artifacts, func(i, j int) bool { return artifacts[i].Key < artifacts[j].Key })
	return artifacts, nil
}

func (s *fsStore) OpenArtifact(ctx context.Context, a model.Artifact) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.baseDir, filepath.Base(a.Key)))
	if err != nil {
		return nil, fmt.Errorf("open artifact %s: %w", a.Key, err)
	}
	return f, nil
}

// PutResult writes to a temp file in the same directory and renames it into
// place, so a concurrent GetResult never sees a partial document.
func (s *fsStore) PutResult(ctx context.Context, jobID string, markdown string) error {
	tmp, err := os.CreateTemp(s.baseDir, ".notes-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp result: %w", err)
	}
	tmpName := tmp.Name()
	_, err = tmp.WriteString(markdown)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write result for job %s: %w", jobID, err)
	}

	final := filepath.Join(s.baseDir, jobID+resultSuffix)
	if err := os.Rename(tmpName, final); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publish result for job %s: %w", jobID, err)
	}
	return nil
}

func (s *fsStore) GetResult(ctx context.Context, jobID string) (string, error) {
	b, err := os.ReadFile(filepath.Join(s.baseDir, jobID+resultSuffix))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrResultNotFound
		}
		return "", fmt.Errorf("read result for job %s: %w", jobID, err)
	}
	return string(b), nil
}
