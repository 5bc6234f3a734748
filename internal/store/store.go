package store

import (
	"context"
	"errors"
	"io"

	"noteapi/internal/model"
)

// Package store contains job store abstractions. A job store persists the
// per-job input artifacts and the synthesized result, addressable purely by
// job id with no additional index.

// ErrResultNotFound is returned by GetResult when no completed result exists
// for a job id. It deliberately covers both "unknown job" and "still
// processing"; callers treat both identically.
var ErrResultNotFound = errors.New("result not found")

// JobStore persists per-job artifacts and the completed result.
//
// Implementations must guarantee that artifacts written under a job id are
// enumerable strictly by that job id, and that a result write is atomic:
// a concurrent reader never observes a partially written result.
type JobStore interface {
	// PutArtifact stores one uploaded input blob under the given job id.
	// filename is the original upload name; it is kept for media-type
	// classification only.
	PutArtifact(ctx context.Context, jobID string, kind model.ArtifactKind, filename string, r io.Reader, size int64) (model.Artifact, error)

	// ListArtifacts enumerates the input artifacts of one job, ordered by
	// stored key. A job with no artifacts yields an empty slice, not an error.
	ListArtifacts(ctx context.Context, jobID string) ([]model.Artifact, error)

	// OpenArtifact returns the content of a previously stored artifact.
	OpenArtifact(ctx context.Context, a model.Artifact) (io.ReadCloser, error)

	// PutResult publishes the final Markdown document for a job. The write
	// is atomic; a second call overwrites.
	PutResult(ctx context.Context, jobID string, markdown string) error

	// GetResult returns the published Markdown for a job, or
	// ErrResultNotFound when the job is unknown or not yet completed.
	GetResult(ctx context.Context, jobID string) (string, error)
}
