package model

import (
	"path/filepath"
	"strings"
)

// JobStatus is the explicit lifecycle state of a synthesis job.
// It replaces the old "result file exists or not" inference so that
// "still processing" and "failed" are distinguishable internally.
type JobStatus string

const (
	JobStatusSubmitted  JobStatus = "submitted"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// ArtifactKind classifies an uploaded input by media type.
type ArtifactKind string

const (
	KindAudio ArtifactKind = "audio"
	KindImage ArtifactKind = "image"
	// KindOther marks artifacts with an unsupported extension; the
	// correlator skips them during processing.
	KindOther ArtifactKind = "other"
)

// KindForFilename classifies a filename by extension, case-insensitively.
// The extension is the sole classification mechanism: there is no separate
// media-type index.
func KindForFilename(name string) ArtifactKind {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp3", ".wav", ".m4a":
		return KindAudio
	case ".jpg", ".jpeg", ".png":
		return KindImage
	default:
		return KindOther
	}
}

// Artifact is a single uploaded input blob owned by one job.
// Written once at submission, read once during processing, never mutated.
type Artifact struct {
	JobID string       `json:"job_id"`
	Kind  ArtifactKind `json:"kind"`
	// Name is the original upload filename, used only for classification.
	Name string `json:"name"`
	// Key addresses the artifact inside the owning store backend.
	Key  string `json:"key"`
	Size int64  `json:"size"`
}

// Placeholder enrichment values returned alongside a note. Title, summary
// and keywords are not derived from content yet; clients must not treat
// them as load-bearing.
const (
	PlaceholderTitle   = "Generated Notes"
	PlaceholderSummary = "Summary pending..."
)

// Note is the retrievable outcome of a completed job.
type Note struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Summary  string   `json:"summary"`
	Keywords []string `json:"keywords"`
}

// UploadAck is the immediate response to a submission.
type UploadAck struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}
