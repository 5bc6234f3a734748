package media

import (
	"context"
	"fmt"

	"noteapi/internal/model"
	"noteapi/internal/store"
)

// Bundle is the set of inputs resolved for one job, ready for synthesis.
type Bundle struct {
	// Audio is the single honored audio artifact, nil when the job has none.
	Audio *model.Artifact
	// Images holds every image artifact, ordered by stored key.
	Images []model.Artifact
}

// Correlator locates and classifies the artifacts belonging to a job.
type Correlator struct {
	store store.JobStore
}

func NewCorrelator(st store.JobStore) *Correlator {
	return &Correlator{store: st}
}

// Resolve classifies a job's artifacts by filename extension into audio and
// image classes; any other extension is ignored. When multiple audio
// artifacts exist, the one with the lexicographically smallest stored key is
// used, so the selection is deterministic across runs. A job with no
// artifacts resolves to an empty bundle, not an error.
func (c *Correlator) Resolve(ctx context.Context, jobID string) (Bundle, error) {
	artifacts, err := c.store.ListArtifacts(ctx, jobID)
	if err != nil {
		return Bundle{}, fmt.Errorf("list artifacts for job %s: %w", jobID, err)
	}

	var bundle Bundle
	for _, a := range artifacts {
		switch model.KindForFilename(a.Name) {
		case model.KindAudio:
			// ListArtifacts returns key order, so the first match wins.
			if bundle.Audio == nil {
				audio := a
				audio.Kind = model.KindAudio
				bundle.Audio = &audio
			}
		case model.KindImage:
			a.Kind = model.KindImage
			bundle.Images = append(bundle.Images, a)
		}
	}
	return bundle, nil
}
