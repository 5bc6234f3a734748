package jobs

import (
	"errors"
	"fmt"
	"sync"

	"noteapi/internal/model"
)

// ErrAlreadyTracked is returned when registering a job id twice.
var ErrAlreadyTracked = errors.New("job already tracked")

// Tracker is an in-memory registry of explicit job statuses. It closes the
// gap left by inferring completion from result presence: "failed" and
// "processing" become observable states instead of a permanent absence.
//
// Statuses are process-local; a restart loses them but not the persisted
// artifacts and results.
type Tracker struct {
	mu   sync.RWMutex
	jobs map[string]model.JobStatus
}

func NewTracker() *Tracker {
	return &Tracker{jobs: make(map[string]model.JobStatus)}
}

// Register records a freshly submitted job.
func (t *Tracker) Register(jobID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.jobs[jobID]; ok {
		return ErrAlreadyTracked
	}
	t.jobs[jobID] = model.JobStatusSubmitted
	return nil
}

// Transition validates and applies a state change for the given job.
func (t *Tracker) Transition(jobID string, status model.JobStatus) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	current, ok := t.jobs[jobID]
	if !ok {
		return fmt.Errorf("cannot transition unknown job %s", jobID)
	}
	if status == current {
		return nil
	}
	if !isValidTransition(current, status) {
		return fmt.Errorf("invalid transition: %s -> %s", current, status)
	}

	t.jobs[jobID] = status
	return nil
}

// Status returns the recorded status for a job and whether the id is known.
func (t *Tracker) Status(jobID string) (model.JobStatus, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	status, ok := t.jobs[jobID]
	return status, ok
}

// isValidTransition enforces the allowed job state machine edges.
func isValidTransition(from, to model.JobStatus) bool {
	switch from {
	case model.JobStatusSubmitted:
		return to == model.JobStatusProcessing || to == model.JobStatusFailed
	case model.JobStatusProcessing:
		return to == model.JobStatusCompleted || to == model.JobStatusFailed
	default:
		// completed and failed are terminal
		return false
	}
}
