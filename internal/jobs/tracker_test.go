package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noteapi/internal/model"
)

func TestTracker_RegisterAndStatus(t *testing.T) {
	tr := NewTracker()

	require.NoError(t, tr.Register("j1"))

	status, ok := tr.Status("j1")
	assert.True(t, ok)
	assert.Equal(t, model.JobStatusSubmitted, status)

	_, ok = tr.Status("never-seen")
	assert.False(t, ok)
}

func TestTracker_RegisterTwice(t *testing.T) {
	tr := NewTracker()

	require.NoError(t, tr.Register("j1"))
	assert.ErrorIs(t, tr.Register("j1"), ErrAlreadyTracked)
}

func TestTracker_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		path    []model.JobStatus
		wantErr bool
	}{
		{
			name: "happy path",
			path: []model.JobStatus{model.JobStatusProcessing, model.JobStatusCompleted},
		},
		{
			name: "failure path",
			path: []model.JobStatus{model.JobStatusProcessing, model.JobStatusFailed},
		},
		{
			name: "fail before processing",
			path: []model.JobStatus{model.JobStatusFailed},
		},
		{
			name:    "skip to completed",
			path:    []model.JobStatus{model.JobStatusCompleted},
			wantErr: true,
		},
		{
			name:    "leave terminal state",
			path:    []model.JobStatus{model.JobStatusProcessing, model.JobStatusCompleted, model.JobStatusProcessing},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker()
			require.NoError(t, tr.Register("j1"))

			var err error
			for _, status := range tt.path {
				if err = tr.Transition("j1", status); err != nil {
					break
				}
			}

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTracker_TransitionUnknownJob(t *testing.T) {
	tr := NewTracker()
	assert.Error(t, tr.Transition("ghost", model.JobStatusProcessing))
}

func TestTracker_SameStatusIsNoop(t *testing.T) {
	tr := NewTracker()
	require.NoError(t, tr.Register("j1"))
	require.NoError(t, tr.Transition("j1", model.JobStatusProcessing))
	assert.NoError(t, tr.Transition("j1", model.JobStatusProcessing))
}
