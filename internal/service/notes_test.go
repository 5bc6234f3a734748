package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"noteapi/internal/config"
	"noteapi/internal/jobs"
	"noteapi/internal/media"
	"noteapi/internal/model"
	"noteapi/internal/store"
	"noteapi/internal/store/mocks"
	"noteapi/internal/synth"
	"noteapi/pkg/logger"
)

// echoSynth produces content derived from the audio artifact so tests can
// verify per-job isolation.
type echoSynth struct{}

func (echoSynth) GenerateNotes(ctx context.Context, audio *model.Artifact, images []model.Artifact, userText string) (string, error) {
	if audio != nil {
		return "# Notes for " + audio.Name, nil
	}
	return "# Notes from text: " + userText, nil
}

// newTestService wires a service over a real filesystem store with the
// echo synthesizer; dispatcher lets tests drain background work.
func newTestService(t *testing.T) (NoteService, *jobs.Dispatcher, store.JobStore) {
	t.Helper()
	log := logger.NewWithWriter(io.Discard, "error")

	st, err := store.NewFilesystem(t.TempDir())
	require.NoError(t, err)

	tracker := jobs.NewTracker()
	dispatcher := jobs.NewDispatcher(log)
	processor, err := jobs.NewProcessor(st, media.NewCorrelator(st), echoSynth{}, tracker, log, prometheus.NewRegistry())
	require.NoError(t, err)

	return NewNoteService(st, tracker, dispatcher, processor, log), dispatcher, st
}

func TestSubmit_ReturnsImmediateAck(t *testing.T) {
	svc, dispatcher, _ := newTestService(t)

	ack, err := svc.Submit(context.Background(), Submission{
		Audio: &Upload{Filename: "lecture.wav", Reader: strings.NewReader("wav"), Size: 3},
		Notes: "focus on chapter 3",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, ack.JobID)
	assert.Equal(t, "processing", ack.Status)
	assert.NotEmpty(t, ack.Message)

	dispatcher.Wait()
}

func TestSubmit_ArtifactsPersistedBeforeReturn(t *testing.T) {
	svc, dispatcher, st := newTestService(t)
	ctx := context.Background()

	ack, err := svc.Submit(ctx, Submission{
		Audio: &Upload{Filename: "lec.wav", Reader: strings.NewReader("wav"), Size: 3},
		Images: []Upload{
			{Filename: "a.png", Reader: strings.NewReader("png"), Size: 3},
			{Filename: "b.jpg", Reader: strings.NewReader("jpg"), Size: 3},
		},
	})
	require.NoError(t, err)

	arts, err := st.ListArtifacts(ctx, ack.JobID)
	require.NoError(t, err)
	assert.Len(t, arts, 3)

	dispatcher.Wait()
}

func TestSubmit_EventuallyCompletes(t *testing.T) {
	svc, dispatcher, _ := newTestService(t)
	ctx := context.Background()

	ack, err := svc.Submit(ctx, Submission{
		Audio: &Upload{Filename: "lecture.wav", Reader: strings.NewReader("wav"), Size: 3},
	})
	require.NoError(t, err)

	dispatcher.Wait()

	note, err := svc.GetNote(ctx, ack.JobID)
	require.NoError(t, err)
	assert.Equal(t, ack.JobID, note.ID)
	assert.Equal(t, "# Notes for lecture.wav", note.Content)
	assert.Equal(t, model.PlaceholderTitle, note.Title)
	assert.Equal(t, model.PlaceholderSummary, note.Summary)
	assert.NotNil(t, note.Keywords)

	status, ok := svc.Status(ack.JobID)
	assert.True(t, ok)
	assert.Equal(t, model.JobStatusCompleted, status)
}

func TestSubmit_TextOnly(t *testing.T) {
	svc, dispatcher, _ := newTestService(t)
	ctx := context.Background()

	ack, err := svc.Submit(ctx, Submission{Notes: "just my notes"})
	require.NoError(t, err)

	dispatcher.Wait()

	note, err := svc.GetNote(ctx, ack.JobID)
	require.NoError(t, err)
	assert.Equal(t, "# Notes from text: just my notes", note.Content)
}

// TestSubmit_NoAPIKeyStillCompletes runs the real synthesis adapter with no
// credential configured: the job must still reach a terminal state with the
// documented literal error text as its content.
func TestSubmit_NoAPIKeyStillCompletes(t *testing.T) {
	log := logger.NewWithWriter(io.Discard, "error")
	ctx := context.Background()

	st, err := store.NewFilesystem(t.TempDir())
	require.NoError(t, err)

	synthesizer := synth.NewOpenAI(config.OpenAIConfig{}, st, log)
	tracker := jobs.NewTracker()
	dispatcher := jobs.NewDispatcher(log)
	processor, err := jobs.NewProcessor(st, media.NewCorrelator(st), synthesizer, tracker, log, prometheus.NewRegistry())
	require.NoError(t, err)
	svc := NewNoteService(st, tracker, dispatcher, processor, log)

	ack, err := svc.Submit(ctx, Submission{
		Audio: &Upload{Filename: "lecture.wav", Reader: strings.NewReader("wav"), Size: 3},
	})
	require.NoError(t, err)

	dispatcher.Wait()

	note, err := svc.GetNote(ctx, ack.JobID)
	require.NoError(t, err)
	assert.Equal(t, synth.NoAPIKeyText, note.Content)

	status, _ := svc.Status(ack.JobID)
	assert.Equal(t, model.JobStatusCompleted, status)
}

func TestGetNote_NotFoundBeforeCompletionAndForUnknown(t *testing.T) {
	svc, dispatcher, _ := newTestService(t)
	ctx := context.Background()

	// Unknown id and a submitted-but-unprocessed id must be the same signal.
	_, err := svc.GetNote(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrNoteNotFound)

	dispatcher.Wait()
}

func TestSubmit_StorageFailure(t *testing.T) {
	log := logger.NewWithWriter(io.Discard, "error")
	mStore := new(mocks.MockJobStore)
	mStore.On("PutArtifact", context.Background(), mock.Anything, model.KindAudio, "a.wav", mock.Anything, int64(3)).
		Return(model.Artifact{}, errors.New("disk full"))

	tracker := jobs.NewTracker()
	dispatcher := jobs.NewDispatcher(log)
	processor, err := jobs.NewProcessor(mStore, media.NewCorrelator(mStore), echoSynth{}, tracker, log, prometheus.NewRegistry())
	require.NoError(t, err)
	svc := NewNoteService(mStore, tracker, dispatcher, processor, log)

	_, err = svc.Submit(context.Background(), Submission{
		Audio: &Upload{Filename: "a.wav", Reader: strings.NewReader("wav"), Size: 3},
	})
	assert.Error(t, err)
}

func TestConcurrentJobsAreIsolated(t *testing.T) {
	svc, dispatcher, _ := newTestService(t)
	ctx := context.Background()

	const n = 16
	jobIDs := make([]string, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("audio-%02d.wav", i)
			ack, err := svc.Submit(ctx, Submission{
				Audio: &Upload{Filename: name, Reader: strings.NewReader("wav"), Size: 3},
			})
			assert.NoError(t, err)
			jobIDs[i] = ack.JobID
		}(i)
	}
	wg.Wait()
	dispatcher.Wait()

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			note, err := svc.GetNote(ctx, jobIDs[i])
			if assert.NoError(t, err) {
				assert.Equal(t, fmt.Sprintf("# Notes for audio-%02d.wav", i), note.Content)
			}
		}(i)
	}
	wg.Wait()
}
