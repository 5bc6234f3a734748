package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"noteapi/internal/jobs"
	"noteapi/internal/model"
	"noteapi/internal/store"
)

var (
	// ErrNoteNotFound covers both "unknown job" and "still processing";
	// the two are deliberately indistinguishable on the notes surface.
	ErrNoteNotFound = errors.New("note not found or still processing")
)

// Upload is one incoming multipart file, decoupled from the HTTP framework.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// Submission is everything a client provides in one upload request.
type Submission struct {
	// Audio is the at-most-one audio recording.
	Audio *Upload
	// Images are zero or more image uploads.
	Images []Upload
	// Notes is the optional free-text annotation.
	Notes string
}

// NoteService defines the use cases of the note synthesis pipeline.
type NoteService interface {
	// Submit assigns a job id, persists all uploads as artifacts, schedules
	// background processing, and returns an acknowledgment immediately.
	// Artifacts are durably written before Submit returns; only the
	// synthesis itself runs in the background.
	Submit(ctx context.Context, sub Submission) (*model.UploadAck, error)

	// GetNote returns the completed note for a job id, or ErrNoteNotFound
	// when no completed result exists.
	GetNote(ctx context.Context, jobID string) (*model.Note, error)

	// Status reports the tracked lifecycle status of a job.
	Status(jobID string) (model.JobStatus, bool)
}

type noteService struct {
	store      store.JobStore
	tracker    *jobs.Tracker
	dispatcher *jobs.Dispatcher
	processor  *jobs.Processor
	log        *slog.Logger
}

// NewNoteService constructs a NoteService.
func NewNoteService(st store.JobStore, tracker *jobs.Tracker, dispatcher *jobs.Dispatcher, processor *jobs.Processor, log *slog.Logger) NoteService {
	return &noteService{
		store:      st,
		tracker:    tracker,
		dispatcher: dispatcher,
		processor:  processor,
		log:        log,
	}
}

func (s *noteService) Submit(ctx context.Context, sub Submission) (*model.UploadAck, error) {
	jobID := uuid.New().String()

	if sub.Audio != nil {
		if _, err := s.store.PutArtifact(ctx, jobID, model.KindAudio, sub.Audio.Filename, sub.Audio.Reader, sub.Audio.Size); err != nil {
			return nil, fmt.Errorf("store audio upload: %w", err)
		}
	}
	for _, img := range sub.Images {
		if _, err := s.store.PutArtifact(ctx, jobID, model.KindImage, img.Filename, img.Reader, img.Size); err != nil {
			return nil, fmt.Errorf("store image upload %s: %w", img.Filename, err)
		}
	}

	if err := s.tracker.Register(jobID); err != nil {
		// ids are generated, so a collision here is a programming error
		return nil, fmt.Errorf("register job: %w", err)
	}

	notes := sub.Notes
	// The request context dies with the response; the background task gets
	// its own.
	s.dispatcher.Dispatch(jobID, func() {
		s.processor.Process(context.Background(), jobID, notes)
	})

	s.log.Info("job submitted", "job_id", jobID,
		"has_audio", sub.Audio != nil, "images", len(sub.Images), "has_notes", sub.Notes != "")

	return &model.UploadAck{
		JobID:   jobID,
		Status:  string(model.JobStatusProcessing),
		Message: "Upload received and processing started",
	}, nil
}

func (s *noteService) GetNote(ctx context.Context, jobID string) (*model.Note, error) {
	content, err := s.store.GetResult(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrResultNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}

	return &model.Note{
		ID:       jobID,
		Title:    model.PlaceholderTitle,
		Content:  content,
		Summary:  model.PlaceholderSummary,
		Keywords: []string{},
	}, nil
}

func (s *noteService) Status(jobID string) (model.JobStatus, bool) {
	return s.tracker.Status(jobID)
}
