package mocks

import (
	"context"

	"noteapi/internal/model"
	"noteapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockNoteService struct {
	mock.Mock
}

func (m *MockNoteService) Submit(ctx context.Context, sub service.Submission) (*model.UploadAck, error) {
	args := m.Called(ctx, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UploadAck), args.Error(1)
}

func (m *MockNoteService) GetNote(ctx context.Context, jobID string) (*model.Note, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Note), args.Error(1)
}

func (m *MockNoteService) Status(jobID string) (model.JobStatus, bool) {
	args := m.Called(jobID)
	return args.Get(0).(model.JobStatus), args.Bool(1)
}
