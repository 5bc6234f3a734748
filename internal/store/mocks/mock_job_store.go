package mocks

import (
	"context"
	"io"

	"noteapi/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockJobStore struct {
	mock.Mock
}

func (m *MockJobStore) PutArtifact(ctx context.Context, jobID string, kind model.ArtifactKind, filename string, r io.Reader, size int64) (model.Artifact, error) {
	args := m.Called(ctx, jobID, kind, filename, r, size)
	return args.Get(0).(model.Artifact), args.Error(1)
}

func (m *MockJobStore) ListArtifacts(ctx context.Context, jobID string) ([]model.Artifact, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Artifact), args.Error(1)
}

func (m *MockJobStore) OpenArtifact(ctx context.Context, a model.Artifact) (io.ReadCloser, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockJobStore) PutResult(ctx context.Context, jobID string, markdown string) error {
	args := m.Called(ctx, jobID, markdown)
	return args.Error(0)
}

func (m *MockJobStore) GetResult(ctx context.Context, jobID string) (string, error) {
	args := m.Called(ctx, jobID)
	return args.String(0), args.Error(1)
}
