package mock

import (
	"context"

	"github.com/fwojciec/cmtharvest"
)

var _ cmtharvest.RunService = (*RunService)(nil)

// RunService is a mock implementation of cmtharvest.RunService.
type RunService struct {
	CreateRunFn   func(ctx context.Context, run *cmtharvest.Run, ds *cmtharvest.Dataset) error
	FindRunByIDFn func(ctx context.Context, id string) (*cmtharvest.Run, error)
	FindRunsFn    func(ctx context.Context, filter cmtharvest.RunFilter) ([]*cmtharvest.Run, error)
	FindRecordsFn func(ctx context.Context, runID string) (*cmtharvest.Dataset, error)
	DeleteRunFn   func(ctx context.Context, id string) error
}

func (s *RunService) CreateRun(ctx context.Context, run *cmtharvest.Run, ds *cmtharvest.Dataset) error {
	return s.CreateRunFn(ctx, run, ds)
}

func (s *RunService) FindRunByID(ctx context.Context, id string) (*cmtharvest.Run, error) {
	return s.FindRunByIDFn(ctx, id)
}

func (s *RunService) FindRuns(ctx context.Context, filter cmtharvest.RunFilter) ([]*cmtharvest.Run, error) {
	return s.FindRunsFn(ctx, filter)
}

func (s *RunService) FindRecords(ctx context.Context, runID string) (*cmtharvest.Dataset, error) {
	return s.FindRecordsFn(ctx, runID)
}

func (s *RunService) DeleteRun(ctx context.Context, id string) error {
	return s.DeleteRunFn(ctx, id)
}
