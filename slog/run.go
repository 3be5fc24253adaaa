package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/cmtharvest"
)

// Ensure LoggingRunService implements cmtharvest.RunService.
var _ cmtharvest.RunService = (*LoggingRunService)(nil)

// LoggingRunService wraps a RunService, logging writes. Reads pass through.
type LoggingRunService struct {
	cmtharvest.RunService
	logger *slog.Logger
}

// NewLoggingRunService creates a new LoggingRunService.
func NewLoggingRunService(next cmtharvest.RunService, logger *slog.Logger) *LoggingRunService {
	return &LoggingRunService{RunService: next, logger: logger}
}

// CreateRun logs the recorded run.
func (s *LoggingRunService) CreateRun(ctx context.Context, run *cmtharvest.Run, ds *cmtharvest.Dataset) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("record run",
			"id", run.ID,
			"outcome", run.Outcome,
			"records", ds.Len(),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.RunService.CreateRun(ctx, run, ds)
}

// DeleteRun logs the deleted run.
func (s *LoggingRunService) DeleteRun(ctx context.Context, id string) (err error) {
	defer func() {
		s.logger.Info("delete run", "id", id, "err", err)
	}()
	return s.RunService.DeleteRun(ctx, id)
}
