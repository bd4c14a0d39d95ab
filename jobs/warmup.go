package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/leadkhata/leadkhata/internal/dashboard"
)

// WarmupJob precomputes the dashboard overview so the first request of the
// day is served from cache.
type WarmupJob struct {
	Dashboard *dashboard.Service
	Logger    *slog.Logger
}

// NewWarmupJob wires dependencies for the warmup handler.
func NewWarmupJob(dashboardSvc *dashboard.Service, logger *slog.Logger) *WarmupJob {
	return &WarmupJob{Dashboard: dashboardSvc, Logger: logger}
}

// Handle processes TaskDashboardWarmup tasks.
func (j *WarmupJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Dashboard == nil {
		return errors.New("warmup: handler not configured")
	}
	warmCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()
	if err := j.Dashboard.Warm(warmCtx); err != nil {
		j.logger().Error("dashboard warmup", slog.Any("error", err))
		return err
	}
	j.logger().Info("dashboard warmup completed", slog.Duration("duration", time.Since(start)))
	return nil
}

func (j *WarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskDashboardWarmup))
	}
	return slog.Default().With(slog.String("job", TaskDashboardWarmup))
}
