package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/leadkhata/leadkhata/internal/migration"
)

// BackfillJob runs migration backfills off the request path.
type BackfillJob struct {
	Migrations *migration.Service
	Logger     *slog.Logger
}

// NewBackfillJob wires dependencies for the backfill handler.
func NewBackfillJob(migrations *migration.Service, logger *slog.Logger) *BackfillJob {
	return &BackfillJob{Migrations: migrations, Logger: logger}
}

// Handle processes TaskMigrationBackfill tasks.
func (j *BackfillJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Migrations == nil {
		return errors.New("backfill: handler not configured")
	}
	var payload BackfillPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}

	result, err := j.Migrations.Run(ctx)
	if err != nil {
		j.logger().Error("backfill run", slog.Any("error", err))
		return err
	}
	j.logger().Info("backfill completed",
		slog.String("run_id", result.RunID),
		slog.Int("updated", result.Updated),
		slog.Int("skipped", result.Skipped),
		slog.Int("errors", len(result.Errors)))
	return nil
}

func (j *BackfillJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskMigrationBackfill))
	}
	return slog.Default().With(slog.String("job", TaskMigrationBackfill))
}
