package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskMigrationBackfill recomputes stored derived fields across all
	// collections.
	TaskMigrationBackfill = "migration:backfill"
	// TaskDashboardWarmup precomputes the dashboard overview cache.
	TaskDashboardWarmup = "dashboard:warmup"
)

// BackfillPayload describes a requested backfill run.
type BackfillPayload struct {
	RequestedAt time.Time `json:"requestedAt"`
}

// NewBackfillTask constructs an Asynq task for a migration backfill.
func NewBackfillTask(payload BackfillPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskMigrationBackfill, data), nil
}

// NewWarmupTask constructs an Asynq task for a dashboard cache warmup.
func NewWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskDashboardWarmup, nil)
}
