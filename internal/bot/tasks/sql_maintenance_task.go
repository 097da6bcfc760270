package tasks

import (
	"context"
	"fmt"
	"time"
)

const maintenanceTimeout = 5 * time.Minute

// newSQLMaintenanceTask returns a task that runs database maintenance
// (VACUUM) to keep the SQLite file compact.
func newSQLMaintenanceTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "sql_maintenance")

	return func(ctx context.Context) error {
		taskCtx, cancel := context.WithTimeout(ctx, maintenanceTimeout)
		defer cancel()

		if err := deps.Store.RunSQLMaintenance(taskCtx); err != nil {
			return fmt.Errorf("sql maintenance failed: %w", err)
		}

		log.InfoContext(taskCtx, "Database maintenance completed")
		return nil
	}
}
