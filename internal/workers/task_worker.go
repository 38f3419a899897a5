package workers

import (
	"context"
	"time"

	"favr_backend/internal/config"
	"favr_backend/internal/logger"
	"favr_backend/internal/repositories"
)

// TaskWorker runs the periodic maintenance jobs: auto-cancelling open tasks
// nobody claimed, and pruning expired refresh tokens.
type TaskWorker struct {
	tasks repositories.TaskRepository
	users repositories.UserRepository
}

func NewTaskWorker(tasks repositories.TaskRepository, users repositories.UserRepository) *TaskWorker {
	return &TaskWorker{tasks: tasks, users: users}
}

func (w *TaskWorker) Start(ctx context.Context) {
	go w.cancelStaleTasks(ctx)
	go w.cleanRefreshTokens(ctx)
}

// cancelStaleTasks cancels open tasks older than the configured cutoff so the
// board does not fill up with requests nobody will take.
func (w *TaskWorker) cancelStaleTasks(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("task worker stopped")
			return
		case <-ticker.C:
			cutoff := config.GetConfig().Tasks.StaleOpenHours
			affected, err := w.tasks.CancelStaleOpen(cutoff)
			logger.WorkerLog("task_worker", "cancel_stale_open", err)
			if err == nil && affected > 0 {
				logger.Info("auto-cancelled stale open tasks", "count", affected, "older_than_hours", cutoff)
			}
		}
	}
}

func (w *TaskWorker) cleanRefreshTokens(ctx context.Context) {
	ticker := time.NewTicker(6 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := w.users.CleanExpiredRefreshTokens()
			logger.WorkerLog("task_worker", "clean_refresh_tokens", err)
		}
	}
}
