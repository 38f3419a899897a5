package repositories

import (
	"errors"

	"favr_backend/internal/models"
	"favr_backend/pkg/apperrors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrTaskNotFound = errors.New("task not found")

type TaskFilter struct {
	Category string
	Urgency  models.TaskUrgency
	Limit    int
	Offset   int
}

type TaskRepository interface {
	Create(task *models.Task) error
	FindByID(id string) (*models.Task, error)
	ListOpen(filter TaskFilter) ([]models.Task, error)
	ListByOwner(ownerID string) ([]models.Task, error)
	// UpdateStatus writes the transition conditioned on the current status so
	// concurrent writers cannot clobber each other. clearHelper also nulls
	// the helper reference (cancellation paths).
	UpdateStatus(taskID string, from, to models.TaskStatus, clearHelper bool) error
	// Claim atomically moves an open task to matched and inserts the match
	// row inside one transaction. See ClaimService for the protocol.
	Claim(taskID, helperID string) (*models.Match, error)
	CancelStaleOpen(olderThanHours int) (int64, error)
}

type TaskRepositoryImpl struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepositoryImpl {
	return &TaskRepositoryImpl{db: db}
}

func (r *TaskRepositoryImpl) Create(task *models.Task) error {
	return wrapStoreError(r.db.Create(task).Error)
}

func (r *TaskRepositoryImpl) FindByID(id string) (*models.Task, error) {
	var task models.Task
	err := r.db.Where("id = ?", id).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, wrapStoreError(err)
	}
	return &task, nil
}

func (r *TaskRepositoryImpl) ListOpen(filter TaskFilter) ([]models.Task, error) {
	query := r.db.Where("status = ?", models.TaskStatusOpen)
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Urgency != "" {
		query = query.Where("urgency = ?", filter.Urgency)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}

	var tasks []models.Task
	err := query.Order("created_at DESC").Find(&tasks).Error
	if err != nil {
		return nil, wrapStoreError(err)
	}
	return tasks, nil
}

func (r *TaskRepositoryImpl) ListByOwner(ownerID string) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&tasks).Error
	if err != nil {
		return nil, wrapStoreError(err)
	}
	return tasks, nil
}

func (r *TaskRepositoryImpl) UpdateStatus(taskID string, from, to models.TaskStatus, clearHelper bool) error {
	updates := map[string]interface{}{"status": to}
	if clearHelper {
		updates["helper_id"] = nil
	}

	result := r.db.Model(&models.Task{}).
		Where("id = ? AND status = ?", taskID, from).
		Updates(updates)
	if result.Error != nil {
		return wrapStoreError(result.Error)
	}
	if result.RowsAffected == 0 {
		// Someone moved the task first; re-read so the conflict names the
		// state the task actually reached.
		var current models.Task
		err := r.db.Select("status").Where("id = ?", taskID).First(&current).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return wrapStoreError(err)
		}
		return apperrors.ErrInvalidTransition("task", string(current.Status), string(to))
	}
	return nil
}

// Claim is the server-side atomic claim procedure. Inside one transaction it
// re-reads the task under a row lock, verifies it is still open and that the
// helper is not the owner, then inserts the match and flips the task in the
// same commit. Concurrent claimers serialize on the row lock; losers observe
// status != open and get ErrTaskAlreadyMatched.
func (r *TaskRepositoryImpl) Claim(taskID, helperID string) (*models.Match, error) {
	var match *models.Match

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", taskID).
			First(&task).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return wrapStoreError(err)
		}

		if task.OwnerID == helperID {
			return apperrors.ErrOwnTaskClaim
		}
		switch task.Status {
		case models.TaskStatusOpen:
			// proceed
		case models.TaskStatusMatched, models.TaskStatusInProgress, models.TaskStatusCompleted:
			return apperrors.ErrTaskAlreadyMatched
		default:
			return apperrors.ErrTaskUnavailable
		}

		match = &models.Match{
			TaskID:   taskID,
			HelperID: helperID,
			Status:   models.MatchStatusPending,
		}
		if err := tx.Create(match).Error; err != nil {
			return wrapStoreError(err)
		}

		return wrapStoreError(
			tx.Model(&models.Task{}).
				Where("id = ?", taskID).
				Updates(map[string]interface{}{
					"status":    models.TaskStatusMatched,
					"helper_id": helperID,
				}).Error,
		)
	})
	if err != nil {
		return nil, err
	}
	return match, nil
}

func (r *TaskRepositoryImpl) CancelStaleOpen(olderThanHours int) (int64, error) {
	result := r.db.Exec(`
		UPDATE tasks
		SET status = 'cancelled', updated_at = NOW()
		WHERE status = 'open'
		AND created_at < NOW() - make_interval(hours => ?)
	`, olderThanHours)
	if result.Error != nil {
		return 0, wrapStoreError(result.Error)
	}
	return result.RowsAffected, nil
}
