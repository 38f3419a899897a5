package repositories

import (
	"errors"

	"favr_backend/internal/lifecycle"
	"favr_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrMatchNotFound = errors.New("match not found")

type MatchRepository interface {
	FindByID(id string) (*models.Match, error)
	FindActiveByTask(taskID string) (*models.Match, error)
	ListByHelper(helperID string) ([]models.Match, error)
	// Advance moves a match one step under a row lock, validating the
	// transition inside the transaction.
	Advance(matchID string, to models.MatchStatus) (*models.Match, error)
	// Complete drives match and task to completed in one commit.
	Complete(matchID string) (*models.Match, error)
	// Cancel cancels the match and the task together, clearing the task's
	// helper reference.
	Cancel(matchID string) (*models.Match, error)
	// HasCompletedBetween reports whether the two users shared a completed
	// match in either role.
	HasCompletedBetween(userA, userB string) (bool, string, error)
}

type MatchRepositoryImpl struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) *MatchRepositoryImpl {
	return &MatchRepositoryImpl{db: db}
}

func (r *MatchRepositoryImpl) FindByID(id string) (*models.Match, error) {
	var match models.Match
	err := r.db.Preload("Task").Where("id = ?", id).First(&match).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, wrapStoreError(err)
	}
	return &match, nil
}

func (r *MatchRepositoryImpl) FindActiveByTask(taskID string) (*models.Match, error) {
	var match models.Match
	err := r.db.Where("task_id = ? AND status <> ?", taskID, models.MatchStatusCancelled).
		First(&match).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, wrapStoreError(err)
	}
	return &match, nil
}

func (r *MatchRepositoryImpl) ListByHelper(helperID string) ([]models.Match, error) {
	var matches []models.Match
	err := r.db.Preload("Task").
		Where("helper_id = ?", helperID).
		Order("created_at DESC").
		Find(&matches).Error
	if err != nil {
		return nil, wrapStoreError(err)
	}
	return matches, nil
}

func (r *MatchRepositoryImpl) lockMatch(tx *gorm.DB, matchID string) (*models.Match, error) {
	var match models.Match
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", matchID).
		First(&match).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, wrapStoreError(err)
	}
	return &match, nil
}

func (r *MatchRepositoryImpl) Advance(matchID string, to models.MatchStatus) (*models.Match, error) {
	var updated *models.Match

	err := r.db.Transaction(func(tx *gorm.DB) error {
		match, err := r.lockMatch(tx, matchID)
		if err != nil {
			return err
		}
		if err := lifecycle.ValidateMatchTransition(match.Status, to); err != nil {
			return err
		}

		if err := tx.Model(match).Update("status", to).Error; err != nil {
			return wrapStoreError(err)
		}

		// The helper arriving moves the task to in-progress in the same commit.
		if to == models.MatchStatusArrived {
			var task models.Task
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("id = ?", match.TaskID).
				First(&task).Error
			if err != nil {
				return wrapStoreError(err)
			}
			if err := lifecycle.ValidateTaskTransition(task.Status, models.TaskStatusInProgress); err != nil {
				return err
			}
			if err := tx.Model(&task).Update("status", models.TaskStatusInProgress).Error; err != nil {
				return wrapStoreError(err)
			}
		}

		match.Status = to
		updated = match
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Complete couples the two state machines: the match reaches completed and,
// in the same commit, the task does too.
func (r *MatchRepositoryImpl) Complete(matchID string) (*models.Match, error) {
	var updated *models.Match

	err := r.db.Transaction(func(tx *gorm.DB) error {
		match, err := r.lockMatch(tx, matchID)
		if err != nil {
			return err
		}
		if err := lifecycle.ValidateMatchTransition(match.Status, models.MatchStatusCompleted); err != nil {
			return err
		}

		var task models.Task
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", match.TaskID).
			First(&task).Error
		if err != nil {
			return wrapStoreError(err)
		}
		if err := lifecycle.ValidateTaskTransition(task.Status, models.TaskStatusCompleted); err != nil {
			return err
		}

		if err := tx.Model(match).Update("status", models.MatchStatusCompleted).Error; err != nil {
			return wrapStoreError(err)
		}
		if err := tx.Model(&task).Update("status", models.TaskStatusCompleted).Error; err != nil {
			return wrapStoreError(err)
		}

		match.Status = models.MatchStatusCompleted
		task.Status = models.TaskStatusCompleted
		match.Task = &task
		updated = match
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *MatchRepositoryImpl) Cancel(matchID string) (*models.Match, error) {
	var updated *models.Match

	err := r.db.Transaction(func(tx *gorm.DB) error {
		match, err := r.lockMatch(tx, matchID)
		if err != nil {
			return err
		}
		if err := lifecycle.ValidateMatchTransition(match.Status, models.MatchStatusCancelled); err != nil {
			return err
		}

		var task models.Task
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", match.TaskID).
			First(&task).Error
		if err != nil {
			return wrapStoreError(err)
		}
		if err := lifecycle.ValidateTaskTransition(task.Status, models.TaskStatusCancelled); err != nil {
			return err
		}

		if err := tx.Model(match).Update("status", models.MatchStatusCancelled).Error; err != nil {
			return wrapStoreError(err)
		}
		// Cancelled tasks carry no helper reference (helper iff claimed).
		err = tx.Model(&task).Updates(map[string]interface{}{
			"status":    models.TaskStatusCancelled,
			"helper_id": nil,
		}).Error
		if err != nil {
			return wrapStoreError(err)
		}

		match.Status = models.MatchStatusCancelled
		updated = match
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *MatchRepositoryImpl) HasCompletedBetween(userA, userB string) (bool, string, error) {
	var match models.Match
	err := r.db.
		Joins("JOIN tasks ON tasks.id = matches.task_id").
		Where("matches.status = ?", models.MatchStatusCompleted).
		Where(
			r.db.Where("matches.helper_id = ? AND tasks.owner_id = ?", userA, userB).
				Or("matches.helper_id = ? AND tasks.owner_id = ?", userB, userA),
		).
		First(&match).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, "", nil
		}
		return false, "", wrapStoreError(err)
	}
	return true, match.ID, nil
}
