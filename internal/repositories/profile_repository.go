package repositories

import (
	"errors"
	"fmt"
	"time"

	"favr_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrProfileNotFound = errors.New("profile not found")

// ErrCounterConflict signals a lost compare-and-swap race; callers retry from
// a fresh read.
var ErrCounterConflict = errors.New("profile counter update conflict")

type ProfileRepository interface {
	FindByUserID(userID string) (*models.Profile, error)
	// EnsureForUser is the race-safe upsert used at signup: concurrent
	// callers converge on a single row.
	EnsureForUser(profile *models.Profile) (*models.Profile, error)
	Update(profile *models.Profile) error
	UpdateTier(userID string, tier models.TrustTier) error
	// AdjustCounters applies credit/completion deltas conditioned on
	// updated_at being unchanged since the read; retries internally from a
	// fresh read on conflict.
	AdjustCounters(userID string, creditDelta, completedDelta int) error
	AdjustReliability(userID string, score float64) error
	Anonymize(userID string) error
}

type ProfileRepositoryImpl struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepositoryImpl {
	return &ProfileRepositoryImpl{db: db}
}

func (r *ProfileRepositoryImpl) FindByUserID(userID string) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, wrapStoreError(err)
	}
	return &profile, nil
}

func (r *ProfileRepositoryImpl) EnsureForUser(profile *models.Profile) (*models.Profile, error) {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(profile).Error
	if err != nil {
		return nil, wrapStoreError(err)
	}
	// Re-read: on conflict the insert was a no-op and profile.ID is empty.
	return r.FindByUserID(profile.UserID)
}

func (r *ProfileRepositoryImpl) Update(profile *models.Profile) error {
	return wrapStoreError(r.db.Save(profile).Error)
}

func (r *ProfileRepositoryImpl) UpdateTier(userID string, tier models.TrustTier) error {
	return wrapStoreError(
		r.db.Model(&models.Profile{}).
			Where("user_id = ?", userID).
			Updates(map[string]interface{}{"trust_tier": tier, "updated_at": time.Now()}).Error,
	)
}

const counterRetries = 5

func (r *ProfileRepositoryImpl) AdjustCounters(userID string, creditDelta, completedDelta int) error {
	for attempt := 0; attempt < counterRetries; attempt++ {
		profile, err := r.FindByUserID(userID)
		if err != nil {
			return err
		}

		newCredits := profile.Credits + creditDelta
		if newCredits < 0 {
			return fmt.Errorf("credit balance cannot go negative for user %s", userID)
		}

		// Conditional write: succeeds only if nobody touched the row since
		// our read.
		result := r.db.Model(&models.Profile{}).
			Where("user_id = ? AND updated_at = ?", userID, profile.UpdatedAt).
			Updates(map[string]interface{}{
				"credits":         newCredits,
				"tasks_completed": profile.TasksCompleted + completedDelta,
				"updated_at":      time.Now(),
			})
		if result.Error != nil {
			return wrapStoreError(result.Error)
		}
		if result.RowsAffected == 1 {
			return nil
		}
		// Lost the race: retry from a fresh read.
	}
	return ErrCounterConflict
}

func (r *ProfileRepositoryImpl) AdjustReliability(userID string, score float64) error {
	for attempt := 0; attempt < counterRetries; attempt++ {
		profile, err := r.FindByUserID(userID)
		if err != nil {
			return err
		}

		// Running average over completed tasks, clamped to 0..5.
		n := float64(profile.TasksCompleted)
		newScore := score
		if n > 0 {
			newScore = (profile.ReliabilityScore*n + score) / (n + 1)
		}
		if newScore > 5 {
			newScore = 5
		}
		if newScore < 0 {
			newScore = 0
		}

		result := r.db.Model(&models.Profile{}).
			Where("user_id = ? AND updated_at = ?", userID, profile.UpdatedAt).
			Updates(map[string]interface{}{
				"reliability_score": newScore,
				"updated_at":        time.Now(),
			})
		if result.Error != nil {
			return wrapStoreError(result.Error)
		}
		if result.RowsAffected == 1 {
			return nil
		}
	}
	return ErrCounterConflict
}

// Anonymize clears PII but keeps the row so historical tasks and matches stay
// referentially intact.
func (r *ProfileRepositoryImpl) Anonymize(userID string) error {
	return wrapStoreError(
		r.db.Model(&models.Profile{}).
			Where("user_id = ?", userID).
			Updates(map[string]interface{}{
				"display_name":  "Former member",
				"neighbourhood": "",
				"lat":           0,
				"lng":           0,
				"skills":        nil,
				"photos_count":  0,
				"updated_at":    time.Now(),
			}).Error,
	)
}
