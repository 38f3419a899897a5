package repositories

import (
	"favr_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VerificationRepository interface {
	// RecordEvent inserts the event idempotently: a second event of the same
	// type for the same user is a no-op, not an error.
	RecordEvent(event *models.VerificationEvent) error
	// RecordEventAndTier persists the event and the recomputed cached tier in
	// one transaction (the recompute_trust_tier procedure).
	RecordEventAndTier(event *models.VerificationEvent, tier func([]models.VerificationEvent) models.TrustTier) error
	ListByUser(userID string) ([]models.VerificationEvent, error)
	CreateEndorsement(endorsement *models.Endorsement) (created bool, err error)
}

type VerificationRepositoryImpl struct {
	db *gorm.DB
}

func NewVerificationRepository(db *gorm.DB) *VerificationRepositoryImpl {
	return &VerificationRepositoryImpl{db: db}
}

func (r *VerificationRepositoryImpl) RecordEvent(event *models.VerificationEvent) error {
	return wrapStoreError(
		r.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "type"}},
			DoNothing: true,
		}).Create(event).Error,
	)
}

func (r *VerificationRepositoryImpl) RecordEventAndTier(
	event *models.VerificationEvent,
	tier func([]models.VerificationEvent) models.TrustTier,
) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "type"}},
			DoNothing: true,
		}).Create(event).Error
		if err != nil {
			return wrapStoreError(err)
		}

		var events []models.VerificationEvent
		if err := tx.Where("user_id = ?", event.UserID).Find(&events).Error; err != nil {
			return wrapStoreError(err)
		}

		return wrapStoreError(
			tx.Model(&models.Profile{}).
				Where("user_id = ?", event.UserID).
				Update("trust_tier", tier(events)).Error,
		)
	})
}

func (r *VerificationRepositoryImpl) ListByUser(userID string) ([]models.VerificationEvent, error) {
	var events []models.VerificationEvent
	err := r.db.Where("user_id = ?", userID).Find(&events).Error
	if err != nil {
		return nil, wrapStoreError(err)
	}
	return events, nil
}

func (r *VerificationRepositoryImpl) CreateEndorsement(endorsement *models.Endorsement) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endorser_id"}, {Name: "endorsee_id"}},
		DoNothing: true,
	}).Create(endorsement)
	if result.Error != nil {
		return false, wrapStoreError(result.Error)
	}
	return result.RowsAffected > 0, nil
}
