package repositories

import (
	"favr_backend/internal/models"

	"gorm.io/gorm"
)

type MessageRepository interface {
	Create(message *models.Message) error
	// ListByMatch returns messages in insertion order; timestamps are
	// monotonically increasing within a match.
	ListByMatch(matchID string, limit, offset int) ([]models.Message, error)
}

type MessageRepositoryImpl struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepositoryImpl {
	return &MessageRepositoryImpl{db: db}
}

func (r *MessageRepositoryImpl) Create(message *models.Message) error {
	return wrapStoreError(r.db.Create(message).Error)
}

func (r *MessageRepositoryImpl) ListByMatch(matchID string, limit, offset int) ([]models.Message, error) {
	query := r.db.Where("match_id = ?", matchID).Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	var messages []models.Message
	if err := query.Find(&messages).Error; err != nil {
		return nil, wrapStoreError(err)
	}
	return messages, nil
}
