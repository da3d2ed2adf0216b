package repositories

import (
	"gorm.io/gorm"

	"github.com/RostislavDaniliv/eddy-school/internal/models"
)

type ChatHistoryRepo interface {
	Log(record *models.ChatHistory) error
	LastByUser(userID string, limit int) ([]models.ChatHistory, error)
}

type chatHistoryRepo struct {
	db *gorm.DB
}

func NewChatHistoryRepo(db *gorm.DB) ChatHistoryRepo {
	return &chatHistoryRepo{db: db}
}

func (r *chatHistoryRepo) Log(record *models.ChatHistory) error {
	return r.db.Create(record).Error
}

// LastByUser returns the most recent exchanges for a contact, newest first.
func (r *chatHistoryRepo) LastByUser(userID string, limit int) ([]models.ChatHistory, error) {
	var records []models.ChatHistory
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}
