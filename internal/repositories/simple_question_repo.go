package repositories

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/RostislavDaniliv/eddy-school/internal/models"
)

type SimpleQuestionRepo interface {
	ListByBusinessUnit(businessUnitID uuid.UUID) ([]models.SimpleQuestion, error)
	Create(sq *models.SimpleQuestion) error
}

type simpleQuestionRepo struct {
	db *gorm.DB
}

func NewSimpleQuestionRepo(db *gorm.DB) SimpleQuestionRepo {
	return &simpleQuestionRepo{db: db}
}

// ListByBusinessUnit returns FAQ entries in registration order. Order
// matters: the matcher resolves score ties by keeping the first maximal
// match it sees.
func (r *simpleQuestionRepo) ListByBusinessUnit(businessUnitID uuid.UUID) ([]models.SimpleQuestion, error) {
	var sqs []models.SimpleQuestion
	err := r.db.Where("business_unit_id = ?", businessUnitID).Order("created_at ASC").Find(&sqs).Error
	return sqs, err
}

func (r *simpleQuestionRepo) Create(sq *models.SimpleQuestion) error {
	return r.db.Create(sq).Error
}
