package repositories

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/RostislavDaniliv/eddy-school/internal/models"
)

type DocumentRepo interface {
	ListByBusinessUnit(businessUnitID uuid.UUID) ([]models.Document, error)
	GetByID(id string) (*models.Document, error)
	Create(doc *models.Document) error
	Update(doc *models.Document) error
	Delete(id string) error
}

type documentRepo struct {
	db *gorm.DB
}

func NewDocumentRepo(db *gorm.DB) DocumentRepo {
	return &documentRepo{db: db}
}

func (r *documentRepo) ListByBusinessUnit(businessUnitID uuid.UUID) ([]models.Document, error) {
	var docs []models.Document
	err := r.db.Where("business_unit_id = ?", businessUnitID).Order("created_at ASC").Find(&docs).Error
	return docs, err
}

func (r *documentRepo) GetByID(id string) (*models.Document, error) {
	var doc models.Document
	if err := r.db.Where("id = ?", id).First(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepo) Create(doc *models.Document) error {
	return r.db.Create(doc).Error
}

func (r *documentRepo) Update(doc *models.Document) error {
	return r.db.Save(doc).Error
}

func (r *documentRepo) Delete(id string) error {
	return r.db.Delete(&models.Document{}, "id = ?", id).Error
}
