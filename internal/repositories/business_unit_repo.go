package repositories

import (
	"errors"

	"gorm.io/gorm"

	"github.com/RostislavDaniliv/eddy-school/internal/models"
)

var ErrBusinessUnitNotFound = errors.New("business unit doesn't exist")

type BusinessUnitRepo interface {
	GetByAPIKey(apikey string) (*models.BusinessUnit, error)
	GetByID(id string) (*models.BusinessUnit, error)
	APIKeyExists(apikey string) (bool, error)
	Create(bu *models.BusinessUnit) error
	Save(bu *models.BusinessUnit) error
	Suspend(id string, active bool) error
	Delete(id string) error
	ListActive() ([]models.BusinessUnit, error)
}

type businessUnitRepo struct {
	db *gorm.DB
}

func NewBusinessUnitRepo(db *gorm.DB) BusinessUnitRepo {
	return &businessUnitRepo{db: db}
}

func (r *businessUnitRepo) GetByAPIKey(apikey string) (*models.BusinessUnit, error) {
	var bu models.BusinessUnit
	err := r.db.Where("apikey = ?", apikey).First(&bu).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBusinessUnitNotFound
	}
	if err != nil {
		return nil, err
	}
	return &bu, nil
}

func (r *businessUnitRepo) GetByID(id string) (*models.BusinessUnit, error) {
	var bu models.BusinessUnit
	err := r.db.Where("id = ?", id).First(&bu).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBusinessUnitNotFound
	}
	if err != nil {
		return nil, err
	}
	return &bu, nil
}

func (r *businessUnitRepo) APIKeyExists(apikey string) (bool, error) {
	var count int64
	err := r.db.Model(&models.BusinessUnit{}).Where("apikey = ?", apikey).Count(&count).Error
	return count > 0, err
}

// Create assigns a fresh apikey when none was given, re-rolling until the
// key doesn't collide with a stored one.
func (r *businessUnitRepo) Create(bu *models.BusinessUnit) error {
	if bu.APIKey == "" {
		for {
			key := models.GenerateAPIKey()
			exists, err := r.APIKeyExists(key)
			if err != nil {
				return err
			}
			if !exists {
				bu.APIKey = key
				break
			}
		}
	}
	return r.db.Create(bu).Error
}

func (r *businessUnitRepo) Save(bu *models.BusinessUnit) error {
	return r.db.Save(bu).Error
}

func (r *businessUnitRepo) Suspend(id string, active bool) error {
	return r.db.Model(&models.BusinessUnit{}).Where("id = ?", id).Update("is_active", active).Error
}

func (r *businessUnitRepo) Delete(id string) error {
	return r.db.Delete(&models.BusinessUnit{}, "id = ?", id).Error
}

func (r *businessUnitRepo) ListActive() ([]models.BusinessUnit, error) {
	var units []models.BusinessUnit
	err := r.db.Where("is_active = ?", true).Find(&units).Error
	return units, err
}
