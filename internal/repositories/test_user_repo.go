package repositories

import (
	"errors"

	"gorm.io/gorm"

	"github.com/RostislavDaniliv/eddy-school/internal/models"
)

type TestUserRepo interface {
	GetOrCreate(contactID string) (*models.TestUser, error)
	Save(tu *models.TestUser) error
	IncrementUsage(contactID string, tokens int) error
}

type testUserRepo struct {
	db *gorm.DB
}

func NewTestUserRepo(db *gorm.DB) TestUserRepo {
	return &testUserRepo{db: db}
}

func (r *testUserRepo) GetOrCreate(contactID string) (*models.TestUser, error) {
	var tu models.TestUser
	err := r.db.Where("contact_id = ?", contactID).First(&tu).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		tu = models.TestUser{ContactID: contactID}
		if err := r.db.Create(&tu).Error; err != nil {
			return nil, err
		}
		return &tu, nil
	}
	if err != nil {
		return nil, err
	}
	return &tu, nil
}

func (r *testUserRepo) Save(tu *models.TestUser) error {
	return r.db.Save(tu).Error
}

func (r *testUserRepo) IncrementUsage(contactID string, tokens int) error {
	return r.db.Model(&models.TestUser{}).
		Where("contact_id = ?", contactID).
		Updates(map[string]interface{}{
			"request_count": gorm.Expr("request_count + 1"),
			"token_used":    gorm.Expr("token_used + ?", tokens),
		}).Error
}
