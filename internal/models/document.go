package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document is a single knowledge source for a business unit: either a Google
// Docs document id or an uploaded file on local storage.
type Document struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name           string     `gorm:"type:varchar(100)" json:"name"`
	DocumentID     string     `gorm:"type:varchar(100)" json:"document_id"`
	FilePath       string     `gorm:"type:varchar(300)" json:"file"`
	BusinessUnitID *uuid.UUID `gorm:"type:uuid;index" json:"business_unit"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	BusinessUnit *BusinessUnit `gorm:"foreignKey:BusinessUnitID;references:ID;constraint:OnDelete:SET NULL" json:"-"`
}

func (Document) TableName() string {
	return "documents"
}

// BeforeCreate sets UUID before creating
func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// IsGoogleDoc reports whether this document lives in Google Docs.
func (d *Document) IsGoogleDoc() bool {
	return d.DocumentID != ""
}
