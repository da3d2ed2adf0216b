package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// SimpleQuestion maps one or more question phrasings to a canned answer,
// letting frequent questions skip the LLM pipeline entirely.
type SimpleQuestion struct {
	ID             uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	BusinessUnitID uuid.UUID      `gorm:"type:uuid;not null;index" json:"business_unit"`
	Question       string         `gorm:"type:text;not null" json:"question"`
	Answer         string         `gorm:"type:text;not null" json:"answer"`
	Tags           pq.StringArray `gorm:"type:text[]" json:"tags"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`

	BusinessUnit BusinessUnit `gorm:"foreignKey:BusinessUnitID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (SimpleQuestion) TableName() string {
	return "simple_questions"
}

// BeforeCreate sets UUID before creating
func (sq *SimpleQuestion) BeforeCreate(tx *gorm.DB) error {
	if sq.ID == uuid.Nil {
		sq.ID = uuid.New()
	}
	return nil
}

// Variants splits the pipe-delimited question field into individual
// phrasings.
func (sq *SimpleQuestion) Variants() []string {
	parts := strings.Split(sq.Question, "|")
	variants := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			variants = append(variants, v)
		}
	}
	return variants
}
