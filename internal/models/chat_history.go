package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ChatHistory is one completed question/answer exchange. Records are
// append-only; the pipeline reads the most recent ones back to give the
// model conversational memory.
type ChatHistory struct {
	ID             uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	BusinessUnitID *uuid.UUID     `gorm:"type:uuid;index" json:"business_unit"`
	Username       string         `gorm:"type:varchar(200)" json:"username"`
	UserID         string         `gorm:"type:varchar(100);index" json:"user_id"`
	UserQuestion   string         `gorm:"type:text" json:"user_question"`
	SystemAnswer   string         `gorm:"type:text" json:"system_answer"`
	Delivery       datatypes.JSON `gorm:"type:jsonb" json:"delivery,omitempty"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`

	BusinessUnit *BusinessUnit `gorm:"foreignKey:BusinessUnitID;references:ID;constraint:OnDelete:SET NULL" json:"-"`
}

func (ChatHistory) TableName() string {
	return "chat_history"
}

// BeforeCreate sets UUID before creating
func (ch *ChatHistory) BeforeCreate(tx *gorm.DB) error {
	if ch.ID == uuid.Nil {
		ch.ID = uuid.New()
	}
	return nil
}
