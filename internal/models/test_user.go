package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TestUser tracks trial usage per external contact: how many requests were
// made, how many tokens were burned, and the hash of the last ad hoc
// document so a re-upload of the same file does not trigger a rebuild.
type TestUser struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ContactID    string    `gorm:"type:varchar(200);index;not null" json:"contact_id"`
	FileHashSum  string    `gorm:"type:varchar(500)" json:"file_hash_sum"`
	RequestCount int       `gorm:"default:0" json:"request_count"`
	FileSize     float64   `gorm:"default:0" json:"file_size"`
	TokenUsed    int       `gorm:"default:0" json:"token_used"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (TestUser) TableName() string {
	return "test_users"
}

// BeforeCreate sets UUID before creating
func (tu *TestUser) BeforeCreate(tx *gorm.DB) error {
	if tu.ID == uuid.Nil {
		tu.ID = uuid.New()
	}
	return nil
}
