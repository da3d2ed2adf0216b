package models

import (
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Bot modes decide how the evaluation score and answer text are turned into
// the final user-facing response.
const (
	StrictMode  = 1
	ManagerFlow = 2
	SoftMode    = 3
)

// Sending services
const (
	SendPulse   = 1
	SmartSender = 2
)

// Script modes
const (
	LLMMode      = 1
	GPTAssistant = 2
)

// Supported GPT models
const (
	GPT35Turbo    = "gpt-3.5-turbo"
	GPT35TurboNew = "gpt-3.5-turbo-1106"
	GPT4          = "gpt-4"
	GPT4Turbo     = "gpt-4-1106-preview"
	GPT4O         = "gpt-4o"
)

// apikey alphabet: ambiguous characters 1, I and l are excluded
const (
	apikeyDigits  = "023456789"
	apikeyLetters = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNOPQRSTUVWXYZ"
)

// BusinessUnit is a tenant: one bot with its own documents, LLM key and
// messaging channel credentials.
type BusinessUnit struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	APIKey               string     `gorm:"column:apikey;type:varchar(128);uniqueIndex;not null" json:"apikey"`
	Name                 string     `gorm:"type:varchar(100)" json:"name"`
	GPTAPIKey            string     `gorm:"type:varchar(300)" json:"gpt_api_key"`
	DocumentsList        string     `gorm:"type:text" json:"documents_list"`
	SendPulseSecret      string     `gorm:"type:varchar(128)" json:"sendpulse_secret"`
	SendPulseID          string     `gorm:"type:varchar(128)" json:"sendpulse_id"`
	SendPulseToken       string     `gorm:"type:text" json:"-"`
	SmartSenderToken     string     `gorm:"type:text" json:"-"`
	LastUpdateSendPulse  *time.Time `json:"last_update_sendpulse"`
	LastUsedDocuments    string     `gorm:"type:text" json:"last_used_documents_list"`
	GoogleCreds          string     `gorm:"type:varchar(300)" json:"google_creds"`
	DefaultText          string     `gorm:"type:varchar(600)" json:"default_text"`
	PanicText            string     `gorm:"type:varchar(600)" json:"panic_text"`
	LastUpdateDocument   *time.Time `json:"last_update_document"`
	Temperature          float32    `gorm:"default:0" json:"temperature"`
	MaxTokens            int        `gorm:"default:0" json:"max_tokens"`
	ChunkSize            int        `gorm:"default:0" json:"chunk_size"`
	ChunkOverlap         int        `gorm:"default:0" json:"chunk_overlap"`
	SimilarityTopK       int        `gorm:"default:0" json:"similarity_top_k"`
	BotMode              int        `gorm:"default:1" json:"bot_mode"`
	GPTModel             string     `gorm:"type:varchar(100);default:'gpt-3.5-turbo'" json:"gpt_model"`
	EvalPrompt           string     `gorm:"type:text" json:"eval_prompt"`
	SystemPrompt         string     `gorm:"type:text" json:"system_prompt"`
	EvalScore            float64    `gorm:"default:3" json:"eval_score"`
	SendingService       int        `gorm:"default:1" json:"sending_service"`
	ScriptMode           int        `gorm:"default:1" json:"script_mode"`
	GPTAssistantID       string     `gorm:"type:varchar(128)" json:"gpt_assistant_id"`
	IsActive             bool       `gorm:"default:true" json:"is_active"`
	SimilaritySimpleQ    float64    `gorm:"default:0.79" json:"similarity_simple_q"`
	IsTrialUserLimits    bool       `gorm:"default:false" json:"is_trial_user_limits"`
	RequestsCountLimit   int        `gorm:"default:0" json:"requests_count_limit"`
	FileSizeLimit        int        `gorm:"default:0" json:"file_size_limit"`
	TokenUsedLimit       int        `gorm:"column:token_used;default:0" json:"token_used"`
	UsageLimitMessage    string     `gorm:"type:varchar(500)" json:"usage_limit_message"`
	CreatedAt            time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (BusinessUnit) TableName() string {
	return "business_units"
}

// BeforeCreate sets UUID before creating
func (bu *BusinessUnit) BeforeCreate(tx *gorm.DB) error {
	if bu.ID == uuid.Nil {
		bu.ID = uuid.New()
	}
	return nil
}

// GenerateAPIKey produces a key in the NNNN-XXXX format. Digits never include
// "1" and letters never include "I" or "l" so the key survives being read
// aloud or copied by hand. Uniqueness against stored keys is the caller's
// job (repository re-rolls on collision).
func GenerateAPIKey() string {
	var sb strings.Builder
	for i := 0; i < 4; i++ {
		sb.WriteByte(apikeyDigits[rand.Intn(len(apikeyDigits))])
	}
	sb.WriteByte('-')
	alphabet := apikeyLetters + apikeyDigits
	for i := 0; i < 4; i++ {
		sb.WriteByte(alphabet[rand.Intn(len(alphabet))])
	}
	return sb.String()
}

// SimilarityThreshold clamps the configured FAQ threshold into the
// supported 0.50-0.94 range.
func (bu *BusinessUnit) SimilarityThreshold() float64 {
	t := bu.SimilaritySimpleQ
	if t < 0.50 {
		return 0.50
	}
	if t > 0.94 {
		return 0.94
	}
	return t
}
