package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL     string
	Port            string
	Env             string
	SendPulseURL    string
	SmartSenderURL  string
	QdrantURL       string
	QdrantAPIKey    string
	EmbeddingModel  string
	OpenAIKey       string
	StorageRoot     string
	GoogleCredsFile string
	DispatchRetries int
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env file not found, using system environment variables")
	}

	cfg := &Config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		Port:            os.Getenv("PORT"),
		Env:             os.Getenv("ENV"),
		SendPulseURL:    os.Getenv("SEND_PULSE_URL"),
		SmartSenderURL:  os.Getenv("SMART_SENDER_URL"),
		QdrantURL:       os.Getenv("QDRANT_URL"),
		QdrantAPIKey:    os.Getenv("QDRANT_API_KEY"),
		EmbeddingModel:  os.Getenv("EMBEDDING_MODEL"),
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		StorageRoot:     os.Getenv("STORAGE_ROOT"),
		GoogleCredsFile: os.Getenv("GOOGLE_CREDS_FILE"),
	}

	// Default values
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.SendPulseURL == "" {
		cfg.SendPulseURL = "https://api.sendpulse.com"
	}
	if cfg.SmartSenderURL == "" {
		cfg.SmartSenderURL = "https://api.smartsender.com"
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = "text-embedding-3-small"
	}
	if cfg.StorageRoot == "" {
		cfg.StorageRoot = "."
	}
	if cfg.GoogleCredsFile == "" {
		cfg.GoogleCredsFile = "media/google_creds/default_key.json"
	}
	if v := os.Getenv("DISPATCH_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DispatchRetries = n
		}
	}
	if cfg.DispatchRetries == 0 {
		cfg.DispatchRetries = 1
	}

	return cfg
}
