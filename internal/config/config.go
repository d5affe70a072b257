package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Update transport modes.
const (
	ModePolling = "polling"
	ModeWebhook = "webhook"
)

type Config struct {
	BotToken        string
	CredentialsFile string
	SpreadsheetID   string

	SheetsRange    string
	WhatsAppNumber string
	WelcomeImage   string
	AgentProfile   string

	Mode          string
	Port          string
	PublicURL     string
	WebhookSecret string
	DataDir       string
}

func Load() (*Config, error) {
	// .env is optional — env vars may already be set (e.g. in production)
	_ = godotenv.Load()

	cfg := &Config{
		BotToken:        os.Getenv("TELEGRAM_BOT_TOKEN"),
		CredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		SpreadsheetID:   os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID"),
		SheetsRange:     os.Getenv("SHEETS_RANGE"),
		WhatsAppNumber:  os.Getenv("WHATSAPP_NUMBER"),
		WelcomeImage:    os.Getenv("WELCOME_IMAGE"),
		AgentProfile:    os.Getenv("AGENT_PROFILE"),
		Mode:            os.Getenv("BOT_MODE"),
		Port:            os.Getenv("PORT"),
		PublicURL:       os.Getenv("PUBLIC_URL"),
		WebhookSecret:   os.Getenv("WEBHOOK_SECRET"),
		DataDir:         os.Getenv("DATA_DIR"),
	}

	if cfg.SheetsRange == "" {
		cfg.SheetsRange = "Sheet1!A2:F" // includes the image URLs column
	}
	if cfg.WhatsAppNumber == "" {
		cfg.WhatsAppNumber = "+60175773070"
	}
	if cfg.WelcomeImage == "" {
		cfg.WelcomeImage = "welcome_image.jpg"
	}
	if cfg.AgentProfile == "" {
		cfg.AgentProfile = "Here's the Property Agent Profile: [Add profile details here]"
	}
	if cfg.Mode == "" {
		cfg.Mode = ModePolling
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "."
	}

	if cfg.Mode != ModePolling && cfg.Mode != ModeWebhook {
		return nil, fmt.Errorf("BOT_MODE must be %q or %q, got %q", ModePolling, ModeWebhook, cfg.Mode)
	}

	if cfg.Mode == ModeWebhook {
		if cfg.PublicURL == "" {
			return nil, fmt.Errorf("required env var PUBLIC_URL is not set in webhook mode")
		}
		if cfg.WebhookSecret == "" {
			secret, err := randomHex(16)
			if err != nil {
				return nil, fmt.Errorf("generating webhook secret: %w", err)
			}
			cfg.WebhookSecret = secret
		}
	}

	for _, req := range []struct {
		name, val string
	}{
		{"TELEGRAM_BOT_TOKEN", cfg.BotToken},
		{"GOOGLE_APPLICATION_CREDENTIALS", cfg.CredentialsFile},
		{"GOOGLE_SHEETS_SPREADSHEET_ID", cfg.SpreadsheetID},
	} {
		if req.val == "" {
			return nil, fmt.Errorf("required env var %s is not set", req.name)
		}
	}

	return cfg, nil
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
