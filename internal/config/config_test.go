package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setRequired fills the three mandatory vars and blanks every optional one
// so values from the host environment never leak into assertions.
func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "creds.json")
	t.Setenv("GOOGLE_SHEETS_SPREADSHEET_ID", "sheet-id")
	for _, key := range []string{
		"SHEETS_RANGE", "WHATSAPP_NUMBER", "WELCOME_IMAGE", "AGENT_PROFILE",
		"BOT_MODE", "PORT", "PUBLIC_URL", "WEBHOOK_SECRET", "DATA_DIR",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "123:abc", cfg.BotToken)
	assert.Equal(t, "creds.json", cfg.CredentialsFile)
	assert.Equal(t, "sheet-id", cfg.SpreadsheetID)
	assert.Equal(t, "Sheet1!A2:F", cfg.SheetsRange)
	assert.Equal(t, "+60175773070", cfg.WhatsAppNumber)
	assert.Equal(t, "welcome_image.jpg", cfg.WelcomeImage)
	assert.NotEmpty(t, cfg.AgentProfile)
	assert.Equal(t, ModePolling, cfg.Mode)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ".", cfg.DataDir)
}

func TestLoadMissingRequired(t *testing.T) {
	for _, name := range []string{
		"TELEGRAM_BOT_TOKEN",
		"GOOGLE_APPLICATION_CREDENTIALS",
		"GOOGLE_SHEETS_SPREADSHEET_ID",
	} {
		t.Run(name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(name, "")

			_, err := Load()

			require.Error(t, err)
			assert.Contains(t, err.Error(), name)
		})
	}
}

func TestLoadWebhookMode(t *testing.T) {
	setRequired(t)
	t.Setenv("BOT_MODE", ModeWebhook)
	t.Setenv("PUBLIC_URL", "https://bot.example.com")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, ModeWebhook, cfg.Mode)
	assert.Equal(t, "https://bot.example.com", cfg.PublicURL)
	assert.NotEmpty(t, cfg.WebhookSecret, "secret is generated when unset")
}

func TestLoadWebhookModeKeepsProvidedSecret(t *testing.T) {
	setRequired(t)
	t.Setenv("BOT_MODE", ModeWebhook)
	t.Setenv("PUBLIC_URL", "https://bot.example.com")
	t.Setenv("WEBHOOK_SECRET", "fixed-secret")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "fixed-secret", cfg.WebhookSecret)
}

func TestLoadWebhookModeNeedsPublicURL(t *testing.T) {
	setRequired(t)
	t.Setenv("BOT_MODE", ModeWebhook)

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "PUBLIC_URL")
}

func TestLoadRejectsUnknownMode(t *testing.T) {
	setRequired(t)
	t.Setenv("BOT_MODE", "carrier-pigeon")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "BOT_MODE")
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("SHEETS_RANGE", "Listings!A2:G")
	t.Setenv("WHATSAPP_NUMBER", "+15550001111")
	t.Setenv("DATA_DIR", "/var/lib/azizibot")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "Listings!A2:G", cfg.SheetsRange)
	assert.Equal(t, "+15550001111", cfg.WhatsAppNumber)
	assert.Equal(t, "/var/lib/azizibot", cfg.DataDir)
}
