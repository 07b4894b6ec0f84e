package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := &Config{}
	cfg.Telegram.Token = "123:token"
	cfg.Telegram.AdminID = 42
	return cfg
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, Normalize(cfg))

	assert.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)
	assert.Equal(t, TransformModeLocal, cfg.Transform.Mode)
	assert.Equal(t, 60, cfg.Transform.TimeoutSeconds)
	assert.Equal(t, 24, cfg.Payment.EntitlementHours)
	assert.Equal(t, StorageMemory, cfg.Storage.Backend)
}

func TestNormalizeRequiredFields(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.Token = ""
	assert.Error(t, Normalize(cfg))

	cfg = validConfig()
	cfg.Telegram.AdminID = 0
	assert.Error(t, Normalize(cfg))
}

func TestNormalizeWebhookMode(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = "webhook"
	assert.Error(t, Normalize(cfg), "webhook mode requires url/listen/port")

	cfg.Webhook.URL = "https://bot.example.com"
	cfg.Webhook.Listen = "0.0.0.0"
	cfg.Webhook.Port = 8443
	require.NoError(t, Normalize(cfg))
}

func TestNormalizeRemoteTransform(t *testing.T) {
	cfg := validConfig()
	cfg.Transform.Mode = "remote"
	assert.Error(t, Normalize(cfg), "remote mode requires base_url and token")

	cfg.Transform.BaseURL = "https://inference.example.com/models"
	cfg.Transform.Token = "hf-token"
	require.NoError(t, Normalize(cfg))
}

func TestNormalizeRejectsUnknownEnums(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = "carrier-pigeon"
	assert.Error(t, Normalize(cfg))

	cfg = validConfig()
	cfg.Transform.Mode = "quantum"
	assert.Error(t, Normalize(cfg))

	cfg = validConfig()
	cfg.Storage.Backend = "floppy"
	assert.Error(t, Normalize(cfg))
}

func TestNormalizeAcceptsPollingAlias(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = "polling"
	require.NoError(t, Normalize(cfg))
	assert.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)
}
