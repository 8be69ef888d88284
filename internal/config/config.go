package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Gemini
	GeminiAPIKey          string   `env:"GEMINI_API_KEY,required"`
	GeminiModel           string   `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	GeminiBaseURL         string   `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta"`
	GeminiTemperature     *float64 `env:"GEMINI_TEMPERATURE"`
	GeminiMaxOutputTokens int      `env:"GEMINI_MAX_OUTPUT_TOKENS"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE" envDefault:"geminichat.log"`

	// Telegram front end, single owner chat
	TelegramBotToken    string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramOwnerChatID int64  `env:"TELEGRAM_OWNER_CHAT_ID"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// ValidateTelegram checks the settings only the telegram command needs.
func (c *Config) ValidateTelegram() error {
	var errs []error
	if c.TelegramBotToken == "" {
		errs = append(errs, errors.New("TELEGRAM_BOT_TOKEN is required"))
	}
	if c.TelegramOwnerChatID == 0 {
		errs = append(errs, errors.New("TELEGRAM_OWNER_CHAT_ID is required"))
	}
	return errors.Join(errs...)
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
