// Package config provides application configuration loading from environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	TelegramBotToken string
	DatabaseURL      string
	LogLevel         string

	// RatesAPIURL is the base URL of the external daily-rate API.
	RatesAPIURL string
	// RatesFetchHour is the UTC hour at which the daily rate job runs.
	RatesFetchHour int

	// Default currency seeded into a chat's currency set on first use.
	DefaultValuteCode   string
	DefaultValuteName   string
	DefaultValuteSymbol string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		TelegramBotToken:    os.Getenv("TELEGRAM_BOT_TOKEN"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		LogLevel:            os.Getenv("LOG_LEVEL"),
		RatesAPIURL:         os.Getenv("RATES_API_URL"),
		DefaultValuteCode:   "RUB",
		DefaultValuteName:   "Российский рубль",
		DefaultValuteSymbol: "₽",
	}

	cfg.RatesFetchHour = 6
	if hourStr := os.Getenv("RATES_FETCH_HOUR"); hourStr != "" {
		if h, err := strconv.Atoi(hourStr); err == nil && h >= 0 && h <= 23 {
			cfg.RatesFetchHour = h
		}
	}

	if code := os.Getenv("DEFAULT_VALUTE_CODE"); code != "" {
		cfg.DefaultValuteCode = strings.ToUpper(strings.TrimSpace(code))
		cfg.DefaultValuteName = cfg.DefaultValuteCode
		cfg.DefaultValuteSymbol = cfg.DefaultValuteCode
	}
	if name := os.Getenv("DEFAULT_VALUTE_NAME"); name != "" {
		cfg.DefaultValuteName = name
	}
	if symbol := os.Getenv("DEFAULT_VALUTE_SYMBOL"); symbol != "" {
		cfg.DefaultValuteSymbol = symbol
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks that all required configuration is present.
func (c *Config) validate() error {
	var errs []string

	if c.TelegramBotToken == "" {
		errs = append(errs, "TELEGRAM_BOT_TOKEN is required")
	}

	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
