package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads all config from env", func(t *testing.T) {
		t.Setenv("TELEGRAM_BOT_TOKEN", "test-token-123")
		t.Setenv("DATABASE_URL", "postgres://localhost/test")
		t.Setenv("RATES_API_URL", "https://rates.example.com")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, "test-token-123", cfg.TelegramBotToken)
		require.Equal(t, "postgres://localhost/test", cfg.DatabaseURL)
		require.Equal(t, "https://rates.example.com", cfg.RatesAPIURL)
	})

	t.Run("defaults when optional vars are unset", func(t *testing.T) {
		t.Setenv("TELEGRAM_BOT_TOKEN", "token")
		t.Setenv("DATABASE_URL", "postgres://localhost/test")
		t.Setenv("RATES_FETCH_HOUR", "")
		t.Setenv("DEFAULT_VALUTE_CODE", "")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, 6, cfg.RatesFetchHour)
		require.Equal(t, "RUB", cfg.DefaultValuteCode)
		require.Equal(t, "₽", cfg.DefaultValuteSymbol)
	})

	t.Run("parses fetch hour", func(t *testing.T) {
		t.Setenv("TELEGRAM_BOT_TOKEN", "token")
		t.Setenv("DATABASE_URL", "postgres://localhost/test")
		t.Setenv("RATES_FETCH_HOUR", "14")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, 14, cfg.RatesFetchHour)
	})

	t.Run("ignores out of range fetch hour", func(t *testing.T) {
		t.Setenv("TELEGRAM_BOT_TOKEN", "token")
		t.Setenv("DATABASE_URL", "postgres://localhost/test")
		t.Setenv("RATES_FETCH_HOUR", "25")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, 6, cfg.RatesFetchHour)
	})

	t.Run("custom default valute", func(t *testing.T) {
		t.Setenv("TELEGRAM_BOT_TOKEN", "token")
		t.Setenv("DATABASE_URL", "postgres://localhost/test")
		t.Setenv("DEFAULT_VALUTE_CODE", "amd")
		t.Setenv("DEFAULT_VALUTE_NAME", "Армянский драм")
		t.Setenv("DEFAULT_VALUTE_SYMBOL", "֏")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, "AMD", cfg.DefaultValuteCode)
		require.Equal(t, "Армянский драм", cfg.DefaultValuteName)
		require.Equal(t, "֏", cfg.DefaultValuteSymbol)
	})

	t.Run("fails without bot token", func(t *testing.T) {
		t.Setenv("TELEGRAM_BOT_TOKEN", "")
		t.Setenv("DATABASE_URL", "postgres://localhost/test")

		_, err := Load()
		require.Error(t, err)
		require.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN")
	})

	t.Run("fails without database URL", func(t *testing.T) {
		t.Setenv("TELEGRAM_BOT_TOKEN", "token")
		t.Setenv("DATABASE_URL", "")

		_, err := Load()
		require.Error(t, err)
		require.Contains(t, err.Error(), "DATABASE_URL")
	})
}
