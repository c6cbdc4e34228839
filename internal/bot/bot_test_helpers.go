package bot

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"gitlab.com/avoronov/ledger-bot/internal/config"
	"gitlab.com/avoronov/ledger-bot/internal/database"
	"gitlab.com/avoronov/ledger-bot/internal/models"
	"gitlab.com/avoronov/ledger-bot/internal/repository"
)

// TestDB is a convenience wrapper around database.TestDB for bot tests.
func TestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	pool := database.TestDB(t)

	t.Cleanup(func() {
		database.CleanupTables(t, pool)
	})

	return pool
}

// setupTestBot creates a Bot instance for testing with database.
//
//nolint:unused // Used in test files
func setupTestBot(t *testing.T, pool *pgxpool.Pool) *Bot {
	t.Helper()
	ctx := context.Background()

	cfg := &config.Config{
		TelegramBotToken:    "test-token",
		DatabaseURL:         "test-url",
		DefaultValuteCode:   "RUB",
		DefaultValuteName:   "Российский рубль",
		DefaultValuteSymbol: "₽",
	}

	b := &Bot{
		cfg:   cfg,
		store: repository.NewStore(pool),
	}
	b.routes = buildRoutes(b)

	valute, err := b.store.Valutes.GetOrCreate(ctx, cfg.DefaultValuteCode, cfg.DefaultValuteName, cfg.DefaultValuteSymbol)
	if err != nil {
		t.Fatalf("failed to create default valute: %v", err)
	}
	b.defaultValute = valute

	if _, err := b.store.Valutes.GetOrCreate(ctx, models.USDCode, "US Dollar", "$"); err != nil {
		t.Fatalf("failed to create bridge valute: %v", err)
	}

	return b
}

// userState loads the stored conversation state for a Telegram user id.
//
//nolint:unused // Used in test files
func userState(t *testing.T, b *Bot, tgUserID int64) *models.UserState {
	t.Helper()
	ctx := context.Background()

	user, err := b.store.Users.GetOrCreate(ctx, tgUserID, "", "", false, "")
	if err != nil {
		t.Fatalf("failed to load user: %v", err)
	}
	state, err := b.store.States.Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("failed to load state: %v", err)
	}
	return state
}

// loadChat loads the chat with aggregates for a Telegram chat id.
//
//nolint:unused // Used in test files
func loadChat(t *testing.T, b *Bot, tgChatID int64) *models.Chat {
	t.Helper()

	chat, err := b.store.Chats.GetOrCreate(context.Background(), tgChatID, "", "private")
	if err != nil {
		t.Fatalf("failed to load chat: %v", err)
	}
	return chat
}

// mustParseDecimal parses a decimal string or panics (for test data).
//
//nolint:unused // Used in test files
func mustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic("invalid decimal in test: " + s)
	}
	return d
}
