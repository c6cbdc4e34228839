// Package bot provides the Telegram bot initialization, routing and handlers.
package bot

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/jackc/pgx/v5/pgxpool"

	"gitlab.com/avoronov/ledger-bot/internal/config"
	"gitlab.com/avoronov/ledger-bot/internal/logger"
	"gitlab.com/avoronov/ledger-bot/internal/models"
	"gitlab.com/avoronov/ledger-bot/internal/repository"
)

// Bot wraps the Telegram bot with application dependencies.
type Bot struct {
	bot    *bot.Bot
	cfg    *config.Config
	store  *repository.Store
	routes *routes

	// defaultValute is the reporting currency, attached to every chat.
	defaultValute *models.Valute
}

// New creates a new Bot instance and ensures the default valute exists.
func New(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) (*Bot, error) {
	b := &Bot{
		cfg:   cfg,
		store: repository.NewStore(pool),
	}
	b.routes = buildRoutes(b)

	valute, err := b.store.Valutes.GetOrCreate(ctx, cfg.DefaultValuteCode, cfg.DefaultValuteName, cfg.DefaultValuteSymbol)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure default valute: %w", err)
	}
	b.defaultValute = valute

	// USD always exists so the rate resolver has its bridge currency.
	if _, err := b.store.Valutes.GetOrCreate(ctx, models.USDCode, "US Dollar", "$"); err != nil {
		return nil, fmt.Errorf("failed to ensure bridge valute: %w", err)
	}

	opts := []bot.Option{
		// Updates are handled strictly in order so two steps of one
		// wizard never race on the stored state.
		bot.WithNotAsyncHandlers(),
		bot.WithDefaultHandler(b.handleUpdate),
	}

	telegramBot, err := bot.New(cfg.TelegramBotToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	b.bot = telegramBot

	return b, nil
}

// Start begins polling for updates.
func (b *Bot) Start(ctx context.Context) {
	logger.Log.Info().Msg("Bot started polling")
	b.bot.Start(ctx)
}

// handleUpdate adapts the library callback to the dispatcher.
func (b *Bot) handleUpdate(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
	b.Dispatch(ctx, tgBot, update)
}
