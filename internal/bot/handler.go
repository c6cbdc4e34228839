package bot

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"

	"gitlab.com/avoronov/ledger-bot/internal/models"
)

// Request carries everything a handler needs for one update: the resolved
// chat, user and conversation state plus the raw message or callback.
type Request struct {
	Chat  *models.Chat
	User  *models.User
	State *models.UserState

	// Exactly one of Message and Callback is set.
	Message  *tgmodels.Message
	Callback *tgmodels.CallbackQuery
}

// ChatID returns the Telegram chat id the update came from.
func (r *Request) ChatID() int64 {
	if r.Message != nil {
		return r.Message.Chat.ID
	}
	return r.Callback.Message.Message.Chat.ID
}

// MessageID returns the id of the message the update refers to: the incoming
// message itself, or the message the pressed button is attached to.
func (r *Request) MessageID() int {
	if r.Message != nil {
		return r.Message.ID
	}
	return r.Callback.Message.Message.ID
}

// Text returns the message text or the callback data.
func (r *Request) Text() string {
	if r.Message != nil {
		return r.Message.Text
	}
	return r.Callback.Data
}

// HandlerFunc handles one routed update.
type HandlerFunc func(ctx context.Context, tg TelegramAPI, req *Request) error

// send sends a message and returns its id, the anchor for the next wizard
// step.
func (b *Bot) send(ctx context.Context, tg TelegramAPI, chatID int64, text string, markup tgmodels.ReplyMarkup) (int, error) {
	msg, err := tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: markup,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to send message: %w", err)
	}
	return msg.ID, nil
}

// edit replaces the text and keyboard of an earlier bot message.
func (b *Bot) edit(ctx context.Context, tg TelegramAPI, chatID int64, messageID int, text string, markup tgmodels.ReplyMarkup) error {
	params := &bot.EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        text,
		ReplyMarkup: markup,
	}
	if _, err := tg.EditMessageText(ctx, params); err != nil {
		return fmt.Errorf("failed to edit message: %w", err)
	}
	return nil
}

// setState persists the user's next wizard step.
func (b *Bot) setState(ctx context.Context, req *Request, state models.StateName, data models.StateData) error {
	if err := b.store.States.Set(ctx, req.User.ID, state, data); err != nil {
		return err
	}
	req.State.State = state
	req.State.Data = data
	return nil
}

// resetState returns the user to the default state.
func (b *Bot) resetState(ctx context.Context, req *Request) error {
	return b.setState(ctx, req, models.StateDefault, models.EmptyData{})
}

// answer acknowledges a callback query, optionally with a toast.
func (b *Bot) answer(ctx context.Context, tg TelegramAPI, cb *tgmodels.CallbackQuery, text string) {
	_, _ = tg.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: cb.ID,
		Text:            text,
	})
}

// alert acknowledges a callback query with a blocking alert popup.
func (b *Bot) alert(ctx context.Context, tg TelegramAPI, cb *tgmodels.CallbackQuery, text string) {
	_, _ = tg.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: cb.ID,
		Text:            text,
		ShowAlert:       true,
	})
}
