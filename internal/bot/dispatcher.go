package bot

import (
	"context"
	"strings"

	tgmodels "github.com/go-telegram/bot/models"

	"gitlab.com/avoronov/ledger-bot/internal/logger"
)

// Dispatch routes one update through the static routing tables. Updates the
// bot has no route for are dropped without a reply; a chat member talking to
// another human must not trigger bot noise.
func (b *Bot) Dispatch(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Error().Interface("panic", r).Msg("Recovered panic in update handler")
		}
	}()

	switch {
	case update.Message != nil:
		b.dispatchMessage(ctx, tg, update.Message)
	case update.CallbackQuery != nil:
		b.dispatchCallback(ctx, tg, update.CallbackQuery)
	}
}

func (b *Bot) dispatchMessage(ctx context.Context, tg TelegramAPI, msg *tgmodels.Message) {
	if msg.From == nil || msg.From.IsBot {
		return
	}

	req, err := b.buildRequest(ctx, msg.Chat, msg.From)
	if err != nil {
		logger.Log.Error().Err(err).Int64("chat_id", msg.Chat.ID).Msg("Failed to resolve chat context")
		return
	}
	req.Message = msg

	logger.Log.Debug().
		Int64("chat_id", msg.Chat.ID).
		Int64("user_id", msg.From.ID).
		Str("state", string(req.State.State)).
		Str("text", msg.Text).
		Msg("Incoming message")

	if cmd, ok := parseCommand(msg.Text); ok {
		handler, ok := b.routes.commands[cmd]
		if !ok {
			logger.Log.Debug().Str("command", cmd).Msg("Unknown command dropped")
			return
		}
		b.run(ctx, tg, req, handler)
		return
	}

	handler, ok := b.routes.messages[req.State.State]
	if !ok {
		logger.Log.Debug().Str("state", string(req.State.State)).Msg("Message without route dropped")
		return
	}

	// A wizard only accepts input as a direct reply to its own last
	// message. Anything else is stale or unrelated chatter.
	anchor := req.State.Data.AnchorMessageID()
	if msg.ReplyToMessage == nil || msg.ReplyToMessage.ID != anchor {
		logger.Log.Debug().
			Str("state", string(req.State.State)).
			Int("anchor", anchor).
			Msg("Non-reply or stale message dropped")
		return
	}

	b.run(ctx, tg, req, handler)
}

func (b *Bot) dispatchCallback(ctx context.Context, tg TelegramAPI, cb *tgmodels.CallbackQuery) {
	msg := cb.Message.Message
	if msg == nil {
		b.answer(ctx, tg, cb, "")
		return
	}

	// Hide buttons work on any message regardless of wizard state.
	if strings.HasPrefix(cb.Data, cbHide) {
		b.handleHide(ctx, tg, cb)
		return
	}

	req, err := b.buildRequest(ctx, msg.Chat, &cb.From)
	if err != nil {
		logger.Log.Error().Err(err).Int64("chat_id", msg.Chat.ID).Msg("Failed to resolve chat context")
		b.answer(ctx, tg, cb, "")
		return
	}
	req.Callback = cb

	logger.Log.Debug().
		Int64("chat_id", msg.Chat.ID).
		Int64("user_id", cb.From.ID).
		Str("state", string(req.State.State)).
		Str("data", cb.Data).
		Msg("Incoming callback")

	handler, ok := b.routes.callbacks[req.State.State]
	if !ok {
		b.answer(ctx, tg, cb, "")
		return
	}

	// Buttons on an older wizard message must not act on the current
	// step.
	if msg.ID != req.State.Data.AnchorMessageID() {
		b.answer(ctx, tg, cb, textStaleButton)
		return
	}

	b.run(ctx, tg, req, handler)
}

// run executes a handler and reports failures to the chat.
func (b *Bot) run(ctx context.Context, tg TelegramAPI, req *Request, handler HandlerFunc) {
	if err := handler(ctx, tg, req); err != nil {
		logger.Log.Error().
			Err(err).
			Int64("chat_id", req.ChatID()).
			Str("state", string(req.State.State)).
			Msg("Handler failed")
		_, _ = b.send(ctx, tg, req.ChatID(), textInternalError, nil)
	}
}

// buildRequest loads or creates the chat, user and state for an update.
func (b *Bot) buildRequest(ctx context.Context, tgChat tgmodels.Chat, tgUser *tgmodels.User) (*Request, error) {
	chat, err := b.store.Chats.GetOrCreate(ctx, tgChat.ID, tgChat.Title, string(tgChat.Type))
	if err != nil {
		return nil, err
	}

	// Every chat can always record amounts in the reporting currency.
	if chat.ValuteByID(b.defaultValute.ID) == nil {
		if err := b.store.Valutes.AttachToChat(ctx, chat.ID, b.defaultValute.ID); err != nil {
			return nil, err
		}
		chat.Valutes = append(chat.Valutes, *b.defaultValute)
	}

	user, err := b.store.Users.GetOrCreate(ctx, tgUser.ID, tgUser.FirstName, tgUser.Username, tgUser.IsBot, tgUser.LanguageCode)
	if err != nil {
		return nil, err
	}

	state, err := b.store.States.Get(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &Request{Chat: chat, User: user, State: state}, nil
}

// parseCommand extracts the command name from a message, stripping the
// @botname suffix and arguments. Returns false for non-command messages.
func parseCommand(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	cmd := strings.Fields(text)[0]
	if at := strings.Index(cmd, "@"); at > 0 {
		cmd = cmd[:at]
	}
	return cmd, true
}
