package mocks

import (
	"github.com/go-telegram/bot/models"
)

// UpdateBuilder helps construct test Update objects.
type UpdateBuilder struct {
	update *models.Update
}

// NewUpdateBuilder creates a new UpdateBuilder.
func NewUpdateBuilder() *UpdateBuilder {
	return &UpdateBuilder{
		update: &models.Update{},
	}
}

// WithMessage sets a message on the update.
func (b *UpdateBuilder) WithMessage(chatID, userID int64, text string) *UpdateBuilder {
	b.update.Message = &models.Message{
		ID: 1,
		Chat: models.Chat{
			ID:   chatID,
			Type: "private",
		},
		From: &models.User{
			ID:        userID,
			FirstName: "Test",
			Username:  "testuser",
		},
		Text: text,
	}
	return b
}

// WithMessageID sets a custom message ID.
func (b *UpdateBuilder) WithMessageID(messageID int) *UpdateBuilder {
	if b.update.Message != nil {
		b.update.Message.ID = messageID
	}
	return b
}

// WithFrom sets custom user details on the message.
func (b *UpdateBuilder) WithFrom(userID int64, username, firstName string) *UpdateBuilder {
	user := &models.User{
		ID:        userID,
		Username:  username,
		FirstName: firstName,
	}
	if b.update.Message != nil {
		b.update.Message.From = user
	}
	if b.update.CallbackQuery != nil {
		b.update.CallbackQuery.From = *user
	}
	return b
}

// WithCallbackQuery sets a callback query on the update.
func (b *UpdateBuilder) WithCallbackQuery(
	callbackID string,
	chatID, userID int64,
	messageID int,
	data string,
) *UpdateBuilder {
	b.update.CallbackQuery = &models.CallbackQuery{
		ID: callbackID,
		From: models.User{
			ID:        userID,
			FirstName: "Test",
			Username:  "testuser",
		},
		Message: models.MaybeInaccessibleMessage{
			Message: &models.Message{
				ID: messageID,
				Chat: models.Chat{
					ID:   chatID,
					Type: "private",
				},
			},
		},
		Data: data,
	}
	return b
}

// WithReplyToMessage sets a reply-to message.
func (b *UpdateBuilder) WithReplyToMessage(messageID int, text string) *UpdateBuilder {
	if b.update.Message == nil {
		return b
	}
	b.update.Message.ReplyToMessage = &models.Message{
		ID:   messageID,
		Text: text,
	}
	return b
}

// Build returns the constructed Update.
func (b *UpdateBuilder) Build() *models.Update {
	return b.update
}

// MessageUpdate creates a simple message update.
func MessageUpdate(chatID, userID int64, text string) *models.Update {
	return NewUpdateBuilder().
		WithMessage(chatID, userID, text).
		Build()
}

// CommandUpdate creates a command message update.
func CommandUpdate(chatID, userID int64, command string) *models.Update {
	return MessageUpdate(chatID, userID, command)
}

// ReplyUpdate creates a message update replying to an earlier bot message.
func ReplyUpdate(chatID, userID int64, replyToID int, text string) *models.Update {
	return NewUpdateBuilder().
		WithMessage(chatID, userID, text).
		WithReplyToMessage(replyToID, "").
		Build()
}

// CallbackQueryUpdate creates a callback query update.
func CallbackQueryUpdate(chatID, userID int64, messageID int, data string) *models.Update {
	return NewUpdateBuilder().
		WithCallbackQuery("callback-query-id", chatID, userID, messageID, data).
		Build()
}
