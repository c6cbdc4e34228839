package bot

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"gitlab.com/avoronov/ledger-bot/internal/bot/mocks"
	"gitlab.com/avoronov/ledger-bot/internal/models"
)

func TestBalanceLifecycle(t *testing.T) {
	pool := TestDB(t)
	b := setupTestBot(t, pool)
	ctx := context.Background()

	chatID := int64(920001)
	userID := int64(920001)
	mockBot := mocks.NewMockBot()

	t.Run("create walks name and valute", func(t *testing.T) {
		b.Dispatch(ctx, mockBot, mocks.CommandUpdate(chatID, userID, "/balance_create"))
		anchor := userState(t, b, userID).Data.AnchorMessageID()

		b.Dispatch(ctx, mockBot, mocks.ReplyUpdate(chatID, userID, anchor, "Wallet"))
		state := userState(t, b, userID)
		require.Equal(t, models.StateBalanceCreateValute, state.State)

		valute := loadChat(t, b, chatID).Valutes[0]
		b.Dispatch(ctx, mockBot, mocks.CallbackQueryUpdate(chatID, userID,
			state.Data.AnchorMessageID(), fmt.Sprintf("val_%d", valute.ID)))

		require.Equal(t, models.StateDefault, userState(t, b, userID).State)
		require.Contains(t, mockBot.LastEditedMessage().Text, "Wallet")

		chat := loadChat(t, b, chatID)
		require.Len(t, chat.Balances, 1)
		require.True(t, chat.Balances[0].Amount.IsZero())
	})

	t.Run("duplicate name reprompts", func(t *testing.T) {
		b.Dispatch(ctx, mockBot, mocks.CommandUpdate(chatID, userID, "/balance_create"))
		anchor := userState(t, b, userID).Data.AnchorMessageID()

		b.Dispatch(ctx, mockBot, mocks.ReplyUpdate(chatID, userID, anchor, "wallet"))

		state := userState(t, b, userID)
		require.Equal(t, models.StateBalanceCreateName, state.State)
		require.Contains(t, mockBot.LastSentMessage().Text, "already taken")

		// Abandon by starting another command.
		b.Dispatch(ctx, mockBot, mocks.CommandUpdate(chatID, userID, "/balance_list"))
	})

	t.Run("set updates the amount", func(t *testing.T) {
		b.Dispatch(ctx, mockBot, mocks.CommandUpdate(chatID, userID, "/balance_set"))
		anchor := userState(t, b, userID).Data.AnchorMessageID()

		tracker := loadChat(t, b, chatID).Balances[0]
		b.Dispatch(ctx, mockBot, mocks.CallbackQueryUpdate(chatID, userID, anchor, fmt.Sprintf("trk_%d", tracker.ID)))
		require.Equal(t, models.StateBalanceSetAmount, userState(t, b, userID).State)

		b.Dispatch(ctx, mockBot, mocks.ReplyUpdate(chatID, userID, anchor, "1500,75"))

		require.Equal(t, models.StateDefault, userState(t, b, userID).State)
		updated := loadChat(t, b, chatID).Balances[0]
		require.True(t, updated.Amount.Equal(mustParseDecimal("1500.75")))
	})

	t.Run("list shows name, amount and code", func(t *testing.T) {
		mockBot.Reset()
		b.Dispatch(ctx, mockBot, mocks.CommandUpdate(chatID, userID, "/balance_list"))

		require.Equal(t, 1, mockBot.SentMessageCount())
		msg := mockBot.LastSentMessage()
		require.Contains(t, msg.Text, "Wallet")
		require.Contains(t, msg.Text, "1500.75")
		require.Contains(t, msg.Text, "RUB")
	})

	t.Run("delete keeps the tracker when not confirmed", func(t *testing.T) {
		b.Dispatch(ctx, mockBot, mocks.CommandUpdate(chatID, userID, "/balance_delete"))
		anchor := userState(t, b, userID).Data.AnchorMessageID()

		tracker := loadChat(t, b, chatID).Balances[0]
		b.Dispatch(ctx, mockBot, mocks.CallbackQueryUpdate(chatID, userID, anchor, fmt.Sprintf("trk_%d", tracker.ID)))
		require.Equal(t, models.StateBalanceDeleteConfirm, userState(t, b, userID).State)
		require.Contains(t, mockBot.LastEditedMessage().Text, "Wallet")

		b.Dispatch(ctx, mockBot, mocks.CallbackQueryUpdate(chatID, userID, anchor, "confirm_no"))

		require.Equal(t, models.StateDefault, userState(t, b, userID).State)
		require.Len(t, loadChat(t, b, chatID).Balances, 1)
	})

	t.Run("delete removes the tracker after confirmation", func(t *testing.T) {
		b.Dispatch(ctx, mockBot, mocks.CommandUpdate(chatID, userID, "/balance_delete"))
		anchor := userState(t, b, userID).Data.AnchorMessageID()

		tracker := loadChat(t, b, chatID).Balances[0]
		b.Dispatch(ctx, mockBot, mocks.CallbackQueryUpdate(chatID, userID, anchor, fmt.Sprintf("trk_%d", tracker.ID)))
		b.Dispatch(ctx, mockBot, mocks.CallbackQueryUpdate(chatID, userID, anchor, "confirm_yes"))

		require.Equal(t, models.StateDefault, userState(t, b, userID).State)
		require.Empty(t, loadChat(t, b, chatID).Balances)
	})
}

func TestTrackerKindsAreIndependent(t *testing.T) {
	pool := TestDB(t)
	b := setupTestBot(t, pool)
	ctx := context.Background()

	chatID := int64(920002)
	userID := int64(920002)
	mockBot := mocks.NewMockBot()

	createTracker := func(command, name string) {
		b.Dispatch(ctx, mockBot, mocks.CommandUpdate(chatID, userID, command))
		anchor := userState(t, b, userID).Data.AnchorMessageID()
		b.Dispatch(ctx, mockBot, mocks.ReplyUpdate(chatID, userID, anchor, name))
		valute := loadChat(t, b, chatID).Valutes[0]
		b.Dispatch(ctx, mockBot, mocks.CallbackQueryUpdate(chatID, userID,
			userState(t, b, userID).Data.AnchorMessageID(), fmt.Sprintf("val_%d", valute.ID)))
	}

	createTracker("/fond_create", "Vacation")
	createTracker("/debt_create", "Alex owes")

	chat := loadChat(t, b, chatID)
	require.Empty(t, chat.Balances)
	require.Len(t, chat.Fonds, 1)
	require.Len(t, chat.Debts, 1)
	require.Equal(t, "Vacation", chat.Fonds[0].Name)
	require.Equal(t, "Alex owes", chat.Debts[0].Name)

	// The same name is free in a different kind.
	createTracker("/balance_create", "Vacation")
	require.Len(t, loadChat(t, b, chatID).Balances, 1)
}
