package bot

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"gitlab.com/avoronov/ledger-bot/internal/bot/mocks"
	"gitlab.com/avoronov/ledger-bot/internal/models"
)

// seedCategoryWithItem drives the category and budget item wizards to set up
// test data the same way a user would.
func seedCategoryWithItem(t *testing.T, b *Bot, chatID, userID int64, category, item string, itemType models.BudgetItemType) {
	t.Helper()
	ctx := context.Background()
	mockBot := mocks.NewMockBot()

	b.Dispatch(ctx, mockBot, mocks.CommandUpdate(chatID, userID, "/category_add"))
	anchor := userState(t, b, userID).Data.AnchorMessageID()
	b.Dispatch(ctx, mockBot, mocks.ReplyUpdate(chatID, userID, anchor, category))
	require.Equal(t, models.StateDefault, userState(t, b, userID).State)

	chat := loadChat(t, b, chatID)
	cat := chat.CategoryByName(category)
	require.NotNil(t, cat)

	b.Dispatch(ctx, mockBot, mocks.CommandUpdate(chatID, userID, "/budget_item_add"))
	anchor = userState(t, b, userID).Data.AnchorMessageID()
	b.Dispatch(ctx, mockBot, mocks.CallbackQueryUpdate(chatID, userID, anchor,
		fmt.Sprintf("cat_%d", cat.ID)))
	require.Equal(t, models.StateBudgetItemAddType, userState(t, b, userID).State)

	b.Dispatch(ctx, mockBot, mocks.CallbackQueryUpdate(chatID, userID, anchor,
		"type_"+string(itemType)))
	require.Equal(t, models.StateBudgetItemAddName, userState(t, b, userID).State)

	b.Dispatch(ctx, mockBot, mocks.ReplyUpdate(chatID, userID, anchor, item))
	require.Equal(t, models.StateDefault, userState(t, b, userID).State)
}

func TestEntryAddFlow(t *testing.T) {
	pool := TestDB(t)
	b := setupTestBot(t, pool)
	ctx := context.Background()

	chatID := int64(910001)
	userID := int64(910001)

	seedCategoryWithItem(t, b, chatID, userID, "Food", "Restaurants", models.BudgetItemExpense)

	chat := loadChat(t, b, chatID)
	cat := chat.CategoryByName("Food")
	require.NotNil(t, cat)
	require.Len(t, cat.BudgetItems, 1)
	item := cat.BudgetItems[0]
	valute := chat.Valutes[0]

	mockBot := mocks.NewMockBot()

	t.Run("walks category, item, valute and amount", func(t *testing.T) {
		b.Dispatch(ctx, mockBot, mocks.CommandUpdate(chatID, userID, "/entry_add"))
		anchor := userState(t, b, userID).Data.AnchorMessageID()

		b.Dispatch(ctx, mockBot, mocks.CallbackQueryUpdate(chatID, userID, anchor, fmt.Sprintf("cat_%d", cat.ID)))
		require.Equal(t, models.StateEntryAddBudgetItem, userState(t, b, userID).State)

		b.Dispatch(ctx, mockBot, mocks.CallbackQueryUpdate(chatID, userID, anchor, fmt.Sprintf("item_%d", item.ID)))
		require.Equal(t, models.StateEntryAddValute, userState(t, b, userID).State)

		b.Dispatch(ctx, mockBot, mocks.CallbackQueryUpdate(chatID, userID, anchor, fmt.Sprintf("val_%d", valute.ID)))
		require.Equal(t, models.StateEntryAddAmount, userState(t, b, userID).State)

		b.Dispatch(ctx, mockBot, mocks.ReplyUpdate(chatID, userID, anchor, "100+20.50"))

		state := userState(t, b, userID)
		require.Equal(t, models.StateEntryAddFinish, state.State)
		data := state.Data.(*models.EntryAddData)
		require.Len(t, data.Entries, 1)
		require.True(t, data.Entries[0].Amount.Equal(mustParseDecimal("120.5")))
		require.Contains(t, mockBot.LastSentMessage().Text, "120.50")
	})

	t.Run("invalid amount reprompts without recording", func(t *testing.T) {
		b.Dispatch(ctx, mockBot, mocks.CommandUpdate(chatID, userID, "/entry_add"))
		anchor := userState(t, b, userID).Data.AnchorMessageID()

		b.Dispatch(ctx, mockBot, mocks.CallbackQueryUpdate(chatID, userID, anchor, fmt.Sprintf("cat_%d", cat.ID)))
		b.Dispatch(ctx, mockBot, mocks.CallbackQueryUpdate(chatID, userID, anchor, fmt.Sprintf("item_%d", item.ID)))
		b.Dispatch(ctx, mockBot, mocks.CallbackQueryUpdate(chatID, userID, anchor, fmt.Sprintf("val_%d", valute.ID)))

		b.Dispatch(ctx, mockBot, mocks.ReplyUpdate(chatID, userID, anchor, "lots"))

		state := userState(t, b, userID)
		require.Equal(t, models.StateEntryAddAmount, state.State)
		require.NotEqual(t, anchor, state.Data.AnchorMessageID())
		require.Contains(t, mockBot.LastSentMessage().Text, "Could not read")

		// The fresh anchor accepts the corrected amount.
		b.Dispatch(ctx, mockBot, mocks.ReplyUpdate(chatID, userID, state.Data.AnchorMessageID(), "42"))
		require.Equal(t, models.StateEntryAddFinish, userState(t, b, userID).State)
	})

	t.Run("more loops back to category selection keeping the batch", func(t *testing.T) {
		anchor := userState(t, b, userID).Data.AnchorMessageID()
		b.Dispatch(ctx, mockBot, mocks.CallbackQueryUpdate(chatID, userID, anchor, "entry_more"))

		state := userState(t, b, userID)
		require.Equal(t, models.StateEntryAddCategory, state.State)
		require.Len(t, state.Data.(*models.EntryAddData).Entries, 1)
	})

	t.Run("finish resets state and summarizes the batch", func(t *testing.T) {
		anchor := userState(t, b, userID).Data.AnchorMessageID()
		b.Dispatch(ctx, mockBot, mocks.CallbackQueryUpdate(chatID, userID, anchor, fmt.Sprintf("cat_%d", cat.ID)))
		b.Dispatch(ctx, mockBot, mocks.CallbackQueryUpdate(chatID, userID, anchor, fmt.Sprintf("item_%d", item.ID)))
		b.Dispatch(ctx, mockBot, mocks.CallbackQueryUpdate(chatID, userID, anchor, fmt.Sprintf("val_%d", valute.ID)))
		b.Dispatch(ctx, mockBot, mocks.ReplyUpdate(chatID, userID, userState(t, b, userID).Data.AnchorMessageID(), "8"))

		anchor = userState(t, b, userID).Data.AnchorMessageID()
		b.Dispatch(ctx, mockBot, mocks.CallbackQueryUpdate(chatID, userID, anchor, "entry_finish"))

		require.Equal(t, models.StateDefault, userState(t, b, userID).State)
		require.Contains(t, mockBot.LastEditedMessage().Text, "Recorded:")
	})

	t.Run("stale wizard button only answers the callback", func(t *testing.T) {
		b.Dispatch(ctx, mockBot, mocks.CommandUpdate(chatID, userID, "/entry_add"))
		anchor := userState(t, b, userID).Data.AnchorMessageID()

		b.Dispatch(ctx, mockBot, mocks.CallbackQueryUpdate(chatID, userID, anchor-1, fmt.Sprintf("cat_%d", cat.ID)))

		require.Equal(t, models.StateEntryAddCategory, userState(t, b, userID).State)
		require.Equal(t, textStaleButton, mockBot.LastAnsweredCallback().Text)
	})
}

func TestBudgetItemLimits(t *testing.T) {
	pool := TestDB(t)
	b := setupTestBot(t, pool)
	ctx := context.Background()

	chatID := int64(910002)
	userID := int64(910002)

	t.Run("entry add without categories points to category_add", func(t *testing.T) {
		mockBot := mocks.NewMockBot()

		// Start a wizard first; the early exit must clear it.
		b.Dispatch(ctx, mockBot, mocks.CommandUpdate(chatID, userID, "/category_add"))
		require.Equal(t, models.StateCategoryAddName, userState(t, b, userID).State)

		b.Dispatch(ctx, mockBot, mocks.CommandUpdate(chatID, userID, "/entry_add"))

		require.Contains(t, mockBot.LastSentMessage().Text, "/category_add")
		require.Equal(t, models.StateDefault, userState(t, b, userID).State)
	})

	t.Run("duplicate item name in category reprompts", func(t *testing.T) {
		seedCategoryWithItem(t, b, chatID, userID, "Home", "Rent", models.BudgetItemExpense)

		chat := loadChat(t, b, chatID)
		cat := chat.CategoryByName("Home")
		require.NotNil(t, cat)

		mockBot := mocks.NewMockBot()
		b.Dispatch(ctx, mockBot, mocks.CommandUpdate(chatID, userID, "/budget_item_add"))
		anchor := userState(t, b, userID).Data.AnchorMessageID()
		b.Dispatch(ctx, mockBot, mocks.CallbackQueryUpdate(chatID, userID, anchor, fmt.Sprintf("cat_%d", cat.ID)))
		b.Dispatch(ctx, mockBot, mocks.CallbackQueryUpdate(chatID, userID, anchor, "type_expense"))
		b.Dispatch(ctx, mockBot, mocks.ReplyUpdate(chatID, userID, anchor, "rent"))

		require.Equal(t, models.StateBudgetItemAddName, userState(t, b, userID).State)
		require.Contains(t, mockBot.LastSentMessage().Text, "different name")
	})

	t.Run("same name is free for the other item type", func(t *testing.T) {
		chat := loadChat(t, b, chatID)
		cat := chat.CategoryByName("Home")
		require.NotNil(t, cat)

		mockBot := mocks.NewMockBot()
		b.Dispatch(ctx, mockBot, mocks.CommandUpdate(chatID, userID, "/budget_item_add"))
		anchor := userState(t, b, userID).Data.AnchorMessageID()
		b.Dispatch(ctx, mockBot, mocks.CallbackQueryUpdate(chatID, userID, anchor, fmt.Sprintf("cat_%d", cat.ID)))
		b.Dispatch(ctx, mockBot, mocks.CallbackQueryUpdate(chatID, userID, anchor, "type_income"))
		b.Dispatch(ctx, mockBot, mocks.ReplyUpdate(chatID, userID, anchor, "Rent"))

		require.Equal(t, models.StateDefault, userState(t, b, userID).State)

		cat = loadChat(t, b, chatID).CategoryByName("Home")
		require.Len(t, cat.BudgetItems, 2)
	})
}
