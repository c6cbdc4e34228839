package bot

import (
	"context"
	"fmt"
	"strings"

	"gitlab.com/avoronov/ledger-bot/internal/models"
)

// handleBudgetItemAdd handles the /budget_item_add command.
func (b *Bot) handleBudgetItemAdd(ctx context.Context, tg TelegramAPI, req *Request) error {
	if len(req.Chat.Categories) == 0 {
		if _, err := b.send(ctx, tg, req.ChatID(), textNoCategories, nil); err != nil {
			return err
		}
		return b.resetState(ctx, req)
	}

	msgID, err := b.send(ctx, tg, req.ChatID(), textChooseCategory, categoriesKeyboard(req.Chat.Categories))
	if err != nil {
		return err
	}
	return b.setState(ctx, req, models.StateBudgetItemAddCategory,
		&models.BudgetItemAddData{Anchor: models.Anchor{MessageID: msgID}})
}

// handleBudgetItemAddCategory receives the category button press.
func (b *Bot) handleBudgetItemAddCategory(ctx context.Context, tg TelegramAPI, req *Request) error {
	categoryID, ok := callbackID(req.Text(), cbCategory)
	if !ok {
		b.answer(ctx, tg, req.Callback, "")
		return nil
	}
	cat := req.Chat.CategoryByID(categoryID)
	if cat == nil {
		b.answer(ctx, tg, req.Callback, "")
		return nil
	}
	if len(cat.BudgetItems) >= models.BudgetItemLimit {
		b.alert(ctx, tg, req.Callback, textItemLimit)
		return nil
	}

	// The placeholder reserves the (chat, category) slot before the item
	// itself exists; the final step fills it in.
	placeholder, err := b.store.BudgetItems.CreatePlaceholder(ctx, req.Chat.ID, categoryID)
	if err != nil {
		return err
	}

	data := req.State.Data.(*models.BudgetItemAddData)
	data.CategoryID = categoryID
	data.ChatBudgetItemID = placeholder.ID

	if err := b.edit(ctx, tg, req.ChatID(), req.MessageID(), textChooseItemType, itemTypeKeyboard()); err != nil {
		return err
	}
	b.answer(ctx, tg, req.Callback, "")
	return b.setState(ctx, req, models.StateBudgetItemAddType, data)
}

// handleBudgetItemAddType receives the income/expense button press.
func (b *Bot) handleBudgetItemAddType(ctx context.Context, tg TelegramAPI, req *Request) error {
	raw, ok := strings.CutPrefix(req.Text(), cbType+"_")
	if !ok {
		b.answer(ctx, tg, req.Callback, "")
		return nil
	}
	itemType := models.BudgetItemType(raw)
	if !itemType.Valid() {
		b.answer(ctx, tg, req.Callback, "")
		return nil
	}

	data := req.State.Data.(*models.BudgetItemAddData)
	data.ItemType = string(itemType)

	if err := b.edit(ctx, tg, req.ChatID(), req.MessageID(), textItemNamePrompt, nil); err != nil {
		return err
	}
	b.answer(ctx, tg, req.Callback, "")
	return b.setState(ctx, req, models.StateBudgetItemAddName, data)
}

// handleBudgetItemAddName receives the budget item name reply.
func (b *Bot) handleBudgetItemAddName(ctx context.Context, tg TelegramAPI, req *Request) error {
	data := req.State.Data.(*models.BudgetItemAddData)
	name := strings.TrimSpace(req.Text())

	cat := req.Chat.CategoryByID(data.CategoryID)
	if cat == nil {
		if err := b.store.BudgetItems.DeletePlaceholder(ctx, data.ChatBudgetItemID); err != nil {
			return err
		}
		return b.resetState(ctx, req)
	}
	// Uniqueness is scoped to the category and type; an income and an
	// expense item may share a name.
	itemType := models.BudgetItemType(data.ItemType)
	for _, item := range cat.BudgetItems {
		if item.Type == itemType && strings.EqualFold(item.Name, name) {
			return b.reprompt(ctx, tg, req, textItemExists)
		}
	}

	item, err := b.store.BudgetItems.GetOrCreate(ctx, name, itemType)
	if err != nil {
		return err
	}
	if _, err := b.store.BudgetItems.FillPlaceholder(ctx, data.ChatBudgetItemID, item.ID); err != nil {
		return err
	}

	if err := b.resetState(ctx, req); err != nil {
		return err
	}
	_, err = b.send(ctx, tg, req.ChatID(),
		fmt.Sprintf("Budget item added to %s: %s (%s)", cat.Name, item.Name, item.Type), nil)
	return err
}
