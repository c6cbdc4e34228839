package bot

import (
	"context"
	"fmt"
	"strings"

	"gitlab.com/avoronov/ledger-bot/internal/models"
)

// handleEntryAdd handles the /entry_add command.
func (b *Bot) handleEntryAdd(ctx context.Context, tg TelegramAPI, req *Request) error {
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
	return b.setState(ctx, req, models.StateEntryAddCategory,
		&models.EntryAddData{Anchor: models.Anchor{MessageID: msgID}})
}

// handleEntryAddCategory receives the category button press.
func (b *Bot) handleEntryAddCategory(ctx context.Context, tg TelegramAPI, req *Request) error {
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
	if len(cat.BudgetItems) == 0 {
		b.alert(ctx, tg, req.Callback, textNoBudgetItems)
		return nil
	}

	data := req.State.Data.(*models.EntryAddData)
	data.CategoryID = categoryID

	if err := b.edit(ctx, tg, req.ChatID(), req.MessageID(), textChooseBudgetItem, budgetItemsKeyboard(cat.BudgetItems)); err != nil {
		return err
	}
	b.answer(ctx, tg, req.Callback, "")
	return b.setState(ctx, req, models.StateEntryAddBudgetItem, data)
}

// handleEntryAddBudgetItem receives the budget item button press.
func (b *Bot) handleEntryAddBudgetItem(ctx context.Context, tg TelegramAPI, req *Request) error {
	itemID, ok := callbackID(req.Text(), cbItem)
	if !ok {
		b.answer(ctx, tg, req.Callback, "")
		return nil
	}

	data := req.State.Data.(*models.EntryAddData)
	cat := req.Chat.CategoryByID(data.CategoryID)
	if cat == nil {
		b.answer(ctx, tg, req.Callback, "")
		return nil
	}
	item := cat.BudgetItemByID(itemID)
	if item == nil {
		b.answer(ctx, tg, req.Callback, "")
		return nil
	}

	assignment, err := b.store.BudgetItems.GetAssignment(ctx, req.Chat.ID, data.CategoryID, itemID)
	if err != nil {
		return err
	}
	if assignment == nil {
		b.answer(ctx, tg, req.Callback, "")
		return nil
	}
	data.ChatBudgetItemID = assignment.ID
	data.ItemLabel = cat.Name + " / " + item.Name

	if err := b.edit(ctx, tg, req.ChatID(), req.MessageID(), textChooseValute, valutesKeyboard(req.Chat.Valutes, 0)); err != nil {
		return err
	}
	b.answer(ctx, tg, req.Callback, "")
	return b.setState(ctx, req, models.StateEntryAddValute, data)
}

// handleEntryAddValute receives the currency button press.
func (b *Bot) handleEntryAddValute(ctx context.Context, tg TelegramAPI, req *Request) error {
	valuteID, ok := callbackID(req.Text(), cbValute)
	if !ok || req.Chat.ValuteByID(valuteID) == nil {
		b.answer(ctx, tg, req.Callback, "")
		return nil
	}

	data := req.State.Data.(*models.EntryAddData)
	data.ValuteID = valuteID

	if err := b.edit(ctx, tg, req.ChatID(), req.MessageID(), textAmountPrompt, nil); err != nil {
		return err
	}
	b.answer(ctx, tg, req.Callback, "")
	return b.setState(ctx, req, models.StateEntryAddAmount, data)
}

// handleEntryAddAmount receives the amount reply, records the entry and
// offers to add more.
func (b *Bot) handleEntryAddAmount(ctx context.Context, tg TelegramAPI, req *Request) error {
	data := req.State.Data.(*models.EntryAddData)

	amount, err := parseAmount(req.Text())
	if err != nil {
		return b.reprompt(ctx, tg, req, textAmountInvalid)
	}

	valute := req.Chat.ValuteByID(data.ValuteID)
	if valute == nil {
		return b.resetState(ctx, req)
	}

	entry, err := b.store.Entries.Create(ctx, &models.Entry{
		ChatBudgetItemID: data.ChatBudgetItemID,
		ValuteID:         data.ValuteID,
		Amount:           amount,
		Meta:             models.EntryMeta{MessageID: req.MessageID()},
	})
	if err != nil {
		return err
	}

	data.Entries = append(data.Entries, models.PendingEntry{
		EntryID: entry.ID,
		Amount:  amount,
		Code:    valute.Code,
		Item:    data.ItemLabel,
	})

	msgID, err := b.send(ctx, tg, req.ChatID(), entryBatchSummary(data.Entries), finishMoreKeyboard())
	if err != nil {
		return err
	}
	data.MessageID = msgID
	return b.setState(ctx, req, models.StateEntryAddFinish, data)
}

// handleEntryAddFinish receives the more/finish button press.
func (b *Bot) handleEntryAddFinish(ctx context.Context, tg TelegramAPI, req *Request) error {
	data := req.State.Data.(*models.EntryAddData)

	switch req.Text() {
	case cbEntryMore:
		text := entryBatchSummary(data.Entries) + "\n\n" + textChooseCategory
		if err := b.edit(ctx, tg, req.ChatID(), req.MessageID(), text, categoriesKeyboard(req.Chat.Categories)); err != nil {
			return err
		}
		b.answer(ctx, tg, req.Callback, "")
		data.CategoryID = 0
		data.ChatBudgetItemID = 0
		data.ItemLabel = ""
		data.ValuteID = 0
		return b.setState(ctx, req, models.StateEntryAddCategory, data)

	case cbEntryFinish:
		if err := b.edit(ctx, tg, req.ChatID(), req.MessageID(),
			"Recorded:\n"+entryBatchSummary(data.Entries), nil); err != nil {
			return err
		}
		b.answer(ctx, tg, req.Callback, "")
		return b.resetState(ctx, req)

	default:
		b.answer(ctx, tg, req.Callback, "")
		return nil
	}
}

func entryBatchSummary(entries []models.PendingEntry) string {
	var sb strings.Builder
	for i, e := range entries {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%s: %s %s", e.Item, e.Amount.StringFixed(2), e.Code)
	}
	return sb.String()
}
