package bot

import (
	"context"
	"fmt"
	"strings"

	"gitlab.com/avoronov/ledger-bot/internal/models"
)

// handleCategoryList handles the /category_list command.
func (b *Bot) handleCategoryList(ctx context.Context, tg TelegramAPI, req *Request) error {
	if len(req.Chat.Categories) == 0 {
		_, err := b.send(ctx, tg, req.ChatID(), textNoCategories, hideKeyboard(req.MessageID()))
		return err
	}

	var sb strings.Builder
	sb.WriteString("Categories:\n")
	for _, cat := range req.Chat.Categories {
		fmt.Fprintf(&sb, "\n%s\n", cat.Name)
		for _, item := range cat.BudgetItems {
			sign := "-"
			if item.Type == models.BudgetItemIncome {
				sign = "+"
			}
			fmt.Fprintf(&sb, "  %s %s\n", sign, item.Name)
		}
	}

	_, err := b.send(ctx, tg, req.ChatID(), sb.String(), hideKeyboard(req.MessageID()))
	return err
}

// handleCategoryAdd handles the /category_add command.
func (b *Bot) handleCategoryAdd(ctx context.Context, tg TelegramAPI, req *Request) error {
	if len(req.Chat.Categories) >= models.CategoryLimit {
		_, err := b.send(ctx, tg, req.ChatID(), textCategoryLimit, nil)
		return err
	}

	msgID, err := b.send(ctx, tg, req.ChatID(), textCategoryPrompt, nil)
	if err != nil {
		return err
	}
	return b.setState(ctx, req, models.StateCategoryAddName,
		&models.CategoryAddData{Anchor: models.Anchor{MessageID: msgID}})
}

// handleCategoryAddName receives the category name reply.
func (b *Bot) handleCategoryAddName(ctx context.Context, tg TelegramAPI, req *Request) error {
	name := strings.TrimSpace(req.Text())

	for _, cat := range req.Chat.Categories {
		if strings.EqualFold(cat.Name, name) {
			return b.reprompt(ctx, tg, req, textCategoryExists)
		}
	}

	cat, err := b.store.Categories.GetOrCreate(ctx, name)
	if err != nil {
		return err
	}
	if err := b.store.Categories.AttachToChat(ctx, req.Chat.ID, cat.ID); err != nil {
		return err
	}

	if err := b.resetState(ctx, req); err != nil {
		return err
	}
	_, err = b.send(ctx, tg, req.ChatID(), fmt.Sprintf("Category added: %s", cat.Name), nil)
	return err
}

// reprompt refreshes a wizard message prompt after invalid input. The new
// message becomes the anchor; the old one no longer accepts replies.
func (b *Bot) reprompt(ctx context.Context, tg TelegramAPI, req *Request, text string) error {
	msgID, err := b.send(ctx, tg, req.ChatID(), text, nil)
	if err != nil {
		return err
	}

	data := req.State.Data
	switch d := data.(type) {
	case *models.CategoryAddData:
		d.MessageID = msgID
	case *models.BudgetItemAddData:
		d.MessageID = msgID
	case *models.EntryAddData:
		d.MessageID = msgID
	case *models.TrackerData:
		d.MessageID = msgID
	case *models.ExchangeData:
		d.MessageID = msgID
	default:
		return fmt.Errorf("cannot reprompt state %q", req.State.State)
	}
	return b.setState(ctx, req, req.State.State, data)
}
