package bot

import (
	"context"
	"fmt"
	"strings"

	"gitlab.com/avoronov/ledger-bot/internal/models"
)

func trackersOfKind(chat *models.Chat, kind models.TrackerKind) []models.Tracker {
	switch kind {
	case models.TrackerFond:
		return chat.Fonds
	case models.TrackerDebt:
		return chat.Debts
	default:
		return chat.Balances
	}
}

// handleTrackerCreate handles /balance_create, /fond_create and
// /debt_create.
func (b *Bot) handleTrackerCreate(ctx context.Context, tg TelegramAPI, req *Request, kind models.TrackerKind) error {
	msgID, err := b.send(ctx, tg, req.ChatID(), textTrackerNamePrompt, nil)
	if err != nil {
		return err
	}
	return b.setState(ctx, req, models.TrackerStates(kind)[0],
		&models.TrackerData{Anchor: models.Anchor{MessageID: msgID}})
}

// handleTrackerCreateName receives the tracker name reply.
func (b *Bot) handleTrackerCreateName(ctx context.Context, tg TelegramAPI, req *Request, kind models.TrackerKind) error {
	name := strings.TrimSpace(req.Text())

	existing, err := b.store.Trackers.GetByName(ctx, kind, req.Chat.ID, name)
	if err != nil {
		return err
	}
	if existing != nil {
		return b.reprompt(ctx, tg, req, textTrackerExists)
	}

	data := req.State.Data.(*models.TrackerData)
	data.TrackerName = name

	msgID, err := b.send(ctx, tg, req.ChatID(), textChooseValute, valutesKeyboard(req.Chat.Valutes, 0))
	if err != nil {
		return err
	}
	data.MessageID = msgID
	return b.setState(ctx, req, models.TrackerStates(kind)[1], data)
}

// handleTrackerCreateValute receives the currency button press and creates
// the tracker.
func (b *Bot) handleTrackerCreateValute(ctx context.Context, tg TelegramAPI, req *Request, kind models.TrackerKind) error {
	valuteID, ok := callbackID(req.Text(), cbValute)
	if !ok || req.Chat.ValuteByID(valuteID) == nil {
		b.answer(ctx, tg, req.Callback, "")
		return nil
	}

	data := req.State.Data.(*models.TrackerData)
	tracker, err := b.store.Trackers.Create(ctx, kind, req.Chat.ID, valuteID, data.TrackerName)
	if err != nil {
		return err
	}
	tracker.Valute = req.Chat.ValuteByID(valuteID)

	if err := b.edit(ctx, tg, req.ChatID(), req.MessageID(),
		fmt.Sprintf("Created %s: %s", kind, tracker.Info()), nil); err != nil {
		return err
	}
	b.answer(ctx, tg, req.Callback, "")
	return b.resetState(ctx, req)
}

// handleTrackerList handles /balance_list, /fond_list and /debt_list.
func (b *Bot) handleTrackerList(ctx context.Context, tg TelegramAPI, req *Request, kind models.TrackerKind) error {
	trackers := trackersOfKind(req.Chat, kind)
	if len(trackers) == 0 {
		_, err := b.send(ctx, tg, req.ChatID(), fmt.Sprintf("No %ss yet.", kind), hideKeyboard(req.MessageID()))
		return err
	}

	var sb strings.Builder
	for i := range trackers {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(trackers[i].Info())
	}
	_, err := b.send(ctx, tg, req.ChatID(), sb.String(), hideKeyboard(req.MessageID()))
	return err
}

// handleTrackerSet handles /balance_set, /fond_set and /debt_set.
func (b *Bot) handleTrackerSet(ctx context.Context, tg TelegramAPI, req *Request, kind models.TrackerKind) error {
	trackers := trackersOfKind(req.Chat, kind)
	if len(trackers) == 0 {
		_, err := b.send(ctx, tg, req.ChatID(), fmt.Sprintf("No %ss yet.", kind), nil)
		return err
	}

	msgID, err := b.send(ctx, tg, req.ChatID(), textChooseTracker, trackersKeyboard(trackers))
	if err != nil {
		return err
	}
	return b.setState(ctx, req, models.TrackerStates(kind)[2],
		&models.TrackerData{Anchor: models.Anchor{MessageID: msgID}})
}

// handleTrackerSetChoose receives the tracker button press.
func (b *Bot) handleTrackerSetChoose(ctx context.Context, tg TelegramAPI, req *Request, kind models.TrackerKind) error {
	trackerID, ok := callbackID(req.Text(), cbTracker)
	if !ok {
		b.answer(ctx, tg, req.Callback, "")
		return nil
	}

	data := req.State.Data.(*models.TrackerData)
	data.TrackerID = trackerID

	if err := b.edit(ctx, tg, req.ChatID(), req.MessageID(), textTrackerAmount, nil); err != nil {
		return err
	}
	b.answer(ctx, tg, req.Callback, "")
	return b.setState(ctx, req, models.TrackerStates(kind)[3], data)
}

// handleTrackerSetAmount receives the new amount reply.
func (b *Bot) handleTrackerSetAmount(ctx context.Context, tg TelegramAPI, req *Request, kind models.TrackerKind) error {
	data := req.State.Data.(*models.TrackerData)

	amount, err := parseAmount(req.Text())
	if err != nil {
		return b.reprompt(ctx, tg, req, textAmountInvalid)
	}

	if err := b.store.Trackers.SetAmount(ctx, kind, data.TrackerID, amount); err != nil {
		return err
	}

	if err := b.resetState(ctx, req); err != nil {
		return err
	}
	_, err = b.send(ctx, tg, req.ChatID(), fmt.Sprintf("Updated, new amount: %s", amount.StringFixed(2)), nil)
	return err
}

// handleTrackerDelete handles /balance_delete, /fond_delete and
// /debt_delete.
func (b *Bot) handleTrackerDelete(ctx context.Context, tg TelegramAPI, req *Request, kind models.TrackerKind) error {
	trackers := trackersOfKind(req.Chat, kind)
	if len(trackers) == 0 {
		_, err := b.send(ctx, tg, req.ChatID(), fmt.Sprintf("No %ss yet.", kind), nil)
		return err
	}

	msgID, err := b.send(ctx, tg, req.ChatID(), textChooseTracker, trackersKeyboard(trackers))
	if err != nil {
		return err
	}
	return b.setState(ctx, req, models.TrackerStates(kind)[4],
		&models.TrackerData{Anchor: models.Anchor{MessageID: msgID}})
}

// handleTrackerDeleteChoose receives the tracker button press and asks for
// confirmation.
func (b *Bot) handleTrackerDeleteChoose(ctx context.Context, tg TelegramAPI, req *Request, kind models.TrackerKind) error {
	trackerID, ok := callbackID(req.Text(), cbTracker)
	if !ok {
		b.answer(ctx, tg, req.Callback, "")
		return nil
	}

	name := ""
	for _, tracker := range trackersOfKind(req.Chat, kind) {
		if tracker.ID == trackerID {
			name = tracker.Name
		}
	}
	if name == "" {
		b.answer(ctx, tg, req.Callback, "")
		return nil
	}

	data := req.State.Data.(*models.TrackerData)
	data.TrackerID = trackerID
	data.TrackerName = name

	if err := b.edit(ctx, tg, req.ChatID(), req.MessageID(),
		fmt.Sprintf(textConfirmDelete, name), confirmKeyboard()); err != nil {
		return err
	}
	b.answer(ctx, tg, req.Callback, "")
	return b.setState(ctx, req, models.TrackerStates(kind)[5], data)
}

// handleTrackerDeleteConfirm receives the yes/no button press.
func (b *Bot) handleTrackerDeleteConfirm(ctx context.Context, tg TelegramAPI, req *Request, kind models.TrackerKind) error {
	data := req.State.Data.(*models.TrackerData)

	switch req.Text() {
	case cbConfirmYes:
		if err := b.store.Trackers.Delete(ctx, kind, data.TrackerID); err != nil {
			return err
		}
		if err := b.edit(ctx, tg, req.ChatID(), req.MessageID(),
			fmt.Sprintf("Deleted %s %s.", kind, data.TrackerName), nil); err != nil {
			return err
		}
		b.answer(ctx, tg, req.Callback, "")
		return b.resetState(ctx, req)

	case cbConfirmNo:
		if err := b.edit(ctx, tg, req.ChatID(), req.MessageID(), "Cancelled.", nil); err != nil {
			return err
		}
		b.answer(ctx, tg, req.Callback, "")
		return b.resetState(ctx, req)

	default:
		b.answer(ctx, tg, req.Callback, "")
		return nil
	}
}
