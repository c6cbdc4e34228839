package bot

import (
	"context"
	"fmt"
	"strings"

	"gitlab.com/avoronov/ledger-bot/internal/models"
	"gitlab.com/avoronov/ledger-bot/internal/rates"
)

// handleExchange handles the /exchange command.
func (b *Bot) handleExchange(ctx context.Context, tg TelegramAPI, req *Request) error {
	if len(req.Chat.Valutes) < 2 {
		if _, err := b.send(ctx, tg, req.ChatID(), textExchangeSameValute, nil); err != nil {
			return err
		}
		return b.resetState(ctx, req)
	}

	msgID, err := b.send(ctx, tg, req.ChatID(), textExchangeFrom, valutesKeyboard(req.Chat.Valutes, 0))
	if err != nil {
		return err
	}
	return b.setState(ctx, req, models.StateExchangeFrom,
		&models.ExchangeData{Anchor: models.Anchor{MessageID: msgID}})
}

// handleExchangeFrom receives the given-currency button press.
func (b *Bot) handleExchangeFrom(ctx context.Context, tg TelegramAPI, req *Request) error {
	valuteID, ok := callbackID(req.Text(), cbValute)
	if !ok || req.Chat.ValuteByID(valuteID) == nil {
		b.answer(ctx, tg, req.Callback, "")
		return nil
	}

	data := req.State.Data.(*models.ExchangeData)
	data.ValuteFromID = valuteID

	if err := b.edit(ctx, tg, req.ChatID(), req.MessageID(), textExchangeTo,
		valutesKeyboard(req.Chat.Valutes, valuteID)); err != nil {
		return err
	}
	b.answer(ctx, tg, req.Callback, "")
	return b.setState(ctx, req, models.StateExchangeTo, data)
}

// handleExchangeTo receives the received-currency button press.
func (b *Bot) handleExchangeTo(ctx context.Context, tg TelegramAPI, req *Request) error {
	valuteID, ok := callbackID(req.Text(), cbValute)
	if !ok || req.Chat.ValuteByID(valuteID) == nil {
		b.answer(ctx, tg, req.Callback, "")
		return nil
	}

	data := req.State.Data.(*models.ExchangeData)
	if valuteID == data.ValuteFromID {
		b.alert(ctx, tg, req.Callback, textExchangeSameValute)
		return nil
	}
	data.ValuteToID = valuteID

	if err := b.edit(ctx, tg, req.ChatID(), req.MessageID(), textExchangeAmounts, nil); err != nil {
		return err
	}
	b.answer(ctx, tg, req.Callback, "")
	return b.setState(ctx, req, models.StateExchangeAmount, data)
}

// handleExchangeAmount receives the "given received" amounts reply and
// records the exchange event.
func (b *Bot) handleExchangeAmount(ctx context.Context, tg TelegramAPI, req *Request) error {
	data := req.State.Data.(*models.ExchangeData)

	fields := strings.Fields(req.Text())
	if len(fields) != 2 {
		return b.reprompt(ctx, tg, req, textExchangeInvalid)
	}
	amountFrom, errFrom := parseAmount(fields[0])
	amountTo, errTo := parseAmount(fields[1])
	if errFrom != nil || errTo != nil || !amountFrom.IsPositive() || !amountTo.IsPositive() {
		return b.reprompt(ctx, tg, req, textExchangeInvalid)
	}

	exchange, err := b.store.Rates.CreateExchange(ctx, &models.ValuteExchange{
		ChatID:       req.Chat.ID,
		ValuteFromID: data.ValuteFromID,
		ValuteToID:   data.ValuteToID,
		AmountFrom:   amountFrom,
		AmountTo:     amountTo,
	})
	if err != nil {
		return err
	}

	from := req.Chat.ValuteByID(exchange.ValuteFromID)
	to := req.Chat.ValuteByID(exchange.ValuteToID)
	implied := amountTo.Div(amountFrom).Round(rates.Precision)

	if err := b.resetState(ctx, req); err != nil {
		return err
	}
	_, err = b.send(ctx, tg, req.ChatID(),
		fmt.Sprintf("Exchange recorded: %s %s -> %s %s (rate %s)",
			amountFrom.StringFixed(2), from.Code, amountTo.StringFixed(2), to.Code, implied.String()),
		nil)
	return err
}
