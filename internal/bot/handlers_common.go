package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"

	"gitlab.com/avoronov/ledger-bot/internal/models"
	"gitlab.com/avoronov/ledger-bot/internal/rates"
)

// handleStart handles the /start command.
func (b *Bot) handleStart(ctx context.Context, tg TelegramAPI, req *Request) error {
	_, err := b.send(ctx, tg, req.ChatID(), textStart, nil)
	return err
}

// handleHelp handles the /help command.
func (b *Bot) handleHelp(ctx context.Context, tg TelegramAPI, req *Request) error {
	_, err := b.send(ctx, tg, req.ChatID(), textHelp, nil)
	return err
}

// handleRateList handles the /rate_list command. For each chat currency it
// shows two USD rates side by side: avg derived from the chat's manual
// exchanges, cur from the latest stored daily rates.
func (b *Bot) handleRateList(ctx context.Context, tg TelegramAPI, req *Request) error {
	valutes, err := b.store.Valutes.List(ctx)
	if err != nil {
		return err
	}
	exchanges, err := b.store.Rates.ChatExchanges(ctx, req.Chat.ID)
	if err != nil {
		return err
	}
	latest, err := b.store.Rates.LatestRates(ctx)
	if err != nil {
		return err
	}
	avg := rates.NewResolver(valutes, exchanges, nil)
	cur := rates.NewResolver(valutes, nil, latest)

	var sb strings.Builder
	sb.WriteString("Rates per USD:\n")
	found := false
	for _, v := range req.Chat.Valutes {
		if v.Code == models.USDCode || v.Code == models.USDTCode {
			continue
		}
		avgRate, curRate := "-", "-"
		if rate, err := avg.Rate(models.USDCode, v.Code); err == nil {
			avgRate = rate.String()
			found = true
		}
		if rate, err := cur.Rate(models.USDCode, v.Code); err == nil {
			curRate = rate.String()
			found = true
		}
		fmt.Fprintf(&sb, "\n%s: avg %s, cur %s", v.Code, avgRate, curRate)
	}
	if !found {
		sb.Reset()
		sb.WriteString("No rates known yet. Record an exchange with /exchange.")
	}

	_, err = b.send(ctx, tg, req.ChatID(), sb.String(), hideKeyboard(req.MessageID()))
	return err
}

// handleHide deletes the message a hide button is attached to. With
// hide_also data the companion message ids named in the payload go too.
func (b *Bot) handleHide(ctx context.Context, tg TelegramAPI, cb *tgmodels.CallbackQuery) {
	msg := cb.Message.Message
	if msg == nil {
		b.answer(ctx, tg, cb, "")
		return
	}

	_, _ = tg.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
	})

	if rest, ok := strings.CutPrefix(cb.Data, cbHideAlso+"_"); ok {
		for _, part := range strings.Split(rest, "_") {
			id, err := strconv.Atoi(part)
			if err != nil {
				continue
			}
			_, _ = tg.DeleteMessage(ctx, &bot.DeleteMessageParams{
				ChatID:    msg.Chat.ID,
				MessageID: id,
			})
		}
	}

	b.answer(ctx, tg, cb, "")
}
