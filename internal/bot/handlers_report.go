package bot

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"

	"gitlab.com/avoronov/ledger-bot/internal/logger"
	"gitlab.com/avoronov/ledger-bot/internal/models"
	"gitlab.com/avoronov/ledger-bot/internal/rates"
	"gitlab.com/avoronov/ledger-bot/internal/report"
)

// handleReport handles the /report command.
func (b *Bot) handleReport(ctx context.Context, tg TelegramAPI, req *Request) error {
	years, err := b.store.Entries.Years(ctx, req.Chat.ID)
	if err != nil {
		return err
	}
	if len(years) == 0 {
		if _, err := b.send(ctx, tg, req.ChatID(), textNoEntries, nil); err != nil {
			return err
		}
		return b.resetState(ctx, req)
	}

	// With a single year there is nothing to choose.
	if len(years) == 1 {
		months, err := b.store.Entries.Months(ctx, req.Chat.ID, years[0])
		if err != nil {
			return err
		}
		msgID, err := b.send(ctx, tg, req.ChatID(), textChooseMonth, monthsKeyboard(months))
		if err != nil {
			return err
		}
		return b.setState(ctx, req, models.StateReportSelectMonth,
			&models.ReportData{Anchor: models.Anchor{MessageID: msgID}, Year: years[0]})
	}

	msgID, err := b.send(ctx, tg, req.ChatID(), textChooseYear, yearsKeyboard(years))
	if err != nil {
		return err
	}
	return b.setState(ctx, req, models.StateReportSelectYear,
		&models.ReportData{Anchor: models.Anchor{MessageID: msgID}})
}

// handleReportSelectYear receives the year button press.
func (b *Bot) handleReportSelectYear(ctx context.Context, tg TelegramAPI, req *Request) error {
	year, ok := callbackID(req.Text(), cbYear)
	if !ok {
		b.answer(ctx, tg, req.Callback, "")
		return nil
	}

	months, err := b.store.Entries.Months(ctx, req.Chat.ID, int(year))
	if err != nil {
		return err
	}
	if len(months) == 0 {
		b.alert(ctx, tg, req.Callback, textNoEntries)
		return nil
	}

	data := req.State.Data.(*models.ReportData)
	data.Year = int(year)

	if err := b.edit(ctx, tg, req.ChatID(), req.MessageID(), textChooseMonth, monthsKeyboard(months)); err != nil {
		return err
	}
	b.answer(ctx, tg, req.Callback, "")
	return b.setState(ctx, req, models.StateReportSelectMonth, data)
}

// handleReportSelectMonth receives the month button press and renders the
// report.
func (b *Bot) handleReportSelectMonth(ctx context.Context, tg TelegramAPI, req *Request) error {
	month, ok := callbackID(req.Text(), cbMonth)
	if !ok || month < 1 || month > 12 {
		b.answer(ctx, tg, req.Callback, "")
		return nil
	}
	data := req.State.Data.(*models.ReportData)

	rows, err := b.store.Entries.Report(ctx, req.Chat.ID, data.Year, int(month))
	if err != nil {
		return err
	}

	resolver, err := b.monthResolver(ctx, req.Chat.ID, data.Year, int(month))
	if err != nil {
		return err
	}

	periodReport, err := report.BuildPeriodReport(rows, resolver, *b.defaultValute, data.Year, time.Month(month))
	if err != nil {
		var incomplete *rates.ErrRatesIncomplete
		if errors.As(err, &incomplete) {
			if err := b.edit(ctx, tg, req.ChatID(), req.MessageID(), incomplete.Error(), nil); err != nil {
				return err
			}
			b.answer(ctx, tg, req.Callback, "")
			return b.resetState(ctx, req)
		}
		return err
	}

	if err := b.edit(ctx, tg, req.ChatID(), req.MessageID(), periodReport.Render(), nil); err != nil {
		return err
	}
	b.answer(ctx, tg, req.Callback, "")

	b.sendReportChart(ctx, tg, req.ChatID(), periodReport)

	return b.resetState(ctx, req)
}

// sendReportChart sends the expense pie chart. Chart failures are logged,
// not surfaced; the text report already went out.
func (b *Bot) sendReportChart(ctx context.Context, tg TelegramAPI, chatID int64, periodReport *report.PeriodReport) {
	png, err := periodReport.ExpenseChart()
	if err != nil {
		logger.Log.Debug().Err(err).Msg("Skipping report chart")
		return
	}
	_, err = tg.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID: chatID,
		Photo: &tgmodels.InputFileUpload{
			Filename: periodReport.ChartFilename(),
			Data:     bytes.NewReader(png),
		},
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send report chart")
	}
}

// monthResolver builds a rate resolver from the chat's exchanges and the
// daily rates of the reported month. Exchanges outside the month do not
// feed its rates.
func (b *Bot) monthResolver(ctx context.Context, chatID int64, year, month int) (*rates.Resolver, error) {
	valutes, err := b.store.Valutes.List(ctx)
	if err != nil {
		return nil, err
	}
	exchanges, err := b.store.Rates.MonthExchanges(ctx, chatID, year, month)
	if err != nil {
		return nil, err
	}
	monthRates, err := b.store.Rates.MonthRates(ctx, year, month)
	if err != nil {
		return nil, err
	}
	return rates.NewResolver(valutes, exchanges, monthRates), nil
}

// latestResolver builds a rate resolver from the chat's exchanges and the
// most recent stored daily rates.
func (b *Bot) latestResolver(ctx context.Context, chatID int64) (*rates.Resolver, error) {
	valutes, err := b.store.Valutes.List(ctx)
	if err != nil {
		return nil, err
	}
	exchanges, err := b.store.Rates.ChatExchanges(ctx, chatID)
	if err != nil {
		return nil, err
	}
	latest, err := b.store.Rates.LatestRates(ctx)
	if err != nil {
		return nil, err
	}
	return rates.NewResolver(valutes, exchanges, latest), nil
}

// handleTotal handles the /total command.
func (b *Bot) handleTotal(ctx context.Context, tg TelegramAPI, req *Request) error {
	totals, err := b.store.Entries.TotalsByValute(ctx, req.Chat.ID)
	if err != nil {
		return err
	}

	resolver, err := b.latestResolver(ctx, req.Chat.ID)
	if err != nil {
		return err
	}

	totalReport, err := report.BuildTotalReport(totals, req.Chat, resolver, *b.defaultValute)
	if err != nil {
		var incomplete *rates.ErrRatesIncomplete
		if errors.As(err, &incomplete) {
			_, err := b.send(ctx, tg, req.ChatID(), incomplete.Error(), nil)
			return err
		}
		return err
	}

	_, err = b.send(ctx, tg, req.ChatID(), totalReport.Render(), hideKeyboard(req.MessageID()))
	return err
}
