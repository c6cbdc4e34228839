// Package scheduler runs the periodic background jobs.
package scheduler

import (
	"context"
	"time"

	"gitlab.com/avoronov/ledger-bot/internal/logger"
	"gitlab.com/avoronov/ledger-bot/internal/models"
	"gitlab.com/avoronov/ledger-bot/internal/rates"
	"gitlab.com/avoronov/ledger-bot/internal/repository"
)

// RatesJob fetches USD-based daily rates for every known valute once per
// day.
type RatesJob struct {
	store     *repository.Store
	seeker    rates.Seeker
	fetchHour int
	interval  time.Duration
}

// NewRatesJob creates the daily rates job. fetchHour is the UTC hour after
// which the day's rates are fetched.
func NewRatesJob(store *repository.Store, seeker rates.Seeker, fetchHour int) *RatesJob {
	return &RatesJob{
		store:     store,
		seeker:    seeker,
		fetchHour: fetchHour,
		interval:  time.Hour,
	}
}

// Run checks hourly whether today's rates still need fetching, until the
// context is cancelled.
func (j *RatesJob) Run(ctx context.Context) {
	logger.Log.Info().Int("fetch_hour", j.fetchHour).Msg("Rates job started")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.tick(ctx, time.Now().UTC())
	for {
		select {
		case <-ctx.Done():
			logger.Log.Info().Msg("Rates job stopped")
			return
		case now := <-ticker.C:
			j.tick(ctx, now.UTC())
		}
	}
}

// tick fetches and stores today's rates if due, then backfills days on which
// entries were recorded without a stored rate. Errors are logged and retried
// on the next tick.
func (j *RatesJob) tick(ctx context.Context, now time.Time) {
	if now.Hour() < j.fetchHour {
		return
	}
	today := now.Truncate(24 * time.Hour)

	done, err := j.store.Rates.HasRatesOn(ctx, today)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to check stored rates")
		return
	}
	if !done {
		if err := j.fetch(ctx, today); err != nil {
			logger.Log.Error().Err(err).Msg("Failed to fetch daily rates")
			return
		}
	}

	j.backfill(ctx, today)
}

// backfill fetches rates for past entry dates that have none. Per-date
// failures are logged and skipped.
func (j *RatesJob) backfill(ctx context.Context, today time.Time) {
	dates, err := j.store.Rates.DatesMissingRates(ctx)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to find dates missing rates")
		return
	}
	for _, day := range dates {
		if !day.Before(today) {
			continue
		}
		if err := j.fetch(ctx, day); err != nil {
			logger.Log.Error().Err(err).Time("date", day).Msg("Failed to backfill daily rates")
		}
	}
}

func (j *RatesJob) fetch(ctx context.Context, day time.Time) error {
	valutes, err := j.store.Valutes.List(ctx)
	if err != nil {
		return err
	}

	usdID := int64(0)
	codes := make([]string, 0, len(valutes))
	idByCode := make(map[string]int64, len(valutes))
	for _, v := range valutes {
		if v.Code == models.USDCode {
			usdID = v.ID
		}
		codes = append(codes, v.Code)
		idByCode[v.Code] = v.ID
	}
	if usdID == 0 {
		logger.Log.Warn().Msg("No USD valute, skipping rates fetch")
		return nil
	}

	daily, err := j.seeker.FetchDailyRates(ctx, day, codes)
	if err != nil {
		return err
	}

	stored := 0
	for _, rate := range daily {
		valuteID, ok := idByCode[rate.Code]
		if !ok {
			continue
		}
		err := j.store.Rates.CreateRate(ctx, models.ValuteRate{
			ValuteFromID: usdID,
			ValuteToID:   valuteID,
			Rate:         rate.Rate,
			Date:         day,
		})
		if err != nil {
			return err
		}
		stored++
	}

	logger.Log.Info().Int("rates", stored).Time("date", day).Msg("Stored daily rates")
	return nil
}
