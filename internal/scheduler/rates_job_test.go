package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"gitlab.com/avoronov/ledger-bot/internal/database"
	"gitlab.com/avoronov/ledger-bot/internal/rates"
	"gitlab.com/avoronov/ledger-bot/internal/repository"
)

// fakeSeeker returns canned rates and records how often it was called.
type fakeSeeker struct {
	rates []rates.DailyRate
	err   error
	calls int
}

func (f *fakeSeeker) FetchDailyRates(_ context.Context, _ time.Time, _ []string) ([]rates.DailyRate, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.rates, nil
}

func TestRatesJobTick(t *testing.T) {
	pool := database.TestDB(t)
	t.Cleanup(func() { database.CleanupTables(t, pool) })

	ctx := context.Background()
	store := repository.NewStore(pool)

	_, err := store.Valutes.GetOrCreate(ctx, "USD", "US Dollar", "$")
	require.NoError(t, err)
	_, err = store.Valutes.GetOrCreate(ctx, "RUB", "Российский рубль", "₽")
	require.NoError(t, err)

	seeker := &fakeSeeker{rates: []rates.DailyRate{
		{Code: "RUB", Rate: decimal.RequireFromString("90.5")},
	}}
	job := NewRatesJob(store, seeker, 6)

	morning := time.Date(2026, 3, 10, 4, 0, 0, 0, time.UTC)
	afternoon := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	t.Run("before fetch hour nothing happens", func(t *testing.T) {
		job.tick(ctx, morning)
		require.Zero(t, seeker.calls)
	})

	t.Run("after fetch hour rates are stored", func(t *testing.T) {
		job.tick(ctx, afternoon)
		require.Equal(t, 1, seeker.calls)

		stored, err := store.Rates.MonthRates(ctx, 2026, 3)
		require.NoError(t, err)
		require.Len(t, stored, 1)
		require.True(t, stored[0].Rate.Equal(decimal.RequireFromString("90.5")))
	})

	t.Run("second tick same day is a no-op", func(t *testing.T) {
		job.tick(ctx, afternoon.Add(time.Hour))
		require.Equal(t, 1, seeker.calls)
	})

	t.Run("fetch errors are retried next tick", func(t *testing.T) {
		failing := &fakeSeeker{err: errors.New("api down")}
		failingJob := NewRatesJob(store, failing, 6)

		nextDay := afternoon.AddDate(0, 0, 1)
		failingJob.tick(ctx, nextDay)
		require.Equal(t, 1, failing.calls)

		stored, err := store.Rates.HasRatesOn(ctx, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		require.False(t, stored)

		failingJob.tick(ctx, nextDay.Add(time.Hour))
		require.Equal(t, 2, failing.calls)
	})
}
