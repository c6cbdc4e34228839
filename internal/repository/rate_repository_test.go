package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"gitlab.com/avoronov/ledger-bot/internal/database"
	"gitlab.com/avoronov/ledger-bot/internal/models"
)

func TestRateRepository(t *testing.T) {
	pool := database.TestDB(t)
	t.Cleanup(func() { database.CleanupTables(t, pool) })

	ctx := context.Background()
	store := NewStore(pool)

	usd, err := store.Valutes.GetOrCreate(ctx, "USD", "US Dollar", "$")
	require.NoError(t, err)
	rub, err := store.Valutes.GetOrCreate(ctx, "rub", "Российский рубль", "₽")
	require.NoError(t, err)
	require.Equal(t, "RUB", rub.Code, "codes are stored upper case")

	day := func(d int) time.Time {
		return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
	}

	t.Run("upsert overwrites same pair and date", func(t *testing.T) {
		rate := models.ValuteRate{
			ValuteFromID: usd.ID,
			ValuteToID:   rub.ID,
			Rate:         decimal.RequireFromString("90.5"),
			Date:         day(10),
		}
		require.NoError(t, store.Rates.CreateRate(ctx, rate))

		rate.Rate = decimal.RequireFromString("91.25")
		require.NoError(t, store.Rates.CreateRate(ctx, rate))

		rates, err := store.Rates.MonthRates(ctx, 2026, 3)
		require.NoError(t, err)
		require.Len(t, rates, 1)
		require.True(t, rates[0].Rate.Equal(decimal.RequireFromString("91.25")))
	})

	t.Run("has rates on date", func(t *testing.T) {
		exists, err := store.Rates.HasRatesOn(ctx, day(10))
		require.NoError(t, err)
		require.True(t, exists)

		exists, err = store.Rates.HasRatesOn(ctx, day(11))
		require.NoError(t, err)
		require.False(t, exists)
	})

	t.Run("latest rates picks newest per pair", func(t *testing.T) {
		require.NoError(t, store.Rates.CreateRate(ctx, models.ValuteRate{
			ValuteFromID: usd.ID,
			ValuteToID:   rub.ID,
			Rate:         decimal.RequireFromString("95"),
			Date:         day(20),
		}))

		latest, err := store.Rates.LatestRates(ctx)
		require.NoError(t, err)
		require.Len(t, latest, 1)
		require.True(t, latest[0].Rate.Equal(decimal.RequireFromString("95")))
	})

	t.Run("month exchanges exclude other months", func(t *testing.T) {
		chat, err := store.Chats.GetOrCreate(ctx, 710003, "", "private")
		require.NoError(t, err)

		insert := func(amountTo int64, createdAt time.Time) {
			_, err := pool.Exec(ctx,
				`INSERT INTO valute_exchanges (chat_id, valute_from_id, valute_to_id, amount_from, amount_to, created_at)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				chat.ID, usd.ID, rub.ID, 1, amountTo, createdAt)
			require.NoError(t, err)
		}
		insert(80, time.Date(2025, 1, 2, 12, 0, 0, 0, time.UTC))
		insert(90, day(5))

		march, err := store.Rates.MonthExchanges(ctx, chat.ID, 2026, 3)
		require.NoError(t, err)
		require.Len(t, march, 1)
		require.True(t, march[0].AmountTo.Equal(decimal.NewFromInt(90)))

		january, err := store.Rates.MonthExchanges(ctx, chat.ID, 2025, 1)
		require.NoError(t, err)
		require.Len(t, january, 1)
		require.True(t, january[0].AmountTo.Equal(decimal.NewFromInt(80)))
	})

	t.Run("exchanges are chat scoped", func(t *testing.T) {
		chatA, err := store.Chats.GetOrCreate(ctx, 710001, "", "private")
		require.NoError(t, err)
		chatB, err := store.Chats.GetOrCreate(ctx, 710002, "", "private")
		require.NoError(t, err)

		_, err = store.Rates.CreateExchange(ctx, &models.ValuteExchange{
			ChatID:       chatA.ID,
			ValuteFromID: usd.ID,
			ValuteToID:   rub.ID,
			AmountFrom:   decimal.NewFromInt(100),
			AmountTo:     decimal.NewFromInt(9000),
		})
		require.NoError(t, err)

		forA, err := store.Rates.ChatExchanges(ctx, chatA.ID)
		require.NoError(t, err)
		require.Len(t, forA, 1)

		forB, err := store.Rates.ChatExchanges(ctx, chatB.ID)
		require.NoError(t, err)
		require.Empty(t, forB)
	})
}
