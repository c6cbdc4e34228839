package rates

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"gitlab.com/avoronov/ledger-bot/internal/models"
)

var testValutes = []models.Valute{
	{ID: 1, Code: "USD"},
	{ID: 2, Code: "USDT"},
	{ID: 3, Code: "RUB"},
	{ID: 4, Code: "EUR"},
	{ID: 5, Code: "AMD"},
}

func exchange(fromID, toID int64, amountFrom, amountTo string) models.ValuteExchange {
	return models.ValuteExchange{
		ValuteFromID: fromID,
		ValuteToID:   toID,
		AmountFrom:   decimal.RequireFromString(amountFrom),
		AmountTo:     decimal.RequireFromString(amountTo),
	}
}

func dailyRate(fromID, toID int64, rate string) models.ValuteRate {
	return models.ValuteRate{
		ValuteFromID: fromID,
		ValuteToID:   toID,
		Rate:         decimal.RequireFromString(rate),
		Date:         time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestResolverSubstitution(t *testing.T) {
	r := NewResolver(testValutes, nil, nil)

	for _, pair := range [][2]string{
		{"USD", "USD"},
		{"USD", "USDT"},
		{"USDT", "USD"},
		{"RUB", "RUB"},
	} {
		rate, err := r.Rate(pair[0], pair[1])
		require.NoError(t, err, "%s -> %s", pair[0], pair[1])
		require.True(t, rate.Equal(decimal.NewFromInt(1)), "%s -> %s = %s", pair[0], pair[1], rate)
	}
}

func TestResolverDirectExchange(t *testing.T) {
	t.Run("single event", func(t *testing.T) {
		r := NewResolver(testValutes, []models.ValuteExchange{
			exchange(1, 3, "100", "9000"),
		}, nil)

		rate, err := r.Rate("USD", "RUB")
		require.NoError(t, err)
		require.True(t, rate.Equal(decimal.NewFromInt(90)), "got %s", rate)

		inverse, err := r.Rate("RUB", "USD")
		require.NoError(t, err)
		require.True(t, inverse.Equal(decimal.RequireFromString("0.011111")), "got %s", inverse)
	})

	t.Run("geometric mean over events in both directions", func(t *testing.T) {
		// 80 one way and 1/125 the other way: geomean(80, 125) = 100.
		r := NewResolver(testValutes, []models.ValuteExchange{
			exchange(1, 3, "1", "80"),
			exchange(3, 1, "125", "1"),
		}, nil)

		rate, err := r.Rate("USD", "RUB")
		require.NoError(t, err)
		require.True(t, rate.Equal(decimal.NewFromInt(100)), "got %s", rate)
	})

	t.Run("observations are rounded before averaging", func(t *testing.T) {
		// The first event's implied rate rounds to 0.333333 before the
		// mean, pulling the result just under 1. Unrounded observations
		// would cancel to exactly 1.
		r := NewResolver(testValutes, []models.ValuteExchange{
			exchange(1, 3, "3", "1"),
			exchange(1, 3, "1", "3"),
		}, nil)

		rate, err := r.Rate("USD", "RUB")
		require.NoError(t, err)
		require.Equal(t, "0.999999", rate.String())
	})

	t.Run("usdt events count as usd", func(t *testing.T) {
		r := NewResolver(testValutes, []models.ValuteExchange{
			exchange(2, 3, "10", "900"),
		}, nil)

		rate, err := r.Rate("USD", "RUB")
		require.NoError(t, err)
		require.True(t, rate.Equal(decimal.NewFromInt(90)), "got %s", rate)
	})
}

func TestResolverUSDBridge(t *testing.T) {
	// No direct EUR/RUB events, but both sides reach USD.
	r := NewResolver(testValutes, []models.ValuteExchange{
		exchange(4, 1, "100", "110"), // EUR -> USD at 1.1
		exchange(1, 3, "10", "900"),  // USD -> RUB at 90
	}, nil)

	rate, err := r.Rate("EUR", "RUB")
	require.NoError(t, err)
	require.True(t, rate.Equal(decimal.NewFromInt(99)), "got %s", rate)
}

func TestResolverExternalRatesBridge(t *testing.T) {
	// External daily rates are stored USD-based.
	r := NewResolver(testValutes, nil, []models.ValuteRate{
		dailyRate(1, 3, "90"),
		dailyRate(1, 4, "0.9"),
	})

	t.Run("usd leg is identity", func(t *testing.T) {
		rate, err := r.Rate("USD", "RUB")
		require.NoError(t, err)
		require.True(t, rate.Equal(decimal.NewFromInt(90)), "got %s", rate)
	})

	t.Run("cross rate through usd", func(t *testing.T) {
		rate, err := r.Rate("EUR", "RUB")
		require.NoError(t, err)
		require.True(t, rate.Equal(decimal.NewFromInt(100)), "got %s", rate)
	})

	t.Run("manual exchanges win over external rates", func(t *testing.T) {
		withExchange := NewResolver(testValutes, []models.ValuteExchange{
			exchange(1, 3, "1", "95"),
		}, []models.ValuteRate{
			dailyRate(1, 3, "90"),
		})

		rate, err := withExchange.Rate("USD", "RUB")
		require.NoError(t, err)
		require.True(t, rate.Equal(decimal.NewFromInt(95)), "got %s", rate)
	})
}

func TestResolverFailsClosed(t *testing.T) {
	r := NewResolver(testValutes, []models.ValuteExchange{
		exchange(1, 3, "100", "9000"),
	}, nil)

	_, err := r.Rate("AMD", "RUB")
	require.Error(t, err)

	var incomplete *ErrRatesIncomplete
	require.True(t, errors.As(err, &incomplete))
	require.Equal(t, []string{"AMD"}, incomplete.Codes)
	require.Contains(t, incomplete.Error(), "AMD")
}

func TestResolverProperties(t *testing.T) {
	codes := []string{"USD", "RUB", "EUR", "AMD"}
	idByCode := map[string]int64{"USD": 1, "RUB": 3, "EUR": 4, "AMD": 5}

	rapid.Check(t, func(t *rapid.T) {
		count := rapid.IntRange(1, 8).Draw(t, "count")
		var exchanges []models.ValuteExchange
		for i := 0; i < count; i++ {
			from := rapid.SampledFrom(codes).Draw(t, "from")
			to := rapid.SampledFrom(codes).Draw(t, "to")
			if from == to {
				continue
			}
			// Amounts within two orders of magnitude of each other keep
			// the implied rates far from the 6 decimal place rounding
			// floor.
			amountFrom := rapid.Int64Range(1_000, 100_000).Draw(t, "amount_from")
			amountTo := rapid.Int64Range(1_000, 100_000).Draw(t, "amount_to")
			exchanges = append(exchanges, models.ValuteExchange{
				ValuteFromID: idByCode[from],
				ValuteToID:   idByCode[to],
				AmountFrom:   decimal.NewFromInt(amountFrom),
				AmountTo:     decimal.NewFromInt(amountTo),
			})
		}
		r := NewResolver(testValutes, exchanges, nil)

		from := rapid.SampledFrom(codes).Draw(t, "query_from")
		to := rapid.SampledFrom(codes).Draw(t, "query_to")

		forward, errForward := r.Rate(from, to)
		backward, errBackward := r.Rate(to, from)

		// Resolvability is symmetric.
		if (errForward == nil) != (errBackward == nil) {
			t.Fatalf("asymmetric resolvability %s/%s: %v vs %v", from, to, errForward, errBackward)
		}
		if errForward != nil {
			var incomplete *ErrRatesIncomplete
			if !errors.As(errForward, &incomplete) || len(incomplete.Codes) == 0 {
				t.Fatalf("failure must name missing codes, got %v", errForward)
			}
			return
		}

		// Resolved rates are positive and roughly reciprocal; the
		// tolerance covers the 6 decimal place rounding of each leg.
		if !forward.IsPositive() || !backward.IsPositive() {
			t.Fatalf("non-positive rate: %s, %s", forward, backward)
		}
		product := forward.Mul(backward).InexactFloat64()
		if product < 0.99 || product > 1.01 {
			t.Fatalf("rate(%s,%s)=%s and rate(%s,%s)=%s multiply to %f",
				from, to, forward, to, from, backward, product)
		}
	})
}
