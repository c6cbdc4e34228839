package repository

import (
	"context"
	"fmt"
	"time"

	"gitlab.com/avoronov/ledger-bot/internal/database"
	"gitlab.com/avoronov/ledger-bot/internal/models"
)

// RateRepository handles daily external rates and manual exchange events.
type RateRepository struct {
	db database.PGXDB
}

// NewRateRepository creates a new rate repository.
func NewRateRepository(db database.PGXDB) *RateRepository {
	return &RateRepository{db: db}
}

// CreateRate upserts one daily rate. Re-fetching the same pair and date
// overwrites the stored value.
func (r *RateRepository) CreateRate(ctx context.Context, rate models.ValuteRate) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO valute_rates (valute_from_id, valute_to_id, rate, date)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (valute_from_id, valute_to_id, date) DO UPDATE SET rate = EXCLUDED.rate`,
		rate.ValuteFromID, rate.ValuteToID, rate.Rate, rate.Date,
	)
	if err != nil {
		return fmt.Errorf("failed to create valute rate: %w", err)
	}
	return nil
}

// HasRatesOn reports whether any rate rows exist for the given date, used by
// the daily fetch job to avoid redundant requests.
func (r *RateRepository) HasRatesOn(ctx context.Context, date time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM valute_rates WHERE date = $1)`,
		date,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check rates for date: %w", err)
	}
	return exists, nil
}

// DatesMissingRates returns the distinct days on which entries in a foreign
// currency were recorded but no rate for that currency is stored, oldest
// first. The daily fetch job backfills these.
func (r *RateRepository) DatesMissingRates(ctx context.Context) ([]time.Time, error) {
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT e.created_at::date AS day
		 FROM entries e
		 JOIN valutes v ON v.id = e.valute_id
		 WHERE v.code NOT IN ('USD', 'USDT')
		   AND NOT EXISTS (
		       SELECT 1 FROM valute_rates vr
		       WHERE vr.date = e.created_at::date AND vr.valute_to_id = e.valute_id
		   )
		 ORDER BY day`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query dates missing rates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("failed to scan missing rate date: %w", err)
		}
		dates = append(dates, day)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate dates missing rates: %w", err)
	}
	return dates, nil
}

// MonthRates returns all stored daily rates falling inside the given month.
func (r *RateRepository) MonthRates(ctx context.Context, year, month int) ([]models.ValuteRate, error) {
	rows, err := r.db.Query(ctx,
		`SELECT valute_from_id, valute_to_id, rate, date
		 FROM valute_rates
		 WHERE EXTRACT(YEAR FROM date) = $1 AND EXTRACT(MONTH FROM date) = $2
		 ORDER BY date`,
		year, month,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query month rates: %w", err)
	}
	defer rows.Close()

	var rates []models.ValuteRate
	for rows.Next() {
		var rate models.ValuteRate
		if err := rows.Scan(&rate.ValuteFromID, &rate.ValuteToID, &rate.Rate, &rate.Date); err != nil {
			return nil, fmt.Errorf("failed to scan valute rate: %w", err)
		}
		rates = append(rates, rate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate month rates: %w", err)
	}
	return rates, nil
}

// LatestRates returns the most recent stored rate per (from, to) pair.
func (r *RateRepository) LatestRates(ctx context.Context) ([]models.ValuteRate, error) {
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT ON (valute_from_id, valute_to_id)
		        valute_from_id, valute_to_id, rate, date
		 FROM valute_rates
		 ORDER BY valute_from_id, valute_to_id, date DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest rates: %w", err)
	}
	defer rows.Close()

	var rates []models.ValuteRate
	for rows.Next() {
		var rate models.ValuteRate
		if err := rows.Scan(&rate.ValuteFromID, &rate.ValuteToID, &rate.Rate, &rate.Date); err != nil {
			return nil, fmt.Errorf("failed to scan valute rate: %w", err)
		}
		rates = append(rates, rate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate latest rates: %w", err)
	}
	return rates, nil
}

// CreateExchange records one manual exchange event.
func (r *RateRepository) CreateExchange(ctx context.Context, ex *models.ValuteExchange) (*models.ValuteExchange, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO valute_exchanges (chat_id, valute_from_id, valute_to_id, amount_from, amount_to)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		ex.ChatID, ex.ValuteFromID, ex.ValuteToID, ex.AmountFrom, ex.AmountTo,
	).Scan(&ex.ID, &ex.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create valute exchange: %w", err)
	}
	return ex, nil
}

// MonthExchanges returns the chat's exchange events recorded inside the
// given month. Period reports use this so their rates only reflect
// exchanges of the reported period.
func (r *RateRepository) MonthExchanges(ctx context.Context, chatID int64, year, month int) ([]models.ValuteExchange, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, chat_id, valute_from_id, valute_to_id, amount_from, amount_to, created_at
		 FROM valute_exchanges
		 WHERE chat_id = $1
		   AND EXTRACT(YEAR FROM created_at) = $2
		   AND EXTRACT(MONTH FROM created_at) = $3
		 ORDER BY created_at`,
		chatID, year, month,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query month exchanges: %w", err)
	}
	defer rows.Close()

	var exchanges []models.ValuteExchange
	for rows.Next() {
		var ex models.ValuteExchange
		if err := rows.Scan(&ex.ID, &ex.ChatID, &ex.ValuteFromID, &ex.ValuteToID,
			&ex.AmountFrom, &ex.AmountTo, &ex.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan valute exchange: %w", err)
		}
		exchanges = append(exchanges, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate month exchanges: %w", err)
	}
	return exchanges, nil
}

// ChatExchanges returns all exchange events recorded in the chat.
func (r *RateRepository) ChatExchanges(ctx context.Context, chatID int64) ([]models.ValuteExchange, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, chat_id, valute_from_id, valute_to_id, amount_from, amount_to, created_at
		 FROM valute_exchanges
		 WHERE chat_id = $1
		 ORDER BY created_at`,
		chatID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat exchanges: %w", err)
	}
	defer rows.Close()

	var exchanges []models.ValuteExchange
	for rows.Next() {
		var ex models.ValuteExchange
		if err := rows.Scan(&ex.ID, &ex.ChatID, &ex.ValuteFromID, &ex.ValuteToID,
			&ex.AmountFrom, &ex.AmountTo, &ex.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan valute exchange: %w", err)
		}
		exchanges = append(exchanges, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chat exchanges: %w", err)
	}
	return exchanges, nil
}
