package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"gitlab.com/avoronov/ledger-bot/internal/database"
	"gitlab.com/avoronov/ledger-bot/internal/models"
)

// EntryRepository handles ledger entries and their report aggregation.
type EntryRepository struct {
	db database.PGXDB
}

// NewEntryRepository creates a new entry repository.
func NewEntryRepository(db database.PGXDB) *EntryRepository {
	return &EntryRepository{db: db}
}

// Create inserts an entry and returns it with id and timestamp filled in.
func (r *EntryRepository) Create(ctx context.Context, entry *models.Entry) (*models.Entry, error) {
	meta, err := json.Marshal(entry.Meta)
	if err != nil {
		return nil, fmt.Errorf("failed to encode entry meta: %w", err)
	}
	err = r.db.QueryRow(ctx,
		`INSERT INTO entries (chat_budget_item_id, valute_id, amount, data)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		entry.ChatBudgetItemID, entry.ValuteID, entry.Amount, meta,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}
	return entry, nil
}

// Years returns the distinct years the chat has entries in, newest first.
func (r *EntryRepository) Years(ctx context.Context, chatID int64) ([]int, error) {
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT EXTRACT(YEAR FROM e.created_at)::int AS year
		 FROM entries e
		 JOIN chat_budget_items cbi ON cbi.id = e.chat_budget_item_id
		 WHERE cbi.chat_id = $1
		 ORDER BY year DESC`,
		chatID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query entry years: %w", err)
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, fmt.Errorf("failed to scan entry year: %w", err)
		}
		years = append(years, y)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entry years: %w", err)
	}
	return years, nil
}

// Months returns the distinct months of the given year the chat has entries
// in, ascending.
func (r *EntryRepository) Months(ctx context.Context, chatID int64, year int) ([]int, error) {
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT EXTRACT(MONTH FROM e.created_at)::int AS month
		 FROM entries e
		 JOIN chat_budget_items cbi ON cbi.id = e.chat_budget_item_id
		 WHERE cbi.chat_id = $1 AND EXTRACT(YEAR FROM e.created_at) = $2
		 ORDER BY month`,
		chatID, year,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query entry months: %w", err)
	}
	defer rows.Close()

	var months []int
	for rows.Next() {
		var m int
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("failed to scan entry month: %w", err)
		}
		months = append(months, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entry months: %w", err)
	}
	return months, nil
}

// ReportRow is one aggregated (category, item, valute) line of a period.
type ReportRow struct {
	CategoryName string
	ItemName     string
	ItemType     models.BudgetItemType
	ValuteID     int64
	ValuteCode   string
	Total        decimal.Decimal
}

// Report aggregates the chat's entries for one month, grouped by category,
// budget item and valute. Entries on placeholder rows are excluded.
func (r *EntryRepository) Report(ctx context.Context, chatID int64, year, month int) ([]ReportRow, error) {
	rows, err := r.db.Query(ctx,
		`SELECT c.name, bi.name, bi.type, v.id, v.code, SUM(e.amount)
		 FROM entries e
		 JOIN chat_budget_items cbi ON cbi.id = e.chat_budget_item_id
		 JOIN categories c ON c.id = cbi.category_id
		 JOIN budget_items bi ON bi.id = cbi.budget_item_id
		 JOIN valutes v ON v.id = e.valute_id
		 WHERE cbi.chat_id = $1
		   AND EXTRACT(YEAR FROM e.created_at) = $2
		   AND EXTRACT(MONTH FROM e.created_at) = $3
		 GROUP BY c.name, bi.name, bi.type, v.id, v.code
		 ORDER BY c.name, bi.type, bi.name, v.code`,
		chatID, year, month,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query report rows: %w", err)
	}
	defer rows.Close()

	var report []ReportRow
	for rows.Next() {
		var row ReportRow
		if err := rows.Scan(&row.CategoryName, &row.ItemName, &row.ItemType,
			&row.ValuteID, &row.ValuteCode, &row.Total); err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		report = append(report, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate report rows: %w", err)
	}
	return report, nil
}

// TotalsByValute sums every recorded entry of the chat per valute, signed so
// incomes add and expenses subtract. This is the "registered result" side of
// the reconciliation report.
func (r *EntryRepository) TotalsByValute(ctx context.Context, chatID int64) (map[int64]decimal.Decimal, error) {
	rows, err := r.db.Query(ctx,
		`SELECT e.valute_id,
		        SUM(CASE WHEN bi.type = 'income' THEN e.amount ELSE -e.amount END)
		 FROM entries e
		 JOIN chat_budget_items cbi ON cbi.id = e.chat_budget_item_id
		 JOIN budget_items bi ON bi.id = cbi.budget_item_id
		 WHERE cbi.chat_id = $1
		 GROUP BY e.valute_id`,
		chatID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query entry totals: %w", err)
	}
	defer rows.Close()

	totals := map[int64]decimal.Decimal{}
	for rows.Next() {
		var valuteID int64
		var total decimal.Decimal
		if err := rows.Scan(&valuteID, &total); err != nil {
			return nil, fmt.Errorf("failed to scan entry total: %w", err)
		}
		totals[valuteID] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entry totals: %w", err)
	}
	return totals, nil
}
