package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"gitlab.com/avoronov/ledger-bot/internal/database"
	"gitlab.com/avoronov/ledger-bot/internal/models"
)

// TrackerRepository handles the three per-chat tracker tables. The kind
// selects the table; the row shapes are identical.
type TrackerRepository struct {
	db database.PGXDB
}

// NewTrackerRepository creates a new tracker repository.
func NewTrackerRepository(db database.PGXDB) *TrackerRepository {
	return &TrackerRepository{db: db}
}

// Create inserts a tracker with a zero amount.
func (r *TrackerRepository) Create(ctx context.Context, kind models.TrackerKind, chatID, valuteID int64, name string) (*models.Tracker, error) {
	t := &models.Tracker{}
	err := r.db.QueryRow(ctx,
		`INSERT INTO `+trackerTable(kind)+` (chat_id, valute_id, name, amount)
		 VALUES ($1, $2, $3, 0)
		 RETURNING id, chat_id, valute_id, name, amount, updated_at, created_at`,
		chatID, valuteID, strings.TrimSpace(name),
	).Scan(&t.ID, &t.ChatID, &t.ValuteID, &t.Name, &t.Amount, &t.UpdatedAt, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", kind, err)
	}
	return t, nil
}

// List returns the chat's trackers of one kind with their valutes loaded.
func (r *TrackerRepository) List(ctx context.Context, kind models.TrackerKind, chatID int64) ([]models.Tracker, error) {
	return scanTrackers(ctx, r.db, kind, chatID)
}

// GetByName finds a tracker by name, case-insensitively, or returns nil.
func (r *TrackerRepository) GetByName(ctx context.Context, kind models.TrackerKind, chatID int64, name string) (*models.Tracker, error) {
	trackers, err := r.List(ctx, kind, chatID)
	if err != nil {
		return nil, err
	}
	for i := range trackers {
		if strings.EqualFold(trackers[i].Name, strings.TrimSpace(name)) {
			return &trackers[i], nil
		}
	}
	return nil, nil
}

// SetAmount replaces the tracker's amount.
func (r *TrackerRepository) SetAmount(ctx context.Context, kind models.TrackerKind, id int64, amount decimal.Decimal) error {
	_, err := r.db.Exec(ctx,
		`UPDATE `+trackerTable(kind)+` SET amount = $2, updated_at = NOW() WHERE id = $1`,
		id, amount,
	)
	if err != nil {
		return fmt.Errorf("failed to set %s amount: %w", kind, err)
	}
	return nil
}

// Delete removes a tracker by id.
func (r *TrackerRepository) Delete(ctx context.Context, kind models.TrackerKind, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM `+trackerTable(kind)+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", kind, err)
	}
	return nil
}
