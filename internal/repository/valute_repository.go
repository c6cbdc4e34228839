package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"gitlab.com/avoronov/ledger-bot/internal/database"
	"gitlab.com/avoronov/ledger-bot/internal/models"
)

// ValuteRepository handles currencies and their chat attachments.
type ValuteRepository struct {
	db database.PGXDB
}

// NewValuteRepository creates a new valute repository.
func NewValuteRepository(db database.PGXDB) *ValuteRepository {
	return &ValuteRepository{db: db}
}

// GetOrCreate finds a valute by code or creates it. Codes are stored upper
// case.
func (r *ValuteRepository) GetOrCreate(ctx context.Context, code, name, symbol string) (*models.Valute, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	valute, err := r.GetByCode(ctx, code)
	if err != nil || valute != nil {
		return valute, err
	}

	valute = &models.Valute{}
	err = r.db.QueryRow(ctx,
		`INSERT INTO valutes (code, name, symbol) VALUES ($1, $2, $3)
		 RETURNING id, name, symbol, code, created_at`,
		code, name, symbol,
	).Scan(&valute.ID, &valute.Name, &valute.Symbol, &valute.Code, &valute.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create valute: %w", err)
	}
	return valute, nil
}

// GetByCode finds a valute by code, or returns nil.
func (r *ValuteRepository) GetByCode(ctx context.Context, code string) (*models.Valute, error) {
	valute := &models.Valute{}
	err := r.db.QueryRow(ctx,
		`SELECT id, name, symbol, code, created_at FROM valutes WHERE code = $1`,
		strings.ToUpper(strings.TrimSpace(code)),
	).Scan(&valute.ID, &valute.Name, &valute.Symbol, &valute.Code, &valute.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get valute by code: %w", err)
	}
	return valute, nil
}

// GetByID finds a valute by id.
func (r *ValuteRepository) GetByID(ctx context.Context, id int64) (*models.Valute, error) {
	valute := &models.Valute{}
	err := r.db.QueryRow(ctx,
		`SELECT id, name, symbol, code, created_at FROM valutes WHERE id = $1`,
		id,
	).Scan(&valute.ID, &valute.Name, &valute.Symbol, &valute.Code, &valute.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get valute by id: %w", err)
	}
	return valute, nil
}

// List returns all known valutes.
func (r *ValuteRepository) List(ctx context.Context) ([]models.Valute, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, symbol, code, created_at FROM valutes ORDER BY code`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query valutes: %w", err)
	}
	defer rows.Close()
	return scanValutes(rows)
}

// AttachToChat makes the valute selectable in the chat.
func (r *ValuteRepository) AttachToChat(ctx context.Context, chatID, valuteID int64) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO chat_valutes (chat_id, valute_id) VALUES ($1, $2)
		 ON CONFLICT (chat_id, valute_id) DO NOTHING`,
		chatID, valuteID,
	)
	if err != nil {
		return fmt.Errorf("failed to attach valute to chat: %w", err)
	}
	return nil
}
