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

// CategoryRepository handles categories. Categories are shared across chats
// by name; membership is recorded through chat_budget_items rows.
type CategoryRepository struct {
	db database.PGXDB
}

// NewCategoryRepository creates a new category repository.
func NewCategoryRepository(db database.PGXDB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// GetByName finds a category by name, case-insensitively.
func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	cat := &models.Category{}
	err := r.db.QueryRow(ctx,
		`SELECT id, name, created_at FROM categories WHERE LOWER(name) = LOWER($1)`,
		strings.TrimSpace(name),
	).Scan(&cat.ID, &cat.Name, &cat.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category by name: %w", err)
	}
	return cat, nil
}

// GetOrCreate finds a category by name or creates it. Names are folded to
// lower case before storage.
func (r *CategoryRepository) GetOrCreate(ctx context.Context, name string) (*models.Category, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	cat, err := r.GetByName(ctx, name)
	if err != nil || cat != nil {
		return cat, err
	}

	cat = &models.Category{}
	err = r.db.QueryRow(ctx,
		`INSERT INTO categories (name) VALUES ($1) RETURNING id, name, created_at`,
		name,
	).Scan(&cat.ID, &cat.Name, &cat.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return cat, nil
}

// AttachToChat records that the chat uses this category. The row carries a
// NULL budget_item_id so an empty category still shows up in listings.
func (r *CategoryRepository) AttachToChat(ctx context.Context, chatID, categoryID int64) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO chat_budget_items (chat_id, category_id, budget_item_id)
		 VALUES ($1, $2, NULL)
		 ON CONFLICT DO NOTHING`,
		chatID, categoryID,
	)
	if err != nil {
		return fmt.Errorf("failed to attach category to chat: %w", err)
	}
	return nil
}
