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

// BudgetItemRepository handles budget items and their chat assignments.
type BudgetItemRepository struct {
	db database.PGXDB
}

// NewBudgetItemRepository creates a new budget item repository.
func NewBudgetItemRepository(db database.PGXDB) *BudgetItemRepository {
	return &BudgetItemRepository{db: db}
}

// GetOrCreate finds a budget item by (name, type), case-insensitively on the
// name, or creates it.
func (r *BudgetItemRepository) GetOrCreate(ctx context.Context, name string, itemType models.BudgetItemType) (*models.BudgetItem, error) {
	name = strings.TrimSpace(name)
	item := &models.BudgetItem{}
	err := r.db.QueryRow(ctx,
		`SELECT id, name, type, created_at FROM budget_items
		 WHERE LOWER(name) = LOWER($1) AND type = $2`,
		name, itemType,
	).Scan(&item.ID, &item.Name, &item.Type, &item.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		err = r.db.QueryRow(ctx,
			`INSERT INTO budget_items (name, type) VALUES ($1, $2)
			 RETURNING id, name, type, created_at`,
			name, itemType,
		).Scan(&item.ID, &item.Name, &item.Type, &item.CreatedAt)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get or create budget item: %w", err)
	}
	return item, nil
}

// CreatePlaceholder inserts a chat_budget_items row with no budget item yet.
// The multi-step add flow fills it in at the final step.
func (r *BudgetItemRepository) CreatePlaceholder(ctx context.Context, chatID, categoryID int64) (*models.ChatBudgetItem, error) {
	cbi := &models.ChatBudgetItem{}
	err := r.db.QueryRow(ctx,
		`INSERT INTO chat_budget_items (chat_id, category_id, budget_item_id)
		 VALUES ($1, $2, NULL)
		 ON CONFLICT (chat_id, category_id) WHERE budget_item_id IS NULL
		 DO UPDATE SET chat_id = EXCLUDED.chat_id
		 RETURNING id, chat_id, category_id, budget_item_id, created_at`,
		chatID, categoryID,
	).Scan(&cbi.ID, &cbi.ChatID, &cbi.CategoryID, &cbi.BudgetItemID, &cbi.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create placeholder chat budget item: %w", err)
	}
	return cbi, nil
}

// FillPlaceholder assigns a budget item to a placeholder row. If the chat
// already has this (category, item) pair, the placeholder stays empty and
// the existing assignment is returned.
func (r *BudgetItemRepository) FillPlaceholder(ctx context.Context, chatBudgetItemID, budgetItemID int64) (*models.ChatBudgetItem, error) {
	var placeholder models.ChatBudgetItem
	err := r.db.QueryRow(ctx,
		`SELECT id, chat_id, category_id, budget_item_id, created_at
		 FROM chat_budget_items WHERE id = $1`,
		chatBudgetItemID,
	).Scan(&placeholder.ID, &placeholder.ChatID, &placeholder.CategoryID, &placeholder.BudgetItemID, &placeholder.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to load placeholder chat budget item: %w", err)
	}

	existing, err := r.GetAssignment(ctx, placeholder.ChatID, placeholder.CategoryID, budgetItemID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	cbi := &models.ChatBudgetItem{}
	err = r.db.QueryRow(ctx,
		`UPDATE chat_budget_items SET budget_item_id = $2 WHERE id = $1
		 RETURNING id, chat_id, category_id, budget_item_id, created_at`,
		chatBudgetItemID, budgetItemID,
	).Scan(&cbi.ID, &cbi.ChatID, &cbi.CategoryID, &cbi.BudgetItemID, &cbi.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to fill placeholder chat budget item: %w", err)
	}
	return cbi, nil
}

// GetAssignment returns the chat's (category, budget item) binding, or nil.
func (r *BudgetItemRepository) GetAssignment(ctx context.Context, chatID, categoryID, budgetItemID int64) (*models.ChatBudgetItem, error) {
	cbi := &models.ChatBudgetItem{}
	err := r.db.QueryRow(ctx,
		`SELECT id, chat_id, category_id, budget_item_id, created_at
		 FROM chat_budget_items
		 WHERE chat_id = $1 AND category_id = $2 AND budget_item_id = $3`,
		chatID, categoryID, budgetItemID,
	).Scan(&cbi.ID, &cbi.ChatID, &cbi.CategoryID, &cbi.BudgetItemID, &cbi.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat budget item: %w", err)
	}
	return cbi, nil
}

// DeletePlaceholder removes an unfilled placeholder row, used when an add
// flow is abandoned.
func (r *BudgetItemRepository) DeletePlaceholder(ctx context.Context, chatBudgetItemID int64) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM chat_budget_items WHERE id = $1 AND budget_item_id IS NULL`,
		chatBudgetItemID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete placeholder chat budget item: %w", err)
	}
	return nil
}
