// Package repository provides the data access layer.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"gitlab.com/avoronov/ledger-bot/internal/database"
	"gitlab.com/avoronov/ledger-bot/internal/models"
)

// ChatRepository handles chat persistence and aggregate loading.
type ChatRepository struct {
	db database.PGXDB
}

// NewChatRepository creates a new chat repository.
func NewChatRepository(db database.PGXDB) *ChatRepository {
	return &ChatRepository{db: db}
}

// GetOrCreate returns the chat with the given Telegram id, creating it on
// first contact. The returned chat has its aggregates loaded.
func (r *ChatRepository) GetOrCreate(ctx context.Context, tgID int64, title, chatType string) (*models.Chat, error) {
	chat := &models.Chat{}
	err := r.db.QueryRow(ctx,
		`SELECT id, tg_id, COALESCE(title, ''), type, created_at FROM chats WHERE tg_id = $1`,
		tgID,
	).Scan(&chat.ID, &chat.TGID, &chat.Title, &chat.Type, &chat.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		err = r.db.QueryRow(ctx,
			`INSERT INTO chats (tg_id, title, type) VALUES ($1, $2, $3)
			 RETURNING id, tg_id, COALESCE(title, ''), type, created_at`,
			tgID, title, chatType,
		).Scan(&chat.ID, &chat.TGID, &chat.Title, &chat.Type, &chat.CreatedAt)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get or create chat: %w", err)
	}

	if err := r.loadAggregates(ctx, chat); err != nil {
		return nil, err
	}
	return chat, nil
}

func (r *ChatRepository) loadAggregates(ctx context.Context, chat *models.Chat) error {
	if err := r.loadCategories(ctx, chat); err != nil {
		return err
	}
	if err := r.loadValutes(ctx, chat); err != nil {
		return err
	}
	for _, kind := range []models.TrackerKind{models.TrackerBalance, models.TrackerFond, models.TrackerDebt} {
		trackers, err := scanTrackers(ctx, r.db, kind, chat.ID)
		if err != nil {
			return err
		}
		switch kind {
		case models.TrackerBalance:
			chat.Balances = trackers
		case models.TrackerFond:
			chat.Fonds = trackers
		case models.TrackerDebt:
			chat.Debts = trackers
		}
	}
	return nil
}

// loadCategories loads the chat's categories with their assigned budget
// items. A chat_budget_items row with NULL budget_item_id only marks
// category membership.
func (r *ChatRepository) loadCategories(ctx context.Context, chat *models.Chat) error {
	rows, err := r.db.Query(ctx,
		`SELECT c.id, c.name, c.created_at, bi.id, bi.name, bi.type, bi.created_at
		 FROM chat_budget_items cbi
		 JOIN categories c ON c.id = cbi.category_id
		 LEFT JOIN budget_items bi ON bi.id = cbi.budget_item_id
		 WHERE cbi.chat_id = $1
		 ORDER BY c.name, bi.name`,
		chat.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to query chat categories: %w", err)
	}
	defer rows.Close()

	chat.Categories = nil
	index := map[int64]int{}
	for rows.Next() {
		var cat models.Category
		var itemID *int64
		var itemName, itemType *string
		var itemCreatedAt *time.Time
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.CreatedAt,
			&itemID, &itemName, &itemType, &itemCreatedAt); err != nil {
			return fmt.Errorf("failed to scan chat category: %w", err)
		}
		i, ok := index[cat.ID]
		if !ok {
			i = len(chat.Categories)
			index[cat.ID] = i
			chat.Categories = append(chat.Categories, cat)
		}
		if itemID != nil {
			chat.Categories[i].BudgetItems = append(chat.Categories[i].BudgetItems, models.BudgetItem{
				ID:        *itemID,
				Name:      *itemName,
				Type:      models.BudgetItemType(*itemType),
				CreatedAt: *itemCreatedAt,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate chat categories: %w", err)
	}
	return nil
}

func (r *ChatRepository) loadValutes(ctx context.Context, chat *models.Chat) error {
	rows, err := r.db.Query(ctx,
		`SELECT v.id, v.name, v.symbol, v.code, v.created_at
		 FROM chat_valutes cv
		 JOIN valutes v ON v.id = cv.valute_id
		 WHERE cv.chat_id = $1
		 ORDER BY cv.created_at`,
		chat.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to query chat valutes: %w", err)
	}
	defer rows.Close()

	chat.Valutes, err = scanValutes(rows)
	return err
}
