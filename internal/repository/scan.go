package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"gitlab.com/avoronov/ledger-bot/internal/database"
	"gitlab.com/avoronov/ledger-bot/internal/models"
)

func scanValutes(rows pgx.Rows) ([]models.Valute, error) {
	var valutes []models.Valute
	for rows.Next() {
		var v models.Valute
		if err := rows.Scan(&v.ID, &v.Name, &v.Symbol, &v.Code, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan valute: %w", err)
		}
		valutes = append(valutes, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate valutes: %w", err)
	}
	return valutes, nil
}

func trackerTable(kind models.TrackerKind) string {
	switch kind {
	case models.TrackerFond:
		return "chat_fonds"
	case models.TrackerDebt:
		return "chat_debts"
	default:
		return "chat_balances"
	}
}

func scanTrackers(ctx context.Context, db database.PGXDB, kind models.TrackerKind, chatID int64) ([]models.Tracker, error) {
	rows, err := db.Query(ctx,
		`SELECT t.id, t.chat_id, t.valute_id, t.name, t.amount, t.updated_at, t.created_at,
		        v.id, v.name, v.symbol, v.code, v.created_at
		 FROM `+trackerTable(kind)+` t
		 JOIN valutes v ON v.id = t.valute_id
		 WHERE t.chat_id = $1
		 ORDER BY t.created_at`,
		chatID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", trackerTable(kind), err)
	}
	defer rows.Close()

	var trackers []models.Tracker
	for rows.Next() {
		var t models.Tracker
		var v models.Valute
		if err := rows.Scan(&t.ID, &t.ChatID, &t.ValuteID, &t.Name, &t.Amount, &t.UpdatedAt, &t.CreatedAt,
			&v.ID, &v.Name, &v.Symbol, &v.Code, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tracker: %w", err)
		}
		t.Valute = &v
		trackers = append(trackers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trackers: %w", err)
	}
	return trackers, nil
}
