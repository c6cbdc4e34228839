package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RunMigrations creates the database schema.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS chats (
			id BIGSERIAL PRIMARY KEY,
			tg_id BIGINT NOT NULL UNIQUE,
			title TEXT,
			type TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			tg_id BIGINT NOT NULL UNIQUE,
			first_name TEXT,
			username TEXT,
			is_bot BOOLEAN NOT NULL DEFAULT FALSE,
			language_code TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS user_states (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
			state TEXT NOT NULL,
			data JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS categories (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS budget_items (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT uq_budget_item UNIQUE (name, type)
		)`,

		`CREATE TABLE IF NOT EXISTS chat_budget_items (
			id BIGSERIAL PRIMARY KEY,
			chat_id BIGINT NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
			category_id BIGINT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
			budget_item_id BIGINT REFERENCES budget_items(id) ON DELETE SET NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT uq_chat_budget_category UNIQUE (chat_id, category_id, budget_item_id)
		)`,

		// NULL budget_item_id rows mark bare category membership; the
		// UNIQUE constraint above does not dedupe NULLs.
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_chat_category_membership
			ON chat_budget_items(chat_id, category_id)
			WHERE budget_item_id IS NULL`,

		`CREATE TABLE IF NOT EXISTS valutes (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			symbol TEXT NOT NULL,
			code TEXT NOT NULL UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS chat_valutes (
			id BIGSERIAL PRIMARY KEY,
			chat_id BIGINT NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
			valute_id BIGINT NOT NULL REFERENCES valutes(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT uq_chat_valute UNIQUE (chat_id, valute_id)
		)`,

		`CREATE TABLE IF NOT EXISTS entries (
			id BIGSERIAL PRIMARY KEY,
			chat_budget_item_id BIGINT NOT NULL REFERENCES chat_budget_items(id) ON DELETE CASCADE,
			valute_id BIGINT NOT NULL REFERENCES valutes(id) ON DELETE CASCADE,
			amount DECIMAL(16, 2) NOT NULL,
			data JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_entries_created_at ON entries(created_at)`,

		`CREATE TABLE IF NOT EXISTS chat_balances (
			id BIGSERIAL PRIMARY KEY,
			chat_id BIGINT NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
			valute_id BIGINT NOT NULL REFERENCES valutes(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			amount DECIMAL(16, 2) NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS chat_fonds (
			id BIGSERIAL PRIMARY KEY,
			chat_id BIGINT NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
			valute_id BIGINT NOT NULL REFERENCES valutes(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			amount DECIMAL(16, 2) NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS chat_debts (
			id BIGSERIAL PRIMARY KEY,
			chat_id BIGINT NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
			valute_id BIGINT NOT NULL REFERENCES valutes(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			amount DECIMAL(16, 2) NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS valute_rates (
			valute_from_id BIGINT NOT NULL REFERENCES valutes(id) ON DELETE CASCADE,
			valute_to_id BIGINT NOT NULL REFERENCES valutes(id) ON DELETE CASCADE,
			rate DECIMAL(20, 6) NOT NULL,
			date DATE NOT NULL DEFAULT CURRENT_DATE,
			PRIMARY KEY (valute_from_id, valute_to_id, date)
		)`,

		`CREATE TABLE IF NOT EXISTS valute_exchanges (
			id BIGSERIAL PRIMARY KEY,
			chat_id BIGINT NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
			valute_from_id BIGINT NOT NULL REFERENCES valutes(id) ON DELETE CASCADE,
			valute_to_id BIGINT NOT NULL REFERENCES valutes(id) ON DELETE CASCADE,
			amount_from DECIMAL(16, 2) NOT NULL,
			amount_to DECIMAL(16, 2) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}

	for i, migration := range migrations {
		if _, err := pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}
