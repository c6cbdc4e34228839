package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"gitlab.com/avoronov/ledger-bot/internal/database"
	"gitlab.com/avoronov/ledger-bot/internal/models"
)

// UserRepository handles user persistence.
type UserRepository struct {
	db database.PGXDB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db database.PGXDB) *UserRepository {
	return &UserRepository{db: db}
}

// GetOrCreate returns the user with the given Telegram id, creating them on
// first contact.
func (r *UserRepository) GetOrCreate(ctx context.Context, tgID int64, firstName, username string, isBot bool, languageCode string) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRow(ctx,
		`SELECT id, tg_id, COALESCE(first_name, ''), COALESCE(username, ''), is_bot, COALESCE(language_code, ''), created_at
		 FROM users WHERE tg_id = $1`,
		tgID,
	).Scan(&user.ID, &user.TGID, &user.FirstName, &user.Username, &user.IsBot, &user.LanguageCode, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		err = r.db.QueryRow(ctx,
			`INSERT INTO users (tg_id, first_name, username, is_bot, language_code)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id, tg_id, COALESCE(first_name, ''), COALESCE(username, ''), is_bot, COALESCE(language_code, ''), created_at`,
			tgID, firstName, username, isBot, languageCode,
		).Scan(&user.ID, &user.TGID, &user.FirstName, &user.Username, &user.IsBot, &user.LanguageCode, &user.CreatedAt)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get or create user: %w", err)
	}
	return user, nil
}
