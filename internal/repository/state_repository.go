package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"gitlab.com/avoronov/ledger-bot/internal/database"
	"gitlab.com/avoronov/ledger-bot/internal/models"
)

// StateRepository persists per-user conversation state. Every user has at
// most one row; a missing row is the default state.
type StateRepository struct {
	db database.PGXDB
}

// NewStateRepository creates a new state repository.
func NewStateRepository(db database.PGXDB) *StateRepository {
	return &StateRepository{db: db}
}

// Get returns the user's current state. Users without a stored row are in
// the default state with an empty payload.
func (r *StateRepository) Get(ctx context.Context, userID int64) (*models.UserState, error) {
	var (
		state models.UserState
		raw   []byte
	)
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, state, data FROM user_states WHERE user_id = $1`,
		userID,
	).Scan(&state.ID, &state.UserID, &state.State, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		// No row means the user has never entered a wizard.
		return &models.UserState{UserID: userID, State: models.StateDefault, Data: models.EmptyData{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user state: %w", err)
	}

	state.Data, err = models.DecodeStateData(state.State, raw)
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// Set transitions the user to the given state, replacing the payload.
func (r *StateRepository) Set(ctx context.Context, userID int64, state models.StateName, data models.StateData) error {
	raw, err := models.EncodeStateData(data)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO user_states (user_id, state, data) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE SET state = EXCLUDED.state, data = EXCLUDED.data`,
		userID, state, raw,
	)
	if err != nil {
		return fmt.Errorf("failed to set user state: %w", err)
	}
	return nil
}

// Reset returns the user to the default state with an empty payload.
func (r *StateRepository) Reset(ctx context.Context, userID int64) error {
	return r.Set(ctx, userID, models.StateDefault, models.EmptyData{})
}
