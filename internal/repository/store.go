package repository

import "gitlab.com/avoronov/ledger-bot/internal/database"

// Store bundles all repositories over one database handle.
type Store struct {
	Chats       *ChatRepository
	Users       *UserRepository
	States      *StateRepository
	Categories  *CategoryRepository
	BudgetItems *BudgetItemRepository
	Valutes     *ValuteRepository
	Entries     *EntryRepository
	Trackers    *TrackerRepository
	Rates       *RateRepository
}

// NewStore creates a Store with every repository bound to db.
func NewStore(db database.PGXDB) *Store {
	return &Store{
		Chats:       NewChatRepository(db),
		Users:       NewUserRepository(db),
		States:      NewStateRepository(db),
		Categories:  NewCategoryRepository(db),
		BudgetItems: NewBudgetItemRepository(db),
		Valutes:     NewValuteRepository(db),
		Entries:     NewEntryRepository(db),
		Trackers:    NewTrackerRepository(db),
		Rates:       NewRateRepository(db),
	}
}
