// Package models defines the domain entities for the ledger bot.
package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// USDCode is the bridge currency used by rate resolution.
const USDCode = "USD"

// USDTCode is treated as numerically equivalent to USD.
const USDTCode = "USDT"

// CategoryLimit is the maximum number of categories per chat.
const CategoryLimit = 12

// BudgetItemLimit is the maximum number of budget items per category.
const BudgetItemLimit = 12

// BudgetItemType classifies a budget item as income or expense.
type BudgetItemType string

// Budget item types.
const (
	BudgetItemIncome  BudgetItemType = "income"
	BudgetItemExpense BudgetItemType = "expense"
)

// Valid reports whether t is a known budget item type.
func (t BudgetItemType) Valid() bool {
	return t == BudgetItemIncome || t == BudgetItemExpense
}

// Chat represents a Telegram chat with its eagerly loaded aggregates.
type Chat struct {
	ID        int64
	TGID      int64
	Title     string
	Type      string
	CreatedAt time.Time

	Categories []Category
	Valutes    []Valute
	Balances   []Tracker
	Fonds      []Tracker
	Debts      []Tracker
}

// CategoryByName returns the chat category with the given name, or nil.
// Stored names are lower case; the match ignores case.
func (c *Chat) CategoryByName(name string) *Category {
	for i := range c.Categories {
		if strings.EqualFold(c.Categories[i].Name, name) {
			return &c.Categories[i]
		}
	}
	return nil
}

// CategoryByID returns the chat category with the given id, or nil.
func (c *Chat) CategoryByID(id int64) *Category {
	for i := range c.Categories {
		if c.Categories[i].ID == id {
			return &c.Categories[i]
		}
	}
	return nil
}

// ValuteByCode returns the chat valute with the given code, or nil.
func (c *Chat) ValuteByCode(code string) *Valute {
	for i := range c.Valutes {
		if c.Valutes[i].Code == code {
			return &c.Valutes[i]
		}
	}
	return nil
}

// ValuteByID returns the chat valute with the given id, or nil.
func (c *Chat) ValuteByID(id int64) *Valute {
	for i := range c.Valutes {
		if c.Valutes[i].ID == id {
			return &c.Valutes[i]
		}
	}
	return nil
}

// User represents a Telegram user.
type User struct {
	ID           int64
	TGID         int64
	FirstName    string
	Username     string
	IsBot        bool
	LanguageCode string
	CreatedAt    time.Time
}

// Category is a named grouping of budget items, shared across chats by name.
type Category struct {
	ID        int64
	Name      string
	CreatedAt time.Time

	BudgetItems []BudgetItem
}

// BudgetItemByID returns the category budget item with the given id, or nil.
func (c *Category) BudgetItemByID(id int64) *BudgetItem {
	for i := range c.BudgetItems {
		if c.BudgetItems[i].ID == id {
			return &c.BudgetItems[i]
		}
	}
	return nil
}

// BudgetItem is an income/expense line template, globally unique by (name, type).
type BudgetItem struct {
	ID        int64
	Name      string
	Type      BudgetItemType
	CreatedAt time.Time
}

// ChatBudgetItem binds a chat-specific category to a shared budget item.
// BudgetItemID is nil while a multi-step "add" flow is still in progress.
type ChatBudgetItem struct {
	ID           int64
	ChatID       int64
	CategoryID   int64
	BudgetItemID *int64
	CreatedAt    time.Time
}

// Valute is a currency with an ISO-like code.
type Valute struct {
	ID        int64
	Name      string
	Symbol    string
	Code      string
	CreatedAt time.Time
}

// EntryMeta is the free-form metadata stored with an entry.
type EntryMeta struct {
	// MessageID is the chat message the entry was recorded under, used to
	// reconstruct "what was entered in this message" for edit-in-place UX.
	MessageID int `json:"message_id,omitempty"`
}

// Entry is one ledger transaction.
type Entry struct {
	ID               int64
	ChatBudgetItemID int64
	ValuteID         int64
	Amount           decimal.Decimal
	Meta             EntryMeta
	CreatedAt        time.Time
}

// TrackerKind distinguishes the three named per-chat monetary trackers.
type TrackerKind string

// Tracker kinds.
const (
	TrackerBalance TrackerKind = "balance"
	TrackerFond    TrackerKind = "fond"
	TrackerDebt    TrackerKind = "debt"
)

// Tracker is a named per-chat monetary tracker (balance, fond or debt)
// pinned to one currency.
type Tracker struct {
	ID        int64
	ChatID    int64
	ValuteID  int64
	Name      string
	Amount    decimal.Decimal
	UpdatedAt time.Time
	CreatedAt time.Time

	Valute *Valute
}

// Info renders "name | amount CODE" for user-facing tracker summaries.
func (t *Tracker) Info() string {
	code := ""
	if t.Valute != nil {
		code = " " + t.Valute.Code
	}
	return t.Name + " | " + t.Amount.StringFixed(2) + code
}

// ValuteRate is one externally observed daily rate between two currencies.
type ValuteRate struct {
	ValuteFromID int64
	ValuteToID   int64
	Rate         decimal.Decimal
	Date         time.Time
}

// ValuteExchange is one manually recorded exchange event, scoped to a chat.
type ValuteExchange struct {
	ID           int64
	ChatID       int64
	ValuteFromID int64
	ValuteToID   int64
	AmountFrom   decimal.Decimal
	AmountTo     decimal.Decimal
	CreatedAt    time.Time
}
