package models

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// StateName identifies one step of a multi-step conversation.
type StateName string

// Conversation states. Each wizard flow owns a contiguous group.
const (
	StateDefault StateName = "default"

	StateCategoryAddName StateName = "category_add_name"

	StateBudgetItemAddCategory StateName = "budget_item_add_category"
	StateBudgetItemAddType     StateName = "budget_item_add_type"
	StateBudgetItemAddName     StateName = "budget_item_add_name"

	StateEntryAddCategory   StateName = "entry_add_category"
	StateEntryAddBudgetItem StateName = "entry_add_budget_item"
	StateEntryAddValute     StateName = "entry_add_valute"
	StateEntryAddAmount     StateName = "entry_add_amount"
	StateEntryAddFinish     StateName = "entry_add_finish"

	StateReportSelectYear  StateName = "report_select_year"
	StateReportSelectMonth StateName = "report_select_month"

	StateBalanceCreateName    StateName = "balance_create_name"
	StateBalanceCreateValute  StateName = "balance_create_valute"
	StateBalanceSetChoose     StateName = "balance_set_choose"
	StateBalanceSetAmount     StateName = "balance_set_amount"
	StateBalanceDeleteChoose  StateName = "balance_delete_choose"
	StateBalanceDeleteConfirm StateName = "balance_delete_confirm"

	StateFondCreateName    StateName = "fond_create_name"
	StateFondCreateValute  StateName = "fond_create_valute"
	StateFondSetChoose     StateName = "fond_set_choose"
	StateFondSetAmount     StateName = "fond_set_amount"
	StateFondDeleteChoose  StateName = "fond_delete_choose"
	StateFondDeleteConfirm StateName = "fond_delete_confirm"

	StateDebtCreateName    StateName = "debt_create_name"
	StateDebtCreateValute  StateName = "debt_create_valute"
	StateDebtSetChoose     StateName = "debt_set_choose"
	StateDebtSetAmount     StateName = "debt_set_amount"
	StateDebtDeleteChoose  StateName = "debt_delete_choose"
	StateDebtDeleteConfirm StateName = "debt_delete_confirm"

	StateExchangeFrom   StateName = "exchange_from"
	StateExchangeTo     StateName = "exchange_to"
	StateExchangeAmount StateName = "exchange_amount"
)

// TrackerStates returns the state group for one tracker kind, in the order
// create-name, create-valute, set-choose, set-amount, delete-choose,
// delete-confirm.
func TrackerStates(kind TrackerKind) [6]StateName {
	switch kind {
	case TrackerFond:
		return [6]StateName{StateFondCreateName, StateFondCreateValute, StateFondSetChoose,
			StateFondSetAmount, StateFondDeleteChoose, StateFondDeleteConfirm}
	case TrackerDebt:
		return [6]StateName{StateDebtCreateName, StateDebtCreateValute, StateDebtSetChoose,
			StateDebtSetAmount, StateDebtDeleteChoose, StateDebtDeleteConfirm}
	default:
		return [6]StateName{StateBalanceCreateName, StateBalanceCreateValute, StateBalanceSetChoose,
			StateBalanceSetAmount, StateBalanceDeleteChoose, StateBalanceDeleteConfirm}
	}
}

// StateData is the wizard scratchpad persisted alongside the state name.
// One payload type per flow; which one is stored is determined by the state
// name, see DecodeStateData. The zero EmptyData is used for the default state.
type StateData interface {
	// AnchorMessageID is the id of the bot message the current step is
	// waiting on. Replies and button presses targeting any other message
	// are stale and must be ignored.
	AnchorMessageID() int
}

// Anchor carries the message id every wizard step is pinned to.
// Embedded by all flow payloads.
type Anchor struct {
	MessageID int `json:"message_id,omitempty"`
}

// AnchorMessageID implements StateData.
func (a Anchor) AnchorMessageID() int { return a.MessageID }

// EmptyData is the payload of the default state.
type EmptyData struct {
	Anchor
}

// CategoryAddData is the payload of the category-add flow.
type CategoryAddData struct {
	Anchor
}

// BudgetItemAddData is the payload of the budget-item-add flow.
type BudgetItemAddData struct {
	Anchor
	CategoryID       int64  `json:"category_id,omitempty"`
	ItemType         string `json:"item_type,omitempty"`
	ChatBudgetItemID int64  `json:"chat_budget_item_id,omitempty"`
}

// PendingEntry is one already-written entry accumulated during the
// entry-add batch loop, kept so the confirmation message can be rebuilt.
type PendingEntry struct {
	EntryID int64           `json:"entry_id"`
	Amount  decimal.Decimal `json:"amount"`
	Code    string          `json:"valute_code"`
	Item    string          `json:"item"`
}

// EntryAddData is the payload of the entry-add flow.
type EntryAddData struct {
	Anchor
	CategoryID       int64          `json:"category_id,omitempty"`
	ChatBudgetItemID int64          `json:"chat_budget_item_id,omitempty"`
	ItemLabel        string         `json:"item_label,omitempty"`
	ValuteID         int64          `json:"valute_id,omitempty"`
	Entries          []PendingEntry `json:"entries,omitempty"`
}

// ReportData is the payload of the report period selection flow.
type ReportData struct {
	Anchor
	Year int `json:"year,omitempty"`
}

// TrackerData is the payload of the balance, fond and debt flows.
type TrackerData struct {
	Anchor
	TrackerName string `json:"tracker_name,omitempty"`
	TrackerID   int64  `json:"tracker_id,omitempty"`
}

// ExchangeData is the payload of the exchange recording flow.
type ExchangeData struct {
	Anchor
	ValuteFromID int64 `json:"valute_from_id,omitempty"`
	ValuteToID   int64 `json:"valute_to_id,omitempty"`
}

// UserState is the persisted conversation position of one user.
type UserState struct {
	ID     int64
	UserID int64
	State  StateName
	Data   StateData
}

// EncodeStateData serializes data for the JSONB column.
func EncodeStateData(data StateData) ([]byte, error) {
	if data == nil {
		data = EmptyData{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode state data: %w", err)
	}
	return raw, nil
}

// DecodeStateData deserializes the JSONB column into the payload type the
// state name calls for.
func DecodeStateData(state StateName, raw []byte) (StateData, error) {
	decode := func(into StateData) (StateData, error) {
		if len(raw) == 0 {
			return into, nil
		}
		if err := json.Unmarshal(raw, into); err != nil {
			return nil, fmt.Errorf("failed to decode %q state data: %w", state, err)
		}
		return into, nil
	}

	switch state {
	case StateCategoryAddName:
		return decode(&CategoryAddData{})
	case StateBudgetItemAddCategory, StateBudgetItemAddType, StateBudgetItemAddName:
		return decode(&BudgetItemAddData{})
	case StateEntryAddCategory, StateEntryAddBudgetItem, StateEntryAddValute,
		StateEntryAddAmount, StateEntryAddFinish:
		return decode(&EntryAddData{})
	case StateReportSelectYear, StateReportSelectMonth:
		return decode(&ReportData{})
	case StateBalanceCreateName, StateBalanceCreateValute, StateBalanceSetChoose,
		StateBalanceSetAmount, StateBalanceDeleteChoose, StateBalanceDeleteConfirm,
		StateFondCreateName, StateFondCreateValute, StateFondSetChoose,
		StateFondSetAmount, StateFondDeleteChoose, StateFondDeleteConfirm,
		StateDebtCreateName, StateDebtCreateValute, StateDebtSetChoose,
		StateDebtSetAmount, StateDebtDeleteChoose, StateDebtDeleteConfirm:
		return decode(&TrackerData{})
	case StateExchangeFrom, StateExchangeTo, StateExchangeAmount:
		return decode(&ExchangeData{})
	default:
		return decode(&EmptyData{})
	}
}
