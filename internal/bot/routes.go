package bot

import (
	"context"

	"gitlab.com/avoronov/ledger-bot/internal/models"
)

// routes are the static dispatch tables, built once at startup. Commands are
// routed by name; non-command messages and button presses are routed by the
// user's current wizard state.
type routes struct {
	commands  map[string]HandlerFunc
	messages  map[models.StateName]HandlerFunc
	callbacks map[models.StateName]HandlerFunc
}

func buildRoutes(b *Bot) *routes {
	r := &routes{
		commands:  map[string]HandlerFunc{},
		messages:  map[models.StateName]HandlerFunc{},
		callbacks: map[models.StateName]HandlerFunc{},
	}

	r.commands["/start"] = b.handleStart
	r.commands["/help"] = b.handleHelp
	r.commands["/category_list"] = b.handleCategoryList
	r.commands["/category_add"] = b.handleCategoryAdd
	r.commands["/budget_item_add"] = b.handleBudgetItemAdd
	r.commands["/entry_add"] = b.handleEntryAdd
	r.commands["/report"] = b.handleReport
	r.commands["/total"] = b.handleTotal
	r.commands["/rate_list"] = b.handleRateList
	r.commands["/exchange"] = b.handleExchange

	for _, kind := range []models.TrackerKind{models.TrackerBalance, models.TrackerFond, models.TrackerDebt} {
		kind := kind
		prefix := "/" + string(kind)
		r.commands[prefix+"_create"] = func(ctx context.Context, tg TelegramAPI, req *Request) error {
			return b.handleTrackerCreate(ctx, tg, req, kind)
		}
		r.commands[prefix+"_list"] = func(ctx context.Context, tg TelegramAPI, req *Request) error {
			return b.handleTrackerList(ctx, tg, req, kind)
		}
		r.commands[prefix+"_set"] = func(ctx context.Context, tg TelegramAPI, req *Request) error {
			return b.handleTrackerSet(ctx, tg, req, kind)
		}
		r.commands[prefix+"_delete"] = func(ctx context.Context, tg TelegramAPI, req *Request) error {
			return b.handleTrackerDelete(ctx, tg, req, kind)
		}

		states := models.TrackerStates(kind)
		r.messages[states[0]] = func(ctx context.Context, tg TelegramAPI, req *Request) error {
			return b.handleTrackerCreateName(ctx, tg, req, kind)
		}
		r.callbacks[states[1]] = func(ctx context.Context, tg TelegramAPI, req *Request) error {
			return b.handleTrackerCreateValute(ctx, tg, req, kind)
		}
		r.callbacks[states[2]] = func(ctx context.Context, tg TelegramAPI, req *Request) error {
			return b.handleTrackerSetChoose(ctx, tg, req, kind)
		}
		r.messages[states[3]] = func(ctx context.Context, tg TelegramAPI, req *Request) error {
			return b.handleTrackerSetAmount(ctx, tg, req, kind)
		}
		r.callbacks[states[4]] = func(ctx context.Context, tg TelegramAPI, req *Request) error {
			return b.handleTrackerDeleteChoose(ctx, tg, req, kind)
		}
		r.callbacks[states[5]] = func(ctx context.Context, tg TelegramAPI, req *Request) error {
			return b.handleTrackerDeleteConfirm(ctx, tg, req, kind)
		}
	}

	r.messages[models.StateCategoryAddName] = b.handleCategoryAddName

	r.callbacks[models.StateBudgetItemAddCategory] = b.handleBudgetItemAddCategory
	r.callbacks[models.StateBudgetItemAddType] = b.handleBudgetItemAddType
	r.messages[models.StateBudgetItemAddName] = b.handleBudgetItemAddName

	r.callbacks[models.StateEntryAddCategory] = b.handleEntryAddCategory
	r.callbacks[models.StateEntryAddBudgetItem] = b.handleEntryAddBudgetItem
	r.callbacks[models.StateEntryAddValute] = b.handleEntryAddValute
	r.messages[models.StateEntryAddAmount] = b.handleEntryAddAmount
	r.callbacks[models.StateEntryAddFinish] = b.handleEntryAddFinish

	r.callbacks[models.StateReportSelectYear] = b.handleReportSelectYear
	r.callbacks[models.StateReportSelectMonth] = b.handleReportSelectMonth

	r.callbacks[models.StateExchangeFrom] = b.handleExchangeFrom
	r.callbacks[models.StateExchangeTo] = b.handleExchangeTo
	r.messages[models.StateExchangeAmount] = b.handleExchangeAmount

	return r
}
