package bot

import (
	"fmt"
	"strconv"
	"strings"

	tgmodels "github.com/go-telegram/bot/models"

	"gitlab.com/avoronov/ledger-bot/internal/models"
)

// Callback data prefixes. Values are appended after an underscore.
const (
	cbCategory    = "cat"
	cbItem        = "item"
	cbValute      = "val"
	cbType        = "type"
	cbYear        = "year"
	cbMonth       = "month"
	cbTracker     = "trk"
	cbEntryMore   = "entry_more"
	cbEntryFinish = "entry_finish"
	cbHide        = "hide"
	cbHideAlso    = "hide_also"
	cbConfirmYes  = "confirm_yes"
	cbConfirmNo   = "confirm_no"
)

func callbackData(prefix string, id int64) string {
	return prefix + "_" + strconv.FormatInt(id, 10)
}

// callbackID extracts the numeric suffix of callback data with the given
// prefix. Returns false when the data does not match.
func callbackID(data, prefix string) (int64, bool) {
	rest, ok := strings.CutPrefix(data, prefix+"_")
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func inlineKeyboard(rows [][]tgmodels.InlineKeyboardButton) tgmodels.InlineKeyboardMarkup {
	return tgmodels.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func button(text, data string) tgmodels.InlineKeyboardButton {
	return tgmodels.InlineKeyboardButton{Text: text, CallbackData: data}
}

// buttonGrid lays out buttons two per row.
func buttonGrid(buttons []tgmodels.InlineKeyboardButton) [][]tgmodels.InlineKeyboardButton {
	var rows [][]tgmodels.InlineKeyboardButton
	for i := 0; i < len(buttons); i += 2 {
		end := i + 2
		if end > len(buttons) {
			end = len(buttons)
		}
		rows = append(rows, buttons[i:end])
	}
	return rows
}

func categoriesKeyboard(categories []models.Category) tgmodels.InlineKeyboardMarkup {
	buttons := make([]tgmodels.InlineKeyboardButton, 0, len(categories))
	for _, cat := range categories {
		buttons = append(buttons, button(cat.Name, callbackData(cbCategory, cat.ID)))
	}
	return inlineKeyboard(buttonGrid(buttons))
}

func budgetItemsKeyboard(items []models.BudgetItem) tgmodels.InlineKeyboardMarkup {
	buttons := make([]tgmodels.InlineKeyboardButton, 0, len(items))
	for _, item := range items {
		label := item.Name
		if item.Type == models.BudgetItemIncome {
			label = "+ " + label
		} else {
			label = "- " + label
		}
		buttons = append(buttons, button(label, callbackData(cbItem, item.ID)))
	}
	return inlineKeyboard(buttonGrid(buttons))
}

func valutesKeyboard(valutes []models.Valute, excludeID int64) tgmodels.InlineKeyboardMarkup {
	buttons := make([]tgmodels.InlineKeyboardButton, 0, len(valutes))
	for _, v := range valutes {
		if v.ID == excludeID {
			continue
		}
		buttons = append(buttons, button(v.Code+" "+v.Symbol, callbackData(cbValute, v.ID)))
	}
	return inlineKeyboard(buttonGrid(buttons))
}

func itemTypeKeyboard() tgmodels.InlineKeyboardMarkup {
	return inlineKeyboard([][]tgmodels.InlineKeyboardButton{{
		button("Income", cbType+"_"+string(models.BudgetItemIncome)),
		button("Expense", cbType+"_"+string(models.BudgetItemExpense)),
	}})
}

func yearsKeyboard(years []int) tgmodels.InlineKeyboardMarkup {
	buttons := make([]tgmodels.InlineKeyboardButton, 0, len(years))
	for _, y := range years {
		buttons = append(buttons, button(strconv.Itoa(y), callbackData(cbYear, int64(y))))
	}
	return inlineKeyboard(buttonGrid(buttons))
}

func monthsKeyboard(months []int) tgmodels.InlineKeyboardMarkup {
	buttons := make([]tgmodels.InlineKeyboardButton, 0, len(months))
	for _, m := range months {
		buttons = append(buttons, button(fmt.Sprintf("%02d", m), callbackData(cbMonth, int64(m))))
	}
	return inlineKeyboard(buttonGrid(buttons))
}

func trackersKeyboard(trackers []models.Tracker) tgmodels.InlineKeyboardMarkup {
	buttons := make([]tgmodels.InlineKeyboardButton, 0, len(trackers))
	for _, t := range trackers {
		buttons = append(buttons, button(t.Name, callbackData(cbTracker, t.ID)))
	}
	return inlineKeyboard(buttonGrid(buttons))
}

func confirmKeyboard() tgmodels.InlineKeyboardMarkup {
	return inlineKeyboard([][]tgmodels.InlineKeyboardButton{{
		button("Yes", cbConfirmYes),
		button("No", cbConfirmNo),
	}})
}

func finishMoreKeyboard() tgmodels.InlineKeyboardMarkup {
	return inlineKeyboard([][]tgmodels.InlineKeyboardButton{{
		button("More", cbEntryMore),
		button("Finish", cbEntryFinish),
	}})
}

// hideKeyboard attaches a button that deletes the bot message. When
// commandMessageID is non-zero the triggering command message is deleted
// too.
func hideKeyboard(commandMessageID int) tgmodels.InlineKeyboardMarkup {
	data := cbHide
	if commandMessageID != 0 {
		data = callbackData(cbHideAlso, int64(commandMessageID))
	}
	return inlineKeyboard([][]tgmodels.InlineKeyboardButton{{
		button("Hide", data),
	}})
}
