package bot

// User-facing message texts.
const (
	textStart = `Hello! I keep this chat's ledger.

Use /help to see what I can do.`

	textHelp = `Ledger commands:

/category_list - show categories and their budget items
/category_add - add a category
/budget_item_add - add a budget item to a category
/entry_add - record income or expenses
/report - monthly report
/total - reconcile entries against balances
/rate_list - show known conversion rates
/exchange - record a currency exchange

Balances, fonds and debts:
/balance_create /balance_list /balance_set /balance_delete
/fond_create /fond_list /fond_set /fond_delete
/debt_create /debt_list /debt_set /debt_delete`

	textInternalError = "Something went wrong, please try again."
	textStaleButton   = "This menu is out of date."

	textCategoryPrompt    = "Reply to this message with the category name."
	textCategoryExists    = "This category already exists. Reply with a different name."
	textCategoryLimit     = "Category limit reached, this chat already has the maximum number of categories."
	textNoCategories      = "No categories yet. Add one with /category_add first."
	textChooseCategory    = "Choose a category:"
	textChooseItemType    = "Is this item income or expense?"
	textItemNamePrompt    = "Reply to this message with the budget item name."
	textItemExists        = "This category already has an item with that name. Reply with a different name."
	textItemLimit         = "This category already has the maximum number of budget items."
	textNoBudgetItems     = "This category has no budget items yet. Add one with /budget_item_add."
	textChooseBudgetItem  = "Choose a budget item:"
	textChooseValute      = "Choose a currency:"
	textAmountPrompt      = "Reply to this message with the amount. Several amounts can be added together: 100+20.50+3"
	textAmountInvalid     = "Could not read that amount. Reply with a number, or a sum like 100+20.50"
	textNoEntries         = "No entries recorded yet."
	textChooseYear        = "Choose a year:"
	textChooseMonth       = "Choose a month:"
	textTrackerNamePrompt = "Reply to this message with a name."
	textTrackerExists     = "That name is already taken. Reply with a different name."
	textTrackerAmount     = "Reply to this message with the new amount."
	textChooseTracker     = "Choose one:"
	textConfirmDelete     = "Delete %s? This cannot be undone."
	textExchangeFrom      = "Which currency did you give?"
	textExchangeTo        = "Which currency did you receive?"
	textExchangeAmounts   = "Reply with the given and received amounts, for example: 100 91.50"
	textExchangeInvalid   = "Could not read that. Reply with two numbers: given and received, for example: 100 91.50"
	textExchangeSameValute = "Given and received currencies must differ."
)
