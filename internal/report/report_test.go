package report

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"gitlab.com/avoronov/ledger-bot/internal/models"
	"gitlab.com/avoronov/ledger-bot/internal/rates"
	"gitlab.com/avoronov/ledger-bot/internal/repository"
)

var (
	rub = models.Valute{ID: 1, Code: "RUB", Symbol: "₽"}
	usd = models.Valute{ID: 2, Code: "USD", Symbol: "$"}
	amd = models.Valute{ID: 3, Code: "AMD", Symbol: "֏"}
)

func testResolver() *rates.Resolver {
	// One manual exchange: 1 USD = 90 RUB.
	return rates.NewResolver(
		[]models.Valute{rub, usd, amd},
		[]models.ValuteExchange{{
			ValuteFromID: usd.ID,
			ValuteToID:   rub.ID,
			AmountFrom:   decimal.NewFromInt(10),
			AmountTo:     decimal.NewFromInt(900),
		}},
		nil,
	)
}

func row(category, item string, itemType models.BudgetItemType, valute models.Valute, total string) repository.ReportRow {
	return repository.ReportRow{
		CategoryName: category,
		ItemName:     item,
		ItemType:     itemType,
		ValuteID:     valute.ID,
		ValuteCode:   valute.Code,
		Total:        decimal.RequireFromString(total),
	}
}

func TestBuildPeriodReport(t *testing.T) {
	rows := []repository.ReportRow{
		row("Food", "Groceries", models.BudgetItemExpense, rub, "1000"),
		row("Food", "Groceries", models.BudgetItemExpense, usd, "10"),
		row("Food", "Restaurants", models.BudgetItemExpense, rub, "500"),
		row("Work", "Salary", models.BudgetItemIncome, usd, "100"),
	}

	p, err := BuildPeriodReport(rows, testResolver(), rub, 2026, time.March)
	require.NoError(t, err)

	require.Len(t, p.Categories, 2)
	food := p.Categories[0]
	require.Equal(t, "Food", food.Name)
	require.Len(t, food.Lines, 2)

	// The two Groceries rows in different currencies merge: 1000 + 10*90.
	require.Equal(t, "Groceries", food.Lines[0].Item)
	require.True(t, food.Lines[0].Total.Equal(decimal.NewFromInt(1900)), "got %s", food.Lines[0].Total)

	require.True(t, p.Income.Equal(decimal.NewFromInt(9000)), "got %s", p.Income)
	require.True(t, p.Expense.Equal(decimal.NewFromInt(2400)), "got %s", p.Expense)
	require.True(t, p.Result().Equal(decimal.NewFromInt(6600)), "got %s", p.Result())

	text := p.Render()
	require.Contains(t, text, "Report for March 2026")
	require.Contains(t, text, "+ Salary: 9000.00 ₽")
	require.Contains(t, text, "- Groceries: 1900.00 ₽")
	require.Contains(t, text, "Result: 6600.00 ₽")
}

func TestBuildPeriodReportEmpty(t *testing.T) {
	p, err := BuildPeriodReport(nil, testResolver(), rub, 2026, time.January)
	require.NoError(t, err)
	require.Empty(t, p.Categories)
	require.Contains(t, p.Render(), "No entries")
}

func TestBuildPeriodReportMissingRates(t *testing.T) {
	rows := []repository.ReportRow{
		row("Food", "Groceries", models.BudgetItemExpense, amd, "4000"),
		row("Work", "Salary", models.BudgetItemIncome, usd, "100"),
	}

	_, err := BuildPeriodReport(rows, testResolver(), rub, 2026, time.March)
	require.Error(t, err)

	var incomplete *rates.ErrRatesIncomplete
	require.True(t, errors.As(err, &incomplete))
	require.Equal(t, []string{"AMD"}, incomplete.Codes)
}

func TestExpenseChart(t *testing.T) {
	rows := []repository.ReportRow{
		row("Food", "Groceries", models.BudgetItemExpense, rub, "1000"),
		row("Home", "Rent", models.BudgetItemExpense, rub, "3000"),
	}
	p, err := BuildPeriodReport(rows, testResolver(), rub, 2026, time.March)
	require.NoError(t, err)

	png, err := p.ExpenseChart()
	require.NoError(t, err)
	require.NotEmpty(t, png)
	require.Equal(t, "report_2026-03.png", p.ChartFilename())
}

func TestExpenseChartNothingToChart(t *testing.T) {
	rows := []repository.ReportRow{
		row("Work", "Salary", models.BudgetItemIncome, rub, "1000"),
	}
	p, err := BuildPeriodReport(rows, testResolver(), rub, 2026, time.March)
	require.NoError(t, err)

	_, err = p.ExpenseChart()
	require.Error(t, err)
}

func TestBuildTotalReport(t *testing.T) {
	chat := &models.Chat{
		Valutes: []models.Valute{rub, usd},
		Balances: []models.Tracker{
			{Name: "Wallet", Amount: decimal.NewFromInt(1000), Valute: &rub},
			{Name: "Card", Amount: decimal.NewFromInt(10), Valute: &usd},
		},
		Fonds: []models.Tracker{
			{Name: "Vacation", Amount: decimal.NewFromInt(300), Valute: &rub},
		},
		Debts: []models.Tracker{
			{Name: "Alex", Amount: decimal.NewFromInt(200), Valute: &rub},
		},
	}
	entryTotals := map[int64]decimal.Decimal{
		rub.ID: decimal.NewFromInt(1500),
		usd.ID: decimal.NewFromInt(-5),
	}

	total, err := BuildTotalReport(entryTotals, chat, testResolver(), rub)
	require.NoError(t, err)

	// Registered: 1500 - 5*90 = 1050. Balances: 1000 + 10*90 = 1900.
	require.True(t, total.Registered.Equal(decimal.NewFromInt(1050)), "got %s", total.Registered)
	require.True(t, total.Balances.Equal(decimal.NewFromInt(1900)), "got %s", total.Balances)
	require.True(t, total.Unaccounted().Equal(decimal.NewFromInt(850)), "got %s", total.Unaccounted())
	require.True(t, total.Net().Equal(decimal.NewFromInt(1800)), "got %s", total.Net())

	text := total.Render()
	require.Contains(t, text, "Registered result: 1050.00")
	require.Contains(t, text, "Net available: 1800.00")
}
