// Package report builds the monthly period report and the reconciliation
// totals from aggregated entries, converted into the chat's reporting
// currency.
package report

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"gitlab.com/avoronov/ledger-bot/internal/models"
	"gitlab.com/avoronov/ledger-bot/internal/rates"
	"gitlab.com/avoronov/ledger-bot/internal/repository"
)

// Line is one budget item total within a category.
type Line struct {
	Item  string
	Type  models.BudgetItemType
	Total decimal.Decimal
}

// CategoryBlock groups a category's lines with its income/expense subtotals.
type CategoryBlock struct {
	Name    string
	Lines   []Line
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// PeriodReport is one month's report in the reporting currency.
type PeriodReport struct {
	Year       int
	Month      time.Month
	Valute     models.Valute
	Categories []CategoryBlock
	Income     decimal.Decimal
	Expense    decimal.Decimal
}

// Result is the month's income minus expenses.
func (p *PeriodReport) Result() decimal.Decimal {
	return p.Income.Sub(p.Expense)
}

// BuildPeriodReport converts the aggregated rows into the reporting valute
// and groups them by category. If any row's currency cannot be resolved the
// whole report fails with one error naming every missing code.
func BuildPeriodReport(rows []repository.ReportRow, resolver *rates.Resolver, valute models.Valute, year int, month time.Month) (*PeriodReport, error) {
	p := &PeriodReport{Year: year, Month: month, Valute: valute}

	type lineKey struct {
		category string
		item     string
		itemType models.BudgetItemType
	}
	totals := map[lineKey]decimal.Decimal{}
	missing := map[string]bool{}

	for _, row := range rows {
		converted, err := resolver.Convert(row.Total, row.ValuteCode, valute.Code)
		if err != nil {
			var incomplete *rates.ErrRatesIncomplete
			if errors.As(err, &incomplete) {
				for _, code := range incomplete.Codes {
					missing[code] = true
				}
				continue
			}
			return nil, err
		}
		key := lineKey{category: row.CategoryName, item: row.ItemName, itemType: row.ItemType}
		totals[key] = totals[key].Add(converted)
	}

	if len(missing) > 0 {
		codes := make([]string, 0, len(missing))
		for code := range missing {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		return nil, &rates.ErrRatesIncomplete{Codes: codes}
	}

	blocks := map[string]*CategoryBlock{}
	var order []string
	for key, total := range totals {
		block, ok := blocks[key.category]
		if !ok {
			block = &CategoryBlock{Name: key.category}
			blocks[key.category] = block
			order = append(order, key.category)
		}
		block.Lines = append(block.Lines, Line{Item: key.item, Type: key.itemType, Total: total})
		if key.itemType == models.BudgetItemIncome {
			block.Income = block.Income.Add(total)
			p.Income = p.Income.Add(total)
		} else {
			block.Expense = block.Expense.Add(total)
			p.Expense = p.Expense.Add(total)
		}
	}

	sort.Strings(order)
	for _, name := range order {
		block := blocks[name]
		sort.Slice(block.Lines, func(i, j int) bool {
			if block.Lines[i].Type != block.Lines[j].Type {
				return block.Lines[i].Type == models.BudgetItemIncome
			}
			return block.Lines[i].Item < block.Lines[j].Item
		})
		p.Categories = append(p.Categories, *block)
	}
	return p, nil
}

// Render formats the report as a Telegram message.
func (p *PeriodReport) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Report for %s %d\n", p.Month, p.Year)

	if len(p.Categories) == 0 {
		b.WriteString("\nNo entries for this period.")
		return b.String()
	}

	for _, block := range p.Categories {
		fmt.Fprintf(&b, "\n%s\n", block.Name)
		for _, line := range block.Lines {
			sign := "-"
			if line.Type == models.BudgetItemIncome {
				sign = "+"
			}
			fmt.Fprintf(&b, "  %s %s: %s %s\n", sign, line.Item, line.Total.StringFixed(2), p.Valute.Symbol)
		}
	}

	fmt.Fprintf(&b, "\nIncome: %s %s\n", p.Income.StringFixed(2), p.Valute.Symbol)
	fmt.Fprintf(&b, "Expenses: %s %s\n", p.Expense.StringFixed(2), p.Valute.Symbol)
	fmt.Fprintf(&b, "Result: %s %s", p.Result().StringFixed(2), p.Valute.Symbol)
	return b.String()
}
