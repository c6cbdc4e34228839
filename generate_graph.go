//go:build ignore
// +build ignore

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gitlab.com/avoronov/ledger-bot/internal/models"
	"gitlab.com/avoronov/ledger-bot/internal/report"
)

func main() {
	sample := &report.PeriodReport{
		Year:   2026,
		Month:  time.January,
		Valute: models.Valute{Code: "RUB", Symbol: "₽"},
		Categories: []report.CategoryBlock{
			{Name: "Food", Expense: decimal.NewFromFloat(15050.50)},
			{Name: "Transport", Expense: decimal.NewFromFloat(6000)},
			{Name: "Entertainment", Expense: decimal.NewFromFloat(2500)},
			{Name: "Utilities", Expense: decimal.NewFromFloat(12000)},
		},
	}

	chartData, err := sample.ExpenseChart()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile("graph.png", chartData, 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Wrote graph.png")
}
