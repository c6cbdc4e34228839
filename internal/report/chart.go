package report

import (
	"fmt"

	"github.com/go-analyze/charts"
)

// ExpenseChart renders a pie chart of the report's expenses by category.
// Returns PNG image bytes, or an error when there is nothing to chart.
func (p *PeriodReport) ExpenseChart() ([]byte, error) {
	var values []float64
	var names []string
	for _, block := range p.Categories {
		if block.Expense.IsZero() {
			continue
		}
		names = append(names, block.Name)
		values = append(values, block.Expense.InexactFloat64())
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("no expenses to chart")
	}

	chart, err := charts.PieRender(
		values,
		charts.TitleOptionFunc(charts.TitleOption{
			Text: fmt.Sprintf("Expenses %s %d (%s)", p.Month, p.Year, p.Valute.Code),
		}),
		charts.LegendLabelsOptionFunc(names),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chart: %w", err)
	}

	buf, err := chart.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return buf, nil
}

// ChartFilename names the uploaded chart like "report_2026-03.png".
func (p *PeriodReport) ChartFilename() string {
	return fmt.Sprintf("report_%04d-%02d.png", p.Year, int(p.Month))
}
