package bot

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var errInvalidAmount = errors.New("invalid amount")

// parseAmount reads a user-entered amount. Several amounts can be joined
// with "+" and are summed: "100+20.50+3". Commas are accepted as decimal
// separators.
func parseAmount(text string) (decimal.Decimal, error) {
	total := decimal.Decimal{}
	parts := strings.Split(strings.TrimSpace(text), "+")
	for _, part := range parts {
		part = strings.ReplaceAll(strings.TrimSpace(part), ",", ".")
		if part == "" {
			return decimal.Decimal{}, errInvalidAmount
		}
		value, err := decimal.NewFromString(part)
		if err != nil {
			return decimal.Decimal{}, errInvalidAmount
		}
		total = total.Add(value)
	}
	return total, nil
}
