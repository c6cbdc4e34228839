package report

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"gitlab.com/avoronov/ledger-bot/internal/models"
	"gitlab.com/avoronov/ledger-bot/internal/rates"
)

// TotalReport reconciles the chat's recorded entries against its declared
// balances, all in the reporting currency.
type TotalReport struct {
	Valute models.Valute

	// Registered is the signed sum of every entry ever recorded.
	Registered decimal.Decimal
	// Balances is the sum of the chat's declared balance trackers.
	Balances decimal.Decimal
	// Fonds and Debts are the declared earmarked and owed sums.
	Fonds decimal.Decimal
	Debts decimal.Decimal
}

// Unaccounted is money present in balances that no entry explains, or
// negative when entries claim more than the balances hold.
func (t *TotalReport) Unaccounted() decimal.Decimal {
	return t.Balances.Sub(t.Registered)
}

// Net is what the chat actually disposes of: balances plus what others owe,
// minus what is earmarked.
func (t *TotalReport) Net() decimal.Decimal {
	return t.Balances.Add(t.Debts).Sub(t.Fonds)
}

// BuildTotalReport converts the entry totals and tracker amounts into the
// reporting valute. Fails with a single combined error if any currency is
// unresolvable.
func BuildTotalReport(entryTotals map[int64]decimal.Decimal, chat *models.Chat, resolver *rates.Resolver, valute models.Valute) (*TotalReport, error) {
	t := &TotalReport{Valute: valute}
	missing := map[string]bool{}

	convert := func(amount decimal.Decimal, code string) decimal.Decimal {
		converted, err := resolver.Convert(amount, code, valute.Code)
		if err != nil {
			var incomplete *rates.ErrRatesIncomplete
			if errors.As(err, &incomplete) {
				for _, c := range incomplete.Codes {
					missing[c] = true
				}
			}
			return decimal.Decimal{}
		}
		return converted
	}

	for valuteID, total := range entryTotals {
		v := chat.ValuteByID(valuteID)
		if v == nil {
			missing[fmt.Sprintf("valute #%d", valuteID)] = true
			continue
		}
		t.Registered = t.Registered.Add(convert(total, v.Code))
	}

	sum := func(trackers []models.Tracker) decimal.Decimal {
		total := decimal.Decimal{}
		for _, tracker := range trackers {
			code := ""
			if tracker.Valute != nil {
				code = tracker.Valute.Code
			}
			total = total.Add(convert(tracker.Amount, code))
		}
		return total
	}
	t.Balances = sum(chat.Balances)
	t.Fonds = sum(chat.Fonds)
	t.Debts = sum(chat.Debts)

	if len(missing) > 0 {
		codes := make([]string, 0, len(missing))
		for code := range missing {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		return nil, &rates.ErrRatesIncomplete{Codes: codes}
	}
	return t, nil
}

// Render formats the reconciliation as a Telegram message.
func (t *TotalReport) Render() string {
	var b strings.Builder
	s := t.Valute.Symbol
	fmt.Fprintf(&b, "Totals in %s\n\n", t.Valute.Code)
	fmt.Fprintf(&b, "Registered result: %s %s\n", t.Registered.StringFixed(2), s)
	fmt.Fprintf(&b, "Balances: %s %s\n", t.Balances.StringFixed(2), s)
	fmt.Fprintf(&b, "Unaccounted: %s %s\n", t.Unaccounted().StringFixed(2), s)
	fmt.Fprintf(&b, "Fonds: %s %s\n", t.Fonds.StringFixed(2), s)
	fmt.Fprintf(&b, "Debts owed to us: %s %s\n", t.Debts.StringFixed(2), s)
	fmt.Fprintf(&b, "Net available: %s %s", t.Net().StringFixed(2), s)
	return b.String()
}
