// Package rates resolves conversion rates between currencies from manual
// exchange events and externally fetched daily rates.
package rates

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"gitlab.com/avoronov/ledger-bot/internal/models"
)

// Precision is the number of decimal places resolved rates are rounded to.
const Precision = 6

// ErrRatesIncomplete is returned when a rate cannot be resolved. It names
// every currency code the resolver had no path for, so a report can tell the
// user exactly what is missing.
type ErrRatesIncomplete struct {
	Codes []string
}

func (e *ErrRatesIncomplete) Error() string {
	return fmt.Sprintf("no conversion rate for: %s", strings.Join(e.Codes, ", "))
}

// Resolver answers rate queries over a fixed snapshot of exchange events and
// daily rates. Build one per report with NewResolver.
//
// Resolution order for from -> to:
//  1. substitution: equal or substitute codes convert at exactly 1
//  2. manual exchanges directly between the pair, both directions
//  3. manual exchanges bridged through USD
//  4. external daily rates bridged through USD
//
// Every multi-event source is combined with a geometric mean. There is no
// further fallback; an unresolvable pair is an error.
type Resolver struct {
	codeByID map[int64]string
	idByCode map[string]int64

	// implied rates per canonical "FROM>TO" pair, from manual exchanges
	exchangeRates map[string][]float64

	// external daily rates per canonical "FROM>TO" pair
	externalRates map[string][]float64
}

// NewResolver builds a resolver over the given snapshot. The valutes slice
// must cover every id referenced by the exchanges and rates.
func NewResolver(valutes []models.Valute, exchanges []models.ValuteExchange, rates []models.ValuteRate) *Resolver {
	r := &Resolver{
		codeByID:      make(map[int64]string, len(valutes)),
		idByCode:      make(map[string]int64, len(valutes)),
		exchangeRates: map[string][]float64{},
		externalRates: map[string][]float64{},
	}
	for _, v := range valutes {
		r.codeByID[v.ID] = v.Code
		r.idByCode[v.Code] = v.ID
	}

	for _, ex := range exchanges {
		if ex.AmountFrom.IsZero() || ex.AmountTo.IsZero() {
			continue
		}
		from, to := r.canonical(ex.ValuteFromID), r.canonical(ex.ValuteToID)
		if from == "" || to == "" || from == to {
			continue
		}
		// Each observation is rounded to Precision before averaging.
		rate := ex.AmountTo.Div(ex.AmountFrom).Round(Precision).InexactFloat64()
		key := pairKey(from, to)
		r.exchangeRates[key] = append(r.exchangeRates[key], rate)
	}

	for _, rate := range rates {
		if !rate.Rate.IsPositive() {
			continue
		}
		from, to := r.canonical(rate.ValuteFromID), r.canonical(rate.ValuteToID)
		if from == "" || to == "" || from == to {
			continue
		}
		key := pairKey(from, to)
		r.externalRates[key] = append(r.externalRates[key], rate.Rate.InexactFloat64())
	}

	return r
}

// canonical maps a valute id to its code with substitutes collapsed, so USDT
// and USD resolve to the same node.
func (r *Resolver) canonical(id int64) string {
	return canonicalCode(r.codeByID[id])
}

func canonicalCode(code string) string {
	if code == models.USDTCode {
		return models.USDCode
	}
	return code
}

func pairKey(from, to string) string {
	return from + ">" + to
}

// Rate resolves the conversion rate from one currency code to another,
// rounded to Precision decimal places.
func (r *Resolver) Rate(fromCode, toCode string) (decimal.Decimal, error) {
	from, to := canonicalCode(fromCode), canonicalCode(toCode)
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	if rate, ok := r.pairRate(r.exchangeRates, from, to); ok {
		return round(rate), nil
	}

	if rate, ok := r.bridged(r.exchangeRates, from, to); ok {
		return round(rate), nil
	}

	if rate, ok := r.bridged(r.externalRates, from, to); ok {
		return round(rate), nil
	}

	return decimal.Decimal{}, &ErrRatesIncomplete{Codes: r.missing(from, to)}
}

// Convert converts an amount between currencies using Rate.
func (r *Resolver) Convert(amount decimal.Decimal, fromCode, toCode string) (decimal.Decimal, error) {
	rate, err := r.Rate(fromCode, toCode)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return amount.Mul(rate), nil
}

// pairRate combines every observation of the pair, in either direction, into
// one geometric mean. Reverse observations contribute their reciprocals.
func (r *Resolver) pairRate(source map[string][]float64, from, to string) (float64, bool) {
	var observations []float64
	observations = append(observations, source[pairKey(from, to)]...)
	for _, reverse := range source[pairKey(to, from)] {
		if reverse != 0 {
			observations = append(observations, 1/reverse)
		}
	}
	if len(observations) == 0 {
		return 0, false
	}
	return geometricMean(observations), true
}

// bridged resolves from -> USD -> to. A leg that is USD itself counts as 1.
func (r *Resolver) bridged(source map[string][]float64, from, to string) (float64, bool) {
	toUSD := 1.0
	if from != models.USDCode {
		var ok bool
		toUSD, ok = r.pairRate(source, from, models.USDCode)
		if !ok {
			return 0, false
		}
	}
	fromUSD := 1.0
	if to != models.USDCode {
		var ok bool
		fromUSD, ok = r.pairRate(source, models.USDCode, to)
		if !ok {
			return 0, false
		}
	}
	return toUSD * fromUSD, true
}

// missing lists which of the pair's codes have no path to USD in any source.
func (r *Resolver) missing(from, to string) []string {
	var codes []string
	for _, code := range []string{from, to} {
		if code == models.USDCode {
			continue
		}
		_, viaExchange := r.pairRate(r.exchangeRates, code, models.USDCode)
		_, viaExternal := r.pairRate(r.externalRates, code, models.USDCode)
		if !viaExchange && !viaExternal {
			codes = append(codes, code)
		}
	}
	if len(codes) == 0 {
		// Both legs reach USD individually but no single source covers
		// the pair end to end; report the pair itself.
		codes = []string{from, to}
	}
	sort.Strings(codes)
	return codes
}

func geometricMean(observations []float64) float64 {
	sum := 0.0
	for _, x := range observations {
		sum += math.Log(x)
	}
	return math.Exp(sum / float64(len(observations)))
}

func round(rate float64) decimal.Decimal {
	return decimal.NewFromFloat(rate).Round(Precision)
}
