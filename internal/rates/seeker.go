package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DailyRate is one USD-based rate returned by the external API.
type DailyRate struct {
	Code string
	Rate decimal.Decimal
	Date time.Time
}

// Seeker fetches daily USD-based rates. A zero date asks for the latest
// rates; otherwise the rates of that historical day.
type Seeker interface {
	FetchDailyRates(ctx context.Context, date time.Time, codes []string) ([]DailyRate, error)
}

// FrankfurterSeeker is a Seeker backed by the frankfurter.app API.
type FrankfurterSeeker struct {
	baseURL    string
	httpClient *http.Client
}

type frankfurterResponse struct {
	Base  string                 `json:"base"`
	Date  string                 `json:"date"`
	Rates map[string]json.Number `json:"rates"`
}

// NewFrankfurterSeeker creates a Frankfurter API client.
func NewFrankfurterSeeker(baseURL string, timeout time.Duration) *FrankfurterSeeker {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		trimmed = "https://api.frankfurter.app"
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &FrankfurterSeeker{
		baseURL: trimmed,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchDailyRates fetches the USD rate of each requested code for one day.
// Codes the API does not know are silently absent from the result.
func (c *FrankfurterSeeker) FetchDailyRates(ctx context.Context, date time.Time, codes []string) ([]DailyRate, error) {
	wanted := make([]string, 0, len(codes))
	for _, code := range codes {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code != "" && code != "USD" && code != "USDT" {
			wanted = append(wanted, code)
		}
	}
	if len(wanted) == 0 {
		return nil, nil
	}

	day := "latest"
	if !date.IsZero() {
		day = date.Format("2006-01-02")
	}
	endpoint := fmt.Sprintf("%s/%s?from=USD&to=%s",
		c.baseURL,
		day,
		url.QueryEscape(strings.Join(wanted, ",")),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create rates request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to request daily rates: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rates API returned status %d", resp.StatusCode)
	}

	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()

	var payload frankfurterResponse
	if err := decoder.Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode rates response: %w", err)
	}

	date, err = time.Parse("2006-01-02", payload.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rates date: %w", err)
	}

	if len(payload.Rates) == 0 {
		return nil, errors.New("rates missing in response")
	}

	daily := make([]DailyRate, 0, len(payload.Rates))
	for code, raw := range payload.Rates {
		rate, err := decimal.NewFromString(raw.String())
		if err != nil {
			return nil, fmt.Errorf("failed to parse rate for %s: %w", code, err)
		}
		if !rate.IsPositive() {
			continue
		}
		daily = append(daily, DailyRate{Code: code, Rate: rate, Date: date})
	}
	return daily, nil
}
