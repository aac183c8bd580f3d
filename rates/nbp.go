// Package rates converts position sizing into the account currency using
// the National Bank of Poland's daily mid-rate table.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultTableURL serves table A: mid rates for the major currencies,
// quoted in PLN.
const DefaultTableURL = "https://api.nbp.pl/api/exchangerates/tables/A?format=json"

// MissingRateError reports a currency absent from the published table.
type MissingRateError struct {
	Currency string
}

func (e *MissingRateError) Error() string {
	return fmt.Sprintf("rates: no PLN rate published for %s", e.Currency)
}

// Converter fetches and caches nothing: every call hits the API so sizing
// always uses the current table.
type Converter struct {
	url      string
	currency string
	client   *http.Client
}

// NewConverter builds a converter quoting rates in the given account
// currency. PLN (or empty) reads the table directly; anything else crosses
// through the account currency's own PLN mid.
func NewConverter(url, currency string) *Converter {
	if url == "" {
		url = DefaultTableURL
	}
	if currency == "" {
		currency = "PLN"
	}
	return &Converter{
		url:      url,
		currency: currency,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Table fetches the full code-to-mid map.
func (c *Converter) Table(ctx context.Context) (map[string]float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("rates: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rates: fetch table: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rates: fetch table: unexpected status %s", resp.Status)
	}

	var tables []struct {
		Rates []struct {
			Code string  `json:"code"`
			Mid  float64 `json:"mid"`
		} `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tables); err != nil {
		return nil, fmt.Errorf("rates: decode table: %w", err)
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("rates: empty table response")
	}

	out := make(map[string]float64, len(tables[0].Rates))
	for _, r := range tables[0].Rates {
		out[r.Code] = r.Mid
	}
	return out, nil
}

// ForPairs maps each pair to the account-currency rate of its base currency.
func (c *Converter) ForPairs(ctx context.Context, pairs []string) (map[string]float64, error) {
	if len(pairs) == 0 {
		return map[string]float64{}, nil
	}
	table, err := c.Table(ctx)
	if err != nil {
		return nil, err
	}
	divisor := 1.0
	if c.currency != "PLN" {
		acct, ok := table[c.currency]
		if !ok {
			return nil, &MissingRateError{Currency: c.currency}
		}
		divisor = acct
	}
	out := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		base := pair[:3]
		mid, ok := table[base]
		if !ok {
			return nil, &MissingRateError{Currency: base}
		}
		out[pair] = mid / divisor
	}
	return out, nil
}
