package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var ErrRateLimited = errors.New("rate provider: too many requests")

// RateSource fetches a table of home-currency values.
type RateSource interface {
	FetchRates(ctx context.Context, home string) (RateTable, error)
}

// HTTPRateSource reads the open.er-api.com "latest" format:
// GET {baseURL}/{home} -> {"result":"success","rates":{"USD":0.012,...}}
type HTTPRateSource struct {
	baseURL string
	http    *http.Client
}

func NewHTTPRateSource(baseURL string, timeout time.Duration) *HTTPRateSource {
	return &HTTPRateSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type latestRatesResponse struct {
	Result    string                     `json:"result"`
	ErrorType string                     `json:"error-type"`
	BaseCode  string                     `json:"base_code"`
	Rates     map[string]decimal.Decimal `json:"rates"`
}

func (s *HTTPRateSource) FetchRates(ctx context.Context, home string) (RateTable, error) {
	home = Normalize(home)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/"+home, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("rate provider error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed latestRatesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("rate provider: malformed response: %w", err)
	}
	if parsed.Result != "success" {
		return nil, fmt.Errorf("rate provider: result %q %s", parsed.Result, parsed.ErrorType)
	}
	return invertQuotes(home, parsed.Rates), nil
}

// invertQuotes turns "units of X per 1 home" into "home per 1 unit of X".
func invertQuotes(home string, quotes map[string]decimal.Decimal) RateTable {
	one := decimal.NewFromInt(1)
	table := RateTable{home: one}
	for code, q := range quotes {
		if !q.IsPositive() {
			continue
		}
		table[Normalize(code)] = one.DivRound(q, 6)
	}
	return table
}
