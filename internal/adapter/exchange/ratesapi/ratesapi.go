// Package ratesapi provides a currency exchange backed by an HTTP rates
// service that quotes every supported currency against USD.
package ratesapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/wallet-backend/internal/domain"
)

// ErrRateUnavailable is returned when the rates service has no quote for a
// requested currency.
var ErrRateUnavailable = errors.New("exchange rate unavailable")

const defaultTimeout = 10 * time.Second

// Exchange converts money using live USD-quoted rates fetched per conversion.
// Rates are deliberately not cached: a wallet mutation should use the freshest
// quote available, and staleness policy belongs to the rates service.
type Exchange struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *slog.Logger
}

// NewExchange creates an exchange client for the rates service at baseURL.
// apiKey may be empty for services that do not require one.
func NewExchange(baseURL, apiKey string, logger *slog.Logger) *Exchange {
	return &Exchange{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: defaultTimeout},
		logger:  logger,
	}
}

// ratesResponse mirrors the service payload. Amounts decode through
// json.Number so no precision is lost before reaching decimal.
type ratesResponse struct {
	Base  string                 `json:"base"`
	Rates map[string]json.Number `json:"rates"`
}

// Convert converts money into the destination currency via the USD cross rate.
func (e *Exchange) Convert(ctx context.Context, amount domain.Money, to domain.Currency) (domain.Money, error) {
	if amount.Currency == to {
		return amount, nil
	}

	rates, err := e.fetchRates(ctx)
	if err != nil {
		return domain.Money{}, err
	}

	from, ok := rates[amount.Currency]
	if !ok {
		return domain.Money{}, fmt.Errorf("no quote for %s: %w", amount.Currency, ErrRateUnavailable)
	}
	dest, ok := rates[to]
	if !ok {
		return domain.Money{}, fmt.Errorf("no quote for %s: %w", to, ErrRateUnavailable)
	}
	// A parseable payload can still quote a degenerate zero rate.
	if from.IsZero() || dest.IsZero() {
		return domain.Money{}, fmt.Errorf("zero quote for %s/%s: %w", amount.Currency, to, ErrRateUnavailable)
	}

	converted := amount.Amount.Mul(dest).Div(from)
	e.logger.Debug("converted amount",
		"from", amount.Currency.String(),
		"to", to.String(),
		"rate", dest.Div(from).String(),
	)
	return domain.NewMoney(converted, to), nil
}

// fetchRates retrieves the current USD-quoted rate table.
func (e *Exchange) fetchRates(ctx context.Context) (map[domain.Currency]decimal.Decimal, error) {
	endpoint := e.baseURL
	if e.apiKey != "" {
		u, err := url.Parse(e.baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid rates service URL: %w", err)
		}
		q := u.Query()
		q.Set("apikey", e.apiKey)
		u.RawQuery = q.Encode()
		endpoint = u.String()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build rates request: %w", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rates service returned status %d: %w", resp.StatusCode, ErrRateUnavailable)
	}

	var payload ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode rates response: %w", err)
	}

	rates := make(map[domain.Currency]decimal.Decimal, len(payload.Rates))
	for code, quote := range payload.Rates {
		currency, err := domain.ParseCurrency(code)
		if err != nil {
			// Services quote far more currencies than the wallet supports.
			continue
		}
		rate, err := decimal.NewFromString(quote.String())
		if err != nil {
			return nil, fmt.Errorf("malformed quote for %s: %w", code, err)
		}
		rates[currency] = rate
	}
	// The base currency itself is usually omitted from its own table.
	if _, ok := rates[domain.CurrencyUSD]; !ok {
		rates[domain.CurrencyUSD] = decimal.NewFromInt(1)
	}

	return rates, nil
}
