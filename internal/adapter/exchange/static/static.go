// Package static provides a currency exchange backed by a fixed rate table,
// suitable for local runs and tests where live quotes are unwanted.
package static

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simaogato/wallet-backend/internal/domain"
)

// Exchange converts money using a fixed table of rates quoted against USD.
type Exchange struct {
	rates map[domain.Currency]decimal.Decimal
}

// NewExchange creates an exchange over the given USD-quoted rate table.
// The table must carry a rate for every currency passed to Convert.
func NewExchange(rates map[domain.Currency]decimal.Decimal) *Exchange {
	return &Exchange{rates: rates}
}

// DefaultRates returns a rate table covering every supported currency, with
// values frozen for reproducible conversions.
func DefaultRates() map[domain.Currency]decimal.Decimal {
	return map[domain.Currency]decimal.Decimal{
		domain.CurrencyUSD: decimal.NewFromInt(1),
		domain.CurrencyEUR: decimal.RequireFromString("0.92"),
		domain.CurrencyCAD: decimal.RequireFromString("1.36"),
		domain.CurrencyGBP: decimal.RequireFromString("0.79"),
		domain.CurrencySEK: decimal.RequireFromString("10.45"),
		domain.CurrencyBRL: decimal.RequireFromString("5.13"),
	}
}

// Convert converts money into the destination currency via the USD cross rate.
func (e *Exchange) Convert(ctx context.Context, amount domain.Money, to domain.Currency) (domain.Money, error) {
	if amount.Currency == to {
		return amount, nil
	}

	from, ok := e.rates[amount.Currency]
	if !ok {
		return domain.Money{}, fmt.Errorf("no rate for %s: %w", amount.Currency, domain.ErrUnsupportedCurrency)
	}
	dest, ok := e.rates[to]
	if !ok {
		return domain.Money{}, fmt.Errorf("no rate for %s: %w", to, domain.ErrUnsupportedCurrency)
	}
	if from.IsZero() || dest.IsZero() {
		return domain.Money{}, fmt.Errorf("zero rate for %s/%s: %w", amount.Currency, to, domain.ErrUnsupportedCurrency)
	}

	converted := amount.Amount.Mul(dest).Div(from)
	return domain.NewMoney(converted, to), nil
}
