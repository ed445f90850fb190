package domain

import (
	"errors"
	"fmt"
)

// Currency is a 3-letter currency code value object.
// Two currencies are equal iff their codes are equal.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyCAD Currency = "CAD"
	CurrencyGBP Currency = "GBP"
	CurrencySEK Currency = "SEK"
	CurrencyBRL Currency = "BRL"
)

// ErrUnsupportedCurrency is returned when a currency code is outside the supported set.
var ErrUnsupportedCurrency = errors.New("unsupported currency")

// supportedCurrencies is the closed set of currencies the wallet deals in.
var supportedCurrencies = map[Currency]bool{
	CurrencyUSD: true,
	CurrencyEUR: true,
	CurrencyCAD: true,
	CurrencyGBP: true,
	CurrencySEK: true,
	CurrencyBRL: true,
}

// ParseCurrency validates a raw currency code and returns the Currency value object.
// Returns ErrUnsupportedCurrency if the code is not in the supported set.
func ParseCurrency(code string) (Currency, error) {
	c := Currency(code)
	if !supportedCurrencies[c] {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedCurrency, code)
	}
	return c, nil
}

// IsSupported reports whether the currency belongs to the supported set.
func (c Currency) IsSupported() bool {
	return supportedCurrencies[c]
}

// String returns the 3-letter code.
func (c Currency) String() string {
	return string(c)
}
