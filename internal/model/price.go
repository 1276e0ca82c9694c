package model

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// ParsePrice normalizes a JSON price that may arrive as a number or as a
// currency-formatted string such as "$15.00" or "15 USD".
func ParsePrice(raw []byte) (decimal.Decimal, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero, ErrInvalidPrice
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Zero, ErrInvalidPrice
		}
		return ParsePriceString(s)
	}

	d, err := decimal.NewFromString(string(raw))
	if err != nil {
		return decimal.Zero, ErrInvalidPrice
	}
	return d, nil
}

// ParsePriceString strips everything except digits, '.' and '-' and parses the rest.
func ParsePriceString(s string) (decimal.Decimal, error) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)

	if cleaned == "" {
		return decimal.Zero, ErrInvalidPrice
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, ErrInvalidPrice
	}
	return d, nil
}

// FormatUSD renders an amount as "$25.00".
func FormatUSD(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// Amount is a lenient money value: unparsable input decodes to zero instead
// of failing the surrounding document.
type Amount struct {
	decimal.Decimal
}

// NewAmount wraps a decimal.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

// UnmarshalJSON accepts numbers, numeric strings and currency-formatted strings.
func (a *Amount) UnmarshalJSON(b []byte) error {
	d, err := ParsePrice(b)
	if err != nil {
		a.Decimal = decimal.Zero
		return nil
	}
	a.Decimal = d
	return nil
}
