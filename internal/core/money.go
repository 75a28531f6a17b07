// Package core provides the household finance domain model.
//
// This file contains money parsing and formatting. Amounts are carried as
// integer cents everywhere; floats only appear at the display boundary.
package core

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Money is a BRL amount in integer cents. Bank balances may be negative;
// item amounts are validated to be positive.
type Money struct {
	Cents int64
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Add returns m + o.
func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }

// Sub returns m - o.
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

// Reais returns the value in reais as float64, for display only.
func (m Money) Reais() float64 {
	return float64(m.Cents) / 100.0
}

var brl = message.NewPrinter(language.BrazilianPortuguese)

// Format renders the amount as Brazilian currency, e.g. "R$ 1.234,56".
func (m Money) Format() string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	v := number.Decimal(float64(cents)/100.0,
		number.MinFractionDigits(2), number.MaxFractionDigits(2))
	return brl.Sprintf("%sR$ %v", sign, v)
}

// FormValue renders the amount as a plain decimal suitable for form inputs,
// e.g. "1234,56". ParseDecimalToCents and ParseSignedCents round-trip it.
func (m Money) FormValue() string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d,%02d", sign, cents/100, cents%100)
}

// ParseDecimalToCents converts a decimal string to cents with half-up
// rounding on the third decimal place. Both comma (12,34) and dot (12.34)
// separators are accepted; only positive amounts are valid.
func ParseDecimalToCents(s string) (int64, error) {
	cents, neg, err := parseCents(s)
	if err != nil {
		return 0, err
	}
	if neg || cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// ParseSignedCents is ParseDecimalToCents for signed values; bank balances
// may legitimately be negative or zero.
func ParseSignedCents(s string) (int64, error) {
	cents, neg, err := parseCents(s)
	if err != nil {
		return 0, err
	}
	if neg {
		cents = -cents
	}
	return cents, nil
}

func parseCents(s string) (cents int64, neg bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}
	// Normalize decimal comma to dot; drop thousands dots like "1.234,56".
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, false, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, false, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, false, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, false, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, false, ErrInvalidAmount
	}
	// First two fractional digits, half-up rounding on the third.
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	return iv*100 + fracCents, neg, nil
}
