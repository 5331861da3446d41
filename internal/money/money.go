// Package money formats monetary amounts for display. Amounts are Rwandan
// francs by default, which carry no minor unit.
package money

import (
	"fmt"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Default display settings.
const (
	DefaultCode   = "RWF"
	DefaultLocale = "en-RW"
)

// Formatter renders amounts in a single currency for one locale.
type Formatter struct {
	unit    currency.Unit
	verb    string
	printer *message.Printer
}

// NewFormatter creates a formatter for an ISO 4217 code and a BCP 47 locale.
// Empty arguments fall back to the defaults.
func NewFormatter(code, locale string) (*Formatter, error) {
	if code == "" {
		code = DefaultCode
	}
	if locale == "" {
		locale = DefaultLocale
	}

	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("invalid currency code %q: %w", code, err)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}

	scale, _ := currency.Standard.Rounding(unit)
	return &Formatter{
		unit:    unit,
		verb:    fmt.Sprintf("%%.%df", scale),
		printer: message.NewPrinter(tag),
	}, nil
}

// MustFormatter is like NewFormatter but panics on bad input.
func MustFormatter(code, locale string) *Formatter {
	f, err := NewFormatter(code, locale)
	if err != nil {
		panic(err)
	}
	return f
}

// Code returns the ISO code of the formatter's currency.
func (f *Formatter) Code() string {
	return f.unit.String()
}

// Format renders amount with grouping and the currency's standard number of
// decimals, prefixed by the ISO code, e.g. "RWF 1,250,000".
func (f *Formatter) Format(amount float64) string {
	return f.unit.String() + " " + f.Number(amount)
}

// Number renders amount without the currency code.
func (f *Formatter) Number(amount float64) string {
	return f.printer.Sprintf(f.verb, amount)
}
