package money

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// minorPerMajor is the number of minor units (kobo) in one major unit (naira).
const minorPerMajor = 100

// Amount is a monetary value stored in minor units.
// The backend sends prices as decimal major units; Amount converts on the wire.
type Amount int64

// FromMajor converts a decimal major-unit value into an Amount, rounding to the nearest minor unit.
func FromMajor(v float64) Amount {
	return Amount(math.Round(v * minorPerMajor))
}

// Major returns the amount as a decimal major-unit value (for display and the wire).
func (a Amount) Major() float64 {
	return float64(a) / minorPerMajor
}

// Times multiplies the amount by a quantity.
func (a Amount) Times(qty int) Amount {
	return a * Amount(qty)
}

// MarshalJSON encodes the amount as a plain JSON number in major units.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(a.Major(), 'f', -1, 64)), nil
}

// UnmarshalJSON accepts a JSON number, a quoted number, or null.
func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*a = 0
		return nil
	}
	b = bytes.Trim(b, `"`)
	if len(b) == 0 {
		*a = 0
		return nil
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("money: invalid amount %q: %w", string(b), err)
	}
	*a = FromMajor(v)
	return nil
}

// Formatter renders amounts for a locale, e.g. "₦1,900.00".
type Formatter struct {
	printer *message.Printer
	unit    currency.Unit
	symbol  string
}

// NewFormatter creates a formatter for an ISO 4217 currency code and a BCP 47 locale.
func NewFormatter(code, locale, symbol string) (*Formatter, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("money: unknown currency %q: %w", code, err)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("money: unknown locale %q: %w", locale, err)
	}
	if symbol == "" {
		symbol = unit.String() + " "
	}
	return &Formatter{
		printer: message.NewPrinter(tag),
		unit:    unit,
		symbol:  symbol,
	}, nil
}

// MustFormatter is NewFormatter for package-level defaults; it panics on bad input.
func MustFormatter(code, locale, symbol string) *Formatter {
	f, err := NewFormatter(code, locale, symbol)
	if err != nil {
		panic(err)
	}
	return f
}

// Currency returns the ISO code of the formatter's currency.
func (f *Formatter) Currency() string {
	return f.unit.String()
}

// Format renders the amount with the currency symbol and two decimals.
func (f *Formatter) Format(a Amount) string {
	sign := ""
	if a < 0 {
		sign = "-"
		a = -a
	}
	return sign + f.symbol + f.printer.Sprint(number.Decimal(a.Major(), number.Scale(2)))
}

// Plain renders the amount with grouping but without a symbol, e.g. "1,900.00".
func (f *Formatter) Plain(a Amount) string {
	return f.printer.Sprint(number.Decimal(a.Major(), number.Scale(2)))
}
