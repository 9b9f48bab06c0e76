// Package money formats monetary amounts for display. Pricing keeps full
// precision; only the formatter rounds, always to two decimals.
package money

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders an amount as a display string with exactly two decimals.
type Formatter interface {
	Format(amount float64) string
}

type localeFormatter struct {
	printer *message.Printer
	symbol  string
}

// NewFormatter builds a formatter for the given locale and currency symbol.
func NewFormatter(tag language.Tag, symbol string) Formatter {
	return &localeFormatter{printer: message.NewPrinter(tag), symbol: symbol}
}

// ARS formats like the Argentine locale the business quotes in: $1.234,56.
func ARS() Formatter {
	return NewFormatter(language.MustParse("es-AR"), "$")
}

func (f *localeFormatter) Format(amount float64) string {
	return f.printer.Sprintf("%s%v", f.symbol,
		number.Decimal(amount, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}
