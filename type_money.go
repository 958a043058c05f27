package mesarf

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// ReportCurrency is the currency every position export is denominated in.
const ReportCurrency = "BRL"

// Money represents a monetary value in the report currency.
//
// Values are kept as exact decimals end to end; the currency machinery is
// only involved when formatting for display ("R$1.234,56").
type Money struct {
	value decimal.Decimal
	cur   string
}

func M[T float32 | float64 | int | int64 | decimal.Decimal](value T) Money {
	return Money{value: newDecimal(value), cur: ReportCurrency}
}

func newDecimal[T float32 | float64 | int | int64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case float32:
		return decimal.NewFromFloat32(v)
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	case decimal.Decimal:
		return v
	}
	return decimal.Zero
}

// currency returns the money's currency.
func (m Money) currency() money.Currency {
	// to get a never nil currency we need to call the Money constructor
	return *money.New(0, m.cur).Currency()
}

// String formats the value with the currency's grapheme and separators,
// e.g. "R$1.234,56" for BRL.
func (m Money) String() string {
	cur := m.currency()
	dec := m.value.Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.IntPart())
}

func (m Money) Decimal() decimal.Decimal { return m.value }
func (m Money) IsZero() bool             { return m.value.IsZero() }
func (m Money) IsNegative() bool         { return m.value.IsNegative() }
func (m Money) LessThan(n Money) bool    { return m.value.LessThan(n.value) }
func (m Money) Add(n Money) Money        { return Money{value: m.value.Add(n.value), cur: m.cur} }
