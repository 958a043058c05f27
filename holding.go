package mesarf

import (
	"github.com/rdpreg/mesa-rf/date"
	"github.com/shopspring/decimal"
)

// Holding is one position row after schema normalization.
//
// Holdings are built fresh for every run, never mutated after classification,
// and discarded at the end of the run; only aggregates reach the history.
type Holding struct {
	ReferenceDate date.Date
	Account       string
	Client        string // optional, empty when the export has no client column
	Issuer        string // optional, empty disables the issuer view
	Asset         string // free-text description, secondary classification signal
	ProductType   string // short product-type code ("CDB", "LCI", ...), primary classification key

	// Valuation candidates as exported. Which curves they are depends on the
	// schema variant (gross client/market, or gross/net client).
	CandidateA decimal.NullDecimal
	CandidateB decimal.NullDecimal

	// Value is the single fixed-income exposure resolved from the candidates.
	// Negative values from the export pass through unmodified.
	Value decimal.Decimal

	// Class is the taxonomy label. Always non-empty once classification ran.
	Class string
}

// ResolveValue picks the single fixed-income value out of two competing
// valuation curves:
//
//   - both candidates missing: zero
//   - exactly one present: that one
//   - both present: the minimum, so that disagreeing curves never overstate
//     the exposure
//
// It is pure and row-independent; missing cells never become errors here.
func ResolveValue(a, b decimal.NullDecimal) decimal.Decimal {
	switch {
	case !a.Valid && !b.Valid:
		return decimal.Zero
	case !a.Valid:
		return b.Decimal
	case !b.Valid:
		return a.Decimal
	case a.Decimal.LessThan(b.Decimal):
		return a.Decimal
	default:
		return b.Decimal
	}
}
