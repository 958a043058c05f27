package mesarf

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Kind names a grouping of the fixed-income stock. The values double as the
// `tipo` discriminator of history entries, so they are part of the file format.
type Kind string

const (
	KindTotal   Kind = "total"
	KindProduct Kind = "produto"
	KindClass   Kind = "classe"
	KindIssuer  Kind = "emissor"
)

// ParseKind parses a grouping name as used on the command line.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindTotal, KindProduct, KindClass, KindIssuer:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown grouping %q (want total, produto, classe or emissor)", s)
	}
}

// AggregateRow is one line of a grouped exposure view.
type AggregateRow struct {
	Category  string          // group key; empty when the source rows had none
	Value     decimal.Decimal // summed resolved value
	PctOfRF   Percent         // share of the total fixed-income stock
	PctOfFirm Percent         // share of the desk's total AuC
}

// TotalRF sums the resolved value over all holdings.
func TotalRF(holdings []Holding) decimal.Decimal {
	total := decimal.Zero
	for _, h := range holdings {
		total = total.Add(h.Value)
	}
	return total
}

// AccountsWithRF counts distinct accounts holding a strictly positive
// resolved value.
func AccountsWithRF(holdings []Holding) int {
	seen := make(map[string]bool)
	for _, h := range holdings {
		if h.Value.IsPositive() {
			seen[h.Account] = true
		}
	}
	return len(seen)
}

// Aggregate groups holdings by product type, class or issuer and sums their
// resolved values, sorted descending by sum (stable: ties keep first-seen
// order). Rows with an empty group key form their own group rather than
// being dropped.
//
// Percentages are computed against the holdings' own total (zero total means
// zero percentages, never a division fault) and against firmAuC, which the
// pipeline has already validated as strictly positive.
func Aggregate(holdings []Holding, by Kind, firmAuC decimal.Decimal) ([]AggregateRow, error) {
	key, err := groupKey(by)
	if err != nil {
		return nil, err
	}

	totalRF := TotalRF(holdings)
	sums := make(map[string]decimal.Decimal)
	var order []string
	for _, h := range holdings {
		k := key(h)
		if _, ok := sums[k]; !ok {
			order = append(order, k)
		}
		sums[k] = sums[k].Add(h.Value)
	}

	rows := make([]AggregateRow, 0, len(order))
	for _, category := range order {
		sum := sums[category]
		rows = append(rows, AggregateRow{
			Category:  category,
			Value:     sum,
			PctOfRF:   pct(sum, totalRF),
			PctOfFirm: pct(sum, firmAuC),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Value.GreaterThan(rows[j].Value)
	})
	return rows, nil
}

func groupKey(by Kind) (func(Holding) string, error) {
	switch by {
	case KindProduct:
		return func(h Holding) string { return h.ProductType }, nil
	case KindClass:
		return func(h Holding) string { return h.Class }, nil
	case KindIssuer:
		return func(h Holding) string { return h.Issuer }, nil
	default:
		return nil, fmt.Errorf("cannot aggregate holdings by %q", by)
	}
}

func pct(part, whole decimal.Decimal) Percent {
	if whole.IsZero() {
		return 0
	}
	p, _ := part.Div(whole).Mul(decimal.NewFromInt(100)).Float64()
	return Percent(p)
}
