package mesarf

import (
	"fmt"
	"slices"

	"github.com/go-gota/gota/dataframe"
	"github.com/rdpreg/mesa-rf/date"
	"github.com/shopspring/decimal"
)

// TotalCategory is the category label of the daily total entry in the history.
const TotalCategory = "RF Total"

// Params configures one run of the reporting pipeline.
type Params struct {
	// FirmAuC is the desk's total assets under custody, the denominator of
	// the firm-wide percentage. Must be strictly positive.
	FirmAuC decimal.Decimal
	// ReferenceDate dates the position. Required with the fixed schema; with
	// a mapping it is the fallback for rows whose date cell does not parse.
	ReferenceDate date.Date
	// Mapping selects the flexible-schema mode. Nil means the fixed-schema
	// back-office contract.
	Mapping Mapping
	// Rules is the classification taxonomy. Nil picks the built-in rule set
	// matching the schema mode.
	Rules *RuleSet
	// Overrides carries the operator's class choices for product-type codes
	// the rules leave unresolved. Empty means every unresolved code goes to
	// the overflow bucket.
	Overrides map[string]string
}

// Report is the computed output of one run: the overview plus the grouped
// exposure views, ready for rendering and for flattening into the history.
type Report struct {
	ReferenceDate date.Date
	FirmAuC       decimal.Decimal
	TotalRF       decimal.Decimal
	PctOfFirm     Percent
	Accounts      int // distinct accounts with positive fixed-income value

	ByProduct []AggregateRow
	ByClass   []AggregateRow
	// ByIssuer is only populated when the export carries an issuer column;
	// HasIssuer tells the two cases apart (a missing column degrades this
	// one view, nothing else).
	ByIssuer  []AggregateRow
	HasIssuer bool

	// Unresolved lists product-type codes that fell to the overflow bucket
	// with no operator override, for surfacing as a warning.
	Unresolved []string
}

// Run executes the full pipeline over a raw dataframe: normalize the schema,
// resolve one value per holding, classify, and aggregate.
func Run(df dataframe.DataFrame, p Params) (*Report, error) {
	if !p.FirmAuC.IsPositive() {
		return nil, fmt.Errorf("firm AuC must be strictly positive, got %s", p.FirmAuC)
	}

	rules := p.Rules
	var holdings []Holding
	var hasIssuer bool
	var err error
	if p.Mapping == nil {
		if p.ReferenceDate.IsZero() {
			return nil, fmt.Errorf("a reference date is required with the fixed schema")
		}
		if rules == nil {
			rules = DeskRules
		}
		holdings, err = NormalizeFixed(df, p.ReferenceDate)
		hasIssuer = slices.Contains(df.Names(), HeaderIssuer)
	} else {
		if rules == nil {
			rules = DefaultRules
		}
		holdings, err = NormalizeMapped(df, p.Mapping, p.ReferenceDate)
		for _, field := range p.Mapping {
			hasIssuer = hasIssuer || field == FieldIssuer
		}
	}
	if err != nil {
		return nil, err
	}

	for i := range holdings {
		holdings[i].Value = ResolveValue(holdings[i].CandidateA, holdings[i].CandidateB)
	}

	refDate := referenceDate(holdings, p.ReferenceDate)
	if refDate.IsZero() {
		return nil, fmt.Errorf("cannot determine the position's reference date: no date column and no -d flag")
	}

	unresolved := rules.Unresolved(holdings)
	if err := rules.ClassifyWithOverrides(holdings, p.Overrides); err != nil {
		return nil, err
	}
	// Codes the operator handled are no longer worth warning about.
	overridden := make(map[string]bool, len(p.Overrides))
	for code := range p.Overrides {
		overridden[normalizeCode(code)] = true
	}
	unresolved = slices.DeleteFunc(unresolved, func(code string) bool {
		return overridden[code]
	})

	report := &Report{
		ReferenceDate: refDate,
		FirmAuC:       p.FirmAuC,
		TotalRF:       TotalRF(holdings),
		Accounts:      AccountsWithRF(holdings),
		HasIssuer:     hasIssuer,
		Unresolved:    unresolved,
	}
	report.PctOfFirm = pct(report.TotalRF, p.FirmAuC)

	if report.ByProduct, err = Aggregate(holdings, KindProduct, p.FirmAuC); err != nil {
		return nil, err
	}
	if report.ByClass, err = Aggregate(holdings, KindClass, p.FirmAuC); err != nil {
		return nil, err
	}
	if hasIssuer {
		if report.ByIssuer, err = Aggregate(holdings, KindIssuer, p.FirmAuC); err != nil {
			return nil, err
		}
	}
	return report, nil
}

// referenceDate picks the report's date: the latest row date when the rows
// are dated, the externally supplied date otherwise.
func referenceDate(holdings []Holding, fallback date.Date) date.Date {
	latest := fallback
	for _, h := range holdings {
		if h.ReferenceDate.After(latest) {
			latest = h.ReferenceDate
		}
	}
	return latest
}

// SummaryEntries flattens the report into the batch of history entries for
// its reference date: one total row plus one row per product, class and
// (when available) issuer.
func (r *Report) SummaryEntries() []Entry {
	entries := []Entry{{
		Date:     r.ReferenceDate,
		Kind:     KindTotal,
		Category: TotalCategory,
		ValueRF:  r.TotalRF,
		FirmAuC:  r.FirmAuC,
	}}
	appendRows := func(kind Kind, rows []AggregateRow) {
		for _, row := range rows {
			entries = append(entries, Entry{
				Date:     r.ReferenceDate,
				Kind:     kind,
				Category: row.Category,
				ValueRF:  row.Value,
				FirmAuC:  r.FirmAuC,
			})
		}
	}
	appendRows(KindProduct, r.ByProduct)
	appendRows(KindClass, r.ByClass)
	if r.HasIssuer {
		appendRows(KindIssuer, r.ByIssuer)
	}
	return entries
}
