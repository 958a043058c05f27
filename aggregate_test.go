package mesarf

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func holding(account, product, class, issuer string, value float64) Holding {
	return Holding{
		Account:     account,
		ProductType: product,
		Class:       class,
		Issuer:      issuer,
		Value:       dec(value),
	}
}

func TestAggregate_byClass(t *testing.T) {
	holdings := []Holding{
		holding("1001", "CDB", "Bancário", "Banco X", 90),
		holding("1002", "CRI", "Crédito Privado", "Sec Y", 50),
	}

	rows, err := Aggregate(holdings, KindClass, dec(1000))
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	// Sorted descending by value.
	if rows[0].Category != "Bancário" || !rows[0].Value.Equal(dec(90)) {
		t.Errorf("rows[0] = %+v, want Bancário 90", rows[0])
	}
	if rows[1].Category != "Crédito Privado" || !rows[1].Value.Equal(dec(50)) {
		t.Errorf("rows[1] = %+v, want Crédito Privado 50", rows[1])
	}

	if want := Percent(100 * 90.0 / 140.0); !rows[0].PctOfRF.Equal(want) {
		t.Errorf("Bancário PctOfRF = %s, want %s", rows[0].PctOfRF, want)
	}
	if want := Percent(9.0); !rows[0].PctOfFirm.Equal(want) {
		t.Errorf("Bancário PctOfFirm = %s, want %s", rows[0].PctOfFirm, want)
	}
	if want := Percent(5.0); !rows[1].PctOfFirm.Equal(want) {
		t.Errorf("Crédito Privado PctOfFirm = %s, want %s", rows[1].PctOfFirm, want)
	}
}

func TestAggregate_pctOfRFSumsToHundred(t *testing.T) {
	holdings := []Holding{
		holding("1", "CDB", "", "", 33),
		holding("2", "LCI", "", "", 41),
		holding("3", "CRA", "", "", 26),
	}
	rows, err := Aggregate(holdings, KindProduct, dec(500))
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	var sum Percent
	for _, r := range rows {
		sum += r.PctOfRF
	}
	if !sum.Equal(100) {
		t.Errorf("PctOfRF sums to %s, want 100%%", sum)
	}
}

func TestAggregate_zeroTotal(t *testing.T) {
	holdings := []Holding{holding("1", "CDB", "", "", 0)}
	rows, err := Aggregate(holdings, KindProduct, dec(1000))
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if !rows[0].PctOfRF.Equal(0) {
		t.Errorf("zero total must give zero percentages, got %s", rows[0].PctOfRF)
	}
}

func TestAggregate_emptyGroupKey(t *testing.T) {
	holdings := []Holding{
		holding("1", "CDB", "", "Banco X", 100),
		holding("2", "CDB", "", "", 40),
	}
	rows, err := Aggregate(holdings, KindIssuer, dec(1000))
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("empty issuer must form its own group, got %d rows", len(rows))
	}
	if rows[1].Category != "" || !rows[1].Value.Equal(dec(40)) {
		t.Errorf("rows[1] = %+v, want empty category with 40", rows[1])
	}
}

func TestAggregate_stableOnTies(t *testing.T) {
	holdings := []Holding{
		holding("1", "LCI", "", "", 50),
		holding("2", "CDB", "", "", 50),
	}
	rows, err := Aggregate(holdings, KindProduct, dec(1000))
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if rows[0].Category != "LCI" || rows[1].Category != "CDB" {
		t.Errorf("ties must keep first-seen order, got %q then %q", rows[0].Category, rows[1].Category)
	}
}

func TestAggregate_unknownKind(t *testing.T) {
	if _, err := Aggregate(nil, KindTotal, dec(1)); err == nil {
		t.Error("aggregating by total should be rejected")
	}
}

func TestParseKind(t *testing.T) {
	for _, s := range []string{"total", "produto", "classe", "emissor"} {
		if k, err := ParseKind(s); err != nil || string(k) != s {
			t.Errorf("ParseKind(%q) = %q, %v", s, k, err)
		}
	}
	if _, err := ParseKind("setor"); err == nil {
		t.Error("ParseKind should reject unknown groupings")
	}
}

func TestAccountsWithRF(t *testing.T) {
	holdings := []Holding{
		holding("1001", "CDB", "", "", 100),
		holding("1001", "LCI", "", "", 50), // same account twice
		holding("1002", "CDB", "", "", 0),  // zero value does not count
		holding("1003", "CRI", "", "", 25),
	}
	if got := AccountsWithRF(holdings); got != 2 {
		t.Errorf("AccountsWithRF = %d, want 2", got)
	}
}

func TestTotalRF(t *testing.T) {
	holdings := []Holding{
		holding("1", "CDB", "", "", 90),
		holding("2", "CRI", "", "", 50),
	}
	if got := TotalRF(holdings); !got.Equal(dec(140)) {
		t.Errorf("TotalRF = %s, want 140", got)
	}
}
