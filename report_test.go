package mesarf

import (
	"reflect"
	"testing"

	"github.com/rdpreg/mesa-rf/date"
	"github.com/shopspring/decimal"
)

// fixedExport is the e2e fixture: a CDB valued on two curves (min wins) and a
// CRI with one curve missing.
func fixedExport(t *testing.T) [][]string {
	t.Helper()
	return [][]string{
		{"Conta", "Nome", "Emissor", "Produto", "Ativo", "Valor Bruto - Curva Cliente", "Valor Bruto - Curva Mercado"},
		{"1001", "Cliente A", "Banco X", "CDB", "CDB BANCO X 2027", "100,00", "90,00"},
		{"1002", "Cliente B", "Sec Y", "CRI", "CRI SHOPPING Y", "50,00", ""},
	}
}

func TestRun_fixedSchema(t *testing.T) {
	df := loadTable(t, fixedExport(t))

	r, err := Run(df, Params{
		FirmAuC:       dec(1000),
		ReferenceDate: date.MustParse("2026-08-28"),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !r.TotalRF.Equal(dec(140)) {
		t.Errorf("TotalRF = %s, want 140", r.TotalRF)
	}
	if !r.PctOfFirm.Equal(14) {
		t.Errorf("PctOfFirm = %s, want 14.00%%", r.PctOfFirm)
	}
	if r.Accounts != 2 {
		t.Errorf("Accounts = %d, want 2", r.Accounts)
	}
	if r.ReferenceDate != date.MustParse("2026-08-28") {
		t.Errorf("ReferenceDate = %s", r.ReferenceDate)
	}

	byClass := map[string]decimal.Decimal{}
	for _, row := range r.ByClass {
		byClass[row.Category] = row.Value
	}
	if !byClass["Bancário"].Equal(dec(90)) {
		t.Errorf("Bancário = %s, want 90 (min of the two curves)", byClass["Bancário"])
	}
	if !byClass["Crédito Privado"].Equal(dec(50)) {
		t.Errorf("Crédito Privado = %s, want 50", byClass["Crédito Privado"])
	}

	for _, row := range r.ByClass {
		if row.Category == "Bancário" && !row.PctOfFirm.Equal(9) {
			t.Errorf("Bancário PctOfFirm = %s, want 9.00%%", row.PctOfFirm)
		}
	}

	if !r.HasIssuer {
		t.Fatal("export has an Emissor column, HasIssuer should be true")
	}
	if len(r.ByIssuer) != 2 {
		t.Errorf("ByIssuer has %d rows, want 2", len(r.ByIssuer))
	}
	if len(r.Unresolved) != 0 {
		t.Errorf("Unresolved = %v, want none", r.Unresolved)
	}
}

func TestRun_fixedSchema_requiresDate(t *testing.T) {
	df := loadTable(t, fixedExport(t))
	if _, err := Run(df, Params{FirmAuC: dec(1000)}); err == nil {
		t.Error("fixed schema without a reference date should fail")
	}
}

func TestRun_rejectsNonPositiveAuC(t *testing.T) {
	df := loadTable(t, fixedExport(t))
	for _, auc := range []decimal.Decimal{decimal.Zero, dec(-5)} {
		if _, err := Run(df, Params{FirmAuC: auc, ReferenceDate: date.Today()}); err == nil {
			t.Errorf("firm AuC %s should be rejected", auc)
		}
	}
}

func TestRun_unresolvedAndOverrides(t *testing.T) {
	records := [][]string{
		{"Conta", "Produto", "Ativo", "Valor Bruto - Curva Cliente"},
		{"1001", "CDB", "CDB BANCO X", "100,00"},
		{"1002", "XYZ", "PAPEL DESCONHECIDO", "30,00"},
	}
	df := loadTable(t, records)
	params := Params{FirmAuC: dec(1000), ReferenceDate: date.MustParse("2026-08-28")}

	// Without an override the unknown code is flagged and lands in the
	// overflow bucket.
	r, err := Run(df, params)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if want := []string{"XYZ"}; !reflect.DeepEqual(r.Unresolved, want) {
		t.Errorf("Unresolved = %v, want %v", r.Unresolved, want)
	}
	if !classValue(r, "Outros").Equal(dec(30)) {
		t.Errorf("Outros = %s, want 30", classValue(r, "Outros"))
	}

	// An operator override reroutes the code and clears the warning.
	params.Overrides = map[string]string{"xyz": "Crédito Privado"}
	r, err = Run(df, params)
	if err != nil {
		t.Fatalf("Run with overrides: %v", err)
	}
	if len(r.Unresolved) != 0 {
		t.Errorf("Unresolved = %v, want none after override", r.Unresolved)
	}
	if !classValue(r, "Crédito Privado").Equal(dec(30)) {
		t.Errorf("Crédito Privado = %s, want 30", classValue(r, "Crédito Privado"))
	}

	// Overriding to a label outside the taxonomy is an error.
	params.Overrides = map[string]string{"XYZ": "Classe Inventada"}
	if _, err := Run(df, params); err == nil {
		t.Error("override to an unknown class should fail")
	}
}

func classValue(r *Report, category string) decimal.Decimal {
	for _, row := range r.ByClass {
		if row.Category == category {
			return row.Value
		}
	}
	return decimal.Zero
}

func TestRun_mappedSchema_maxRowDate(t *testing.T) {
	records := [][]string{
		{"Data", "Cod", "Papel", "Descricao", "Bruto"},
		{"2026-08-27", "1", "CDB", "CDB A", "100,00"},
		{"2026-08-28", "2", "LCI", "LCI B", "200,00"},
	}
	df := loadTable(t, records)

	r, err := Run(df, Params{
		FirmAuC: dec(1000),
		Mapping: Mapping{
			"Data":      FieldDate,
			"Cod":       FieldAccount,
			"Papel":     FieldProduct,
			"Descricao": FieldAsset,
			"Bruto":     FieldValueA,
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if want := date.MustParse("2026-08-28"); r.ReferenceDate != want {
		t.Errorf("ReferenceDate = %s, want the latest row date %s", r.ReferenceDate, want)
	}
	if r.HasIssuer {
		t.Error("no issuer mapped, HasIssuer should be false")
	}
	if r.ByIssuer != nil {
		t.Errorf("ByIssuer should be absent, got %v", r.ByIssuer)
	}
	// Default taxonomy in mapped mode uses the plural labels.
	if !classValue(r, "Bancários").Equal(dec(300)) {
		t.Errorf("Bancários = %s, want 300", classValue(r, "Bancários"))
	}
}

func TestRun_mappedSchema_noDateAnywhere(t *testing.T) {
	records := [][]string{
		{"Cod", "Papel", "Descricao", "Bruto"},
		{"1", "CDB", "CDB A", "100,00"},
	}
	df := loadTable(t, records)
	_, err := Run(df, Params{
		FirmAuC: dec(1000),
		Mapping: Mapping{
			"Cod":       FieldAccount,
			"Papel":     FieldProduct,
			"Descricao": FieldAsset,
			"Bruto":     FieldValueA,
		},
	})
	if err == nil {
		t.Error("no date column and no fallback date should fail")
	}
}

func TestReport_SummaryEntries(t *testing.T) {
	df := loadTable(t, fixedExport(t))
	r, err := Run(df, Params{FirmAuC: dec(1000), ReferenceDate: date.MustParse("2026-08-28")})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	entries := r.SummaryEntries()
	// 1 total + 2 products + 2 classes + 2 issuers.
	if len(entries) != 7 {
		t.Fatalf("got %d entries, want 7", len(entries))
	}

	total := entries[0]
	if total.Kind != KindTotal || total.Category != TotalCategory {
		t.Errorf("first entry must be the total row, got %+v", total)
	}
	if !total.ValueRF.Equal(dec(140)) || !total.FirmAuC.Equal(dec(1000)) {
		t.Errorf("total entry values = %s / %s, want 140 / 1000", total.ValueRF, total.FirmAuC)
	}
	for _, e := range entries {
		if e.Date != r.ReferenceDate {
			t.Errorf("every entry carries the reference date, got %s", e.Date)
		}
		if !e.FirmAuC.Equal(dec(1000)) {
			t.Errorf("every entry carries the firm AuC, got %s", e.FirmAuC)
		}
	}
}
