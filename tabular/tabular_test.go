package tabular

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestReadCSV(t *testing.T) {
	csv := "Conta;Produto;Ativo;Valor Bruto - Curva Cliente\n" +
		"1001;CDB;CDB BANCO X;1.234,56\n" +
		"1002;CRI;CRI SHOPPING Y;987,00\n"

	df, err := ReadCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}

	wantNames := []string{"Conta", "Produto", "Ativo", "Valor Bruto - Curva Cliente"}
	if got := df.Names(); !reflect.DeepEqual(got, wantNames) {
		t.Errorf("Names() = %v, want %v", got, wantNames)
	}
	if df.Nrow() != 2 {
		t.Fatalf("Nrow() = %d, want 2", df.Nrow())
	}
	// Values must arrive untyped: the decimal comma stays in the string.
	if got := df.Col("Valor Bruto - Curva Cliente").Elem(0).String(); got != "1.234,56" {
		t.Errorf("value cell = %q, want %q", got, "1.234,56")
	}
}

func TestReadCSV_latin1(t *testing.T) {
	// "Valor Líquido" with í encoded as ISO8859-1 (0xED).
	csv := "Conta;Valor L\xedquido - Curva Cliente\n1001;100,00\n"

	df, err := ReadCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	want := []string{"Conta", "Valor Líquido - Curva Cliente"}
	if got := df.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestReadXLSX(t *testing.T) {
	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	rows := [][]interface{}{
		{"Conta", "Produto", "Ativo", "Valor Bruto - Curva Cliente"},
		{"1001", "CDB", "CDB BANCO X", "1.234,56"},
		{"1002", "CRI", "CRI SHOPPING Y"}, // trailing empty cell trimmed by the writer
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := wb.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	buf, err := wb.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}

	df, err := ReadXLSX(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ReadXLSX: %v", err)
	}
	wantNames := []string{"Conta", "Produto", "Ativo", "Valor Bruto - Curva Cliente"}
	if got := df.Names(); !reflect.DeepEqual(got, wantNames) {
		t.Errorf("Names() = %v, want %v", got, wantNames)
	}
	if df.Nrow() != 2 {
		t.Fatalf("Nrow() = %d, want 2", df.Nrow())
	}
	if got := df.Col("Valor Bruto - Curva Cliente").Elem(0).String(); got != "1.234,56" {
		t.Errorf("value cell = %q, want %q", got, "1.234,56")
	}
	// The short row must be padded, not dropped.
	if got := df.Col("Valor Bruto - Curva Cliente").Elem(1).String(); got != "" {
		t.Errorf("padded cell = %q, want empty", got)
	}
}

func TestReadCSV_empty(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader("  \n")); err == nil {
		t.Error("ReadCSV on empty input: want error, got nil")
	}
}
