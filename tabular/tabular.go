// Package tabular loads raw position exports into a dataframe.
//
// Brokerage back offices export fixed-income positions as semicolon-delimited
// CSV (decimal comma, frequently ISO8859-1 encoded) or as XLSX workbooks.
// This package only gets the raw table into memory with its original column
// names; all interpretation of the columns happens downstream.
package tabular

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/go-gota/gota/dataframe"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Delimiter is the field separator used by the position CSV exports.
const Delimiter = ';'

// ReadFile loads a position export by path, dispatching on the file extension.
// ".xlsx" and ".xls" are read as workbooks, everything else as CSV.
func ReadFile(path string) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("cannot open position file: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		return ReadXLSX(f)
	default:
		return ReadCSV(f)
	}
}

// ReadCSV reads a semicolon-delimited CSV export into a dataframe.
//
// All cells are kept as strings: with decimal commas in play, type detection
// would guess wrong, so numeric coercion is left to the schema normalizer.
// Files that are not valid UTF-8 are decoded as ISO8859-1 first.
func ReadCSV(r io.Reader) (dataframe.DataFrame, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("cannot read position file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("position file is empty")
	}
	if !utf8.Valid(data) {
		// Legacy back-office exports are ISO8859-1.
		data, err = io.ReadAll(transform.NewReader(bytes.NewReader(data), charmap.ISO8859_1.NewDecoder()))
		if err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("cannot decode position file as ISO8859-1: %w", err)
		}
	}

	df := dataframe.ReadCSV(bytes.NewReader(data),
		dataframe.WithDelimiter(Delimiter),
		dataframe.WithLazyQuotes(true),
		dataframe.DetectTypes(false),
	)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("cannot parse position CSV: %w", df.Err)
	}
	return df, nil
}

// ReadXLSX reads the first sheet of an XLSX workbook into a dataframe.
// The first row is the header; shorter data rows are padded with empty cells.
func ReadXLSX(r io.Reader) (dataframe.DataFrame, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("cannot open workbook: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("workbook has no sheets")
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("cannot read sheet %q: %w", sheets[0], err)
	}
	if len(rows) < 1 || len(rows[0]) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("sheet %q has no header row", sheets[0])
	}

	width := len(rows[0])
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		// GetRows trims trailing empty cells, LoadRecords wants a rectangle.
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			row = padded
		} else if len(row) > width {
			row = row[:width]
		}
		records = append(records, row)
	}

	df := dataframe.LoadRecords(records, dataframe.DetectTypes(false))
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("cannot load sheet %q: %w", sheets[0], df.Err)
	}
	return df, nil
}
