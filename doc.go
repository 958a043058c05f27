// Package mesarf implements the classification and reconciliation pipeline
// behind the fixed-income stock report of an advisory desk.
//
// The pipeline takes a raw position export (arbitrary or fixed column names),
// maps it onto a canonical holding record, resolves a single fixed-income
// value per holding out of competing valuation curves, classifies every
// holding into a small product-class taxonomy, and aggregates exposure by
// product, class and issuer against the desk's total assets under custody.
//
// A per-run summary can be appended to a local history file (JSONL, one entry
// per line) from which month-over-month series are rebuilt. The history is
// append-only and assumes a single writer: re-running a date accumulates a
// second batch of entries for that date instead of replacing the first.
//
// This package serves as the foundational logic for the `mesa` command-line
// tool; it performs no rendering and no file-upload handling of its own.
package mesarf
