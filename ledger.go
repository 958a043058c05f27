package mesarf

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"

	"github.com/rdpreg/mesa-rf/date"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Entry is one flattened aggregate row of a daily summary, as persisted in
// the history file. Field names are the file format; changing them orphans
// every history already on disk.
type Entry struct {
	Date     date.Date       `json:"data_ref"`
	Kind     Kind            `json:"tipo"`
	Category string          `json:"categoria"`
	ValueRF  decimal.Decimal `json:"auc_rf"`
	FirmAuC  decimal.Decimal `json:"auc_total_convexa"`
}

// ErrNoHistory is returned when the history file is absent or holds no
// entries, so callers can tell "no data yet" from a real failure.
var ErrNoHistory = errors.New("no history recorded yet")

// History is the full, decoded append-only log of daily summaries.
//
// The log is monotonically growing: appending the same reference date twice
// accumulates both batches, there is no upsert by date. Whether a re-run
// should replace the earlier batch is an open product question; until it is
// answered the tool keeps the accumulating behavior.
type History struct {
	entries []Entry
}

// Entries returns the decoded entries in file order.
func (h *History) Entries() []Entry { return h.entries }

// DecodeHistory decodes a JSONL stream of entries, one JSON object per line.
// A stream with no entries yields ErrNoHistory.
func DecodeHistory(r io.Reader) (*History, error) {
	h := &History{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("cannot parse history line %q: %w", string(line), err)
		}
		h.entries = append(h.entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read history: %w", err)
	}
	if len(h.entries) == 0 {
		return nil, ErrNoHistory
	}
	return h, nil
}

// ReadHistory reads the history file at path. A missing file is ErrNoHistory.
func ReadHistory(path string) (*History, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoHistory
	}
	if err != nil {
		return nil, fmt.Errorf("cannot open history file %q: %w", path, err)
	}
	defer f.Close()
	return DecodeHistory(f)
}

// EncodeEntries writes entries to w in the JSONL history format.
func EncodeEntries(w io.Writer, entries []Entry) error {
	for _, e := range entries {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("cannot marshal history entry: %w", err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("cannot write history entry: %w", err)
		}
	}
	return nil
}

// AppendHistory appends a batch of entries to the history file, creating it
// on first use.
//
// The file is a plain local log with a single-writer assumption: nothing
// guards against two concurrent runs interleaving their batches.
func AppendHistory(path string, entries []Entry) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("cannot open history file %q: %w", path, err)
	}
	defer f.Close()
	return EncodeEntries(f, entries)
}

// MonthlyPivot is a dense month-by-category table of summed values, ready
// for trend rendering. Missing cells are zero.
type MonthlyPivot struct {
	Months     []date.Date // first-of-month buckets, ascending
	Categories []string    // sorted
	values     map[monthCategory]decimal.Decimal
}

type monthCategory struct {
	month    date.Date
	category string
}

// Value returns the summed value for a (month, category) cell.
func (p *MonthlyPivot) Value(month date.Date, category string) decimal.Decimal {
	return p.values[monthCategory{month.StartOfMonth(), category}]
}

// MonthlySeries buckets the history entries of one kind by calendar month,
// sums values per (month, category), and pivots them into a dense table.
// When the history has no entries of that kind, it returns ErrNoHistory.
func (h *History) MonthlySeries(kind Kind) (*MonthlyPivot, error) {
	p := &MonthlyPivot{values: make(map[monthCategory]decimal.Decimal)}
	monthsSeen := make(map[date.Date]bool)
	categoriesSeen := make(map[string]bool)

	for _, e := range h.entries {
		if e.Kind != kind {
			continue
		}
		cell := monthCategory{e.Date.StartOfMonth(), e.Category}
		p.values[cell] = p.values[cell].Add(e.ValueRF)
		monthsSeen[cell.month] = true
		categoriesSeen[cell.category] = true
	}
	if len(p.values) == 0 {
		return nil, ErrNoHistory
	}

	for m := range monthsSeen {
		p.Months = append(p.Months, m)
	}
	sort.Slice(p.Months, func(i, j int) bool { return p.Months[i].Before(p.Months[j]) })
	for c := range categoriesSeen {
		p.Categories = append(p.Categories, c)
	}
	sort.Strings(p.Categories)
	return p, nil
}
