package mesarf

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"
)

// ClassRule binds a taxonomy label to the set of product-type codes it covers.
type ClassRule struct {
	Label string   `json:"label"`
	Codes []string `json:"codes"`
}

// RuleSet is the classification taxonomy as configuration data.
//
// Two desks never agree on spellings ("Bancários" vs "Bancário") or on exact
// code membership, so the labels and the sets live in data, not in code: a
// rule set is JSON-serializable and can be swapped per deployment.
type RuleSet struct {
	// Marker is a literal that, found in the asset description or the
	// product-type code (case-insensitive substring), wins over every rule.
	Marker      string `json:"marker"`
	MarkerLabel string `json:"marker_label"`
	// Rules are evaluated in order over the trimmed, upper-cased code;
	// first match wins.
	Rules []ClassRule `json:"rules"`
	// Fallback is the overflow bucket for codes no rule covers.
	Fallback string `json:"fallback"`
	// Ignore is the override choice that sends a code to the fallback bucket.
	Ignore string `json:"ignore"`
}

// DefaultRules is the taxonomy of the flexible-schema panel variant.
var DefaultRules = &RuleSet{
	Marker:      "TESOURO DIRETO",
	MarkerLabel: "Tesouro",
	Rules: []ClassRule{
		{Label: "Bancários", Codes: []string{"CDB", "LCA", "LCI", "LC", "LIG", "LCD"}},
		{Label: "Crédito Privado", Codes: []string{"CRA", "CRI", "CDCA", "DEBENTURES", "DEBENTURE"}},
		{Label: "Títulos Públicos", Codes: []string{"LFT", "LTN", "NTNB", "NTNF", "NTNB-P", "NTNBP"}},
		{Label: "Bancários ex-FGC", Codes: []string{"LF", "LFSN", "LFSC"}},
	},
	Fallback: "Outros",
	Ignore:   "Ignorar",
}

// DeskRules is the variant used with the fixed-schema export. Same code
// sets, singular label spellings.
var DeskRules = &RuleSet{
	Marker:      "TESOURO DIRETO",
	MarkerLabel: "Tesouro",
	Rules: []ClassRule{
		{Label: "Bancário", Codes: []string{"CDB", "LCA", "LCI", "LC", "LIG", "LCD"}},
		{Label: "Crédito Privado", Codes: []string{"CRA", "CRI", "CDCA", "DEBENTURES", "DEBENTURE"}},
		{Label: "Títulos Públicos", Codes: []string{"LFT", "LTN", "NTNB", "NTNF", "NTNB-P", "NTNBP"}},
		{Label: "Bancário ex-FGC", Codes: []string{"LF", "LFSN", "LFSC"}},
	},
	Fallback: "Outros",
	Ignore:   "Ignorar",
}

// LoadRuleSet reads a rule set from a JSON file.
func LoadRuleSet(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read rule set: %w", err)
	}
	var rs RuleSet
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("cannot parse rule set %q: %w", path, err)
	}
	if err := rs.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rule set %q: %w", path, err)
	}
	return &rs, nil
}

// Validate checks the rule set for blanks and duplicate labels.
func (rs *RuleSet) Validate() error {
	if rs.MarkerLabel == "" || rs.Fallback == "" {
		return fmt.Errorf("marker_label and fallback are required")
	}
	seen := map[string]bool{rs.MarkerLabel: true}
	for _, r := range rs.Rules {
		if r.Label == "" {
			return fmt.Errorf("rule with empty label")
		}
		if seen[r.Label] {
			return fmt.Errorf("duplicate label %q", r.Label)
		}
		seen[r.Label] = true
	}
	return nil
}

// Labels returns the choices an operator can pick for an unresolved code:
// every class label plus the ignore choice.
func (rs *RuleSet) Labels() []string {
	labels := make([]string, 0, len(rs.Rules)+2)
	labels = append(labels, rs.MarkerLabel)
	for _, r := range rs.Rules {
		labels = append(labels, r.Label)
	}
	return append(labels, rs.Ignore)
}

// normalizeCode canonicalizes a product-type code for set membership.
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Classify assigns a taxonomy label from the product-type code and the asset
// description. The marker always wins, then the ordered rules; ok is false
// when nothing matched. Pure: same inputs, same answer, no error path.
func (rs *RuleSet) Classify(productType, asset string) (label string, ok bool) {
	if rs.Marker != "" {
		marker := strings.ToUpper(rs.Marker)
		if strings.Contains(strings.ToUpper(asset), marker) ||
			strings.Contains(strings.ToUpper(productType), marker) {
			return rs.MarkerLabel, true
		}
	}
	code := normalizeCode(productType)
	for _, r := range rs.Rules {
		if slices.Contains(r.Codes, code) {
			return r.Label, true
		}
	}
	return "", false
}

// ClassifyAll labels every holding in place, sending unmatched codes straight
// to the fallback bucket. This is the deterministic, no-interaction mode.
func (rs *RuleSet) ClassifyAll(holdings []Holding) {
	for i := range holdings {
		label, ok := rs.Classify(holdings[i].ProductType, holdings[i].Asset)
		if !ok {
			label = rs.Fallback
		}
		holdings[i].Class = label
	}
}

// Unresolved returns the unique product-type codes no rule covers, sorted.
// Rows the rules already classify are excluded; deduplication is by code,
// not by row. This is the enumeration half of the operator-override path.
func (rs *RuleSet) Unresolved(holdings []Holding) []string {
	seen := make(map[string]bool)
	for _, h := range holdings {
		if _, ok := rs.Classify(h.ProductType, h.Asset); ok {
			continue
		}
		code := normalizeCode(h.ProductType)
		if code == "" {
			continue
		}
		seen[code] = true
	}
	codes := make([]string, 0, len(seen))
	for code := range seen {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// ClassifyWithOverrides labels every holding in place, consulting the
// operator's override map for codes the rules leave unresolved. Every row
// sharing an overridden code receives the chosen label; codes mapped to the
// ignore choice, or absent from the map, fall back to the overflow bucket.
//
// An override naming a label outside the rule set's vocabulary is a caller
// error and is reported instead of applied.
func (rs *RuleSet) ClassifyWithOverrides(holdings []Holding, overrides map[string]string) error {
	choices := rs.Labels()
	resolved := make(map[string]string, len(overrides))
	for code, choice := range overrides {
		if !slices.Contains(choices, choice) {
			return fmt.Errorf("override for %q names unknown class %q (choices: %v)", code, choice, choices)
		}
		if choice == rs.Ignore {
			choice = rs.Fallback
		}
		resolved[normalizeCode(code)] = choice
	}

	for i := range holdings {
		label, ok := rs.Classify(holdings[i].ProductType, holdings[i].Asset)
		if !ok {
			label, ok = resolved[normalizeCode(holdings[i].ProductType)]
			if !ok {
				label = rs.Fallback
			}
		}
		holdings[i].Class = label
	}
	return nil
}
