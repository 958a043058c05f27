// Package cmd implements the CLI application behind the mesa binary.
package cmd

import (
	"flag"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	mesarf "github.com/rdpreg/mesa-rf"
)

// Commands lists every subcommand. A main package registers them on a
// commander and executes the user-selected one.
var Commands = []subcommands.Command{
	&reportCmd{},
	&pendingCmd{},
	&historyCmd{},
	&rulesCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var historyFile = flag.String("history-file", "historico_rf.jsonl", "Path to the history file of daily summaries (JSONL format)")
var rulesFile = flag.String("rules", "", "Path to a JSON classification rule set. Empty uses the built-in taxonomy")

// loadRules returns the active rule set: the -rules file when given, else the
// built-in variant matching the schema mode.
func loadRules(fixedSchema bool) (*mesarf.RuleSet, error) {
	if *rulesFile != "" {
		return mesarf.LoadRuleSet(*rulesFile)
	}
	if fixedSchema {
		return mesarf.DeskRules, nil
	}
	return mesarf.DefaultRules, nil
}

// printMarkdown renders markdown content for the terminal. If rendering
// fails, the raw markdown is still usable output.
func printMarkdown(content string) {
	out, err := glamour.Render(content, "auto")
	if err != nil {
		fmt.Print(content)
		return
	}
	fmt.Print(out)
}

// pairsFlag collects repeated "key=value" flags into a map.
type pairsFlag struct {
	pairs map[string]string
}

func (p *pairsFlag) String() string {
	if p == nil || len(p.pairs) == 0 {
		return ""
	}
	items := make([]string, 0, len(p.pairs))
	for k, v := range p.pairs {
		items = append(items, k+"="+v)
	}
	sort.Strings(items)
	return strings.Join(items, ",")
}

func (p *pairsFlag) Set(value string) error {
	key, val, ok := strings.Cut(value, "=")
	if !ok || key == "" || val == "" {
		return fmt.Errorf("want key=value, got %q", value)
	}
	if p.pairs == nil {
		p.pairs = make(map[string]string)
	}
	p.pairs[key] = val
	return nil
}

// canonicalFields is the vocabulary accepted on the right side of -map.
var canonicalFields = map[string]mesarf.Field{
	string(mesarf.FieldDate):    mesarf.FieldDate,
	string(mesarf.FieldAccount): mesarf.FieldAccount,
	string(mesarf.FieldClient):  mesarf.FieldClient,
	string(mesarf.FieldIssuer):  mesarf.FieldIssuer,
	string(mesarf.FieldAsset):   mesarf.FieldAsset,
	string(mesarf.FieldProduct): mesarf.FieldProduct,
	string(mesarf.FieldValueA):  mesarf.FieldValueA,
	string(mesarf.FieldValueB):  mesarf.FieldValueB,
}

// mappingFromPairs converts -map flags into a schema mapping. An empty set
// of pairs means the fixed-schema mode (nil mapping).
func mappingFromPairs(pairs map[string]string) (mesarf.Mapping, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	mapping := make(mesarf.Mapping, len(pairs))
	for raw, fieldName := range pairs {
		field, ok := canonicalFields[fieldName]
		if !ok {
			return nil, fmt.Errorf("unknown canonical field %q for column %q (want one of: %s)",
				fieldName, raw, fieldNames())
		}
		mapping[raw] = field
	}
	return mapping, nil
}

func fieldNames() string {
	names := make([]string, 0, len(canonicalFields))
	for name := range canonicalFields {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
