package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	mesarf "github.com/rdpreg/mesa-rf"
	"github.com/rdpreg/mesa-rf/date"
	"github.com/rdpreg/mesa-rf/tabular"
)

// pendingCmd holds the flags for the 'pending' subcommand.
type pendingCmd struct {
	file    string
	mapping pairsFlag
}

func (*pendingCmd) Name() string { return "pending" }
func (*pendingCmd) Synopsis() string {
	return "list product-type codes the taxonomy does not classify"
}
func (*pendingCmd) Usage() string {
	return `mesa pending -f <position-file> [-map <col=field> ...]

  Lists the unique product-type codes in the file that no classification rule
  covers, one per line. Feed each one back to 'mesa report' with a
  -set code=class flag, or leave it to fall into the overflow bucket.
`
}

func (c *pendingCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "f", "", "Position file to inspect (CSV or XLSX)")
	f.Var(&c.mapping, "map", "Column mapping as raw-column=canonical-field, repeatable")
}

func (c *pendingCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.file == "" {
		fmt.Fprintln(os.Stderr, "-f is required")
		return subcommands.ExitUsageError
	}
	mapping, err := mappingFromPairs(c.mapping.pairs)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	rules, err := loadRules(mapping == nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	df, err := tabular.ReadFile(c.file)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	// The date is irrelevant for enumerating codes; today keeps rows valid.
	var holdings []mesarf.Holding
	if mapping == nil {
		holdings, err = mesarf.NormalizeFixed(df, date.Today())
	} else {
		holdings, err = mesarf.NormalizeMapped(df, mapping, date.Today())
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	codes := rules.Unresolved(holdings)
	if len(codes) == 0 {
		fmt.Println("Every product-type code is covered by the taxonomy.")
		return subcommands.ExitSuccess
	}
	for _, code := range codes {
		fmt.Println(code)
	}
	fmt.Fprintf(os.Stderr, "Available classes: %s\n", strings.Join(rules.Labels(), ", "))
	return subcommands.ExitSuccess
}
