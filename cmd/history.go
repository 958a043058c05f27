package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	mesarf "github.com/rdpreg/mesa-rf"
	"github.com/rdpreg/mesa-rf/renderer"
)

// historyCmd holds the flags for the 'history' subcommand.
type historyCmd struct {
	kind string
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "display the month-over-month series from the history" }
func (*historyCmd) Usage() string {
	return `mesa history [-k total|produto|classe|emissor]

  Rebuilds the monthly series from the saved daily summaries and prints one
  month-by-category table. Days saved twice count twice: the history is
  append-only and a re-saved date accumulates.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "k", "total", "Grouping to display (total, produto, classe, emissor)")
}

func (c *historyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	kind, err := mesarf.ParseKind(c.kind)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	history, err := mesarf.ReadHistory(*historyFile)
	if errors.Is(err, mesarf.ErrNoHistory) {
		fmt.Printf("No history in %s yet. Run 'mesa report -save' to start one.\n", *historyFile)
		return subcommands.ExitSuccess
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	pivot, err := history.MonthlySeries(kind)
	if errors.Is(err, mesarf.ErrNoHistory) {
		fmt.Printf("No %q entries in the history yet.\n", kind)
		return subcommands.ExitSuccess
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.HistoryMarkdown(kind, pivot))
	return subcommands.ExitSuccess
}
