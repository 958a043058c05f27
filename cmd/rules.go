package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

// rulesCmd holds the flags for the 'rules' subcommand.
type rulesCmd struct {
	fixed bool
}

func (*rulesCmd) Name() string     { return "rules" }
func (*rulesCmd) Synopsis() string { return "print the active classification rule set" }
func (*rulesCmd) Usage() string {
	return `mesa rules [-fixed]

  Prints the active rule set as JSON, exactly in the format -rules accepts.
  Useful as a starting point to customize the taxonomy: redirect to a file,
  edit the code sets or the labels, and pass it back with -rules.
`
}

func (c *rulesCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.fixed, "fixed", false, "Print the fixed-schema variant of the built-in taxonomy")
}

func (c *rulesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rules, err := loadRules(c.fixed)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	data, err := json.MarshalIndent(rules, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Println(string(data))
	return subcommands.ExitSuccess
}
