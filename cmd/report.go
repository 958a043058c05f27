package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	mesarf "github.com/rdpreg/mesa-rf"
	"github.com/rdpreg/mesa-rf/date"
	"github.com/rdpreg/mesa-rf/renderer"
	"github.com/rdpreg/mesa-rf/tabular"
)

// reportCmd holds the flags for the 'report' subcommand.
type reportCmd struct {
	file      string
	auc       string
	date      string
	save      bool
	mapping   pairsFlag
	overrides pairsFlag
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "compute the fixed-income stock report from a position file" }
func (*reportCmd) Usage() string {
	return `mesa report -f <position-file> -auc <total-auc> [-d <date>] [-map <col=field> ...] [-set <code=class> ...] [-save]

  Runs the full pipeline over a position export (CSV or XLSX): normalizes the
  columns, resolves one fixed-income value per holding, classifies every
  holding, and prints the exposure views by product, class and issuer.

  Without -map flags the file must follow the fixed back-office schema and -d
  is required. With -map flags, columns are mapped onto canonical fields
  (conta, tipo_produto, ativo, valor_a, ...) and the date comes from the
  mapped date column, falling back to -d.

  -set resolves product-type codes the taxonomy does not cover; run
  'mesa pending' first to list them.

Usage Examples:
# Fixed-schema export, R$ 25M of total AuC, saved into the history.
$ mesa report -f posicao.csv -auc 25000000 -d 2026-08-29 -save

# Arbitrary export with explicit column mapping and one manual class.
$ mesa report -f estoque.xlsx -auc 25000000 \
    -map Conta=conta -map Papel=tipo_produto -map Descricao=ativo \
    -map Bruto=valor_a -map Liquido=valor_b -map Data=data_ref \
    -set COE=Outros
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "f", "", "Position file to report on (CSV or XLSX)")
	f.StringVar(&c.auc, "auc", "", "Total AuC of the desk, the firm-wide percentage denominator")
	f.StringVar(&c.date, "d", "", "Reference date of the position (required with the fixed schema)")
	f.BoolVar(&c.save, "save", false, "Append this day's summary to the history file")
	f.Var(&c.mapping, "map", "Column mapping as raw-column=canonical-field, repeatable")
	f.Var(&c.overrides, "set", "Manual class for an unresolved product-type code, as code=class, repeatable")
}

func (c *reportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.file == "" {
		fmt.Fprintln(os.Stderr, "-f is required")
		return subcommands.ExitUsageError
	}
	auc := mesarf.ParseDecimal(c.auc)
	if !auc.Valid || !auc.Decimal.IsPositive() {
		fmt.Fprintf(os.Stderr, "-auc must be a strictly positive amount, got %q\n", c.auc)
		return subcommands.ExitUsageError
	}

	var refDate date.Date
	if c.date != "" {
		var err error
		if refDate, err = date.Parse(c.date); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			return subcommands.ExitUsageError
		}
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

	report, err := mesarf.Run(df, mesarf.Params{
		FirmAuC:       auc.Decimal,
		ReferenceDate: refDate,
		Mapping:       mapping,
		Rules:         rules,
		Overrides:     c.overrides.pairs,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.ReportMarkdown(report))

	if c.save {
		if err := mesarf.AppendHistory(*historyFile, report.SummaryEntries()); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Summary for %s appended to %s\n", report.ReferenceDate, *historyFile)
	}
	return subcommands.ExitSuccess
}
