// Package renderer renders pipeline results as markdown for terminal display.
package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"
	mesarf "github.com/rdpreg/mesa-rf"
)

// ReportMarkdown renders the daily report: the overview block followed by
// the per-product, per-class and (when available) per-issuer views.
func ReportMarkdown(r *mesarf.Report) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Estoque de Renda Fixa em %s", r.ReferenceDate))
	doc.PlainText(fmt.Sprintf("AuC em Renda Fixa: %s", mesarf.M(r.TotalRF)))
	doc.PlainText(fmt.Sprintf("%% sobre o AuC total: %s", r.PctOfFirm))
	doc.PlainText(fmt.Sprintf("Contas com Renda Fixa: %d", r.Accounts))

	doc.H2("Por produto")
	doc.Table(groupTable(r.ByProduct))

	doc.H2("Por classe")
	doc.Table(groupTable(r.ByClass))

	if r.HasIssuer {
		doc.H2("Por emissor")
		doc.Table(groupTable(r.ByIssuer))
	}

	if len(r.Unresolved) > 0 {
		doc.H2("Produtos sem classe")
		doc.PlainText(fmt.Sprintf("Sem regra e sem escolha manual, foram para a classe de estouro: %v", r.Unresolved))
	}

	return doc.String()
}

func groupTable(rows []mesarf.AggregateRow) md.TableSet {
	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"Categoria", "AuC RF", "% do estoque RF", "% do AuC total"},
		Rows:   [][]string{},
	}
	for _, row := range rows {
		table.Rows = append(table.Rows, []string{
			categoryLabel(row.Category),
			mesarf.M(row.Value).String(),
			row.PctOfRF.String(),
			row.PctOfFirm.String(),
		})
	}
	return table
}

// categoryLabel keeps empty group keys visible instead of rendering a blank cell.
func categoryLabel(category string) string {
	if category == "" {
		return "(sem categoria)"
	}
	return category
}

// HistoryMarkdown renders a monthly pivot as one wide table, months down,
// categories across.
func HistoryMarkdown(kind mesarf.Kind, p *mesarf.MonthlyPivot) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Histórico mensal por %s", kind))

	header := append([]string{"Mês"}, p.Categories...)
	alignment := make([]md.TableAlignment, len(header))
	alignment[0] = md.AlignLeft
	for i := 1; i < len(alignment); i++ {
		alignment[i] = md.AlignRight
	}

	table := md.TableSet{Alignment: alignment, Header: header, Rows: [][]string{}}
	for _, month := range p.Months {
		row := []string{month.Format("2006-01")}
		for _, category := range p.Categories {
			row = append(row, mesarf.M(p.Value(month, category)).String())
		}
		table.Rows = append(table.Rows, row)
	}
	doc.Table(table)

	return doc.String()
}
