package mesarf

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/rdpreg/mesa-rf/date"
	"github.com/shopspring/decimal"
)

// Field names a canonical column of the holding record. The values follow the
// internal names the desk has always used for this report.
type Field string

const (
	FieldDate    Field = "data_ref"
	FieldAccount Field = "conta"
	FieldClient  Field = "cliente"
	FieldIssuer  Field = "emissor"
	FieldAsset   Field = "ativo"
	FieldProduct Field = "tipo_produto"
	FieldValueA  Field = "valor_a" // first valuation curve
	FieldValueB  Field = "valor_b" // second valuation curve
)

// Mapping maps raw column names of the export to canonical fields.
// Canonical fields left unmapped are treated as absent optional columns.
type Mapping map[string]Field

// Fixed-schema contract: the column names one specific back office exports
// verbatim. The minimum required set plus at least one value column must be
// present; Nome and Emissor are optional.
const (
	HeaderAccount     = "Conta"
	HeaderProduct     = "Produto"
	HeaderAsset       = "Ativo"
	HeaderClient      = "Nome"
	HeaderIssuer      = "Emissor"
	HeaderGrossClient = "Valor Bruto - Curva Cliente"
	HeaderGrossMarket = "Valor Bruto - Curva Mercado"
	HeaderNetClient   = "Valor Líquido - Curva Cliente"
)

// fixedValueHeaders lists recognized value columns in precedence order: the
// first two found become the holding's candidate pair.
var fixedValueHeaders = []string{HeaderGrossClient, HeaderGrossMarket, HeaderNetClient}

// SchemaError reports a position file whose headers do not satisfy the
// schema contract. It is a fatal condition: the run stops, nothing is rendered.
type SchemaError struct {
	Missing []string // required headers that were not found
	Headers []string // every header actually present, for diagnosis
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("position file is missing required columns %v (columns present: %v)",
		e.Missing, e.Headers)
}

// NormalizeFixed maps a fixed-schema export onto holdings.
//
// The required headers (Conta, Produto, Ativo) must be present verbatim, and
// at least one recognized value column must exist; otherwise a *SchemaError
// enumerating the gaps is returned. refDate is broadcast to every row, since
// this export carries no per-row date.
func NormalizeFixed(df dataframe.DataFrame, refDate date.Date) ([]Holding, error) {
	headers := df.Names()
	index := headerIndex(headers)

	var missing []string
	for _, h := range []string{HeaderAccount, HeaderProduct, HeaderAsset} {
		if _, ok := index[h]; !ok {
			missing = append(missing, h)
		}
	}
	var valueCols []int
	for _, h := range fixedValueHeaders {
		if col, ok := index[h]; ok {
			valueCols = append(valueCols, col)
		}
	}
	if len(valueCols) == 0 {
		missing = append(missing, fmt.Sprintf("one of %v", fixedValueHeaders))
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing, Headers: headers}
	}
	if len(valueCols) > 2 {
		// All three curves present: the two gross curves win.
		valueCols = valueCols[:2]
	}

	cols := columns{
		account: index[HeaderAccount],
		product: index[HeaderProduct],
		asset:   index[HeaderAsset],
		client:  optionalColumn(index, HeaderClient),
		issuer:  optionalColumn(index, HeaderIssuer),
		date:    -1,
		valueA:  valueCols[0],
		valueB:  -1,
	}
	if len(valueCols) > 1 {
		cols.valueB = valueCols[1]
	}
	return normalize(df, cols, refDate), nil
}

// NormalizeMapped maps an arbitrary export onto holdings using a caller
// supplied column mapping.
//
// The mapping must cover account, product type, asset name and at least one
// value column; anything else is optional and absent fields become nulls.
// Dates are parsed per row from the mapped date column when there is one;
// rows with no parseable date fall back to fallbackDate.
func NormalizeMapped(df dataframe.DataFrame, mapping Mapping, fallbackDate date.Date) ([]Holding, error) {
	headers := df.Names()
	index := headerIndex(headers)

	cols := columns{account: -1, product: -1, asset: -1, client: -1, issuer: -1, date: -1, valueA: -1, valueB: -1}
	var unknown []string
	for raw, field := range mapping {
		col, ok := index[raw]
		if !ok {
			unknown = append(unknown, raw)
			continue
		}
		switch field {
		case FieldDate:
			cols.date = col
		case FieldAccount:
			cols.account = col
		case FieldClient:
			cols.client = col
		case FieldIssuer:
			cols.issuer = col
		case FieldAsset:
			cols.asset = col
		case FieldProduct:
			cols.product = col
		case FieldValueA:
			cols.valueA = col
		case FieldValueB:
			cols.valueB = col
		default:
			return nil, fmt.Errorf("unknown canonical field %q for column %q", field, raw)
		}
	}
	if len(unknown) > 0 {
		return nil, &SchemaError{Missing: unknown, Headers: headers}
	}

	var missing []string
	if cols.account < 0 {
		missing = append(missing, string(FieldAccount))
	}
	if cols.product < 0 {
		missing = append(missing, string(FieldProduct))
	}
	if cols.asset < 0 {
		missing = append(missing, string(FieldAsset))
	}
	if cols.valueA < 0 && cols.valueB < 0 {
		missing = append(missing, string(FieldValueA))
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing, Headers: headers}
	}
	return normalize(df, cols, fallbackDate), nil
}

// columns holds resolved column indexes into the raw dataframe, -1 for absent.
type columns struct {
	date, account, client, issuer, asset, product, valueA, valueB int
}

func headerIndex(headers []string) map[string]int {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[h] = i
	}
	return index
}

func optionalColumn(index map[string]int, header string) int {
	if col, ok := index[header]; ok {
		return col
	}
	return -1
}

func normalize(df dataframe.DataFrame, cols columns, fallbackDate date.Date) []Holding {
	cell := func(row, col int) string {
		if col < 0 {
			return ""
		}
		return strings.TrimSpace(df.Elem(row, col).String())
	}

	holdings := make([]Holding, 0, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		h := Holding{
			ReferenceDate: fallbackDate,
			Account:       cell(i, cols.account),
			Client:        cell(i, cols.client),
			Issuer:        cell(i, cols.issuer),
			Asset:         cell(i, cols.asset),
			ProductType:   cell(i, cols.product),
			CandidateA:    ParseDecimal(cell(i, cols.valueA)),
			CandidateB:    ParseDecimal(cell(i, cols.valueB)),
		}
		if cols.date >= 0 {
			if d, err := date.Parse(cell(i, cols.date)); err == nil {
				h.ReferenceDate = d
			}
		}
		holdings = append(holdings, h)
	}
	return holdings
}

// thousandsOnly matches integers written with dot thousands separators ("1.234.567").
var thousandsOnly = regexp.MustCompile(`^-?\d{1,3}(\.\d{3})+$`)

// ParseDecimal coerces a raw cell to a decimal, accepting both Brazilian
// notation ("1.234,56") and plain notation ("1234.56"). Unparseable or empty
// cells become nulls, never errors; the resolver handles them downstream.
func ParseDecimal(s string) decimal.NullDecimal {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimPrefix(s, "R$"))
	if s == "" || s == "-" || strings.EqualFold(s, "nan") {
		return decimal.NullDecimal{}
	}
	if strings.ContainsRune(s, ',') {
		// Decimal comma: dots can only be thousands separators.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	} else if thousandsOnly.MatchString(s) {
		s = strings.ReplaceAll(s, ".", "")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}
