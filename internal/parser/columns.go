package parser

import (
	"regexp"
	"strings"

	gohtml "golang.org/x/net/html"

	"github.com/insightdelivered/fiscal-fox/internal/dom"
)

// ColumnMap maps semantic roles to header cell indices. -1 means the role
// was not found.
type ColumnMap struct {
	DateIdx   int `json:"dateIdx"`
	DescIdx   int `json:"descIdx"`
	DebitIdx  int `json:"debitIdx"`
	CreditIdx int `json:"creditIdx"`
	AmountIdx int `json:"amountIdx"`
}

// Header keyword patterns, matched against lower-cased cell text.
var (
	dateHeaderPattern   = regexp.MustCompile(`\bdate\b`)
	descHeaderPattern   = regexp.MustCompile(`description|details|memo|payee|merchant|transactions?`)
	debitHeaderPattern  = regexp.MustCompile(`\b(debit|withdrawal|withdrawals|out|charge)\b`)
	creditHeaderPattern = regexp.MustCompile(`\b(credit|deposit|deposits)\b`)
	amountHeaderPattern = regexp.MustCompile(`\bamount\b`)
)

// HasUsefulHeaders reports whether the map locates a date or an amount
// column, enough to read body rows by index.
func (c ColumnMap) HasUsefulHeaders() bool {
	return c.DateIdx >= 0 || c.DebitIdx >= 0 || c.AmountIdx >= 0
}

// HasDirectionColumns reports whether the table splits money into separate
// debit and/or credit columns.
func (c ColumnMap) HasDirectionColumns() bool {
	return c.DebitIdx >= 0 || c.CreditIdx >= 0
}

// usedIndices lists the cells claimed by a role other than description.
func (c ColumnMap) usedIndices() []int {
	var out []int
	for _, i := range []int{c.DateIdx, c.DebitIdx, c.CreditIdx, c.AmountIdx} {
		if i >= 0 {
			out = append(out, i)
		}
	}
	return out
}

// GetColumnMap classifies the header cells of a table row. The first
// matching column wins for each role.
func GetColumnMap(headerRow *gohtml.Node) ColumnMap {
	headers := headerTexts(headerRow)
	return ColumnMap{
		DateIdx:   findHeader(headers, dateHeaderPattern),
		DescIdx:   findHeader(headers, descHeaderPattern),
		DebitIdx:  findHeader(headers, debitHeaderPattern),
		CreditIdx: findHeader(headers, creditHeaderPattern),
		AmountIdx: findHeader(headers, amountHeaderPattern),
	}
}

func headerTexts(row *gohtml.Node) []string {
	cells := dom.Find(row, "th, td")
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.ToLower(displayText(c))
	}
	return out
}

func findHeader(headers []string, p *regexp.Regexp) int {
	for i, h := range headers {
		if p.MatchString(h) {
			return i
		}
	}
	return -1
}

// tableLayout is what the table strategy learns about one table.
type tableLayout struct {
	rows    []*gohtml.Node
	header  *gohtml.Node
	columns ColumnMap
}

// layoutOf locates a table's rows and header row and classifies its columns.
// The header is the first row holding a <th>, else the first row.
func layoutOf(table *gohtml.Node) tableLayout {
	rows := dom.Find(table, "tr")
	if len(rows) == 0 {
		return tableLayout{columns: ColumnMap{-1, -1, -1, -1, -1}}
	}
	header := rows[0]
	for _, r := range rows {
		if dom.Has(r, "th") {
			header = r
			break
		}
	}
	return tableLayout{rows: rows, header: header, columns: GetColumnMap(header)}
}

// tableIndex memoises table layouts for one extraction run.
type tableIndex map[*gohtml.Node]tableLayout

func (ti tableIndex) layout(table *gohtml.Node) tableLayout {
	if l, ok := ti[table]; ok {
		return l
	}
	l := layoutOf(table)
	ti[table] = l
	return l
}

// coveredByColumns reports whether n sits in a row of a table whose header
// names debit or credit columns. The table strategy reads those rows by
// column, and a whole-row scan would misread credit-column amounts.
func (ti tableIndex) coveredByColumns(n *gohtml.Node) bool {
	row := dom.Closest(n, "tr")
	if row == nil {
		return false
	}
	table := dom.Closest(row, "table")
	if table == nil {
		return false
	}
	l := ti.layout(table)
	return len(l.rows) >= 2 && row != l.header && l.columns.HasDirectionColumns()
}
