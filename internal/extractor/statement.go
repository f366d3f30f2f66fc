package extractor

import (
	"regexp"
	"strings"

	gohtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/insightdelivered/fiscal-fox/internal/dom"
)

// columnSplitPattern separates statement columns in extracted PDF lines.
var columnSplitPattern = regexp.MustCompile(`\t+|\s{2,}`)

// PDFDocument lays the lines of extracted statement pages out as a single
// <table> so the extraction engine can read a PDF like a statement page. Each
// line becomes a row with one cell per column; the first line naming a date
// column next to another statement column becomes the header row.
//
// Statements with separate paid-out and paid-in columns are rewritten into a
// Date | Description | Amount | Balance table with DR/CR marked amounts (see
// ledgerRows). Statements whose slash dates prove day-first ordering get
// those dates spelled with a month name.
func PDFDocument(pages []string) *dom.Document {
	var lines [][]string
	for _, page := range pages {
		for _, line := range strings.Split(page, "\n") {
			if cells := splitColumns(line); len(cells) > 0 {
				lines = append(lines, cells)
			}
		}
	}

	header := -1
	for i, cells := range lines {
		if isHeaderLine(cells) {
			header = i
			break
		}
	}

	var rows [][]string
	headerRow := -1
	if header >= 0 && isLedgerHeader(lines[header]) {
		rows, headerRow = ledgerRows(lines[header+1:]), 0
	} else {
		for i, cells := range lines {
			if i == header {
				headerRow = len(rows)
			}
			// a single column carries no transaction
			if len(cells) >= 2 {
				rows = append(rows, cells)
			}
		}
	}

	if dayFirst(rows) {
		for _, r := range rows {
			r[0] = namedMonthDate(r[0])
		}
	}

	tbody := element(atom.Tbody)
	for i, cells := range rows {
		cellTag := atom.Td
		if i == headerRow {
			cellTag = atom.Th
		}
		tr := element(atom.Tr)
		for _, c := range cells {
			tr.AppendChild(element(cellTag, text(c)))
		}
		tbody.AppendChild(tr)
	}

	root := &gohtml.Node{Type: gohtml.DocumentNode}
	root.AppendChild(element(atom.Html,
		element(atom.Head),
		element(atom.Body, element(atom.Table, tbody)),
	))
	return dom.FromNode(root)
}

var headerWords = []string{"description", "details", "transaction", "amount", "paid", "balance", "money", "debit", "credit", "withdrawal", "deposit"}

func isHeaderLine(cells []string) bool {
	if len(cells) < 2 {
		return false
	}
	lower := strings.ToLower(strings.Join(cells, " "))
	return strings.Contains(lower, "date") && containsAny(lower, headerWords)
}

func splitColumns(line string) []string {
	var cells []string
	for _, c := range columnSplitPattern.Split(strings.TrimSpace(line), -1) {
		if c = strings.TrimSpace(c); c != "" {
			cells = append(cells, c)
		}
	}
	return cells
}

func element(a atom.Atom, children ...*gohtml.Node) *gohtml.Node {
	n := &gohtml.Node{Type: gohtml.ElementNode, DataAtom: a, Data: a.String()}
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

func text(s string) *gohtml.Node {
	return &gohtml.Node{Type: gohtml.TextNode, Data: s}
}
