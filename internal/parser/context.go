package parser

import (
	"unicode/utf8"

	gohtml "golang.org/x/net/html"

	"github.com/insightdelivered/fiscal-fox/internal/dom"
)

const (
	// maxAncestorHops bounds the div-layout sibling search.
	maxAncestorHops = 6
	// maxLabelLen is the longest sibling text still treated as a column label.
	maxLabelLen = 50
)

// contextTier inspects the surroundings of an element and decides whether it
// sits in a debit column. ok is false when the tier has no opinion.
type contextTier func(el *gohtml.Node) (debit bool, ok bool)

// debitContextChain is evaluated in order; the first tier to decide wins.
var debitContextChain = []contextTier{
	debitCellInRow,
	tableHeaderContext,
	ariaHeaderContext,
	siblingLabelContext,
}

// HasDebitHeaderNearby reports whether el lives in a debit / withdrawal
// context. False means the context is unknown, not that el is a credit.
func HasDebitHeaderNearby(el *gohtml.Node) bool {
	for _, tier := range debitContextChain {
		if debit, ok := tier(el); ok {
			return debit
		}
	}
	return false
}

// debitCellInRow: the row has a debit-classed cell holding a dollar amount.
// Deposit rows on such sites carry an empty or "Not applicable" debit cell,
// so an empty cell is not a decision.
func debitCellInRow(el *gohtml.Node) (bool, bool) {
	row := dom.Closest(el, "tr")
	if row == nil {
		return false, false
	}
	cell := dom.FindClassed(row, "td", debitClassMarkers...)
	if cell != nil && dollarDigitPattern.MatchString(cellText(cell)) {
		return true, true
	}
	return false, false
}

// tableHeaderContext: inside a real <table> its header cells decide.
func tableHeaderContext(el *gohtml.Node) (bool, bool) {
	table := dom.Closest(el, "table")
	if table == nil {
		return false, false
	}
	return anyDebitLabel(dom.Find(table, `th, [role="columnheader"], thead td`)), true
}

// ariaHeaderContext: inside an ARIA table or grid its column headers decide.
func ariaHeaderContext(el *gohtml.Node) (bool, bool) {
	grid := dom.Closest(el, `[role="table"], [role="grid"]`)
	if grid == nil {
		return false, false
	}
	return anyDebitLabel(dom.Find(grid, `[role="columnheader"]`)), true
}

// siblingLabelContext handles div layouts: walking up from el, a short
// sibling reading "Debit" or "Withdrawal" labels the column.
func siblingLabelContext(el *gohtml.Node) (bool, bool) {
	node := dom.ParentElement(el)
	for i := 0; i < maxAncestorHops; i++ {
		if node == nil || dom.IsElement(node, "body") {
			break
		}
		for _, s := range dom.Siblings(node) {
			text := displayText(s)
			if utf8.RuneCountInString(text) < maxLabelLen && debitWordPattern.MatchString(text) {
				return true, true
			}
		}
		node = dom.ParentElement(node)
	}
	return false, false
}

func anyDebitLabel(cells []*gohtml.Node) bool {
	for _, c := range cells {
		if debitWordPattern.MatchString(displayText(c)) {
			return true
		}
	}
	return false
}
