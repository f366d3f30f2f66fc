package parser

import (
	"strings"

	gohtml "golang.org/x/net/html"

	"github.com/insightdelivered/fiscal-fox/internal/dom"
	"github.com/insightdelivered/fiscal-fox/internal/models"
)

// rowMarkers flag elements that single-page banking apps use for
// transaction rows. Matched case-insensitively against class, aria-label and
// data-testid.
var rowMarkers = []string{"transaction", "activity", "history"}

// DivRowStrategy reads elements whose class or test/ARIA attributes name
// them as transaction, activity or history rows.
//
// Example:
//
//	<div class="TransactionRow"><span>Jan 15</span><span>Grocery Store</span><span>-$85.23</span></div>
type DivRowStrategy struct{}

func (s *DivRowStrategy) Name() string {
	return StrategyDivRows
}

func (s *DivRowStrategy) Extract(doc *dom.Document) ([]models.Transaction, error) {
	var transactions []models.Transaction
	tables := tableIndex{}

	for _, el := range dom.Elements(doc.Body(), dom.DefaultSkipList) {
		if !hasRowMarker(el) {
			continue
		}
		if coveredByClassCells(el) || tables.coveredByColumns(el) {
			continue
		}
		// a list wrapper such as "transactions-list" yields to its rows
		if hasRowDescendant(el) {
			continue
		}
		if txn, ok := s.parseElement(el); ok {
			txn.Strategy = StrategyDivRows
			transactions = append(transactions, txn)
		}
	}

	return transactions, nil
}

func (s *DivRowStrategy) parseElement(el *gohtml.Node) (models.Transaction, bool) {
	text := displayText(el)

	dateText := findDate(text)
	amountText := signedAmountPattern.FindString(cellText(el))
	if dateText == "" || amountText == "" {
		return models.Transaction{}, false
	}

	force := models.ForceNone
	if strings.ContainsAny(amountText, "-−(") || HasDebitHeaderNearby(el) {
		force = models.ForceDebit
	}
	amount, ok := ParseAmount(amountText, force)
	if !ok || amount <= 0 {
		return models.Transaction{}, false
	}

	desc := removeFirst(text, dateText)
	desc = removeFirstLoose(desc, amountText)
	desc = strings.TrimSpace(firstLine(strings.TrimSpace(desc)))

	return models.Transaction{
		Date:        dateText,
		Month:       ExtractDateMonth(dateText),
		Description: finishDescription(desc),
		Amount:      amount,
	}, true
}

func hasRowMarker(el *gohtml.Node) bool {
	if dom.ClassContains(el, rowMarkers...) {
		return true
	}
	for _, key := range []string{"aria-label", "data-testid"} {
		v := strings.ToLower(dom.Attr(el, key))
		if v == "" {
			continue
		}
		for _, m := range rowMarkers {
			if strings.Contains(v, m) {
				return true
			}
		}
	}
	return false
}

// hasRowDescendant reports whether a marked element inside el carries both a
// date and an amount, making it the row and el its container.
func hasRowDescendant(el *gohtml.Node) bool {
	for _, d := range dom.Find(el, "*") {
		if hasRowMarker(d) && findDate(displayText(d)) != "" && signedAmountPattern.MatchString(cellText(d)) {
			return true
		}
	}
	return false
}

// coveredByClassCells reports whether el belongs to a row with role-named
// debit/credit cells, which the table strategy already reads.
func coveredByClassCells(el *gohtml.Node) bool {
	row := dom.Closest(el, "tr")
	if row == nil {
		row = el
	}
	return firstCell(row, debitCreditClassMarkers) != nil
}
