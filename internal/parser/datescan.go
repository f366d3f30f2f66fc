package parser

import (
	"strings"

	gohtml "golang.org/x/net/html"

	"github.com/insightdelivered/fiscal-fox/internal/dom"
	"github.com/insightdelivered/fiscal-fox/internal/models"
)

// DateScanStrategy anchors on short date-shaped text nodes anywhere under the
// body and reads the surrounding row for an amount and description. It is the
// catch-all for layouts the other strategies do not recognise.
type DateScanStrategy struct{}

func (s *DateScanStrategy) Name() string {
	return StrategyDateScan
}

func (s *DateScanStrategy) Extract(doc *dom.Document) ([]models.Transaction, error) {
	var transactions []models.Transaction
	tables := tableIndex{}
	seen := make(map[*gohtml.Node]bool)

	for _, n := range dom.TextNodes(doc.Body(), dom.DefaultSkipList) {
		text := strings.TrimSpace(n.Data)
		if text == "" || len(text) > maxDateNodeLen || !LooksLikeDate(text) {
			continue
		}

		el := dom.ParentElement(n)
		row := enclosingRow(el)
		if row == nil || seen[row] || dom.IsElement(row, "body", "html") {
			continue
		}
		seen[row] = true

		if firstCell(row, debitCreditClassMarkers) != nil || tables.coveredByColumns(row) {
			continue
		}

		if txn, ok := s.parseRow(row, el, text); ok {
			txn.Strategy = StrategyDateScan
			transactions = append(transactions, txn)
		}
	}

	return transactions, nil
}

func (s *DateScanStrategy) parseRow(row, el *gohtml.Node, dateNode string) (models.Transaction, bool) {
	rowText := cellText(row)

	amountText := dollarAmountPattern.FindString(rowText)
	if amountText == "" {
		return models.Transaction{}, false
	}

	force := models.ForceNone
	if explicitNegativePattern.MatchString(rowText) || HasDebitHeaderNearby(el) {
		force = models.ForceDebit
	}
	amount, ok := ParseAmount(amountText, force)
	if !ok || amount <= 0 {
		return models.Transaction{}, false
	}

	dateText := findDate(dateNode)
	desc := removeFirst(displayText(row), dateText)
	desc = removeFirstLoose(desc, dollarLiteralPattern.FindString(removeFirst(rowText, dateText)))
	desc = firstLine(strings.TrimSpace(desc))

	return models.Transaction{
		Date:        dateText,
		Month:       ExtractDateMonth(dateText),
		Description: finishDescription(desc),
		Amount:      amount,
	}, true
}

// enclosingRow returns the nearest table row or ARIA row around el, else
// el's parent element.
func enclosingRow(el *gohtml.Node) *gohtml.Node {
	if el == nil {
		return nil
	}
	if row := dom.Closest(el, "tr"); row != nil {
		return row
	}
	if row := dom.Closest(el, `[role="row"]`); row != nil {
		return row
	}
	return dom.ParentElement(el)
}
