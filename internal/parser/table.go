package parser

import (
	"slices"

	gohtml "golang.org/x/net/html"

	"github.com/insightdelivered/fiscal-fox/internal/dom"
	"github.com/insightdelivered/fiscal-fox/internal/models"
)

// TableStrategy scans <table> elements, reading each body row either through
// role-named cells (td.date, td.debit, ...) or through the columns its
// header row names.
//
// Typical layouts:
//
//	Date | Description | Debit | Credit
//	Date | Transaction | Amount
//	<td class="date"> <td class="transactions"> <td class="debit"> <td class="credit">
type TableStrategy struct{}

func (s *TableStrategy) Name() string {
	return StrategyTable
}

func (s *TableStrategy) Extract(doc *dom.Document) ([]models.Transaction, error) {
	var transactions []models.Transaction
	tables := tableIndex{}

	for _, table := range doc.Find("table").Nodes {
		layout := tables.layout(table)
		if len(layout.rows) < 2 {
			continue
		}
		for _, row := range layout.rows {
			if row == layout.header {
				continue
			}
			if txn, ok := s.parseRow(row, layout.columns); ok {
				txn.Strategy = StrategyTable
				transactions = append(transactions, txn)
			}
		}
	}

	return transactions, nil
}

func (s *TableStrategy) parseRow(row *gohtml.Node, cols ColumnMap) (models.Transaction, bool) {
	cells := dom.Find(row, "td")
	if len(cells) < 2 {
		return models.Transaction{}, false
	}

	if txn, handled, ok := s.parseClassRow(row, cells); handled {
		return txn, ok
	}
	return s.parseIndexedRow(cells, cols)
}

// parseClassRow handles rows whose cells are named by role. handled reports
// whether the row follows that convention at all; only debit rows with a
// dollar amount are kept, deposit rows are dropped.
func (s *TableStrategy) parseClassRow(row *gohtml.Node, cells []*gohtml.Node) (txn models.Transaction, handled, ok bool) {
	debitTd := firstCell(row, debitClassMarkers)
	creditTd := firstCell(row, creditClassMarkers)
	dateTd := firstCell(row, dateClassMarkers)
	descTd := firstCell(row, descClassMarkers)

	if dateTd == nil || (debitTd == nil && creditTd == nil) {
		return txn, false, false
	}
	if debitTd == nil {
		return txn, true, false
	}

	raw := cellText(debitTd)
	// "Not applicable", blank, or no dollar sign: this is a deposit row
	if raw == "" || notApplicablePattern.MatchString(raw) || !dollarDigitPattern.MatchString(raw) {
		return txn, true, false
	}

	amount, valid := ParseAmount(raw, models.ForceDebit)
	if !valid || amount <= 0 {
		return txn, true, false
	}
	dateText := cellText(dateTd)
	if !LooksLikeDate(dateText) {
		return txn, true, false
	}

	desc := ""
	if descTd != nil {
		desc = displayText(descTd)
	}
	if desc == "" {
		used := []*gohtml.Node{dateTd, debitTd, creditTd}
		for _, c := range cells {
			t := cellText(c)
			if slices.Contains(used, c) || len([]rune(t)) <= 1 || dollarDigitPattern.MatchString(t) {
				continue
			}
			desc = displayText(c)
			break
		}
	}

	return models.Transaction{
		Date:        dateText,
		Month:       ExtractDateMonth(dateText),
		Description: finishDescription(desc),
		Amount:      amount,
	}, true, true
}

// parseIndexedRow reads a row by header column index, falling back to the
// first date-like and first currency-like cells when the header says nothing
// useful.
func (s *TableStrategy) parseIndexedRow(cells []*gohtml.Node, cols ColumnMap) (models.Transaction, bool) {
	texts := make([]string, len(cells))
	labels := make([]string, len(cells))
	for i, c := range cells {
		texts[i] = cellText(c)
		labels[i] = displayText(c)
	}

	var (
		dateText, desc string
		amount         float64
		ok             bool
	)

	if cols.HasUsefulHeaders() {
		if cols.DateIdx >= 0 {
			dateText = at(texts, cols.DateIdx)
		} else {
			dateText = firstMatching(texts, LooksLikeDate)
		}
		if cols.DescIdx >= 0 {
			desc = at(labels, cols.DescIdx)
		}

		switch {
		case cols.DebitIdx >= 0:
			raw := at(texts, cols.DebitIdx)
			if raw == "" || raw == "-" {
				return models.Transaction{}, false
			}
			amount, ok = ParseAmount(raw, models.ForceDebit)
		case cols.AmountIdx >= 0:
			amount, ok = ParseAmount(at(texts, cols.AmountIdx), models.ForceNone)
		default:
			if amountText := firstMatching(texts, currencyCellPattern.MatchString); amountText != "" {
				amount, ok = ParseAmount(amountText, models.ForceNone)
			}
		}
	} else {
		dateCell := firstMatching(texts, LooksLikeDate)
		amountCell := firstMatching(texts, currencyCellPattern.MatchString)
		if dateCell == "" || amountCell == "" {
			return models.Transaction{}, false
		}
		dateText = dateCell
		amount, ok = ParseAmount(amountCell, models.ForceNone)
	}

	if dateText == "" || !LooksLikeDate(dateText) || !ok {
		return models.Transaction{}, false
	}

	if desc == "" {
		used := cols.usedIndices()
		for i, t := range texts {
			if slices.Contains(used, i) || len([]rune(t)) <= 1 || LooksLikeDate(t) || dollarDigitCommaPattern.MatchString(t) {
				continue
			}
			desc = labels[i]
			break
		}
	}

	return models.Transaction{
		Date:        dateText,
		Month:       ExtractDateMonth(dateText),
		Description: finishDescription(desc),
		Amount:      amount,
	}, true
}

func firstCell(row *gohtml.Node, markers []string) *gohtml.Node {
	return dom.FindClassed(row, "td", markers...)
}

func firstMatching(texts []string, match func(string) bool) string {
	for _, t := range texts {
		if match(t) {
			return t
		}
	}
	return ""
}

// at returns texts[i], or "" when the row is shorter than the header.
func at(texts []string, i int) string {
	if i < 0 || i >= len(texts) {
		return ""
	}
	return texts[i]
}
