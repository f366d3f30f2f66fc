package parser

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/insightdelivered/fiscal-fox/internal/dom"
)

const (
	// maxDescriptionLen caps descriptions, in runes.
	maxDescriptionLen = 100
	// maxDateNodeLen skips text nodes that merely contain a date inside prose.
	maxDateNodeLen = 35
	unknownDescription = "Unknown"
)

// Amount patterns. U+2212 (minus sign) is accepted wherever "-" is.
var (
	// "$1,234.56" anywhere in text
	dollarAmountPattern = regexp.MustCompile(`\$[\d,]+\.\d{2}`)
	// a dollar amount together with the sign or parentheses displayed around it
	dollarLiteralPattern = regexp.MustCompile(`[-\x{2212}]?\s*\(?\$[\d,]+\.\d{2}\)?`)
	// a cell that looks like a currency value: "$12", "-12.50", "(12.50)"
	currencyCellPattern = regexp.MustCompile(`\$[\d,]+\.?\d*|^-?[\d,]+\.\d{2}$|\([\d,]+\.\d{2}\)`)
	// the amount literal used by the class-name strategy, sign included
	signedAmountPattern = regexp.MustCompile(`[-\x{2212}]\s*\$[\d,]+\.?\d*|\(\$[\d,]+\.?\d*\)|\$[\d,]+\.\d{2}`)
	// an amount displayed as negative: "-$5", "− $5", "($5"
	explicitNegativePattern = regexp.MustCompile(`[-\x{2212}]\s*\$[\d,]+|\(\$[\d,]`)
	// "$" immediately followed by a digit
	dollarDigitPattern = regexp.MustCompile(`\$\d`)
	// "$" followed by a digit or thousands separator
	dollarDigitCommaPattern = regexp.MustCompile(`\$[\d,]`)

	notApplicablePattern = regexp.MustCompile(`(?i)not applicable|n/a`)
	debitWordPattern     = regexp.MustCompile(`(?i)\bdebit\b|\bwithdrawal\b`)
	lineBreakPattern     = regexp.MustCompile(`\n|\s{3,}`)
)

// Class-name markers used by bank sites that name their cells by role.
var (
	debitClassMarkers       = []string{"debit", "withdrawal"}
	creditClassMarkers      = []string{"credit", "deposit"}
	debitCreditClassMarkers = []string{"debit", "credit"}
	dateClassMarkers        = []string{"date"}
	descClassMarkers        = []string{"transaction", "description", "detail", "memo"}
)

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

// finishDescription applies the description invariants: trimmed, capped,
// never empty.
func finishDescription(desc string) string {
	desc = strings.TrimSpace(desc)
	desc = truncateRunes(desc, maxDescriptionLen)
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return unknownDescription
	}
	return desc
}

// removeFirst deletes the first occurrence of sub from s.
func removeFirst(s, sub string) string {
	if sub == "" {
		return s
	}
	return strings.Replace(s, sub, "", 1)
}

// firstLine returns s up to the first line break or run of 3+ spaces.
func firstLine(s string) string {
	if loc := lineBreakPattern.FindStringIndex(s); loc != nil {
		return s[:loc[0]]
	}
	return s
}

// cellText is what amount and date patterns run against: the textContent of
// a cell or row, so amounts split across inline markup stay whole.
var cellText = dom.TextContent

// displayText keeps separate text nodes apart and feeds descriptions,
// header labels and date lookups over whole rows.
var displayText = dom.FlatText

// removeFirstLoose deletes the first occurrence of sub from s, allowing
// whitespace between its characters. An amount read whole from textContent
// may sit in display text as "- $ 85.23".
func removeFirstLoose(s, sub string) string {
	var pattern strings.Builder
	for _, r := range sub {
		if unicode.IsSpace(r) {
			continue
		}
		if pattern.Len() > 0 {
			pattern.WriteString(`\s*`)
		}
		pattern.WriteString(regexp.QuoteMeta(string(r)))
	}
	if pattern.Len() == 0 {
		return s
	}
	loc := regexp.MustCompile(pattern.String()).FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + s[loc[1]:]
}
