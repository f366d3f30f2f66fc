package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/insightdelivered/fiscal-fox/internal/models"
)

var (
	creditMarkerPattern = regexp.MustCompile(`(?i)\bcr\b|\bcredit\b`)
	debitMarkerPattern  = regexp.MustCompile(`(?i)\bdr\b|\bdebit\b`)
	parenAmountPattern  = regexp.MustCompile(`\(\s*[$£€]?\s*[\d,]*\.?\d+\s*\)`)
	nonNumericPattern   = regexp.MustCompile(`[^\d.\-]`)
	leadingNumber       = regexp.MustCompile(`^-?(?:\d+\.?\d*|\.\d+)`)
)

// amountText is what the sign resolvers see.
type amountText struct {
	raw      string
	force    models.ForceSign
	negative bool // displayed with a minus sign or in parentheses
}

// signResolver returns +1 (debit) or -1 (credit) when it can decide.
type signResolver func(a amountText) (int, bool)

// signChain is evaluated in order; the first resolver to decide wins.
var signChain = []signResolver{
	forcedSign,
	markerSign,
	displayedNegativeSign,
	defaultSign,
}

func forcedSign(a amountText) (int, bool) {
	switch a.force {
	case models.ForceDebit:
		return 1, true
	case models.ForceCredit:
		return -1, true
	}
	return 0, false
}

func markerSign(a amountText) (int, bool) {
	if creditMarkerPattern.MatchString(a.raw) {
		return -1, true
	}
	if debitMarkerPattern.MatchString(a.raw) {
		return 1, true
	}
	return 0, false
}

// displayedNegativeSign: statement pages show withdrawals as negative numbers.
func displayedNegativeSign(a amountText) (int, bool) {
	if a.negative {
		return 1, true
	}
	return 0, false
}

// defaultSign treats an unlabeled positive number as a deposit.
func defaultSign(amountText) (int, bool) {
	return -1, true
}

// ParseAmount turns a text fragment such as "$1,234.56", "(45.00)",
// "12.00 CR" or "-$8.10" into a signed amount under the debit-positive
// convention. It reports false when the text holds no number or the number
// is zero.
func ParseAmount(text string, force models.ForceSign) (float64, bool) {
	t := strings.TrimSpace(text)
	if t == "" {
		return 0, false
	}
	t = strings.ReplaceAll(t, "\u2212", "-")

	stripped := nonNumericPattern.ReplaceAllString(t, "")
	numStr := leadingNumber.FindString(stripped)
	if numStr == "" || numStr == "-" {
		return 0, false
	}
	numeric, err := strconv.ParseFloat(numStr, 64)
	if err != nil || math.IsNaN(numeric) || math.IsInf(numeric, 0) || numeric == 0 {
		return 0, false
	}

	in := amountText{
		raw:      t,
		force:    force,
		negative: numeric < 0 || parenAmountPattern.MatchString(t),
	}
	abs := math.Abs(numeric)
	for _, resolve := range signChain {
		if sign, ok := resolve(in); ok {
			return float64(sign) * abs, true
		}
	}
	return -abs, true
}
