package extractor

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// balanceTolerance absorbs rounding in printed balances.
const balanceTolerance = 0.015

var (
	outHeaderPattern     = regexp.MustCompile(`(?i)\b(paid out|money out|debits?|withdrawals?|payments out)\b`)
	inHeaderPattern      = regexp.MustCompile(`(?i)\b(paid in|money in|credits?|deposits?|payments in|receipts)\b`)

	// a printed ledger amount: "25.00", "1,234.56", "£8.10"
	ledgerAmountPattern = regexp.MustCompile(`^[£$€]?[\d,]+\.\d{2}$`)
	ledgerDatePattern   = regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{2,4}|\d{4}-\d{2}-\d{2}|\d{1,2}[ -][A-Za-z]{3,9}([ -]\d{2,4})?|[A-Za-z]{3,9} \d{1,2}(, \d{4})?)$`)
	openingBalanceWords = []string{"opening balance", "balance brought forward", "brought forward"}
	ledgerSkipWords     = []string{"closing balance", "carried forward", "total paid in", "total paid out", "total payments", "total receipts"}
	// DD/MM/YYYY, read day first once a statement proves it
	slashDatePattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
)

var monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// isLedgerHeader reports whether a statement header splits money into
// separate paid-out and paid-in columns. Text extraction drops the empty
// cell of each row, so such rows need their amount placed by ledgerRows.
func isLedgerHeader(cells []string) bool {
	var out, in bool
	for _, c := range cells {
		out = out || outHeaderPattern.MatchString(c)
		in = in || inHeaderPattern.MatchString(c)
	}
	return out && in
}

// ledgerRows rewrites paid-out / paid-in statement rows into
// Date | Description | Amount | Balance rows whose amount carries a DR or CR
// marker. A row's direction comes from, in order: its position when both
// money columns are filled, the move of the running balance, and its
// description. Rows without a date inherit the previous row's date; lines
// without amounts continue the previous description.
func ledgerRows(lines [][]string) [][]string {
	out := [][]string{{"Date", "Description", "Amount", "Balance"}}

	var (
		prevBalance float64
		havePrev    bool
		lastDate    string
	)

	for _, cells := range lines {
		joined := strings.ToLower(strings.Join(cells, " "))
		if containsAny(joined, openingBalanceWords) {
			if bal, ok := lastLedgerAmount(cells); ok {
				prevBalance, havePrev = bal, true
			}
			continue
		}
		if containsAny(joined, ledgerSkipWords) {
			continue
		}

		date := lastDate
		rest := cells
		if ledgerDatePattern.MatchString(cells[0]) {
			date, rest = cells[0], cells[1:]
		}

		amounts, desc := splitTrailingAmounts(rest)
		if len(amounts) == 0 {
			if len(out) > 1 && len(rest) > 0 {
				last := out[len(out)-1]
				last[1] = strings.TrimSpace(last[1] + " " + strings.Join(rest, " "))
			}
			continue
		}
		if date == "" {
			continue
		}
		lastDate = date

		var (
			amt, bal float64
			hasBal   bool
			debit    bool
		)
		switch len(amounts) {
		case 3:
			// out, in and balance all printed
			paidOut, _ := parseLedgerAmount(amounts[0])
			paidIn, _ := parseLedgerAmount(amounts[1])
			bal, hasBal = parseLedgerAmount(amounts[2])
			amt, debit = paidOut, true
			if paidOut == 0 {
				amt, debit = paidIn, false
			}
		case 2:
			amt, _ = parseLedgerAmount(amounts[0])
			bal, hasBal = parseLedgerAmount(amounts[1])
			debit = classifyByBalance(amt, bal, prevBalance, havePrev, desc)
		default:
			amt, _ = parseLedgerAmount(amounts[0])
			debit = !isCreditDescription(desc)
		}
		if amt == 0 {
			continue
		}

		marker := "CR"
		if debit {
			marker = "DR"
		}
		balText := ""
		if hasBal {
			balText = formatLedgerAmount(bal)
			prevBalance, havePrev = bal, true
		}
		out = append(out, []string{date, desc, formatLedgerAmount(amt) + " " + marker, balText})
	}

	return out
}

// classifyByBalance decides whether amt left the account by comparing the
// balance printed after it with the previous one. Without a usable previous
// balance the description decides.
func classifyByBalance(amt, bal, prevBal float64, havePrev bool, desc string) bool {
	if havePrev {
		debitDiff := math.Abs((prevBal - amt) - bal)
		creditDiff := math.Abs((prevBal + amt) - bal)

		switch {
		case debitDiff < balanceTolerance && creditDiff >= balanceTolerance:
			return true
		case creditDiff < balanceTolerance && debitDiff >= balanceTolerance:
			return false
		case debitDiff < balanceTolerance && creditDiff < balanceTolerance:
			return debitDiff <= creditDiff
		}
	}
	return !isCreditDescription(desc)
}

// isCreditDescription checks if a description indicates an incoming payment.
func isCreditDescription(desc string) bool {
	return containsAny(strings.ToLower(desc), []string{
		"direct credit", "credit from", "bgc ", "bacs ",
		"refund", "interest paid", "transfer from", "faster payment",
		"salary", "payroll", "wages", "deposit",
	})
}

// splitTrailingAmounts peels up to three amount cells off the end of a row.
func splitTrailingAmounts(cells []string) (amounts []string, desc string) {
	end := len(cells)
	for end > 0 && len(cells)-end < 3 && ledgerAmountPattern.MatchString(cells[end-1]) {
		end--
	}
	return cells[end:], strings.Join(cells[:end], " ")
}

func lastLedgerAmount(cells []string) (float64, bool) {
	for i := len(cells) - 1; i >= 0; i-- {
		if ledgerAmountPattern.MatchString(cells[i]) {
			return parseLedgerAmount(cells[i])
		}
	}
	return 0, false
}

func parseLedgerAmount(s string) (float64, bool) {
	s = strings.NewReplacer("£", "", "$", "", "€", "", ",", "").Replace(strings.TrimSpace(s))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func formatLedgerAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// dayFirst reports whether any slash date in the rows can only be read as
// DD/MM/YYYY, which marks the whole statement as day first.
func dayFirst(lines [][]string) bool {
	for _, cells := range lines {
		if m := slashDatePattern.FindStringSubmatch(cells[0]); m != nil {
			day, _ := strconv.Atoi(m[1])
			month, _ := strconv.Atoi(m[2])
			if day > 12 && month >= 1 && month <= 12 {
				return true
			}
		}
	}
	return false
}

// namedMonthDate rewrites a DD/MM/YYYY date as "15 Jan 2024" so it groups by
// its real month. Other text is returned unchanged.
func namedMonthDate(s string) string {
	m := slashDatePattern.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	month, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 {
		return s
	}
	return m[1] + " " + monthNames[month-1] + " " + m[3]
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
