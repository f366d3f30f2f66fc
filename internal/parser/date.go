package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const monthNames = `(?:Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|June?|July?|Aug(?:ust)?|Sep(?:t(?:ember)?)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)`

var monthAbbr = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Date patterns recognised on statement pages, most specific first.
var (
	// YYYY-MM-DD
	datePatternISO = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	// MM/DD/YYYY; slash dates are always read month first
	datePatternSlash = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	// DD-MM-YYYY
	datePatternDash = regexp.MustCompile(`\b(\d{1,2})-(\d{1,2})-(\d{4})\b`)
	// "Jan 15", "Jan 15, 2026", "January 15 2026"
	datePatternMonthDay = regexp.MustCompile(`(?i)\b(` + monthNames + `)\.?\s+(\d{1,2})\b(?:,?\s*((?:19|20)\d{2})\b)?`)
	// "15 Jan", "15 Jan 2026"
	datePatternDayMonth = regexp.MustCompile(`(?i)\b(\d{1,2})\s+(` + monthNames + `)\b\.?(?:,?\s*((?:19|20)\d{2})\b)?`)
)

var datePatterns = []*regexp.Regexp{
	datePatternISO,
	datePatternSlash,
	datePatternDash,
	datePatternMonthDay,
	datePatternDayMonth,
}

// LooksLikeDate reports whether text contains a recognisable date.
func LooksLikeDate(text string) bool {
	for _, p := range datePatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// findDate returns the first date found in text, trying the patterns in
// order of specificity.
func findDate(text string) string {
	for _, p := range datePatterns {
		if m := p.FindString(text); m != "" {
			return m
		}
	}
	return ""
}

// ExtractDateMonth normalises a date to its "Mon YYYY" grouping key. Dates
// without a year are placed in the current calendar year. It returns "" when
// no month can be derived.
func ExtractDateMonth(text string) string {
	return extractDateMonthAt(text, time.Now())
}

func extractDateMonthAt(text string, now time.Time) string {
	if m := datePatternISO.FindStringSubmatch(text); m != nil {
		return monthKey(atoi(m[2]), m[1])
	}
	if m := datePatternSlash.FindStringSubmatch(text); m != nil {
		return monthKey(atoi(m[1]), m[3])
	}
	if m := datePatternDash.FindStringSubmatch(text); m != nil {
		return monthKey(atoi(m[2]), m[3])
	}

	// Named months: take whichever form appears first.
	md := datePatternMonthDay.FindStringSubmatchIndex(text)
	dm := datePatternDayMonth.FindStringSubmatchIndex(text)
	var name, year string
	switch {
	case md != nil && (dm == nil || md[0] <= dm[0]):
		name = text[md[2]:md[3]]
		if md[6] >= 0 {
			year = text[md[6]:md[7]]
		}
	case dm != nil:
		name = text[dm[4]:dm[5]]
		if dm[6] >= 0 {
			year = text[dm[6]:dm[7]]
		}
	default:
		return ""
	}
	if year == "" {
		year = strconv.Itoa(now.Year())
	}
	return monthKey(monthIndex(name), year)
}

// monthKey formats a 1-based month number and a year, or "" for an invalid
// month.
func monthKey(month int, year string) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthAbbr[month-1] + " " + year
}

func monthIndex(name string) int {
	if len(name) < 3 {
		return 0
	}
	prefix := strings.ToLower(name[:3])
	for i, abbr := range monthAbbr {
		if strings.ToLower(abbr) == prefix {
			return i + 1
		}
	}
	return 0
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
