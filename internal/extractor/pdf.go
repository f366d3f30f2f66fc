package extractor

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// ErrUnreadablePDF is returned when no method yields readable statement
// text, typically for scanned statements or custom font encodings.
var ErrUnreadablePDF = errors.New("no readable text could be extracted from PDF")

const (
	// minReadableLen is the least text a statement page set must yield.
	minReadableLen = 50
	// minReadableRatio is the share of plain characters readable text has.
	minReadableRatio = 0.6
	// columnGap is the horizontal gap, in points, treated as a column break.
	columnGap = 15
)

// statementWords appear in virtually every statement. Text containing none
// of them is taken to be garbage from an undecodable font.
var statementWords = []string{
	"account", "balance", "date", "description", "statement", "amount",
	"credit", "debit", "deposit", "withdrawal", "transaction", "payment",
	"total", "opening", "closing", "transfer", "page", "period",
}

// ExtractPDF returns the text of each page of a statement PDF. It tries row
// based extraction first, then rebuilds rows from text coordinates, then
// falls back to plain page text.
func ExtractPDF(filePath string) ([]string, error) {
	pages, err := extractWithLibrary(filePath)
	if err != nil {
		return nil, fmt.Errorf("PDF text extraction failed: %w", err)
	}
	if !IsReadableText(pages) {
		return nil, ErrUnreadablePDF
	}
	return pages, nil
}

// extractWithLibrary uses ledongthuc/pdf, which panics on some malformed
// files; panics are reported as errors.
func extractWithLibrary(filePath string) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	for _, method := range []func(*pdf.Reader, int) []string{
		extractByRow,
		extractByContent,
		extractByPagePlainText,
	} {
		pages = method(r, numPages)
		if IsReadableText(pages) {
			return pages, nil
		}
	}

	if text := extractByReaderPlainText(r); IsReadableText([]string{text}) {
		return []string{text}, nil
	}
	return pages, nil
}

// IsReadableText reports whether extracted pages hold enough mostly-ASCII
// text with at least one word every statement has.
func IsReadableText(pages []string) bool {
	if totalTextLen(pages) <= minReadableLen {
		return false
	}
	if textQuality(pages) <= minReadableRatio {
		return false
	}
	combined := strings.ToLower(strings.Join(pages, " "))
	for _, w := range statementWords {
		if strings.Contains(combined, w) {
			return true
		}
	}
	return false
}

// textQuality is the ratio of plain ASCII letters, digits, whitespace and
// statement punctuation to all characters. unicode.IsLetter is too broad:
// identity-encoded fonts decode to accented garbage.
func textQuality(pages []string) float64 {
	total, readable := 0, 0
	for _, page := range pages {
		for _, r := range page {
			total++
			if isPlain(r) {
				readable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

func isPlain(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', unicode.IsSpace(r):
		return true
	}
	return strings.ContainsRune(".,-/:;()'\"$£€%&@#!?+=*", r)
}

func totalTextLen(pages []string) int {
	n := 0
	for _, p := range pages {
		n += len(strings.TrimSpace(p))
	}
	return n
}

// extractByRow joins the words of each row the library reports, keeping a
// double space between words so columns stay separable.
func extractByRow(r *pdf.Reader, numPages int) []string {
	var pages []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		var lines []string
		for _, row := range rows {
			var parts []string
			for _, word := range row.Content {
				if s := strings.TrimSpace(word.S); s != "" {
					parts = append(parts, s)
				}
			}
			if line := strings.Join(parts, "  "); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages
}

// extractByContent groups text pieces by Y coordinate into rows, orders each
// row by X, and marks large horizontal gaps as column breaks.
func extractByContent(r *pdf.Reader, numPages int) []string {
	type textItem struct {
		x float64
		s string
	}

	var pages []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content := page.Content()
		if len(content.Text) == 0 {
			continue
		}

		rowMap := make(map[int][]textItem)
		for _, t := range content.Text {
			if strings.TrimSpace(t.S) == "" {
				continue
			}
			y := int(math.Round(t.Y))
			rowMap[y] = append(rowMap[y], textItem{x: t.X, s: t.S})
		}

		// PDF y grows upwards
		ys := make([]int, 0, len(rowMap))
		for y := range rowMap {
			ys = append(ys, y)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(ys)))

		var lines []string
		for _, y := range ys {
			items := rowMap[y]
			sort.Slice(items, func(a, b int) bool { return items[a].x < items[b].x })

			var b strings.Builder
			for j, item := range items {
				if j > 0 && item.x-items[j-1].x > columnGap {
					b.WriteString("  ")
				}
				b.WriteString(item.s)
			}
			if line := strings.TrimSpace(b.String()); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages
}

func extractByPagePlainText(r *pdf.Reader, numPages int) []string {
	var pages []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		fonts := make(map[string]*pdf.Font)
		for _, name := range page.Fonts() {
			f := page.Font(name)
			fonts[name] = &f
		}
		text, err := page.GetPlainText(fonts)
		if err != nil {
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}
	}
	return pages
}

func extractByReaderPlainText(r *pdf.Reader) string {
	reader, err := r.GetPlainText()
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
