// Package reader locates the blocks of a page that mention a keyword, in
// reading order, for keyword navigation.
package reader

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	gohtml "golang.org/x/net/html"

	"github.com/insightdelivered/fiscal-fox/internal/dom"
	"github.com/insightdelivered/fiscal-fox/internal/models"
)

// blockSelector names the elements a match is reported as.
const blockSelector = "p, li, article, section, div"

var (
	displayNonePattern      = regexp.MustCompile(`(?i)display\s*:\s*none`)
	visibilityHiddenPattern = regexp.MustCompile(`(?i)visibility\s*:\s*hidden`)
	wordPattern             = regexp.MustCompile(`[\p{L}][\p{L}'-]*[\p{L}]`)
)

// minSuggestionLen is the shortest page word offered as a suggestion.
const minSuggestionLen = 3

// visibleNode hides elements a reader would not see.
type visibleNode struct {
	dom.HTMLNode
}

func (v visibleNode) Children() []dom.Node {
	kids := v.HTMLNode.Children()
	for i, k := range kids {
		kids[i] = visibleNode{k.(dom.HTMLNode)}
	}
	return kids
}

func (v visibleNode) Skipped(list dom.SkipList) bool {
	return v.HTMLNode.Skipped(list) || hidden(v.N)
}

// hidden reports whether an element is hidden through markup or inline style.
func hidden(n *gohtml.Node) bool {
	if n.Type != gohtml.ElementNode {
		return false
	}
	if dom.HasAttr(n, "hidden") || strings.EqualFold(dom.Attr(n, "aria-hidden"), "true") {
		return true
	}
	if dom.IsElement(n, "input") && strings.EqualFold(dom.Attr(n, "type"), "hidden") {
		return true
	}
	style := dom.Attr(n, "style")
	return style != "" && (displayNonePattern.MatchString(style) || visibilityHiddenPattern.MatchString(style))
}

// VisibleTextNodes returns the non-blank text nodes a reader can see, in
// document order.
func VisibleTextNodes(doc *dom.Document) []*gohtml.Node {
	var out []*gohtml.Node
	dom.Walk(visibleNode{dom.HTMLNode{N: doc.Body()}}, dom.DefaultSkipList, func(n dom.Node) bool {
		if n.Type() == dom.TextNode && strings.TrimSpace(n.Text()) != "" {
			out = append(out, n.(visibleNode).N)
		}
		return true
	})
	return out
}

// FindKeywordMatches returns the block elements whose visible text contains
// keyword (case-insensitive). Each block is reported once, at its first
// occurrence.
func FindKeywordMatches(doc *dom.Document, keyword string) []models.KeywordMatch {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	if kw == "" {
		return nil
	}

	var matches []models.KeywordMatch
	seen := make(map[*gohtml.Node]bool)
	for _, n := range VisibleTextNodes(doc) {
		if !strings.Contains(strings.ToLower(n.Data), kw) {
			continue
		}
		block := dom.Closest(dom.ParentElement(n), blockSelector)
		if block == nil || seen[block] {
			continue
		}
		seen[block] = true
		matches = append(matches, models.KeywordMatch{
			Index: len(matches),
			Tag:   block.Data,
			Text:  dom.FlatText(block),
		})
	}
	return matches
}

// Suggest returns the visible page word closest to keyword by edit
// distance, for when FindKeywordMatches comes back empty. ok is false when no
// word is close enough to be a plausible typo.
func Suggest(doc *dom.Document, keyword string) (suggestion string, ok bool) {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	if kw == "" {
		return "", false
	}
	limit := max(2, utf8.RuneCountInString(kw)/3)

	best := -1
	seen := make(map[string]bool)
	for _, n := range VisibleTextNodes(doc) {
		for _, w := range wordPattern.FindAllString(n.Data, -1) {
			word := strings.ToLower(w)
			if seen[word] || utf8.RuneCountInString(word) < minSuggestionLen {
				continue
			}
			seen[word] = true

			d := levenshtein.ComputeDistance(kw, word)
			if d > limit {
				continue
			}
			if best < 0 || d < best {
				best, suggestion = d, word
			}
		}
	}
	return suggestion, best >= 0
}
