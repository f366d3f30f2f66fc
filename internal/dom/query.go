package dom

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	gohtml "golang.org/x/net/html"
)

// textSkip keeps script and style bodies out of flattened element text.
var textSkip = SkipList{Tags: []string{"script", "style", "noscript", "template"}}

// Attr returns the value of attribute key on n, or "".
func Attr(n *gohtml.Node, key string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// HasAttr reports whether n carries attribute key.
func HasAttr(n *gohtml.Node, key string) bool {
	if n == nil {
		return false
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

// Classes splits n's class attribute.
func Classes(n *gohtml.Node) []string {
	return strings.Fields(Attr(n, "class"))
}

// ClassContains reports whether n's class attribute contains any of subs
// as a case-insensitive substring. A [class*=...] selector is case-sensitive,
// so bank markup such as "TransactionRow" would slip past it.
func ClassContains(n *gohtml.Node, subs ...string) bool {
	class := strings.ToLower(Attr(n, "class"))
	if class == "" {
		return false
	}
	for _, s := range subs {
		if strings.Contains(class, s) {
			return true
		}
	}
	return false
}

// IsElement reports whether n is an element with one of the given tag names.
// With no tags it reports whether n is an element at all.
func IsElement(n *gohtml.Node, tags ...string) bool {
	if n == nil || n.Type != gohtml.ElementNode {
		return false
	}
	if len(tags) == 0 {
		return true
	}
	for _, t := range tags {
		if n.Data == t {
			return true
		}
	}
	return false
}

// ParentElement returns the element parent of n, or nil.
func ParentElement(n *gohtml.Node) *gohtml.Node {
	if n == nil {
		return nil
	}
	return first(Select(n).Parent())
}

// Closest returns n itself or its nearest ancestor matching selector.
func Closest(n *gohtml.Node, selector string) *gohtml.Node {
	if n == nil {
		return nil
	}
	return first(Select(n).Closest(selector))
}

// Find returns the descendants of n matching selector, in document order.
func Find(n *gohtml.Node, selector string) []*gohtml.Node {
	if n == nil {
		return nil
	}
	return Select(n).Find(selector).Nodes
}

// Has reports whether n has a descendant matching selector.
func Has(n *gohtml.Node, selector string) bool {
	return n != nil && Select(n).Find(selector).Length() > 0
}

// FindClassed returns the first descendant of n matching selector whose class
// contains one of subs (see ClassContains).
func FindClassed(n *gohtml.Node, selector string, subs ...string) *gohtml.Node {
	if n == nil {
		return nil
	}
	return first(Select(n).Find(selector).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return ClassContains(s.Get(0), subs...)
	}))
}

// Siblings returns the element siblings of n.
func Siblings(n *gohtml.Node) []*gohtml.Node {
	if n == nil {
		return nil
	}
	return Select(n).Siblings().Nodes
}

// TextContent returns the text of n the way a browser's textContent reads
// it: text nodes concatenated with no separator, whitespace runs collapsed.
// Split markup such as "$<!-- -->4.50" or "-<span>$</span>85.23" reads as
// one token.
func TextContent(n *gohtml.Node) string {
	if n == nil {
		return ""
	}
	return CollapseSpace(Select(n).Text())
}

// FlatText returns the text of n with one space between text nodes and
// every whitespace run collapsed, so "<td>Jan 5</td><td>Coffee</td>" reads
// "Jan 5 Coffee". Script and style bodies are left out.
func FlatText(n *gohtml.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == gohtml.TextNode {
		return CollapseSpace(n.Data)
	}
	var parts []string
	for _, t := range TextNodes(n, textSkip) {
		if s := strings.TrimSpace(t.Data); s != "" {
			parts = append(parts, s)
		}
	}
	return CollapseSpace(strings.Join(parts, " "))
}

// CollapseSpace trims s and collapses whitespace runs to one space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func first(s *goquery.Selection) *gohtml.Node {
	if s.Length() == 0 {
		return nil
	}
	return s.Get(0)
}
