package dom

import (
	"strings"

	gohtml "golang.org/x/net/html"
)

// NodeType is the subset of node kinds the walkers care about.
type NodeType int

const (
	OtherNode NodeType = iota
	ElementNode
	TextNode
)

// Node is the capability surface needed to traverse a page: what a node is,
// what it contains, its own text, and whether a skip list excludes it.
type Node interface {
	Type() NodeType
	Children() []Node
	Text() string
	Skipped(list SkipList) bool
}

// SkipList names elements a walker must not descend into.
type SkipList struct {
	Tags    []string // lower-case tag names
	IDs     []string
	Classes []string
}

// DefaultSkipList covers elements that never hold page prose plus the
// extension's own injected host element.
var DefaultSkipList = SkipList{
	Tags: []string{"script", "style", "noscript", "template", "head"},
	IDs:  []string{"fiscal-fox-sidebar-host"},
}

// Match reports whether an element with the given tag, id and classes is on
// the list.
func (l SkipList) Match(tag, id string, classes []string) bool {
	for _, t := range l.Tags {
		if t == tag {
			return true
		}
	}
	if id != "" {
		for _, v := range l.IDs {
			if v == id {
				return true
			}
		}
	}
	for _, c := range classes {
		for _, v := range l.Classes {
			if v == c {
				return true
			}
		}
	}
	return false
}

// HTMLNode adapts an *html.Node to Node.
type HTMLNode struct {
	N *gohtml.Node
}

func (h HTMLNode) Type() NodeType {
	switch h.N.Type {
	case gohtml.ElementNode:
		return ElementNode
	case gohtml.TextNode:
		return TextNode
	default:
		return OtherNode
	}
}

func (h HTMLNode) Children() []Node {
	var out []Node
	for c := h.N.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, HTMLNode{N: c})
	}
	return out
}

// Text returns the node's own data for text nodes and "" otherwise.
func (h HTMLNode) Text() string {
	if h.N.Type == gohtml.TextNode {
		return h.N.Data
	}
	return ""
}

func (h HTMLNode) Skipped(list SkipList) bool {
	if h.N.Type != gohtml.ElementNode {
		return false
	}
	return list.Match(strings.ToLower(h.N.Data), Attr(h.N, "id"), Classes(h.N))
}

// Walk visits every node under root in document order (pre-order) using an
// explicit stack. Skipped elements and their subtrees are not visited.
// Returning false from visit stops the walk.
func Walk(root Node, skip SkipList, visit func(Node) bool) {
	stack := []Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if n.Skipped(skip) {
			continue
		}
		if !visit(n) {
			return
		}

		children := n.Children()
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
}

// TextNodes returns the text nodes under root in document order.
func TextNodes(root *gohtml.Node, skip SkipList) []*gohtml.Node {
	var out []*gohtml.Node
	Walk(HTMLNode{N: root}, skip, func(n Node) bool {
		if n.Type() == TextNode {
			out = append(out, n.(HTMLNode).N)
		}
		return true
	})
	return out
}

// Elements returns the element nodes under root (root included) in document
// order.
func Elements(root *gohtml.Node, skip SkipList) []*gohtml.Node {
	var out []*gohtml.Node
	Walk(HTMLNode{N: root}, skip, func(n Node) bool {
		if n.Type() == ElementNode {
			out = append(out, n.(HTMLNode).N)
		}
		return true
	})
	return out
}
