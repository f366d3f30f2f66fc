// Package dom is the read-only view of a page that the extraction engine,
// glossary and reader work against. It wraps golang.org/x/net/html nodes and
// goquery selections; nothing in here mutates the tree.
package dom

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	gohtml "golang.org/x/net/html"
)

// Document is a parsed page.
type Document struct {
	doc *goquery.Document
}

// Parse reads an HTML document from r.
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &Document{doc: doc}, nil
}

// ParseString parses an HTML document held in memory.
func ParseString(src string) (*Document, error) {
	return Parse(strings.NewReader(src))
}

// FromNode wraps an already parsed tree.
func FromNode(root *gohtml.Node) *Document {
	return &Document{doc: goquery.NewDocumentFromNode(root)}
}

// Find runs a CSS selector against the whole document.
func (d *Document) Find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// Body returns the <body> element, or the document root when the parser
// produced none.
func (d *Document) Body() *gohtml.Node {
	if body := d.doc.Find("body"); body.Length() > 0 {
		return body.Nodes[0]
	}
	return d.doc.Nodes[0]
}

// Select wraps a single node in a selection so goquery's relative queries
// (Find, Closest, Siblings) can run from it. Closest still walks the node's
// real ancestors.
func Select(n *gohtml.Node) *goquery.Selection {
	return goquery.NewDocumentFromNode(n).Selection
}
