// Package glossary finds financial key terms in page text so the extension
// can explain them in place.
package glossary

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/insightdelivered/fiscal-fox/internal/dom"
	"github.com/insightdelivered/fiscal-fox/internal/models"
	"github.com/insightdelivered/fiscal-fox/internal/resource"
)

//go:embed glossary.json
var defaults embed.FS

// DefaultSource is the glossary compiled into the binary.
var DefaultSource resource.Source = resource.EmbeddedSource{FS: defaults, Name: "glossary.json"}

// ErrNoTerms is returned for a glossary without terms.
var ErrNoTerms = errors.New("glossary has no terms")

// skip covers elements whose text is code, form input or already annotated.
var skip = dom.SkipList{
	Tags:    []string{"script", "style", "noscript", "textarea", "input", "select", "code", "pre", "head"},
	IDs:     []string{"fiscal-fox-tooltip", "fiscal-fox-sidebar-host"},
	Classes: []string{"fiscal-fox-term"},
}

// Matcher finds glossary terms in text.
type Matcher struct {
	terms   map[string]string // term -> definition
	byLower map[string]string // lower-cased term -> term
	pattern *regexp.Regexp
}

// NewMatcher compiles a matcher for terms (term -> definition). Longer terms
// are tried first so "credit score" wins over "credit".
func NewMatcher(terms map[string]string) (*Matcher, error) {
	if len(terms) == 0 {
		return nil, ErrNoTerms
	}

	keys := make([]string, 0, len(terms))
	for k := range terms {
		if strings.TrimSpace(k) != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil, ErrNoTerms
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	m := &Matcher{terms: terms, byLower: make(map[string]string, len(keys))}
	escaped := make([]string, len(keys))
	for i, k := range keys {
		escaped[i] = regexp.QuoteMeta(k)
		if _, dup := m.byLower[strings.ToLower(k)]; !dup {
			m.byLower[strings.ToLower(k)] = k
		}
	}

	p, err := regexp.Compile(`(?i)\b(?:` + strings.Join(escaped, "|") + `)\b`)
	if err != nil {
		return nil, fmt.Errorf("failed to compile glossary: %w", err)
	}
	m.pattern = p
	return m, nil
}

// Len returns the number of terms.
func (m *Matcher) Len() int {
	return len(m.byLower)
}

// Define returns the definition of term, matched case-insensitively.
func (m *Matcher) Define(term string) (string, bool) {
	key, ok := m.byLower[strings.ToLower(term)]
	if !ok {
		return "", false
	}
	return m.terms[key], true
}

// MatchText returns the terms occurring in text, left to right.
func (m *Matcher) MatchText(text string) []models.TermMatch {
	var out []models.TermMatch
	for _, loc := range m.pattern.FindAllStringIndex(text, -1) {
		found := text[loc[0]:loc[1]]
		key, ok := m.byLower[strings.ToLower(found)]
		if !ok {
			continue
		}
		out = append(out, models.TermMatch{
			Term:       key,
			Text:       found,
			Definition: m.terms[key],
			Context:    dom.CollapseSpace(text),
		})
	}
	return out
}

// FindTerms walks the page's text nodes and reports every glossary term
// occurrence in document order.
func (m *Matcher) FindTerms(doc *dom.Document) []models.TermMatch {
	var out []models.TermMatch
	for _, n := range dom.TextNodes(doc.Body(), skip) {
		if strings.TrimSpace(n.Data) == "" {
			continue
		}
		out = append(out, m.MatchText(n.Data)...)
	}
	return out
}

// Parse decodes a glossary document: a JSON object of term -> definition.
func Parse(data []byte) (map[string]string, error) {
	var terms map[string]string
	if err := json.Unmarshal(data, &terms); err != nil {
		return nil, fmt.Errorf("failed to parse glossary: %w", err)
	}
	if len(terms) == 0 {
		return nil, ErrNoTerms
	}
	return terms, nil
}

func decodeMatcher(data []byte) (*Matcher, error) {
	terms, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return NewMatcher(terms)
}

// Loader provides the session's compiled glossary through the shared cache.
type Loader struct {
	*resource.Loader[*Matcher]
}

// NewLoader returns a glossary loader backed by c. A nil source selects the
// embedded default.
func NewLoader(c *cache.Cache, source resource.Source) *Loader {
	if source == nil {
		source = DefaultSource
	}
	return &Loader{resource.NewLoader(c, source, decodeMatcher)}
}

// NewLoaderFor picks the source from a configured location.
func NewLoaderFor(c *cache.Cache, location string, timeout time.Duration) *Loader {
	return NewLoader(c, resource.FromLocation(location, timeout, DefaultSource))
}

// Default compiles the embedded glossary without a cache.
func Default() (*Matcher, error) {
	data, err := DefaultSource.Fetch(context.Background())
	if err != nil {
		return nil, err
	}
	return decodeMatcher(data)
}
