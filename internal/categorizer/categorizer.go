// Package categorizer assigns spending categories to transaction
// descriptions by keyword containment against an ordered dictionary.
package categorizer

import (
	"context"
	"embed"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/insightdelivered/fiscal-fox/internal/models"
	"github.com/insightdelivered/fiscal-fox/internal/resource"
)

//go:embed categories.json
var defaults embed.FS

// DefaultSource is the dictionary compiled into the binary.
var DefaultSource resource.Source = resource.EmbeddedSource{FS: defaults, Name: "categories.json"}

// Categorize returns the first category, in dictionary order, with a keyword
// contained in description (case-insensitive). The reserved "Other" entry is
// never matched against; it is also the result when nothing matches.
func Categorize(description string, dict *Dictionary) string {
	desc := strings.ToLower(description)
	for _, c := range dict.Categories() {
		if c.Name == models.OtherCategory {
			continue
		}
		for _, kw := range c.Keywords {
			if kw == "" {
				continue
			}
			if strings.Contains(desc, strings.ToLower(kw)) {
				return c.Name
			}
		}
	}
	return models.OtherCategory
}

// Loader provides the dictionary for a session, reading it from its source
// once and serving later calls from the cache.
type Loader struct {
	*resource.Loader[*Dictionary]
}

// NewLoader returns a dictionary loader backed by c. A nil source selects
// the embedded default.
func NewLoader(c *cache.Cache, source resource.Source) *Loader {
	if source == nil {
		source = DefaultSource
	}
	return &Loader{resource.NewLoader(c, source, DecodeDictionary)}
}

// NewLoaderFor picks the source from a configured location (path, URL or ""
// for the embedded default).
func NewLoaderFor(c *cache.Cache, location string, timeout time.Duration) *Loader {
	return NewLoader(c, resource.FromLocation(location, timeout, DefaultSource))
}

// Default loads the embedded dictionary without a cache.
func Default() (*Dictionary, error) {
	data, err := DefaultSource.Fetch(context.Background())
	if err != nil {
		return nil, err
	}
	return DecodeDictionary(data)
}
