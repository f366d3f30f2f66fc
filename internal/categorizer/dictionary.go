package categorizer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/insightdelivered/fiscal-fox/internal/models"
)

// ErrEmptyDictionary is returned when a dictionary document holds no
// categories.
var ErrEmptyDictionary = errors.New("dictionary has no categories")

// Dictionary is the ordered keyword -> category table. Order matters: the
// first category whose keyword matches a description wins.
type Dictionary struct {
	categories []models.Category
	byName     map[string]int
}

type entry struct {
	Icon     string   `json:"icon" yaml:"icon"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}

// NewDictionary builds a dictionary from categories in priority order. A
// repeated name replaces the earlier entry in place.
func NewDictionary(categories ...models.Category) *Dictionary {
	d := &Dictionary{byName: make(map[string]int, len(categories))}
	for _, c := range categories {
		d.add(c)
	}
	return d
}

func (d *Dictionary) add(c models.Category) {
	if i, ok := d.byName[c.Name]; ok {
		d.categories[i] = c
		return
	}
	d.byName[c.Name] = len(d.categories)
	d.categories = append(d.categories, c)
}

// Categories returns the categories in dictionary order.
func (d *Dictionary) Categories() []models.Category {
	if d == nil {
		return nil
	}
	out := make([]models.Category, len(d.categories))
	copy(out, d.categories)
	return out
}

// Get looks a category up by name.
func (d *Dictionary) Get(name string) (models.Category, bool) {
	if d == nil {
		return models.Category{}, false
	}
	i, ok := d.byName[name]
	if !ok {
		return models.Category{}, false
	}
	return d.categories[i], true
}

// Len returns the number of categories.
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.categories)
}

// ParseDictionary reads a dictionary document of the form
//
//	{"Groceries": {"icon": "🛒", "keywords": ["grocer", "market"]}, ...}
//
// in JSON or YAML, keeping the document's key order.
func ParseDictionary(r io.Reader) (*Dictionary, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read dictionary: %w", err)
	}
	return DecodeDictionary(data)
}

// DecodeDictionary is ParseDictionary over bytes.
func DecodeDictionary(data []byte) (*Dictionary, error) {
	var (
		d   *Dictionary
		err error
	)
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		d, err = decodeJSON(trimmed)
	} else {
		d, err = decodeYAML(data)
	}
	if err != nil {
		return nil, err
	}
	if d.Len() == 0 {
		return nil, ErrEmptyDictionary
	}
	return d, nil
}

// decodeJSON walks the top-level object token by token; decoding into a map
// would lose the key order.
func decodeJSON(data []byte) (*Dictionary, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("failed to parse dictionary JSON: %w", err)
	}

	d := NewDictionary()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to parse dictionary JSON: %w", err)
		}
		name, _ := tok.(string)

		var e entry
		if err := dec.Decode(&e); err != nil {
			return nil, fmt.Errorf("failed to parse category %q: %w", name, err)
		}
		d.add(models.Category{Name: name, Icon: e.Icon, Keywords: e.Keywords})
	}
	return d, nil
}

func decodeYAML(data []byte) (*Dictionary, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse dictionary YAML: %w", err)
	}

	d := NewDictionary()
	if len(root.Content) == 0 {
		return d, nil
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("failed to parse dictionary YAML: line %d: expected a mapping of categories", doc.Line)
	}

	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, value := doc.Content[i], doc.Content[i+1]
		var e entry
		if err := value.Decode(&e); err != nil {
			return nil, fmt.Errorf("failed to parse category %q: %w", key.Value, err)
		}
		d.add(models.Category{Name: key.Value, Icon: e.Icon, Keywords: e.Keywords})
	}
	return d, nil
}
