package menu

import (
	_ "embed"
	"errors"
	"fmt"

	"festive/internal/i18n"

	"gopkg.in/yaml.v3"
)

//go:embed menu.yaml
var defaultCatalog []byte

var ErrNotFound = errors.New("dish not found")

// Text is a string in each supported language.
type Text struct {
	En string `yaml:"en" json:"en"`
	Ta string `yaml:"ta" json:"ta"`
}

// In returns the text for lang, falling back to English.
func (t Text) In(lang i18n.Lang) string {
	if lang == i18n.Tamil && t.Ta != "" {
		return t.Ta
	}
	return t.En
}

type Dish struct {
	ID          string `yaml:"id" json:"id"`
	Category    string `yaml:"category" json:"category"`
	Name        Text   `yaml:"name" json:"name"`
	Description Text   `yaml:"description" json:"description"`
}

type Catalog struct {
	Categories map[string]Text `yaml:"categories" json:"categories"`
	Dishes     []Dish          `yaml:"dishes" json:"dishes"`

	byID map[string]int
}

// Load parses the catalog embedded in the binary.
func Load() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Parse decodes a YAML catalog and checks that ids are unique and every
// dish names a known category.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode menu: %w", err)
	}
	c.byID = make(map[string]int, len(c.Dishes))
	for i, d := range c.Dishes {
		if d.ID == "" {
			return nil, fmt.Errorf("menu dish %d has no id", i)
		}
		if _, dup := c.byID[d.ID]; dup {
			return nil, fmt.Errorf("duplicate menu dish %q", d.ID)
		}
		if _, ok := c.Categories[d.Category]; !ok {
			return nil, fmt.Errorf("menu dish %q has unknown category %q", d.ID, d.Category)
		}
		c.byID[d.ID] = i
	}
	return &c, nil
}

func (c *Catalog) All() []Dish {
	return c.Dishes
}

func (c *Catalog) Get(id string) (Dish, error) {
	i, ok := c.byID[id]
	if !ok {
		return Dish{}, ErrNotFound
	}
	return c.Dishes[i], nil
}

func (c *Catalog) ByCategory(category string) []Dish {
	var out []Dish
	for _, d := range c.Dishes {
		if d.Category == category {
			out = append(out, d)
		}
	}
	return out
}
