// Package taxonomy holds the brand and category lookup tables used to
// classify conversations. Tables are built once and never mutated.
package taxonomy

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidTaxonomy is returned when a table violates its invariants.
var ErrInvalidTaxonomy = errors.New("invalid taxonomy")

// Brand is a canonical brand key with the product names associated with it.
type Brand struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
}

// Category is a shopping category with its representative item lemmas.
type Category struct {
	Name  string   `yaml:"name"`
	Items []string `yaml:"items"`
}

// Taxonomy is the ordered pair of lookup tables. Order matters: category
// resolution picks the first matching entry.
type Taxonomy struct {
	Brands     []Brand    `yaml:"brands"`
	Categories []Category `yaml:"categories"`
}

// Validate checks that names are unique and non-empty, that every list has
// at least one entry, and that entries are lowercase.
func (t *Taxonomy) Validate() error {
	seen := make(map[string]struct{}, len(t.Brands))
	for _, b := range t.Brands {
		if b.Name == "" {
			return fmt.Errorf("%w: brand with empty name", ErrInvalidTaxonomy)
		}
		if _, dup := seen[b.Name]; dup {
			return fmt.Errorf("%w: duplicate brand %q", ErrInvalidTaxonomy, b.Name)
		}
		seen[b.Name] = struct{}{}
		if b.Name != strings.ToLower(b.Name) {
			return fmt.Errorf("%w: brand %q must be lowercase", ErrInvalidTaxonomy, b.Name)
		}
		if len(b.Aliases) == 0 {
			return fmt.Errorf("%w: brand %q has no aliases", ErrInvalidTaxonomy, b.Name)
		}
	}

	seen = make(map[string]struct{}, len(t.Categories))
	for _, c := range t.Categories {
		if c.Name == "" {
			return fmt.Errorf("%w: category with empty name", ErrInvalidTaxonomy)
		}
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("%w: duplicate category %q", ErrInvalidTaxonomy, c.Name)
		}
		seen[c.Name] = struct{}{}
		if len(c.Items) == 0 {
			return fmt.Errorf("%w: category %q has no items", ErrInvalidTaxonomy, c.Name)
		}
		for _, item := range c.Items {
			if item == "" || item != strings.ToLower(item) {
				return fmt.Errorf("%w: category %q has invalid item %q", ErrInvalidTaxonomy, c.Name, item)
			}
		}
	}

	return nil
}

// BrandNames returns the canonical brand keys in table order.
func (t *Taxonomy) BrandNames() []string {
	names := make([]string, len(t.Brands))
	for i, b := range t.Brands {
		names[i] = b.Name
	}
	return names
}
