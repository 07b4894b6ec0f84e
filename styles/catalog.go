// Package styles holds the catalog of image styles offered by the bot.
package styles

import (
	"sort"
	"strings"
)

// Style describes a single transform style offered to users.
type Style struct {
	// Name is the display label shown on keyboards and matched against
	// user text.
	Name string
	// ID is the stable identifier sent to the transform backend.
	ID string
}

// Catalog is an immutable set of styles with case-insensitive lookup.
type Catalog struct {
	byKey map[string]Style
	names []string
}

// DefaultStyles mirrors the built-in style set.
func DefaultStyles() map[string]string {
	return map[string]string{
		"Candy":         "candy",
		"Mosaic":        "mosaic",
		"Rain Princess": "rain_princess",
		"Udnie":         "udnie",
	}
}

// NewCatalog builds a catalog from a name-to-id mapping. Empty entries
// are skipped.
func NewCatalog(entries map[string]string) *Catalog {
	c := &Catalog{byKey: make(map[string]Style, len(entries))}
	for name, id := range entries {
		name = strings.TrimSpace(name)
		id = strings.TrimSpace(id)
		if name == "" || id == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, exists := c.byKey[key]; exists {
			continue
		}
		c.byKey[key] = Style{Name: name, ID: id}
		c.names = append(c.names, name)
	}
	sort.Strings(c.names)
	return c
}

// Resolve matches user text against the catalog. The match is exact
// after trimming and case folding; no fuzzy matching.
func (c *Catalog) Resolve(text string) (Style, bool) {
	key := strings.ToLower(strings.TrimSpace(text))
	if key == "" {
		return Style{}, false
	}
	s, ok := c.byKey[key]
	return s, ok
}

// Names returns display names in stable sorted order, for keyboards
// and prompts.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Len reports the number of styles in the catalog.
func (c *Catalog) Len() int {
	return len(c.byKey)
}
