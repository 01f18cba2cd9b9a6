package catalog

import "fmt"

// Catalog is an ordered, immutable set of patterns with unique names.
type Catalog struct {
	patterns []*Pattern
	byName   map[string]*Pattern
}

// NewCatalog builds a catalog. Duplicate names are rejected.
func NewCatalog(patterns ...*Pattern) (*Catalog, error) {
	c := &Catalog{
		patterns: make([]*Pattern, 0, len(patterns)),
		byName:   make(map[string]*Pattern, len(patterns)),
	}
	for _, p := range patterns {
		if p == nil {
			return nil, fmt.Errorf("nil pattern")
		}
		if _, exists := c.byName[p.name]; exists {
			return nil, fmt.Errorf("pattern %s already registered", p.name)
		}
		c.byName[p.name] = p
		c.patterns = append(c.patterns, p)
	}
	return c, nil
}

// With returns a new catalog holding c's patterns followed by extra. c is unchanged.
func (c *Catalog) With(extra ...*Pattern) (*Catalog, error) {
	all := make([]*Pattern, 0, len(c.patterns)+len(extra))
	all = append(all, c.patterns...)
	all = append(all, extra...)
	return NewCatalog(all...)
}

// Patterns returns the patterns in registration order.
func (c *Catalog) Patterns() []*Pattern {
	return append([]*Pattern(nil), c.patterns...)
}

func (c *Catalog) Len() int { return len(c.patterns) }

func (c *Catalog) Lookup(name string) (*Pattern, bool) {
	p, ok := c.byName[name]
	return p, ok
}
