package trailpack

import (
	"fmt"
	"sort"
)

// Catalog maps names used in definition files to trailpack factories.
type Catalog map[string]Factory

// Lookup returns a new trailpack for name.
func (c Catalog) Lookup(name string) (Trailpack, error) {
	f, ok := c[name]
	if !ok || f == nil {
		return nil, fmt.Errorf("trailpack %q is not in the catalog (known: %v)", name, c.Names())
	}
	return f(), nil
}

// Names returns the catalog's names, sorted.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for n := range c {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
