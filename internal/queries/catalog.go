// Package queries holds the fixed report catalog and runs it against the
// populated schema. The catalog is data, not code: a versioned YAML document
// naming each query, its column contract, and its SQL, so any storage
// implementation can be validated against the same expectations.
package queries

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Query is one named report: parameterless, read-only, deterministic order.
type Query struct {
	Name    string   `yaml:"name"`
	Title   string   `yaml:"title"`
	Columns []string `yaml:"columns"`
	SQL     string   `yaml:"sql"`
}

// Catalog is the versioned report contract.
type Catalog struct {
	Version int     `yaml:"version"`
	Queries []Query `yaml:"queries"`

	byName map[string]*Query
}

// LoadCatalog parses and validates the embedded catalog.
func LoadCatalog() (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(catalogYAML, &c); err != nil {
		return nil, fmt.Errorf("catalog is not valid YAML: %w", err)
	}
	if c.Version != 1 {
		return nil, fmt.Errorf("unsupported catalog version %d", c.Version)
	}

	c.byName = make(map[string]*Query, len(c.Queries))
	for i := range c.Queries {
		q := &c.Queries[i]
		if q.Name == "" {
			return nil, fmt.Errorf("catalog entry %d has no name", i)
		}
		if _, dup := c.byName[q.Name]; dup {
			return nil, fmt.Errorf("duplicate query name %q", q.Name)
		}
		if len(q.Columns) == 0 {
			return nil, fmt.Errorf("query %q declares no columns", q.Name)
		}
		if strings.TrimSpace(q.SQL) == "" {
			return nil, fmt.Errorf("query %q has no SQL", q.Name)
		}
		c.byName[q.Name] = q
	}
	return &c, nil
}

// Get returns the named query, or nil if the catalog does not define it.
func (c *Catalog) Get(name string) *Query {
	return c.byName[name]
}

// Names returns all query names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.byName))
	for name := range c.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
