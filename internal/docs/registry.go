// Package docs holds the route documentation catalog. The catalog is built
// once at startup from an embedded YAML file and is read-only afterwards.
package docs

import (
	_ "embed"
	"errors"
	"fmt"
	"maps"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

var (
	// ErrNotFound is returned for a (route, verb) pair without documentation.
	ErrNotFound = errors.New("no documentation for route")

	ErrDuplicateEntry = errors.New("duplicate documentation entry")
	ErrEmptyRoute     = errors.New("documentation entry without route")
)

// Entry documents one route.
type Entry struct {
	Route       string         `yaml:"route" json:"route"`
	Verb        string         `yaml:"verb" json:"verb"`
	Group       string         `yaml:"group" json:"group"`
	Description string         `yaml:"description" json:"description"`
	Parameters  map[string]any `yaml:"parameters" json:"parameters"`
}

// RouteRef identifies a registered route.
type RouteRef struct {
	Verb    string
	Pattern string
}

// InternalKey builds the lookup key of a route: the lowercased verb followed
// by the lowercased route, with a "/" inserted only when the route lacks one.
// An empty route has an empty key.
func InternalKey(route, verb string) string {
	if route == "" {
		return ""
	}
	route = strings.ToLower(route)
	verb = strings.ToLower(verb)
	if strings.HasPrefix(route, "/") {
		return verb + route
	}
	return verb + "/" + route
}

// Registry is an ordered, keyed catalog of route documentation.
type Registry struct {
	keys    []string
	entries map[string]Entry
}

// NewRegistry builds a registry preserving the order of entries. Entries
// with an empty route or a key already present are rejected.
func NewRegistry(entries []Entry) (*Registry, error) {
	r := &Registry{
		keys:    make([]string, 0, len(entries)),
		entries: make(map[string]Entry, len(entries)),
	}
	for _, e := range entries {
		key := InternalKey(e.Route, e.Verb)
		if key == "" {
			return nil, fmt.Errorf("%w (verb %q)", ErrEmptyRoute, e.Verb)
		}
		if _, exists := r.entries[key]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateEntry, key)
		}
		e.Verb = strings.ToUpper(e.Verb)
		if e.Parameters == nil {
			e.Parameters = map[string]any{}
		}
		r.keys = append(r.keys, key)
		r.entries[key] = e
	}
	return r, nil
}

// LoadCatalog parses a YAML catalog with a top-level "entries" list.
func LoadCatalog(data []byte) (*Registry, error) {
	var catalog struct {
		Entries []Entry `yaml:"entries"`
	}
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("unmarshal catalog: %w", err)
	}
	return NewRegistry(catalog.Entries)
}

// Default returns the registry built from the embedded catalog.
func Default() (*Registry, error) {
	return LoadCatalog(catalogYAML)
}

// GetDocumentation returns the single entry documenting (route, verb), or
// ErrNotFound.
func (r *Registry) GetDocumentation(route, verb string) ([]Entry, error) {
	e, ok := r.entries[InternalKey(route, verb)]
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, strings.ToUpper(verb), route)
	}
	return []Entry{cloneEntry(e)}, nil
}

// GetCompleteAPIDocumentation returns every entry in catalog order.
func (r *Registry) GetCompleteAPIDocumentation() []Entry {
	all := make([]Entry, 0, len(r.keys))
	for _, key := range r.keys {
		all = append(all, cloneEntry(r.entries[key]))
	}
	return all
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	return len(r.keys)
}

// Verify returns the entries that document a route missing from routes.
func (r *Registry) Verify(routes []RouteRef) []Entry {
	registered := make(map[string]struct{}, len(routes))
	for _, route := range routes {
		registered[InternalKey(route.Pattern, route.Verb)] = struct{}{}
	}

	var missing []Entry
	for _, key := range r.keys {
		if _, ok := registered[key]; !ok {
			missing = append(missing, cloneEntry(r.entries[key]))
		}
	}
	return missing
}

func cloneEntry(e Entry) Entry {
	e.Parameters = maps.Clone(e.Parameters)
	return e
}
