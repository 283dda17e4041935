package importer

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Package-level binding registration, populated by the tables package from
// init funcs the way table definitions register themselves elsewhere in the
// codebase.
var (
	registered   []Binding
	registeredMu sync.Mutex
)

// Register adds a binding to the global set. Panics on a duplicate table
// name; bindings are wiring, and a collision is a programming error.
func Register(b Binding) {
	registeredMu.Lock()
	defer registeredMu.Unlock()

	for _, r := range registered {
		if r.Table == b.Table {
			panic(fmt.Sprintf("table already registered: %s", b.Table))
		}
	}
	registered = append(registered, b)
}

// RegisteredBindings returns a copy of all registered bindings.
func RegisteredBindings() []Binding {
	registeredMu.Lock()
	defer registeredMu.Unlock()
	return append([]Binding(nil), registered...)
}

// Registry resolves inbound filenames to bindings. Patterns are substrings
// matched case-insensitively; rules are ordered longest-pattern-first so a
// filename containing "info_membership" can never fall through to the
// shorter "membership" rule, regardless of registration order.
type Registry struct {
	rules []Binding
}

// NewRegistry builds a registry over the given bindings.
func NewRegistry(bindings []Binding) *Registry {
	rules := append([]Binding(nil), bindings...)
	sort.SliceStable(rules, func(i, j int) bool {
		if len(rules[i].Pattern) != len(rules[j].Pattern) {
			return len(rules[i].Pattern) > len(rules[j].Pattern)
		}
		return rules[i].Pattern < rules[j].Pattern
	})
	return &Registry{rules: rules}
}

// DefaultRegistry builds a registry from every Register'd binding.
func DefaultRegistry() *Registry {
	return NewRegistry(RegisteredBindings())
}

// Select returns the binding for a filename, or ErrUnsupportedFilename when
// no rule matches.
func (r *Registry) Select(filename string) (Binding, error) {
	name := strings.ToLower(filename)
	for _, rule := range r.rules {
		if strings.Contains(name, rule.Pattern) {
			return rule, nil
		}
	}
	return Binding{}, fmt.Errorf("%w: %s", ErrUnsupportedFilename, filename)
}

// Tables returns the distinct target table names, in rule order.
func (r *Registry) Tables() []string {
	out := make([]string, 0, len(r.rules))
	for _, rule := range r.rules {
		out = append(out, rule.Table)
	}
	return out
}
