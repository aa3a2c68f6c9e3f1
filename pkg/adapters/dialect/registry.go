package dialect

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/queryforge-io/queryforge-engine/pkg/apperrors"
)

// Registry maps connection URL prefixes and database type names to
// adapters. It is a plain dependency: callers construct one, register the
// adapters they want, and pass it to the factory. Safe for concurrent use.
type Registry struct {
	mu sync.RWMutex
	// ordered registration of prefixes; URL matching walks this slice so
	// the first registered match wins.
	prefixes    []string
	prefixIndex map[string]Adapter
	typeIndex   map[string]Adapter
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		prefixIndex: make(map[string]Adapter),
		typeIndex:   make(map[string]Adapter),
	}
}

// Register adds an adapter under its type name and every prefix it claims.
// Re-registering the same adapter instance is a no-op. Registering a
// different adapter under an already-claimed type or prefix fails without
// modifying the registry.
func (r *Registry) Register(a Adapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	dbType := strings.ToLower(a.Type())
	if existing, ok := r.typeIndex[dbType]; ok {
		if existing == a {
			return nil
		}
		return apperrors.RegistrationConflict(fmt.Sprintf("database type %q is already registered", dbType))
	}

	claimed := make([]string, 0, len(a.Prefixes()))
	for _, p := range a.Prefixes() {
		prefix := strings.ToLower(p)
		if existing, ok := r.prefixIndex[prefix]; ok && existing != a {
			return apperrors.RegistrationConflict(fmt.Sprintf("URL prefix %q is already registered", prefix))
		}
		claimed = append(claimed, prefix)
	}

	r.typeIndex[dbType] = a
	for _, prefix := range claimed {
		if _, ok := r.prefixIndex[prefix]; !ok {
			r.prefixes = append(r.prefixes, prefix)
		}
		r.prefixIndex[prefix] = a
	}
	return nil
}

// Unregister removes an adapter and all its prefixes. Unknown adapters
// are ignored.
func (r *Registry) Unregister(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	dbType := strings.ToLower(a.Type())
	if r.typeIndex[dbType] != a {
		return
	}
	delete(r.typeIndex, dbType)

	kept := r.prefixes[:0]
	for _, prefix := range r.prefixes {
		if r.prefixIndex[prefix] == a {
			delete(r.prefixIndex, prefix)
			continue
		}
		kept = append(kept, prefix)
	}
	r.prefixes = kept
}

// AdapterFor resolves the adapter for a connection URL by prefix match.
// The first registered matching prefix wins.
func (r *Registry) AdapterFor(url string) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lower := strings.ToLower(url)
	for _, prefix := range r.prefixes {
		if strings.HasPrefix(lower, prefix) {
			return r.prefixIndex[prefix], nil
		}
	}
	return nil, apperrors.UnsupportedDatabase(url, r.prefixesLocked())
}

// AdapterForType resolves an adapter by its canonical type name.
func (r *Registry) AdapterForType(dbType string) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.typeIndex[strings.ToLower(dbType)]
	if !ok {
		return nil, apperrors.AdapterNotFound(dbType)
	}
	return a, nil
}

// IsSupported reports whether some registered adapter claims the URL.
func (r *Registry) IsSupported(url string) bool {
	_, err := r.AdapterFor(url)
	return err == nil
}

// SupportedTypes returns the registered database type names, sorted.
func (r *Registry) SupportedTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.typeIndex))
	for t := range r.typeIndex {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// SupportedPrefixes returns every registered URL prefix in registration
// order.
func (r *Registry) SupportedPrefixes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.prefixesLocked()
}

func (r *Registry) prefixesLocked() []string {
	out := make([]string, len(r.prefixes))
	copy(out, r.prefixes)
	return out
}
