// Package connectors holds the connector registry, the shared connector error
// taxonomy and the built-in connectors.
package connectors

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"dsar/internal/discovery/ports"
)

// Registry maps provider names to connectors. Names are case-insensitive.
type Registry struct {
	mu         sync.RWMutex
	connectors map[string]ports.Connector
}

// NewRegistry creates a new empty registry
func NewRegistry() *Registry {
	return &Registry{
		connectors: make(map[string]ports.Connector),
	}
}

// Register adds a connector under provider.
func (r *Registry) Register(provider string, c ports.Connector) error {
	key := registryKey(provider)
	if key == "" {
		return ErrConnectorNameEmpty
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.connectors[key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateConnector, key)
	}
	r.connectors[key] = c
	return nil
}

// Get retrieves the connector for provider.
func (r *Registry) Get(provider string) (ports.Connector, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.connectors[registryKey(provider)]
	return c, ok
}

// Providers returns the registered provider names in sorted order.
func (r *Registry) Providers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]string, 0, len(r.connectors))
	for name := range r.connectors {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

func registryKey(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}
