// Package registry holds the process-wide list of gateway connectors.
package registry

import (
	"sync"

	"tradelink_go/internal/domain"
)

// Connectors is a mutex-guarded connector name list. Readers never observe
// a partially replaced list.
type Connectors struct {
	mu    sync.RWMutex
	names []string
}

// NewConnectors returns an empty registry.
func NewConnectors() *Connectors {
	return &Connectors{}
}

// Replace clears the list and fills it with names.
func (c *Connectors) Replace(names []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names = append(c.names[:0:0], names...)
}

// Names returns a copy of the current list.
func (c *Connectors) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Has reports whether name is registered.
func (c *Connectors) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, n := range c.names {
		if n == name {
			return true
		}
	}
	return false
}

// Len returns the number of registered connectors.
func (c *Connectors) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.names)
}

var _ domain.ConnectorRegistry = (*Connectors)(nil)
