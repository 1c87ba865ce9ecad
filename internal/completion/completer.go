// Package completion offers prefix completion over the gateway
// configuration keys.
package completion

import (
	"strings"
	"sync"
)

// Completer matches prefixes against a swappable candidate list.
type Completer struct {
	mu         sync.RWMutex
	candidates []string
}

// New returns a completer seeded with keys.
func New(keys []string) *Completer {
	c := &Completer{}
	c.Rebuild(keys)
	return c
}

// Rebuild replaces the candidate list.
func (c *Completer) Rebuild(keys []string) {
	next := make([]string, len(keys))
	copy(next, keys)

	c.mu.Lock()
	c.candidates = next
	c.mu.Unlock()
}

// Complete returns every candidate starting with prefix, in list order.
// An empty prefix matches everything.
func (c *Completer) Complete(prefix string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []string
	for _, k := range c.candidates {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out
}

// Len returns the number of candidates.
func (c *Completer) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.candidates)
}
