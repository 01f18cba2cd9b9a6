package engine

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// resultCache keeps recent reports keyed by an xxhash of the input. Eviction
// is first-in first-out; entries are never mutated after insertion.
type resultCache struct {
	mu      sync.Mutex
	max     int
	entries map[uint64]*Report
	order   []uint64
}

func newResultCache(max int) *resultCache {
	return &resultCache{
		max:     max,
		entries: make(map[uint64]*Report, max),
		order:   make([]uint64, 0, max),
	}
}

func (c *resultCache) get(key uint64) (*Report, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.entries[key]
	return r, ok
}

func (c *resultCache) put(key uint64, r *Report) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		return
	}
	if len(c.order) >= c.max {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = r
	c.order = append(c.order, key)
}

func (c *resultCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// cacheKey hashes every input field that can change the deterministic stages.
func cacheKey(in Input) uint64 {
	d := xxhash.New()
	for _, field := range []string{string(in.Mode), in.MIMEType, in.FileName, in.SourceSystem, in.Text} {
		_, _ = d.WriteString(field)
		_, _ = d.Write([]byte{0})
	}
	_, _ = d.Write(in.Document)
	return d.Sum64()
}
