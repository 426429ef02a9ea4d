// Package respcache memoizes completed generations by a fingerprint of the
// request parameters. The cache grows monotonically up to its capacity and
// then stops admitting; there is no eviction and no TTL.
package respcache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"sync"
)

// DefaultCapacity bounds the number of memoized generations.
const DefaultCapacity = 100

// Entry is one completed generation, immutable once stored.
type Entry struct {
	Prompt          string
	Text            string
	TokensGenerated int
}

// Key fingerprints the tuple that fully determines a generation. The digest
// is deterministic across processes; the algorithm itself is not part of the
// contract.
func Key(prompt string, maxNewTokens int, temperature float64) string {
	h := sha256.New()
	h.Write([]byte(prompt))
	// Fixed-width suffix keeps the encoding injective for any prompt.
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], uint64(int64(maxNewTokens)))
	binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(temperature))
	h.Write(buf[:])
	return hex.EncodeToString(h.Sum(nil))
}

type Cache struct {
	mu       sync.RWMutex
	capacity int
	entries  map[string]Entry
}

// New returns an empty cache. A non-positive capacity falls back to
// DefaultCapacity.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[string]Entry, capacity),
	}
}

// Lookup returns the entry stored under key, if any.
func (c *Cache) Lookup(key string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

// Store admits the entry only while the cache holds fewer entries than its
// capacity; once full the cache is frozen. It reports whether the entry was
// written.
func (c *Cache) Store(key string, e Entry) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= c.capacity {
		return false
	}
	c.entries[key] = e
	return true
}

// Len reports the current number of entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Cap reports the admission limit.
func (c *Cache) Cap() int { return c.capacity }
