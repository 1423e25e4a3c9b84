package state

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// PreimageCache is a small read-through cache in front of preimage
// lookups, the same role erigon's own LRU caches play in front of its
// state reader (SPEC_FULL.md §11). A batch of operands routed to one
// service frequently re-resolves the same handful of preimages (e.g. a
// service's own code hash, looked up once per invocation); caching avoids
// repeating the map traversal.
//
// The cache is purely a performance layer: a miss always falls through to
// the authoritative DeltaSnapshot, and entries are invalidated wholesale
// at the start of each block rather than tracked for fine-grained
// invalidation, since preimages are effectively immutable once installed.
type PreimageCache struct {
	cache *lru.Cache[[31]byte, []byte]
}

// NewPreimageCache returns a cache holding up to size entries.
func NewPreimageCache(size int) *PreimageCache {
	c, err := lru.New[[31]byte, []byte](size)
	if err != nil {
		// Only returned by golang-lru for size <= 0; callers always pass a
		// positive constant, so this is an engine-configuration bug.
		panic(err)
	}
	return &PreimageCache{cache: c}
}

// Get returns the cached bytes for key, if present.
func (c *PreimageCache) Get(key [31]byte) ([]byte, bool) {
	return c.cache.Get(key)
}

// Put inserts or refreshes key's cached bytes.
func (c *PreimageCache) Put(key [31]byte, value []byte) {
	c.cache.Add(key, value)
}

// Reset clears the cache, called once per block.
func (c *PreimageCache) Reset() {
	c.cache.Purge()
}
