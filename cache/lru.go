// Package cache provides the concrete BlockCache implementation the
// sstable package consumes through its BlockCache interface (spec §6):
// a mapping from (sst_id, block_idx) to a shared Block, with eviction
// policy delegated entirely to an LRU.
package cache

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/coastline-db/lsmtree/block"
)

// LRUBlockCache bounds the number of resident blocks and evicts the
// least-recently-used one once full. A map of in-flight loads, guarded
// by one mutex, guarantees a concurrent miss on the same
// (sstID, blockIdx) loads the block only once, instead of once per
// racing caller.
type LRUBlockCache struct {
	cache *lru.Cache[string, *block.Block]

	loadMu   sync.Mutex
	inflight map[string]*sync.WaitGroup
}

// NewLRUBlockCache builds a cache holding up to size blocks.
func NewLRUBlockCache(size int) (*LRUBlockCache, error) {
	c, err := lru.New[string, *block.Block](size)
	if err != nil {
		return nil, err
	}
	return &LRUBlockCache{cache: c, inflight: make(map[string]*sync.WaitGroup)}, nil
}

func cacheKey(sstID uint64, blockIdx int) string {
	return fmt.Sprintf("%d:%d", sstID, blockIdx)
}

// GetOrInsert returns the cached block for (sstID, blockIdx), calling
// load to populate the cache on a miss. Concurrent misses on the same
// key collapse into a single load call.
func (c *LRUBlockCache) GetOrInsert(sstID uint64, blockIdx int, load func() (*block.Block, error)) (*block.Block, error) {
	key := cacheKey(sstID, blockIdx)

	if blk, ok := c.cache.Get(key); ok {
		return blk, nil
	}

	c.loadMu.Lock()
	if blk, ok := c.cache.Get(key); ok {
		c.loadMu.Unlock()
		return blk, nil
	}
	if wg, ok := c.inflight[key]; ok {
		c.loadMu.Unlock()
		wg.Wait()
		if blk, ok := c.cache.Get(key); ok {
			return blk, nil
		}
		return load()
	}

	wg := &sync.WaitGroup{}
	wg.Add(1)
	c.inflight[key] = wg
	c.loadMu.Unlock()

	blk, err := load()
	if err == nil {
		c.cache.Add(key, blk)
	}

	c.loadMu.Lock()
	delete(c.inflight, key)
	c.loadMu.Unlock()
	wg.Done()

	if err != nil {
		return nil, err
	}
	return blk, nil
}

// Len reports the number of blocks currently resident.
func (c *LRUBlockCache) Len() int { return c.cache.Len() }

// Purge evicts every cached block.
func (c *LRUBlockCache) Purge() { c.cache.Purge() }
