package sstable

import "github.com/coastline-db/lsmtree/block"

// BlockCache is the consumer-side contract for an external block
// cache (spec §6): a mapping from (sstID, blockIdx) to a shared Block,
// with eviction entirely outside the core's concern. Load is called on
// a miss and its result is cached before being returned.
type BlockCache interface {
	GetOrInsert(sstID uint64, blockIdx int, load func() (*block.Block, error)) (*block.Block, error)
}
