package sstable

import "github.com/coastline-db/lsmtree/block"

// Iterator is a cursor over one SsTable. It navigates blocks via the
// table's meta index and loads the current block on demand, holding
// at most one decoded block at a time.
type Iterator struct {
	table    *SsTable
	blockIdx int
	blockIt  *block.Iterator
}

// CreateAndSeekToFirst positions at the table's first entry.
func CreateAndSeekToFirst(t *SsTable) (*Iterator, error) {
	it := &Iterator{table: t}
	if err := it.seekToFirstOfBlock(0); err != nil {
		return nil, err
	}
	return it, nil
}

// CreateAndSeekToKey positions at the smallest entry whose key is >= k,
// or invalidates if none exists.
func CreateAndSeekToKey(t *SsTable, k []byte) (*Iterator, error) {
	it := &Iterator{table: t}
	if err := it.seekToKey(k); err != nil {
		return nil, err
	}
	return it, nil
}

// Key returns the current entry's key. Panics if !IsValid.
func (it *Iterator) Key() []byte {
	if !it.IsValid() {
		panic("sstable: Key called on an invalid iterator")
	}
	return it.blockIt.Key()
}

// Value returns the current entry's value. Panics if !IsValid.
func (it *Iterator) Value() []byte {
	if !it.IsValid() {
		panic("sstable: Value called on an invalid iterator")
	}
	return it.blockIt.Value()
}

// IsValid reports whether the cursor sits on an entry.
func (it *Iterator) IsValid() bool {
	return it.blockIt != nil && it.blockIt.IsValid()
}

// Next advances the inner block iterator, loading the next block and
// seeking to its first entry if the current block is exhausted.
func (it *Iterator) Next() error {
	it.blockIt.Next()
	if it.blockIt.IsValid() {
		return nil
	}
	return it.seekToFirstOfBlock(it.blockIdx + 1)
}

// seekToFirstOfBlock loads block idx (if it exists) and positions at
// its first entry; an out-of-range idx leaves the iterator invalid.
func (it *Iterator) seekToFirstOfBlock(idx int) error {
	if idx >= it.table.NumBlocks() {
		it.blockIdx = idx
		it.blockIt = block.NewIterator(&block.Block{})
		return nil
	}

	blk, err := it.table.ReadBlockCached(idx)
	if err != nil {
		return err
	}
	it.blockIdx = idx
	it.blockIt = block.CreateAndSeekToFirst(blk)
	return nil
}

// seekToKey finds the candidate block via FindBlockIdx, seeks within
// it, and falls through to later blocks if the key is not present in
// the candidate block (spec §4.4: find_block_idx may return a block
// whose last_key < k).
func (it *Iterator) seekToKey(k []byte) error {
	idx := it.table.FindBlockIdx(k)

	blk, err := it.table.ReadBlockCached(idx)
	if err != nil {
		return err
	}
	it.blockIdx = idx
	it.blockIt = block.CreateAndSeekToKey(blk, k)

	if it.blockIt.IsValid() {
		return nil
	}
	return it.seekToFirstOfBlock(it.blockIdx + 1)
}
