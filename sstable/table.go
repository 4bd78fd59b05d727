package sstable

import (
	"encoding/binary"
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/coastline-db/lsmtree/block"
	"github.com/coastline-db/lsmtree/bloom"
	"github.com/coastline-db/lsmtree/key"
)

// SsTable is an immutable, fully-sorted on-disk file of Blocks plus a
// decoded meta index held in memory. Once Open/Build returns, an
// SsTable is shared freely across goroutines: it never mutates itself.
type SsTable struct {
	file       *FileObject
	meta       []BlockMeta
	metaOffset uint32
	id         uint64
	cache      BlockCache
	firstKey   []byte
	lastKey    []byte
	bloom      *bloom.Filter
	maxTs      uint64 // reserved for a future MVCC layer; always 0, never interpreted
}

// OpenTable reads the footer, decodes the meta section, and derives
// the table's first/last key from it. Opening an SST with zero blocks
// is a malformed-SST error.
func OpenTable(id uint64, cache BlockCache, file *FileObject) (*SsTable, error) {
	const u32size = 4

	size := file.Size()
	if size < u32size {
		return nil, &SSTableError{Op: opLoadMeta, Err: fmt.Errorf("file too small to contain a meta offset (%d bytes)", size)}
	}

	tail, err := file.Read(size-u32size, u32size)
	if err != nil {
		return nil, &SSTableError{Op: opLoadMeta, Err: err}
	}
	metaOffset := binary.BigEndian.Uint32(tail)

	metaBytes, err := file.Read(int64(metaOffset), size-int64(metaOffset)-u32size)
	if err != nil {
		return nil, &SSTableError{Op: opLoadMeta, Err: err}
	}

	meta, err := decodeBlockMeta(metaBytes)
	if err != nil {
		return nil, &SSTableError{Op: opLoadMeta, Err: err}
	}
	if len(meta) == 0 {
		return nil, &SSTableError{Op: opEmptyMeta, Err: fmt.Errorf("sstable has no blocks")}
	}

	log.WithFields(log.Fields{"sst_id": id, "blocks": len(meta)}).Info("sstable: opened")

	return &SsTable{
		file:       file,
		meta:       meta,
		metaOffset: metaOffset,
		id:         id,
		cache:      cache,
		firstKey:   meta[0].FirstKey,
		lastKey:    meta[len(meta)-1].LastKey,
	}, nil
}

// ID returns the sstable's identifier.
func (t *SsTable) ID() uint64 { return t.id }

// NumBlocks returns the number of data blocks.
func (t *SsTable) NumBlocks() int { return len(t.meta) }

// FirstKey returns the smallest key stored in the table.
func (t *SsTable) FirstKey() []byte { return t.firstKey }

// LastKey returns the largest key stored in the table.
func (t *SsTable) LastKey() []byte { return t.lastKey }

// TableSize returns the size in bytes of the underlying file.
func (t *SsTable) TableSize() int64 { return t.file.Size() }

// MaxTs returns the reserved, always-zero max-timestamp field.
func (t *SsTable) MaxTs() uint64 { return t.maxTs }

// Bloom returns the table's attached bloom filter, or nil if none was
// attached. The core never builds or consults this on its own.
func (t *SsTable) Bloom() *bloom.Filter { return t.bloom }

// SetBloom attaches a filter built by an external (compaction-layer)
// caller; it is never part of the persisted file.
func (t *SsTable) SetBloom(f *bloom.Filter) { t.bloom = f }

// MayContain is a convenience wrapper: true unless a bloom filter is
// attached and confidently rules the key out.
func (t *SsTable) MayContain(k []byte) bool {
	if t.bloom == nil {
		return true
	}
	return t.bloom.MayContain(k)
}

// Close releases the underlying file handle.
func (t *SsTable) Close() error { return t.file.Close() }

// readBlock issues one positional read spanning the block's byte
// range and decodes it.
func (t *SsTable) readBlock(i int) (*block.Block, error) {
	start := int64(t.meta[i].Offset)
	var end int64
	if i+1 < len(t.meta) {
		end = int64(t.meta[i+1].Offset)
	} else {
		end = int64(t.metaOffset)
	}

	raw, err := t.file.Read(start, end-start)
	if err != nil {
		return nil, &SSTableError{Op: opLoadBlock, Err: err}
	}

	blk, err := block.Decode(raw)
	if err != nil {
		return nil, &SSTableError{Op: opLoadBlock, Err: err}
	}
	return blk, nil
}

// ReadBlock loads block i from disk, bypassing any cache.
func (t *SsTable) ReadBlock(i int) (*block.Block, error) {
	return t.readBlock(i)
}

// ReadBlockCached loads block i, consulting the external cache first
// and populating it on miss.
func (t *SsTable) ReadBlockCached(i int) (*block.Block, error) {
	if t.cache == nil {
		return t.readBlock(i)
	}
	return t.cache.GetOrInsert(t.id, i, func() (*block.Block, error) {
		return t.readBlock(i)
	})
}

// FindBlockIdx returns the index of the block that may contain k: the
// largest i with meta[i].FirstKey <= k, clamped to zero. This may
// return a block whose LastKey < k; the SsTableIterator detects that
// by positioning inside the block and advancing if necessary.
func (t *SsTable) FindBlockIdx(k []byte) int {
	// partitionPoint is the count of blocks whose FirstKey <= k.
	partitionPoint := sort.Search(len(t.meta), func(i int) bool {
		return key.Less(k, t.meta[i].FirstKey)
	})
	if partitionPoint == 0 {
		return 0
	}
	return partitionPoint - 1
}
