package sstable

import (
	"encoding/binary"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/coastline-db/lsmtree/block"
	"github.com/coastline-db/lsmtree/bloom"
	"github.com/coastline-db/lsmtree/config"
)

// Builder streams key-value pairs into blocks, closing each block at
// the configured size threshold, and finalizes the SST file on Build.
type Builder struct {
	builder   *block.Builder
	firstKey  []byte
	lastKey   []byte
	data      []byte
	meta      []BlockMeta
	blockSize int
	keys      [][]byte // retained only to let Build attach an optional bloom filter
}

// NewBuilder creates a builder targeting the given block size.
func NewBuilder(blockSize int) *Builder {
	return &Builder{
		builder:   block.NewBuilder(blockSize),
		blockSize: blockSize,
	}
}

// NewBuilderWithSettings creates a builder using the block size from
// settings, the convenience path for callers already holding a
// config.Settings rather than a bare int.
func NewBuilderWithSettings(settings *config.Settings) *Builder {
	return NewBuilder(int(settings.BlockSizeByte))
}

// Add appends a key-value pair. Keys must arrive in non-decreasing
// order; violating that is a programmer error and panics rather than
// returning an error, matching spec §7's treatment of invariant
// violations.
func (b *Builder) Add(k, v []byte) {
	if len(b.firstKey) == 0 {
		b.firstKey = append([]byte(nil), k...)
	} else if string(b.lastKey) > string(k) {
		panic(fmt.Sprintf("sstable: out-of-order add, last key %q > new key %q", b.lastKey, k))
	}

	b.keys = append(b.keys, append([]byte(nil), k...))

	if b.builder.Add(k, v) {
		b.lastKey = append([]byte(nil), k...)
		return
	}

	b.finalizeBlock()

	if !b.builder.Add(k, v) {
		panic("sstable: first add to a fresh block must always succeed")
	}
	b.firstKey = append([]byte(nil), k...)
	b.lastKey = append([]byte(nil), k...)
}

// EstimatedSize returns the accumulated data length, a lower bound on
// the eventual file size.
func (b *Builder) EstimatedSize() int {
	return len(b.data)
}

// finalizeBlock pushes a BlockMeta for the current block, encodes and
// appends it to the accumulated data, and resets the block state.
func (b *Builder) finalizeBlock() {
	if b.builder.IsEmpty() {
		return
	}

	b.meta = append(b.meta, BlockMeta{
		Offset:   uint32(len(b.data)),
		FirstKey: b.firstKey,
		LastKey:  b.lastKey,
	})

	encoded := b.builder.Build().Encode()
	b.data = append(b.data, encoded...)

	b.builder = block.NewBuilder(b.blockSize)
	b.firstKey = nil
	b.lastKey = nil
}

// Build finalizes any pending trailing block, serializes the meta
// section and trailing meta-offset, writes the whole buffer through
// FileObject (one write + fsync), and opens the result read-only.
//
// A positive bloomFalsePositiveRate builds and attaches a bloom filter
// over the keys seen so far (spec's reserved, never-persisted slot);
// pass 0 to skip bloom construction entirely.
func (b *Builder) Build(id uint64, cache BlockCache, path string, bloomFalsePositiveRate float64) (*SsTable, error) {
	b.finalizeBlock()

	if len(b.meta) == 0 {
		return nil, fmt.Errorf("sstable: cannot build an SST with zero blocks")
	}

	buffer := append([]byte(nil), b.data...)
	metaOffset := uint32(len(buffer))
	buffer = append(buffer, encodeBlockMeta(b.meta)...)
	buffer = binary.BigEndian.AppendUint32(buffer, metaOffset)

	file, err := Create(path, buffer)
	if err != nil {
		return nil, &SSTableError{Op: opWriteData, Err: err}
	}

	table := &SsTable{
		file:       file,
		meta:       b.meta,
		metaOffset: metaOffset,
		id:         id,
		cache:      cache,
		firstKey:   b.meta[0].FirstKey,
		lastKey:    b.meta[len(b.meta)-1].LastKey,
	}

	if bloomFalsePositiveRate > 0 && len(b.keys) > 0 {
		table.bloom = bloom.Build(b.keys, bloomFalsePositiveRate)
	}

	log.WithFields(log.Fields{
		"sst_id": id,
		"blocks": len(b.meta),
		"bytes":  len(buffer),
		"path":   path,
	}).Info("sstable: built")

	return table, nil
}
