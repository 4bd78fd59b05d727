package block

import (
	"encoding/binary"
	"fmt"

	"github.com/coastline-db/lsmtree/config"
	"github.com/coastline-db/lsmtree/key"
)

// entryHeaderBytes accounts for the two u16 length prefixes (key_len,
// value_len) that precede every entry's bytes.
const entryHeaderBytes = 4

// Builder accumulates sorted entries into a target-sized Block,
// rejecting entries once the projected encoded size would exceed the
// configured budget. The very first entry is always accepted,
// regardless of size, so an oversized pair still makes progress
// instead of deadlocking the caller.
type Builder struct {
	offsets   []uint16
	data      []byte
	blockSize int
}

// NewBuilder creates an empty Builder with a soft byte budget.
func NewBuilder(blockSize int) *Builder {
	return &Builder{blockSize: blockSize}
}

// NewBuilderWithSettings creates an empty Builder sized from settings.
func NewBuilderWithSettings(settings *config.Settings) *Builder {
	return NewBuilder(int(settings.BlockSizeByte))
}

// Add appends a new entry if it fits the block's byte budget. It
// returns false, without mutating the builder, when the entry would
// not fit and the builder already holds at least one entry.
//
// Add panics if key or value exceeds key.MaxLen bytes: that is an
// invariant violation the caller must not trigger, not a runtime
// condition to recover from.
func (b *Builder) Add(k, v []byte) bool {
	if len(k) > key.MaxLen {
		panic(fmt.Sprintf("block: key length %d exceeds %d", len(k), key.MaxLen))
	}
	if len(v) > key.MaxLen {
		panic(fmt.Sprintf("block: value length %d exceeds %d", len(v), key.MaxLen))
	}

	projected := len(b.data) + (len(b.offsets)+1)*offsetWidth + offsetWidth
	projected += len(k) + len(v) + entryHeaderBytes

	if projected > b.blockSize && len(b.offsets) != 0 {
		return false
	}

	b.offsets = append(b.offsets, uint16(len(b.data)))

	entry := make([]byte, 0, entryHeaderBytes+len(k)+len(v))
	entry = binary.BigEndian.AppendUint16(entry, uint16(len(k)))
	entry = append(entry, k...)
	entry = binary.BigEndian.AppendUint16(entry, uint16(len(v)))
	entry = append(entry, v...)
	b.data = append(b.data, entry...)

	return true
}

// IsEmpty reports whether any entry has been added.
func (b *Builder) IsEmpty() bool {
	return len(b.offsets) == 0
}

// Build consumes the builder and yields the immutable Block.
func (b *Builder) Build() *Block {
	return &Block{Data: b.data, Offsets: b.offsets}
}
