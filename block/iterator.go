package block

import "encoding/binary"

// Iterator is a positioned cursor over a Block's entries. It is a
// single-owner, single-threaded cursor: move it, don't share it.
type Iterator struct {
	block      *Block
	idx        int
	key        []byte
	valueStart int
	valueEnd   int
}

// NewIterator wraps block without positioning the cursor anywhere.
func NewIterator(blk *Block) *Iterator {
	return &Iterator{block: blk}
}

// CreateAndSeekToFirst wraps block and positions at its first entry.
func CreateAndSeekToFirst(blk *Block) *Iterator {
	it := NewIterator(blk)
	it.SeekToFirst()
	return it
}

// CreateAndSeekToKey wraps block and seeks to the first entry with key >= k.
func CreateAndSeekToKey(blk *Block, k []byte) *Iterator {
	it := NewIterator(blk)
	it.SeekToKey(k)
	return it
}

// Key returns the current entry's key. Only meaningful when IsValid.
func (it *Iterator) Key() []byte {
	return it.key
}

// Value returns the current entry's value, read without copying from
// the underlying block's data. Only meaningful when IsValid.
func (it *Iterator) Value() []byte {
	return it.block.Data[it.valueStart:it.valueEnd]
}

// IsValid reports whether the cursor sits on an entry.
func (it *Iterator) IsValid() bool {
	return len(it.key) > 0
}

// SeekToFirst positions the cursor at entry 0.
func (it *Iterator) SeekToFirst() {
	it.seekToIdx(0)
}

// Next advances the cursor by one entry. Advancing past the last entry
// invalidates the cursor.
func (it *Iterator) Next() {
	it.seekToIdx(it.idx + 1)
}

// SeekToKey lower-bound binary searches over the offset table,
// comparing materialized keys, and lands on the smallest entry whose
// key is >= k, or invalidates the cursor if none qualifies.
func (it *Iterator) SeekToKey(k []byte) {
	lo, hi := 0, len(it.block.Offsets)
	for lo < hi {
		mid := lo + (hi-lo)/2
		it.seekToIdx(mid)
		if string(it.key) < string(k) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	it.seekToIdx(lo)
}

// seekToIdx positions the cursor at idx, reading the u16 key_len at
// offsets[idx], then the key, then the u16 value_len, recording the
// value's byte range without copying. Out-of-range idx invalidates
// the cursor; that's a positioning state, not a fault.
func (it *Iterator) seekToIdx(idx int) {
	it.idx = idx
	if idx < 0 || idx >= len(it.block.Offsets) {
		it.key = nil
		it.valueStart, it.valueEnd = 0, 0
		return
	}

	data := it.block.Data
	offset := int(it.block.Offsets[idx])

	keyLen := int(binary.BigEndian.Uint16(data[offset:]))
	keyStart := offset + 2
	it.key = data[keyStart : keyStart+keyLen]

	valueLenOffset := keyStart + keyLen
	valueLen := int(binary.BigEndian.Uint16(data[valueLenOffset:]))
	valueStart := valueLenOffset + 2
	it.valueStart, it.valueEnd = valueStart, valueStart+valueLen
}
