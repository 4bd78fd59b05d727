package iterator

import "bytes"

// EndKind classifies how an LsmIterator's upper bound treats its key.
type EndKind int

const (
	// EndUnbounded means the scan runs to the end of every source.
	EndUnbounded EndKind = iota
	// EndIncluded means the end key itself is part of the range.
	EndIncluded
	// EndExcluded means the end key itself is outside the range.
	EndExcluded
)

// LsmIterator is the engine-facing cursor: a FusedIterator over a
// MergeIterator of heterogeneous per-layer sources (memtables, then
// sstables, newest first), with an end-key bound enforced here since
// no single source knows the engine's requested scan range. Contract
// is identical to the wrapped iterator modulo this bound.
type LsmIterator struct {
	inner   *FusedIterator
	endKind EndKind
	endKey  []byte
	ended   bool
}

// NewLsmIterator merges sources (highest priority first) and applies
// the given end bound.
func NewLsmIterator(sources []StorageIterator, endKind EndKind, endKey []byte) (*LsmIterator, error) {
	merged, err := NewMergeIterator(sources)
	if err != nil {
		return nil, err
	}
	it := &LsmIterator{inner: NewFusedIterator(merged), endKind: endKind, endKey: endKey}
	it.checkEnd()
	return it, nil
}

func (it *LsmIterator) checkEnd() {
	if it.ended || !it.inner.IsValid() {
		return
	}
	switch it.endKind {
	case EndIncluded:
		if bytes.Compare(it.inner.Key(), it.endKey) > 0 {
			it.ended = true
		}
	case EndExcluded:
		if bytes.Compare(it.inner.Key(), it.endKey) >= 0 {
			it.ended = true
		}
	}
}

// Key returns the current entry's key. Only meaningful when IsValid.
func (it *LsmIterator) Key() []byte {
	if !it.IsValid() {
		panic("iterator: Key called on an invalid iterator")
	}
	return it.inner.Key()
}

// Value returns the current entry's value. Only meaningful when IsValid.
func (it *LsmIterator) Value() []byte {
	if !it.IsValid() {
		panic("iterator: Value called on an invalid iterator")
	}
	return it.inner.Value()
}

// IsValid reports whether the cursor sits on an entry within bounds.
func (it *LsmIterator) IsValid() bool {
	return !it.ended && it.inner.IsValid()
}

// Next advances the cursor, re-checking the end bound afterward.
func (it *LsmIterator) Next() error {
	if it.ended {
		return nil
	}
	if err := it.inner.Next(); err != nil {
		return err
	}
	it.checkEnd()
	return nil
}
