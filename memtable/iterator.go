package memtable

import "github.com/huandu/skiplist"

// BoundKind distinguishes how a scan bound includes or excludes its key.
type BoundKind int

const (
	// KindUnbounded means the scan has no limit on this side.
	KindUnbounded BoundKind = iota
	// KindIncluded means the bound key itself is part of the range.
	KindIncluded
	// KindExcluded means the bound key itself is outside the range.
	KindExcluded
)

// Bound is one half-open/closed end of a Scan range.
type Bound struct {
	Kind BoundKind
	Key  []byte
}

// Unbounded returns a Bound with no limit.
func Unbounded() Bound { return Bound{Kind: KindUnbounded} }

// Included returns a Bound that includes key itself.
func Included(key []byte) Bound { return Bound{Kind: KindIncluded, Key: key} }

// Excluded returns a Bound that excludes key itself.
func Excluded(key []byte) Bound { return Bound{Kind: KindExcluded, Key: key} }

// Iterator materializes successive key-value pairs out of a MemTable
// snapshot. Validity is "current key is non-empty"; Next advances the
// underlying range cursor. Because Go has no self-referential struct
// problem, the iterator simply holds the skiplist (kept alive by the
// MemTable's own reference, or by this iterator's own reference once
// taken) alongside a live *skiplist.Element cursor — no ownership
// trick is needed the way Rust's mem_table.rs needs one.
type Iterator struct {
	list  *skiplist.SkipList
	elem  *skiplist.Element
	upper Bound
	key   []byte
	value []byte
}

// Scan returns an iterator over the half-open/closed range described
// by lower and upper. The snapshot reflects the memtable at the time
// Scan is called; later writes may or may not be visible to it.
func (m *MemTable) Scan(lower, upper Bound) *Iterator {
	m.mu.RLock()
	defer m.mu.RUnlock()

	it := &Iterator{list: m.list, upper: upper}

	switch lower.Kind {
	case KindUnbounded:
		it.elem = m.list.Front()
	default:
		it.elem = m.list.Find(byteKey(lower.Key))
		if it.elem != nil && lower.Kind == KindExcluded && cmpBytes([]byte(it.elem.Key().(byteKey)), lower.Key) == 0 {
			it.elem = it.elem.Next()
		}
	}

	it.loadCurrent()
	return it
}

// loadCurrent copies the element under the cursor into key/value,
// respecting the upper bound; past the bound (or past the end) it
// clears key/value, which is what IsValid checks.
func (it *Iterator) loadCurrent() {
	if it.elem == nil {
		it.key, it.value = nil, nil
		return
	}

	k := []byte(it.elem.Key().(byteKey))

	switch it.upper.Kind {
	case KindIncluded:
		if cmpBytes(k, it.upper.Key) > 0 {
			it.elem = nil
			it.key, it.value = nil, nil
			return
		}
	case KindExcluded:
		if cmpBytes(k, it.upper.Key) >= 0 {
			it.elem = nil
			it.key, it.value = nil, nil
			return
		}
	}

	it.key = k
	it.value = it.elem.Value.([]byte)
}

// Key returns the current entry's key. Panics if !IsValid.
func (it *Iterator) Key() []byte {
	if !it.IsValid() {
		panic("memtable: Key called on an invalid iterator")
	}
	return it.key
}

// Value returns the current entry's value. Panics if !IsValid.
func (it *Iterator) Value() []byte {
	if !it.IsValid() {
		panic("memtable: Value called on an invalid iterator")
	}
	return it.value
}

// IsValid reports whether the cursor sits on an entry.
func (it *Iterator) IsValid() bool { return len(it.key) > 0 }

// Next advances the underlying range cursor.
func (it *Iterator) Next() error {
	if it.elem != nil {
		it.elem = it.elem.Next()
	}
	it.loadCurrent()
	return nil
}
