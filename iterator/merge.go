package iterator

import (
	"bytes"
	"container/heap"
)

// heapItem pairs a source's position (its index in the original
// sources slice, doubling as its priority — lower is higher priority)
// with the iterator itself.
type heapItem struct {
	idx  int
	iter StorageIterator
}

// outranks reports whether a should be preferred over b: smaller key
// first, ties broken by smaller source index (higher priority).
func outranks(a, b heapItem) bool {
	c := bytes.Compare(a.iter.Key(), b.iter.Key())
	if c != 0 {
		return c < 0
	}
	return a.idx < b.idx
}

// itemHeap is a container/heap min-heap ordered by outranks, so the
// top is always the (key, priority)-smallest live source — the
// "inverted max-heap" described in spec §9 expressed directly as a
// min-heap, which container/heap models natively.
type itemHeap []heapItem

func (h itemHeap) Len() int            { return len(h) }
func (h itemHeap) Less(i, j int) bool  { return outranks(h[i], h[j]) }
func (h itemHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *itemHeap) Push(x interface{}) { *h = append(*h, x.(heapItem)) }
func (h *itemHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// MergeIterator performs a k-way merge over sources ordered by
// priority: sources[0] is highest priority. When two or more sources
// hold the same key, only the highest-priority source's value is
// surfaced; the others are silently advanced past that key.
type MergeIterator struct {
	h       *itemHeap
	current *heapItem
}

// NewMergeIterator builds a MergeIterator from sources, dropping any
// that are already invalid. An all-invalid input yields a
// MergeIterator that is invalid forever.
func NewMergeIterator(sources []StorageIterator) (*MergeIterator, error) {
	h := &itemHeap{}
	heap.Init(h)
	for i, s := range sources {
		if s.IsValid() {
			heap.Push(h, heapItem{idx: i, iter: s})
		}
	}

	m := &MergeIterator{h: h}
	if h.Len() > 0 {
		top := heap.Pop(h).(heapItem)
		m.current = &top
	}
	return m, nil
}

// Key returns the current entry's key. Only meaningful when IsValid.
func (m *MergeIterator) Key() []byte {
	if !m.IsValid() {
		panic("iterator: Key called on an invalid iterator")
	}
	return m.current.iter.Key()
}

// Value returns the current entry's value. Only meaningful when IsValid.
func (m *MergeIterator) Value() []byte {
	if !m.IsValid() {
		panic("iterator: Value called on an invalid iterator")
	}
	return m.current.iter.Value()
}

// IsValid reports whether the cursor sits on an entry.
func (m *MergeIterator) IsValid() bool {
	return m.current != nil && m.current.iter.IsValid()
}

// Next is the crux of the merge: it drains every other source sitting
// on current's key (so a duplicate never resurfaces), advances
// current, and then promotes whichever source now out-ranks it.
func (m *MergeIterator) Next() error {
	cur := m.current
	key := append([]byte(nil), cur.iter.Key()...)

	for m.h.Len() > 0 {
		top := (*m.h)[0]
		if !bytes.Equal(top.iter.Key(), key) {
			break
		}
		item := heap.Pop(m.h).(heapItem)
		if err := item.iter.Next(); err != nil {
			return err
		}
		if item.iter.IsValid() {
			heap.Push(m.h, item)
		}
	}

	if err := cur.iter.Next(); err != nil {
		return err
	}

	if !cur.iter.IsValid() {
		if m.h.Len() > 0 {
			top := heap.Pop(m.h).(heapItem)
			m.current = &top
		} else {
			m.current = nil
		}
		return nil
	}

	if m.h.Len() > 0 && outranks((*m.h)[0], *cur) {
		top := heap.Pop(m.h).(heapItem)
		heap.Push(m.h, *cur)
		m.current = &top
	}

	return nil
}
