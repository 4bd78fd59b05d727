// Package memtable implements the in-memory, ordered write sink that
// precedes SST creation: a concurrent ordered map wrapping
// github.com/huandu/skiplist, plus the range-scan iterator over it.
package memtable

import (
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"github.com/huandu/skiplist"

	"github.com/coastline-db/lsmtree/config"
	"github.com/coastline-db/lsmtree/sstable"
	"github.com/coastline-db/lsmtree/wal"
)

// byteKey adapts []byte to huandu/skiplist's ordering contract.
type byteKey []byte

func (k byteKey) CompareTo(other interface{}) int {
	return cmpBytes(k, other.(byteKey))
}

func cmpBytes(a, b []byte) int {
	switch {
	case string(a) < string(b):
		return -1
	case string(a) > string(b):
		return 1
	default:
		return 0
	}
}

// MemTable wraps a concurrent ordered map keyed by byte strings. Put
// appends to the optional WAL before mutating the map; Get and Scan
// take a read lock so they never observe a torn write.
type MemTable struct {
	id       uint64
	mu       sync.RWMutex
	list     *skiplist.SkipList
	wal      wal.Wal
	approxSz atomic.Uint64
}

// New creates a MemTable with the given id and no WAL.
func New(id uint64) *MemTable {
	return &MemTable{
		id:   id,
		list: skiplist.New(skiplist.GreaterThanFunc(func(lhs, rhs interface{}) int { return lhs.(byteKey).CompareTo(rhs) })),
	}
}

// NewWithWal creates a MemTable backed by w: every Put is appended to
// w before becoming visible to readers.
func NewWithWal(id uint64, w wal.Wal) *MemTable {
	m := New(id)
	m.wal = w
	return m
}

// NewWithSettings applies settings' log level and creates a MemTable.
// The memtable-size threshold in settings is consulted by the engine
// that owns sealing decisions, not by MemTable itself, which only
// exposes ApproximateSize for that caller to compare against it.
func NewWithSettings(id uint64, settings *config.Settings) *MemTable {
	settings.Apply()
	return New(id)
}

// ID returns the memtable's monotonically assigned identifier.
func (m *MemTable) ID() uint64 { return m.id }

// Put inserts or overwrites key's value.
func (m *MemTable) Put(key, value []byte) error {
	if m.wal != nil {
		if err := m.wal.Append(key, value); err != nil {
			return err
		}
	}

	k := append([]byte(nil), key...)
	v := append([]byte(nil), value...)

	m.mu.Lock()
	m.list.Set(byteKey(k), v)
	m.mu.Unlock()

	// Overestimates on overwrite; tests must not assume exact accounting.
	m.approxSz.Add(uint64(len(key) + len(value)))
	return nil
}

// Get returns a copy of the value stored for key, or nil if absent.
func (m *MemTable) Get(key []byte) []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	elem := m.list.Get(byteKey(key))
	if elem == nil {
		return nil
	}
	return append([]byte(nil), elem.Value.([]byte)...)
}

// ApproximateSize is a monotonically growing lower bound used by the
// engine to decide when to seal the memtable. It increments by
// key_len+value_len on every Put and intentionally never decreases.
func (m *MemTable) ApproximateSize() uint64 {
	return m.approxSz.Load()
}

// IsEmpty reports whether the memtable holds no entries.
func (m *MemTable) IsEmpty() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.list.Len() == 0
}

// SyncWal flushes the memtable's write-ahead log, if any.
func (m *MemTable) SyncWal() error {
	if m.wal == nil {
		return nil
	}
	return m.wal.Sync()
}

// Flush writes every entry, in order, into builder. This is how a
// sealed memtable becomes an SST.
func (m *MemTable) Flush(builder *sstable.Builder) {
	it := m.Scan(Unbounded(), Unbounded())
	for it.IsValid() {
		builder.Add(it.Key(), it.Value())
		it.Next()
	}
	log.WithField("memtable_id", m.id).Info("memtable: flushed to sstable builder")
}
