package cache

import (
	"sync/atomic"
	"testing"

	"github.com/coastline-db/lsmtree/block"
)

func Test_GetOrInsertCachesAcrossCalls(t *testing.T) {
	c, err := NewLRUBlockCache(8)
	if err != nil {
		t.Fatalf("NewLRUBlockCache: %v", err)
	}

	var loads int32
	load := func() (*block.Block, error) {
		atomic.AddInt32(&loads, 1)
		return &block.Block{Data: []byte("x")}, nil
	}

	b1, err := c.GetOrInsert(1, 0, load)
	if err != nil {
		t.Fatalf("GetOrInsert: %v", err)
	}
	b2, err := c.GetOrInsert(1, 0, load)
	if err != nil {
		t.Fatalf("GetOrInsert: %v", err)
	}

	if b1 != b2 {
		t.Fatal("expected the same cached *block.Block pointer on a hit")
	}
	if got := atomic.LoadInt32(&loads); got != 1 {
		t.Fatalf("load called %d times, want exactly 1 (cache hit must avoid re-reading)", got)
	}
}

func Test_GetOrInsertDistinguishesKeysByTableAndBlock(t *testing.T) {
	c, err := NewLRUBlockCache(8)
	if err != nil {
		t.Fatalf("NewLRUBlockCache: %v", err)
	}

	loadFor := func(tag byte) func() (*block.Block, error) {
		return func() (*block.Block, error) {
			return &block.Block{Data: []byte{tag}}, nil
		}
	}

	a, _ := c.GetOrInsert(1, 0, loadFor('a'))
	b, _ := c.GetOrInsert(1, 1, loadFor('b'))
	cc, _ := c.GetOrInsert(2, 0, loadFor('c'))

	if string(a.Data) != "a" || string(b.Data) != "b" || string(cc.Data) != "c" {
		t.Fatalf("got %q %q %q, expected distinct per (sstID, blockIdx)", a.Data, b.Data, cc.Data)
	}
	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}
}

func Test_GetOrInsertPropagatesLoadError(t *testing.T) {
	c, err := NewLRUBlockCache(8)
	if err != nil {
		t.Fatalf("NewLRUBlockCache: %v", err)
	}

	wantErr := errBoom{}
	_, err = c.GetOrInsert(1, 0, func() (*block.Block, error) { return nil, wantErr })
	if err != wantErr {
		t.Fatalf("got %v, want %v", err, wantErr)
	}
	if c.Len() != 0 {
		t.Fatalf("expected nothing cached on a load error, Len() = %d", c.Len())
	}
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }
