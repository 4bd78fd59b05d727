package sstable

import (
	"path/filepath"
	"testing"

	"github.com/coastline-db/lsmtree/config"
)

func buildFourEntrySST(t *testing.T, dir string) *SsTable {
	t.Helper()

	b := NewBuilder(24)
	b.Add([]byte("k1"), []byte("v1"))
	b.Add([]byte("k2"), []byte("v2"))
	b.Add([]byte("k3"), []byte("v3"))
	b.Add([]byte("k4"), []byte("v4"))

	table, err := b.Build(1, nil, filepath.Join(dir, "test.sst"), 0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return table
}

func Test_SSTScanReproducesInsertedSequence(t *testing.T) {
	table := buildFourEntrySST(t, t.TempDir())

	if table.NumBlocks() != 2 {
		t.Fatalf("NumBlocks() = %d, want 2", table.NumBlocks())
	}
	if string(table.FirstKey()) != "k1" {
		t.Fatalf("FirstKey() = %q, want k1", table.FirstKey())
	}
	if string(table.LastKey()) != "k4" {
		t.Fatalf("LastKey() = %q, want k4", table.LastKey())
	}

	it, err := CreateAndSeekToFirst(table)
	if err != nil {
		t.Fatalf("CreateAndSeekToFirst: %v", err)
	}

	want := []struct{ k, v string }{
		{"k1", "v1"}, {"k2", "v2"}, {"k3", "v3"}, {"k4", "v4"},
	}
	for i, w := range want {
		if !it.IsValid() {
			t.Fatalf("entry %d: iterator went invalid early", i)
		}
		if string(it.Key()) != w.k || string(it.Value()) != w.v {
			t.Fatalf("entry %d = (%q,%q), want (%q,%q)", i, it.Key(), it.Value(), w.k, w.v)
		}
		if err := it.Next(); err != nil {
			t.Fatalf("Next: %v", err)
		}
	}
	if it.IsValid() {
		t.Fatal("expected iterator to be exhausted after the 4th entry")
	}
}

func Test_SSTSeekToKeyLandingBehavior(t *testing.T) {
	table := buildFourEntrySST(t, t.TempDir())

	cases := []struct {
		name      string
		seek      string
		wantValid bool
		wantKey   string
	}{
		{"present key lands exactly", "k3", true, "k3"},
		{"below range lands on first", "k0", true, "k1"},
		{"above range invalidates", "k5", false, ""},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			it, err := CreateAndSeekToKey(table, []byte(c.seek))
			if err != nil {
				t.Fatalf("CreateAndSeekToKey: %v", err)
			}
			if it.IsValid() != c.wantValid {
				t.Fatalf("IsValid() = %v, want %v", it.IsValid(), c.wantValid)
			}
			if c.wantValid && string(it.Key()) != c.wantKey {
				t.Fatalf("Key() = %q, want %q", it.Key(), c.wantKey)
			}
		})
	}
}

func Test_OpenRoundTripsAcrossFileHandles(t *testing.T) {
	dir := t.TempDir()
	built := buildFourEntrySST(t, dir)
	built.Close()

	file, err := Open(filepath.Join(dir, "test.sst"))
	if err != nil {
		t.Fatalf("Open file: %v", err)
	}

	table, err := OpenTable(2, nil, file)
	if err != nil {
		t.Fatalf("Open table: %v", err)
	}
	defer table.Close()

	if string(table.FirstKey()) != "k1" || string(table.LastKey()) != "k4" {
		t.Fatalf("FirstKey/LastKey = %q/%q, want k1/k4", table.FirstKey(), table.LastKey())
	}
	if table.NumBlocks() != 2 {
		t.Fatalf("NumBlocks() = %d, want 2", table.NumBlocks())
	}
}

func Test_BuilderPanicsOnOutOfOrderAdd(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic on out-of-order Add")
		}
	}()

	b := NewBuilder(64)
	b.Add([]byte("b"), []byte("1"))
	b.Add([]byte("a"), []byte("2"))
}

func Test_BuildWithZeroEntriesErrors(t *testing.T) {
	b := NewBuilder(64)
	_, err := b.Build(1, nil, filepath.Join(t.TempDir(), "empty.sst"), 0)
	if err == nil {
		t.Fatal("expected an error building an SST with zero entries")
	}
}

func Test_BuildAttachesBloomWhenRequested(t *testing.T) {
	b := NewBuilder(64)
	b.Add([]byte("k1"), []byte("v1"))
	b.Add([]byte("k2"), []byte("v2"))

	table, err := b.Build(1, nil, filepath.Join(t.TempDir(), "bloom.sst"), 0.01)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if table.Bloom() == nil {
		t.Fatal("expected a bloom filter to be attached")
	}
	if !table.MayContain([]byte("k1")) {
		t.Fatal("expected MayContain(k1) to be true")
	}
}

func Test_NewBuilderWithSettingsUsesConfiguredBlockSize(t *testing.T) {
	settings := config.New(config.WithBlockSizeByte(16))
	b := NewBuilderWithSettings(settings)

	if b.blockSize != 16 {
		t.Fatalf("blockSize = %d, want 16", b.blockSize)
	}
}

func Test_BuildWithoutBloomRateLeavesMayContainPermissive(t *testing.T) {
	table := buildFourEntrySST(t, t.TempDir())
	if table.Bloom() != nil {
		t.Fatal("expected no bloom filter when rate is 0")
	}
	if !table.MayContain([]byte("nonexistent")) {
		t.Fatal("expected MayContain to default to true with no bloom filter attached")
	}
}
