package wal

import (
	"os"
	"path/filepath"
	"testing"
)

func Test_AppendThenReplayRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.wal")

	w, err := Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	records := [][2]string{
		{"a", "1"},
		{"b", "2"},
		{"c", ""},
		{"d", "a fairly long value to exercise snappy a bit more than a single byte"},
	}
	for _, r := range records {
		if err := w.Append([]byte(r[0]), []byte(r[1])); err != nil {
			t.Fatalf("Append(%q,%q): %v", r[0], r[1], err)
		}
	}
	if err := w.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := Replay(path)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if len(got) != len(records) {
		t.Fatalf("got %d records, want %d", len(got), len(records))
	}
	for i, r := range records {
		if string(got[i][0]) != r[0] || string(got[i][1]) != r[1] {
			t.Fatalf("record %d = (%q,%q), want (%q,%q)", i, got[i][0], got[i][1], r[0], r[1])
		}
	}
}

func Test_ReplayEmptyFileYieldsNoRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.wal")
	w, err := Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := Replay(path)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d records, want 0", len(got))
	}
}

func Test_CreateMakesFileOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "created.wal")
	w, err := Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer w.Close()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file to exist: %v", err)
	}
}
