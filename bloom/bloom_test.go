package bloom

import (
	"bytes"
	"testing"
)

func Test_BuildNeverFalseNegatives(t *testing.T) {
	keys := [][]byte{[]byte("a"), []byte("b"), []byte("c"), []byte("d")}
	f := Build(keys, 0.01)

	for _, k := range keys {
		if !f.MayContain(k) {
			t.Fatalf("MayContain(%q) = false, want true (bloom filters must not false-negative)", k)
		}
	}
}

func Test_NilFilterIsPermissive(t *testing.T) {
	var f *Filter
	if !f.MayContain([]byte("anything")) {
		t.Fatal("expected a nil *Filter to treat every key as possibly present")
	}
}

func Test_WriteToReadFilterRoundTrips(t *testing.T) {
	keys := [][]byte{[]byte("a"), []byte("b"), []byte("c")}
	f := Build(keys, 0.01)

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	f2, err := ReadFilter(&buf)
	if err != nil {
		t.Fatalf("ReadFilter: %v", err)
	}

	for _, k := range keys {
		if !f2.MayContain(k) {
			t.Fatalf("round-tripped filter: MayContain(%q) = false, want true", k)
		}
	}
}
