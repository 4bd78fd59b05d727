// Package bloom provides the concrete type for the core's reserved,
// optional per-SST Bloom filter slot (spec §6). The core builds one
// only when sstable.Builder.Build is given a positive false-positive
// rate, and no core read path consults it; a Filter can also be
// attached to an SsTable after Build/Open, and is never part of the
// byte-exact SST file format in spec §3/§6.
package bloom

import (
	"io"

	"github.com/bits-and-blooms/bloom/v3"
)

// Filter wraps a probabilistic membership test over a set of keys.
type Filter struct {
	bf *bloom.BloomFilter
}

// Build constructs a Filter sized for len(keys) entries at the given
// target false-positive rate.
func Build(keys [][]byte, falsePositiveRate float64) *Filter {
	bf := bloom.NewWithEstimates(uint(len(keys)), falsePositiveRate)
	for _, k := range keys {
		bf.Add(k)
	}
	return &Filter{bf: bf}
}

// MayContain reports whether key might be present. A false result is
// certain; a true result may be a false positive.
func (f *Filter) MayContain(key []byte) bool {
	if f == nil || f.bf == nil {
		return true
	}
	return f.bf.Test(key)
}

// WriteTo serializes the filter so a compaction job can persist it
// outside the SST file proper (e.g. a sidecar or manifest entry).
func (f *Filter) WriteTo(w io.Writer) (int64, error) {
	return f.bf.WriteTo(w)
}

// ReadFilter is the inverse of WriteTo.
func ReadFilter(r io.Reader) (*Filter, error) {
	bf := &bloom.BloomFilter{}
	if _, err := bf.ReadFrom(r); err != nil {
		return nil, err
	}
	return &Filter{bf: bf}, nil
}
