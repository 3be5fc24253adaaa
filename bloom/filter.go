// Package bloom detects repeated result pages using Bloom filters.
package bloom

import (
	"fmt"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/cmtharvest"
)

// Filter remembers page fingerprints.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a new Bloom filter sized for n expected pages
// with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// TestAndAdd records fingerprint and reports whether it might have been
// recorded before. False positives are possible; false negatives are not.
func (f *Filter) TestAndAdd(fingerprint string) bool {
	return f.f.TestAndAddString(fingerprint)
}

// Fingerprint returns a stable key for the blocks of one result page.
func Fingerprint(blocks []cmtharvest.RawBlock) string {
	d := xxhash.New()
	for _, b := range blocks {
		_, _ = d.WriteString(string(b))
		_, _ = d.WriteString(cmtharvest.Delimiter)
	}
	return fmt.Sprintf("%016x", d.Sum64())
}
