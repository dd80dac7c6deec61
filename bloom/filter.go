// Package bloom provides content fingerprint deduplication using
// Bloom filters, so batch extraction can skip documents whose content
// was already seen without keeping every fingerprint in memory.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Filter wraps a Bloom filter for fingerprint deduplication.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a new Bloom filter sized for n expected items
// with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Add adds a fingerprint to the filter.
func (f *Filter) Add(fingerprint string) {
	f.f.AddString(fingerprint)
}

// Test returns true if the fingerprint might be in the filter.
// False positives are possible; false negatives are not.
func (f *Filter) Test(fingerprint string) bool {
	return f.f.TestString(fingerprint)
}

// TestAndAdd tests the fingerprint and adds it in one pass.
// Returns true if the fingerprint might have been present already.
func (f *Filter) TestAndAdd(fingerprint string) bool {
	return f.f.TestAndAddString(fingerprint)
}

// EstimatedCount returns the approximate number of items in the filter.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}
