package crawler

import (
	bloom "github.com/bits-and-blooms/bloom/v3"
)

// urlSet is an exact set of URLs fronted by a bloom filter. Membership
// misses, the common case while a site is still being discovered, are
// answered by the filter without touching the map. Not safe for concurrent
// use; a set belongs to one crawl's driving loop.
type urlSet struct {
	filter *bloom.BloomFilter
	exact  map[string]struct{}
}

// newURLSet sizes the filter for estimate URLs at a 0.1% false positive rate.
func newURLSet(estimate uint) *urlSet {
	return &urlSet{
		filter: bloom.NewWithEstimates(estimate, 0.001),
		exact:  make(map[string]struct{}),
	}
}

// Add inserts u and reports whether it was not already present.
func (s *urlSet) Add(u string) bool {
	if s.filter.TestOrAddString(u) {
		if _, ok := s.exact[u]; ok {
			return false
		}
	}
	s.exact[u] = struct{}{}
	return true
}

// Contains reports whether u has been added.
func (s *urlSet) Contains(u string) bool {
	if !s.filter.TestString(u) {
		return false
	}
	_, ok := s.exact[u]
	return ok
}

// Len returns the number of distinct URLs added.
func (s *urlSet) Len() int {
	return len(s.exact)
}
