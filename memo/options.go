package memo

import (
	"github.com/go-kit/kit/metrics/discard"

	"github.com/strandkit/attrcache/cachemetrics"
)

// Option is a configuration option for a Memo.
type Option func(*Memo)

// WithHits establishes a metric that counts calls satisfied from a cache,
// across all owners.  If a nil adder is supplied, hit counts are discarded.
func WithHits(a cachemetrics.Adder) Option {
	return func(m *Memo) {
		if a != nil {
			m.hits = a
		} else {
			m.hits = discard.NewCounter()
		}
	}
}

// WithMisses establishes a metric that counts calls which invoked the wrapped
// function, across all owners.  If a nil adder is supplied, miss counts are
// discarded.
func WithMisses(a cachemetrics.Adder) Option {
	return func(m *Memo) {
		if a != nil {
			m.misses = a
		} else {
			m.misses = discard.NewCounter()
		}
	}
}

// WithEvictions establishes a metric that counts entries evicted by the LRU
// bound, across all owners.  If a nil adder is supplied, eviction counts are
// discarded.
func WithEvictions(a cachemetrics.Adder) Option {
	return func(m *Memo) {
		if a != nil {
			m.evictions = a
		} else {
			m.evictions = discard.NewCounter()
		}
	}
}
