package propcache

import (
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/metrics/discard"

	"github.com/strandkit/attrcache/cachemetrics"
	"github.com/strandkit/attrcache/logging"
)

// Option is a configuration option for a Cache.
type Option func(*Cache)

// WithLogger establishes the logger used for debug output of computations and
// invalidations.  Passing nil restores the default NOP logger.
func WithLogger(logger log.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		} else {
			c.logger = logging.DefaultLogger()
		}
	}
}

// WithHits establishes a metric that counts reads satisfied from the cache.
// If a nil adder is supplied, hit counts are discarded.
func WithHits(a cachemetrics.Adder) Option {
	return func(c *Cache) {
		if a != nil {
			c.hits = a
		} else {
			c.hits = discard.NewCounter()
		}
	}
}

// WithMisses establishes a metric that counts reads which found no cached
// value.  If a nil adder is supplied, miss counts are discarded.
func WithMisses(a cachemetrics.Adder) Option {
	return func(c *Cache) {
		if a != nil {
			c.misses = a
		} else {
			c.misses = discard.NewCounter()
		}
	}
}

// WithInvalidations establishes a metric that counts attribute slots removed
// by dependency propagation.  If a nil adder is supplied, invalidation counts
// are discarded.
func WithInvalidations(a cachemetrics.Adder) Option {
	return func(c *Cache) {
		if a != nil {
			c.invalidations = a
		} else {
			c.invalidations = discard.NewCounter()
		}
	}
}
