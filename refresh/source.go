// Package refresh fronts slow or failure-prone computations with a cached
// value that is refreshed inline once it expires.  No background goroutine is
// involved; all management happens during Fetch.
package refresh

import (
	"github.com/go-kit/kit/log"
)

// Source produces a value through some nontrivial operation: an external
// resource, an expensive parse, a remote call.  That is why Fetch returns an
// error alongside the value.
type Source interface {
	Fetch() (interface{}, error)
}

// SourceFunc is a function type that implements Source
type SourceFunc func() (interface{}, error)

func (f SourceFunc) Fetch() (interface{}, error) {
	return f()
}

// pinned is a Source that returns the same value forever.  It backs the
// Forever period.
type pinned struct {
	value interface{}
}

func (p *pinned) Fetch() (interface{}, error) {
	return p.value, nil
}

// Value builds a dynamic Source implementation appropriate for the period.
//
// Forever fetches from the source immediately and pins the result; a fetch
// failure is returned along with a nil Source.  A negative period returns the
// source itself, uncached.  Any positive period produces a *Cache.
func Value(source Source, period Period, options ...Option) (Source, error) {
	if period == Forever {
		once, err := source.Fetch()
		if err != nil {
			return nil, err
		}

		return &pinned{value: once}, nil
	} else if period < 0 {
		return source, nil
	}

	return NewCache(source, period, options...)
}

// Option is a configuration option for a Cache.
type Option func(*Cache)

// WithLogger establishes the logger used to report fetch failures that are
// absorbed when a stale value is served.  The default discards them.
func WithLogger(logger log.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}
