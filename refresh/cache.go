package refresh

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-kit/kit/log"

	"github.com/strandkit/attrcache/logging"
)

var (
	// ErrNonpositivePeriod is returned by NewCache when given a period without
	// an actual duration, such as Forever or Never.
	ErrNonpositivePeriod = errors.New("the refresh period must be positive")
)

// cached pairs a fetched value with its expiry
type cached struct {
	value  interface{}
	expiry time.Time
}

// Cache is an on-demand cache in front of an arbitrary Source.  It implements
// Source itself.  Expired values are replaced inline during Fetch; no other
// goroutine is involved in cache management.
type Cache struct {
	updateLock sync.Mutex
	current    atomic.Value
	source     Source
	period     Period
	logger     log.Logger
}

// NewCache constructs a Cache over the given source.  The period must carry an
// actual duration; use Value to dynamically build a Source from any Period.
func NewCache(source Source, period Period, options ...Option) (*Cache, error) {
	if period <= 0 {
		return nil, ErrNonpositivePeriod
	}

	c := &Cache{
		source: source,
		period: period,
		logger: logging.DefaultLogger(),
	}

	for _, o := range options {
		o(c)
	}

	return c, nil
}

// Refresh forces this cache to update itself.  Unlike Fetch, this method
// returns any error from the source directly and leaves the cache untouched
// on failure, so callers keep seeing the previous value.
func (c *Cache) Refresh() (interface{}, error) {
	now := time.Now()
	c.updateLock.Lock()
	defer c.updateLock.Unlock()

	value, err := c.source.Fetch()
	if err != nil {
		return nil, err
	}

	entry := &cached{
		value:  value,
		expiry: c.period.Next(now),
	}

	c.current.Store(entry)
	return entry.value, nil
}

// Fetch returns the cached value while it is fresh.  When the cache is empty
// or the value has expired, the source is consulted inline.
//
// If the source fails while an expired value is still on hand, that old value
// is served with a fresh expiry and no error.  This keeps intermittent source
// failures from hammering an external resource; the absorbed error is logged
// at warn level.  A failure before any value was ever fetched is returned.
func (c *Cache) Fetch() (interface{}, error) {
	now := time.Now()
	entry, ok := c.current.Load().(*cached)
	if !ok || entry.expiry.Before(now) {
		c.updateLock.Lock()
		defer c.updateLock.Unlock()

		entry, ok = c.current.Load().(*cached)
		if !ok || entry.expiry.Before(now) {
			value, err := c.source.Fetch()
			switch {
			case err != nil && !ok:
				return nil, err

			case err != nil:
				// keep serving the stale value rather than failing
				logging.Warn(c.logger).Log(
					logging.MessageKey(), "serving stale value after fetch failure",
					logging.ErrorKey(), err,
				)

				entry = &cached{
					value:  entry.value,
					expiry: c.period.Next(now),
				}

			default:
				entry = &cached{
					value:  value,
					expiry: c.period.Next(now),
				}
			}

			c.current.Store(entry)
		}
	}

	return entry.value, nil
}
