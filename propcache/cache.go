package propcache

import (
	"sync"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/metrics/discard"
	"golang.org/x/sync/singleflight"

	"github.com/strandkit/attrcache/cachemetrics"
	"github.com/strandkit/attrcache/logging"
)

// slot holds the cached state of a single attribute on a single Cache.
type slot struct {
	value       interface{}
	setDirectly bool
}

// Cache is the per-object slot table for a set of attribute Definitions.
// Create instances with Definitions.NewCache.
//
// All methods are safe for concurrent use.  A Cache never shares state with
// another Cache, even one built from the same Definitions.
type Cache struct {
	definitions *Definitions
	owner       interface{}

	lock        sync.Mutex
	slots       map[string]*slot
	generations map[string]uint64
	flight      singleflight.Group

	logger        log.Logger
	hits          cachemetrics.Adder
	misses        cachemetrics.Adder
	invalidations cachemetrics.Adder
}

// NewCache creates a Cache bound to the given owner.  The owner is handed to
// every compute function; it may be nil if the compute functions close over
// their state instead.
func (d *Definitions) NewCache(owner interface{}, options ...Option) *Cache {
	c := &Cache{
		definitions:   d,
		owner:         owner,
		slots:         make(map[string]*slot, len(d.attributes)),
		generations:   make(map[string]uint64, len(d.attributes)),
		logger:        logging.DefaultLogger(),
		hits:          discard.NewCounter(),
		misses:        discard.NewCounter(),
		invalidations: discard.NewCounter(),
	}

	for _, o := range options {
		o(c)
	}

	return c
}

// Definitions returns the registry this Cache was built from.
func (c *Cache) Definitions() *Definitions {
	return c.definitions
}

// Get returns the value of the named attribute, computing and caching it on
// first access.  Concurrent readers of an uncached attribute share a single
// computation: exactly one invokes the compute function, the rest block until
// it finishes and observe the same value (or the same error).  A compute error
// is returned unchanged and nothing is cached, so the next read tries again.
//
// An attribute's compute function may Get other attributes of the same Cache.
func (c *Cache) Get(name string) (interface{}, error) {
	a := c.definitions.attributes[name]
	if a == nil {
		return nil, ErrNotDefined
	}

	c.lock.Lock()
	if s, ok := c.slots[name]; ok {
		c.lock.Unlock()
		c.hits.Add(1.0)
		return s.value, nil
	}

	generation := c.generations[name]
	c.lock.Unlock()

	c.misses.Add(1.0)
	value, err, _ := c.flight.Do(name, func() (interface{}, error) {
		// a concurrent reader may have stored a value after our check
		c.lock.Lock()
		if s, ok := c.slots[name]; ok {
			c.lock.Unlock()
			return s.value, nil
		}
		c.lock.Unlock()

		value, err := a.compute(c.owner)
		if err != nil {
			return nil, err
		}

		c.lock.Lock()
		defer c.lock.Unlock()

		switch {
		case c.slots[name] != nil:
			// barged by a direct Set during the computation: the assignment wins
			return c.slots[name].value, nil

		case c.generations[name] != generation:
			// invalidated during the computation: hand the value back uncached
			return value, nil

		default:
			c.slots[name] = &slot{value: value}
			c.debug("computed attribute", "attribute", name)
			return value, nil
		}
	})

	return value, err
}

// Set stores a value for the named attribute directly.  The value is pinned:
// invalidation driven by the attribute's own dependencies will not remove it.
// Any other cached attribute that depends on this one, and was not itself set
// directly, is invalidated transitively.
func (c *Cache) Set(name string, value interface{}) error {
	if c.definitions.attributes[name] == nil {
		return ErrNotDefined
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	c.store(name, &slot{value: value, setDirectly: true})
	c.invalidateDependents(name, map[string]bool{name: true})
	return nil
}

// Delete removes the cached value of the named attribute, if any, and
// invalidates its cached dependents transitively.  Deleting an attribute that
// has no cached value is a no-op, as is deleting an unknown name.
func (c *Cache) Delete(name string) {
	if c.definitions.attributes[name] == nil {
		return
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	if _, ok := c.slots[name]; !ok {
		// nothing to remove, but an in-flight computation started before this
		// delete belongs to the old generation and must not populate the cache
		c.generations[name]++
		c.flight.Forget(name)
		return
	}

	c.store(name, nil)
	c.invalidateDependents(name, map[string]bool{name: true})
}

// Cached returns the currently cached value of the named attribute without
// triggering a computation.  The second return value reports whether a cached
// value was present.
func (c *Cache) Cached(name string) (interface{}, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if s, ok := c.slots[name]; ok {
		return s.value, true
	}

	return nil, false
}

// SetDirectly tests whether the named attribute currently holds a value that
// was stored via Set rather than computed.
func (c *Cache) SetDirectly(name string) bool {
	c.lock.Lock()
	defer c.lock.Unlock()

	s, ok := c.slots[name]
	return ok && s.setDirectly
}

func (c *Cache) debug(message string, keyvals ...interface{}) {
	logging.Debug(c.logger).Log(
		append([]interface{}{logging.MessageKey(), message}, keyvals...)...,
	)
}

// store replaces or removes (nil) an attribute's slot and advances its
// generation so that any in-flight computation of the attribute is discarded.
// The caller must hold c.lock.
func (c *Cache) store(name string, s *slot) {
	if s != nil {
		c.slots[name] = s
	} else {
		delete(c.slots, name)
	}

	c.generations[name]++
	c.flight.Forget(name)
}

// invalidateDependents removes the cached slot of every attribute that (1)
// declares changed as a dependency, (2) currently holds a cached value, and
// (3) was not set directly.  Each removal recurses so that invalidation
// propagates through the dependency graph.  The visited set bounds the pass:
// no attribute is processed twice, even if the declared dependencies contain
// a cycle.  The caller must hold c.lock.
func (c *Cache) invalidateDependents(changed string, visited map[string]bool) {
	for name, a := range c.definitions.attributes {
		if visited[name] || !a.dependsOn[changed] {
			continue
		}

		s, ok := c.slots[name]
		if !ok || s.setDirectly {
			continue
		}

		visited[name] = true
		c.store(name, nil)
		c.invalidations.Add(1.0)
		c.debug("invalidated dependent attribute", "attribute", name, "changed", changed)
		c.invalidateDependents(name, visited)
	}
}
