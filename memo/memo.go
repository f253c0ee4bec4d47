package memo

import (
	"container/list"
	"errors"
	"reflect"
	"sync"

	"github.com/go-kit/kit/metrics/discard"

	"github.com/strandkit/attrcache/cachemetrics"
)

var (
	// ErrUncacheableArg is returned by Call when an argument is not comparable
	// and therefore cannot participate in a cache key.  The wrapped function is
	// not invoked in that case.
	ErrUncacheableArg = errors.New("argument is not comparable and cannot be used in a cache key")

	// ErrUncacheableOwner is returned by Call when the owner is not comparable
	// and therefore cannot key a per-owner cache.
	ErrUncacheableOwner = errors.New("owner is not comparable and cannot key a cache")
)

// Func is the signature of functions a Memo can wrap.  The owner is the object
// the call is logically bound to; results are cached per owner.
type Func func(owner interface{}, args ...interface{}) (interface{}, error)

// Info reports the state of a single owner's cache.
type Info struct {
	// Hits is the number of calls satisfied from this owner's cache.
	Hits int

	// Misses is the number of calls that had to invoke the wrapped function.
	Misses int

	// MaxSize is the configured bound.  Zero means storage is disabled, and a
	// negative value means the cache is unbounded.
	MaxSize int

	// Size is the current number of cached entries for this owner.
	Size int
}

// Memo memoizes the results of a function per owner and per distinct argument
// tuple.  Create instances with New or Unbounded.  A Memo is safe for
// concurrent use; the wrapped function is invoked outside of any lock, so it
// may recursively call back into the same Memo with different arguments.
type Memo struct {
	maxSize int
	fn      Func

	lock   sync.RWMutex
	owners map[interface{}]*ownerCache

	hits      cachemetrics.Adder
	misses    cachemetrics.Adder
	evictions cachemetrics.Adder
}

// New creates a Memo around the given function.  maxSize bounds each owner's
// cache: when positive, least recently used entries are evicted beyond that
// count; zero disables storage while still counting misses; any negative value
// means unbounded.  A nil function results in a panic.
func New(maxSize int, fn Func, options ...Option) *Memo {
	if fn == nil {
		panic("a function to memoize is required")
	}

	if maxSize < 0 {
		maxSize = -1
	}

	m := &Memo{
		maxSize:   maxSize,
		fn:        fn,
		owners:    make(map[interface{}]*ownerCache),
		hits:      discard.NewCounter(),
		misses:    discard.NewCounter(),
		evictions: discard.NewCounter(),
	}

	for _, o := range options {
		o(m)
	}

	return m
}

// Unbounded is syntactic sugar for New with a negative maxSize.
func Unbounded(fn Func, options ...Option) *Memo {
	return New(-1, fn, options...)
}

// entry is the payload stored in each LRU list element
type entry struct {
	key   interface{}
	value interface{}
}

// ownerCache is the cache state for a single owner.  The recency list's front
// is the most recently used entry.
type ownerCache struct {
	lock    sync.Mutex
	entries map[interface{}]*list.Element
	order   *list.List
	hits    int
	misses  int
}

func (m *Memo) ownerCache(owner interface{}, create bool) *ownerCache {
	m.lock.RLock()
	oc := m.owners[owner]
	m.lock.RUnlock()

	if oc != nil || !create {
		return oc
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	if oc = m.owners[owner]; oc == nil {
		oc = &ownerCache{
			entries: make(map[interface{}]*list.Element),
			order:   list.New(),
		}

		m.owners[owner] = oc
	}

	return oc
}

// Call invokes the wrapped function with memoization.  A cached result for the
// same owner and argument tuple is returned without invoking the function.
// Arguments are distinguished by value and by type.  Errors from the wrapped
// function propagate unchanged and are never cached.
func (m *Memo) Call(owner interface{}, args ...interface{}) (interface{}, error) {
	if owner != nil && !reflect.TypeOf(owner).Comparable() {
		return nil, ErrUncacheableOwner
	}

	key, err := argsKey(args)
	if err != nil {
		return nil, err
	}

	oc := m.ownerCache(owner, true)

	oc.lock.Lock()
	if e, ok := oc.entries[key]; ok {
		oc.order.MoveToFront(e)
		oc.hits++
		value := e.Value.(*entry).value
		oc.lock.Unlock()
		m.hits.Add(1.0)
		return value, nil
	}

	oc.misses++
	oc.lock.Unlock()
	m.misses.Add(1.0)

	value, err := m.fn(owner, args...)
	if err != nil {
		return nil, err
	}

	if m.maxSize == 0 {
		return value, nil
	}

	oc.lock.Lock()
	if _, ok := oc.entries[key]; !ok {
		oc.entries[key] = oc.order.PushFront(&entry{key: key, value: value})
		if m.maxSize > 0 && oc.order.Len() > m.maxSize {
			oldest := oc.order.Back()
			oc.order.Remove(oldest)
			delete(oc.entries, oldest.Value.(*entry).key)
			m.evictions.Add(1.0)
		}
	}

	oc.lock.Unlock()
	return value, nil
}

// Info returns the cache counters for the given owner.  An owner that has
// never been seen yields zero counters.
func (m *Memo) Info(owner interface{}) Info {
	info := Info{MaxSize: m.maxSize}
	if oc := m.ownerCache(owner, false); oc != nil {
		oc.lock.Lock()
		info.Hits = oc.hits
		info.Misses = oc.misses
		info.Size = oc.order.Len()
		oc.lock.Unlock()
	}

	return info
}

// Clear discards the given owner's entries and resets its counters.
func (m *Memo) Clear(owner interface{}) {
	m.lock.Lock()
	delete(m.owners, owner)
	m.lock.Unlock()
}

// ClearAll discards every owner's entries and counters.
func (m *Memo) ClearAll() {
	m.lock.Lock()
	m.owners = make(map[interface{}]*ownerCache)
	m.lock.Unlock()
}

// keyRoot anchors every argument key chain
type keyRoot struct{}

// keyPair folds one argument onto a key chain.  Two chains compare equal
// exactly when they have the same length and pairwise equal arguments of
// identical dynamic types.
type keyPair struct {
	prev interface{}
	arg  interface{}
}

func argsKey(args []interface{}) (interface{}, error) {
	key := interface{}(keyRoot{})
	for _, arg := range args {
		if arg != nil && !reflect.TypeOf(arg).Comparable() {
			return nil, ErrUncacheableArg
		}

		key = keyPair{prev: key, arg: arg}
	}

	return key, nil
}
