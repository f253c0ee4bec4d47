/*
Package memo provides per-owner memoization of function results with an
optional LRU bound.

A Memo wraps a function of an owner and an argument list.  Results are cached
per owner and per distinct argument tuple: separate owners never share entries
or counters.  Each owner's cache tracks hits, misses, and current size, which
can be inspected with Info and reset with Clear.

The configured maximum size bounds each owner's cache individually, evicting
the least recently used entry when exceeded.  A maximum size of zero disables
storage entirely while still counting misses; a negative maximum size means
the caches are unbounded.
*/
package memo
