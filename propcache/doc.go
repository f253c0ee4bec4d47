/*
Package propcache implements dependency-aware cached attributes.

An attribute is a named value computed on demand from its owning object and
cached until it is deleted or overwritten.  Attributes may declare that they
depend on other attributes of the same object.  When an attribute is set or
deleted, every cached dependent that was not explicitly assigned is
invalidated, transitively, so that its next read recomputes against the new
state.

The mechanism is split into two types.  Definitions is the per-type registry
of attributes: each attribute binds a name to a compute function and an
optional set of dependency names.  Cache is the per-object slot table created
from a Definitions; all reads, writes, and deletes go through it:

	defs := propcache.NewDefinitions()
	defs.Define("token", fetchToken)
	defs.Define("header", buildHeader, "token")

	c := defs.NewCache(client)
	header, err := c.Get("header")   // computes token, then header
	c.Delete("token")                // header is invalidated too

Values assigned with Set are pinned: dependency invalidation never removes
them.  They remain until explicitly deleted or reassigned.

A Cache is safe for concurrent use.  Concurrent readers of the same attribute
share a single computation.  Distinct Cache instances never contend.
*/
package propcache
