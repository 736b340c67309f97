// Package symtable implements a symbol table that maps unique string keys
// to caller-owned values.
//
// Table is a separately chained hash table whose bucket count walks a fixed
// sequence of primes. After a successful Put that brings the number of
// bindings up to the bucket count, every binding is rehashed into the next
// larger bucket array. Once the last capacity is reached the table keeps
// accepting bindings and the chains simply grow.
//
// Keys are copied on insertion. Values are stored as given and are never
// copied, closed or otherwise finalized by the table.
//
// A Table is not safe for concurrent use; callers sharing one between
// goroutines must serialize every call, including iteration.
package symtable

import (
	"iter"

	"go.uber.org/zap"
)

// SymTable is the contract shared by Table and ListTable.
type SymTable[V any] interface {
	Len() int
	Put(key string, value V) bool
	Replace(key string, value V) (V, bool)
	Contains(key string) bool
	Get(key string) (V, bool)
	Remove(key string) (V, bool)
	Map(visit func(key string, value V, extra any), extra any)
	All() iter.Seq2[string, V]
	Free()
}

var (
	_ SymTable[any] = (*Table[any])(nil)
	_ SymTable[any] = (*ListTable[any])(nil)
)

type Table[V any] struct {
	buckets       []*chain[V]
	size          int
	capacityIndex int
	rehashes      int

	opts options
}

// Stats is a snapshot of the table's shape.
type Stats struct {
	Bindings      int
	Buckets       int
	CapacityIndex int
	UsedBuckets   int
	LongestChain  int
	Rehashes      int
}

func New[V any](opts ...Option) *Table[V] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Table[V]{
		buckets: make([]*chain[V], capacities[0]),
		opts:    o,
	}
}

func (t *Table[V]) bucketCount() int {
	return capacities[t.capacityIndex]
}

func (t *Table[V]) index(key string) int {
	return t.opts.hasher.Bucket(key, len(t.buckets))
}

func (t *Table[V]) chainFor(key string) *chain[V] {
	return t.buckets[t.index(key)]
}

// Len returns the number of bindings.
func (t *Table[V]) Len() int {
	return t.size
}

// Put adds a binding for key. It returns false and leaves the table
// unchanged when key is already bound.
func (t *Table[V]) Put(key string, value V) bool {
	i := t.index(key)
	c := t.buckets[i]
	if c == nil {
		c = &chain[V]{}
		t.buckets[i] = c
	}

	if !c.insert(key, value) {
		return false
	}
	t.size++

	if t.size == t.bucketCount() && t.capacityIndex < len(capacities)-1 {
		t.grow()
	}
	return true
}

// grow moves every node into a bucket array sized by the next capacity.
func (t *Table[V]) grow() {
	from := t.bucketCount()
	t.capacityIndex++
	to := t.bucketCount()

	old := t.buckets
	t.buckets = make([]*chain[V], to)
	for _, c := range old {
		if c == nil {
			continue
		}
		n := c.head
		for n != nil {
			next := n.next
			i := t.index(n.key)
			dst := t.buckets[i]
			if dst == nil {
				dst = &chain[V]{}
				t.buckets[i] = dst
			}
			dst.link(n)
			n = next
		}
	}
	t.rehashes++

	t.opts.logger.Debug("symbol table rehashed",
		zap.Int("from_buckets", from),
		zap.Int("to_buckets", to),
		zap.Int("bindings", t.size),
	)
	if t.opts.onGrow != nil {
		t.opts.onGrow(from, to)
	}
}

func (t *Table[V]) Contains(key string) bool {
	c := t.chainFor(key)
	if c == nil {
		return false
	}
	return c.contains(key)
}

// Get returns the value bound to key. The boolean reports whether key
// was found.
func (t *Table[V]) Get(key string) (V, bool) {
	c := t.chainFor(key)
	if c == nil {
		var zero V
		return zero, false
	}
	return c.lookup(key)
}

// Replace binds key to value and returns the previous value. The table is
// unchanged if key is absent.
func (t *Table[V]) Replace(key string, value V) (V, bool) {
	c := t.chainFor(key)
	if c == nil {
		var zero V
		return zero, false
	}
	return c.replace(key, value)
}

// Remove deletes the binding for key and returns its value.
func (t *Table[V]) Remove(key string) (V, bool) {
	c := t.chainFor(key)
	if c == nil {
		var zero V
		return zero, false
	}

	before := c.count()
	value, ok := c.remove(key)
	if c.count() < before {
		t.size--
	}
	return value, ok
}

// Map calls visit for every binding in bucket order, then chain order.
// visit may modify what a value points to but must not add or remove
// bindings.
func (t *Table[V]) Map(visit func(key string, value V, extra any), extra any) {
	if visit == nil {
		panic("symtable: nil visit function")
	}
	for _, c := range t.buckets {
		if c == nil {
			continue
		}
		c.traverse(func(key string, value V) bool {
			visit(key, value, extra)
			return true
		})
	}
}

// All returns an iterator over the bindings in the same order as Map.
// Callers must not rely on that order matching insertion order.
func (t *Table[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		for _, c := range t.buckets {
			if c == nil {
				continue
			}
			if !c.traverse(yield) {
				return
			}
		}
	}
}

// Free drops every binding and returns the table to its initial capacity.
func (t *Table[V]) Free() {
	t.buckets = make([]*chain[V], capacities[0])
	t.size = 0
	t.capacityIndex = 0
}

func (t *Table[V]) Stats() Stats {
	s := Stats{
		Bindings:      t.size,
		Buckets:       len(t.buckets),
		CapacityIndex: t.capacityIndex,
		Rehashes:      t.rehashes,
	}
	for _, c := range t.buckets {
		if c == nil || c.count() == 0 {
			continue
		}
		s.UsedBuckets++
		if c.count() > s.LongestChain {
			s.LongestChain = c.count()
		}
	}
	return s
}
