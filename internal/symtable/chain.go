package symtable

import "strings"

type node[V any] struct {
	key   string
	value V
	next  *node[V]
}

// chain is a singly-linked bucket. New bindings are linked at the head.
type chain[V any] struct {
	head   *node[V]
	length int
}

func (c *chain[V]) find(key string) *node[V] {
	for n := c.head; n != nil; n = n.next {
		if n.key == key {
			return n
		}
	}
	return nil
}

// insert refuses keys that are already present.
func (c *chain[V]) insert(key string, value V) bool {
	if c.find(key) != nil {
		return false
	}
	c.link(&node[V]{key: strings.Clone(key), value: value})
	return true
}

func (c *chain[V]) link(n *node[V]) {
	n.next = c.head
	c.head = n
	c.length++
}

func (c *chain[V]) lookup(key string) (V, bool) {
	if n := c.find(key); n != nil {
		return n.value, true
	}
	var zero V
	return zero, false
}

func (c *chain[V]) contains(key string) bool {
	return c.find(key) != nil
}

func (c *chain[V]) replace(key string, value V) (V, bool) {
	n := c.find(key)
	if n == nil {
		var zero V
		return zero, false
	}
	old := n.value
	n.value = value
	return old, true
}

func (c *chain[V]) remove(key string) (V, bool) {
	var zero V
	if c.head == nil {
		return zero, false
	}

	if c.head.key == key {
		removed := c.head
		c.head = removed.next
		c.length--
		return removed.value, true
	}

	prev := c.head
	for prev.next != nil && prev.next.key != key {
		prev = prev.next
	}
	if prev.next == nil {
		return zero, false
	}

	removed := prev.next
	prev.next = removed.next
	c.length--
	return removed.value, true
}

// traverse visits bindings head to tail and stops early when visit
// returns false.
func (c *chain[V]) traverse(visit func(key string, value V) bool) bool {
	for n := c.head; n != nil; n = n.next {
		if !visit(n.key, n.value) {
			return false
		}
	}
	return true
}

func (c *chain[V]) count() int {
	return c.length
}
