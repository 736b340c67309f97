package symtable

import "iter"

// ListTable keeps every binding in one unbounded chain. It honours the same
// contract as Table with linear-time operations and serves as the baseline
// Table is checked against.
type ListTable[V any] struct {
	bindings chain[V]
}

func NewList[V any]() *ListTable[V] {
	return &ListTable[V]{}
}

func (l *ListTable[V]) Len() int {
	return l.bindings.count()
}

func (l *ListTable[V]) Put(key string, value V) bool {
	return l.bindings.insert(key, value)
}

func (l *ListTable[V]) Replace(key string, value V) (V, bool) {
	return l.bindings.replace(key, value)
}

func (l *ListTable[V]) Contains(key string) bool {
	return l.bindings.contains(key)
}

func (l *ListTable[V]) Get(key string) (V, bool) {
	return l.bindings.lookup(key)
}

func (l *ListTable[V]) Remove(key string) (V, bool) {
	return l.bindings.remove(key)
}

// Map visits bindings from the most recently inserted to the oldest.
func (l *ListTable[V]) Map(visit func(key string, value V, extra any), extra any) {
	if visit == nil {
		panic("symtable: nil visit function")
	}
	l.bindings.traverse(func(key string, value V) bool {
		visit(key, value, extra)
		return true
	})
}

func (l *ListTable[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		l.bindings.traverse(yield)
	}
}

func (l *ListTable[V]) Free() {
	l.bindings = chain[V]{}
}
