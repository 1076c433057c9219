package tree

import (
	"github.com/x-dsa/xost/lib/infra"
	"github.com/x-dsa/xost/lib/kv"
)

// Iterator walks the tree ascending by key through the parent-pointer
// chain: left-most descent once, then repeated climbs to the next
// unvisited right subtree. No stack or snapshot is held, so mutations
// made while iterating are visible; advancing after the currently-yielded
// node has been physically detached fails with kv.ErrIterInvalid. Note
// the two-child removal swaps key/value into the doomed slot and detaches
// the in-order successor instead, so it is an iterator parked on the
// successor that gets invalidated. A finished or failed iterator cannot
// be restarted; take a fresh one.
type Iterator[K infra.OrderedKey, V any] struct {
	tree    *osTree[K, V]
	cur     *ostNode[K, V]
	err     error
	started bool
}

func (tree *osTree[K, V]) Iter() *Iterator[K, V] {
	return &Iterator[K, V]{tree: tree}
}

// Next advances to the next entry, starting at the minimum on the first
// call. It reports false when the walk is exhausted or invalidated; the
// two are told apart by Err.
func (it *Iterator[K, V]) Next() bool {
	if it.err != nil {
		return false
	}
	if !it.started {
		it.started = true
		it.cur = it.tree.root.minimum()
		return it.cur != nil
	}
	if it.cur == nil {
		return false
	}
	if it.cur.isDetached() {
		it.err = kv.ErrIterInvalid
		it.cur = nil
		return false
	}
	it.cur = it.cur.succ()
	return it.cur != nil
}

func (it *Iterator[K, V]) Key() K {
	return it.cur.key
}

func (it *Iterator[K, V]) Val() V {
	return it.cur.val
}

func (it *Iterator[K, V]) Entry() kv.Entry[K, V] {
	return kv.Entry[K, V]{Key: it.cur.key, Val: it.cur.val}
}

func (it *Iterator[K, V]) Err() error {
	return it.err
}
