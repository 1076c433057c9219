package tree

import (
	"github.com/x-dsa/xost/lib/infra"
	"github.com/x-dsa/xost/lib/kv"
	"github.com/x-dsa/xost/lib/seq"
)

// go install golang.org/x/tools/cmd/stringer@latest

//go:generate stringer -type=RBColor
type RBColor uint8

const (
	Black RBColor = iota
	Red
)

//go:generate stringer -type=RBDirection
type RBDirection int8

const (
	Left RBDirection = -1 + iota
	Root
	Right
)

// OSTNode is the read-only view of one tree node. Size is the number of
// nodes in the subtree rooted here, itself included.
type OSTNode[K infra.OrderedKey, V any] interface {
	Key() K
	Val() V
	HasKeyVal() bool
	Color() RBColor
	Size() int64
	Left() OSTNode[K, V]
	Right() OSTNode[K, V]
	Parent() OSTNode[K, V]
}

// OSTree is an order-statistics red-black tree: the full ordered-map and
// rank contracts in O(log n) per operation, single-threaded. Callers that
// share a tree across goroutines must impose their own exclusive-writer
// or shared-reader discipline; unsynchronized concurrent mutation
// corrupts the balancing metadata.
type OSTree[K infra.OrderedKey, V any] interface {
	kv.OrderedRankStorer[K, V]
	Root() OSTNode[K, V]
	// SliceByKey copies [IndexOf(first), IndexOf(last)) into a fresh,
	// independent tree. Both keys must be present; first comparing after
	// last fails with kv.ErrInvalidInterval.
	SliceByKey(first, last K) (OSTree[K, V], error)
	// SliceByInterval copies the resolved index interval into a fresh,
	// independent tree. Inverted intervals yield an empty tree.
	SliceByInterval(ival seq.Interval) (OSTree[K, V], error)
	// Iter starts a lazy ascending walk. See Iterator for the
	// invalidation contract.
	Iter() *Iterator[K, V]
}
