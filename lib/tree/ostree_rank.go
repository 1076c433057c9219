package tree

import (
	"github.com/x-dsa/xost/lib/kv"
	"github.com/x-dsa/xost/lib/seq"
)

// Order-statistic select: resolve a rank to its node. At each step the
// left subtree size says how many keys precede the current node, so the
// descent either stops, turns left, or discounts the left subtree plus
// the node itself and turns right.
func (tree *osTree[K, V]) selectNode(rank int64) *ostNode[K, V] {
	aux := tree.root
	for aux != nil {
		leftSize := sizeOf(aux.left)
		if rank == leftSize {
			return aux
		} else if rank < leftSize {
			aux = aux.left
		} else {
			rank -= leftSize + 1
			aux = aux.right
		}
	}
	return nil
}

// IndexOf is the inverse of select: the rank of key is the sum of the
// left subtree sizes skipped while branching right.
func (tree *osTree[K, V]) IndexOf(key K) (int64, error) {
	rank := int64(0)
	for aux := tree.root; aux != nil; {
		res := tree.kcmp(key, aux.key)
		if res == 0 {
			return rank + sizeOf(aux.left), nil
		} else if res < 0 {
			aux = aux.left
		} else {
			rank += sizeOf(aux.left) + 1
			aux = aux.right
		}
	}
	return 0, kv.ErrKeyNotFound
}

func (tree *osTree[K, V]) At(pos seq.Position) (kv.Entry[K, V], error) {
	offset, err := pos.Resolve(tree.count)
	if err != nil || offset == tree.count {
		return kv.Entry[K, V]{}, kv.ErrOutOfRange
	}
	node := tree.selectNode(offset)
	if node == nil {
		// impossible run to here
		panic( /* debug assertion */ "[ostree] select lost a rank inside [0, count)")
	}
	return kv.Entry[K, V]{Key: node.key, Val: node.val}, nil
}

func (tree *osTree[K, V]) RemoveAt(pos seq.Position) (kv.Entry[K, V], error) {
	offset, err := pos.Resolve(tree.count)
	if err != nil || offset == tree.count {
		return kv.Entry[K, V]{}, kv.ErrOutOfRange
	}
	z := tree.selectNode(offset)
	if z == nil {
		// impossible run to here
		panic( /* debug assertion */ "[ostree] select lost a rank inside [0, count)")
	}
	defer func() {
		tree.count--
	}()
	return tree.removeNode(z)
}

// ceilingWithRank finds the least entry not less than key in one descent,
// remembering the last node that compared "not less" and the rank it had
// at that point.
func (tree *osTree[K, V]) ceilingWithRank(key K) (*ostNode[K, V], int64) {
	var candidate *ostNode[K, V]
	candRank, acc := int64(0), int64(0)
	for aux := tree.root; aux != nil; {
		if tree.kcmp(key, aux.key) <= 0 {
			candidate = aux
			candRank = acc + sizeOf(aux.left)
			aux = aux.left
		} else {
			acc += sizeOf(aux.left) + 1
			aux = aux.right
		}
	}
	return candidate, candRank
}

// floorWithRank derives the greatest entry not greater than key from the
// ceiling: an exact hit is its own floor, otherwise the floor sits one
// rank below the ceiling (or at the maximum when no ceiling exists).
func (tree *osTree[K, V]) floorWithRank(key K) (*ostNode[K, V], int64) {
	c, cr := tree.ceilingWithRank(key)
	if c == nil {
		if tree.count == 0 {
			return nil, 0
		}
		return tree.root.maximum(), tree.count - 1
	}
	if tree.kcmp(key, c.key) == 0 {
		return c, cr
	}
	if cr == 0 {
		return nil, 0
	}
	return c.pred(), cr - 1
}

// lowerWithRank steps one rank below the floor when the floor is an exact
// key match.
func (tree *osTree[K, V]) lowerWithRank(key K) (*ostNode[K, V], int64) {
	f, fr := tree.floorWithRank(key)
	if f == nil {
		return nil, 0
	}
	if tree.kcmp(key, f.key) == 0 {
		if fr == 0 {
			return nil, 0
		}
		return f.pred(), fr - 1
	}
	return f, fr
}

// higherWithRank steps one rank above the ceiling when the ceiling is an
// exact key match.
func (tree *osTree[K, V]) higherWithRank(key K) (*ostNode[K, V], int64) {
	c, cr := tree.ceilingWithRank(key)
	if c == nil {
		return nil, 0
	}
	if tree.kcmp(key, c.key) == 0 {
		if cr == tree.count-1 {
			return nil, 0
		}
		return c.succ(), cr + 1
	}
	return c, cr
}

func (tree *osTree[K, V]) Floor(key K) (kv.Entry[K, V], bool) {
	node, _ := tree.floorWithRank(key)
	if node == nil {
		return kv.Entry[K, V]{}, false
	}
	return kv.Entry[K, V]{Key: node.key, Val: node.val}, true
}

func (tree *osTree[K, V]) Ceiling(key K) (kv.Entry[K, V], bool) {
	node, _ := tree.ceilingWithRank(key)
	if node == nil {
		return kv.Entry[K, V]{}, false
	}
	return kv.Entry[K, V]{Key: node.key, Val: node.val}, true
}

func (tree *osTree[K, V]) Lower(key K) (kv.Entry[K, V], bool) {
	node, _ := tree.lowerWithRank(key)
	if node == nil {
		return kv.Entry[K, V]{}, false
	}
	return kv.Entry[K, V]{Key: node.key, Val: node.val}, true
}

func (tree *osTree[K, V]) Higher(key K) (kv.Entry[K, V], bool) {
	node, _ := tree.higherWithRank(key)
	if node == nil {
		return kv.Entry[K, V]{}, false
	}
	return kv.Entry[K, V]{Key: node.key, Val: node.val}, true
}

func (tree *osTree[K, V]) FloorIndex(key K) (int64, bool) {
	node, rank := tree.floorWithRank(key)
	return rank, node != nil
}

func (tree *osTree[K, V]) CeilingIndex(key K) (int64, bool) {
	node, rank := tree.ceilingWithRank(key)
	return rank, node != nil
}

func (tree *osTree[K, V]) LowerIndex(key K) (int64, bool) {
	node, rank := tree.lowerWithRank(key)
	return rank, node != nil
}

func (tree *osTree[K, V]) HigherIndex(key K) (int64, bool) {
	node, rank := tree.higherWithRank(key)
	return rank, node != nil
}

// sliceByRange copies length entries starting at rank offset into a fresh
// tree with the same comparator. The walk is one select plus succ climbs,
// the copy is the usual repeated insertion.
func (tree *osTree[K, V]) sliceByRange(offset, length int64) (*osTree[K, V], error) {
	sub := &osTree[K, V]{kcmp: tree.kcmp}
	if length <= 0 {
		return sub, nil
	}
	aux := tree.selectNode(offset)
	for i := int64(0); i < length; i++ {
		if aux == nil {
			// impossible run to here
			panic( /* debug assertion */ "[ostree] slice walked past the last rank")
		}
		if err := sub.Add(aux.key, aux.val); err != nil {
			return nil, err
		}
		aux = aux.succ()
	}
	return sub, nil
}

func (tree *osTree[K, V]) SliceByInterval(ival seq.Interval) (OSTree[K, V], error) {
	offset, length, err := ival.Resolve(tree.count)
	if err != nil {
		return nil, kv.ErrOutOfRange
	}
	sub, err := tree.sliceByRange(offset, length)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (tree *osTree[K, V]) AtInterval(ival seq.Interval) (kv.OrderedRankStorer[K, V], error) {
	sub, err := tree.SliceByInterval(ival)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (tree *osTree[K, V]) SliceByKey(first, last K) (OSTree[K, V], error) {
	if tree.kcmp(first, last) > 0 {
		return nil, kv.ErrInvalidInterval
	}
	firstRank, err := tree.IndexOf(first)
	if err != nil {
		return nil, err
	}
	lastRank, err := tree.IndexOf(last)
	if err != nil {
		return nil, err
	}
	sub, err := tree.sliceByRange(firstRank, lastRank-firstRank)
	if err != nil {
		return nil, err
	}
	return sub, nil
}
