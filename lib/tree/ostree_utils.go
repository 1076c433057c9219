package tree

import (
	"errors"

	"go.uber.org/multierr"

	"github.com/x-dsa/xost/lib/infra"
)

func isBlack[K infra.OrderedKey, V any](node OSTNode[K, V]) bool {
	return isNilLeaf[K, V](node) || node.Color() == Black
}

func isRed[K infra.OrderedKey, V any](node OSTNode[K, V]) bool {
	return !isNilLeaf[K, V](node) && node.Color() == Red
}

func isNilLeaf[K infra.OrderedKey, V any](node OSTNode[K, V]) bool {
	return node == nil || (!node.HasKeyVal() && node.Parent() == nil && node.Left() == nil && node.Right() == nil)
}

func isRoot[K infra.OrderedKey, V any](node OSTNode[K, V]) bool {
	return node != nil && node.Parent() == nil
}

func blackDepthTo[K infra.OrderedKey, V any](target, to OSTNode[K, V]) int {
	depth := 0
	for aux := target; aux != to; aux = aux.Parent() {
		if isBlack[K, V](aux) {
			depth++
		}
	}
	return depth
}

// Tree rule validation utilities, test support only. None of them sit on
// a hot path.

// Inorder traversal to validate the red-violation property (p3).
func RedViolationValidate[K infra.OrderedKey, V any](tree OSTree[K, V]) error {
	size := tree.Len()
	var aux OSTNode[K, V] = tree.Root()
	if size < 0 || aux == nil {
		return nil
	}

	stack := make([]OSTNode[K, V], 0, size>>1)
	defer func() {
		clear(stack)
	}()

	for ; !isNilLeaf[K, V](aux); aux = aux.Left() {
		stack = append(stack, aux)
	}

	for size = int64(len(stack)); size > 0; size = int64(len(stack)) {
		if aux = stack[size-1]; isRed[K, V](aux) {
			if (!isRoot[K, V](aux.Parent()) && isRed[K, V](aux.Parent())) ||
				(isRed[K, V](aux.Left()) || isRed[K, V](aux.Right())) {
				return errors.New("[ostree] red violation")
			}
		}

		stack = stack[:size-1]
		if aux.Right() != nil {
			for aux = aux.Right(); aux != nil; aux = aux.Left() {
				stack = append(stack, aux)
			}
		}
	}
	return nil
}

// BFS traversal to load all leaves.
func bfsLeaves[K infra.OrderedKey, V any](tree OSTree[K, V]) []OSTNode[K, V] {
	size := tree.Len()
	var aux OSTNode[K, V] = tree.Root()
	if size < 0 || isNilLeaf[K, V](aux) {
		return nil
	}

	leaves := make([]OSTNode[K, V], 0, size>>1+1)
	stack := make([]OSTNode[K, V], 0, size>>1)
	defer func() {
		clear(stack)
	}()
	stack = append(stack, aux)

	for len(stack) > 0 {
		aux = stack[0]
		l, r := aux.Left(), aux.Right()
		if /* nil leaves, keep one */ isNilLeaf[K, V](l) || isNilLeaf[K, V](r) {
			leaves = append(leaves, aux)
		}
		if !isNilLeaf[K, V](l) {
			stack = append(stack, l)
		}
		if !isNilLeaf[K, V](r) {
			stack = append(stack, r)
		}
		stack = stack[1:]
	}
	return leaves
}

// Every path from a leaf up to the root must pass the same number of
// black nodes (p4).
func BlackViolationValidate[K infra.OrderedKey, V any](tree OSTree[K, V]) error {
	leaves := bfsLeaves[K, V](tree)
	if leaves == nil {
		return nil
	}

	blackDepth := blackDepthTo[K, V](leaves[0], tree.Root())
	for i := 1; i < len(leaves); i++ {
		if blackDepthTo[K, V](leaves[i], tree.Root()) != blackDepth {
			return errors.New("[ostree] black violation")
		}
	}
	return nil
}

// Inorder traversal to validate the size augmentation (p6).
func SizeViolationValidate[K infra.OrderedKey, V any](tree OSTree[K, V]) error {
	size := tree.Len()
	var aux OSTNode[K, V] = tree.Root()
	if aux == nil {
		if size != 0 {
			return errors.New("[ostree] size violation: empty tree with non-zero count")
		}
		return nil
	}
	if aux.Size() != size {
		return errors.New("[ostree] size violation: root size differs from count")
	}

	stack := make([]OSTNode[K, V], 0, size>>1)
	defer func() {
		clear(stack)
	}()

	for ; !isNilLeaf[K, V](aux); aux = aux.Left() {
		stack = append(stack, aux)
	}

	for n := len(stack); n > 0; n = len(stack) {
		aux = stack[n-1]
		var lsz, rsz int64
		if l := aux.Left(); !isNilLeaf[K, V](l) {
			lsz = l.Size()
		}
		if r := aux.Right(); !isNilLeaf[K, V](r) {
			rsz = r.Size()
		}
		if aux.Size() != 1+lsz+rsz {
			return errors.New("[ostree] size violation")
		}

		stack = stack[:n-1]
		if aux.Right() != nil {
			for aux = aux.Right(); aux != nil; aux = aux.Left() {
				stack = append(stack, aux)
			}
		}
	}
	return nil
}

// Validate bundles the three property validators into one error.
func Validate[K infra.OrderedKey, V any](tree OSTree[K, V]) error {
	return multierr.Combine(
		RedViolationValidate[K, V](tree),
		BlackViolationValidate[K, V](tree),
		SizeViolationValidate[K, V](tree),
	)
}

// BlackHeight walks the whole tree recursively, re-checking the search
// order, coloring, and size invariants on the way, and returns the
// measured black-height. A nil kcmp falls back to the natural ascending
// order, so pass the tree's own comparator for descending trees.
func BlackHeight[K infra.OrderedKey, V any](tree OSTree[K, V], kcmp infra.OrderedKeyComparator[K]) (int64, error) {
	if kcmp == nil {
		kcmp = infra.OrderedCompare[K]
	}
	root := tree.Root()
	if isNilLeaf[K, V](root) {
		if tree.Len() != 0 {
			return 0, errors.New("[ostree] empty tree with non-zero count")
		}
		return 0, nil
	}
	if isRed[K, V](root) {
		return 0, errors.New("[ostree] root must be black")
	}
	blackHeight, size, err := validateSubtree[K, V](root, kcmp, nil, nil)
	if err != nil {
		return 0, err
	}
	if size != tree.Len() {
		return 0, errors.New("[ostree] node count differs from Len")
	}
	return blackHeight, nil
}

func validateSubtree[K infra.OrderedKey, V any](node OSTNode[K, V], kcmp infra.OrderedKeyComparator[K], lower, upper *K) (blackHeight int64, size int64, err error) {
	if isNilLeaf[K, V](node) {
		return 0, 0, nil
	}
	key := node.Key()
	if lower != nil && kcmp(key, *lower) <= 0 {
		return 0, 0, errors.New("[ostree] search order violation")
	}
	if upper != nil && kcmp(key, *upper) >= 0 {
		return 0, 0, errors.New("[ostree] search order violation")
	}
	if isRed[K, V](node) && (isRed[K, V](node.Left()) || isRed[K, V](node.Right())) {
		return 0, 0, errors.New("[ostree] red violation")
	}

	lbh, lsz, err := validateSubtree[K, V](node.Left(), kcmp, lower, &key)
	if err != nil {
		return 0, 0, err
	}
	rbh, rsz, err := validateSubtree[K, V](node.Right(), kcmp, &key, upper)
	if err != nil {
		return 0, 0, err
	}
	if lbh != rbh {
		return 0, 0, errors.New("[ostree] black violation")
	}
	if node.Size() != 1+lsz+rsz {
		return 0, 0, errors.New("[ostree] size violation")
	}

	blackHeight = lbh
	if isBlack[K, V](node) {
		blackHeight++
	}
	return blackHeight, 1 + lsz + rsz, nil
}
