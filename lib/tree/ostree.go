package tree

import (
	"reflect"

	"github.com/samber/lo"

	"github.com/x-dsa/xost/lib/infra"
	"github.com/x-dsa/xost/lib/kv"
)

type ostNode[K infra.OrderedKey, V any] struct {
	parent *ostNode[K, V]
	left   *ostNode[K, V]
	right  *ostNode[K, V]
	key    K
	val    V
	size   int64
	color  RBColor
	hasKV  bool
}

func (node *ostNode[K, V]) Color() RBColor {
	return node.color
}

func (node *ostNode[K, V]) Key() K {
	return node.key
}

func (node *ostNode[K, V]) Val() V {
	return node.val
}

func (node *ostNode[K, V]) Size() int64 {
	if node == nil {
		return 0
	}
	return node.size
}

func (node *ostNode[K, V]) HasKeyVal() bool {
	if node == nil {
		return false
	}
	return node.hasKV
}

func (node *ostNode[K, V]) Left() OSTNode[K, V] {
	if node == nil || node.left == nil {
		return nil
	}
	return node.left
}

func (node *ostNode[K, V]) Parent() OSTNode[K, V] {
	if node == nil || node.parent == nil {
		return nil
	}
	return node.parent
}

func (node *ostNode[K, V]) Right() OSTNode[K, V] {
	if node == nil || node.right == nil {
		return nil
	}
	return node.right
}

// sizeOf treats absent children as empty subtrees.
func sizeOf[K infra.OrderedKey, V any](node *ostNode[K, V]) int64 {
	if node == nil {
		return 0
	}
	return node.size
}

func (node *ostNode[K, V]) isNilLeaf() bool {
	return isNilLeaf[K, V](node)
}

func (node *ostNode[K, V]) isRed() bool {
	return isRed[K, V](node)
}

func (node *ostNode[K, V]) isBlack() bool {
	return isBlack[K, V](node)
}

func (node *ostNode[K, V]) isRoot() bool {
	return isRoot[K, V](node)
}

func (node *ostNode[K, V]) isLeaf() bool {
	return node != nil && node.parent != nil && node.left.isNilLeaf() && node.right.isNilLeaf()
}

// isDetached reports that the node has been fully unlinked by a removal.
func (node *ostNode[K, V]) isDetached() bool {
	return node != nil && !node.hasKV && node.parent == nil && node.left == nil && node.right == nil
}

func (node *ostNode[K, V]) Direction() RBDirection {
	if node.isNilLeaf() {
		// impossible run to here
		panic( /* debug assertion */ "[ostree] nil leaf node without direction")
	}

	if node.isRoot() {
		return Root
	}
	if node == node.parent.left {
		return Left
	}
	return Right
}

func (node *ostNode[K, V]) sibling() *ostNode[K, V] {
	dir := node.Direction()
	switch dir {
	case Left:
		return node.parent.right
	case Right:
		return node.parent.left
	default:

	}
	return nil
}

func (node *ostNode[K, V]) hasSibling() bool {
	return !node.isRoot() && node.sibling() != nil
}

func (node *ostNode[K, V]) uncle() *ostNode[K, V] {
	return node.parent.sibling()
}

func (node *ostNode[K, V]) hasUncle() bool {
	return !node.isRoot() && node.parent.hasSibling()
}

func (node *ostNode[K, V]) grandpa() *ostNode[K, V] {
	return node.parent.parent
}

func (node *ostNode[K, V]) fixLink() {
	if node.left != nil {
		node.left.parent = node
	}
	if node.right != nil {
		node.right.parent = node
	}
}

func (node *ostNode[K, V]) minimum() *ostNode[K, V] {
	aux := node
	for ; aux != nil && aux.left != nil; aux = aux.left {
	}
	return aux
}

func (node *ostNode[K, V]) maximum() *ostNode[K, V] {
	aux := node
	for ; aux != nil && aux.right != nil; aux = aux.right {
	}
	return aux
}

// The pred node of the current node is its previous node in sorted order.
func (node *ostNode[K, V]) pred() *ostNode[K, V] {
	x := node
	if x == nil {
		return nil
	}
	aux := x
	if aux.left != nil {
		return aux.left.maximum()
	}

	aux = x.parent
	// Backtrack to the ancestor that is the x's pred.
	for aux != nil && x == aux.left {
		x = aux
		aux = aux.parent
	}
	return aux
}

// The succ node of the current node is its next node in sorted order.
func (node *ostNode[K, V]) succ() *ostNode[K, V] {
	x := node
	if x == nil {
		return nil
	}

	aux := x
	if aux.right != nil {
		return aux.right.minimum()
	}

	aux = x.parent
	// Backtrack to the ancestor that is the x's succ.
	for aux != nil && x == aux.right {
		x = aux
		aux = aux.parent
	}
	return aux
}

type osTree[K infra.OrderedKey, V any] struct {
	root  *ostNode[K, V]
	kcmp  infra.OrderedKeyComparator[K]
	count int64
}

var (
	_ OSTree[uint64, uint64] = (*osTree[uint64, uint64])(nil)
)

func (tree *osTree[K, V]) Len() int64 {
	return tree.count
}

func (tree *osTree[K, V]) Root() OSTNode[K, V] {
	if tree.root == nil {
		return nil
	}
	return tree.root
}

func (tree *osTree[K, V]) Purge() {
	tree.root = nil
	tree.count = 0
}

// References:
// https://elixir.bootlin.com/linux/latest/source/lib/rbtree.c
// rbtree properties:
// https://en.wikipedia.org/wiki/Red%E2%80%93black_tree#Properties
// p1. Every node is either red or black.
// p2. All NIL nodes are considered black.
// p3. A red node does not have a red child. (red-violation)
// p4. Every path from a given node to any of its descendant
//   NIL nodes goes through the same number of black nodes. (black-violation)
// p5. (Optional) The root is black.
// (Conclusion) If a node X has exactly one child, it must be a red child,
//   because if it were black, its NIL descendants would sit at a different
//   black depth than X's NIL child, violating p4.
// On top of the classic properties every node carries the size of its own
// subtree (p6: size = 1 + size(left) + size(right)), which is what turns
// key search into rank search and back. Rotations rebuild the two touched
// sizes locally; attach/detach walk the ancestor chain once.

/*
		 |                         |
		 X                         S
		/ \     leftRotate(X)     / \
	   L   S    ============>    X   Sd
		  / \                   / \
		Sc   Sd                L   Sc
*/
func (tree *osTree[K, V]) leftRotate(x *ostNode[K, V]) {
	if x == nil || x.right.isNilLeaf() {
		// impossible run to here
		panic( /* debug assertion */ "[ostree] left rotate node x is nil or x.right is nil")
	}

	p, y := x.parent, x.right
	dir := x.Direction()
	x.right, y.left = y.left, x

	x.fixLink()
	y.fixLink()

	switch dir {
	case Root:
		tree.root = y
	case Left:
		p.left = y
	case Right:
		p.right = y
	default:
		// impossible run to here
		panic( /* debug assertion */ "[ostree] unknown node direction to left-rotate")
	}
	y.parent = p

	// Only X and S changed shape; their subtree sizes are rebuilt from
	// the children that crossed the rotation.
	x.size = 1 + sizeOf(x.left) + sizeOf(x.right)
	y.size = 1 + sizeOf(y.left) + sizeOf(y.right)
}

/*
			 |                         |
			 X                         S
			/ \     rightRotate(S)    / \
	       L   S    <============    X   R
			  / \                   / \
			Sc   Sd               Sc   Sd
*/
func (tree *osTree[K, V]) rightRotate(x *ostNode[K, V]) {
	if x == nil || x.left.isNilLeaf() {
		// impossible run to here
		panic( /* debug assertion */ "[ostree] right rotate node x is nil or x.left is nil")
	}

	p, y := x.parent, x.left
	dir := x.Direction()
	x.left, y.right = y.right, x

	x.fixLink()
	y.fixLink()

	switch dir {
	case Root:
		tree.root = y
	case Left:
		p.left = y
	case Right:
		p.right = y
	default:
		// impossible run to here
		panic( /* debug assertion */ "[ostree] unknown node direction to right-rotate")
	}
	y.parent = p

	x.size = 1 + sizeOf(x.left) + sizeOf(x.right)
	y.size = 1 + sizeOf(y.left) + sizeOf(y.right)
}

func (tree *osTree[K, V]) searchNode(key K) *ostNode[K, V] {
	for aux := tree.root; aux != nil; {
		res := tree.kcmp(key, aux.key)
		if res == 0 {
			return aux
		} else if res < 0 {
			aux = aux.left
		} else {
			aux = aux.right
		}
	}
	return nil
}

// i1: Empty tree, insert directly, but the root node is painted to black.
// A duplicate key aborts the descent before anything is linked, so a
// failed Add never disturbs the tree.
func (tree *osTree[K, V]) Add(key K, val V) error {
	if /* i1 */ tree.root.isNilLeaf() {
		tree.root = &ostNode[K, V]{
			key:   key,
			val:   val,
			size:  1,
			hasKV: true,
		}
		tree.count++
		return nil
	}

	var x, y *ostNode[K, V] = tree.root, nil
	for !x.isNilLeaf() {
		y = x
		res := tree.kcmp(key, x.key)
		if /* equal */ res == 0 {
			return kv.ErrDuplicateKey
		} else /* less */ if res < 0 {
			x = x.left
		} else /* greater */ {
			x = x.right
		}
	}

	z := &ostNode[K, V]{
		key:    key,
		val:    val,
		size:   1,
		color:  Red,
		parent: y,
		hasKV:  true,
	}
	if tree.kcmp(key, y.key) < 0 {
		y.left = z
	} else {
		y.right = z
	}

	// The new leaf grows every subtree on its ancestor chain by one.
	for aux := y; aux != nil; aux = aux.parent {
		aux.size++
	}
	tree.count++
	tree.insertRebalance(z)
	return nil
}

func (tree *osTree[K, V]) Update(key K, val V) error {
	node := tree.searchNode(key)
	if node == nil {
		return kv.ErrKeyNotFound
	}
	node.val = val
	return nil
}

func (tree *osTree[K, V]) Get(key K) (V, error) {
	node := tree.searchNode(key)
	if node == nil {
		return *new(V), kv.ErrKeyNotFound
	}
	return node.val, nil
}

func (tree *osTree[K, V]) Contains(key K) bool {
	return tree.searchNode(key) != nil
}

func (tree *osTree[K, V]) ContainsPair(key K, val V, eq kv.ValueEqualFunc[V]) bool {
	node := tree.searchNode(key)
	if node == nil {
		return false
	}
	if eq == nil {
		return reflect.DeepEqual(node.val, val)
	}
	return eq(node.val, val)
}

/*
New node X is red by default.

<X> is a RED node.
[X] is a BLACK node (or NIL).
{X} is either a RED node or a BLACK node.

im1: Current node X's parent P is black and P is root, so hold p3 and p4.

im2: Current node X's parent P is red and P is root, repaint P into black.

im3: If both the parent P and the uncle U are red, grandpa G is black.
(red-violation)
After repainted G into red may be still red-violation.
Recursive to fix grandpa.

	    [G]             <G>
	    / \             / \
	  <P> <U>  ====>  [P] [U]
	  /               /
	<X>             <X>

im4: The parent P is red but the uncle U is black. (red-violation)
X is opposite direction to P. Rotate P to opposite direction.
After rotation may be still red-violation. Here must enter im5 to fix.

	  [G]                 [G]
	  / \    rotate(P)    / \
	<P> [U]  ========>  <X> [U]
	  \                 /
	  <X>             <P>

im5: Handle im4 scenario, current node is the same direction as parent.

	    [G]                 <P>               [P]
	    / \    rotate(G)    / \    repaint    / \
	  <P> [U]  ========>  <X> [G]  ======>  <X> <G>
	  /                         \                 \
	<X>                         [U]               [U]

Recolors never move nodes, so the size augmentation is untouched here;
the rotations rebuild the two sizes they disturb.
*/
func (tree *osTree[K, V]) insertRebalance(x *ostNode[K, V]) {
	for !x.isNilLeaf() {
		if x.isRoot() {
			if x.isRed() {
				x.color = Black
			}
			return
		}

		if /* im1 */ x.parent.isBlack() {
			return
		}

		if /* im2 */ x.parent.isRoot() {
			x.parent.color = Black
			return
		}

		if /* im3 */ x.hasUncle() && x.uncle().isRed() {
			x.parent.color = Black
			x.uncle().color = Black
			gp := x.grandpa()
			gp.color = Red
			x = gp
			continue
		}

		dir := x.Direction()
		if /* im4 */ dir != x.parent.Direction() {
			p := x.parent
			switch dir {
			case Left:
				tree.rightRotate(p)
			case Right:
				tree.leftRotate(p)
			default:
				// impossible run to here
				panic( /* debug assertion */ "[ostree] insert violate (im4)")
			}
			x = p // enter im5 to fix
		}

		switch /* im5 */ dir = x.parent.Direction(); dir {
		case Left:
			tree.rightRotate(x.grandpa())
		case Right:
			tree.leftRotate(x.grandpa())
		default:
			// impossible run to here
			panic( /* debug assertion */ "[ostree] insert violate (im5)")
		}

		x.parent.color = Black
		x.sibling().color = Red
		return
	}
}

/*
r1: Only a root node, remove directly.

r2: Current node X has left and right node.
Find node X's succ (the next node of higher rank, the left-most
descendant of the right subtree) to replace it. Swap the key/value only;
the succ slot is then removed structurally and it has at most one child.

	  |                    |
	  X                    S
	 / \                  / \
	L  ..   swap(X, S)   L  ..
		|   =========>       |
		P                    P
	   / \                  / \
	  S  ..                X  ..

r3: (1) Current node X is a red leaf node, remove directly.

r3: (2) Current node X is a black leaf node, we have to rebalance before
the detach, because the fix-up still needs X's sibling and parent
context. (black-violation)

r4: Current node X is not a leaf node but contains a not nil child node.
The child node must be a red node. (See conclusion. Otherwise,
black-violation)

Every physical detach walks the ancestor chain once to shrink the
subtree sizes, mirroring the grow on insert.
*/
func (tree *osTree[K, V]) removeNode(z *ostNode[K, V]) (res kv.Entry[K, V], err error) {
	res = kv.Entry[K, V]{Key: z.key, Val: z.val}

	if /* r1 */ tree.count == 1 && z.isRoot() {
		tree.root = nil
		z.left = nil
		z.right = nil
		z.hasKV = false
		return res, nil
	}

	y := z
	if /* r2 */ !y.left.isNilLeaf() && !y.right.isNilLeaf() {
		y = z.succ() // enter r3-r4
		// Swap key & value.
		z.key, z.val = y.key, y.val
	}

	if /* r3 */ y.isLeaf() {
		if /* r3 (2) */ y.isBlack() {
			tree.removeRebalance(y)
		}
		p := y.parent
		switch dir := y.Direction(); dir {
		case Left:
			p.left = nil
		case Right:
			p.right = nil
		default:
			// impossible run to here
			panic( /* debug assertion */ "[ostree] y should be a leaf node, violate (r3)")
		}
		for aux := p; aux != nil; aux = aux.parent {
			aux.size--
		}
	} else /* r4 */ {
		var replace *ostNode[K, V]
		if !y.right.isNilLeaf() {
			replace = y.right
		} else if !y.left.isNilLeaf() {
			replace = y.left
		}

		if replace == nil {
			// impossible run to here
			panic( /* debug assertion */ "[ostree] remove a leaf node without child, violate (r4)")
		}

		p := y.parent
		switch dir := y.Direction(); dir {
		case Root:
			tree.root = replace
			tree.root.parent = nil
		case Left:
			p.left = replace
			replace.parent = p
		case Right:
			p.right = replace
			replace.parent = p
		default:
			// impossible run to here
			panic( /* debug assertion */ "[ostree] impossible run to here")
		}
		for aux := p; aux != nil; aux = aux.parent {
			aux.size--
		}

		if y.isBlack() {
			if replace.isRed() {
				replace.color = Black
			} else {
				tree.removeRebalance(replace)
			}
		}
	}

	// Unlink node
	y.parent = nil
	y.left = nil
	y.right = nil
	y.hasKV = false

	return res, nil
}

func (tree *osTree[K, V]) Remove(key K) (kv.Entry[K, V], error) {
	if tree.count <= 0 {
		return kv.Entry[K, V]{}, kv.ErrKeyNotFound
	}
	z := tree.searchNode(key)
	if z == nil {
		return kv.Entry[K, V]{}, kv.ErrKeyNotFound
	}
	defer func() {
		tree.count--
	}()
	return tree.removeNode(z)
}

// RemoveMany removes every key or none: the batch is validated before the
// first removal so a missing (or twice-listed) key leaves the tree
// untouched.
func (tree *osTree[K, V]) RemoveMany(keys ...K) error {
	seen := make(map[K]struct{}, len(keys))
	for _, key := range keys {
		if _, dup := seen[key]; dup {
			return kv.ErrKeyNotFound
		}
		seen[key] = struct{}{}
		if tree.searchNode(key) == nil {
			return kv.ErrKeyNotFound
		}
	}
	for _, key := range keys {
		if _, err := tree.Remove(key); err != nil {
			// impossible run to here
			panic( /* debug assertion */ "[ostree] validated key vanished during batch remove")
		}
	}
	return nil
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).
{X} is either a RED node or a BLACK node.

Sc is the same direction to X and it X's sibling's child node.
Sd is the opposite direction to X and it X's sibling's child node.

rm1: Current node X's sibling S is red, so the parent P, nephew node Sc
and Sd must be black. (Otherwise, red-violation)
(1) X is left node of P, left rotate P
(2) X is right node of P, right rotate P.
(3) repaint S into black, P into red.

	  [P]                   <S>               [S]
	  / \    l-rotate(P)    / \    repaint    / \
	[X] <S>  ==========>  [P] [D]  ======>  <P> [Sd]
	    / \               / \               / \
	 [Sc] [Sd]          [X] [Sc]          [X] [Sc]

rm2: Current node X's parent P is red, the sibling S, nephew node Sc and
Sd is black. Repaint S into red and P into black.

	  <P>             [P]
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	 [Sc] [Sd]       [Sc] [Sd]

rm3: All of current node X's parent P, the sibling S, nephew node Sc and
Sd are black. Unable to satisfy p3 and p4. We have to paint the S into
red to satisfy p4 locally. Then recursive to handle P.

	  [P]             [P]
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	 [Sc] [Sd]       [Sc] [Sd]

rm4: Current node X's sibling S is black, nephew node Sc is red and Sd
is black. Ignore X's parent P's color (red or black is okay)
Unable to satisfy p3 and p4.
(1) If X is left node of P, right rotate S.
(2) If X is right node of P, left rotate S.
(3) Repaint S into red, Sc into black
Enter into rm5 to fix.

	                        {P}                {P}
	  {P}                   / \                / \
	  / \    r-rotate(S)  [X] <Sc>   repaint  [X] [Sc]
	[X] [S]  ==========>        \    ======>       \
	    / \                     [S]                <S>
	  <Sc> [Sd]                   \                  \
	                              [Sd]               [Sd]

rm5: Current node X's sibling S is black, nephew node Sc is black and Sd
is red. Ignore X's parent P's color (red or black is okay)
Unable to satisfy p4 (black-violation)
(1) If X is left node of P, left rotate P.
(2) If X is right node of P, right rotate P.
(3) Swap P and S's color (red-violation)
(4) Repaint Sd into black.

	  {P}                   [S]                {S}
	  / \    l-rotate(P)    / \     repaint    / \
	[X] [S]  ==========>  {P} <Sd>  ======>  [P] [Sd]
	    / \               / \                / \
	 [Sc] <Sd>          [X] [Sc]           [X] [Sc]
*/
func (tree *osTree[K, V]) removeRebalance(x *ostNode[K, V]) {
	for {
		if x.isRoot() {
			return
		}

		sibling := x.sibling()
		dir := x.Direction()
		if /* rm1 */ sibling.isRed() {
			switch dir {
			case Left:
				tree.leftRotate(x.parent)
			case Right:
				tree.rightRotate(x.parent)
			default:
				// impossible run to here
				panic( /* debug assertion */ "[ostree] remove violate (rm1)")
			}
			sibling.color = Black
			x.parent.color = Red // ready to enter rm2
			sibling = x.sibling()
		}

		var sc, sd *ostNode[K, V]
		switch /* rm2 */ dir {
		case Left:
			sc, sd = sibling.left, sibling.right
		case Right:
			sc, sd = sibling.right, sibling.left
		default:
			// impossible run to here
			panic( /* debug assertion */ "[ostree] remove violate (rm2)")
		}

		if sc.isBlack() && sd.isBlack() {
			if /* rm2 */ x.parent.isRed() {
				sibling.color = Red
				x.parent.color = Black
				break
			} else /* rm3 */ {
				sibling.color = Red
				x = x.parent
				continue
			}
		} else {
			if /* rm4 */ !sc.isNilLeaf() && sc.isRed() {
				switch dir {
				case Left:
					tree.rightRotate(sibling)
				case Right:
					tree.leftRotate(sibling)
				default:
					// impossible run to here
					panic( /* debug assertion */ "[ostree] remove violate (rm4)")
				}
				sc.color = Black
				sibling.color = Red
				sibling = x.sibling()
				switch dir {
				case Left:
					sd = sibling.right
				case Right:
					sd = sibling.left
				default:
					// impossible run to here
					panic( /* debug assertion */ "[ostree] remove violate (rm4)")
				}
			}

			switch /* rm5 */ dir {
			case Left:
				tree.leftRotate(x.parent)
			case Right:
				tree.rightRotate(x.parent)
			default:
				// impossible run to here
				panic( /* debug assertion */ "[ostree] remove violate (rm5)")
			}
			sibling.color = x.parent.color
			x.parent.color = Black
			if !sd.isNilLeaf() {
				sd.color = Black
			}
			break
		}
	}
}

// Foreach walks ascending through the parent-pointer chain (left-most
// descent, then climb), so no auxiliary stack is held.
func (tree *osTree[K, V]) Foreach(action func(idx int64, key K, val V) bool) {
	idx := int64(0)
	for aux := tree.root.minimum(); aux != nil; aux = aux.succ() {
		if !action(idx, aux.key, aux.val) {
			return
		}
		idx++
	}
}

func (tree *osTree[K, V]) entries() []kv.Entry[K, V] {
	out := make([]kv.Entry[K, V], 0, tree.count)
	tree.Foreach(func(_ int64, key K, val V) bool {
		out = append(out, kv.Entry[K, V]{Key: key, Val: val})
		return true
	})
	return out
}

func (tree *osTree[K, V]) Keys() []K {
	return lo.Map(tree.entries(), func(e kv.Entry[K, V], _ int) K { return e.Key })
}

func (tree *osTree[K, V]) Values() []V {
	return lo.Map(tree.entries(), func(e kv.Entry[K, V], _ int) V { return e.Val })
}

type OSTreeOpt[K infra.OrderedKey, V any] func(*osTree[K, V])

// WithOSTreeComparator fixes the key ordering at construction; it is not
// changeable afterwards.
func WithOSTreeComparator[K infra.OrderedKey, V any](kcmp infra.OrderedKeyComparator[K]) OSTreeOpt[K, V] {
	return func(tree *osTree[K, V]) {
		tree.kcmp = kcmp
	}
}

func WithOSTreeDesc[K infra.OrderedKey, V any]() OSTreeOpt[K, V] {
	return func(tree *osTree[K, V]) {
		tree.kcmp = infra.ReverseCompare[K]
	}
}

func NewOSTree[K infra.OrderedKey, V any](opts ...OSTreeOpt[K, V]) OSTree[K, V] {
	tree := &osTree[K, V]{
		kcmp: infra.OrderedCompare[K],
	}
	for _, o := range opts {
		o(tree)
	}
	return tree
}

// NewOSTreeFromEntries bulk-loads by repeated Add, so a duplicate key in
// entries surfaces as kv.ErrDuplicateKey.
func NewOSTreeFromEntries[K infra.OrderedKey, V any](entries []kv.Entry[K, V], opts ...OSTreeOpt[K, V]) (OSTree[K, V], error) {
	tree := NewOSTree[K, V](opts...)
	for _, e := range entries {
		if err := tree.Add(e.Key, e.Val); err != nil {
			return nil, err
		}
	}
	return tree, nil
}
