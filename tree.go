package treent

import "fmt"

// Composable constrains the pointer type of a component kind that can take
// part in a tree. A kind embeds TreeComponent with its own pointer type and
// implements Compose on the pointer receiver:
//
//	type TransformComponent struct {
//		treent.TreeComponent[*TransformComponent]
//		Translation gm.Vec
//	}
//
//	func (t *TransformComponent) Compose(other *TransformComponent) { ... }
//
// Compose folds the state of other into the receiver. The same method is used
// for both traversal directions: Descend passes the parent, Ascend passes the
// child. The combination rule is up to the kind (additive, multiplicative,
// min/max, ...) and should be associative along a chain of ancestors.
type Composable[D comparable] interface {
	comparable
	Compose(other D)
	tree() *TreeComponent[D]
}

// TreeComponent holds the structural parent/child links for one component
// kind. The links do not own anything, ownership of the underlying entities
// lives at the Treent level. A zero TreeComponent is a root with no children.
//
// The relationship between TreeComponents is not automatically cleaned up
// when a component is destroyed. Cleaning up automatically would cause a
// cascade of unnecessary changes when a parent is destroyed together with its
// whole subtree. Detach explicitly when destroying a child before its parent.
type TreeComponent[D comparable] struct {
	parent   D
	children []D
}

func (t *TreeComponent[D]) tree() *TreeComponent[D] {
	return t
}

// IsRoot returns true iff the node has no parent.
func (t *TreeComponent[D]) IsRoot() bool {
	var zero D
	return t.parent == zero
}

// IsLeaf returns true iff the node has no children.
func (t *TreeComponent[D]) IsLeaf() bool {
	return len(t.children) == 0
}

// Parent returns the parent node, if any.
func (t *TreeComponent[D]) Parent() (D, bool) {
	var zero D
	return t.parent, t.parent != zero
}

// Children returns the child nodes in insertion order.
// You **must not** modify the returned slice.
func (t *TreeComponent[D]) Children() []D {
	return t.children
}

// AttachToParent links child below parent. The child is appended to the
// parents children, insertion order is traversal order.
//
// The child must not be attached anywhere yet, re-parenting is an explicit
// detach-then-attach sequence. Attaching a node to one of its own
// descendants (or to itself) would create a cycle. Both cases are programmer
// errors and panic without mutating either tree.
func AttachToParent[D Composable[D]](child, parent D) {
	ct := child.tree()

	var zero D
	if ct.parent != zero {
		panic(fmt.Sprintf("treent: node %v is already attached to a parent", child))
	}

	if isAncestor(child, parent) {
		panic(fmt.Sprintf("treent: attaching %v would create a cycle", child))
	}

	ct.parent = parent

	pt := parent.tree()
	pt.children = append(pt.children, child)
}

// RemoveChild unlinks child from parent. The childs parent must be exactly
// this parent, anything else is a programmer error and panics. Removal is by
// identity, the childs own subtree is left untouched.
func RemoveChild[D Composable[D]](parent, child D) {
	ct := child.tree()
	if ct.parent != parent {
		panic(fmt.Sprintf("treent: node %v is not a child of %v", child, parent))
	}

	var zero D
	ct.parent = zero

	pt := parent.tree()
	for idx, c := range pt.children {
		if c == child {
			copy(pt.children[idx:], pt.children[idx+1:])
			pt.children[len(pt.children)-1] = zero
			pt.children = pt.children[:len(pt.children)-1]
			return
		}
	}

	panic(fmt.Sprintf("treent: node %v missing from the children of its parent", child))
}

// DetachFromParent cuts the link between the node and its parent. The nodes
// own children stay attached, detaching a subtree does not perturb the
// subtrees internal structure. No-op for roots.
func DetachFromParent[D Composable[D]](node D) {
	t := node.tree()

	var zero D
	if t.parent == zero {
		return
	}

	RemoveChild(t.parent, node)
}

// DetachChildren detaches every child from the node in one pass.
func DetachChildren[D Composable[D]](node D) {
	t := node.tree()

	var zero D
	for idx, child := range t.children {
		child.tree().parent = zero
		t.children[idx] = zero
	}

	t.children = t.children[:0]
}

// Descend visits all descendants of the node depth-first in pre-order,
// children in insertion order. Each child composes its parent into itself
// before its own subtree is visited, so an ancestors composed state is always
// complete before a descendant consumes it. The composed state is recomputed
// in full on every call, nothing is cached.
func Descend[D Composable[D]](node D) {
	for _, child := range node.tree().children {
		child.Compose(node)
		Descend(child)
	}
}

// Ascend walks from the node towards the root. Each parent composes the
// current node into itself before the walk continues upward, terminating at
// the root.
func Ascend[D Composable[D]](node D) {
	parent, ok := node.tree().Parent()
	if !ok {
		return
	}

	parent.Compose(node)
	Ascend(parent)
}

func isAncestor[D Composable[D]](candidate, node D) bool {
	var zero D
	for n := node; n != zero; n = n.tree().parent {
		if n == candidate {
			return true
		}
	}

	return false
}
