package treent

import (
	"fmt"
	"log/slog"

	"github.com/go-treent/treent/ecs"
)

// Treent is the user-facing handle of one tree node. It wraps a registry
// entity and coordinates the entities tree-aware component kinds as a single
// logical node: the structural relationship of every kind in the shape is
// attached and detached as one atomic set, so the kinds can never disagree on
// the topology.
//
// Ownership is exclusive: a Treent is owned by exactly one owner at all times,
// either its parent Treent, a Manager, or - for a free root - the caller.
// Destroying a Treent destroys its whole subtree. RemoveChild transfers
// ownership of a subtree back to the caller instead, removal and destruction
// are distinct operations so that subtrees can be relocated instead of torn
// down.
type Treent struct {
	registry *ecs.Registry
	shape    *Shape
	entity   ecs.EntityId

	parent   *Treent   // non-owning back-reference
	owner    *Manager  // set iff this is a manager-owned root
	children []*Treent // owned

	// invalidated marks the backing entity as gone, destroyed is terminal.
	invalidated bool
	destroyed   bool
}

// New creates a free root Treent owned by the caller: a fresh entity with
// every kind of the shape attached, plus the back-reference and children
// bookkeeping records.
func New(registry *ecs.Registry, shape *Shape) *Treent {
	if registry == nil || shape == nil {
		panic("treent: New requires a registry and a shape")
	}

	t := &Treent{
		registry: registry,
		shape:    shape,
		entity:   registry.Create(),
	}

	for _, kind := range shape.kinds {
		kind.attach(registry, t.entity)
	}

	// the node back-reference must tear down before the children record so
	// that the facade is detached before the cascade starts
	ecs.Attach(registry, t.entity, nodeComponent{treent: t})
	ecs.Attach(registry, t.entity, ChildrenComponent{})

	return t
}

// Entity returns the backing entity. NoEntityId once the Treent is destroyed.
func (t *Treent) Entity() ecs.EntityId {
	return t.entity
}

// Registry returns the registry this Treent lives in.
func (t *Treent) Registry() *ecs.Registry {
	return t.registry
}

// Shape returns the set of tree-aware kinds configured for this tree.
func (t *Treent) Shape() *Shape {
	return t.shape
}

// Valid returns true while the Treent refers to a live entity.
func (t *Treent) Valid() bool {
	return !t.destroyed && !t.invalidated
}

// IsRoot returns true iff the Treent has no parent Treent.
func (t *Treent) IsRoot() bool {
	return t.parent == nil
}

// Parent returns the parent Treent, or nil for roots.
func (t *Treent) Parent() *Treent {
	return t.parent
}

// Children returns the owned child Treents in insertion order.
// You **must not** modify the returned slice.
func (t *Treent) Children() []*Treent {
	return t.children
}

// Visit passes the Treent and all of its descendants to fn, depth-first.
func (t *Treent) Visit(fn func(*Treent)) {
	fn(t)
	t.VisitChildren(fn)
}

// VisitChildren passes all descendants of the Treent to fn, depth-first.
func (t *Treent) VisitChildren(fn func(*Treent)) {
	for _, child := range t.children {
		child.Visit(fn)
	}
}

// CreateChild creates a new Treent as an owned child of this one. The childs
// lifetime is bounded by this Treents lifetime unless it is removed first.
func (t *Treent) CreateChild() *Treent {
	t.mustBeValid("CreateChild")

	child := New(t.registry, t.shape)
	t.attachChild(child)

	return child
}

// AppendChild takes ownership of an existing, currently unowned Treent.
// Appending a Treent that still has an owner is a programmer error: remove it
// from its current owner first to make the ownership transfer explicit.
func (t *Treent) AppendChild(child *Treent) {
	t.mustBeValid("AppendChild")

	if child == nil {
		panic("treent: cannot append nil child")
	}

	child.mustBeValid("AppendChild (child)")

	if child.parent != nil {
		panic("treent: child already has a parent, remove it from its parent first")
	}

	if child.owner != nil {
		panic("treent: child is owned by a manager, release it first")
	}

	if child.registry != t.registry {
		panic("treent: child belongs to a different registry")
	}

	for p := t; p != nil; p = p.parent {
		if p == child {
			panic(fmt.Sprintf("treent: appending %s would create a cycle", child.entity))
		}
	}

	t.attachChild(child)
}

// attachChild links every kind of the shape between child and parent and
// updates the bookkeeping records, all as one atomic set.
func (t *Treent) attachChild(child *Treent) {
	for _, kind := range t.shape.kinds {
		kind.link(t.registry, child.entity, t.entity)
	}

	pc := ecs.GetOrAttach[ParentComponent](t.registry, child.entity)
	pc.parent = t.entity

	cc := ecs.GetOrAttach[ChildrenComponent](t.registry, t.entity)
	cc.addChild(child.entity)

	child.parent = t
	t.children = append(t.children, child)
}

// RemoveChild detaches child from this Treent and returns it, transferring
// ownership of the removed subtree to the caller. The subtrees internal
// structure is left untouched.
//
// Removing a Treent that is not a child of this one is not an error: the
// request may race a notification against a removal that already happened.
// It is reported and nil is returned.
func (t *Treent) RemoveChild(child *Treent) *Treent {
	t.mustBeValid("RemoveChild")

	if child == nil || child.parent != t {
		slog.Warn("attempt to remove child not belonging to this treent",
			slog.Uint64("entity", uint64(t.entity)))
		return nil
	}

	t.detachChild(child)

	return child
}

// detachChild undoes attachChild. The childs entity may be mid-destruction,
// its components are still registered at this point.
func (t *Treent) detachChild(child *Treent) {
	for _, kind := range t.shape.kinds {
		kind.unlink(t.registry, child.entity)
	}

	ecs.Detach[ParentComponent](t.registry, child.entity)

	if cc, ok := ecs.Lookup[ChildrenComponent](t.registry, t.entity); ok {
		cc.removeChild(child.entity)
	}

	t.removeOwned(child)
	child.parent = nil
}

// removeOwned removes child from the owned children by identity.
func (t *Treent) removeOwned(child *Treent) bool {
	for idx, c := range t.children {
		if c == child {
			copy(t.children[idx:], t.children[idx+1:])
			t.children[len(t.children)-1] = nil
			t.children = t.children[:len(t.children)-1]
			return true
		}
	}

	return false
}

// DetachFromParent removes the Treent from its parent, transferring ownership
// to the caller. No-op for roots.
func (t *Treent) DetachFromParent() {
	t.mustBeValid("DetachFromParent")

	if t.parent == nil {
		return
	}

	t.parent.RemoveChild(t)
}

// DestroyChildren detaches and destroys every child in one pass. The children
// are taken as a group first so that the cascade does not re-enter the
// children collection while it is being worn down.
func (t *Treent) DestroyChildren() {
	t.mustBeValid("DestroyChildren")

	children := t.children
	t.children = nil

	if cc, ok := ecs.Lookup[ChildrenComponent](t.registry, t.entity); ok {
		cc.clear()
	}

	for _, child := range children {
		for _, kind := range t.shape.kinds {
			kind.unlink(t.registry, child.entity)
		}

		child.parent = nil
		child.dispose()
	}
}

// Destroy requests destruction from the owner: the owning parent (or Manager)
// removes the Treent and releases it, destroying the whole subtree. A free
// root destroys itself directly. Destruction is terminal, any further
// operation on the Treent panics.
func (t *Treent) Destroy() {
	t.mustBeValid("Destroy")

	switch {
	case t.parent != nil:
		parent := t.parent
		parent.detachChild(t)
		t.dispose()

	case t.owner != nil:
		t.owner.DestroyChild(t)

	default:
		t.dispose()
	}
}

// dispose tears the Treent down. Destroying the backing entity cascades
// through the ChildrenComponent teardown to the child entities, and every
// descendant facade follows along through its nodeComponent hook.
func (t *Treent) dispose() {
	if t.destroyed {
		return
	}

	t.destroyed = true
	t.invalidated = true
	t.parent = nil
	t.owner = nil

	id := t.entity
	t.entity = ecs.NoEntityId

	if id != ecs.NoEntityId && t.registry.Alive(id) {
		t.registry.Destroy(id)
	}

	t.children = nil
}

// handleEntityInvalidated is called from the nodeComponent teardown when the
// backing entity is destroyed through the registry rather than through the
// facade. Phase one marks the entity invalid (idempotent), phase two performs
// the structural removal exactly once. When the parent facade is itself being
// destroyed the structural removal is skipped: the whole subtree goes away
// and updating doomed links would be needless cascading work.
func (t *Treent) handleEntityInvalidated() {
	if t.destroyed {
		return
	}

	t.invalidated = true
	t.destroyed = true

	switch {
	case t.parent != nil && !t.parent.destroyed:
		t.parent.detachChild(t)

	case t.owner != nil:
		t.owner.removeOwned(t)
	}

	t.parent = nil
	t.owner = nil
	t.children = nil
	t.entity = ecs.NoEntityId
}

func (t *Treent) mustBeValid(op string) {
	if t.destroyed || t.invalidated {
		panic(fmt.Sprintf("treent: %s called on a destroyed treent", op))
	}
}
