package treent

import "github.com/go-treent/treent/ecs"

// ChildrenComponent lists the child entities owned by an entity. It is kept
// in sync by the facade so that systems working on the registry can discover
// tree membership without going through the Treent type.
//
// The component owns its children: tearing it down destroys every child
// entity that is still alive. This is what cascades destruction through the
// registry when a parent entity is destroyed.
type ChildrenComponent struct {
	children []ecs.EntityId
}

// Children returns the child entities in insertion order.
// You **must not** modify the returned slice.
func (c *ChildrenComponent) Children() []ecs.EntityId {
	return c.children
}

func (c *ChildrenComponent) addChild(id ecs.EntityId) {
	c.children = append(c.children, id)
}

func (c *ChildrenComponent) removeChild(id ecs.EntityId) {
	for idx, child := range c.children {
		if child == id {
			c.children = append(c.children[:idx], c.children[idx+1:]...)
			return
		}
	}
}

func (c *ChildrenComponent) clear() []ecs.EntityId {
	children := c.children
	c.children = nil
	return children
}

func (c *ChildrenComponent) Teardown(r *ecs.Registry, id ecs.EntityId) {
	// Take the list first: destroying a child runs its detach path, which
	// would otherwise mutate the slice we are iterating. Children already
	// gone were destroyed through their facade, skip them.
	for _, child := range c.clear() {
		if r.Alive(child) {
			r.Destroy(child)
		}
	}
}

// ParentComponent stores the back-reference to the owning parent entity of
// an attached child. Like ChildrenComponent it exists so that parentage is
// queryable straight from the registry.
type ParentComponent struct {
	parent ecs.EntityId
}

// Parent returns the parent entity.
func (p *ParentComponent) Parent() ecs.EntityId {
	return p.parent
}

// nodeComponent links the backing entity to its Treent facade. Its teardown
// hook is how an out-of-band entity destruction (straight through the
// registry, bypassing the facade) reaches the facade and keeps it from
// dangling.
type nodeComponent struct {
	treent *Treent
}

func (n *nodeComponent) Teardown(r *ecs.Registry, id ecs.EntityId) {
	if n.treent != nil {
		n.treent.handleEntityInvalidated()
	}
}
