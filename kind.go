package treent

import (
	"fmt"
	"reflect"

	"github.com/go-treent/treent/ecs"
)

// Kind is the type-erased descriptor of one tree-aware component kind. A
// Treent shape is an ordered list of kinds; the facade iterates that list
// whenever structural relationships are attached or detached so that all
// kinds always agree on the tree topology.
type Kind struct {
	name   string
	attach func(r *ecs.Registry, id ecs.EntityId)
	link   func(r *ecs.Registry, child, parent ecs.EntityId)
	unlink func(r *ecs.Registry, id ecs.EntityId)
}

func (k Kind) Name() string {
	return k.name
}

// KindOf builds the descriptor for the component kind C. C must embed
// TreeComponent[*C] and implement Compose on its pointer receiver.
//
// An optional default value can be passed, it is used when the kind is
// attached to a fresh entity. Useful for kinds whose zero value is not a
// sensible default (a multiplicative alpha, a scale):
//
//	KindOf[StyleComponent](StyleComponent{Alpha: 1})
func KindOf[C any, D interface {
	Composable[D]
	*C
}](defaultValue ...C) Kind {
	if len(defaultValue) > 1 {
		panic("KindOf must be called with at most one default value")
	}

	name := reflect.TypeFor[C]().Name()

	return Kind{
		name: name,

		attach: func(r *ecs.Registry, id ecs.EntityId) {
			if ecs.Has[C](r, id) {
				return
			}

			var value C
			if len(defaultValue) == 1 {
				value = defaultValue[0]
			}

			ecs.Attach(r, id, value)
		},

		link: func(r *ecs.Registry, child, parent ecs.EntityId) {
			AttachToParent(D(mustComponent[C](r, child, name)), D(mustComponent[C](r, parent, name)))
		},

		unlink: func(r *ecs.Registry, id ecs.EntityId) {
			if c, ok := ecs.Lookup[C](r, id); ok {
				DetachFromParent(D(c))
			}
		},
	}
}

func mustComponent[C any](r *ecs.Registry, id ecs.EntityId, name string) *C {
	c, ok := ecs.Lookup[C](r, id)
	if !ok {
		panic(fmt.Sprintf("treent: %s has no %s component", id, name))
	}

	return c
}

// Shape is the ordered set of tree-aware component kinds shared by every
// node of a tree. Configure it once and pass it to New or NewManager.
type Shape struct {
	kinds []Kind
}

func NewShape(kinds ...Kind) *Shape {
	return &Shape{kinds: kinds}
}

func (s *Shape) Kinds() []Kind {
	return s.kinds
}

// DetachEntity detaches every kind of the shape between the entity and its
// parent, and clears the facade level bookkeeping records. This is the only
// safe way to remove a node from its tree before destroying its backing
// entity out of band. No-op if the entity is not attached anywhere.
func (s *Shape) DetachEntity(r *ecs.Registry, id ecs.EntityId) {
	// prefer the facade path when the entity is managed by a Treent
	if node, ok := ecs.Lookup[nodeComponent](r, id); ok && node.treent != nil {
		node.treent.DetachFromParent()
		return
	}

	pc, ok := ecs.Lookup[ParentComponent](r, id)
	if !ok {
		return
	}

	if cc, ok := ecs.Lookup[ChildrenComponent](r, pc.parent); ok {
		cc.removeChild(id)
	}

	ecs.Detach[ParentComponent](r, id)

	for _, kind := range s.kinds {
		kind.unlink(r, id)
	}
}

// SafeDestroy destroys an entity that may or may not be part of a tree,
// detaching it from its parent first.
func (s *Shape) SafeDestroy(r *ecs.Registry, id ecs.EntityId) {
	s.DetachEntity(r, id)
	r.Destroy(id)
}
