// Package ecs provides the component registry backing a treent hierarchy.
//
// The registry is a flat table of entities, each holding a set of typed
// component values. Components are stored as heap-allocated pointers so that
// handles returned by Attach and Lookup stay stable for the lifetime of the
// entity. All mutation is expected to happen from a single goroutine.
package ecs

import (
	"fmt"
	"log/slog"
	"reflect"
	"slices"
)

type EntityId uint64

const NoEntityId = EntityId(0)

func (id EntityId) String() string {
	return fmt.Sprintf("entity-%d", id)
}

// TeardownComponent can be implemented by a component to get notified when it
// is detached from its entity or when its entity is destroyed. The hook runs
// while the entity and its remaining components are still registered, so the
// component may still look up its siblings.
type TeardownComponent interface {
	Teardown(r *Registry, id EntityId)
}

type entity struct {
	id EntityId

	// pointers to component values, keyed by the components type
	components map[reflect.Type]any

	// component types in attach order. Teardown hooks run in this order.
	order []reflect.Type
}

// Registry holds entities and their components.
type Registry struct {
	idSeq      EntityId
	entities   map[EntityId]*entity
	destroying map[EntityId]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		entities:   map[EntityId]*entity{},
		destroying: map[EntityId]struct{}{},
	}
}

// Create allocates a fresh entity with no components and returns its id.
func (r *Registry) Create() EntityId {
	r.idSeq += 1
	id := r.idSeq

	r.entities[id] = &entity{
		id:         id,
		components: map[reflect.Type]any{},
	}

	return id
}

// Alive returns true iff the entity exists in the registry.
func (r *Registry) Alive(id EntityId) bool {
	_, ok := r.entities[id]
	return ok
}

// Len returns the number of entities in the registry.
func (r *Registry) Len() int {
	return len(r.entities)
}

// Destroy removes the entity and all of its components from the registry.
// Teardown hooks run in component attach order while the entity is still
// registered. Destroying an unknown entity is reported and skipped, re-entrant
// destruction of an entity that is already being torn down is a no-op.
func (r *Registry) Destroy(id EntityId) {
	e, ok := r.entities[id]
	if !ok {
		slog.Warn("cannot destroy entity: does not exist", slog.Uint64("entity", uint64(id)))
		return
	}

	if _, busy := r.destroying[id]; busy {
		return
	}

	r.destroying[id] = struct{}{}

	// Iterate a snapshot: hooks may detach components of this very entity,
	// which mutates the order slice. Components stay registered until the
	// entity is deleted so hooks can still reach their siblings.
	for _, ty := range slices.Clone(e.order) {
		ptr, ok := e.components[ty]
		if !ok {
			// detached by an earlier hook
			continue
		}

		if td, ok := ptr.(TeardownComponent); ok {
			td.Teardown(r, id)
		}
	}

	delete(r.entities, id)
	delete(r.destroying, id)
}

func (r *Registry) mustEntity(id EntityId) *entity {
	e, ok := r.entities[id]
	if !ok {
		panic(fmt.Sprintf("%s does not exist", id))
	}

	return e
}

// Attach adds a component value to the entity and returns a stable pointer
// to it. Attaching a component type that is already present is a programmer
// error and panics. Use GetOrAttach for the idempotent variant.
func Attach[C any](r *Registry, id EntityId, value C) *C {
	e := r.mustEntity(id)

	ty := reflect.TypeFor[C]()
	if _, exists := e.components[ty]; exists {
		panic(fmt.Sprintf("component %s is already attached to %s", ty, id))
	}

	ptr := &value
	e.components[ty] = ptr
	e.order = append(e.order, ty)

	return ptr
}

// GetOrAttach returns the entities component of type C, attaching a zero
// value first if the entity does not have one yet.
func GetOrAttach[C any](r *Registry, id EntityId) *C {
	e := r.mustEntity(id)

	ty := reflect.TypeFor[C]()
	if existing, ok := e.components[ty]; ok {
		return existing.(*C)
	}

	ptr := new(C)
	e.components[ty] = ptr
	e.order = append(e.order, ty)

	return ptr
}

// Lookup returns the entities component of type C, or false if either the
// entity or the component does not exist.
func Lookup[C any](r *Registry, id EntityId) (*C, bool) {
	e, ok := r.entities[id]
	if !ok {
		return nil, false
	}

	ptr, ok := e.components[reflect.TypeFor[C]()]
	if !ok {
		return nil, false
	}

	return ptr.(*C), true
}

// Has returns true iff the entity exists and has a component of type C.
func Has[C any](r *Registry, id EntityId) bool {
	_, ok := Lookup[C](r, id)
	return ok
}

// Detach removes the component of type C from the entity, running its
// Teardown hook if it has one. It returns false if there was nothing to
// detach.
func Detach[C any](r *Registry, id EntityId) bool {
	e, ok := r.entities[id]
	if !ok {
		return false
	}

	ty := reflect.TypeFor[C]()
	ptr, ok := e.components[ty]
	if !ok {
		return false
	}

	delete(e.components, ty)

	for idx, other := range e.order {
		if other == ty {
			e.order = append(e.order[:idx], e.order[idx+1:]...)
			break
		}
	}

	if td, ok := ptr.(TeardownComponent); ok {
		td.Teardown(r, id)
	}

	return true
}
