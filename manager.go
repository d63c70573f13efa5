package treent

import (
	"log/slog"

	"github.com/go-treent/treent/ecs"
)

// Manager is the terminal owner of root Treents. Destruction requests bubble
// up a tree until they reach either an owning parent or a Manager, the
// Manager is where they stop.
type Manager struct {
	registry *ecs.Registry
	shape    *Shape
	children []*Treent
}

func NewManager(registry *ecs.Registry, shape *Shape) *Manager {
	if registry == nil || shape == nil {
		panic("treent: NewManager requires a registry and a shape")
	}

	return &Manager{
		registry: registry,
		shape:    shape,
	}
}

func (m *Manager) Registry() *ecs.Registry {
	return m.registry
}

func (m *Manager) Shape() *Shape {
	return m.shape
}

// Children returns the owned root Treents in insertion order.
// You **must not** modify the returned slice.
func (m *Manager) Children() []*Treent {
	return m.children
}

// Create creates a new root Treent owned by the manager.
func (m *Manager) Create() *Treent {
	t := New(m.registry, m.shape)
	t.owner = m
	m.children = append(m.children, t)

	return t
}

// AppendChild takes ownership of an existing, currently unowned root.
func (m *Manager) AppendChild(t *Treent) {
	if t == nil {
		panic("treent: cannot append nil child")
	}

	t.mustBeValid("Manager.AppendChild")

	if t.parent != nil {
		panic("treent: child already has a parent, remove it from its parent first")
	}

	if t.owner != nil {
		panic("treent: child is already owned by a manager")
	}

	if t.registry != m.registry {
		panic("treent: child belongs to a different registry")
	}

	t.owner = m
	m.children = append(m.children, t)
}

// ReleaseChild removes t from the manager and returns it, transferring
// ownership to the caller. Releasing a Treent the manager does not own is
// reported and returns nil.
func (m *Manager) ReleaseChild(t *Treent) *Treent {
	if t == nil || !m.removeOwned(t) {
		slog.Warn("attempt to release child not owned by manager")
		return nil
	}

	t.owner = nil

	return t
}

// DestroyChild removes t from the manager and destroys it together with its
// subtree. Destroying a Treent the manager does not own is reported and
// skipped.
func (m *Manager) DestroyChild(t *Treent) {
	if t == nil || !m.removeOwned(t) {
		slog.Warn("attempt to destroy child not owned by manager")
		return
	}

	t.owner = nil
	t.dispose()
}

// Destroy tears down every owned root and its subtree.
func (m *Manager) Destroy() {
	children := m.children
	m.children = nil

	for _, t := range children {
		t.owner = nil
		t.dispose()
	}
}

func (m *Manager) removeOwned(t *Treent) bool {
	for idx, c := range m.children {
		if c == t {
			copy(m.children[idx:], m.children[idx+1:])
			m.children[len(m.children)-1] = nil
			m.children = m.children[:len(m.children)-1]
			return true
		}
	}

	return false
}
