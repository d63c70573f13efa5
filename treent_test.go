package treent

import (
	"testing"

	"github.com/go-treent/treent/ecs"
	"github.com/stretchr/testify/require"
)

type testTransform struct {
	TreeComponent[*testTransform]

	X, Y           float64
	WorldX, WorldY float64
}

func (t *testTransform) Compose(other *testTransform) {
	t.WorldX = other.WorldX + t.X
	t.WorldY = other.WorldY + t.Y
}

type testStyle struct {
	TreeComponent[*testStyle]

	Alpha      float64
	WorldAlpha float64
}

func (s *testStyle) Compose(other *testStyle) {
	s.WorldAlpha = other.WorldAlpha * s.Alpha
}

func testShape() *Shape {
	return NewShape(
		KindOf[testTransform](),
		KindOf[testStyle](testStyle{Alpha: 1}),
	)
}

func transformOf(t *testing.T, tr *Treent) *testTransform {
	t.Helper()

	c, ok := ecs.Lookup[testTransform](tr.Registry(), tr.Entity())
	require.True(t, ok)
	return c
}

func styleOf(t *testing.T, tr *Treent) *testStyle {
	t.Helper()

	c, ok := ecs.Lookup[testStyle](tr.Registry(), tr.Entity())
	require.True(t, ok)
	return c
}

func TestNew(t *testing.T) {
	r := ecs.NewRegistry()
	root := New(r, testShape())

	require.True(t, root.Valid())
	require.True(t, root.IsRoot())
	require.Nil(t, root.Parent())
	require.True(t, r.Alive(root.Entity()))

	require.True(t, ecs.Has[testTransform](r, root.Entity()))
	require.True(t, ecs.Has[testStyle](r, root.Entity()))
	require.True(t, ecs.Has[ChildrenComponent](r, root.Entity()))
	require.False(t, ecs.Has[ParentComponent](r, root.Entity()))

	// the kinds default value is used for fresh entities
	require.Equal(t, 1.0, styleOf(t, root).Alpha)
}

func TestCreateChild(t *testing.T) {
	r := ecs.NewRegistry()
	root := New(r, testShape())
	child := root.CreateChild()

	t.Run("facade relation", func(t *testing.T) {
		require.Same(t, root, child.Parent())
		require.Equal(t, []*Treent{child}, root.Children())
		require.False(t, child.IsRoot())
	})

	t.Run("every kind agrees on the topology", func(t *testing.T) {
		parent, ok := transformOf(t, child).Parent()
		require.True(t, ok)
		require.Same(t, transformOf(t, root), parent)
		require.Equal(t, []*testTransform{transformOf(t, child)}, transformOf(t, root).Children())

		styleParent, ok := styleOf(t, child).Parent()
		require.True(t, ok)
		require.Same(t, styleOf(t, root), styleParent)
		require.Equal(t, []*testStyle{styleOf(t, child)}, styleOf(t, root).Children())
	})

	t.Run("bookkeeping records", func(t *testing.T) {
		pc, ok := ecs.Lookup[ParentComponent](r, child.Entity())
		require.True(t, ok)
		require.Equal(t, root.Entity(), pc.Parent())

		cc, ok := ecs.Lookup[ChildrenComponent](r, root.Entity())
		require.True(t, ok)
		require.Equal(t, []ecs.EntityId{child.Entity()}, cc.Children())
	})

	t.Run("descend runs across the facade tree", func(t *testing.T) {
		grandchild := child.CreateChild()

		transformOf(t, root).X = 1
		transformOf(t, child).X = 2
		transformOf(t, grandchild).X = 4

		rootTransform := transformOf(t, root)
		rootTransform.WorldX = rootTransform.X
		Descend(rootTransform)

		require.Equal(t, 3.0, transformOf(t, child).WorldX)
		require.Equal(t, 7.0, transformOf(t, grandchild).WorldX)
	})
}

func TestAppendChild(t *testing.T) {
	t.Run("takes ownership of an unowned treent", func(t *testing.T) {
		r := ecs.NewRegistry()
		root := New(r, testShape())
		free := New(r, testShape())

		root.AppendChild(free)

		require.Same(t, root, free.Parent())
		require.Equal(t, []*Treent{free}, root.Children())
	})

	t.Run("panics if the child already has a parent", func(t *testing.T) {
		r := ecs.NewRegistry()
		root := New(r, testShape())
		other := New(r, testShape())
		child := root.CreateChild()

		require.Panics(t, func() {
			other.AppendChild(child)
		})

		// nothing moved
		require.Same(t, root, child.Parent())
		require.Empty(t, other.Children())
	})

	t.Run("panics on a cycle", func(t *testing.T) {
		r := ecs.NewRegistry()
		root := New(r, testShape())
		child := root.CreateChild()
		grandchild := child.CreateChild()

		detached := root.RemoveChild(child)
		require.Same(t, child, detached)

		require.Panics(t, func() {
			grandchild.AppendChild(child)
		})
	})

	t.Run("panics across registries", func(t *testing.T) {
		root := New(ecs.NewRegistry(), testShape())
		foreign := New(ecs.NewRegistry(), testShape())

		require.Panics(t, func() {
			root.AppendChild(foreign)
		})
	})
}

func TestRemoveChild(t *testing.T) {
	t.Run("transfers ownership to the caller", func(t *testing.T) {
		r := ecs.NewRegistry()
		root := New(r, testShape())
		child := root.CreateChild()
		grandchild := child.CreateChild()

		removed := root.RemoveChild(child)
		require.Same(t, child, removed)

		require.True(t, child.Valid())
		require.True(t, child.IsRoot())
		require.Empty(t, root.Children())

		// all kinds detached together
		require.True(t, transformOf(t, child).IsRoot())
		require.True(t, styleOf(t, child).IsRoot())
		require.Empty(t, transformOf(t, root).Children())

		// bookkeeping cleared
		require.False(t, ecs.Has[ParentComponent](r, child.Entity()))
		cc, _ := ecs.Lookup[ChildrenComponent](r, root.Entity())
		require.Empty(t, cc.Children())

		// the removed subtree is intact
		require.Same(t, child, grandchild.Parent())
		require.False(t, transformOf(t, grandchild).IsRoot())
	})

	t.Run("remove then append restores the attachment", func(t *testing.T) {
		r := ecs.NewRegistry()
		root := New(r, testShape())
		child := root.CreateChild()

		root.AppendChild(root.RemoveChild(child))

		require.Same(t, root, child.Parent())
		require.Equal(t, []*Treent{child}, root.Children())

		parent, ok := transformOf(t, child).Parent()
		require.True(t, ok)
		require.Same(t, transformOf(t, root), parent)

		pc, ok := ecs.Lookup[ParentComponent](r, child.Entity())
		require.True(t, ok)
		require.Equal(t, root.Entity(), pc.Parent())
	})

	t.Run("removing a non-child is reported and skipped", func(t *testing.T) {
		r := ecs.NewRegistry()
		root := New(r, testShape())
		child := root.CreateChild()
		stranger := New(r, testShape())

		require.Nil(t, root.RemoveChild(stranger))
		require.Nil(t, root.RemoveChild(nil))
		require.Equal(t, []*Treent{child}, root.Children())
	})
}

func TestDestroy(t *testing.T) {
	t.Run("destroys the whole subtree", func(t *testing.T) {
		r := ecs.NewRegistry()
		root := New(r, testShape())
		child := root.CreateChild()
		grandchild := child.CreateChild()

		root.Destroy()

		require.False(t, root.Valid())
		require.False(t, child.Valid())
		require.False(t, grandchild.Valid())
		require.Equal(t, 0, r.Len())
	})

	t.Run("destroying a child leaves its siblings alone", func(t *testing.T) {
		r := ecs.NewRegistry()
		root := New(r, testShape())
		doomed := root.CreateChild()
		sibling := root.CreateChild()

		doomedEntity := doomed.Entity()
		doomed.Destroy()

		require.False(t, doomed.Valid())
		require.False(t, r.Alive(doomedEntity))

		require.True(t, root.Valid())
		require.True(t, sibling.Valid())
		require.Equal(t, []*Treent{sibling}, root.Children())
		require.Equal(t, []*testTransform{transformOf(t, sibling)}, transformOf(t, root).Children())
	})

	t.Run("detach then destroy is safe", func(t *testing.T) {
		r := ecs.NewRegistry()
		root := New(r, testShape())
		child := root.CreateChild()
		keeper := root.CreateChild()

		removed := root.RemoveChild(child)
		removed.Destroy()

		require.True(t, root.Valid())
		require.Equal(t, []*Treent{keeper}, root.Children())
		require.True(t, r.Alive(keeper.Entity()))
	})

	t.Run("operations on a destroyed treent panic", func(t *testing.T) {
		r := ecs.NewRegistry()
		root := New(r, testShape())
		root.Destroy()

		require.Panics(t, func() { root.CreateChild() })
		require.Panics(t, func() { root.AppendChild(New(r, testShape())) })
		require.Panics(t, func() { root.RemoveChild(nil) })
		require.Panics(t, func() { root.DestroyChildren() })
		require.Panics(t, func() { root.Destroy() })
	})
}

func TestDestroyChildren(t *testing.T) {
	r := ecs.NewRegistry()
	root := New(r, testShape())

	first := root.CreateChild()
	second := root.CreateChild()
	grandchild := first.CreateChild()

	root.DestroyChildren()

	require.True(t, root.Valid())
	require.Empty(t, root.Children())
	require.Empty(t, transformOf(t, root).Children())

	cc, _ := ecs.Lookup[ChildrenComponent](r, root.Entity())
	require.Empty(t, cc.Children())

	require.False(t, first.Valid())
	require.False(t, second.Valid())
	require.False(t, grandchild.Valid())
	require.Equal(t, 1, r.Len())
}

func TestOutOfBandEntityDestruction(t *testing.T) {
	t.Run("facade follows the entity", func(t *testing.T) {
		r := ecs.NewRegistry()
		root := New(r, testShape())
		child := root.CreateChild()
		grandchild := child.CreateChild()

		// destroy the backing entity straight through the registry,
		// bypassing the facade
		r.Destroy(child.Entity())

		require.False(t, child.Valid())
		require.False(t, grandchild.Valid())

		require.True(t, root.Valid())
		require.Empty(t, root.Children())
		require.Empty(t, transformOf(t, root).Children())

		cc, _ := ecs.Lookup[ChildrenComponent](r, root.Entity())
		require.Empty(t, cc.Children())
	})

	t.Run("invalidation is idempotent", func(t *testing.T) {
		r := ecs.NewRegistry()
		root := New(r, testShape())
		child := root.CreateChild()

		r.Destroy(child.Entity())
		require.False(t, child.Valid())

		// a second notification must not re-enter the removal
		require.NotPanics(t, func() {
			child.handleEntityInvalidated()
		})
		require.True(t, root.Valid())
	})
}

func TestDetachEntity(t *testing.T) {
	t.Run("through the facade", func(t *testing.T) {
		r := ecs.NewRegistry()
		shape := testShape()
		root := New(r, shape)
		child := root.CreateChild()

		shape.DetachEntity(r, child.Entity())

		require.True(t, child.Valid())
		require.True(t, child.IsRoot())
		require.Empty(t, root.Children())
		require.False(t, ecs.Has[ParentComponent](r, child.Entity()))
	})

	t.Run("raw entities without a facade", func(t *testing.T) {
		r := ecs.NewRegistry()
		shape := testShape()

		parent := r.Create()
		child := r.Create()
		for _, kind := range shape.Kinds() {
			kind.attach(r, parent)
			kind.attach(r, child)
			kind.link(r, child, parent)
		}

		pc := ecs.GetOrAttach[ParentComponent](r, child)
		pc.parent = parent
		cc := ecs.GetOrAttach[ChildrenComponent](r, parent)
		cc.addChild(child)

		shape.DetachEntity(r, child)

		require.False(t, ecs.Has[ParentComponent](r, child))
		require.Empty(t, cc.Children())

		node, _ := ecs.Lookup[testTransform](r, child)
		require.True(t, node.IsRoot())

		// detaching an entity that is not attached anywhere is a no-op
		require.NotPanics(t, func() {
			shape.DetachEntity(r, child)
		})
	})

	t.Run("safe destroy", func(t *testing.T) {
		r := ecs.NewRegistry()
		shape := testShape()
		root := New(r, shape)
		child := root.CreateChild()

		shape.SafeDestroy(r, child.Entity())

		require.False(t, r.Alive(child.Entity()) || child.Valid())
		require.True(t, root.Valid())
		require.Empty(t, root.Children())
	})
}

func TestVisit(t *testing.T) {
	r := ecs.NewRegistry()
	root := New(r, testShape())
	a := root.CreateChild()
	b := root.CreateChild()
	aa := a.CreateChild()

	var visited []ecs.EntityId
	root.Visit(func(t *Treent) {
		visited = append(visited, t.Entity())
	})

	require.Equal(t, []ecs.EntityId{
		root.Entity(), a.Entity(), aa.Entity(), b.Entity(),
	}, visited)
}
