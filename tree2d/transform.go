// Package tree2d provides ready-made composable component kinds for 2d
// scenes: a spatial transform with additive composition and a visual style
// with multiplicative alpha.
package tree2d

import (
	"github.com/go-treent/treent"
	"github.com/go-treent/treent/gm"
)

// TransformComponent places a node relative to its parent. Translation and
// Rotation are the local values; WorldTranslation and WorldRotation are
// composed from the root during a Descend and are only meaningful after one.
//
// Composition is additive: translations sum, rotations sum. Addition is
// associative, so the composed state is independent of how a chain of
// ancestors is folded.
type TransformComponent struct {
	treent.TreeComponent[*TransformComponent]

	Translation gm.Vec
	Rotation    gm.Rad

	WorldTranslation gm.Vec
	WorldRotation    gm.Rad
}

func TransformFromXY(x, y float64) TransformComponent {
	return TransformComponent{
		Translation: gm.VecOf(x, y),
	}
}

func (t *TransformComponent) Compose(other *TransformComponent) {
	t.WorldTranslation = other.WorldTranslation.Add(t.Translation)
	t.WorldRotation = other.WorldRotation + t.Rotation
}

// Refresh seeds the world values from the local ones. Call on a root before
// descending, composition never starts from stale world state.
func (t *TransformComponent) Refresh() {
	t.WorldTranslation = t.Translation
	t.WorldRotation = t.Rotation
}

// PropagateTransform recomputes the world transform of every node below root
// (and of root itself). Safe to call any number of times.
func PropagateTransform(root *TransformComponent) {
	root.Refresh()
	treent.Descend(root)
}
