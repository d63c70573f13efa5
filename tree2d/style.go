package tree2d

import "github.com/go-treent/treent"

// Color is a plain RGB triple in the range [0, 1].
type Color struct {
	R, G, B float64
}

// StyleComponent carries the visual state of a node. Alpha is the local
// opacity, WorldAlpha is the opacity composed from the root during a Descend.
//
// Alpha composes multiplicatively: a node at alpha 0.5 below a parent at 0.5
// renders at 0.25. The color is not composed, children keep their own.
type StyleComponent struct {
	treent.TreeComponent[*StyleComponent]

	Alpha float64
	Color Color

	WorldAlpha float64
}

func (s *StyleComponent) Compose(other *StyleComponent) {
	s.WorldAlpha = other.WorldAlpha * s.Alpha
}

// Refresh seeds the world alpha from the local one. Call on a root before
// descending.
func (s *StyleComponent) Refresh() {
	s.WorldAlpha = s.Alpha
}

// PropagateStyle recomputes the world alpha of every node below root (and of
// root itself). Safe to call any number of times.
func PropagateStyle(root *StyleComponent) {
	root.Refresh()
	treent.Descend(root)
}

// Shape2D returns the two-kind shape used by 2d scenes: a transform and a
// style on every node. The style defaults to full opacity and white.
func Shape2D() *treent.Shape {
	return treent.NewShape(
		treent.KindOf[TransformComponent](),
		treent.KindOf[StyleComponent](StyleComponent{
			Alpha: 1,
			Color: Color{R: 1, G: 1, B: 1},
		}),
	)
}
