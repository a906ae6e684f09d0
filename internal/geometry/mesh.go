package geometry

import "github.com/chewxy/math32"

// MeshSource is the raw input to normalization: either an analytic primitive
// or an uploaded triangle mesh. Sources are immutable once constructed; the
// normalizer never writes through them.
type MeshSource interface {
	meshSource()
}

// Primitive is a mesh source with an analytically known bounding box.
type Primitive struct {
	Shape Shape
}

// CustomMesh is a triangle mesh from a seller upload. Faces index into
// Vertices; a quad in the source file is split into two faces at parse time.
type CustomMesh struct {
	Vertices [][3]float32
	Faces    [][3]int
}

func (Primitive) meshSource()  {}
func (CustomMesh) meshSource() {}

// Empty reports whether the mesh carries no geometry at all.
func (m CustomMesh) Empty() bool {
	return len(m.Vertices) == 0
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Extents returns the box size along each axis.
func (b Bounds) Extents() [3]float32 {
	return [3]float32{b.Max[0] - b.Min[0], b.Max[1] - b.Min[1], b.Max[2] - b.Min[2]}
}

// Center returns the box midpoint.
func (b Bounds) Center() [3]float32 {
	return [3]float32{
		(b.Min[0] + b.Max[0]) * 0.5,
		(b.Min[1] + b.Max[1]) * 0.5,
		(b.Min[2] + b.Max[2]) * 0.5,
	}
}

// MaxDim returns the largest of the three extents.
func (b Bounds) MaxDim() float32 {
	e := b.Extents()
	return math32.Max(e[0], math32.Max(e[1], e[2]))
}

// meshBounds scans all vertices for the AABB. A mesh with no vertices yields
// the zero Bounds (zero volume), which Normalize treats as degenerate.
func meshBounds(vertices [][3]float32) Bounds {
	if len(vertices) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: vertices[0], Max: vertices[0]}
	for _, v := range vertices[1:] {
		for i := 0; i < 3; i++ {
			b.Min[i] = math32.Min(b.Min[i], v[i])
			b.Max[i] = math32.Max(b.Max[i], v[i])
		}
	}
	return b
}

// SourceBounds returns the AABB of a mesh source before any normalization.
// Primitives use their reference extents, centered at the origin.
func SourceBounds(source MeshSource) Bounds {
	switch s := source.(type) {
	case Primitive:
		size := referenceExtents(s.Shape)
		half := [3]float32{size[0] * 0.5, size[1] * 0.5, size[2] * 0.5}
		return Bounds{
			Min: [3]float32{-half[0], -half[1], -half[2]},
			Max: [3]float32{half[0], half[1], half[2]},
		}
	case CustomMesh:
		return meshBounds(s.Vertices)
	default:
		return Bounds{}
	}
}
