package geometry

// DefaultTargetSize is the normalized bounding-box long axis, in world units.
// The orbit camera and grid placement in the viewer assume this size.
const DefaultTargetSize = 3

// NormalizedGeometry is the renderable form of a mesh source: a uniform scale
// and a translation that put the source's bounding box at the origin with its
// longest axis equal to the requested target size. The source itself is
// referenced, never copied or mutated.
type NormalizedGeometry struct {
	Scale       float32
	Translation [3]float32
	Source      MeshSource
	// Degenerate is set when the source has a zero-volume bounding box
	// (e.g. an empty mesh). Scale is 1 and Translation zero in that case;
	// the composer substitutes a default primitive.
	Degenerate bool
}

// Normalize computes the scale and translation that fit source into a cube of
// targetSize units centered at the origin. Identical inputs always produce
// identical outputs, and a degenerate source never fails: it comes back
// flagged with scale 1. targetSize <= 0 falls back to DefaultTargetSize.
func Normalize(source MeshSource, targetSize float32) NormalizedGeometry {
	if targetSize <= 0 {
		targetSize = DefaultTargetSize
	}
	bounds := SourceBounds(source)
	maxDim := bounds.MaxDim()
	if maxDim <= 0 {
		return NormalizedGeometry{Scale: 1, Source: source, Degenerate: true}
	}
	scale := targetSize / maxDim
	// Bounding box of the scaled mesh: scaling about the origin scales the
	// center too. Translate by its negative to recenter.
	center := bounds.Center()
	return NormalizedGeometry{
		Scale:       scale,
		Translation: [3]float32{-center[0] * scale, -center[1] * scale, -center[2] * scale},
		Source:      source,
	}
}

// Baked applies the scale and translation to the source vertices, producing a
// stand-alone mesh equivalent to what the viewer draws. Only meaningful for
// custom-mesh sources; primitives return ok=false.
func (g NormalizedGeometry) Baked() (CustomMesh, bool) {
	src, ok := g.Source.(CustomMesh)
	if !ok {
		return CustomMesh{}, false
	}
	out := CustomMesh{
		Vertices: make([][3]float32, len(src.Vertices)),
		Faces:    src.Faces,
	}
	for i, v := range src.Vertices {
		out.Vertices[i] = [3]float32{
			v[0]*g.Scale + g.Translation[0],
			v[1]*g.Scale + g.Translation[1],
			v[2]*g.Scale + g.Translation[2],
		}
	}
	return out, true
}
