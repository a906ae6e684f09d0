package geometry

import "fmt"

// Shape identifies the mesh used to present a product: one of the analytic
// primitives, or a seller-uploaded custom mesh.
type Shape int

const (
	ShapeBox Shape = iota
	ShapeCylinder
	ShapeSphere
	ShapePlane
	ShapeCustom
)

// String returns the wire name of the shape ("box", "cylinder", ...).
func (s Shape) String() string {
	switch s {
	case ShapeBox:
		return "box"
	case ShapeCylinder:
		return "cylinder"
	case ShapeSphere:
		return "sphere"
	case ShapePlane:
		return "plane"
	case ShapeCustom:
		return "custom"
	default:
		return fmt.Sprintf("shape(%d)", int(s))
	}
}

// ParseShape maps a wire name to a Shape. Unknown names return an error so the
// caller can decide on a fallback (the analysis layer substitutes box).
func ParseShape(name string) (Shape, error) {
	switch name {
	case "box":
		return ShapeBox, nil
	case "cylinder":
		return ShapeCylinder, nil
	case "sphere":
		return ShapeSphere, nil
	case "plane":
		return ShapePlane, nil
	case "custom":
		return ShapeCustom, nil
	default:
		return ShapeBox, fmt.Errorf("geometry: unknown shape %q", name)
	}
}

// IsPrimitive reports whether the shape is one of the analytic primitives
// (everything except custom).
func (s Shape) IsPrimitive() bool {
	return s != ShapeCustom
}
