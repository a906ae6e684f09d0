package geometry

import "gopkg.in/yaml.v3"

// ShapeDef is the YAML definition for a primitive's reference extents (the
// size of the un-normalized mesh the viewer generates for that shape).
type ShapeDef struct {
	Type string     `yaml:"type"`
	Size [3]float32 `yaml:"size"`
}

// defaultShapeDefs mirrors the meshes the viewer generates: box 1.8 per side,
// cylinder radius 1 height 2.5, sphere radius 1.3, plane 3x3 on XZ.
const defaultShapeDefs = `
- type: box
  size: [1.8, 1.8, 1.8]
- type: cylinder
  size: [2.0, 2.5, 2.0]
- type: sphere
  size: [2.6, 2.6, 2.6]
- type: plane
  size: [3.0, 0.0, 3.0]
`

var shapeExtents map[Shape][3]float32

func init() {
	var defs []ShapeDef
	if err := yaml.Unmarshal([]byte(defaultShapeDefs), &defs); err != nil {
		panic("geometry: bad shape defs: " + err.Error())
	}
	shapeExtents = make(map[Shape][3]float32, len(defs))
	for _, d := range defs {
		shape, err := ParseShape(d.Type)
		if err != nil {
			panic("geometry: " + err.Error())
		}
		shapeExtents[shape] = d.Size
	}
}

// referenceExtents returns the un-normalized size of a primitive shape.
// Custom (and anything unknown) gets the box extents so callers always have a
// usable bounding box.
func referenceExtents(s Shape) [3]float32 {
	if size, ok := shapeExtents[s]; ok {
		return size
	}
	return shapeExtents[ShapeBox]
}
