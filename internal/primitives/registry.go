// Package primitives generates and caches the GPU meshes and materials for
// the analytic product shapes. Meshes are created lazily on first draw so GPU
// resources are allocated after the window/OpenGL context exists.
package primitives

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"product-studio/internal/geometry"
)

// cached holds mesh and materials for one shape. flatMtl is used when no
// texture resolved (flat fallback color); texturedMtl when an albedo texture
// is available.
type cached struct {
	mesh        rl.Mesh
	flatMtl     rl.Material
	texturedMtl rl.Material
	// centerOffset shifts the mesh in model space before scaling so the
	// draw position is the shape's center (raylib cylinders have their
	// base at Y=0).
	centerOffset [3]float32
}

// Registry maps shapes to cached mesh+material. It also carries the per-frame
// view parameters needed by the lit shaders.
type Registry struct {
	cache    map[geometry.Shape]cached
	viewPos  [3]float32
	lightDir [3]float32
}

// NewRegistry returns an empty registry. Meshes are created on first Draw.
func NewRegistry() *Registry {
	return &Registry{
		cache:    make(map[geometry.Shape]cached),
		lightDir: [3]float32{0.5, 1, 0.5},
	}
}

// SetView sets camera position and direction-to-light for this frame. Call
// once per frame before drawing so the lit shaders shade correctly.
func (r *Registry) SetView(viewPos, lightDir [3]float32) {
	r.viewPos = viewPos
	r.lightDir = lightDir
}

// Mesh resolution for the curved primitives.
const (
	sphereRings    = 32
	sphereSlices   = 32
	cylinderSlices = 32
)

// ensure creates the mesh and materials for a shape if not yet cached. The
// mesh dimensions match the geometry package's reference extents, so a
// normalized scale factor applied at draw time yields the target world size.
func (r *Registry) ensure(shape geometry.Shape) {
	if _, ok := r.cache[shape]; ok {
		return
	}
	var mesh rl.Mesh
	var offset [3]float32
	switch shape {
	case geometry.ShapeCylinder:
		// Raylib cylinder: base at Y=0, top at Y=height.
		mesh = rl.GenMeshCylinder(1, 2.5, cylinderSlices)
		offset = [3]float32{0, -1.25, 0}
	case geometry.ShapeSphere:
		mesh = rl.GenMeshSphere(1.3, sphereRings, sphereSlices)
	case geometry.ShapePlane:
		mesh = rl.GenMeshPlane(3, 3, 1, 1)
	default:
		mesh = rl.GenMeshCube(1.8, 1.8, 1.8)
	}

	flatMtl := rl.LoadMaterialDefault()
	if albedo := flatMtl.GetMap(rl.MapAlbedo); albedo != nil {
		albedo.Color = rl.NewColor(0xe2, 0xe8, 0xf0, 255)
	}
	if s := loadLitShader(); rl.IsShaderValid(s) {
		flatMtl.Shader = s
	}
	texturedMtl := rl.LoadMaterialDefault()
	if albedo := texturedMtl.GetMap(rl.MapAlbedo); albedo != nil {
		albedo.Color = rl.White
	}
	if s := loadLitTexturedShader(); rl.IsShaderValid(s) {
		texturedMtl.Shader = s
	}
	r.cache[shape] = cached{mesh: mesh, flatMtl: flatMtl, texturedMtl: texturedMtl, centerOffset: offset}
}

// SetFlatColor overrides the albedo tint used when drawing without a texture.
func (r *Registry) SetFlatColor(shape geometry.Shape, c rl.Color) {
	r.ensure(shape)
	entry := r.cache[shape]
	if albedo := entry.flatMtl.GetMap(rl.MapAlbedo); albedo != nil {
		albedo.Color = c
	}
}

// Draw draws one instance of shape centered at position with a uniform scale.
// Pass an invalid texture (zero ID) to draw with the flat fallback material.
// Must be called between BeginMode3D and EndMode3D, after SetView.
func (r *Registry) Draw(shape geometry.Shape, position [3]float32, scale float32, tex rl.Texture2D) {
	if shape == geometry.ShapeCustom {
		// Custom meshes are drawn by the viewer from their triangle list.
		return
	}
	r.ensure(shape)
	c := r.cache[shape]

	mtl := c.flatMtl
	if rl.IsTextureValid(tex) {
		rl.SetMaterialTexture(&c.texturedMtl, rl.MapAlbedo, tex)
		mtl = c.texturedMtl
	}
	r.setLitUniforms(mtl.Shader)

	if scale == 0 {
		scale = 1
	}
	scaleM := rl.MatrixScale(scale, scale, scale)
	transM := rl.MatrixTranslate(position[0], position[1], position[2])
	transform := rl.MatrixMultiply(scaleM, transM)
	if c.centerOffset != ([3]float32{}) {
		offsetM := rl.MatrixTranslate(c.centerOffset[0], c.centerOffset[1], c.centerOffset[2])
		// Order: center the mesh, then scale, then move to position.
		transform = rl.MatrixMultiply(rl.MatrixMultiply(offsetM, scaleM), transM)
	}
	rl.DrawMesh(c.mesh, mtl, transform)
}
