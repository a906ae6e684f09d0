// Package viewer composes normalized geometry and resolved materials into a
// displayable scene unit and drives its continuous presentation: idle bob,
// orbit/zoom interaction, and texture pickup as loads complete.
package viewer

import (
	"context"
	"image/color"
	"strings"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/rs/zerolog"

	"product-studio/internal/catalog"
	"product-studio/internal/geometry"
	"product-studio/internal/material"
	"product-studio/internal/primitives"
)

// bobAmplitude is the idle vertical oscillation, uniform across shapes.
const bobAmplitude = 0.1

// lightDir is the fixed direction to the key light.
var lightDir = [3]float32{0.5, 1, 0.5}

// SceneUnit is one composed, displayable model: normalized geometry plus
// whatever material has resolved so far. Re-composition replaces the whole
// unit; nothing in it is patched in place.
type SceneUnit struct {
	Shape geometry.Shape
	Geom  geometry.NormalizedGeometry

	custom  geometry.CustomMesh // set only for custom shapes
	texture rl.Texture2D
	// appliedToken tracks which resolver result the GPU texture came from,
	// so a frame only re-uploads when a newer result landed.
	appliedToken uint64
}

// Composer owns the single viewer slot: current scene unit, its material
// resolver, the orbit camera, and the primitive registry.
type Composer struct {
	log      zerolog.Logger
	registry *primitives.Registry
	resolver *material.Resolver
	Camera   *OrbitCamera

	unit    *SceneUnit
	elapsed float32
	grid    bool
}

// NewComposer returns a composer with an empty slot.
func NewComposer(loader material.ImageLoader, log zerolog.Logger, autoRotate, grid bool) *Composer {
	return &Composer{
		log:      log,
		registry: primitives.NewRegistry(),
		resolver: material.NewResolver(loader, log),
		Camera:   NewOrbitCamera(autoRotate),
		grid:     grid,
	}
}

// Compose replaces the current scene unit with one built from modelData. The
// previous unit's GPU texture is discarded, the geometry is re-normalized,
// and a fresh material resolution starts for the texture reference. A custom
// shape whose mesh is missing, unparseable, or degenerate falls back to a box
// so the viewer never renders nothing.
func (v *Composer) Compose(ctx context.Context, md catalog.ModelData) {
	v.discard()

	shape := md.Shape
	var source geometry.MeshSource
	var custom geometry.CustomMesh
	if shape == geometry.ShapeCustom {
		mesh, err := geometry.ParseOBJ(strings.NewReader(md.CustomMeshRef))
		if err != nil || mesh.Empty() || len(mesh.Faces) == 0 {
			if err != nil {
				v.log.Warn().Err(err).Msg("custom mesh unusable, falling back to box")
			} else {
				v.log.Warn().Msg("custom mesh empty, falling back to box")
			}
			shape = geometry.ShapeBox
			source = geometry.Primitive{Shape: shape}
		} else {
			custom = mesh
			source = mesh
		}
	} else {
		source = geometry.Primitive{Shape: shape}
	}

	geom := geometry.Normalize(source, geometry.DefaultTargetSize)
	if geom.Degenerate {
		shape = geometry.ShapeBox
		custom = geometry.CustomMesh{}
		geom = geometry.Normalize(geometry.Primitive{Shape: shape}, geometry.DefaultTargetSize)
	}

	v.resolver.Resolve(ctx, md.TextureRef)
	v.unit = &SceneUnit{Shape: shape, Geom: geom, custom: custom}
	v.elapsed = 0
	v.log.Info().Stringer("shape", shape).Float32("scale", geom.Scale).Msg("scene recomposed")
}

// Loading reports whether a texture load is in flight, for the advisory
// overlay.
func (v *Composer) Loading() bool {
	return v.resolver.Snapshot().State == material.StateLoading
}

// Update advances presentation by dt seconds: camera interaction, idle bob
// clock, and texture pickup. It never waits on a load.
func (v *Composer) Update(dt float32) {
	v.Camera.Update(dt)
	v.elapsed += dt
	v.pickupTexture()
}

// pickupTexture uploads the latest resolved texture to the GPU, once per
// resolver result. Loading and fallback states leave the unit untextured.
func (v *Composer) pickupTexture() {
	if v.unit == nil {
		return
	}
	snap := v.resolver.Snapshot()
	if snap.Token == v.unit.appliedToken {
		return
	}
	if snap.State == material.StateLoading {
		return
	}
	if rl.IsTextureValid(v.unit.texture) {
		rl.UnloadTexture(v.unit.texture)
		v.unit.texture = rl.Texture2D{}
	}
	v.unit.appliedToken = snap.Token
	if !snap.Material.Textured() {
		return
	}
	img := rl.NewImageFromImage(snap.Material.Texture)
	v.unit.texture = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
}

// Draw renders the stage and the current unit. Call between BeginDrawing and
// EndDrawing; Draw enters and leaves 3D mode itself.
func (v *Composer) Draw() {
	cam := v.Camera.Camera()
	rl.BeginMode3D(cam)
	if v.grid {
		drawStageGrid()
	}
	if v.unit != nil {
		bob := math32.Sin(v.elapsed) * bobAmplitude
		pos := v.unit.Geom.Translation
		pos[1] += bob
		v.registry.SetView(v.Camera.Position(), lightDir)
		if v.unit.Shape == geometry.ShapeCustom {
			v.drawCustom(bob)
		} else {
			v.registry.Draw(v.unit.Shape, pos, v.unit.Geom.Scale, v.unit.texture)
		}
	}
	rl.EndMode3D()
}

// drawCustom renders the custom mesh triangle by triangle with per-face
// lambert shading. Uploaded OBJ files rarely carry usable UVs, so custom
// meshes draw with the flat material color even when a texture resolved.
func (v *Composer) drawCustom(bob float32) {
	u := v.unit
	base := material.FallbackColor
	scale := u.Geom.Scale
	tr := u.Geom.Translation
	tr[1] += bob

	rl.DisableBackfaceCulling()
	for _, f := range u.custom.Faces {
		var w [3]rl.Vector3
		for i := 0; i < 3; i++ {
			p := u.custom.Vertices[f[i]]
			w[i] = rl.NewVector3(p[0]*scale+tr[0], p[1]*scale+tr[1], p[2]*scale+tr[2])
		}
		shade := faceShade(w, base)
		rl.DrawTriangle3D(w[0], w[1], w[2], shade)
	}
	rl.EnableBackfaceCulling()
}

// faceShade computes a simple lambert term from the face normal against the
// fixed light direction and darkens the base color by it.
func faceShade(w [3]rl.Vector3, base color.NRGBA) rl.Color {
	e1 := [3]float32{w[1].X - w[0].X, w[1].Y - w[0].Y, w[1].Z - w[0].Z}
	e2 := [3]float32{w[2].X - w[0].X, w[2].Y - w[0].Y, w[2].Z - w[0].Z}
	n := [3]float32{
		e1[1]*e2[2] - e1[2]*e2[1],
		e1[2]*e2[0] - e1[0]*e2[2],
		e1[0]*e2[1] - e1[1]*e2[0],
	}
	nLen := math32.Sqrt(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])
	lLen := math32.Sqrt(lightDir[0]*lightDir[0] + lightDir[1]*lightDir[1] + lightDir[2]*lightDir[2])
	lambert := float32(0)
	if nLen > 0 {
		dot := (n[0]*lightDir[0] + n[1]*lightDir[1] + n[2]*lightDir[2]) / (nLen * lLen)
		lambert = math32.Abs(dot)
	}
	// Ambient floor keeps faces pointing away from the light visible.
	k := 0.35 + 0.65*lambert
	return rl.NewColor(uint8(float32(base.R)*k), uint8(float32(base.G)*k), uint8(float32(base.B)*k), 255)
}

// discard releases the current unit's GPU resources. Replacing rather than
// patching avoids stale-resource leaks across compositions.
func (v *Composer) discard() {
	if v.unit == nil {
		return
	}
	if rl.IsTextureValid(v.unit.texture) {
		rl.UnloadTexture(v.unit.texture)
	}
	v.unit = nil
}

// Unload releases all GPU resources. Call before closing the window.
func (v *Composer) Unload() {
	v.discard()
}
