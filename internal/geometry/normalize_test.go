package geometry

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const eps = 1e-3

func TestNormalize_PrimitiveExtents(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		shape     Shape
		wantScale float32
	}{
		{name: "box", shape: ShapeBox, wantScale: 3.0 / 1.8},
		{name: "cylinder", shape: ShapeCylinder, wantScale: 3.0 / 2.5},
		{name: "sphere", shape: ShapeSphere, wantScale: 3.0 / 2.6},
		{name: "plane", shape: ShapePlane, wantScale: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Normalize(Primitive{Shape: tt.shape}, 3)
			assert.False(t, g.Degenerate)
			assert.InDelta(t, tt.wantScale, g.Scale, eps)
			// Primitives are centered at the origin already.
			for i := 0; i < 3; i++ {
				assert.InDelta(t, 0, g.Translation[i], eps)
			}
		})
	}
}

func TestNormalize_CustomMesh(t *testing.T) {
	t.Parallel()

	// Off-center 2x4x1 box of vertices.
	mesh := CustomMesh{Vertices: [][3]float32{
		{10, 20, 30},
		{12, 24, 31},
	}}
	g := Normalize(mesh, 3)
	require.False(t, g.Degenerate)
	assert.InDelta(t, 3.0/4.0, g.Scale, eps)

	baked, ok := g.Baked()
	require.True(t, ok)
	b := meshBounds(baked.Vertices)
	assert.InDelta(t, 3, b.MaxDim(), eps)
	c := b.Center()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, 0, c[i], eps)
	}
}

func TestNormalize_Properties(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(2, 64).Draw(t, "n")
		verts := make([][3]float32, n)
		for i := range verts {
			for j := 0; j < 3; j++ {
				verts[i][j] = float32(rapid.Float64Range(-100, 100).Draw(t, "coord"))
			}
		}
		targetSize := float32(rapid.Float64Range(0.5, 10).Draw(t, "target"))

		mesh := CustomMesh{Vertices: verts}
		// Near-coincident clouds amplify float32 rounding past any useful
		// tolerance; they are covered by the degenerate tests instead.
		if meshBounds(verts).MaxDim() < 1e-2 {
			t.Skip("extent too small")
		}
		g := Normalize(mesh, targetSize)
		if g.Degenerate {
			// All points identical; nothing more to check.
			if g.Scale != 1 {
				t.Fatalf("degenerate mesh must keep scale 1, got %v", g.Scale)
			}
			return
		}

		baked, ok := g.Baked()
		if !ok {
			t.Fatal("custom source must bake")
		}
		b := meshBounds(baked.Vertices)
		tol := targetSize * 1e-3

		// Longest axis hits the target size.
		if math32.Abs(b.MaxDim()-targetSize) > tol {
			t.Fatalf("max dim %v, want %v", b.MaxDim(), targetSize)
		}
		// Centered at the origin.
		c := b.Center()
		for i := 0; i < 3; i++ {
			if math32.Abs(c[i]) > tol {
				t.Fatalf("center[%d] = %v, want 0", i, c[i])
			}
		}

		// Idempotence: normalizing the normalized mesh is the identity.
		g2 := Normalize(baked, targetSize)
		if math32.Abs(g2.Scale-1) > 1e-2 {
			t.Fatalf("renormalized scale %v, want 1", g2.Scale)
		}
		for i := 0; i < 3; i++ {
			if math32.Abs(g2.Translation[i]) > tol*10 {
				t.Fatalf("renormalized translation[%d] = %v, want 0", i, g2.Translation[i])
			}
		}
	})
}

func TestNormalize_Degenerate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		mesh CustomMesh
	}{
		{name: "empty mesh", mesh: CustomMesh{}},
		{name: "single point", mesh: CustomMesh{Vertices: [][3]float32{{5, 5, 5}}}},
		{name: "coincident points", mesh: CustomMesh{Vertices: [][3]float32{{1, 2, 3}, {1, 2, 3}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Normalize(tt.mesh, 3)
			assert.True(t, g.Degenerate)
			assert.Equal(t, float32(1), g.Scale)
			assert.Equal(t, [3]float32{}, g.Translation)
		})
	}
}

func TestNormalize_Determinism(t *testing.T) {
	t.Parallel()

	mesh := CustomMesh{Vertices: [][3]float32{{-1, 2, 7}, {4, -3, 0}, {2, 2, 2}}}
	a := Normalize(mesh, 3)
	b := Normalize(mesh, 3)
	assert.Equal(t, a.Scale, b.Scale)
	assert.Equal(t, a.Translation, b.Translation)
}

func TestNormalize_BadTargetFallsBackToDefault(t *testing.T) {
	t.Parallel()

	mesh := CustomMesh{Vertices: [][3]float32{{0, 0, 0}, {1, 1, 1}}}
	g := Normalize(mesh, 0)
	assert.InDelta(t, float32(DefaultTargetSize), g.Scale, eps)
}

func TestParseShape(t *testing.T) {
	t.Parallel()

	for _, s := range []Shape{ShapeBox, ShapeCylinder, ShapeSphere, ShapePlane, ShapeCustom} {
		got, err := ParseShape(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseShape("torus")
	assert.Error(t, err)
}
