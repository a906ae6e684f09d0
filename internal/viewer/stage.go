package viewer

import rl "github.com/gen2brain/raylib-go/raylib"

// Stage grid: sits just under the normalized model, with a brighter line
// every sectionStep cells.
const (
	gridY           = -1.5
	gridExtent      = 12
	gridMinorStep   = 1
	gridSectionStep = 3
	gridMinorAlpha  = 50
	gridMajorAlpha  = 120
)

// drawStageGrid draws the XZ grid the product floats above. Reuses start/end
// vectors to avoid per-frame allocations in the hot loop.
func drawStageGrid() {
	minor := rl.NewColor(0x2f, 0x2f, 0x2f, gridMinorAlpha)
	major := rl.NewColor(0x4f, 0x4f, 0x4f, gridMajorAlpha)

	var start, end rl.Vector3
	for x := -gridExtent; x <= gridExtent; x += gridMinorStep {
		c := major
		if x%gridSectionStep != 0 {
			c = minor
		}
		start.X, start.Y, start.Z = float32(x), gridY, float32(-gridExtent)
		end.X, end.Y, end.Z = float32(x), gridY, float32(gridExtent)
		rl.DrawLine3D(start, end, c)
	}
	for z := -gridExtent; z <= gridExtent; z += gridMinorStep {
		c := major
		if z%gridSectionStep != 0 {
			c = minor
		}
		start.X, start.Y, start.Z = float32(-gridExtent), gridY, float32(z)
		end.X, end.Y, end.Z = float32(gridExtent), gridY, float32(z)
		rl.DrawLine3D(start, end, c)
	}
}
