// Package overlay draws the 2D layer on top of the 3D view: the loading
// badge while a texture resolves, the advisory line from the last generation,
// and an optional FPS counter.
package overlay

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	fontSize   = 18
	padding    = 12
	lineHeight = fontSize + 6
	// fpsUpdateInterval: only refresh the FPS text every N frames to
	// reduce allocations.
	fpsUpdateInterval = 30
)

// Overlay holds the on-screen status layer. Advisory and loading state are
// set from outside each frame; they are display-only and never gate the
// render loop.
type Overlay struct {
	ShowFPS  bool
	Advisory string
	Loading  bool

	frameCount  uint32
	lastFpsText string
}

// New returns an overlay with everything hidden.
func New() *Overlay {
	return &Overlay{}
}

// Draw renders the enabled overlay elements. Call after the 3D scene in the
// draw loop.
func (o *Overlay) Draw() {
	y := int32(padding)
	if o.Loading {
		rl.DrawText("Loading texture...", padding, y, fontSize, rl.NewColor(255, 255, 255, 200))
		y += lineHeight
	}
	if o.Advisory != "" {
		rl.DrawText(o.Advisory, padding, y, fontSize, rl.NewColor(250, 200, 80, 230))
	}

	rl.DrawText("Drag: rotate  |  Scroll: zoom", padding, int32(rl.GetScreenHeight())-lineHeight, fontSize-4, rl.NewColor(255, 255, 255, 120))

	if !o.ShowFPS {
		return
	}
	o.frameCount++
	if o.lastFpsText == "" || o.frameCount%fpsUpdateInterval == 0 {
		o.lastFpsText = fmt.Sprintf("%d FPS", rl.GetFPS())
	}
	w := rl.MeasureText(o.lastFpsText, fontSize)
	rl.DrawText(o.lastFpsText, int32(rl.GetScreenWidth())-w-padding, padding, fontSize, rl.Green)
}
