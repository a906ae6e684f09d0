package graphics

import rl "github.com/gen2brain/raylib-go/raylib"

// Run opens the viewer window and drives the main loop. Each frame it calls
// update with the frame time (input, texture pickup), then clears the screen
// and calls draw. When the loop exits, unload runs before the window closes
// so GPU resources are released while the GL context still exists.
func Run(width, height int, title string, update func(dt float32), draw func(), unload func()) {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(width), int32(height), title)

	rl.SetTargetFPS(60)

	for !rl.WindowShouldClose() {
		update(rl.GetFrameTime())

		rl.BeginDrawing()
		rl.ClearBackground(rl.NewColor(0x11, 0x18, 0x27, 255))
		draw()
		rl.EndDrawing()
	}

	if unload != nil {
		unload()
	}
	rl.CloseWindow()
}
