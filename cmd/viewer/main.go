// Interactive viewer for the lattice-Boltzmann fluid simulation.
//
// Usage: go run ./cmd/viewer [-config path/to/config.yaml]
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/lbmsim/config"
	"github.com/pthm-cable/lbmsim/engine"
)

// viewMode selects which field the viewer colors the grid by.
type viewMode int

const (
	viewSpeed viewMode = iota
	viewDensity
	viewDye
	viewTemperature
	viewCurl
)

// brushMode selects what a mouse drag injects.
type brushMode int

const (
	brushForce brushMode = iota
	brushDye
	brushTemperature
	brushObstacle
	brushVortex
)

const panelWidth = 220

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	eng := cfg.NewEngine()
	defer eng.Close()

	gw, gh := eng.Width(), eng.Height()
	winW := cfg.Screen.WindowWidth
	winH := cfg.Screen.WindowHeight

	rl.InitWindow(int32(winW), int32(winH), "Lattice-Boltzmann Viewer")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	img := rl.GenImageColor(gw, gh, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)

	pixels := make([]color.RGBA, gw*gh)

	mode := viewSpeed
	brush := brushForce
	brushRadius := float32(6)
	brushStrength := float32(0.05)
	stepsPerFrame := int32(cfg.Screen.StepsPerFrame)
	paused := false

	viewportW := winW - panelWidth
	scaleX := float32(viewportW) / float32(gw)
	scaleY := float32(winH) / float32(gh)

	for !rl.WindowShouldClose() {
		if rl.IsKeyPressed(rl.KeySpace) {
			paused = !paused
		}
		if rl.IsKeyPressed(rl.KeyR) {
			eng.Reset()
		}
		for k, m := range map[int32]viewMode{
			rl.KeyOne: viewSpeed, rl.KeyTwo: viewDensity, rl.KeyThree: viewDye,
			rl.KeyFour: viewTemperature, rl.KeyFive: viewCurl,
		} {
			if rl.IsKeyPressed(k) {
				mode = m
			}
		}

		mouseX, mouseY := rl.GetMouseX(), rl.GetMouseY()
		inViewport := mouseX >= 0 && mouseX < int32(viewportW) && mouseY >= 0 && mouseY < int32(winH)
		if inViewport && (rl.IsMouseButtonDown(rl.MouseButtonLeft) || rl.IsMouseButtonDown(rl.MouseButtonRight)) {
			gx := float32(mouseX) / scaleX
			gy := float32(mouseY) / scaleY
			dx, dy := rl.GetMouseDelta()
			remove := rl.IsMouseButtonDown(rl.MouseButtonRight)
			applyBrush(eng, brush, gx, gy, dx, dy, brushRadius, brushStrength, remove)
		}

		if !paused {
			eng.Step(int(stepsPerFrame))
		}

		colorizeField(eng, mode, pixels)
		rl.UpdateTexture(texture, pixels)

		rl.BeginDrawing()
		rl.ClearBackground(rl.DarkGray)

		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: float32(gw), Height: float32(gh)},
			rl.Rectangle{X: 0, Y: 0, Width: float32(viewportW), Height: float32(winH)},
			rl.Vector2{X: 0, Y: 0}, 0, rl.White,
		)

		drawPanel(&mode, &brush, &brushRadius, &brushStrength, &stepsPerFrame, &paused, viewportW, winH, eng)

		rl.EndDrawing()
	}
}

func applyBrush(eng *engine.Engine, brush brushMode, x, y, dx, dy, radius, strength float32, remove bool) {
	switch brush {
	case brushForce:
		eng.ApplyGenericBrush(x, y, dx*strength, dy*strength, radius, 0, 1, engine.ShapeEllipse, engine.FalloffSmoothstep, 0.5, 0, 0)
	case brushDye:
		eng.ApplyGenericBrush(x, y, 0, 0, radius, 0, 1, engine.ShapeEllipse, engine.FalloffSmoothstep, 0.5, strength, 0)
	case brushTemperature:
		eng.ApplyGenericBrush(x, y, 0, 0, radius, 0, 1, engine.ShapeEllipse, engine.FalloffSmoothstep, 0.5, 0, strength)
	case brushObstacle:
		eng.AddObstacle(x, y, radius, 0, 1, engine.ShapeEllipse, remove)
	case brushVortex:
		sign := float32(1)
		if remove {
			sign = -1
		}
		eng.ApplyDimensionalBrush(x, y, radius, 0, 1, engine.ShapeEllipse, engine.DimVortex, sign*strength*20, engine.FalloffSmoothstep, 0.5)
	}
}

func colorizeField(eng *engine.Engine, mode viewMode, pixels []color.RGBA) {
	barriers := eng.ViewBarriers()
	switch mode {
	case viewSpeed:
		ux, uy := eng.ViewVelocityX(), eng.ViewVelocityY()
		for i := range pixels {
			if barriers[i] != 0 {
				pixels[i] = color.RGBA{R: 40, G: 40, B: 40, A: 255}
				continue
			}
			s := ux[i]*ux[i] + uy[i]*uy[i]
			pixels[i] = heatColor(float32(math.Sqrt(float64(s)))/0.2)
		}
	case viewDensity:
		rho := eng.ViewDensity()
		for i := range pixels {
			if barriers[i] != 0 {
				pixels[i] = color.RGBA{R: 40, G: 40, B: 40, A: 255}
				continue
			}
			pixels[i] = heatColor((rho[i] - 0.9) / 0.2)
		}
	case viewDye:
		dye := eng.ViewDye()
		for i := range pixels {
			if barriers[i] != 0 {
				pixels[i] = color.RGBA{R: 40, G: 40, B: 40, A: 255}
				continue
			}
			pixels[i] = heatColor(dye[i])
		}
	case viewTemperature:
		temp := eng.ViewTemperature()
		for i := range pixels {
			if barriers[i] != 0 {
				pixels[i] = color.RGBA{R: 40, G: 40, B: 40, A: 255}
				continue
			}
			pixels[i] = heatColor(temp[i]*0.5 + 0.5)
		}
	case viewCurl:
		curl := eng.ViewCurl()
		for i := range pixels {
			if barriers[i] != 0 {
				pixels[i] = color.RGBA{R: 40, G: 40, B: 40, A: 255}
				continue
			}
			pixels[i] = heatColor(curl[i]*5 + 0.5)
		}
	}
}

// heatColor maps t in roughly [0,1] to a dark-blue -> cyan -> yellow -> white
// ramp, the same gradient shape the teacher's potential-field preview used.
func heatColor(t float32) color.RGBA {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	var r, g, b uint8
	switch {
	case t < 0.25:
		f := t / 0.25
		r, g, b = uint8(10+f*30), uint8(20+f*60), uint8(60+f*100)
	case t < 0.5:
		f := (t - 0.25) / 0.25
		r, g, b = uint8(40+f*20), uint8(80+f*120), uint8(160+f*40)
	case t < 0.75:
		f := (t - 0.5) / 0.25
		r, g, b = uint8(60+f*140), uint8(200-f*40), uint8(200-f*150)
	default:
		f := (t - 0.75) / 0.25
		r, g, b = uint8(200+f*55), uint8(160+f*95), uint8(50+f*205)
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func drawPanel(mode *viewMode, brush *brushMode, radius, strength *float32, stepsPerFrame *int32, paused *bool, panelX, winH int, eng *engine.Engine) {
	x := float32(panelX + 10)
	y := float32(10)

	rl.DrawRectangle(int32(panelX), 0, panelWidth, int32(winH), rl.Fade(rl.Black, 0.85))
	rl.DrawText("view: 1 speed 2 density 3 dye 4 temp 5 curl", int32(x), int32(y), 10, rl.LightGray)
	y += 20
	rl.DrawText(fmt.Sprintf("mode: %v", *mode), int32(x), int32(y), 14, rl.RayWhite)
	y += 25

	newRadius := gui.SliderBar(rl.Rectangle{X: x, Y: y, Width: panelWidth - 30, Height: 20}, "2", "30", *radius, 2, 30)
	rl.DrawText(fmt.Sprintf("radius %.0f", *radius), int32(x), int32(y+20), 12, rl.LightGray)
	*radius = newRadius
	y += 45

	newStrength := gui.SliderBar(rl.Rectangle{X: x, Y: y, Width: panelWidth - 30, Height: 20}, "0", "1", *strength, 0, 1)
	rl.DrawText(fmt.Sprintf("strength %.2f", *strength), int32(x), int32(y+20), 12, rl.LightGray)
	*strength = newStrength
	y += 45

	newSteps := gui.SliderBar(rl.Rectangle{X: x, Y: y, Width: panelWidth - 30, Height: 20}, "1", "8", float32(*stepsPerFrame), 1, 8)
	rl.DrawText(fmt.Sprintf("steps/frame %d", *stepsPerFrame), int32(x), int32(y+20), 12, rl.LightGray)
	*stepsPerFrame = int32(newSteps)
	y += 45

	labels := []string{"force", "dye", "temperature", "obstacle", "vortex"}
	for i, label := range labels {
		if gui.Button(rl.Rectangle{X: x, Y: y, Width: panelWidth - 30, Height: 22}, label) {
			*brush = brushMode(i)
		}
		y += 26
	}
	y += 10

	if gui.Button(rl.Rectangle{X: x, Y: y, Width: panelWidth - 30, Height: 26}, togglePauseLabel(*paused)) {
		*paused = !*paused
	}
	y += 32
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: panelWidth - 30, Height: 26}, "Reset") {
		eng.Reset()
	}

	rl.DrawText("left drag: apply  right: erase obstacle, reverse vortex", int32(x), int32(winH-20), 10, rl.Gray)
}

func togglePauseLabel(paused bool) string {
	if paused {
		return "Resume"
	}
	return "Pause"
}
