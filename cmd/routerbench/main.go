// Command routerbench renders the router against a synthetic obstacle
// field so a route can be sanity-checked visually during development. It
// is a debug aid only, not part of the core decision pipeline.
//
// Usage: go run ./cmd/routerbench
package main

import (
	"fmt"
	"math/rand"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/strategybrain/geom"
	"github.com/pthm-cable/strategybrain/router"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	fieldSize    = 640
	panelWidth   = windowWidth - fieldSize - 30
)

func main() {
	rl.InitWindow(windowWidth, windowHeight, "Router Bench")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	bypassPad := float32(3)
	popsLimit := float32(256)
	obstacleCount := 3
	seed := uint32(1)

	obstacles, src, dst := generateField(obstacleCount, seed)
	cache := router.NewCache()
	limits := router.Limits{XMinDiff: 64, YMinDiff: 64, TimeMinDiff: 64}
	hops, ok := router.Route(obstacles, geom.Rect{Left: -10, Top: -10, Right: 10, Bottom: 10}, 5, src, dst, limits, float64(bypassPad), int(popsLimit), cache)

	for !rl.WindowShouldClose() {
		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		rl.DrawRectangleLines(10, 10, fieldSize, fieldSize, rl.DarkGray)
		for _, obs := range obstacles {
			drawRect(obs.Rect, rl.Fade(rl.Red, 0.4))
		}
		drawPoint(src, rl.Blue)
		drawPoint(dst, rl.Green)

		if ok {
			prev := src
			for _, hop := range hops {
				rl.DrawLineEx(toScreen(prev), toScreen(hop), 2, rl.Black)
				drawPoint(hop, rl.Orange)
				prev = hop
			}
		} else {
			rl.DrawText("no route found within pops limit", 15, fieldSize+25, 16, rl.Maroon)
		}

		panelX := float32(fieldSize + 20)
		panelY := float32(10)
		rl.DrawText("Router Bench", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		rl.DrawText(fmt.Sprintf("Bypass pad: %.1f", bypassPad), int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newPad := gui.SliderBar(rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 20), Height: 20}, "0", "20", bypassPad, 0, 20)
		panelY += 35

		rl.DrawText(fmt.Sprintf("Pops limit: %.0f", popsLimit), int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newPops := gui.SliderBar(rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 20), Height: 20}, "8", "512", popsLimit, 8, 512)
		panelY += 45

		regenerate := gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 150, Height: 30}, "New Obstacle Field")
		panelY += 40
		rl.DrawText(fmt.Sprintf("Hops: %d  Success: %v", len(hops), ok), int32(panelX), int32(panelY), 14, rl.DarkGray)

		if newPad != bypassPad || newPops != popsLimit || regenerate {
			bypassPad = newPad
			popsLimit = newPops
			if regenerate {
				seed++
				obstacles, src, dst = generateField(obstacleCount, seed)
			}
			hops, ok = router.Route(obstacles, geom.Rect{Left: -10, Top: -10, Right: 10, Bottom: 10}, 5, src, dst, limits, float64(bypassPad), int(popsLimit), cache)
		}

		rl.EndDrawing()
	}
}

// generateField builds a reproducible row of stationary rectangular
// obstacles between a fixed source and destination, the same shape as
// spec scenario 3 ("blocked straight line").
func generateField(count int, seed uint32) ([]router.Obstacle, geom.Point, geom.Point) {
	rng := rand.New(rand.NewSource(int64(seed)))
	src := geom.Point{X: 40, Y: fieldSize / 2}
	dst := geom.Point{X: fieldSize - 40, Y: fieldSize / 2}

	obstacles := make([]router.Obstacle, 0, count)
	step := (dst.X - src.X) / float64(count+1)
	for i := 1; i <= count; i++ {
		cx := src.X + step*float64(i)
		cy := fieldSize/2 + (rng.Float64()-0.5)*200
		obstacles = append(obstacles, router.Obstacle{
			Rect: geom.Rect{Left: cx - 20, Top: cy - 20, Right: cx + 20, Bottom: cy + 20},
		})
	}
	return obstacles, src, dst
}

func drawRect(r geom.Rect, c rl.Color) {
	tl := toScreen(geom.Point{X: r.Left, Y: r.Top})
	rl.DrawRectangle(int32(tl.X), int32(tl.Y), int32(r.Width()), int32(r.Height()), c)
}

func drawPoint(p geom.Point, c rl.Color) {
	s := toScreen(p)
	rl.DrawCircleV(s, 4, c)
}

func toScreen(p geom.Point) rl.Vector2 {
	return rl.Vector2{X: float32(p.X) + 10, Y: float32(p.Y) + 10}
}
