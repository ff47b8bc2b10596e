package ui

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hako/durafmt"
	"golang.org/x/image/font/basicfont"
)

var defaultFace = text.NewGoXFace(basicfont.Face7x13)

const hudLineSpacing = 14

// onUpdateInputs handles inputs
func (v *Viewer) onUpdateInputs() {
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		v.implStateLock.Lock()
		v.implState.ShowHUD = !v.implState.ShowHUD
		v.implStateLock.Unlock()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) { // Drop every texture, they are rebuilt from the feed on this frame
		v.pipeline.EndSession()
		v.setStatus("Canvas cache cleared")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		v.snapshot()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyD) {
		paths, err := DumpCanvases(v.pipeline.Cache, v.dumpDir, 8)
		if err != nil {
			v.setStatus("Dump failed: " + err.Error())
		} else {
			v.setStatus(fmt.Sprintf("Dumped %d canvases to %s", len(paths), v.dumpDir))
		}
	}
	// Zooming
	_, wheelUpDown := ebiten.Wheel()
	if wheelUpDown != 0 {
		v.implStateLock.Lock()
		scale := 1 - wheelUpDown*0.1
		scale = math.Max(1/v.zoomFactor, math.Min(v.zoomFactor, scale)) // Apply zoom limits
		v.implState.CamDist = math.Max(camNear*2, v.implState.CamDist*scale)
		v.implStateLock.Unlock()
	}
	v.onUpdateInputsRotTrans()
	// Reset camera transform
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		v.implStateLock.Lock()
		showHUD := v.implState.ShowHUD
		if v.camDefault != nil {
			*v.implState = *v.camDefault
		} else {
			*v.implState = *newViewState()
			fitCam(v.implState, v.frame.Geometries)
		}
		v.implState.ShowHUD = showHUD
		v.implStateLock.Unlock()
	}
}

func (v *Viewer) onUpdateInputsRotTrans() {
	// Keyboard rotation
	const keyStep = math.Pi / 90
	v.implStateLock.Lock()
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		v.implState.CamYaw -= keyStep
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		v.implState.CamYaw += keyStep
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		v.implState.CamPitch += keyStep
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		v.implState.CamPitch -= keyStep
	}
	v.implStateLock.Unlock()
	// Mouse rotation + translation (continuous while dragging)
	cx, cy := ebiten.CursorPosition()
	pressed := ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle) || ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	if pressed && v.dragging {
		delta := image.Point{X: cx, Y: cy}.Sub(v.dragFrom)
		v.implStateLock.Lock()
		v.applyCameraMove(delta)
		v.implStateLock.Unlock()
	}
	v.dragging = pressed
	v.dragFrom = image.Point{X: cx, Y: cy}
	v.implStateLock.Lock()
	v.clampCamera()
	v.implStateLock.Unlock()
}

// applyCameraMove must be called with implStateLock held.
func (v *Viewer) applyCameraMove(delta image.Point) {
	if ebiten.IsKeyPressed(ebiten.KeyShift) { // Translation
		// Move on the plane perpendicular to the camera's direction
		eye := camEye(v.implState)
		camDir := v.implState.CamCenter.Sub(eye).Normalize()
		planeRight := camDir.Cross(fauxglUp).Normalize()
		planeUp := planeRight.Cross(camDir).Normalize()
		v.implState.CamCenter = v.implState.CamCenter.
			Sub(planeRight.MulScalar(float64(delta.X) * v.implState.CamDist / 500)).
			Add(planeUp.MulScalar(float64(delta.Y) * v.implState.CamDist / 500))
		return
	}
	v.implState.CamYaw -= float64(delta.X) / 200 // Rotation
	v.implState.CamPitch += float64(delta.Y) / 200
}

// clampCamera must be called with implStateLock held.
func (v *Viewer) clampCamera() {
	if v.implState.CamYaw < -math.Pi {
		v.implState.CamYaw += 2 * math.Pi // Limits (wrap around)
	} else if v.implState.CamYaw > math.Pi {
		v.implState.CamYaw -= 2 * math.Pi
	}
	v.implState.CamPitch = math.Max(-(math.Pi/2 - 1e-3), math.Min(math.Pi/2-1e-3, v.implState.CamPitch))
}

// snapshot renders the current frame on the CPU and saves it as a PNG
func (v *Viewer) snapshot() {
	v.implStateLock.RLock()
	size := v.screenSize
	v.implStateLock.RUnlock()
	if size.X == 0 || size.Y == 0 {
		return
	}
	cam, _ := v.camera(size)
	img := v.rasterizer.Render(v.frame.Geometries, cam, size.X, size.Y)
	path := filepath.Join(v.dumpDir, "snapshot_"+time.Now().Format("20060102_150405")+".png")
	if err := writePNG(path, img); err != nil {
		v.setStatus("Snapshot failed: " + err.Error())
		return
	}
	v.setStatus("Snapshot saved to " + path)
}

// drawUI draws the statistics overlay and the controls
func (v *Viewer) drawUI(screen *ebiten.Image) {
	if v.status != "" && time.Now().Before(v.statusUntil) {
		drawDefaultTextWithShadow(screen, v.status, 5, 5, color.RGBA{R: 255, G: 255, A: 255})
	}
	v.implStateLock.RLock()
	showHUD := v.implState.ShowHUD
	v.implStateLock.RUnlock()
	if !showHUD {
		return
	}
	// Never stall a frame on the cache lock (it may be held by a goroutine clearing it)
	ctx, cancelFunc := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancelFunc()
	stats, ok := v.pipeline.Cache.TryStats(ctx)
	cacheMsg := "Cache busy..."
	if ok {
		cacheMsg = fmt.Sprintf("Cache: %d canvases (%s)\nCreated: %d  Updated: %d  Stale: %d\nMalformed: %d  Bad size: %d  Alloc errors: %d",
			stats.Entries, humanize.Bytes(uint64(stats.Bytes)), stats.Creates, stats.Updates, stats.Stale,
			stats.Malformed, stats.DimensionMismatch, stats.AllocationFailures)
	}
	msg := fmt.Sprintf("Canvas Viewer\n=============\nTPS: %0.2f/%d\nDrawn: %d  Skipped: %d\n%s\nSession: %s\n"+
		"Rotate cam [MouseDrag/Arrows]\nTranslate cam [Shift+MouseDrag]\nZoom cam [MouseWheel]\nReset camera [R]\n"+
		"Clear cache [C]\nSnapshot [P]\nDump canvases [D]\nToggle HUD [H]",
		ebiten.ActualTPS(), ebiten.TPS(), len(v.frame.Geometries), v.frame.Skipped, cacheMsg,
		durafmt.Parse(v.pipeline.SessionAge()).LimitFirstN(2).String())
	_, h := text.Measure(msg, defaultFace, hudLineSpacing)
	drawDefaultTextWithShadow(screen, msg, 5, screen.Bounds().Dy()-int(h)-5, color.RGBA{G: 255, A: 255})
}

func drawDefaultTextWithShadow(screen *ebiten.Image, msg string, x, y int, c color.Color) {
	op := &text.DrawOptions{}
	op.LineSpacing = hudLineSpacing
	op.GeoM.Translate(float64(x+1), float64(y+1))
	op.ColorScale.ScaleWithColor(color.Black)
	text.Draw(screen, msg, defaultFace, op)
	op.GeoM.Translate(-1, -1)
	op.ColorScale.Reset()
	op.ColorScale.ScaleWithColor(c)
	text.Draw(screen, msg, defaultFace, op)
}
