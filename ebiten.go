package ui

import (
	"image"
	"sort"

	"github.com/fogleman/fauxgl"
	"github.com/hajimehoshi/ebiten/v2"
)

// viewerGame hides the private ebiten implementation while behaving like a *Viewer internally
type viewerGame struct {
	*Viewer
}

func (v viewerGame) Update() error {
	if v.stopping.Load() {
		v.pipeline.EndSession()
		return ebiten.Termination
	}
	v.onUpdateInputs()
	v.frame = v.pipeline.Build(v.feed)
	if !v.camFitted && len(v.frame.Geometries) > 0 { // First time there is something to look at
		v.implStateLock.Lock()
		fitCam(v.implState, v.frame.Geometries)
		v.implStateLock.Unlock()
		v.camFitted = true
	}
	return nil
}

func (v viewerGame) Draw(screen *ebiten.Image) {
	v.drawCanvases(screen)
	v.drawUI(screen)
}

func (v viewerGame) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	v.implStateLock.Lock()
	v.screenSize = image.Point{X: outsideWidth, Y: outsideHeight}
	v.implStateLock.Unlock()
	return outsideWidth, outsideHeight // Use all available pixels, no re-scaling
}

// screenQuad is a quad ready to be drawn, with its distance to the camera for sorting
type screenQuad struct {
	quad  *Quad
	img   *ebiten.Image
	light float64
	dist  float64
}

var quadIndices = []uint16{0, 1, 2, 0, 2, 3}

// drawCanvases draws the last built frame back to front (ebiten has no depth buffer).
func (v *Viewer) drawCanvases(screen *ebiten.Image) {
	size := screen.Bounds().Size()
	if size.X == 0 || size.Y == 0 {
		return
	}
	cam, eye := v.camera(size)
	quads := make([]screenQuad, 0, 6*len(v.frame.Geometries))
	for _, g := range v.frame.Geometries {
		tex, ok := g.Canvas.Texture().(*EbitenTexture)
		if !ok || g.Canvas.Released() {
			continue
		}
		quads = append(quads, screenQuad{&g.Front, tex.Image(), g.Light, g.Front.Center().Distance(eye)})
		for i := range g.Frame {
			quads = append(quads, screenQuad{&g.Frame[i], v.frameTexture(), g.Light, g.Frame[i].Center().Distance(eye)})
		}
	}
	sort.SliceStable(quads, func(i, j int) bool { return quads[i].dist > quads[j].dist })
	vertices := make([]ebiten.Vertex, 4)
	for _, sq := range quads {
		if projectQuad(vertices, sq, cam, size) {
			screen.DrawTriangles(vertices, quadIndices, sq.img, &ebiten.DrawTrianglesOptions{})
		}
	}
}

func (v *Viewer) camera(size image.Point) (fauxgl.Matrix, fauxgl.Vector) {
	v.implStateLock.RLock()
	defer v.implStateLock.RUnlock()
	return camMatrix(v.implState, v.camFOV, float64(size.X)/float64(size.Y)), camEye(v.implState)
}

// projectQuad fills vertices with the screen space quad, returning false if it crosses the near plane.
func projectQuad(vertices []ebiten.Vertex, sq screenQuad, cam fauxgl.Matrix, size image.Point) bool {
	src := sq.img.Bounds().Size()
	for i, vert := range sq.quad {
		p := cam.MulPositionW(vert.Position)
		if p.W < camNear {
			return false
		}
		x, y := p.X/p.W, p.Y/p.W
		vertices[i] = ebiten.Vertex{
			DstX:   float32((x + 1) / 2 * float64(size.X)),
			DstY:   float32((1 - y) / 2 * float64(size.Y)),
			SrcX:   float32(vert.Texture.X * float64(src.X)),
			SrcY:   float32(vert.Texture.Y * float64(src.Y)),
			ColorR: float32(vert.Color.R * sq.light),
			ColorG: float32(vert.Color.G * sq.light),
			ColorB: float32(vert.Color.B * sq.light),
			ColorA: float32(vert.Color.A),
		}
	}
	return true
}
