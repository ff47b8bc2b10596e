package ui

import (
	"image"
	"image/color"
	"math"

	"github.com/fogleman/fauxgl"
)

// Rasterizer renders canvas geometry on the CPU (no GPU or window needed), for snapshots and tests.
type Rasterizer struct {
	Background color.Color
	Frame      *image.RGBA // Texture of the back and sides (defaults to the planks texture)

	lastContext *fauxgl.Context
}

// Render draws the geometries as seen by the camera matrix (world to clip space) into a width x height image.
func (ra *Rasterizer) Render(geoms []*Geometry, camera fauxgl.Matrix, width, height int) *image.NRGBA {
	if ra.lastContext == nil || ra.lastContext.Width != width || ra.lastContext.Height != height {
		// Rebuild rendering context only when needed
		ra.lastContext = fauxgl.NewContext(width, height)
	} else {
		ra.lastContext.ClearDepthBuffer()
	}
	bg := ra.Background
	if bg == nil {
		bg = color.Transparent
	}
	ra.lastContext.ClearColorBufferWith(fauxgl.MakeColor(bg))
	ra.lastContext.Cull = fauxgl.CullNone // Every face is visible from both sides
	frame := ra.Frame
	if frame == nil {
		frame = defaultFrameTexture()
	}
	for _, g := range geoms {
		ra.lastContext.Shader = &texturedShader{Matrix: camera, Texture: g.Canvas.Image(), Light: g.Light}
		ra.lastContext.DrawMesh(g.FrontMesh())
		ra.lastContext.Shader = &texturedShader{Matrix: camera, Texture: frame, Light: g.Light}
		ra.lastContext.DrawMesh(g.FrameMesh())
	}
	return ra.lastContext.Image().(*image.NRGBA)
}

// DepthBuffer of the last render (math.MaxFloat64 where nothing was drawn).
func (ra *Rasterizer) DepthBuffer() []float64 {
	if ra.lastContext == nil {
		return nil
	}
	return ra.lastContext.DepthBuffer
}

// texturedShader samples the texture with nearest filtering (v=0 is the top row) and applies a flat light.
type texturedShader struct {
	Matrix  fauxgl.Matrix
	Texture *image.RGBA
	Light   float64
}

func (shader *texturedShader) Vertex(v fauxgl.Vertex) fauxgl.Vertex {
	v.Output = shader.Matrix.MulPositionW(v.Position)
	return v
}

func (shader *texturedShader) Fragment(v fauxgl.Vertex) fauxgl.Color {
	b := shader.Texture.Rect
	x := b.Min.X + clampInt(int(math.Floor(v.Texture.X*float64(b.Dx()))), 0, b.Dx()-1)
	y := b.Min.Y + clampInt(int(math.Floor(v.Texture.Y*float64(b.Dy()))), 0, b.Dy()-1)
	c := fauxgl.MakeColor(shader.Texture.RGBAAt(x, y))
	return fauxgl.Color{
		R: c.R * v.Color.R * shader.Light,
		G: c.G * v.Color.G * shader.Light,
		B: c.B * v.Color.B * shader.Light,
		A: c.A * v.Color.A,
	}
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
