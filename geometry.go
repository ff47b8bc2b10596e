package ui

import (
	"math"

	"github.com/fogleman/fauxgl"
)

const (
	// canvasCell is the number of canvas pixels per world unit
	canvasCell = 16.0
	// modelUnit is the size of the model space unit in world units (the prism is 2 model units deep)
	modelUnit = 1.0 / 32.0
	// frameSideWidth is the width of the frame texture strip mapped on each side face
	frameSideWidth = 1.0 / 16.0
)

// LightFunc samples the light level (0 to 1) at a world position.
type LightFunc func(pos fauxgl.Vector) float64

// Quad is a textured quad: four vertices in drawing order.
type Quad [4]fauxgl.Vertex

// Triangles splits the quad in two triangles sharing the first vertex.
func (q *Quad) Triangles() []*fauxgl.Triangle {
	return []*fauxgl.Triangle{
		{V1: q[0], V2: q[1], V3: q[2]},
		{V1: q[0], V2: q[2], V3: q[3]},
	}
}

// Center is the average of the vertex positions.
func (q *Quad) Center() fauxgl.Vector {
	return q[0].Position.Add(q[1].Position).Add(q[2].Position).Add(q[3].Position).DivScalar(4)
}

// Geometry is what is drawn for one placed canvas: the painted front and the frame (back and four sides).
type Geometry struct {
	Canvas *Resource // Texture of Front
	Front  Quad
	Frame  [5]Quad // Back, then the sides. Textured with the frame texture.
	Light  float64 // Shared by every vertex (flat lit)
}

// FrontMesh returns the painted face as a mesh.
func (g *Geometry) FrontMesh() *fauxgl.Mesh {
	return fauxgl.NewTriangleMesh(g.Front.Triangles())
}

// FrameMesh returns the back and side faces as a mesh.
func (g *Geometry) FrameMesh() *fauxgl.Mesh {
	tris := make([]*fauxgl.Triangle, 0, 2*len(g.Frame))
	for i := range g.Frame {
		tris = append(tris, g.Frame[i].Triangles()...)
	}
	return fauxgl.NewTriangleMesh(tris)
}

// Center is the center of the prism.
func (g *Geometry) Center() fauxgl.Vector {
	return g.Front.Center().Add(g.Frame[0].Center()).DivScalar(2)
}

// Emitter builds the geometry of placed canvases.
type Emitter struct {
	// Light is sampled once per canvas at its anchor (nil means fully lit)
	Light LightFunc
}

// Emit builds the framed prism of res hanging towards facing, rotated by yaw degrees around its anchor.
// The prism is width/16 x height/16 world units and its painted face looks along the facing direction.
func (e *Emitter) Emit(res *Resource, facing Facing, yaw float64, anchor fauxgl.Vector) *Geometry {
	wScale := float64(res.Width()) / canvasCell
	hScale := float64(res.Height()) / canvasCell
	xOff, zOff := facing.Offsets()

	offset := fauxgl.Vector{X: zOff * 0.5 * wScale, Y: -0.5 * hScale, Z: -xOff * 0.5 * wScale}
	m := fauxgl.Translate(anchor.Add(offset)).
		Mul(fauxgl.Rotate(fauxgl.V(0, 1, 0), fauxgl.Radians(yaw-180))). // fauxgl turns clockwise seen from Y+
		Mul(fauxgl.Scale(fauxgl.V(modelUnit, modelUnit, modelUnit)))
	normal := m.MulDirection(fauxgl.Vector{Z: -1}).Normalize() // Out of the painted face

	light := 1.0
	if e != nil && e.Light != nil {
		light = math.Max(0, math.Min(1, e.Light(anchor)))
	}
	w, h := 32*wScale, 32*hScale
	v := func(x, y, z, u, tv float64) fauxgl.Vertex {
		return fauxgl.Vertex{
			Position: m.MulPosition(fauxgl.Vector{X: x, Y: y, Z: z}),
			Normal:   normal,
			Texture:  fauxgl.Vector{X: u, Y: tv},
			Color:    fauxgl.White,
		}
	}
	s := frameSideWidth
	return &Geometry{
		Canvas: res,
		Light:  light,
		Front:  Quad{v(0, h, -1, 1, 0), v(w, h, -1, 0, 0), v(w, 0, -1, 0, 1), v(0, 0, -1, 1, 1)},
		// Back, left, top, right and bottom
		Frame: [5]Quad{
			{v(0, 0, 1, 0, 0), v(w, 0, 1, 1, 0), v(w, h, 1, 1, 1), v(0, h, 1, 0, 1)},
			{v(0, 0, 1, s, 0), v(0, h, 1, s, 1), v(0, h, -1, 0, 1), v(0, 0, -1, 0, 0)},
			{v(0, h, 1, 0, 0), v(w, h, 1, 1, 0), v(w, h, -1, 1, s), v(0, h, -1, 0, s)},
			{v(w, 0, -1, 0, 0), v(w, h, -1, 0, 1), v(w, h, 1, s, 1), v(w, 0, 1, s, 0)},
			{v(0, 0, -1, 0, 1), v(w, 0, -1, 1, 1), v(w, 0, 1, 1, 1-s), v(0, 0, 1, 0, 1-s)},
		},
	}
}
