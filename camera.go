package ui

import (
	"math"

	"github.com/Yeicor/canvas-ui/internal"
	"github.com/fogleman/fauxgl"
)

const (
	camNear = 0.05
	camFar  = 1000.0
)

var fauxglUp = fauxgl.Vector{Y: 1}

func newViewState() *internal.ViewState {
	return &internal.ViewState{
		CamCenter: fauxgl.Vector{Y: 0.5},
		CamPitch:  math.Pi / 8, // Look from a bit above
		CamYaw:    0,
		CamDist:   4,
		ShowHUD:   true,
	}
}

// camEye is the position of an orbit camera. Y is UP and yaw 0 looks towards Z-.
func camEye(s *internal.ViewState) fauxgl.Vector {
	return s.CamCenter.Add(fauxgl.Vector{
		X: s.CamDist * math.Cos(s.CamPitch) * math.Sin(s.CamYaw),
		Y: s.CamDist * math.Sin(s.CamPitch),
		Z: s.CamDist * math.Cos(s.CamPitch) * math.Cos(s.CamYaw),
	})
}

// camMatrix is the world to clip space matrix for the given aspect ratio and vertical FOV (degrees).
func camMatrix(s *internal.ViewState, fovY, aspect float64) fauxgl.Matrix {
	return fauxgl.LookAt(camEye(s), s.CamCenter, fauxglUp).Perspective(fovY, aspect, camNear, camFar)
}

// fitCam centers the camera on the given geometries, keeping the current angles.
func fitCam(s *internal.ViewState, geoms []*Geometry) {
	if len(geoms) == 0 {
		return
	}
	box := fauxgl.EmptyBox
	for _, g := range geoms {
		for _, v := range append(g.Front[:], g.Frame[0][:]...) {
			box = box.Extend(fauxgl.Box{Min: v.Position, Max: v.Position})
		}
	}
	s.CamCenter = box.Center()
	s.CamDist = math.Max(1, box.Size().Length()*1.2)
}
