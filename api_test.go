package ui

import (
	"image"
	"math"
	"testing"

	"github.com/fogleman/fauxgl"
)

func TestViewerOptions(t *testing.T) {
	lit := func(fauxgl.Vector) float64 { return 0.3 }
	frame := image.NewRGBA(image.Rect(0, 0, 4, 4))
	v := NewViewer(NewMemoryFeed(),
		OptCam(fauxgl.V(1, 2, 3), 0.1, 0.2, 5),
		OptCamFov(45),
		OptLight(lit),
		OptFrameTexture(frame),
		OptAllocator(ImageAllocator),
		OptDumpDir("dumps"),
		OptHUD(false))
	if v.implState.CamCenter != fauxgl.V(1, 2, 3) || v.implState.CamDist != 5 || v.camDefault == nil || !v.camFitted {
		t.Errorf("camera = %+v", v.implState)
	}
	if v.camFOV != 45 || v.dumpDir != "dumps" || v.implState.ShowHUD || v.frameImg != frame || v.rasterizer.Frame != frame {
		t.Error("options not applied")
	}
	if v.pipeline.Emitter.Light(fauxgl.Vector{}) != 0.3 {
		t.Error("light not applied")
	}
	if _, err := v.Cache().GetOrUpdate("a", 1, 1, solidBlob("a", 1, 1, 1, 0)); err != nil {
		t.Fatal(err)
	}
	v.Close()
	v.Close()
	if v.Cache().Len() != 0 {
		t.Error("Close did not release the canvases")
	}
}

func TestCamera(t *testing.T) {
	s := newViewState()
	s.CamCenter, s.CamPitch, s.CamDist = fauxgl.Vector{}, 0, 3
	for _, tc := range []struct {
		yaw  float64
		want fauxgl.Vector
	}{{0, fauxgl.V(0, 0, 3)}, {math.Pi / 2, fauxgl.V(3, 0, 0)}, {math.Pi, fauxgl.V(0, 0, -3)}} {
		s.CamYaw = tc.yaw
		if got := camEye(s); got.Distance(tc.want) > 1e-9 {
			t.Errorf("yaw %v: eye = %v", tc.yaw, got)
		}
	}

	res := testResource(t, 32, 32)
	geoms := []*Geometry{(&Emitter{}).Emit(res, South, 0, fauxgl.V(10, 5, 0))}
	fitCam(s, geoms)
	if s.CamCenter.Distance(fauxgl.V(10, 5, 0)) > 1e-9 || s.CamDist < 1 {
		t.Errorf("fitted camera = %+v", s)
	}
}

func TestParseFacing(t *testing.T) {
	for _, f := range []Facing{South, West, North, East} {
		got, err := ParseFacing(f.String())
		if err != nil || got != f {
			t.Errorf("%v: got %v, %v", f, got, err)
		}
	}
	if _, err := ParseFacing("up"); err == nil {
		t.Error("parsed an invalid facing")
	}
}
