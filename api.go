package ui

import (
	"image"

	"github.com/Yeicor/canvas-ui/internal"
	"github.com/fogleman/fauxgl"
)

// Blob is the replicated pixel data of a canvas (see internal.Blob).
type Blob = internal.Blob

// Entity is a placed canvas, as received from the simulation for one frame (see internal.Entity).
type Entity = internal.Entity

// Facing is the horizontal direction a canvas looks towards.
type Facing = internal.Facing

const (
	South = internal.South
	West  = internal.West
	North = internal.North
	East  = internal.East
)

// ErrMalformedBlob is returned when the pixels of a blob can't fill the canvas.
var ErrMalformedBlob = internal.ErrMalformedBlob

// ParseFacing parses "north", "south", "east" or "west".
func ParseFacing(s string) (Facing, error) {
	return internal.ParseFacing(s)
}

// DecodePixels validates a blob and returns its pixels in display order (red and blue swapped back).
func DecodePixels(b *Blob, width, height int) ([]uint32, error) {
	return internal.DecodePixels(b, width, height)
}

//-----------------------------------------------------------------------------
// CONFIGURATION
//-----------------------------------------------------------------------------

// Option configures a Viewer.
type Option func(v *Viewer)

// OptCam sets the default transform for the camera (pivot center, angles in radians and distance).
func OptCam(center fauxgl.Vector, pitch, yaw, dist float64) Option {
	return func(v *Viewer) {
		v.camDefault = &internal.ViewState{CamCenter: center, CamPitch: pitch, CamYaw: yaw, CamDist: dist}
		v.implState.CamCenter = center
		v.implState.CamPitch = pitch
		v.implState.CamYaw = yaw
		v.implState.CamDist = dist
	}
}

// OptCamFov sets the vertical Field Of View of the camera (degrees, default 70).
func OptCamFov(fov float64) Option {
	return func(v *Viewer) {
		v.camFOV = fov
	}
}

// OptLight sets how canvases are lit (sampled once per canvas at its anchor).
func OptLight(light LightFunc) Option {
	return func(v *Viewer) {
		v.pipeline.Emitter.Light = light
	}
}

// OptFrameTexture replaces the default planks texture of the back and sides of canvases.
func OptFrameTexture(img image.Image) Option {
	return func(v *Viewer) {
		v.frameImg = toRGBA(img)
	}
}

// OptAllocator changes how canvas textures are allocated (defaults to EbitenAllocator).
// WARNING: The viewer can only draw textures of type *EbitenTexture.
func OptAllocator(alloc Allocator) Option {
	return func(v *Viewer) {
		v.pipeline.Cache = NewCache(alloc)
	}
}

// OptDumpDir sets the directory where snapshots [P] and canvas dumps [D] are written (defaults to ".").
func OptDumpDir(dir string) Option {
	return func(v *Viewer) {
		v.dumpDir = dir
	}
}

// OptHUD shows or hides the statistics overlay at startup [H].
func OptHUD(show bool) Option {
	return func(v *Viewer) {
		v.implState.ShowHUD = show
	}
}
