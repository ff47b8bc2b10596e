package internal

import (
	"fmt"
	"strings"

	"github.com/fogleman/fauxgl"
)

// Facing is one of the four horizontal directions a canvas can hang towards.
type Facing int

const (
	South Facing = iota
	West
	North
	East
)

// Offsets returns the unit offsets along X and Z of the direction.
func (f Facing) Offsets() (x, z float64) {
	switch f {
	case South:
		return 0, 1
	case West:
		return -1, 0
	case North:
		return 0, -1
	case East:
		return 1, 0
	}
	return 0, 1
}

// Yaw is the conventional entity yaw (degrees) of a canvas hanging with this facing.
func (f Facing) Yaw() float64 {
	return float64(f&3) * 90
}

func (f Facing) String() string {
	switch f {
	case South:
		return "south"
	case West:
		return "west"
	case North:
		return "north"
	case East:
		return "east"
	}
	return fmt.Sprintf("Facing(%d)", int(f))
}

// ParseFacing is the inverse of Facing.String (case insensitive).
func ParseFacing(s string) (Facing, error) {
	for f := South; f <= East; f++ {
		if strings.EqualFold(s, f.String()) {
			return f, nil
		}
	}
	return South, fmt.Errorf("unknown facing %q", s)
}

// Entity is a placed canvas as seen by the renderer for one frame.
// It is an internal struct that has to be exported for RPC.
type Entity struct {
	ID            int           // Transient handle, may change while Blob.Name persists
	Blob          *Blob         // The latest replicated data for this canvas
	Width, Height int           // Pixel dimensions of the placed canvas
	Facing        Facing        // Which way the painted side looks
	Yaw           float64       // Entity yaw in degrees
	Anchor        fauxgl.Vector // World position of the entity
}

// ViewState is the camera state of the viewer.
type ViewState struct {
	CamCenter                 fauxgl.Vector // Orbit camera center (the point we are looking at)
	CamYaw, CamPitch, CamDist float64       // Orbit rotation angles (around CamCenter) and distance from CamCenter
	ShowHUD                   bool          // Whether to draw the statistics overlay
}
