package internal

import (
	"encoding/gob"
	"errors"
	"fmt"
	"math"
)

// ErrMalformedBlob is returned when the pixel data of a Blob can't fill the requested canvas area.
var ErrMalformedBlob = errors.New("malformed canvas blob")

// Blob is the replicated record that carries the pixels of a canvas, as sent by the simulation server.
// It has to be exported for RPC and for the on-disk feed files.
type Blob struct {
	Name          string  // Stable canvas identity (cache key)
	Version       int     // Monotonic per Name, never comparable across names
	Width, Height int     // Pixel dimensions, fixed for the lifetime of Name
	Pixels        []int32 // Row-major packed 0xAARRGGBB colors (red and blue must be swapped for display)
}

func init() {
	gob.Register(&Blob{})
}

// Area is the number of pixels the blob declares.
func (b *Blob) Area() int {
	return b.Width * b.Height
}

// SwapRedBlue exchanges the red and blue bytes of a packed color, keeping alpha and green.
func SwapRedBlue(c uint32) uint32 {
	return (c & 0xFF00FF00) | ((c >> 16) & 0xFF) | ((c & 0xFF) << 16)
}

// DecodePixels validates the blob against the width x height canvas and returns the display-ordered pixels.
// The returned slice is always exactly width*height long. Extra trailing source pixels are ignored.
func DecodePixels(b *Blob, width, height int) ([]uint32, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: nil blob", ErrMalformedBlob)
	}
	if width <= 0 || height <= 0 || height > math.MaxInt/width {
		return nil, fmt.Errorf("%w: invalid size %dx%d", ErrMalformedBlob, width, height)
	}
	area := width * height
	if len(b.Pixels) < area {
		return nil, fmt.Errorf("%w: pixels array length (%d) is smaller than canvas area (%d)",
			ErrMalformedBlob, len(b.Pixels), area)
	}
	out := make([]uint32, area)
	for i := 0; i < height; i++ {
		for j := 0; j < width; j++ {
			k := j + i*width
			out[k] = SwapRedBlue(uint32(b.Pixels[k]))
		}
	}
	return out, nil
}
