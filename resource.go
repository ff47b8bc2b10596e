package ui

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"

	"github.com/Yeicor/canvas-ui/internal"
)

// ErrDimensionMismatch is returned when a blob for a known canvas carries a different size than the cached one.
// Canvases are never resized in place.
var ErrDimensionMismatch = errors.New("canvas dimension mismatch")

// UpdateStatus is the result of Resource.UpdateIfNewer.
type UpdateStatus int

const (
	Unchanged UpdateStatus = iota
	Updated
)

func (s UpdateStatus) String() string {
	if s == Updated {
		return "updated"
	}
	return "unchanged"
}

// Resource is the displayable state of one canvas: a texture holding the pixels of the last applied blob version.
// It is owned by a Cache: do not keep references to it across a Cache.ClearAll.
type Resource struct {
	name          string
	width, height int
	version       int
	rejected      int // Last version that failed to apply, not retried
	tex           Texture
	pixels        []uint32    // Decoded pixels of the applied version
	mirror        *image.RGBA // What was uploaded to tex (opaque)
	released      bool
}

func newResource(alloc Allocator, width, height int, blob *Blob) (*Resource, error) {
	if err := checkBlobSize(blob, width, height); err != nil {
		return nil, err
	}
	pixels, err := internal.DecodePixels(blob, width, height)
	if err != nil { // Don't even allocate: there is nothing to show
		return nil, err
	}
	tex, err := allocate(alloc, width, height)
	if err != nil {
		return nil, err
	}
	r := &Resource{
		name:   blob.Name,
		width:  width,
		height: height,
		tex:    tex,
		mirror: image.NewRGBA(image.Rect(0, 0, width, height)),
	}
	r.apply(blob.Version, pixels)
	return r, nil
}

func allocate(alloc Allocator, width, height int) (tex Texture, err error) {
	defer func() {
		if r := recover(); r != nil {
			tex, err = nil, fmt.Errorf("%w: %v", ErrAllocationFailure, r)
		}
	}()
	tex, err = alloc(width, height)
	if err != nil {
		if !errors.Is(err, ErrAllocationFailure) {
			err = fmt.Errorf("%w: %w", ErrAllocationFailure, err)
		}
		return nil, err
	}
	if tex == nil {
		return nil, fmt.Errorf("%w: allocator returned no texture", ErrAllocationFailure)
	}
	return tex, nil
}

func checkBlobSize(blob *Blob, width, height int) error {
	if blob == nil {
		return fmt.Errorf("%w: nil blob", internal.ErrMalformedBlob)
	}
	// Zero means "not declared": the placement's size is authoritative
	if (blob.Width != 0 && blob.Width != width) || (blob.Height != 0 && blob.Height != height) {
		return fmt.Errorf("%w: canvas %q is %dx%d but blob declares %dx%d", ErrDimensionMismatch,
			blob.Name, width, height, blob.Width, blob.Height)
	}
	return nil
}

// UpdateIfNewer applies the blob only if its version is strictly greater than the applied one.
// On error the previous content and version are kept.
func (r *Resource) UpdateIfNewer(blob *Blob) (UpdateStatus, error) {
	if r.released {
		return Unchanged, fmt.Errorf("canvas %q: update after release", r.name)
	}
	if blob == nil || blob.Version <= r.version || blob.Version == r.rejected {
		return Unchanged, nil
	}
	if err := checkBlobSize(blob, r.width, r.height); err != nil {
		r.rejected = blob.Version
		return Unchanged, err
	}
	pixels, err := internal.DecodePixels(blob, r.width, r.height)
	if err != nil {
		r.rejected = blob.Version
		return Unchanged, err
	}
	r.apply(blob.Version, pixels)
	return Updated, nil
}

func (r *Resource) apply(version int, pixels []uint32) {
	pix := r.mirror.Pix
	for k, c := range pixels {
		// 0xAABBGGRR in little endian is R, G, B, A in memory
		binary.LittleEndian.PutUint32(pix[4*k:], c|0xFF000000) // Canvases are drawn solid
	}
	r.tex.WritePixels(pix)
	r.pixels = pixels
	r.version = version
}

// Release frees the texture. Calling it more than once is a no-op.
func (r *Resource) Release() {
	if r.released {
		return
	}
	r.released = true
	r.tex.Deallocate()
	r.pixels = nil
}

// Name is the canvas identity this resource was built for.
func (r *Resource) Name() string {
	return r.name
}

// Version is the version of the last successfully applied blob.
func (r *Resource) Version() int {
	return r.version
}

// Width in pixels (immutable).
func (r *Resource) Width() int {
	return r.width
}

// Height in pixels (immutable).
func (r *Resource) Height() int {
	return r.height
}

// Released reports whether Release was called.
func (r *Resource) Released() bool {
	return r.released
}

// Pixels returns a copy of the decoded pixels currently displayed (0xAABBGGRR, row-major).
func (r *Resource) Pixels() []uint32 {
	res := make([]uint32, len(r.pixels))
	copy(res, r.pixels)
	return res
}

// Image is the CPU copy of the uploaded texture content. Read-only.
func (r *Resource) Image() *image.RGBA {
	return r.mirror
}

// Texture is the backend texture. Read-only.
func (r *Resource) Texture() Texture {
	return r.tex
}

// Bytes is the size of the texture memory held by this resource.
func (r *Resource) Bytes() int {
	if r.released {
		return 0
	}
	return 4 * r.width * r.height
}
