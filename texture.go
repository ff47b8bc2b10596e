package ui

import (
	"errors"
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// ErrAllocationFailure is returned when the backing image of a canvas can't be created.
var ErrAllocationFailure = errors.New("canvas texture allocation failed")

// Texture is a displayable image owned by a single canvas resource.
type Texture interface {
	// Size returns the fixed pixel dimensions of the texture
	Size() (width, height int)
	// WritePixels replaces the whole content with RGBA bytes (4 per pixel, row-major)
	WritePixels(pix []byte)
	// Deallocate frees the backing memory. The texture must not be used afterwards.
	Deallocate()
}

// Allocator creates textures of the given size.
type Allocator func(width, height int) (Texture, error)

//-----------------------------------------------------------------------------
// EBITEN (GPU)
//-----------------------------------------------------------------------------

// EbitenTexture is a Texture backed by an ebiten image.
type EbitenTexture struct {
	img *ebiten.Image
}

// EbitenAllocator allocates GPU textures through ebiten. Ebiten panics on invalid sizes, which is converted to
// ErrAllocationFailure.
func EbitenAllocator(width, height int) (tex Texture, err error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid size %dx%d", ErrAllocationFailure, width, height)
	}
	defer func() {
		if r := recover(); r != nil {
			tex, err = nil, fmt.Errorf("%w: %v", ErrAllocationFailure, r)
		}
	}()
	return &EbitenTexture{img: ebiten.NewImage(width, height)}, nil
}

func (t *EbitenTexture) Size() (int, int) {
	return t.img.Bounds().Dx(), t.img.Bounds().Dy()
}

func (t *EbitenTexture) WritePixels(pix []byte) {
	t.img.WritePixels(pix)
}

func (t *EbitenTexture) Deallocate() {
	t.img.Deallocate()
}

// Image returns the ebiten image to draw with.
func (t *EbitenTexture) Image() *ebiten.Image {
	return t.img
}

//-----------------------------------------------------------------------------
// CPU
//-----------------------------------------------------------------------------

// ImageTexture is a Texture backed by a CPU image (headless rendering and tests).
type ImageTexture struct {
	img *image.RGBA
}

// ImageAllocator allocates CPU textures.
func ImageAllocator(width, height int) (Texture, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid size %dx%d", ErrAllocationFailure, width, height)
	}
	return &ImageTexture{img: image.NewRGBA(image.Rect(0, 0, width, height))}, nil
}

func (t *ImageTexture) Size() (int, int) {
	return t.img.Rect.Dx(), t.img.Rect.Dy()
}

func (t *ImageTexture) WritePixels(pix []byte) {
	copy(t.img.Pix, pix)
}

func (t *ImageTexture) Deallocate() {
	t.img.Pix = nil
}

// Image returns the backing image (nil pixels after Deallocate).
func (t *ImageTexture) Image() *image.RGBA {
	return t.img
}
