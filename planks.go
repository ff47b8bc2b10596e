package ui

import (
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/draw"
)

var (
	defaultFrameOnce sync.Once
	defaultFrame     *image.RGBA
)

// defaultFrameTexture is a 16x16 light wood planks texture for the back and sides of canvases.
func defaultFrameTexture() *image.RGBA {
	defaultFrameOnce.Do(func() {
		defaultFrame = image.NewRGBA(image.Rect(0, 0, 16, 16))
		base := color.RGBA{R: 196, G: 176, B: 118, A: 255}
		seam := color.RGBA{R: 150, G: 128, B: 80, A: 255}
		for y := 0; y < 16; y++ {
			for x := 0; x < 16; x++ {
				c := base
				// Cheap deterministic grain
				grain := uint8((x*7 + y*13 + (x*y)%5) % 9)
				c.R -= grain
				c.G -= grain
				c.B -= grain / 2
				if y%4 == 3 || (x == (y/4*5+3)%16) { // Plank seams (staggered joints)
					c = seam
				}
				defaultFrame.SetRGBA(x, y, c)
			}
		}
	})
	return defaultFrame
}

// toRGBA converts any image to *image.RGBA (starting at 0, 0), without copying if possible.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	res := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(res, res.Rect, img, b.Min, draw.Src)
	return res
}
