package ui

import (
	"errors"
	"testing"
)

// fakeTexture records what is done to it
type fakeTexture struct {
	width, height int
	pix           []byte
	writes        int
	deallocs      int
}

func (t *fakeTexture) Size() (int, int) { return t.width, t.height }

func (t *fakeTexture) WritePixels(pix []byte) {
	t.pix = append(t.pix[:0], pix...)
	t.writes++
}

func (t *fakeTexture) Deallocate() { t.deallocs++ }

// fakeAllocator returns an allocator that keeps every texture it creates
func fakeAllocator(created *[]*fakeTexture) Allocator {
	return func(width, height int) (Texture, error) {
		tex := &fakeTexture{width: width, height: height}
		*created = append(*created, tex)
		return tex, nil
	}
}

func failingAllocator(width, height int) (Texture, error) {
	return nil, errors.New("out of video memory")
}

func panickingAllocator(width, height int) (Texture, error) {
	panic("driver crashed")
}

// solidBlob is a canvas filled with a single source color
func solidBlob(name string, version, width, height int, source int32) *Blob {
	pixels := make([]int32, width*height)
	for i := range pixels {
		pixels[i] = source
	}
	return &Blob{Name: name, Version: version, Width: width, Height: height, Pixels: pixels}
}

func assertAllPixels(t *testing.T, res *Resource, want uint32) {
	t.Helper()
	for k, got := range res.Pixels() {
		if got != want {
			t.Fatalf("pixel %d = %#08x, want %#08x", k, got, want)
		}
	}
}
