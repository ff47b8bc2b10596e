package ui

import (
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDumpCanvases(t *testing.T) {
	c := NewCache(ImageAllocator)
	if _, err := c.GetOrUpdate("alice/../x", 2, 2, solidBlob("alice/../x", 3, 2, 2, 0xFF0000)); err != nil {
		t.Fatal(err)
	}
	dir := filepath.Join(t.TempDir(), "dumps")
	paths, err := DumpCanvases(c, dir, 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 || !strings.HasPrefix(filepath.Base(paths[0]), "canvas_alice____x_") || filepath.Dir(paths[0]) != dir {
		t.Fatalf("paths = %v", paths)
	}
	f, err := os.Open(paths[0])
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 8 {
		t.Errorf("size = %v", img.Bounds())
	}
	if r, g, b, a := img.At(7, 7).RGBA(); r != 0xFFFF || g != 0 || b != 0 || a != 0xFFFF {
		t.Errorf("pixel = %v", img.At(7, 7))
	}

	c.ClearAll()
	if paths, err = DumpCanvases(c, dir, 4); err != nil || len(paths) != 0 {
		t.Fatalf("dumped %v after clearing (%v)", paths, err)
	}
}

func TestDumpCanvasesDistinctNames(t *testing.T) {
	c := NewCache(ImageAllocator)
	for _, name := range []string{"a/b", "a_b", "a.b"} {
		if _, err := c.GetOrUpdate(name, 1, 1, solidBlob(name, 1, 1, 1, 0)); err != nil {
			t.Fatal(err)
		}
	}
	paths, err := DumpCanvases(c, t.TempDir(), 1)
	if err != nil {
		t.Fatal(err)
	}
	seen := map[string]bool{}
	for _, path := range paths {
		if seen[path] {
			t.Fatalf("two canvases were written to %s", path)
		}
		seen[path] = true
	}
	if len(seen) != 3 {
		t.Fatalf("paths = %v", paths)
	}
	if filepath.Base(paths[2]) != "canvas_a_b_v1.png" { // Sorted names: "a.b", "a/b", "a_b"
		t.Errorf("safe name was changed: %v", paths)
	}
}

func TestFrameTexture(t *testing.T) {
	img := defaultFrameTexture()
	if img != defaultFrameTexture() || img.Rect.Dx() != 16 || img.Rect.Dy() != 16 {
		t.Fatal("unexpected default frame texture")
	}
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 255 {
			t.Fatal("frame texture is not opaque")
		}
	}
	if sub := toRGBA(img.SubImage(img.Rect.Inset(4))); sub.Rect.Min.X != 0 || sub.Rect.Dx() != 8 {
		t.Errorf("toRGBA bounds = %v", sub.Rect)
	}
}
