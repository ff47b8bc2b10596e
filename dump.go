package ui

import (
	"fmt"
	"hash/fnv"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

// DumpCanvases writes the current content of every cached canvas as an upscaled PNG into dir.
// It only probes the cache (nothing is created or updated) and returns the written paths.
func DumpCanvases(cache *Cache, dir string, scale int) ([]string, error) {
	if scale < 1 {
		scale = 1
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	var paths []string
	for _, name := range cache.Names() {
		res, ok := cache.TryGet(name)
		if !ok || res.Released() { // Cleared meanwhile
			continue
		}
		src := res.Image()
		dst := image.NewRGBA(image.Rect(0, 0, src.Rect.Dx()*scale, src.Rect.Dy()*scale))
		draw.NearestNeighbor.Scale(dst, dst.Rect, src, src.Rect, draw.Src, nil)
		path := filepath.Join(dir, fmt.Sprintf("canvas_%s_v%d.png", sanitizeFileName(name), res.Version()))
		if err := writePNG(path, dst); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err = png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// sanitizeFileName keeps safe names as they are. Others get a hash suffix so that distinct names never share a file.
func sanitizeFileName(name string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
	if safe == name {
		return safe
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	return fmt.Sprintf("%s_%08x", safe, h.Sum32())
}
