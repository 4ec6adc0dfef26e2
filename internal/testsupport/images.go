package testsupport

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"stylegen/internal/model"
)

// PNGBytes encodes a w x h image filled with a colour derived from seed, so
// distinct seeds produce distinct content fingerprints.
func PNGBytes(t testing.TB, w, h int, seed uint8) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	fill := color.RGBA{R: seed, G: 255 - seed, B: seed / 2, A: 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, fill)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// ZeroDimensionGIF is a syntactically valid GIF header declaring a 0x0
// logical screen.
func ZeroDimensionGIF() []byte {
	return []byte{'G', 'I', 'F', '8', '9', 'a', 0, 0, 0, 0, 0, 0, 0, ';'}
}

// WritePNG writes a fixture PNG into dir and returns an ImageRef for it.
func WritePNG(t testing.TB, dir, name string, w, h int, seed uint8) model.ImageRef {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, PNGBytes(t, w, h, seed), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return model.ImageFromPath(path)
}

// MemoryImage returns an in-memory PNG reference.
func MemoryImage(t testing.TB, name string, seed uint8) model.ImageRef {
	t.Helper()
	return model.ImageFromBytes(name, PNGBytes(t, 4, 3, seed))
}
