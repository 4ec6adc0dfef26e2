package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ImageRef identifies one uploaded image. Exactly one of Path or Data is
// expected to carry the bytes.
type ImageRef struct {
	Name string
	Path string
	Data []byte
}

// ImageFromPath builds a reference named after the file's base name.
func ImageFromPath(path string) ImageRef {
	return ImageRef{Name: filepath.Base(path), Path: path}
}

// ImageFromBytes builds an in-memory reference.
func ImageFromBytes(name string, data []byte) ImageRef {
	return ImageRef{Name: name, Data: data}
}

// Bytes returns the image content, reading from disk when the reference is
// path-backed.
func (r ImageRef) Bytes() ([]byte, error) {
	if len(r.Data) > 0 {
		return r.Data, nil
	}
	if strings.TrimSpace(r.Path) == "" {
		return nil, errors.New("image has no content")
	}
	data, err := os.ReadFile(r.Path)
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", r.Name, err)
	}
	return data, nil
}
