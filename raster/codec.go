package raster

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
)

// PNG magic bytes for file identification
var pngMagic = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// IsPNG checks if the given data starts with PNG magic bytes.
func IsPNG(data []byte) bool {
	if len(data) < len(pngMagic) {
		return false
	}
	return bytes.Equal(data[:len(pngMagic)], pngMagic)
}

// Decode reads a PNG, JPEG or GIF image.
func Decode(r io.Reader) (*Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return FromImage(img), nil
}

// DecodeBytes decodes image data held in memory.
func DecodeBytes(data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	return Decode(bytes.NewReader(data))
}

// EncodePNG writes the image as PNG. The standard encoder picks the color
// type from the pixels: RGB and fully opaque RGBA images are written as
// truecolor, RGBA images with any translucent pixel as truecolor+alpha.
func (m *Image) EncodePNG(w io.Writer) error {
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(w, m.Image()); err != nil {
		return fmt.Errorf("raster: encode png: %w", err)
	}
	return nil
}

// PNGBytes encodes the image as PNG into memory.
func (m *Image) PNGBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := m.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Load decodes the image file at path.
func Load(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("raster: open %s: %w", path, err)
	}
	defer f.Close()

	return Decode(f)
}

// Save writes the image to path as PNG, creating parent directories.
func (m *Image) Save(path string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("raster: create directory %s: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("raster: create %s: %w", path, err)
	}

	if err := m.EncodePNG(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
