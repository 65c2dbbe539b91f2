package preview

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
)

// Output formats.
const (
	FormatWebP = "webp"
	FormatTGA  = "tga"
	FormatPNG  = "png"
)

// ParseFormat normalizes a format name.
func ParseFormat(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")); f {
	case FormatWebP, FormatTGA, FormatPNG:
		return f, nil
	}
	return "", fmt.Errorf("preview: unknown format %q", s)
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (string, error) {
	return ParseFormat(filepath.Ext(path))
}

// Encode writes img in the given format.
func Encode(w io.Writer, img image.Image, format string) error {
	f, err := ParseFormat(format)
	if err != nil {
		return err
	}
	switch f {
	case FormatWebP:
		err = nativewebp.Encode(w, img, nil)
	case FormatTGA:
		err = tga.Encode(w, img)
	default:
		err = png.Encode(w, img)
	}
	if err != nil {
		return fmt.Errorf("preview: %s encode: %w", f, err)
	}
	return nil
}

// Save encodes img to path, creating parent directories.
func Save(path string, img image.Image, format string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	if err := Encode(f, img, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadBackdrop decodes a PNG, JPEG, BMP or TGA image, chosen by extension.
func LoadBackdrop(path string) (image.Image, error) {
	ext := strings.ToLower(filepath.Ext(path))
	var decode func(io.Reader) (image.Image, error)
	switch ext {
	case ".png":
		decode = png.Decode
	case ".jpg", ".jpeg":
		decode = jpeg.Decode
	case ".bmp":
		decode = bmp.Decode
	case ".tga":
		decode = tga.Decode
	default:
		return nil, fmt.Errorf("preview: unknown backdrop extension %q: %s", ext, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("preview: open backdrop %s: %w", path, err)
	}
	defer f.Close()

	img, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("preview: decode backdrop %s: %w", path, err)
	}
	return img, nil
}
